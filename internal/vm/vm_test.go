package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperdbg/internal/guest"
	"hyperdbg/internal/symstream"
	"hyperdbg/internal/vm"
)

type stubMemory struct {
	bytes map[uint64]byte
}

func newStubMemory() *stubMemory { return &stubMemory{bytes: map[uint64]byte{}} }

func (s *stubMemory) ProbeRead(addr uint64, size int) bool { return true }

func (s *stubMemory) ReadBytes(addr uint64, size int) ([]byte, error) {
	out := make([]byte, size)
	for i := 0; i < size; i++ {
		out[i] = s.bytes[addr+uint64(i)]
	}
	return out, nil
}

func (s *stubMemory) WriteBytes(addr uint64, data []byte) error {
	for i, b := range data {
		s.bytes[addr+uint64(i)] = b
	}
	return nil
}

type captureOutput struct{ lines []string }

func (c *captureOutput) Write(s string) { c.lines = append(c.lines, s) }

func scriptOf(stream ...symstream.Symbol) *symstream.CompiledScript {
	return &symstream.CompiledScript{Stream: stream}
}

// 3 + 4 -> result slot, fired because non-zero.
func TestExecuteArithmeticIntoResultSlot(t *testing.T) {
	script := scriptOf(
		symstream.Operator(symstream.OpAdd),
		symstream.Num(3),
		symstream.Num(4),
		symstream.GlobalID(symstream.ResultSlotID),
	)
	m := vm.New(vm.Host{})
	globals := vm.NewGlobalStore(0)
	fired, err := m.Execute(script, guest.NewRegisters(), globals)
	require.NoError(t, err)
	assert.True(t, fired)
	assert.EqualValues(t, 7, globals.Get(symstream.ResultSlotID))
}

// 5 == 5 -> 1 -> fired.
func TestExecuteComparisonTrue(t *testing.T) {
	script := scriptOf(
		symstream.Operator(symstream.OpEq),
		symstream.Num(5),
		symstream.Num(5),
		symstream.GlobalID(symstream.ResultSlotID),
	)
	m := vm.New(vm.Host{})
	globals := vm.NewGlobalStore(0)
	fired, err := m.Execute(script, guest.NewRegisters(), globals)
	require.NoError(t, err)
	assert.True(t, fired)
}

func TestExecuteDivisionByZero(t *testing.T) {
	script := scriptOf(
		symstream.Operator(symstream.OpDiv),
		symstream.Num(1),
		symstream.Num(0),
		symstream.GlobalID(symstream.ResultSlotID),
	)
	m := vm.New(vm.Host{})
	globals := vm.NewGlobalStore(0)
	_, err := m.Execute(script, guest.NewRegisters(), globals)
	require.Error(t, err)
	assert.ErrorIs(t, err, vm.ErrDivisionByZero)
}

// A false jz condition jumps straight to the mov stage at index 3,
// skipping whatever would otherwise sit between it and the target.
func TestExecuteJumpSkipsBranch(t *testing.T) {
	stream := []symstream.Symbol{
		symstream.Operator(symstream.OpJz),  // 0: get=2 (cond,target) set=0
		symstream.Num(0),                    // 1: cond = false -> jumps
		symstream.Num(3),                    // 2: target index 3
		symstream.Operator(symstream.OpMov), // 3: get=1,set=1
		symstream.Num(42),
		symstream.GlobalID(symstream.ResultSlotID),
	}
	m := vm.New(vm.Host{})
	globals := vm.NewGlobalStore(0)
	fired, err := m.Execute(scriptOf(stream...), guest.NewRegisters(), globals)
	require.NoError(t, err)
	assert.True(t, fired)
	assert.EqualValues(t, 42, globals.Get(symstream.ResultSlotID))
}

func TestExecuteRegisterReadWrite(t *testing.T) {
	raxAlias, ok := guest.Lookup("rax")
	require.True(t, ok)
	stream := []symstream.Symbol{
		symstream.Operator(symstream.OpInc),
		symstream.Register(guest.EncodeAlias(raxAlias)),
		symstream.Register(guest.EncodeAlias(raxAlias)),
	}
	regs := guest.NewRegisters()
	regs.SetBase(guest.RAX, 41)
	m := vm.New(vm.Host{})
	globals := vm.NewGlobalStore(0)
	_, err := m.Execute(scriptOf(stream...), regs, globals)
	require.NoError(t, err)
	assert.EqualValues(t, 42, regs.Base(guest.RAX))
}

func TestExecuteMemoryReadWrite(t *testing.T) {
	mem := newStubMemory()
	host := vm.Host{Memory: mem}
	m := vm.New(host)
	globals := vm.NewGlobalStore(0)

	writeStream := []symstream.Symbol{
		symstream.Operator(symstream.OpMemWriteQword),
		symstream.Num(0x1000),
		symstream.Num(0xDEADBEEF),
	}
	_, err := m.Execute(scriptOf(writeStream...), guest.NewRegisters(), globals)
	require.NoError(t, err)

	readStream := []symstream.Symbol{
		symstream.Operator(symstream.OpMemReadQword),
		symstream.Num(0x1000),
		symstream.GlobalID(symstream.ResultSlotID),
	}
	_, err = m.Execute(scriptOf(readStream...), guest.NewRegisters(), globals)
	require.NoError(t, err)
	assert.EqualValues(t, 0xDEADBEEF, globals.Get(symstream.ResultSlotID))
}

func TestExecutePrintfDecimalAndString(t *testing.T) {
	out := &captureOutput{}
	host := vm.Host{Output: out}
	m := vm.New(host)
	globals := vm.NewGlobalStore(0)

	script := &symstream.CompiledScript{
		Strings: []string{"value=%d name=%s"},
		Stream: []symstream.Symbol{
			symstream.Operator(symstream.OpPrintf),
			symstream.StringRef(0),
			symstream.Num(2),
			symstream.Num(7),
			symstream.StringRef(1),
		},
	}
	script.Strings = append(script.Strings, "rax")
	_, err := m.Execute(script, guest.NewRegisters(), globals)
	require.NoError(t, err)
	require.Len(t, out.lines, 1)
	assert.Equal(t, "value=7 name=rax", out.lines[0])
}

func TestExecuteJumpPastStreamEndReturnsBadJumpTarget(t *testing.T) {
	stream := []symstream.Symbol{
		symstream.Operator(symstream.OpJmp),
		symstream.Num(99), // well past the end of the stream
	}
	m := vm.New(vm.Host{})
	globals := vm.NewGlobalStore(0)
	_, err := m.Execute(scriptOf(stream...), guest.NewRegisters(), globals)
	require.Error(t, err)
	assert.ErrorIs(t, err, vm.ErrBadJumpTarget)
}

func TestExecutePrintfInvalidStringPointerSubstitutesPlaceholder(t *testing.T) {
	out := &captureOutput{}
	host := vm.Host{Output: out, Memory: &unreadableMemory{}}
	m := vm.New(host)
	globals := vm.NewGlobalStore(0)

	script := &symstream.CompiledScript{
		Strings: []string{"name=%s"},
		Stream: []symstream.Symbol{
			symstream.Operator(symstream.OpPrintf),
			symstream.StringRef(0),
			symstream.Num(1),
			symstream.Num(0x9999), // guest address, not a string-pool ref
		},
	}
	_, err := m.Execute(script, guest.NewRegisters(), globals)
	require.NoError(t, err)
	require.Len(t, out.lines, 1)
	assert.Equal(t, "name=<invalid>", out.lines[0])
}

// unreadableMemory fails ProbeRead for every address, modeling a guest
// pointer the VM should refuse to dereference rather than erroring.
type unreadableMemory struct{}

func (unreadableMemory) ProbeRead(addr uint64, size int) bool { return false }
func (unreadableMemory) ReadBytes(addr uint64, size int) ([]byte, error) {
	return nil, vm.ErrInvalidAddress
}
func (unreadableMemory) WriteBytes(addr uint64, data []byte) error { return nil }

func TestExecuteInterlockedExchangeAdd(t *testing.T) {
	mem := newStubMemory()
	host := vm.Host{Memory: mem}
	m := vm.New(host)
	globals := vm.NewGlobalStore(0)

	stream := []symstream.Symbol{
		symstream.Operator(symstream.OpInterlockedExchangeAdd),
		symstream.Num(0x2000),
		symstream.Num(5),
		symstream.GlobalID(symstream.ResultSlotID),
	}
	_, err := m.Execute(scriptOf(stream...), guest.NewRegisters(), globals)
	require.NoError(t, err)
	assert.EqualValues(t, 0, globals.Get(symstream.ResultSlotID)) // old value was 0

	readStream := []symstream.Symbol{
		symstream.Operator(symstream.OpMemReadQword),
		symstream.Num(0x2000),
		symstream.GlobalID(symstream.ResultSlotID),
	}
	_, err = m.Execute(scriptOf(readStream...), guest.NewRegisters(), globals)
	require.NoError(t, err)
	assert.EqualValues(t, 5, globals.Get(symstream.ResultSlotID))
}

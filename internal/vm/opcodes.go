package vm

import (
	"github.com/pkg/errors"

	"hyperdbg/internal/symstream"
)

// exec dispatches one decoded stage. It returns (-1, nil) for normal
// fallthrough (the caller advances ip past the operands it already
// consumed) or (target, nil) when the opcode wants to jump to an
// absolute stream index.
func (m *VM) exec(op symstream.Opcode, gets []operand, sets []Symbol, f *frame) (int, error) {
	switch op {
	case symstream.OpAdd:
		return -1, m.store1(sets, gets[0].val+gets[1].val, f)
	case symstream.OpSub:
		return -1, m.store1(sets, gets[0].val-gets[1].val, f)
	case symstream.OpMul:
		return -1, m.store1(sets, gets[0].val*gets[1].val, f)
	case symstream.OpDiv:
		if gets[1].val == 0 {
			return -1, ErrDivisionByZero
		}
		return -1, m.store1(sets, gets[0].val/gets[1].val, f)
	case symstream.OpMod:
		if gets[1].val == 0 {
			return -1, ErrDivisionByZero
		}
		return -1, m.store1(sets, gets[0].val%gets[1].val, f)
	case symstream.OpAsr:
		return -1, m.store1(sets, uint64(int64(gets[0].val)>>uint(gets[1].val)), f)
	case symstream.OpAsl:
		return -1, m.store1(sets, gets[0].val<<uint(gets[1].val), f)
	case symstream.OpOr:
		return -1, m.store1(sets, gets[0].val|gets[1].val, f)
	case symstream.OpXor:
		return -1, m.store1(sets, gets[0].val^gets[1].val, f)
	case symstream.OpAnd:
		return -1, m.store1(sets, gets[0].val&gets[1].val, f)
	case symstream.OpNot:
		return -1, m.store1(sets, ^gets[0].val, f)
	case symstream.OpNeg:
		return -1, m.store1(sets, uint64(-int64(gets[0].val)), f)
	case symstream.OpInc:
		return -1, m.store1(sets, gets[0].val+1, f)
	case symstream.OpDec:
		return -1, m.store1(sets, gets[0].val-1, f)

	case symstream.OpEq:
		return -1, m.storeBool(sets, gets[0].val == gets[1].val, f)
	case symstream.OpNeq:
		return -1, m.storeBool(sets, gets[0].val != gets[1].val, f)
	case symstream.OpGt:
		return -1, m.storeBool(sets, gets[0].val > gets[1].val, f)
	case symstream.OpLt:
		return -1, m.storeBool(sets, gets[0].val < gets[1].val, f)
	case symstream.OpGte:
		return -1, m.storeBool(sets, gets[0].val >= gets[1].val, f)
	case symstream.OpLte:
		return -1, m.storeBool(sets, gets[0].val <= gets[1].val, f)

	case symstream.OpJmp:
		return int(gets[0].val), nil
	case symstream.OpJz:
		if gets[0].val == 0 {
			return int(gets[1].val), nil
		}
		return -1, nil
	case symstream.OpJnz:
		if gets[0].val != 0 {
			return int(gets[1].val), nil
		}
		return -1, nil

	case symstream.OpMov:
		return -1, m.store1(sets, gets[0].val, f)

	case symstream.OpMemReadByte:
		return -1, m.memRead(sets, gets[0].val, 1, f)
	case symstream.OpMemReadDword:
		return -1, m.memRead(sets, gets[0].val, 4, f)
	case symstream.OpMemReadQword, symstream.OpPoi:
		return -1, m.memRead(sets, gets[0].val, 8, f)
	case symstream.OpMemWriteByte:
		return -1, m.memWrite(gets[0].val, gets[1].val, 1)
	case symstream.OpMemWriteDword:
		return -1, m.memWrite(gets[0].val, gets[1].val, 4)
	case symstream.OpMemWriteQword:
		return -1, m.memWrite(gets[0].val, gets[1].val, 8)

	case symstream.OpPrintf:
		return -1, m.printf(gets, f)

	case symstream.OpEnableEvent:
		return -1, m.requireEvents().EnableEvent(gets[0].val)
	case symstream.OpDisableEvent:
		return -1, m.requireEvents().DisableEvent(gets[0].val)
	case symstream.OpPause:
		return -1, m.requireEvents().Pause()
	case symstream.OpFlush:
		return -1, m.requireEvents().Flush()
	case symstream.OpEventSc:
		return -1, m.requireEvents().SetShortCircuit(gets[0].val, true)
	case symstream.OpEventInject:
		return -1, m.requireEvents().Inject(gets[0].val)

	case symstream.OpSpinlockLock:
		return -1, m.spinLock(gets[0].val)
	case symstream.OpSpinlockUnlock:
		return -1, m.memWrite(gets[0].val, 0, 8)
	case symstream.OpInterlockedExchange:
		return -1, m.interlockedMem(gets[0].val, func(old uint64) uint64 { return gets[1].val }, sets, f)
	case symstream.OpInterlockedExchangeAdd:
		return -1, m.interlockedMem(gets[0].val, func(old uint64) uint64 { return old + gets[1].val }, sets, f)
	case symstream.OpInterlockedIncrement:
		return -1, m.interlockedMem(gets[0].val, func(old uint64) uint64 { return old + 1 }, sets, f)
	case symstream.OpInterlockedDecrement:
		return -1, m.interlockedMem(gets[0].val, func(old uint64) uint64 { return old - 1 }, sets, f)
	case symstream.OpInterlockedCompareExchange:
		return -1, m.interlockedCompareExchange(gets[0].val, gets[1].val, gets[2].val, sets, f)

	case symstream.OpHi:
		return -1, m.store1(sets, gets[0].val>>32, f)
	case symstream.OpLow:
		return -1, m.store1(sets, gets[0].val&0xFFFFFFFF, f)
	case symstream.OpStrlen:
		n, err := m.strlen(gets[0], f, false)
		return -1, m.storeErr(sets, n, err, f)
	case symstream.OpWcslen:
		n, err := m.strlen(gets[0], f, true)
		return -1, m.storeErr(sets, n, err, f)

	default:
		return -1, errors.Wrapf(ErrUnknownOpcode, "%s", op)
	}
}

func (m *VM) store1(sets []Symbol, v uint64, f *frame) error {
	if len(sets) == 0 {
		return nil
	}
	return m.SetValue(sets[0], v, f)
}

func (m *VM) storeErr(sets []Symbol, v uint64, err error, f *frame) error {
	if err != nil {
		return err
	}
	return m.store1(sets, v, f)
}

func (m *VM) storeBool(sets []Symbol, cond bool, f *frame) error {
	var v uint64
	if cond {
		v = 1
	}
	return m.store1(sets, v, f)
}

func (m *VM) requireEvents() EventController {
	if m.host.Events == nil {
		return noopEvents{}
	}
	return m.host.Events
}

// noopEvents lets a VM built without an EventController still execute
// scripts that happen not to call any of enableevent/disableevent/pause/
// flush/event_sc/event_inject, instead of requiring every caller
// (including unit tests of the arithmetic opcodes) to stub one out.
type noopEvents struct{}

func (noopEvents) EnableEvent(uint64) error         { return nil }
func (noopEvents) DisableEvent(uint64) error        { return nil }
func (noopEvents) Pause() error                     { return nil }
func (noopEvents) Flush() error                     { return nil }
func (noopEvents) SetShortCircuit(uint64, bool) error { return nil }
func (noopEvents) Inject(uint64) error               { return nil }

func (m *VM) memRead(sets []Symbol, addr uint64, size int, f *frame) error {
	if m.host.Memory == nil {
		return errors.Wrap(ErrInvalidAddress, "no memory accessor configured")
	}
	if !m.host.Memory.ProbeRead(addr, size) {
		return errors.Wrapf(ErrInvalidAddress, "0x%x", addr)
	}
	b, err := m.host.Memory.ReadBytes(addr, size)
	if err != nil {
		return err
	}
	var v uint64
	for i := 0; i < len(b) && i < 8; i++ {
		v |= uint64(b[i]) << uint(8*i)
	}
	return m.store1(sets, v, f)
}

func (m *VM) memWrite(addr, val uint64, size int) error {
	if m.host.Memory == nil {
		return errors.Wrap(ErrInvalidAddress, "no memory accessor configured")
	}
	b := make([]byte, size)
	for i := 0; i < size; i++ {
		b[i] = byte(val >> uint(8*i))
	}
	return m.host.Memory.WriteBytes(addr, b)
}

// spinLock approximates a debuggee's interlocked spin-wait with a
// single best-effort compare-exchange: the controller-side VM has no
// true hardware interlock over guest memory, so this models "acquire if
// free" rather than blocking, honoring the no-blocking-call-at-event-
// time constraint this VM operates under.
func (m *VM) spinLock(addr uint64) error {
	if m.host.Memory == nil {
		return errors.Wrap(ErrInvalidAddress, "no memory accessor configured")
	}
	b, err := m.host.Memory.ReadBytes(addr, 8)
	if err != nil {
		return err
	}
	if len(b) == 8 && b[0] != 0 {
		return errors.Wrapf(ErrInvalidAddress, "lock at 0x%x already held", addr)
	}
	return m.memWrite(addr, 1, 8)
}

func (m *VM) interlockedMem(addr uint64, next func(old uint64) uint64, sets []Symbol, f *frame) error {
	if m.host.Memory == nil {
		return errors.Wrap(ErrInvalidAddress, "no memory accessor configured")
	}
	b, err := m.host.Memory.ReadBytes(addr, 8)
	if err != nil {
		return err
	}
	var old uint64
	for i := 0; i < len(b) && i < 8; i++ {
		old |= uint64(b[i]) << uint(8*i)
	}
	if err := m.memWrite(addr, next(old), 8); err != nil {
		return err
	}
	return m.store1(sets, old, f)
}

func (m *VM) interlockedCompareExchange(addr, comparand, exchange uint64, sets []Symbol, f *frame) error {
	if m.host.Memory == nil {
		return errors.Wrap(ErrInvalidAddress, "no memory accessor configured")
	}
	b, err := m.host.Memory.ReadBytes(addr, 8)
	if err != nil {
		return err
	}
	var old uint64
	for i := 0; i < len(b) && i < 8; i++ {
		old |= uint64(b[i]) << uint(8*i)
	}
	if old == comparand {
		if err := m.memWrite(addr, exchange, 8); err != nil {
			return err
		}
	}
	return m.store1(sets, old, f)
}

// strlen/wcslen accept either a string-pool operand (a literal passed
// directly in the script) or a guest address holding a NUL/UTF-16-NUL
// terminated buffer, so scripts can measure both string constants and
// guest pointers.
func (m *VM) strlen(op operand, f *frame, wide bool) (uint64, error) {
	if op.sym.Type == symstream.KindString {
		idx := int(op.sym.Value)
		if idx < 0 || idx >= len(f.strings) {
			return 0, errors.Wrap(ErrInvalidAddress, "bad string pool index")
		}
		return uint64(len([]rune(f.strings[idx]))), nil
	}
	if m.host.Memory == nil {
		return 0, errors.Wrap(ErrInvalidAddress, "no memory accessor configured")
	}
	step := 1
	if wide {
		step = 2
	}
	const maxScan = 4096
	addr := op.val
	for n := 0; n < maxScan; n++ {
		b, err := m.host.Memory.ReadBytes(addr+uint64(n*step), step)
		if err != nil {
			return 0, err
		}
		zero := true
		for _, c := range b {
			if c != 0 {
				zero = false
				break
			}
		}
		if zero {
			return uint64(n), nil
		}
	}
	return 0, errors.Wrap(ErrInvalidAddress, "string exceeds scan limit")
}

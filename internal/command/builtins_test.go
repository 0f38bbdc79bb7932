package command_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperdbg/internal/breakpoint"
	"hyperdbg/internal/command"
	"hyperdbg/internal/event"
	"hyperdbg/internal/guest"
)

type stubMemory struct{ bytes map[uint64]byte }

func newStubMemory() *stubMemory { return &stubMemory{bytes: map[uint64]byte{}} }

func (s *stubMemory) TranslateToPhysical(virtualAddr uint64) (uint64, error) { return virtualAddr, nil }

func (s *stubMemory) ReadBytes(physicalAddr uint64, size int) ([]byte, error) {
	out := make([]byte, size)
	for i := 0; i < size; i++ {
		out[i] = s.bytes[physicalAddr+uint64(i)]
	}
	return out, nil
}

func (s *stubMemory) WriteByte(physicalAddr uint64, b byte) error {
	s.bytes[physicalAddr] = b
	return nil
}

type stubControl struct{ regs *guest.Registers }

func (c stubControl) Go() error       { return nil }
func (c stubControl) StepInto() error { return nil }
func (c stubControl) StepOver() error { return nil }

func (c stubControl) DumpBytes(addr uint64, count int) ([]byte, error) { return make([]byte, count), nil }
func (c stubControl) WriteBytes(addr uint64, data []byte) error        { return nil }
func (c stubControl) Registers() *guest.Registers                     { return c.regs }

func newTestDeps() command.Deps {
	return command.Deps{
		Control:     stubControl{regs: guest.NewRegisters()},
		Breakpoints: breakpoint.New(newStubMemory(), nil),
		Events:      event.NewRegistry(),
	}
}

func TestBpRegistersCorrespondingEvent(t *testing.T) {
	d := newTestDeps()
	table := command.NewBuiltinTable(d)

	cmd, ok := table.Lookup("bp")
	require.True(t, ok)
	require.NoError(t, cmd.Run([]string{"0x1000"}))

	events := d.Events.Enumerate()
	require.Len(t, events, 1)
	assert.Equal(t, event.KindSoftwareBreakpoint, events[0].Kind)
	assert.Equal(t, event.StateEnabled, events[0].State)
}

func TestTwoBpCommandsEnumerateAsIdsOneAndTwo(t *testing.T) {
	d := newTestDeps()
	table := command.NewBuiltinTable(d)

	cmd, ok := table.Lookup("bp")
	require.True(t, ok)
	require.NoError(t, cmd.Run([]string{"0x1000"}))
	require.NoError(t, cmd.Run([]string{"0x2000"}))

	events := d.Events.Enumerate()
	require.Len(t, events, 2)
	assert.EqualValues(t, 1, events[0].Tag-event.TagStartSeed)
	assert.EqualValues(t, 2, events[1].Tag-event.TagStartSeed)
}

func TestEventsDisableSyncsUnderlyingBreakpoint(t *testing.T) {
	d := newTestDeps()
	table := command.NewBuiltinTable(d)

	bp, ok := table.Lookup("bp")
	require.True(t, ok)
	require.NoError(t, bp.Run([]string{"0x1000"}))

	events := d.Events.Enumerate()
	require.Len(t, events, 1)

	evCmd, ok := table.Lookup("events")
	require.True(t, ok)
	require.NoError(t, evCmd.Run([]string{"d", "1"}))

	state, ok := d.Events.QueryState(1)
	require.True(t, ok)
	assert.Equal(t, event.StateDisabled, state)

	outcome, err := d.Breakpoints.Firing(0x1000, 0, 0, 0)
	require.NoError(t, err)
	assert.True(t, outcome.Found)
	assert.False(t, outcome.Accepted, "disabling via events should gate the breakpoint's own Enabled flag")
}

func TestBeBdToggleBreakpointEnabled(t *testing.T) {
	d := newTestDeps()
	table := command.NewBuiltinTable(d)

	bp, ok := table.Lookup("bp")
	require.True(t, ok)
	require.NoError(t, bp.Run([]string{"0x1000"}))

	bpID := d.Breakpoints.List()[0].ID
	idArg := strconv.FormatUint(bpID, 10)

	bd, ok := table.Lookup("bd")
	require.True(t, ok)
	require.NoError(t, bd.Run([]string{idArg}))

	outcome, err := d.Breakpoints.Firing(0x1000, 0, 0, 0)
	require.NoError(t, err)
	assert.False(t, outcome.Accepted)

	be, ok := table.Lookup("be")
	require.True(t, ok)
	require.NoError(t, be.Run([]string{idArg}))
}

func TestSecondBpAtSameAddressFailsWithBreakpointExists(t *testing.T) {
	d := newTestDeps()
	table := command.NewBuiltinTable(d)

	bp, ok := table.Lookup("bp")
	require.True(t, ok)
	require.NoError(t, bp.Run([]string{"0x1000"}))

	err := bp.Run([]string{"0x1000"})
	require.Error(t, err)
	assert.ErrorIs(t, err, breakpoint.ErrBreakpointExists)
}

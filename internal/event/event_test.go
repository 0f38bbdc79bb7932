package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperdbg/internal/event"
	"hyperdbg/internal/guest"
	"hyperdbg/internal/symstream"
	"hyperdbg/internal/vm"
)

func TestRegisterTagRebasing(t *testing.T) {
	r := event.NewRegistry()
	first := r.Register(event.KindSoftwareBreakpoint, nil, nil, false)
	second := r.Register(event.KindSoftwareBreakpoint, nil, nil, false)
	assert.EqualValues(t, 1, first)
	assert.EqualValues(t, 2, second)
}

func TestModifyEnableDisableClear(t *testing.T) {
	r := event.NewRegistry()
	tag := r.Register(event.KindCPUID, nil, nil, false)

	state, ok := r.QueryState(tag)
	require.True(t, ok)
	assert.Equal(t, event.StateEnabled, state)

	require.NoError(t, r.Modify(tag, false, event.ModifyDisable))
	state, _ = r.QueryState(tag)
	assert.Equal(t, event.StateDisabled, state)

	require.NoError(t, r.Modify(tag, false, event.ModifyClear))
	_, ok = r.QueryState(tag)
	assert.False(t, ok)
}

func TestDispatchConditionGatesActions(t *testing.T) {
	r := event.NewRegistry()

	// Condition script: 0 == 1 -> never fires.
	falseCondition := &symstream.CompiledScript{
		Stream: []symstream.Symbol{
			symstream.Operator(symstream.OpEq),
			symstream.Num(0),
			symstream.Num(1),
			symstream.GlobalID(symstream.ResultSlotID),
		},
	}
	tag := r.Register(event.KindSoftwareBreakpoint, falseCondition, nil, false)
	require.NoError(t, r.AddAction(tag, event.Action{Kind: event.ActionBreakToDebugger}))

	m := vm.New(vm.Host{})
	globals := vm.NewGlobalStore(0)
	result, err := r.Dispatch(event.TriggeredEventDetails{Tag: tag}, guest.NewRegisters(), globals, m, nil)
	require.NoError(t, err)
	assert.False(t, result.HaltRequested)
}

func TestDispatchFiresActionsWhenConditionTrue(t *testing.T) {
	r := event.NewRegistry()
	trueCondition := &symstream.CompiledScript{
		Stream: []symstream.Symbol{
			symstream.Operator(symstream.OpEq),
			symstream.Num(1),
			symstream.Num(1),
			symstream.GlobalID(symstream.ResultSlotID),
		},
	}
	tag := r.Register(event.KindSoftwareBreakpoint, trueCondition, nil, false)
	require.NoError(t, r.AddAction(tag, event.Action{Kind: event.ActionBreakToDebugger}))

	m := vm.New(vm.Host{})
	globals := vm.NewGlobalStore(0)
	result, err := r.Dispatch(event.TriggeredEventDetails{Tag: tag}, guest.NewRegisters(), globals, m, nil)
	require.NoError(t, err)
	assert.True(t, result.HaltRequested)
}

func TestRebuildAppliesMutationsAtomically(t *testing.T) {
	r := event.NewRegistry()
	var tag uint64
	r.Rebuild(func(b event.Batch) {
		tag = b.Register(event.KindCPUID, nil, nil, false)
		require.NoError(t, b.AddAction(tag, event.Action{Kind: event.ActionBreakToDebugger}))
		require.NoError(t, b.Modify(tag, false, event.ModifyDisable))
	})
	state, ok := r.QueryState(tag)
	require.True(t, ok)
	assert.Equal(t, event.StateDisabled, state)
}

func TestDispatchUnconditionalEventAlwaysFires(t *testing.T) {
	r := event.NewRegistry()
	tag := r.Register(event.KindCPUID, nil, nil, false)
	require.NoError(t, r.AddAction(tag, event.Action{Kind: event.ActionBreakToDebugger}))

	m := vm.New(vm.Host{})
	globals := vm.NewGlobalStore(0)
	result, err := r.Dispatch(event.TriggeredEventDetails{Tag: tag}, guest.NewRegisters(), globals, m, nil)
	require.NoError(t, err)
	assert.True(t, result.HaltRequested)
}

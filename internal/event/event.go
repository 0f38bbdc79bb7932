package event

import "hyperdbg/internal/symstream"

// Event is a binding of a hook kind to a condition script and an
// action list, identified by a stable Tag.
type Event struct {
	Tag             uint64
	Kind            Kind
	ConditionScript *symstream.CompiledScript // nil: unconditional, always fires
	Actions         []Action
	Context         interface{}
	State           State

	// ShortCircuit: when true, a failing action aborts the rest of this
	// event's action list rather than letting later actions run with a
	// stale/partial VM state. Decided per-event rather than a single
	// core-wide flag (see Stage's doc comment for the same reasoning).
	ShortCircuit bool
}

// TriggeredEventDetails is what the debuggee side hands the registry
// when a hook fires: which event, what stage of a two-stage hook, and
// whatever opaque context the hook kind attaches (faulting address,
// MSR number, syscall index, ...).
type TriggeredEventDetails struct {
	Tag     uint64
	Context interface{}
	Stage   Stage
}

package event

import "hyperdbg/internal/symstream"

// ActionKind enumerates what an Event does when it fires.
type ActionKind struct{ k int }

var (
	ActionBreakToDebugger = ActionKind{0}
	ActionRunCustomCode   = ActionKind{1}
	ActionRunScript       = ActionKind{2}
)

var actionKindNames = []string{"BreakToDebugger", "RunCustomCode", "RunScript"}

func (k ActionKind) String() string {
	if k.k < 0 || k.k >= len(actionKindNames) {
		return "ActionKind(?)"
	}
	return actionKindNames[k.k]
}

// Action is one entry in an Event's action list. Only the field that
// matches Kind is meaningful: RunScript carries Script, RunCustomCode
// carries CustomCode, BreakToDebugger carries neither.
type Action struct {
	Kind       ActionKind
	Script     *symstream.CompiledScript
	CustomCode []byte
}

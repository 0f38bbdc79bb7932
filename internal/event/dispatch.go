package event

import (
	"hyperdbg/internal/guest"
	"hyperdbg/internal/vm"
)

// CustomCodeRunner executes an Action's raw CustomCode payload on the
// debuggee. The run_custom_code action type is opaque to the registry —
// it is neither a compiled script nor a VM concern.
type CustomCodeRunner interface {
	RunCustomCode(code []byte, regs *guest.Registers) error
}

// DispatchResult reports what a firing produced: whether any action
// asked to halt and notify the controller, and the first action error
// encountered (if any; execution continues past a non-short-circuiting
// error).
type DispatchResult struct {
	HaltRequested bool
	FirstError    error
}

// Dispatch evaluates details against the registry: looks up the event,
// runs its condition script (if any) to decide fire/skip, then walks
// the action list, invoking the VM for RunScript actions and the
// collaborator for RunCustomCode.
func (r *Registry) Dispatch(details TriggeredEventDetails, regs *guest.Registers, globals *vm.GlobalStore, m *vm.VM, runner CustomCodeRunner) (DispatchResult, error) {
	ev := r.Lookup(details.Tag)
	if ev == nil {
		return DispatchResult{}, ErrUnknownTag
	}
	if ev.State != StateEnabled {
		return DispatchResult{}, nil
	}

	if ev.ConditionScript != nil {
		fired, err := m.Execute(ev.ConditionScript, regs, globals)
		if err != nil {
			return DispatchResult{FirstError: err}, nil
		}
		if !fired {
			return DispatchResult{}, nil
		}
	}

	var result DispatchResult
	for _, action := range ev.Actions {
		var err error
		switch action.Kind {
		case ActionBreakToDebugger:
			result.HaltRequested = true
		case ActionRunScript:
			_, err = m.Execute(action.Script, regs, globals)
		case ActionRunCustomCode:
			if runner != nil {
				err = runner.RunCustomCode(action.CustomCode, regs)
			}
		}
		if err != nil {
			if result.FirstError == nil {
				result.FirstError = err
			}
			if ev.ShortCircuit {
				break
			}
		}
	}
	return result, nil
}

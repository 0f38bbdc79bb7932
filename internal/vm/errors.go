package vm

import "github.com/pkg/errors"

// Runtime failures, VM-level kinds. These are *localized*: Execute
// never panics, it returns one of these and the caller (the event
// registry) decides whether to short-circuit the rest of the action
// list.
var (
	ErrInvalidAddress    = errors.New("invalid address")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrBadJumpTarget     = errors.New("bad jump target")
	ErrUnknownOpcode     = errors.New("unknown opcode")
	ErrCapabilityExceeded = errors.New("capability exceeded")
)

package parser

import (
	"fmt"

	"github.com/pkg/errors"

	"hyperdbg/internal/token"
)

// Kind names one of the parser's taxonomy of failures.
// Compile-time errors always carry a source Position and abort the
// current command; no partial symbol stream ever escapes (see Parse).
type Kind int

const (
	KindSyntaxError Kind = iota
	KindUndefinedIdentifier
	KindTempListFull
	KindVariableLimitExceeded
	KindUnknownOperator
	KindCapabilityExceeded
)

func (k Kind) String() string {
	switch k {
	case KindSyntaxError:
		return "SyntaxError"
	case KindUndefinedIdentifier:
		return "UndefinedIdentifier"
	case KindTempListFull:
		return "TempListFull"
	case KindVariableLimitExceeded:
		return "VariableLimitExceeded"
	case KindUnknownOperator:
		return "UnknownOperator"
	case KindCapabilityExceeded:
		return "CapabilityExceeded"
	default:
		return "Kind(?)"
	}
}

// Error is returned for every compile-time failure. It wraps a sentinel
// Kind with github.com/pkg/errors so call sites can still use errors.Is
// against the Kind-specific sentinels below while attaching a source
// position and message.
type Error struct {
	Kind Kind
	Pos  token.Position
	msg  string
	err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

func newError(kind Kind, pos token.Position, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Kind: kind,
		Pos:  pos,
		msg:  msg,
		err:  errors.Wrapf(sentinelFor(kind), "%s", msg),
	}
}

var (
	ErrSyntax               = errors.New("syntax error")
	ErrUndefinedIdentifier  = errors.New("undefined identifier")
	ErrTempListFull         = errors.New("temp list full")
	ErrVariableLimitExceeded = errors.New("variable limit exceeded")
	ErrUnknownOperator      = errors.New("unknown operator")
	ErrCapabilityExceeded   = errors.New("capability exceeded")
)

var zeroPos = token.Position{}

func sentinelFor(k Kind) error {
	switch k {
	case KindSyntaxError:
		return ErrSyntax
	case KindUndefinedIdentifier:
		return ErrUndefinedIdentifier
	case KindTempListFull:
		return ErrTempListFull
	case KindVariableLimitExceeded:
		return ErrVariableLimitExceeded
	case KindUnknownOperator:
		return ErrUnknownOperator
	case KindCapabilityExceeded:
		return ErrCapabilityExceeded
	default:
		return ErrSyntax
	}
}

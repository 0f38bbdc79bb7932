// Package vm is the script VM: a fetch-decode-execute loop over a
// compiled symbol stream, with no blocking call and no host exception
// on the hot event-time path — every failure is a returned error, never
// a panic. Execute is not allocation-free: each call makes fresh local
// and temp frames, and each stage builds its operand slices.
package vm

import (
	"github.com/pkg/errors"

	"hyperdbg/internal/guest"
	"hyperdbg/internal/symstream"
)

// VM executes one CompiledScript against one Host. A VM is reusable
// across invocations; GlobalStore is supplied by the caller (it
// outlives any single script execution and is shared across cores),
// while locals and temps are allocated fresh per Execute call.
type VM struct {
	host Host
}

func New(host Host) *VM {
	return &VM{host: host}
}

func resultSlotIndex() uint64 { return symstream.ResultSlotID }

// operand is one decoded get-operand: its original Symbol (so opcodes
// like strlen/hi/low can tell a string-pool ref from a register) and
// its evaluated value.
type operand struct {
	sym Symbol
	val uint64
}

// Symbol is a local alias so opcodes.go doesn't need to import
// symstream just to spell out the type in signatures.
type Symbol = symstream.Symbol

// frame bundles everything GetValue/SetValue needs to resolve an
// operand: guest register snapshot, the shared globals, and this
// invocation's locals/temps.
type frame struct {
	regs    *guest.Registers
	globals *GlobalStore
	locals  *LocalFrame
	temps   *LocalFrame
	strings []string
}

// Execute runs script to completion (or to the first error) and
// reports whether the script's top-level expression evaluated
// non-zero — the fire/skip boolean a condition script produces,
// read back out of the reserved result slot the parser always
// writes (symstream.ResultSlotID).
func (m *VM) Execute(script *symstream.CompiledScript, regs *guest.Registers, globals *GlobalStore) (bool, error) {
	f := &frame{
		regs:    regs,
		globals: globals,
		locals:  NewLocalFrame(script.VariableBounds.LocalSlots),
		temps:   NewLocalFrame(script.VariableBounds.TempSlots),
		strings: script.Strings,
	}

	stream := script.Stream
	ip := int(script.EntryOffset)
	for ip < len(stream) {
		sym := stream[ip]
		if sym.Type != symstream.KindOperator {
			return false, errors.Wrapf(ErrUnknownOpcode, "expected operator at index %d, got %s", ip, sym.Type)
		}
		op := symstream.Opcode(sym.Value)

		getCount := symstream.GetArity(op)
		setCount := symstream.SetArity(op)
		cursor := ip + 1

		gets := make([]operand, 0, getCount+4)
		for i := 0; i < getCount; i++ {
			if cursor >= len(stream) {
				return false, errors.Wrapf(ErrBadJumpTarget, "truncated operand list at index %d", ip)
			}
			v, err := m.GetValue(stream[cursor], f)
			if err != nil {
				return false, err
			}
			gets = append(gets, operand{sym: stream[cursor], val: v})
			cursor++
		}

		if symstream.IsVariadic(op) {
			argc := int(gets[len(gets)-1].val)
			for i := 0; i < argc; i++ {
				if cursor >= len(stream) {
					return false, errors.Wrapf(ErrBadJumpTarget, "truncated printf args at index %d", ip)
				}
				v, err := m.GetValue(stream[cursor], f)
				if err != nil {
					return false, err
				}
				gets = append(gets, operand{sym: stream[cursor], val: v})
				cursor++
			}
		}

		sets := make([]Symbol, 0, setCount)
		for i := 0; i < setCount; i++ {
			if cursor >= len(stream) {
				return false, errors.Wrapf(ErrBadJumpTarget, "truncated set-operand list at index %d", ip)
			}
			sets = append(sets, stream[cursor])
			cursor++
		}

		nextIP, err := m.exec(op, gets, sets, f)
		if err != nil {
			return false, errors.Wrapf(err, "at stream index %d (%s)", ip, op)
		}
		if nextIP >= 0 {
			if nextIP >= len(stream) {
				return false, errors.Wrapf(ErrBadJumpTarget, "target %d out of range at stream index %d (%s)", nextIP, ip, op)
			}
			ip = nextIP
			continue
		}
		ip = cursor
	}

	result := f.globals.Get(resultSlotIndex())
	return result != 0, nil
}

// GetValue reads the value an operand Symbol denotes: an immediate, a
// guest register (snapshot or live, width/offset applied), a pseudo
// register resolved through the host, or a variable slot.
func (m *VM) GetValue(sym Symbol, f *frame) (uint64, error) {
	switch sym.Type {
	case symstream.KindNum:
		return sym.Value, nil
	case symstream.KindString:
		return sym.Value, nil
	case symstream.KindRegister:
		return f.regs.Get(guest.DecodeAlias(sym.Value)), nil
	case symstream.KindPseudoRegister:
		if m.host.Pseudo == nil {
			return 0, errors.Wrap(ErrInvalidAddress, "no pseudo-register provider configured")
		}
		return m.host.Pseudo.PseudoRegister(guest.PseudoRegister(sym.Value))
	case symstream.KindGlobalID:
		return f.globals.Get(sym.Value), nil
	case symstream.KindLocalID:
		return f.locals.Get(sym.Value), nil
	case symstream.KindTemp:
		return f.temps.Get(sym.Value), nil
	case symstream.KindStackIndex:
		return 0, errors.Wrap(ErrUnknownOpcode, "stack-index operands are not yet materialized")
	default:
		return 0, errors.Wrapf(ErrUnknownOpcode, "unrecognized operand kind %s", sym.Type)
	}
}

// SetValue writes v into the slot an operand Symbol names: a register
// (width/offset obeyed, per guest.Registers.Set), or a variable slot.
// Immediates, strings, and pseudo registers are not valid assignment
// targets.
func (m *VM) SetValue(sym Symbol, v uint64, f *frame) error {
	switch sym.Type {
	case symstream.KindRegister:
		f.regs.Set(guest.DecodeAlias(sym.Value), v)
		return nil
	case symstream.KindGlobalID:
		f.globals.Set(sym.Value, v)
		return nil
	case symstream.KindLocalID:
		f.locals.Set(sym.Value, v)
		return nil
	case symstream.KindTemp:
		f.temps.Set(sym.Value, v)
		return nil
	default:
		return errors.Wrapf(ErrUnknownOpcode, "operand kind %s is not assignable", sym.Type)
	}
}

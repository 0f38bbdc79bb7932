package vm

import (
	"github.com/pkg/errors"

	"hyperdbg/internal/symstream"
)

// Capability is the debuggee-published descriptor of what it can run:
// max stages, max operands per stage, which opcodes it supports, its
// local/global/temp slot counts, and its native word width. The
// controller checks a CompiledScript against this before transferring
// it and packs the stream to WordWidthBits on the wire; both the check
// and the packing are the only permitted re-encodings of a script.
type Capability struct {
	MaxStages           int
	MaxOperandsPerStage int
	SupportedOpcodes    map[symstream.Opcode]bool
	GlobalSlots         int
	LocalSlots          int
	TempSlots           int
	WordWidthBits       int // 32 or 64
}

// DefaultCapability describes a full-featured debuggee supporting every
// opcode this package implements, matching the word width and slot
// counts internal/parser uses by default.
func DefaultCapability() Capability {
	supported := map[symstream.Opcode]bool{}
	for op := symstream.Opcode(0); op < symstream.Opcode(lastOpcodeForCapability); op++ {
		supported[op] = true
	}
	return Capability{
		MaxStages:           4096,
		MaxOperandsPerStage: 8,
		SupportedOpcodes:    supported,
		GlobalSlots:         0x7FFE,
		LocalSlots:          0x7FFE,
		TempSlots:           64,
		WordWidthBits:       64,
	}
}

// lastOpcodeForCapability bounds the loop above; kept as its own
// constant rather than an exported "count" from symstream so the
// capability table does not have to be recomputed if the opcode set
// grows without updating a supported debuggee fleet.
const lastOpcodeForCapability = 49

// Check rejects a script the debuggee cannot run: any opcode outside
// SupportedOpcodes, or any slot/stage count over budget, yields
// ErrCapabilityExceeded.
func (c Capability) Check(script *symstream.CompiledScript) error {
	if script.VariableBounds.GlobalSlots > c.GlobalSlots {
		return errors.Wrapf(ErrCapabilityExceeded, "global slots %d > capability %d", script.VariableBounds.GlobalSlots, c.GlobalSlots)
	}
	if script.VariableBounds.LocalSlots > c.LocalSlots {
		return errors.Wrapf(ErrCapabilityExceeded, "local slots %d > capability %d", script.VariableBounds.LocalSlots, c.LocalSlots)
	}
	if script.VariableBounds.TempSlots > c.TempSlots {
		return errors.Wrapf(ErrCapabilityExceeded, "temp slots %d > capability %d", script.VariableBounds.TempSlots, c.TempSlots)
	}
	stages := 0
	for i := 0; i < len(script.Stream); {
		sym := script.Stream[i]
		if sym.Type != symstream.KindOperator {
			return errors.Wrapf(ErrCapabilityExceeded, "stream does not start a stage at index %d", i)
		}
		op := symstream.Opcode(sym.Value)
		if !c.SupportedOpcodes[op] {
			return errors.Wrapf(ErrCapabilityExceeded, "unsupported opcode %s", op)
		}
		operands, err := operandCount(script, i)
		if err != nil {
			return err
		}
		if operands > c.MaxOperandsPerStage {
			return errors.Wrapf(ErrCapabilityExceeded, "opcode %s has %d operands > capability %d", op, operands, c.MaxOperandsPerStage)
		}
		stages++
		if stages > c.MaxStages {
			return errors.Wrapf(ErrCapabilityExceeded, "script exceeds %d stages", c.MaxStages)
		}
		i += 1 + operands
	}
	return nil
}

// operandCount returns the number of operand Symbols following the
// operator at index i, handling printf's variadic argc.
func operandCount(script *symstream.CompiledScript, i int) (int, error) {
	op := symstream.Opcode(script.Stream[i].Value)
	get := symstream.GetArity(op)
	set := symstream.SetArity(op)
	if !symstream.IsVariadic(op) {
		return get + set, nil
	}
	if i+2 >= len(script.Stream) {
		return 0, errors.Wrap(ErrCapabilityExceeded, "truncated printf operands")
	}
	argc := int(script.Stream[i+2].Value)
	return get + argc + set, nil
}

// PackedWord is the wire form of one Symbol at a given word width: the
// in-memory form is always {u64 type, u64 value}; packing truncates both
// fields to WordWidthBits, which is the sole permitted re-encoding of a
// script.
type PackedWord struct {
	Type  uint64
	Value uint64
}

// Pack truncates every Symbol in script to width bits (32 or 64) for
// transport to a debuggee whose capability descriptor advertises that
// width.
func Pack(script *symstream.CompiledScript, widthBits int) []PackedWord {
	out := make([]PackedWord, len(script.Stream))
	m := uint64(1)<<uint(widthBits) - 1
	if widthBits >= 64 {
		m = ^uint64(0)
	}
	for i, s := range script.Stream {
		out[i] = PackedWord{Type: uint64(s.Type) & m, Value: s.Value & m}
	}
	return out
}

// Unpack is Pack's inverse, used by the debuggee side to reconstitute a
// stream of symstream.Symbol from the wire form.
func Unpack(words []PackedWord) []symstream.Symbol {
	out := make([]symstream.Symbol, len(words))
	for i, w := range words {
		out[i] = symstream.Symbol{Type: symstream.Kind(w.Type), Value: w.Value}
	}
	return out
}

// Package symstream defines the compiled form shared by the parser (which
// produces it) and the VM (which evaluates it): Symbol, the operand/
// operator Kind tag, the opcode table with its fixed arities, and
// CompiledScript, the flat buffer that is transported between the
// controller and the debuggee.
package symstream

// Kind is the variant tag carried by every Symbol: either "this is an
// operator" (Value holds an Opcode) or one of the operand kinds (Value
// holds a register id, immediate, variable slot, or string-pool index).
type Kind int

const (
	KindOperator Kind = iota
	KindNum
	KindRegister
	KindPseudoRegister
	KindGlobalID
	KindLocalID
	KindTemp
	KindStackIndex
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindOperator:
		return "Operator"
	case KindNum:
		return "Num"
	case KindRegister:
		return "Register"
	case KindPseudoRegister:
		return "PseudoRegister"
	case KindGlobalID:
		return "GlobalId"
	case KindLocalID:
		return "LocalId"
	case KindTemp:
		return "Temp"
	case KindStackIndex:
		return "StackIndex"
	case KindString:
		return "String"
	default:
		return "Kind(?)"
	}
}

// Symbol is one compiled-form opcode or operand: a variant tag plus a
// 64-bit payload. A symbol stream is an ordered sequence of these; an
// operator Symbol is always followed by exactly get_arity+set_arity
// operand Symbols (the only exception is printf, whose second operand
// carries the argument count, see GetArity and IsVariadic).
type Symbol struct {
	Type  Kind
	Value uint64
}

func Operator(op Opcode) Symbol       { return Symbol{Type: KindOperator, Value: uint64(op)} }
func Num(v uint64) Symbol             { return Symbol{Type: KindNum, Value: v} }
func Register(aliasIndex uint64) Symbol { return Symbol{Type: KindRegister, Value: aliasIndex} }
func PseudoRegister(id uint64) Symbol { return Symbol{Type: KindPseudoRegister, Value: id} }
func GlobalID(slot uint64) Symbol     { return Symbol{Type: KindGlobalID, Value: slot} }
func LocalID(slot uint64) Symbol      { return Symbol{Type: KindLocalID, Value: slot} }
func Temp(slot uint64) Symbol         { return Symbol{Type: KindTemp, Value: slot} }
func StackIndex(depth uint64) Symbol  { return Symbol{Type: KindStackIndex, Value: depth} }
func StringRef(poolIndex uint64) Symbol { return Symbol{Type: KindString, Value: poolIndex} }

// CompiledScript is the output of the parser and the input to the VM and
// the transport layer: {symbol_stream, byte_length, entry_offset,
// variable_bounds}, plus the string pool that String operand symbols
// index into (strings cannot fit inline in a Symbol).
type CompiledScript struct {
	Stream      []Symbol
	Strings     []string
	EntryOffset uint32

	// VariableBounds records how many global/local slots and temp slots
	// this script actually uses, so the pre-transfer capability check
	// (§4.4) can reject it cheaply without walking the whole stream.
	VariableBounds VariableBounds
}

// ResultSlotID is a reserved GlobalId slot the parser writes the value of
// every top-level expression statement to, and the VM reads back as a
// script's overall fire/skip result. It is chosen just above MaxSlots
// (see internal/parser.MaxSlots) so it can never collide with a
// user-declared global.
const ResultSlotID uint64 = 0x7FFF

type VariableBounds struct {
	GlobalSlots int
	LocalSlots  int
	TempSlots   int
}

// ByteLength is the serialized length the §6.2 ABI header carries:
// length is expressed in units of sizeof(Symbol) as {u64 type, u64
// value}, i.e. 16 bytes per Symbol.
func (c *CompiledScript) ByteLength() uint32 {
	return uint32(len(c.Stream)) * 16
}

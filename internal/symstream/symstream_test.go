package symstream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hyperdbg/internal/symstream"
)

func TestOpcodeStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "add", symstream.OpAdd.String())
	assert.Equal(t, "printf", symstream.OpPrintf.String())
	assert.Equal(t, "Opcode(?)", symstream.Opcode(0xFFFF).String())
}

func TestArityTableMatchesDocumentedShapes(t *testing.T) {
	assert.Equal(t, 2, symstream.GetArity(symstream.OpAdd))
	assert.Equal(t, 1, symstream.SetArity(symstream.OpAdd))

	assert.Equal(t, 0, symstream.GetArity(symstream.OpPause))
	assert.Equal(t, 0, symstream.SetArity(symstream.OpPause))

	assert.Equal(t, 3, symstream.GetArity(symstream.OpInterlockedCompareExchange))
	assert.Equal(t, 1, symstream.SetArity(symstream.OpInterlockedCompareExchange))
}

func TestPrintfIsTheOnlyVariadicOpcode(t *testing.T) {
	assert.True(t, symstream.IsVariadic(symstream.OpPrintf))
	assert.False(t, symstream.IsVariadic(symstream.OpAdd))
	assert.False(t, symstream.IsVariadic(symstream.OpMov))
}

func TestSymbolConstructorsSetKindAndValue(t *testing.T) {
	assert.Equal(t, symstream.Symbol{Type: symstream.KindOperator, Value: uint64(symstream.OpAdd)}, symstream.Operator(symstream.OpAdd))
	assert.Equal(t, symstream.Symbol{Type: symstream.KindNum, Value: 42}, symstream.Num(42))
	assert.Equal(t, symstream.Symbol{Type: symstream.KindGlobalID, Value: 7}, symstream.GlobalID(7))
	assert.Equal(t, symstream.Symbol{Type: symstream.KindLocalID, Value: 3}, symstream.LocalID(3))
	assert.Equal(t, symstream.Symbol{Type: symstream.KindTemp, Value: 1}, symstream.Temp(1))
}

func TestCompiledScriptByteLengthIsSixteenBytesPerSymbol(t *testing.T) {
	script := &symstream.CompiledScript{
		Stream: []symstream.Symbol{
			symstream.Operator(symstream.OpAdd),
			symstream.Num(1),
			symstream.Num(2),
			symstream.GlobalID(0),
		},
	}
	assert.Equal(t, uint32(4*16), script.ByteLength())
}

func TestResultSlotIDIsAboveMaxSlots(t *testing.T) {
	// internal/parser.MaxSlots is 0x7FFE; the result slot must sit just
	// above it so it can never collide with a user-declared global.
	assert.Equal(t, uint64(0x7FFF), symstream.ResultSlotID)
}

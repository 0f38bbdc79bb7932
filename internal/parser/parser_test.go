package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperdbg/internal/parser"
	"hyperdbg/internal/symstream"
)

func opAt(t *testing.T, stream []symstream.Symbol, i int) symstream.Opcode {
	t.Helper()
	require.Equal(t, symstream.KindOperator, stream[i].Type, "index %d", i)
	return symstream.Opcode(stream[i].Value)
}

func TestParseSimpleAssignmentEmitsMov(t *testing.T) {
	script, err := parser.Parse([]byte("x = 1;"), parser.NoResolver)
	require.NoError(t, err)
	require.NotEmpty(t, script.Stream)
	assert.Equal(t, symstream.OpMov, opAt(t, script.Stream, 0))
	assert.Equal(t, symstream.KindGlobalID, script.Stream[2].Type)
}

func TestParseLocalDeclUsesLocalSlot(t *testing.T) {
	script, err := parser.Parse([]byte("local x = 5; x = x + 1;"), parser.NoResolver)
	require.NoError(t, err)
	require.Equal(t, 1, script.VariableBounds.LocalSlots)
	assert.Equal(t, 0, script.VariableBounds.GlobalSlots)
}

func TestParseUndefinedBangIdentifierFails(t *testing.T) {
	_, err := parser.Parse([]byte("x = nt!NonExistent;"), parser.NoResolver)
	require.Error(t, err)
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, parser.KindUndefinedIdentifier, perr.Kind)
	assert.ErrorIs(t, err, parser.ErrUndefinedIdentifier)
}

type fakeResolver struct{ addr uint64 }

func (f fakeResolver) NameToAddress(string) (uint64, bool) { return f.addr, true }

func TestParseBangIdentifierResolvesThroughResolver(t *testing.T) {
	script, err := parser.Parse([]byte("x = nt!SomeFunc;"), fakeResolver{addr: 0xdeadbeef})
	require.NoError(t, err)
	// mov op, src (Num 0xdeadbeef), dst (GlobalId)
	assert.Equal(t, symstream.KindNum, script.Stream[1].Type)
	assert.Equal(t, uint64(0xdeadbeef), script.Stream[1].Value)
}

func TestParseSyntaxErrorOnUnterminatedBlock(t *testing.T) {
	_, err := parser.Parse([]byte("if (1) {"), parser.NoResolver)
	require.Error(t, err)
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, parser.KindSyntaxError, perr.Kind)
}

func TestParseIfElseEmitsJzAndJmp(t *testing.T) {
	script, err := parser.Parse([]byte("if (1) { x = 1; } else { x = 2; }"), parser.NoResolver)
	require.NoError(t, err)

	var jz, jmp int
	for i, s := range script.Stream {
		if s.Type != symstream.KindOperator {
			continue
		}
		switch symstream.Opcode(s.Value) {
		case symstream.OpJz:
			jz++
			_ = i
		case symstream.OpJmp:
			jmp++
		}
	}
	assert.Equal(t, 1, jz)
	assert.Equal(t, 1, jmp)
}

func TestParseWhileLoopBranchesBackToTop(t *testing.T) {
	script, err := parser.Parse([]byte("while (x < 10) { x = x + 1; }"), parser.NoResolver)
	require.NoError(t, err)

	var sawJz bool
	for _, s := range script.Stream {
		if s.Type == symstream.KindOperator && symstream.Opcode(s.Value) == symstream.OpJz {
			sawJz = true
		}
	}
	assert.True(t, sawJz)
}

func TestParseConditionScriptFormSetsResultSlot(t *testing.T) {
	script, err := parser.Parse([]byte("1 == 1 ? { printf(\"hit\"); }"), parser.NoResolver)
	require.NoError(t, err)

	foundResultMov := false
	for i, s := range script.Stream {
		if s.Type == symstream.KindOperator && symstream.Opcode(s.Value) == symstream.OpMov {
			dst := script.Stream[i+2]
			if dst.Type == symstream.KindGlobalID && dst.Value == symstream.ResultSlotID {
				foundResultMov = true
			}
		}
	}
	assert.True(t, foundResultMov)
}

func TestParsePrintfRequiresFormatString(t *testing.T) {
	_, err := parser.Parse([]byte("printf();"), parser.NoResolver)
	require.Error(t, err)
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, parser.KindSyntaxError, perr.Kind)
}

func TestParseUnknownOperatorFails(t *testing.T) {
	_, err := parser.Parse([]byte("bogus_builtin(1);"), parser.NoResolver)
	require.Error(t, err)
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, parser.KindUnknownOperator, perr.Kind)
}

func TestParseRegisterLvalueAssignment(t *testing.T) {
	script, err := parser.Parse([]byte("rax = 0x10;"), parser.NoResolver)
	require.NoError(t, err)
	assert.Equal(t, symstream.OpMov, opAt(t, script.Stream, 0))
	assert.Equal(t, symstream.KindRegister, script.Stream[2].Type)
}

func TestParseHexDecimalOctalBinaryLiterals(t *testing.T) {
	cases := map[string]uint64{
		"x = 0x1F;": 0x1F,
		"x = 0n42;": 42,
		"x = 0o17;": 15,
		"x = 0y101;": 5,
	}
	for src, want := range cases {
		script, err := parser.Parse([]byte(src), parser.NoResolver)
		require.NoError(t, err, src)
		assert.Equal(t, want, script.Stream[1].Value, src)
	}
}

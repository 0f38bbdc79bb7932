package token

import "testing"

func check(t *testing.T, got, want any) {
	t.Helper()
	if got != want {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", got, want)
	}
}

func tokens(src string) []Token {
	s := NewStream([]byte(src))
	var out []Token
	for {
		tk := s.Next()
		out = append(out, tk)
		if tk.Kind() == EndOfStream {
			return out
		}
	}
}

func TestHexDefault(t *testing.T) {
	toks := tokens("dd 0x100")
	check(t, toks[0].Kind(), Keyword)
	check(t, toks[0].Value(), "dd")
	check(t, toks[1].Kind(), Hex)
	check(t, toks[1].Value(), "100")
}

func TestBareHexDefault(t *testing.T) {
	toks := tokens("100")
	check(t, toks[0].Kind(), Hex)
	check(t, toks[0].Value(), "100")
}

func TestDecimalPrefix(t *testing.T) {
	toks := tokens("0n10")
	check(t, toks[0].Kind(), Decimal)
	check(t, toks[0].Value(), "10")
}

func TestOctalAndBinaryPrefix(t *testing.T) {
	toks := tokens("0o17 0y101")
	check(t, toks[0].Kind(), Octal)
	check(t, toks[0].Value(), "17")
	check(t, toks[1].Kind(), Binary)
	check(t, toks[1].Value(), "101")
}

func TestNumericGroupSeparatorStripped(t *testing.T) {
	toks := tokens("0x1000`0000")
	check(t, toks[0].Kind(), Hex)
	check(t, toks[0].Value(), "10000000")
}

func TestStringEscapes(t *testing.T) {
	toks := tokens(`"a\nb\tc\\d\"e"`)
	check(t, toks[0].Kind(), String)
	check(t, toks[0].Value(), "a\nb\tc\\d\"e")
}

func TestUnterminatedString(t *testing.T) {
	toks := tokens("\"abc\ndd 1")
	check(t, toks[0].Kind(), Unknown)
	// lexing resumes after the newline
	check(t, toks[1].Kind(), Keyword)
}

func TestCommentsSkipped(t *testing.T) {
	toks := tokens("1 // trailing\n/* block */ 2")
	check(t, toks[0].Kind(), Hex)
	check(t, toks[0].Value(), "1")
	check(t, toks[1].Kind(), Hex)
	check(t, toks[1].Value(), "2")
	check(t, toks[2].Kind(), EndOfStream)
}

func TestRegisterAtSyntax(t *testing.T) {
	toks := tokens("@rax == 0x1234")
	check(t, toks[0].Kind(), Register)
	check(t, toks[0].Value(), "rax")
	check(t, toks[1].Kind(), Special)
	check(t, toks[1].Value(), "==")
}

func TestBareRegisterName(t *testing.T) {
	toks := tokens("rax")
	check(t, toks[0].Kind(), Register)
}

func TestPseudoRegister(t *testing.T) {
	toks := tokens("$proc")
	check(t, toks[0].Kind(), PseudoRegister)
	check(t, toks[0].Value(), "$proc")
}

func TestUnknownPseudoRegister(t *testing.T) {
	toks := tokens("$bogus")
	check(t, toks[0].Kind(), Unknown)
}

func TestQualifiedIdentifier(t *testing.T) {
	toks := tokens("nt!PsActiveProcessHead")
	check(t, toks[0].Kind(), UnresolvedGlobalID)
	check(t, toks[0].HasBang, true)
	check(t, toks[0].Qualifier, "nt")
	check(t, toks[0].Name, "PsActiveProcessHead")
}

func TestPlainIdentifierUnresolved(t *testing.T) {
	toks := tokens("myvar")
	check(t, toks[0].Kind(), UnresolvedGlobalID)
	check(t, toks[0].HasBang, false)
}

func TestDigraphsGreedy(t *testing.T) {
	toks := tokens("a++ b-- c<<d")
	want := []string{"++", "--", "<<"}
	var got []string
	for _, tk := range toks {
		if tk.Kind() == Special {
			got = append(got, tk.Value())
		}
	}
	for i, w := range want {
		check(t, got[i], w)
	}
}

func TestPushback(t *testing.T) {
	s := NewStream([]byte("a b"))
	first := s.Next()
	s.Unget(first)
	again := s.Next()
	check(t, first.Value(), again.Value())
}

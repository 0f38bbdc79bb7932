// Package token implements the lexer of the debugger script engine: it
// turns a source-text buffer into a lazy, restartable sequence of Tokens.
package token

import "fmt"

// N.B. Kind is a struct instead of a bare int so that the Go compiler
// type-checks assignments the way a real enum would.
type Kind struct {
	k int
}

func (k Kind) String() string {
	if k.k < 0 || k.k >= len(kindNames) {
		return "Kind(?)"
	}
	return kindNames[k.k]
}

var (
	Unknown             = Kind{0}
	Keyword             = Kind{1}
	Special             = Kind{2}
	Register            = Kind{3}
	PseudoRegister      = Kind{4}
	Hex                 = Kind{5}
	Octal               = Kind{6}
	Decimal             = Kind{7}
	Binary              = Kind{8}
	String              = Kind{9}
	GlobalID            = Kind{10}
	LocalID             = Kind{11}
	UnresolvedGlobalID  = Kind{12}
	UnresolvedLocalID   = Kind{13}
	WhiteSpace          = Kind{14}
	Comment             = Kind{15}
	SemanticRule        = Kind{16}
	NonTerminal         = Kind{17}
	EndOfStream         = Kind{18}
	Temp                = Kind{19}
)

var kindNames = []string{
	"Unknown", "Keyword", "Special", "Register", "PseudoRegister",
	"Hex", "Octal", "Decimal", "Binary", "String",
	"GlobalId", "LocalId", "UnresolvedGlobalId", "UnresolvedLocalId",
	"WhiteSpace", "Comment", "SemanticRule", "NonTerminal",
	"EndOfStream", "Temp",
}

// Position is a byte offset plus a line/column pair, kept for error
// reporting; the lexer never uses it for anything semantic.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a lexed lexeme. It is immutable once emitted: the lexer never
// mutates a Token after returning it, and ownership is exclusive to the
// TokenStream that produced it.
type Token struct {
	kind  Kind
	value string
	pos   Position

	// HasBang records whether the spelling contained a '!', i.e. is a
	// potentially-qualified module!name identifier. Only meaningful for
	// the *Id kinds.
	HasBang bool

	// Qualifier/Name split the spelling on '!' when HasBang is set.
	Qualifier string
	Name      string
}

func newToken(kind Kind, value string, pos Position) Token {
	return Token{kind: kind, value: value, pos: pos}
}

func (t Token) Kind() Kind       { return t.kind }
func (t Token) Value() string    { return t.value }
func (t Token) Position() Position { return t.pos }

func (t Token) String() string {
	return fmt.Sprintf("{%s %q @%s}", t.kind, t.value, t.pos)
}

var EOFToken = newToken(EndOfStream, "", Position{})

package token

import (
	"strings"

	"hyperdbg/internal/guest"
)

// Lexer turns a source buffer into Tokens one at a time. It commits to a
// decision using at most one character of lookahead, in the style of the
// teacher's byte-at-a-time GetToken loop (asm/lexer.go); unlike the
// teacher, it never returns whitespace or comments — those are consumed
// and skipped internally, matching §4.1's contract.
type Lexer struct {
	src  []byte
	pos  int
	line int
	col  int
}

// NewLexer wraps a source buffer. The Lexer never mutates src.
func NewLexer(src []byte) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

func (lx *Lexer) peek() (byte, bool) {
	if lx.pos >= len(lx.src) {
		return 0, false
	}
	return lx.src[lx.pos], true
}

func (lx *Lexer) peekAt(n int) (byte, bool) {
	if lx.pos+n >= len(lx.src) {
		return 0, false
	}
	return lx.src[lx.pos+n], true
}

func (lx *Lexer) advance() byte {
	b := lx.src[lx.pos]
	lx.pos++
	if b == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return b
}

func (lx *Lexer) curPos() Position {
	return Position{Offset: lx.pos, Line: lx.line, Column: lx.col}
}

// Next returns the next significant Token, skipping whitespace and
// comments, or EOFToken once the buffer is exhausted.
func (lx *Lexer) Next() Token {
	for {
		lx.skipWhitespace()
		if lx.skipComment() {
			continue
		}
		break
	}

	start := lx.curPos()
	b, ok := lx.peek()
	if !ok {
		return EOFToken
	}

	switch {
	case b == '"':
		return lx.lexString(start)
	case b == '@':
		return lx.lexRegister(start)
	case b == '$':
		return lx.lexPseudoRegister(start)
	case isDigit(b):
		return lx.lexNumber(start)
	case isIdentStart(b):
		return lx.lexIdentOrKeywordOrRegister(start)
	default:
		return lx.lexOperator(start)
	}
}

func (lx *Lexer) skipWhitespace() {
	for {
		b, ok := lx.peek()
		if !ok {
			return
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			lx.advance()
			continue
		}
		return
	}
}

// skipComment consumes one comment ("// ..." to end of line, or
// "/* ... */") if one starts at the current position, and reports
// whether it did — the caller loops back to skip trailing whitespace
// and any further comments.
func (lx *Lexer) skipComment() bool {
	b, ok := lx.peek()
	if !ok || b != '/' {
		return false
	}
	n, ok := lx.peekAt(1)
	if !ok {
		return false
	}
	switch n {
	case '/':
		lx.advance()
		lx.advance()
		for {
			b, ok := lx.peek()
			if !ok || b == '\n' {
				return true
			}
			lx.advance()
		}
	case '*':
		lx.advance()
		lx.advance()
		for {
			b, ok := lx.peek()
			if !ok {
				return true // unterminated block comment: treat as ended at EOF
			}
			if b == '*' {
				if n2, ok2 := lx.peekAt(1); ok2 && n2 == '/' {
					lx.advance()
					lx.advance()
					return true
				}
			}
			lx.advance()
		}
	default:
		return false
	}
}

func (lx *Lexer) lexString(start Position) Token {
	lx.advance() // opening quote
	var sb strings.Builder
	for {
		b, ok := lx.peek()
		if !ok || b == '\n' {
			// Unclosed string: Unknown, position advanced past the newline.
			if ok && b == '\n' {
				lx.advance()
			}
			return newToken(Unknown, sb.String(), start)
		}
		if b == '"' {
			lx.advance()
			t := newToken(String, sb.String(), start)
			return t
		}
		if b == '\\' {
			lx.advance()
			e, ok := lx.peek()
			if !ok {
				return newToken(Unknown, sb.String(), start)
			}
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				sb.WriteByte(e)
			}
			lx.advance()
			continue
		}
		sb.WriteByte(b)
		lx.advance()
	}
}

func (lx *Lexer) lexRegister(start Position) Token {
	lx.advance() // '@'
	name := lx.scanIdentRunes()
	if _, ok := guest.Lookup(name); ok {
		return newToken(Register, name, start)
	}
	return newToken(Unknown, "@"+name, start)
}

func (lx *Lexer) lexPseudoRegister(start Position) Token {
	lx.advance() // '$'
	name := "$" + lx.scanIdentRunes()
	if _, ok := guest.LookupPseudo(name); ok {
		return newToken(PseudoRegister, name, start)
	}
	return newToken(Unknown, name, start)
}

func (lx *Lexer) scanIdentRunes() string {
	var sb strings.Builder
	for {
		b, ok := lx.peek()
		if !ok || !isIdentChar(b) {
			return sb.String()
		}
		sb.WriteByte(b)
		lx.advance()
	}
}

// lexIdentOrKeywordOrRegister handles bare (non-@) identifiers: keywords,
// bare register names (rax, eax, zf, ...), and global/local identifiers,
// including module!name forms.
func (lx *Lexer) lexIdentOrKeywordOrRegister(start Position) Token {
	var sb strings.Builder
	hasBang := false
	for {
		b, ok := lx.peek()
		if !ok || !(isIdentChar(b) || b == '!') {
			break
		}
		if b == '!' {
			hasBang = true
		}
		sb.WriteByte(b)
		lx.advance()
	}
	text := sb.String()

	if keywordSet[text] {
		return newToken(Keyword, text, start)
	}
	if !hasBang {
		if _, ok := guest.Lookup(text); ok {
			return newToken(Register, text, start)
		}
	}

	tok := newToken(UnresolvedGlobalID, text, start)
	tok.HasBang = hasBang
	if hasBang {
		parts := strings.SplitN(text, "!", 2)
		tok.Qualifier = parts[0]
		if len(parts) > 1 {
			tok.Name = parts[1]
		}
	}
	return tok
}

// lexNumber recognizes 0x/0o/0n/0y prefixed literals and bare hex-by-
// default sequences, stripping backtick digit-group separators.
func (lx *Lexer) lexNumber(start Position) Token {
	first := lx.advance() // known digit

	if first == '0' {
		if n, ok := lx.peek(); ok {
			switch n {
			case 'x', 'X':
				lx.advance()
				return lx.scanDigits(start, Hex, isHexDigit)
			case 'o', 'O':
				lx.advance()
				return lx.scanDigits(start, Octal, isOctalDigit)
			case 'n', 'N':
				lx.advance()
				return lx.scanDigits(start, Decimal, isDecimalDigit)
			case 'y', 'Y':
				lx.advance()
				return lx.scanDigits(start, Binary, isBinaryDigit)
			}
		}
	}

	// No recognized prefix: bare sequence is hex by default. Re-accumulate
	// starting from the first digit already consumed.
	var sb strings.Builder
	if first != '`' {
		sb.WriteByte(first)
	}
	for {
		b, ok := lx.peek()
		if !ok || !(isHexDigit(b) || b == '`') {
			break
		}
		if b != '`' {
			sb.WriteByte(b)
		}
		lx.advance()
	}
	return newToken(Hex, sb.String(), start)
}

func (lx *Lexer) scanDigits(start Position, kind Kind, valid func(byte) bool) Token {
	var sb strings.Builder
	for {
		b, ok := lx.peek()
		if !ok || !(valid(b) || b == '`') {
			break
		}
		if b != '`' {
			sb.WriteByte(b)
		}
		lx.advance()
	}
	return newToken(kind, sb.String(), start)
}

// operators, longest (digraph) match first.
var digraphs = []string{
	"==", "!=", "<=", ">=", "<<", ">>", "&&", "||",
	"++", "--", "+=", "-=", "*=", "/=",
}

var singleCharOperators = "+-*/%=<>&|^~!(){},;:"

func (lx *Lexer) lexOperator(start Position) Token {
	b, _ := lx.peek()
	for _, d := range digraphs {
		if b == d[0] {
			if n, ok := lx.peekAt(1); ok && n == d[1] {
				lx.advance()
				lx.advance()
				return newToken(Special, d, start)
			}
		}
	}
	if strings.IndexByte(singleCharOperators, b) >= 0 {
		lx.advance()
		return newToken(Special, string(b), start)
	}
	lx.advance()
	return newToken(Unknown, string(b), start)
}

func isDigit(b byte) bool      { return b >= '0' && b <= '9' }
func isHexDigit(b byte) bool   { return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') }
func isOctalDigit(b byte) bool { return b >= '0' && b <= '7' }
func isDecimalDigit(b byte) bool { return isDigit(b) }
func isBinaryDigit(b byte) bool  { return b == '0' || b == '1' }

func isIdentStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' || b == '.'
}

func isIdentChar(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

var keywordSet = map[string]bool{
	"if": true, "else": true, "while": true, "do": true, "for": true,
	"printf": true, "eb": true, "ed": true, "eq": true, "poi": true,
	"hi": true, "low": true, "strlen": true, "wcslen": true,
	"disableevent": true, "enableevent": true, "pause": true, "flush": true,
	"event_sc": true, "event_inject": true,
	"dd": true,
}

package token

// Stream wraps a Lexer with one-token pushback, the way asm/lexer.go's
// Lexer.unget supports a single level of lookahead for its parser. A
// Token is owned exclusively by the Stream that produced it until
// consumed.
type Stream struct {
	lx     *Lexer
	pushed []Token
}

func NewStream(src []byte) *Stream {
	return &Stream{lx: NewLexer(src)}
}

// Next returns the next Token, consuming a pushed-back one first.
func (s *Stream) Next() Token {
	if n := len(s.pushed); n > 0 {
		t := s.pushed[n-1]
		s.pushed = s.pushed[:n-1]
		return t
	}
	return s.lx.Next()
}

// Peek returns the next Token without consuming it.
func (s *Stream) Peek() Token {
	t := s.Next()
	s.Unget(t)
	return t
}

// Unget pushes a token back onto the stream; it will be the next Token
// returned by Next.
func (s *Stream) Unget(t Token) {
	s.pushed = append(s.pushed, t)
}

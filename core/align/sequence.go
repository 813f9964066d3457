package align

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is a half-open byte interval [Start, End) over one rendering.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the length of the span in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty reports whether the span covers no bytes.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// Contains reports whether offset lies inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Token is a maximal run of letters and digits.
type Token struct {
	Span
	Text string `json:"text"`
}

// isTokenRune reports whether r can be part of a token.
func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// sequence scans one rendering for tokens. The cursor only moves forward.
type sequence struct {
	text    string
	cursor  int
	escapes []string
}

func newSequence(text string, escapes []string) *sequence {
	return &sequence{text: text, escapes: escapes}
}

// next returns the next token, or false once the text is exhausted.
func (s *sequence) next() (Token, bool) {
	// Skip symbols. Escapes are consumed whole so that their letters never
	// start a token.
	for s.cursor < len(s.text) {
		r, size := utf8.DecodeRuneInString(s.text[s.cursor:])
		if isTokenRune(r) {
			break
		}
		if n := s.escapeAt(s.cursor); n > 0 {
			s.cursor += n
			continue
		}
		s.cursor += size
	}
	if s.cursor >= len(s.text) {
		return Token{}, false
	}

	start := s.cursor
	for s.cursor < len(s.text) {
		r, size := utf8.DecodeRuneInString(s.text[s.cursor:])
		if !isTokenRune(r) {
			break
		}
		s.cursor += size
	}
	return Token{
		Span: Span{Start: start, End: s.cursor},
		Text: s.text[start:s.cursor],
	}, true
}

// escapeAt returns the length of the escape starting at offset, or 0.
func (s *sequence) escapeAt(offset int) int {
	rest := s.text[offset:]
	for _, esc := range s.escapes {
		if esc != "" && strings.HasPrefix(rest, esc) {
			return len(esc)
		}
	}
	return 0
}

// Tokenize returns every token of text, skipping the given escapes the
// same way the aligner does.
func Tokenize(text string, escapes ...string) []Token {
	seq := newSequence(text, escapes)
	var tokens []Token
	for {
		tok, ok := seq.next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

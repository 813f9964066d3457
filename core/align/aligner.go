package align

import (
	"github.com/FocuswithJustin/textalign/core/encoding"
)

// Side selects one of the two renderings held by an Aligner.
type Side int

const (
	// Base is the first rendering passed to New.
	Base Side = iota
	// Alternate is the second rendering passed to New.
	Alternate
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == Base {
		return Alternate
	}
	return Base
}

func (s Side) String() string {
	if s == Base {
		return "base"
	}
	return "alternate"
}

// Config controls how renderings are scanned and judged.
type Config struct {
	// Escapes are multi-character symbols skipped as a unit while scanning
	// between tokens. They should begin with a non-alphanumeric character.
	Escapes []string

	// AllowLengthMismatch reports success when every compared token matched
	// but one rendering has tokens left over. By default that is a failure.
	AllowLengthMismatch bool
}

// DefaultConfig returns a configuration that skips the round bracket
// escapes and treats unequal token counts as a failure.
func DefaultConfig() Config {
	return Config{
		Escapes: encoding.RoundBracketEscapes(),
	}
}

// Aligner holds the verified token correspondence between two renderings.
type Aligner struct {
	texts    [2]string
	maps     [2]posMap
	aligns   bool
	stopped  bool
	mismatch [2]int
}

// New aligns base and alternate with the default configuration.
func New(base, alternate string) *Aligner {
	return NewWithConfig(base, alternate, DefaultConfig())
}

// NewWithConfig aligns base and alternate. Alignment never fails with an
// error: check Aligns before relying on offsets past the verified prefix.
func NewWithConfig(base, alternate string, config Config) *Aligner {
	a := &Aligner{
		texts:    [2]string{base, alternate},
		mismatch: [2]int{-1, -1},
	}
	a.align(config)
	return a
}

func (a *Aligner) align(config Config) {
	seqs := [2]*sequence{
		newSequence(a.texts[Base], config.Escapes),
		newSequence(a.texts[Alternate], config.Escapes),
	}

	for {
		tb, okB := seqs[Base].next()
		ta, okA := seqs[Alternate].next()

		switch {
		case !okB && !okA:
			a.aligns = true
			return
		case !okB || !okA:
			a.stop(tokenStart(tb, okB, a.texts[Base]), tokenStart(ta, okA, a.texts[Alternate]))
			a.aligns = config.AllowLengthMismatch
			return
		case tb.Text != ta.Text:
			a.stop(tb.Start, ta.Start)
			a.aligns = false
			return
		}

		a.maps[Base] = append(a.maps[Base], entry{token: tb, other: ta.Span})
		a.maps[Alternate] = append(a.maps[Alternate], entry{token: ta, other: tb.Span})
	}
}

func (a *Aligner) stop(base, alternate int) {
	a.stopped = true
	a.mismatch = [2]int{base, alternate}
}

// tokenStart is the offset where scanning stopped on one side: the start of
// the unmatched token, or the end of an exhausted text.
func tokenStart(tok Token, ok bool, text string) int {
	if ok {
		return tok.Start
	}
	return len(text)
}

// Aligns reports whether both renderings reduce to the same token sequence.
func (a *Aligner) Aligns() bool {
	return a.aligns
}

// Len returns the number of aligned token pairs.
func (a *Aligner) Len() int {
	return len(a.maps[Base])
}

// MismatchAt returns the offsets in each rendering where scanning stopped
// early, either at the first differing tokens or where one side ran out of
// tokens. ok is false when both renderings were consumed completely.
func (a *Aligner) MismatchAt() (base, alternate int, ok bool) {
	return a.mismatch[Base], a.mismatch[Alternate], a.stopped
}

// Text returns the full text of one side.
func (a *Aligner) Text(side Side) string {
	return a.texts[side]
}

// TextOf returns the text covered by span on the given side. The span is
// clamped to the text bounds.
func (a *Aligner) TextOf(side Side, span Span) string {
	text := a.texts[side]
	start := min(max(span.Start, 0), len(text))
	end := min(max(span.End, start), len(text))
	return text[start:end]
}

// Tokens returns the aligned tokens of one side in order.
func (a *Aligner) Tokens(side Side) []Token {
	m := a.maps[side]
	out := make([]Token, len(m))
	for i, e := range m {
		out[i] = e.token
	}
	return out
}

// PositionInOther maps an offset on side from to the span of the
// corresponding token on the other side. The offset need not be a token
// boundary: the nearest aligned token starting at or before it is used.
//
// Offsets before the first aligned token map to the untokenized prefix of
// the other side, [0, start of its first aligned token). When nothing was
// aligned the prefix is the whole other text.
func (a *Aligner) PositionInOther(from Side, offset int) Span {
	m := a.maps[from]
	if e, ok := m.floor(offset); ok {
		return e.other
	}
	if len(m) > 0 {
		return Span{Start: 0, End: m[0].other.Start}
	}
	return Span{Start: 0, End: len(a.texts[from.Other()])}
}

// PriorToken returns the other-side span of the last aligned token starting
// strictly before offset on side from.
func (a *Aligner) PriorToken(from Side, offset int) (Span, bool) {
	e, ok := a.maps[from].lower(offset)
	return e.other, ok
}

// NextToken returns the other-side span of the first aligned token starting
// strictly after offset on side from.
func (a *Aligner) NextToken(from Side, offset int) (Span, bool) {
	e, ok := a.maps[from].higher(offset)
	return e.other, ok
}

package overlap

import (
	"iter"
	"strconv"

	"github.com/FocuswithJustin/textalign/core/errors"
)

// Config controls optional Index behaviour.
type Config[S Span] struct {
	// Compare orders spans that share identical bounds. Nil keeps
	// insertion order.
	Compare func(a, b S) int
}

// Index is an interval tree of spans over one text.
type Index[S Span] struct {
	text    string
	agree   AgreeFunc[S]
	compare func(a, b S) int
	root    *node[S]
	size    int
}

// NewIndex creates an empty index over text. A nil agree accepts every
// candidate.
func NewIndex[S Span](text string, agree AgreeFunc[S]) *Index[S] {
	return NewIndexWithConfig(text, agree, Config[S]{})
}

// NewIndexWithConfig creates an empty index over text with config.
func NewIndexWithConfig[S Span](text string, agree AgreeFunc[S], config Config[S]) *Index[S] {
	if agree == nil {
		agree = AgreeAll[S]
	}
	return &Index[S]{
		text:    text,
		agree:   agree,
		compare: config.Compare,
	}
}

// Insert adds a span. Spans must satisfy 0 <= Start() <= End(); they are
// not checked against the text length. Spans with identical bounds are
// all kept.
func (x *Index[S]) Insert(s S) error {
	start, end := s.Start(), s.End()
	if start < 0 {
		return errors.NewValidation("start", strconv.Itoa(start), "span start must not be negative")
	}
	if end < start {
		return errors.NewValidation("end", strconv.Itoa(end), "span end precedes start "+strconv.Itoa(start))
	}
	x.root = insert(x.root, s, x.compare)
	x.size++
	return nil
}

// InsertAll adds every span, stopping at the first invalid one.
func (x *Index[S]) InsertAll(spans []S) error {
	for i, s := range spans {
		if err := x.Insert(s); err != nil {
			return errors.Wrapf(err, "span %d", i)
		}
	}
	return nil
}

// Len returns the number of spans in the index.
func (x *Index[S]) Len() int {
	return x.size
}

// Text returns the indexed text.
func (x *Index[S]) Text() string {
	return x.text
}

// TextOf returns the text covered by s, clamped to the text bounds.
func (x *Index[S]) TextOf(s S) string {
	start := min(max(s.Start(), 0), len(x.text))
	end := min(max(s.End(), start), len(x.text))
	return x.text[start:end]
}

// All yields every span ordered by start, end and bucket order.
func (x *Index[S]) All() iter.Seq[S] {
	return func(yield func(S) bool) {
		walk(x.root, func(n *node[S]) bool {
			for _, s := range n.spans {
				if !yield(s) {
					return false
				}
			}
			return true
		})
	}
}

// BestOverlap returns every agreeing span that shares the most bytes with
// q. ok is false when no agreeing span overlaps q at all; empty spans,
// including an empty q, never overlap anything.
func (x *Index[S]) BestOverlap(q S) (best *Overlap[S], ok bool) {
	qs, qe := q.Start(), q.End()
	overlapping(x.root, qs, qe, func(n *node[S]) {
		amount := Amount(qs, qe, n.start, n.end)
		if amount <= 0 || (best != nil && amount < best.Amount) {
			return
		}
		for _, s := range n.spans {
			if !x.agree(s, q) {
				continue
			}
			if best == nil || amount > best.Amount {
				best = &Overlap[S]{Query: q, Amount: amount}
			}
			best.Spans = append(best.Spans, s)
		}
	})
	return best, best != nil
}

// Overlapping returns every agreeing span that overlaps q, with the
// number of bytes it shares, ordered by start and end.
func (x *Index[S]) Overlapping(q S) []Candidate[S] {
	qs, qe := q.Start(), q.End()
	var out []Candidate[S]
	overlapping(x.root, qs, qe, func(n *node[S]) {
		amount := Amount(qs, qe, n.start, n.end)
		if amount <= 0 {
			return
		}
		for _, s := range n.spans {
			if x.agree(s, q) {
				out = append(out, Candidate[S]{Span: s, Amount: amount})
			}
		}
	})
	return out
}

// Package annotation provides the annotated span type exchanged between
// tools, its XML form and a compact query syntax.
package annotation

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/textalign/core/overlap"
)

// Span is a typed annotation over [CharStart, CharEnd) of a text.
type Span struct {
	// ID is the unique identifier within the annotation set.
	ID string `json:"id"`

	// Type is the annotation label (e.g., "PERSON", "NP", "TOKEN").
	// An empty type agrees with every other span.
	Type string `json:"type,omitempty"`

	// CharStart is the UTF-8 byte offset where the span starts.
	CharStart int `json:"char_start"`

	// CharEnd is the UTF-8 byte offset where the span ends (exclusive).
	CharEnd int `json:"char_end"`

	// Text is the covered text, when known.
	Text string `json:"text,omitempty"`

	// Attributes contains any further attributes from the source.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Start returns the start offset.
func (s *Span) Start() int { return s.CharStart }

// End returns the exclusive end offset.
func (s *Span) End() int { return s.CharEnd }

// Length returns the length of the span in bytes.
func (s *Span) Length() int {
	return s.CharEnd - s.CharStart
}

// AgreesWith reports whether s may be matched against other: true when
// either type is empty or both types are equal, ignoring case.
func (s *Span) AgreesWith(other *Span) bool {
	return s.Type == "" || other.Type == "" || strings.EqualFold(s.Type, other.Type)
}

// String renders the span in query syntax, e.g. PERSON[17,32).
func (s *Span) String() string {
	return fmt.Sprintf("%s[%d,%d)", s.Type, s.CharStart, s.CharEnd)
}

// CompareByID orders spans by ID.
func CompareByID(a, b *Span) int {
	return strings.Compare(a.ID, b.ID)
}

// NewIndex builds an overlap index of spans over text. Spans agree by
// type and spans with identical bounds are ordered by ID.
func NewIndex(text string, spans []*Span) (*overlap.Index[*Span], error) {
	idx := overlap.NewIndexWithConfig(text, overlap.AgreeByMethod[*Span], overlap.Config[*Span]{
		Compare: CompareByID,
	})
	if err := idx.InsertAll(spans); err != nil {
		return nil, err
	}
	return idx, nil
}

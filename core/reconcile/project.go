// Package reconcile composes alignment and overlap lookup: spans made on
// one rendering of a sentence are projected onto the other rendering and
// matched against the annotations made there.
package reconcile

import (
	"github.com/FocuswithJustin/textalign/core/align"
)

// Project maps span s on side from to the other side of a. The result
// starts at the counterpart of the token covering s.Start and ends where
// the counterpart of the token covering the last byte of s ends.
//
// ok is false for empty spans and for spans that reach past the verified
// prefix of a failed alignment.
func Project(a *align.Aligner, from align.Side, s align.Span) (align.Span, bool) {
	if s.Start < 0 || s.End <= s.Start {
		return align.Span{}, false
	}
	if base, alternate, stopped := a.MismatchAt(); stopped {
		limit := base
		if from == align.Alternate {
			limit = alternate
		}
		if s.End > limit {
			return align.Span{}, false
		}
	}

	first := a.PositionInOther(from, s.Start)
	last := a.PositionInOther(from, s.End-1)
	if last.End < first.Start {
		return align.Span{}, false
	}
	return align.Span{Start: first.Start, End: last.End}, true
}

package reconcile

import (
	"context"
	"maps"

	"github.com/FocuswithJustin/textalign/core/align"
	"github.com/FocuswithJustin/textalign/core/annotation"
	"github.com/FocuswithJustin/textalign/core/overlap"
	"github.com/FocuswithJustin/textalign/internal/logging"
)

// Reconciler matches annotations made on the alternate rendering against
// annotations made on the base rendering of the same sentence.
type Reconciler struct {
	aligner *align.Aligner
	index   *overlap.Index[*annotation.Span]
}

// NewReconciler indexes baseSpans over the base text of a.
func NewReconciler(a *align.Aligner, baseSpans []*annotation.Span) (*Reconciler, error) {
	index, err := annotation.NewIndex(a.Text(align.Base), baseSpans)
	if err != nil {
		return nil, err
	}
	return &Reconciler{aligner: a, index: index}, nil
}

// Aligner returns the alignment the reconciler projects through.
func (r *Reconciler) Aligner() *align.Aligner {
	return r.aligner
}

// Index returns the base-side annotation index.
func (r *Reconciler) Index() *overlap.Index[*annotation.Span] {
	return r.index
}

// ProjectSpan returns a copy of s, an annotation on the alternate
// rendering, moved onto the base rendering.
func (r *Reconciler) ProjectSpan(ctx context.Context, s *annotation.Span) (*annotation.Span, bool) {
	proj, ok := Project(r.aligner, align.Alternate, align.Span{Start: s.CharStart, End: s.CharEnd})
	logging.Projection(ctx, s.ID, align.Alternate.String(), ok,
		"start", proj.Start,
		"end", proj.End,
	)
	if !ok {
		return nil, false
	}
	return &annotation.Span{
		ID:         s.ID,
		Type:       s.Type,
		CharStart:  proj.Start,
		CharEnd:    proj.End,
		Text:       r.aligner.TextOf(align.Base, proj),
		Attributes: maps.Clone(s.Attributes),
	}, true
}

// Match projects s onto the base rendering and returns the base
// annotations that agree with it and overlap it the most.
func (r *Reconciler) Match(ctx context.Context, s *annotation.Span) (*overlap.Overlap[*annotation.Span], bool) {
	query, ok := r.ProjectSpan(ctx, s)
	if !ok {
		return nil, false
	}
	best, ok := r.index.BestOverlap(query)
	amount := 0
	if ok {
		amount = best.Amount
	}
	logging.OverlapQuery(ctx, query.CharStart, query.CharEnd, amount, best.NumOverlappingSpans(),
		"span_id", s.ID,
	)
	return best, ok
}

package overlap

// Span is a half-open interval [Start(), End()) over the indexed text.
type Span interface {
	Start() int
	End() int
}

// Agreer is a span that decides for itself which query spans it is
// compatible with.
type Agreer[S any] interface {
	Span
	AgreesWith(other S) bool
}

// AgreeFunc reports whether candidate may be matched against query.
type AgreeFunc[S Span] func(candidate, query S) bool

// AgreeAll accepts every candidate.
func AgreeAll[S Span](candidate, query S) bool {
	return true
}

// AgreeByMethod delegates to the candidate's AgreesWith method.
func AgreeByMethod[S Agreer[S]](candidate, query S) bool {
	return candidate.AgreesWith(query)
}

// Amount returns the number of bytes shared by [aStart,aEnd) and
// [bStart,bEnd). Disjoint or empty intervals share zero bytes.
func Amount(aStart, aEnd, bStart, bEnd int) int {
	n := min(aEnd, bEnd) - max(aStart, bStart)
	if n < 0 {
		return 0
	}
	return n
}

// Overlap is the result of a best-overlap query.
type Overlap[S Span] struct {
	// Query is the span that was looked up.
	Query S
	// Amount is the number of bytes each of Spans shares with Query.
	Amount int
	// Spans holds every agreeing span tied at Amount, ordered by start,
	// end and then the index's bucket order.
	Spans []S
}

// NumOverlappingSpans returns the number of spans tied for the best overlap.
func (o *Overlap[S]) NumOverlappingSpans() int {
	if o == nil {
		return 0
	}
	return len(o.Spans)
}

// Candidate is one agreeing span that overlaps a query.
type Candidate[S Span] struct {
	Span   S
	Amount int
}

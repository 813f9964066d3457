// Package overlap indexes annotated spans over one text and answers
// "which existing spans best overlap this span" queries.
//
// Spans are stand-off: half-open byte intervals [start, end) that may nest,
// cross or share identical bounds. The index is an interval tree ordered by
// (start, end); each node holds every span with exactly those bounds and
// the largest end offset in its subtree, so a query visits only subtrees
// that can reach it.
//
// A query keeps the candidates accepted by the index's agreement predicate,
// scores each by the number of bytes shared with the query and returns all
// candidates tied for the highest score. Ties are never broken.
//
// # Example
//
//	idx := overlap.NewIndex(text, overlap.AgreeByMethod[*Entity])
//	for _, e := range entities {
//	    if err := idx.Insert(e); err != nil {
//	        return err
//	    }
//	}
//	if best, ok := idx.BestOverlap(query); ok {
//	    fmt.Println(best.Amount, best.Spans)
//	}
//
// An Index is not synchronized. Finish all inserts before sharing it
// between goroutines for queries.
package overlap

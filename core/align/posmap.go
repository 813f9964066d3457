package align

import "sort"

// entry maps one aligned token to its counterpart on the other side.
type entry struct {
	token Token
	other Span
}

// posMap holds entries in strictly increasing token start order, the order
// in which the aligner consumes tokens.
type posMap []entry

// floor returns the entry with the largest start <= offset.
func (m posMap) floor(offset int) (entry, bool) {
	i := sort.Search(len(m), func(i int) bool { return m[i].token.Start > offset })
	if i == 0 {
		return entry{}, false
	}
	return m[i-1], true
}

// lower returns the entry with the largest start < offset.
func (m posMap) lower(offset int) (entry, bool) {
	i := sort.Search(len(m), func(i int) bool { return m[i].token.Start >= offset })
	if i == 0 {
		return entry{}, false
	}
	return m[i-1], true
}

// higher returns the entry with the smallest start > offset.
func (m posMap) higher(offset int) (entry, bool) {
	i := sort.Search(len(m), func(i int) bool { return m[i].token.Start > offset })
	if i == len(m) {
		return entry{}, false
	}
	return m[i], true
}

package overlap

import "sort"

// node is an AVL tree node keyed by (start, end). Every span with exactly
// these bounds lives in spans.
type node[S Span] struct {
	start  int
	end    int
	spans  []S
	maxEnd int // largest end in this subtree
	height int
	left   *node[S]
	right  *node[S]
}

func newNode[S Span](s S) *node[S] {
	return &node[S]{
		start:  s.Start(),
		end:    s.End(),
		spans:  []S{s},
		maxEnd: s.End(),
		height: 1,
	}
}

func height[S Span](n *node[S]) int {
	if n == nil {
		return 0
	}
	return n.height
}

// update recomputes height and maxEnd from the children.
func (n *node[S]) update() {
	n.height = 1 + max(height(n.left), height(n.right))
	n.maxEnd = n.end
	if n.left != nil && n.left.maxEnd > n.maxEnd {
		n.maxEnd = n.left.maxEnd
	}
	if n.right != nil && n.right.maxEnd > n.maxEnd {
		n.maxEnd = n.right.maxEnd
	}
}

func (n *node[S]) balance() int {
	return height(n.left) - height(n.right)
}

func rotateRight[S Span](n *node[S]) *node[S] {
	l := n.left
	n.left = l.right
	l.right = n
	n.update()
	l.update()
	return l
}

func rotateLeft[S Span](n *node[S]) *node[S] {
	r := n.right
	n.right = r.left
	r.left = n
	n.update()
	r.update()
	return r
}

func rebalance[S Span](n *node[S]) *node[S] {
	n.update()
	switch b := n.balance(); {
	case b > 1:
		if n.left.balance() < 0 {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	case b < -1:
		if n.right.balance() > 0 {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	}
	return n
}

func compareBounds(aStart, aEnd, bStart, bEnd int) int {
	switch {
	case aStart < bStart:
		return -1
	case aStart > bStart:
		return 1
	case aEnd < bEnd:
		return -1
	case aEnd > bEnd:
		return 1
	}
	return 0
}

// insert adds s below n and returns the new subtree root.
func insert[S Span](n *node[S], s S, compare func(a, b S) int) *node[S] {
	if n == nil {
		return newNode(s)
	}
	switch c := compareBounds(s.Start(), s.End(), n.start, n.end); {
	case c < 0:
		n.left = insert(n.left, s, compare)
	case c > 0:
		n.right = insert(n.right, s, compare)
	default:
		n.add(s, compare)
		return n
	}
	return rebalance(n)
}

// add places s in the bucket. Without a comparison spans keep insertion
// order; with one, s goes after every span that does not sort after it.
func (n *node[S]) add(s S, compare func(a, b S) int) {
	if compare == nil {
		n.spans = append(n.spans, s)
		return
	}
	i := sort.Search(len(n.spans), func(i int) bool { return compare(n.spans[i], s) > 0 })
	n.spans = append(n.spans, s)
	copy(n.spans[i+1:], n.spans[i:])
	n.spans[i] = s
}

// overlapping calls fn, in (start, end) order, for every node whose bounds
// satisfy start < qe && end > qs.
func overlapping[S Span](n *node[S], qs, qe int, fn func(*node[S])) {
	if n == nil || n.maxEnd <= qs {
		return
	}
	overlapping(n.left, qs, qe, fn)
	if n.start >= qe {
		return
	}
	if n.end > qs {
		fn(n)
	}
	overlapping(n.right, qs, qe, fn)
}

// walk calls fn for every node in order until fn returns false.
func walk[S Span](n *node[S], fn func(*node[S]) bool) bool {
	if n == nil {
		return true
	}
	return walk(n.left, fn) && fn(n) && walk(n.right, fn)
}

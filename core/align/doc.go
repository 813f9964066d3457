// Package align establishes a character-position correspondence between two
// renderings of the same sentence.
//
// A typical pair is the text a dependency parser reconstructs from its
// output (with brackets escaped as "-LRB-" and "-RRB-") and the raw input
// line. Both renderings are reduced to tokens, the maximal runs of letters
// and digits, and the tokens are compared left to right. Every matching pair
// is recorded in both directions so that an offset on one side can be
// mapped to a token span on the other.
//
// # Usage
//
//	a := align.New(parsed, raw)
//	if !a.Aligns() {
//	    // only the prefix before a.MismatchAt() is reliable
//	}
//	span := a.PositionInOther(align.Base, 43)
//	fmt.Println(a.TextOf(align.Alternate, span))
//
// An Aligner is fully computed by New and never changes afterwards, so it
// may be shared between goroutines without locking.
package align

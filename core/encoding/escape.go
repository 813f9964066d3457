// Package encoding provides the escaping conventions that separate a parser
// rendering of a sentence from its raw text, plus XML escaping for
// annotation output.
package encoding

import (
	"strings"
)

// Penn Treebank bracket escapes. Parsers emit these as standalone tokens in
// place of the bracket characters.
const (
	LRB = "-LRB-" // (
	RRB = "-RRB-" // )
	LSB = "-LSB-" // [
	RSB = "-RSB-" // ]
	LCB = "-LCB-" // {
	RCB = "-RCB-" // }
)

// bracketPairs maps each escape to the bracket it replaces.
var bracketPairs = []struct {
	escape  string
	bracket string
}{
	{LRB, "("},
	{RRB, ")"},
	{LSB, "["},
	{RSB, "]"},
	{LCB, "{"},
	{RCB, "}"},
}

// RoundBracketEscapes returns the escapes the aligner skips by default.
func RoundBracketEscapes() []string {
	return []string{LRB, RRB}
}

// AllBracketEscapes returns every Treebank bracket escape.
func AllBracketEscapes() []string {
	out := make([]string, len(bracketPairs))
	for i, p := range bracketPairs {
		out[i] = p.escape
	}
	return out
}

// IsBracketEscape reports whether token is one of the Treebank escapes.
func IsBracketEscape(token string) bool {
	for _, p := range bracketPairs {
		if p.escape == token {
			return true
		}
	}
	return false
}

// EscapeBracketToken returns the Treebank escape for a single bracket token,
// or token unchanged.
func EscapeBracketToken(token string) string {
	for _, p := range bracketPairs {
		if p.bracket == token {
			return p.escape
		}
	}
	return token
}

// UnescapeBracketToken returns the bracket for a Treebank escape, or token
// unchanged.
func UnescapeBracketToken(token string) string {
	for _, p := range bracketPairs {
		if p.escape == token {
			return p.bracket
		}
	}
	return token
}

// UnescapeBrackets replaces every Treebank escape in s with its bracket.
// Offsets change; use the aligner to relate the two strings.
func UnescapeBrackets(s string) string {
	if !strings.Contains(s, "-") {
		return s
	}
	for _, p := range bracketPairs {
		s = strings.ReplaceAll(s, p.escape, p.bracket)
	}
	return s
}

// EscapeXMLText escapes only the basic XML entities for text content.
func EscapeXMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EscapeXMLAttr escapes text for use in XML attributes.
// Includes quote escaping in addition to basic XML entities.
func EscapeXMLAttr(s string) string {
	s = EscapeXMLText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

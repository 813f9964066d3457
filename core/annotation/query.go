package annotation

import (
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/textalign/core/errors"
)

// queryGrammar is the participle grammar for span queries.
// Examples: "[0,20)", "PERSON[17,32)"
//
//nolint:govet // participle grammar tags are not standard struct tags
type queryGrammar struct {
	Type  string `@Ident?`
	Open  string `"["`
	Start int    `@Int`
	Comma string `","`
	End   int    `@Int`
	Close string `")"`
}

// queryLexer defines the lexer for span queries.
var queryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.\-]*`},
	{Name: "Punct", Pattern: `[\[\],)]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// queryParser is the participle parser for span queries.
var queryParser = participle.MustBuild[queryGrammar](
	participle.Lexer(queryLexer),
	participle.Elide("Whitespace"),
)

// ParseQuery parses a span in query syntax: an optional type followed by a
// half-open interval, e.g. "PERSON[17,32)" or "[0, 20)".
func ParseQuery(s string) (*Span, error) {
	g, err := queryParser.ParseString("", s)
	if err != nil {
		return nil, errors.NewParse("query", 0, err.Error())
	}
	if g.End < g.Start {
		return nil, errors.NewValidation("query", s, "end "+strconv.Itoa(g.End)+" precedes start "+strconv.Itoa(g.Start))
	}
	return &Span{
		ID:        "query",
		Type:      g.Type,
		CharStart: g.Start,
		CharEnd:   g.End,
	}, nil
}

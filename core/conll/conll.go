// Package conll reads dependency-parser output in the CoNLL family of
// formats and rebuilds the sentence renderings the aligner consumes.
//
// Each token is one line of tab-separated columns, the first being the
// token index and the second the word form. Sentences are separated by
// blank lines. Lines starting with '#' before a sentence are comments.
// CoNLL-U multiword ranges ("3-4") are kept apart from the tokens and
// stand in for the words they cover in the rendering. Empty nodes ("5.1")
// are skipped.
package conll

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/textalign/core/encoding"
	terrors "github.com/FocuswithJustin/textalign/core/errors"
)

const format = "conll"

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// Token is one token row.
type Token struct {
	// ID is the value of the index column ("1", "3-4").
	ID string `json:"id"`

	// Form is the word form as written by the parser, with brackets
	// escaped.
	Form string `json:"form"`

	// Columns holds every column of the row, including ID and Form.
	Columns []string `json:"columns"`
}

// Column returns the i-th column (0-based), or "" when absent.
func (t Token) Column(i int) string {
	if i < 0 || i >= len(t.Columns) {
		return ""
	}
	return t.Columns[i]
}

// Sentence is one blank-line delimited block.
type Sentence struct {
	// Line is the 1-based line number of the first row.
	Line int `json:"line"`

	// Comments holds the comment lines without the leading '#'.
	Comments []string `json:"comments,omitempty"`

	// Tokens are the syntactic word rows in order.
	Tokens []Token `json:"tokens"`

	// Ranges are the multiword token rows.
	Ranges []Token `json:"ranges,omitempty"`
}

// Forms returns the word forms in order.
func (s *Sentence) Forms() []string {
	forms := make([]string, len(s.Tokens))
	for i, t := range s.Tokens {
		forms[i] = t.Form
	}
	return forms
}

// SurfaceForms returns the forms as written in the sentence: a multiword
// range form replaces the syntactic words it covers.
func (s *Sentence) SurfaceForms() []string {
	ranges := make(map[int]Token, len(s.Ranges))
	for _, r := range s.Ranges {
		if lo, _, ok := rangeBounds(r.ID); ok {
			ranges[lo] = r
		}
	}

	forms := make([]string, 0, len(s.Tokens))
	skipTo := 0
	for _, t := range s.Tokens {
		id, err := strconv.Atoi(t.ID)
		if err != nil {
			forms = append(forms, t.Form)
			continue
		}
		if id <= skipTo {
			continue
		}
		if r, ok := ranges[id]; ok {
			_, hi, _ := rangeBounds(r.ID)
			forms = append(forms, r.Form)
			skipTo = hi
			continue
		}
		forms = append(forms, t.Form)
	}
	return forms
}

// rangeBounds parses a multiword index such as "3-4".
func rangeBounds(id string) (lo, hi int, ok bool) {
	a, b, found := strings.Cut(id, "-")
	if !found {
		return 0, 0, false
	}
	lo, errLo := strconv.Atoi(a)
	hi, errHi := strconv.Atoi(b)
	if errLo != nil || errHi != nil || hi < lo {
		return 0, 0, false
	}
	return lo, hi, true
}

// Text returns the parser rendering: surface forms joined by single
// spaces, with bracket escapes left in place.
func (s *Sentence) Text() string {
	return strings.Join(s.SurfaceForms(), " ")
}

// UnescapedText returns the rendering with bracket escapes replaced by the
// brackets themselves.
func (s *Sentence) UnescapedText() string {
	forms := s.SurfaceForms()
	for i, f := range forms {
		forms[i] = encoding.UnescapeBracketToken(f)
	}
	return strings.Join(forms, " ")
}

// Reader reads sentences one at a time.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// Next returns the next sentence, or io.EOF when the input is exhausted.
func (r *Reader) Next() (*Sentence, error) {
	var s *Sentence
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimRight(r.scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			if s != nil && len(s.Tokens)+len(s.Ranges) > 0 {
				return s, nil
			}
			continue
		}
		if s == nil {
			s = &Sentence{Line: r.line}
		}
		if strings.HasPrefix(line, "#") {
			if len(s.Tokens)+len(s.Ranges) > 0 {
				return nil, terrors.NewParse(format, r.line, "comment inside a sentence")
			}
			s.Comments = append(s.Comments, strings.TrimSpace(strings.TrimPrefix(line, "#")))
			continue
		}

		tok, err := r.parseRow(line)
		if err != nil {
			return nil, err
		}
		switch {
		case strings.Contains(tok.ID, "-"):
			s.Ranges = append(s.Ranges, tok)
		case strings.Contains(tok.ID, "."):
			// empty node: not part of the surface sentence
		default:
			s.Tokens = append(s.Tokens, tok)
		}
	}
	if err := r.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, terrors.NewParse(format, r.line+1, "line too long")
		}
		return nil, terrors.NewIO("read", "", err)
	}
	if s != nil && len(s.Tokens)+len(s.Ranges) > 0 {
		return s, nil
	}
	return nil, io.EOF
}

func (r *Reader) parseRow(line string) (Token, error) {
	cols := strings.Split(line, "\t")
	if len(cols) < 2 {
		return Token{}, terrors.NewParse(format, r.line, "expected at least 2 tab-separated columns")
	}
	id := strings.TrimSpace(cols[0])
	form := cols[1]
	if id == "" {
		return Token{}, terrors.NewParse(format, r.line, "empty token index")
	}
	if form == "" {
		return Token{}, terrors.NewParse(format, r.line, "empty word form")
	}
	return Token{ID: id, Form: form, Columns: cols}, nil
}

// ReadAll reads every remaining sentence.
func (r *Reader) ReadAll() ([]*Sentence, error) {
	var out []*Sentence
	for {
		s, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
}

package conll

import (
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	terrors "github.com/FocuswithJustin/textalign/core/errors"
)

const sample = "# sent_id = 1\n" +
	"1\tSection\tsection\tNOUN\n" +
	"2\t7\t7\tNUM\n" +
	"3\t.\t.\tPUNCT\n" +
	"4\t-RRB-\t)\tPUNCT\n" +
	"5\tElizabeth\tElizabeth\tPROPN\n" +
	"\n" +
	"\n" +
	"1-2\tdel\t_\t_\n" +
	"1\tde\tde\tADP\n" +
	"2\tel\tel\tDET\n" +
	"2.1\tnull\t_\t_\n" +
	"3\tmundo\tmundo\tNOUN\n"

func TestReader(t *testing.T) {
	sentences, err := NewReader(strings.NewReader(sample)).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(sentences) != 2 {
		t.Fatalf("ReadAll() returned %d sentences, want 2", len(sentences))
	}

	first := sentences[0]
	if first.Line != 1 {
		t.Errorf("Line = %d, want 1", first.Line)
	}
	if !slices.Equal(first.Comments, []string{"sent_id = 1"}) {
		t.Errorf("Comments = %q", first.Comments)
	}
	if got, want := first.Text(), "Section 7 . -RRB- Elizabeth"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if got, want := first.UnescapedText(), "Section 7 . ) Elizabeth"; got != want {
		t.Errorf("UnescapedText() = %q, want %q", got, want)
	}
	if got := first.Tokens[3].Column(2); got != ")" {
		t.Errorf("Column(2) = %q, want )", got)
	}
	if got := first.Tokens[0].Column(9); got != "" {
		t.Errorf("Column(9) = %q, want empty", got)
	}

	second := sentences[1]
	if second.Line != 9 {
		t.Errorf("Line = %d, want 9", second.Line)
	}
	if got, want := second.Text(), "del mundo"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if got, want := second.Forms(), []string{"de", "el", "mundo"}; !slices.Equal(got, want) {
		t.Errorf("Forms() = %q, want %q", got, want)
	}
	if len(second.Ranges) != 1 || second.Ranges[0].Form != "del" {
		t.Errorf("Ranges = %+v", second.Ranges)
	}
}

func TestReaderNextEOF(t *testing.T) {
	r := NewReader(strings.NewReader("1\tone\n\n"))
	s, err := r.Next()
	if err != nil || s.Text() != "one" {
		t.Fatalf("Next() = %v, %v", s, err)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}

	empty := NewReader(strings.NewReader("\n\n# lonely comment\n"))
	if _, err := empty.Next(); err != io.EOF {
		t.Errorf("Next() on comment-only input = %v, want io.EOF", err)
	}
}

func TestReaderCRLF(t *testing.T) {
	s, err := NewReader(strings.NewReader("1\tHello\r\n2\tworld\r\n\r\n")).Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if s.Text() != "Hello world" {
		t.Errorf("Text() = %q", s.Text())
	}
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"single column", "1\tok\n2 broken\n", 2},
		{"empty form", "1\t\n", 1},
		{"empty id", "\tword\n", 1},
		{"comment inside", "1\tok\n# late\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.input)).ReadAll()
			var pe *terrors.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("ReadAll() error = %v, want ParseError", err)
			}
			if pe.Line != tt.line {
				t.Errorf("Line = %d, want %d", pe.Line, tt.line)
			}
			if !errors.Is(err, terrors.ErrInvalidInput) {
				t.Error("ParseError should wrap ErrInvalidInput")
			}
		})
	}
}

func TestReaderLineTooLong(t *testing.T) {
	long := "1\t" + strings.Repeat("x", maxLineSize+1) + "\n"
	_, err := NewReader(strings.NewReader(long)).Next()
	var pe *terrors.ParseError
	if !errors.As(err, &pe) || !strings.Contains(pe.Message, "too long") {
		t.Errorf("Next() error = %v, want line too long", err)
	}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("device offline") }

func TestReaderIOError(t *testing.T) {
	_, err := NewReader(brokenReader{}).Next()
	var ioErr *terrors.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("Next() error = %v, want IOError", err)
	}
}

func TestSurfaceForms(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no ranges", "1\tHello\n2\tworld\n", "Hello world"},
		{"leading range", "1-2\tdel\n1\tde\n2\tel\n3\tmundo\n", "del mundo"},
		{"trailing range", "1\tvamos\n2-3\tvámonos\n2\tvamos\n3\tnos\n", "vamos vámonos"},
		{"two ranges", "1-2\tdel\n1\tde\n2\tel\n3\ty\n4-5\tal\n4\ta\n5\tel\n", "del y al"},
		{"malformed range ignored", "1-x\tbad\n1\tone\n", "one"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewReader(strings.NewReader(tt.input)).Next()
			if err != nil {
				t.Fatalf("Next() error = %v", err)
			}
			if got := s.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

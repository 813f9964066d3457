package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/textalign/core/annotation"
	terrors "github.com/FocuswithJustin/textalign/core/errors"
	"github.com/FocuswithJustin/textalign/internal/input"
	"github.com/FocuswithJustin/textalign/internal/logging"
)

const (
	conllSentence = "Section 7. -RRB- Elizabeth Dabney was bora June 18, 1751."
	origSentence  = "Section 7.) Elizabeth Dabney was bora June 18, 1751."
)

// Test helper functions

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.InitLoggerWithWriter(&buf, logging.LevelDebug, logging.FormatJSON)
	t.Cleanup(func() { logging.InitLogger(logging.LevelInfo, logging.FormatJSON) })
	return &buf
}

func setMaxInputSize(t *testing.T, n int64) {
	t.Helper()
	prev := input.MaxFileSize
	input.MaxFileSize = n
	t.Cleanup(func() { input.MaxFileSize = prev })
}

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func createXZFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("xz.NewWriter() error = %v", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("xz write error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("xz close error = %v", err)
	}
	return createTestFile(t, dir, name, buf.String())
}

func TestAlignCmd(t *testing.T) {
	dir := t.TempDir()
	base := createTestFile(t, dir, "base.txt", conllSentence+"\nThe -LRB- quick -RRB- fox\n")
	alt := createTestFile(t, dir, "alt.txt", origSentence+"\nThe (quick) fox\n")

	var out bytes.Buffer
	cmd := &AlignCmd{Base: base, Alt: alt}
	if err := cmd.run(context.Background(), &out); err != nil {
		t.Fatalf("run() error = %v\n%s", err, out.String())
	}

	got := out.String()
	for _, want := range []string{"1\tok\t9 tokens", "2\tok\t3 tokens", "2/2 aligned"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestAlignCmdMismatch(t *testing.T) {
	dir := t.TempDir()
	base := createTestFile(t, dir, "base.txt", "a b c\nsame line\n")
	alt := createTestFile(t, dir, "alt.txt", "a b d\nsame line\n")

	var out bytes.Buffer
	err := (&AlignCmd{Base: base, Alt: alt, Workers: 2}).run(context.Background(), &out)
	if err == nil {
		t.Fatal("run() error = nil, want mismatch error")
	}
	if !strings.Contains(out.String(), "1\tMISMATCH\t2 tokens\tbase@4 alternate@4") {
		t.Errorf("output = %q", out.String())
	}
	if !strings.Contains(out.String(), "1/2 aligned") {
		t.Errorf("output = %q, want summary", out.String())
	}
}

func TestAlignCmdLenient(t *testing.T) {
	dir := t.TempDir()
	base := createTestFile(t, dir, "base.txt", "a b c\n")
	alt := createTestFile(t, dir, "alt.txt", "a b\n")

	var out bytes.Buffer
	if err := (&AlignCmd{Base: base, Alt: alt}).run(context.Background(), &out); err == nil {
		t.Error("strict run() error = nil, want length mismatch error")
	}

	out.Reset()
	if err := (&AlignCmd{Base: base, Alt: alt, Lenient: true}).run(context.Background(), &out); err != nil {
		t.Fatalf("lenient run() error = %v", err)
	}
	if !strings.Contains(out.String(), "length differs") {
		t.Errorf("output = %q", out.String())
	}
}

func TestAlignCmdSentenceCount(t *testing.T) {
	dir := t.TempDir()
	base := createTestFile(t, dir, "base.txt", "one\ntwo\n")
	alt := createTestFile(t, dir, "alt.txt", "one\n")

	err := (&AlignCmd{Base: base, Alt: alt}).run(context.Background(), &bytes.Buffer{})
	if !errors.Is(err, terrors.ErrInvalidInput) {
		t.Errorf("run() error = %v, want ErrInvalidInput", err)
	}
}

func TestAlignCmdConllXZ(t *testing.T) {
	dir := t.TempDir()
	conllText := strings.Join([]string{
		"# sent_id = 1",
		"1\tThe\tthe",
		"2\t-LRB-\t-lrb-",
		"3\tquick\tquick",
		"4\t-RRB-\t-rrb-",
		"5\tfox\tfox",
		"",
		"1\tHello\thello",
		"2\t.\t.",
		"",
	}, "\n")
	base := createXZFile(t, dir, "base.conll.xz", conllText)
	alt := createXZFile(t, dir, "alt.txt.xz", "The (quick) fox\nHello.\n")

	var out bytes.Buffer
	if err := (&AlignCmd{Base: base, Alt: alt, Conll: true}).run(context.Background(), &out); err != nil {
		t.Fatalf("run() error = %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "2/2 aligned") {
		t.Errorf("output = %q", out.String())
	}
}

func TestAlignCmdMissingFile(t *testing.T) {
	err := (&AlignCmd{Base: filepath.Join(t.TempDir(), "nope"), Alt: "nope"}).run(context.Background(), &bytes.Buffer{})
	var ioErr *terrors.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("run() error = %v, want *IOError", err)
	}
}

const altAnnotations = `<annotations>
  <span id="a1" type="PERSON" start="12" end="28">Elizabeth Dabney</span>
  <span id="a2" type="DATE" start="38" end="51">June 18, 1751</span>
</annotations>`

const baseAnnotations = `<annotations>
  <span id="b1" type="PERSON" start="17" end="33"/>
  <span id="b2" type="PERSON" start="17" end="26"/>
  <span id="b3" type="DATE" start="48" end="56"/>
</annotations>`

func TestOverlapCmd(t *testing.T) {
	dir := t.TempDir()
	text := createTestFile(t, dir, "text.txt", conllSentence)
	ann := createTestFile(t, dir, "ann.xml", baseAnnotations)

	var out bytes.Buffer
	cmd := &OverlapCmd{Text: text, Annotations: ann, Query: "PERSON[20,30)", XPath: "//span"}
	if err := cmd.run(context.Background(), &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "PERSON[20,30) overlaps 1 annotation(s) by 10") {
		t.Errorf("output = %q", got)
	}
	if !strings.Contains(got, "b1\tPERSON[17,33)\t\"Elizabeth Dabney\"") {
		t.Errorf("output = %q, want b1 listed", got)
	}

	out.Reset()
	cmd = &OverlapCmd{Text: text, Annotations: ann, Query: "[20,30)", XPath: "//span", All: true}
	if err := cmd.run(context.Background(), &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if lines := strings.Count(out.String(), "\n"); lines != 2 {
		t.Errorf("--all printed %d lines, want 2:\n%s", lines, out.String())
	}

	out.Reset()
	cmd = &OverlapCmd{Text: text, Annotations: ann, Query: "LOC[20,30)", XPath: "//span"}
	if err := cmd.run(context.Background(), &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "no annotation overlaps") {
		t.Errorf("output = %q", out.String())
	}
}

func TestOverlapCmdBadQuery(t *testing.T) {
	dir := t.TempDir()
	text := createTestFile(t, dir, "text.txt", conllSentence)
	ann := createTestFile(t, dir, "ann.xml", baseAnnotations)

	err := (&OverlapCmd{Text: text, Annotations: ann, Query: "PERSON[30,20)"}).run(context.Background(), &bytes.Buffer{})
	if !errors.Is(err, terrors.ErrInvalidInput) {
		t.Errorf("run() error = %v, want ErrInvalidInput", err)
	}
}

func TestProjectCmd(t *testing.T) {
	dir := t.TempDir()
	base := createTestFile(t, dir, "base.txt", conllSentence)
	alt := createTestFile(t, dir, "alt.txt", origSentence)
	ann := createTestFile(t, dir, "alt.xml", altAnnotations)

	var out bytes.Buffer
	if err := (&ProjectCmd{Base: base, Alt: alt, Annotations: ann}).run(context.Background(), &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	spans, err := annotation.ReadXML(strings.NewReader(out.String()), conllSentence, annotation.DefaultReadOptions())
	if err != nil {
		t.Fatalf("projected output is not annotation XML: %v\n%s", err, out.String())
	}
	if len(spans) != 2 {
		t.Fatalf("got %d projected spans, want 2", len(spans))
	}
	if s := spans[0]; s.ID != "a1" || s.CharStart != 17 || s.CharEnd != 33 || s.Text != "Elizabeth Dabney" {
		t.Errorf("spans[0] = %+v", s)
	}
	if s := spans[1]; s.ID != "a2" || s.CharStart != 43 || s.CharEnd != 56 {
		t.Errorf("spans[1] = %+v", s)
	}
}

func TestProjectCmdMatch(t *testing.T) {
	dir := t.TempDir()
	base := createTestFile(t, dir, "base.txt", conllSentence)
	alt := createTestFile(t, dir, "alt.txt", origSentence)
	ann := createTestFile(t, dir, "alt.xml", altAnnotations)
	baseAnn := createTestFile(t, dir, "base.xml", baseAnnotations)

	var out bytes.Buffer
	cmd := &ProjectCmd{Base: base, Alt: alt, Annotations: ann, BaseAnnotations: baseAnn}
	if err := cmd.run(context.Background(), &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	want := "a1\tb1\t16\na2\tb3\t8\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestInputSizeLimit(t *testing.T) {
	dir := t.TempDir()
	padding := strings.Repeat("\n", 4096)
	conllFile := createXZFile(t, dir, "big.conll.xz", padding+"1\tword\tword\n")
	annFile := createXZFile(t, dir, "big.xml.xz", `<annotations>`+padding+`<span start="0" end="4"/></annotations>`)
	setMaxInputSize(t, 1024)

	if _, err := readConllRenderings(conllFile); !errors.Is(err, terrors.ErrInvalidInput) {
		t.Errorf("readConllRenderings() error = %v, want ErrInvalidInput", err)
	}
	if _, err := readAnnotations(annFile, "word", annotation.DefaultReadOptions()); !errors.Is(err, terrors.ErrInvalidInput) {
		t.Errorf("readAnnotations() error = %v, want ErrInvalidInput", err)
	} else if !strings.Contains(err.Error(), "exceeds 1024 bytes") {
		t.Errorf("readAnnotations() error = %q, want size limit message", err)
	}

	alt := createTestFile(t, dir, "alt.txt", "word\n")
	err := (&AlignCmd{Base: conllFile, Alt: alt, Conll: true}).run(context.Background(), &bytes.Buffer{})
	if !errors.Is(err, terrors.ErrInvalidInput) {
		t.Errorf("align --conll error = %v, want ErrInvalidInput", err)
	}
}

func TestCommandLogsCarryDocumentID(t *testing.T) {
	dir := t.TempDir()
	base := createTestFile(t, dir, "base.txt", "a b c\n")
	alt := createTestFile(t, dir, "alt.txt", "a b d\n")
	logs := captureLogs(t)

	if err := (&AlignCmd{Base: base, Alt: alt}).run(context.Background(), &bytes.Buffer{}); err == nil {
		t.Fatal("run() error = nil, want mismatch error")
	}

	var sawAlignment, sawSummary bool
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("log line is not JSON: %v (%q)", err, line)
		}
		if m["document_id"] != base {
			t.Errorf("log %v lacks document_id %q", m["msg"], base)
		}
		switch m["msg"] {
		case "alignment":
			sawAlignment = true
		case "alignment summary":
			sawSummary = m["aligned"] == float64(0) && m["total"] == float64(1)
		}
	}
	if !sawAlignment || !sawSummary {
		t.Errorf("missing alignment or summary log in:\n%s", logs.String())
	}
}

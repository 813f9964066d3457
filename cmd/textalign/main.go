// Command textalign aligns alternative renderings of sentences and
// reconciles span annotations made over them.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/textalign/core/align"
	"github.com/FocuswithJustin/textalign/core/annotation"
	"github.com/FocuswithJustin/textalign/core/conll"
	"github.com/FocuswithJustin/textalign/core/errors"
	"github.com/FocuswithJustin/textalign/core/reconcile"
	"github.com/FocuswithJustin/textalign/internal/input"
	"github.com/FocuswithJustin/textalign/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for textalign.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn" enum:"debug,info,warn,error"`
	LogFormat string `name:"log-format" help:"Log format (json, text)" default:"text" enum:"json,text"`

	Align   AlignCmd   `cmd:"" help:"Align two renderings line by line"`
	Overlap OverlapCmd `cmd:"" help:"Find the annotations overlapping a query span the most"`
	Project ProjectCmd `cmd:"" help:"Project annotations from the alternate rendering onto the base rendering"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// AlignCmd aligns every line of BASE with the same line of ALT.
type AlignCmd struct {
	Base    string `arg:"" help:"Base renderings, one sentence per line (compressed inputs accepted)" type:"existingfile"`
	Alt     string `arg:"" help:"Alternate renderings, one sentence per line (compressed inputs accepted)" type:"existingfile"`
	Conll   bool   `help:"Read BASE as a CoNLL file with one sentence per block"`
	Lenient bool   `help:"Accept renderings where one side has tokens left over"`
	Workers int    `help:"Number of concurrent alignments (0 = GOMAXPROCS)" default:"0"`
}

func (c *AlignCmd) Run() error {
	return c.run(context.Background(), os.Stdout)
}

func (c *AlignCmd) run(ctx context.Context, w io.Writer) error {
	ctx = logging.WithDocumentID(ctx, c.Base)

	var bases []string
	var err error
	if c.Conll {
		bases, err = readConllRenderings(c.Base)
	} else {
		bases, err = input.ReadLines(c.Base)
	}
	if err != nil {
		return err
	}
	alts, err := input.ReadLines(c.Alt)
	if err != nil {
		return err
	}
	if len(bases) != len(alts) {
		return errors.NewValidation("input", "",
			fmt.Sprintf("%s has %d sentences but %s has %d", c.Base, len(bases), c.Alt, len(alts)))
	}

	pairs := make([]reconcile.Pair, len(bases))
	for i := range bases {
		pairs[i] = reconcile.Pair{Base: bases[i], Alternate: alts[i]}
	}

	config := reconcile.DefaultConfig()
	config.Align.AllowLengthMismatch = c.Lenient
	if c.Workers > 0 {
		config.Workers = c.Workers
	}
	aligners, err := reconcile.AlignAll(ctx, pairs, config)
	if err != nil {
		return errors.Wrap(err, "alignment failed")
	}

	failed := 0
	for i, a := range aligners {
		base, alt, stopped := a.MismatchAt()
		switch {
		case !a.Aligns():
			failed++
			fmt.Fprintf(w, "%d\tMISMATCH\t%d tokens\tbase@%d alternate@%d\n", i+1, a.Len(), base, alt)
		case stopped:
			fmt.Fprintf(w, "%d\tok\t%d tokens\tlength differs at base@%d alternate@%d\n", i+1, a.Len(), base, alt)
		default:
			fmt.Fprintf(w, "%d\tok\t%d tokens\n", i+1, a.Len())
		}
	}
	fmt.Fprintf(w, "%d/%d aligned\n", len(aligners)-failed, len(aligners))
	logging.InfoContext(ctx, "alignment summary", "aligned", len(aligners)-failed, "total", len(aligners))

	if failed > 0 {
		return fmt.Errorf("%d of %d sentences did not align", failed, len(aligners))
	}
	return nil
}

// OverlapCmd queries an annotation file for the best overlap.
type OverlapCmd struct {
	Text        string `arg:"" help:"Text the annotations refer to (compressed inputs accepted)" type:"existingfile"`
	Annotations string `arg:"" help:"Annotation XML file (compressed inputs accepted)" type:"existingfile"`
	Query       string `help:"Query span, e.g. PERSON[17,32) or [0,20)" required:""`
	XPath       string `name:"xpath" help:"XPath selecting annotation elements" default:"//span"`
	Lenient     bool   `help:"Warn instead of failing on annotations that do not fit the text"`
	All         bool   `help:"List every overlapping annotation instead of the best ones"`
}

func (c *OverlapCmd) Run() error {
	return c.run(context.Background(), os.Stdout)
}

func (c *OverlapCmd) run(ctx context.Context, w io.Writer) error {
	ctx = logging.WithDocumentID(ctx, c.Annotations)

	query, err := annotation.ParseQuery(c.Query)
	if err != nil {
		return err
	}
	text, err := input.ReadText(c.Text)
	if err != nil {
		return err
	}
	spans, err := readAnnotations(c.Annotations, text, annotation.ReadOptions{XPath: c.XPath, Lenient: c.Lenient})
	if err != nil {
		return err
	}
	index, err := annotation.NewIndex(text, spans)
	if err != nil {
		return err
	}
	logging.DebugContext(ctx, "annotations indexed", "count", index.Len())

	if c.All {
		candidates := index.Overlapping(query)
		logging.OverlapQuery(ctx, query.CharStart, query.CharEnd, 0, len(candidates))
		for _, cand := range candidates {
			fmt.Fprintf(w, "%d\t%s\n", cand.Amount, describe(cand.Span, text))
		}
		if len(candidates) == 0 {
			fmt.Fprintf(w, "no annotation overlaps %s\n", query)
		}
		return nil
	}

	best, ok := index.BestOverlap(query)
	if !ok {
		logging.OverlapQuery(ctx, query.CharStart, query.CharEnd, 0, 0)
		fmt.Fprintf(w, "no annotation overlaps %s\n", query)
		return nil
	}
	logging.OverlapQuery(ctx, query.CharStart, query.CharEnd, best.Amount, best.NumOverlappingSpans())
	fmt.Fprintf(w, "%s overlaps %d annotation(s) by %d\n", query, best.NumOverlappingSpans(), best.Amount)
	for _, s := range best.Spans {
		fmt.Fprintf(w, "  %s\n", describe(s, text))
	}
	return nil
}

// ProjectCmd moves annotations made on ALT onto BASE.
type ProjectCmd struct {
	Base            string `arg:"" help:"Base rendering (compressed inputs accepted)" type:"existingfile"`
	Alt             string `arg:"" help:"Alternate rendering (compressed inputs accepted)" type:"existingfile"`
	Annotations     string `arg:"" help:"Annotation XML over the alternate rendering (compressed inputs accepted)" type:"existingfile"`
	BaseAnnotations string `name:"base-annotations" help:"Annotation XML over the base rendering; print matches instead of projected spans" type:"existingfile"`
	Lenient         bool   `help:"Accept renderings where one side has tokens left over"`
}

func (c *ProjectCmd) Run() error {
	return c.run(context.Background(), os.Stdout)
}

func (c *ProjectCmd) run(ctx context.Context, w io.Writer) error {
	ctx = logging.WithDocumentID(ctx, c.Alt)

	base, err := input.ReadText(c.Base)
	if err != nil {
		return err
	}
	alt, err := input.ReadText(c.Alt)
	if err != nil {
		return err
	}

	config := align.DefaultConfig()
	config.AllowLengthMismatch = c.Lenient
	a := align.NewWithConfig(base, alt, config)
	logging.Alignment(ctx, 0, a.Aligns(), a.Len())
	if !a.Aligns() {
		b, o, _ := a.MismatchAt()
		logging.WarnContext(ctx, "projecting through a partial alignment", "base_offset", b, "alternate_offset", o)
	}

	altSpans, err := readAnnotations(c.Annotations, alt, annotation.DefaultReadOptions())
	if err != nil {
		return err
	}
	var baseSpans []*annotation.Span
	if c.BaseAnnotations != "" {
		baseSpans, err = readAnnotations(c.BaseAnnotations, base, annotation.DefaultReadOptions())
		if err != nil {
			return err
		}
	}
	r, err := reconcile.NewReconciler(a, baseSpans)
	if err != nil {
		return err
	}

	if c.BaseAnnotations == "" {
		var projected []*annotation.Span
		for _, s := range altSpans {
			if p, ok := r.ProjectSpan(ctx, s); ok {
				projected = append(projected, p)
			} else {
				logging.WarnContext(ctx, "span could not be projected", "span_id", s.ID)
			}
		}
		return annotation.WriteXML(w, projected)
	}

	for _, s := range altSpans {
		best, ok := r.Match(ctx, s)
		if !ok {
			fmt.Fprintf(w, "%s\t-\n", s.ID)
			continue
		}
		ids := make([]string, len(best.Spans))
		for i, m := range best.Spans {
			ids[i] = m.ID
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", s.ID, strings.Join(ids, ","), best.Amount)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("textalign version %s\n", version)
	return nil
}

// Helper functions

// readConllRenderings returns the escaped rendering of each sentence in a
// CoNLL file.
func readConllRenderings(path string) ([]string, error) {
	r, err := input.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sentences, err := conll.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	out := make([]string, len(sentences))
	for i, s := range sentences {
		out[i] = s.Text()
	}
	return out, nil
}

func readAnnotations(path, text string, opts annotation.ReadOptions) ([]*annotation.Span, error) {
	r, err := input.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	spans, err := annotation.ReadXML(r, text, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return spans, nil
}

func describe(s *annotation.Span, text string) string {
	covered := s.Text
	if covered == "" && s.CharStart >= 0 && s.CharEnd <= len(text) {
		covered = text[s.CharStart:s.CharEnd]
	}
	return fmt.Sprintf("%s\t%s\t%q", s.ID, s, covered)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("textalign"),
		kong.Description("Align alternative renderings of text and reconcile span annotations"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	level, err := logging.ParseLevel(CLI.LogLevel)
	ctx.FatalIfErrorf(err)
	format, err := logging.ParseFormat(CLI.LogFormat)
	ctx.FatalIfErrorf(err)
	logging.InitLogger(level, format)

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

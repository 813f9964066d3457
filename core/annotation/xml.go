package annotation

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/textalign/core/encoding"
	"github.com/FocuswithJustin/textalign/core/errors"
	"github.com/FocuswithJustin/textalign/core/xml"
	"github.com/FocuswithJustin/textalign/internal/logging"
)

const xmlFormat = "annotation xml"

// ReadOptions controls ReadXML.
type ReadOptions struct {
	// XPath selects the span elements. Default: //span
	XPath string

	// Lenient keeps spans whose element text differs from the covered text
	// or whose bounds exceed it, logging a warning instead of failing.
	Lenient bool
}

// DefaultReadOptions returns the options used when none are given.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{XPath: "//span"}
}

// reserved attributes are mapped to Span fields rather than Attributes.
var reserved = []string{"id", "type", "start", "end"}

// ReadXML reads annotation spans over text from an XML document:
//
//	<annotations>
//	  <span id="e1" type="PERSON" start="17" end="32">Elizabeth Dabney</span>
//	</annotations>
//
// start and end are required. Elements without an id get a random UUID.
func ReadXML(r io.Reader, text string, opts ReadOptions) ([]*Span, error) {
	if opts.XPath == "" {
		opts.XPath = DefaultReadOptions().XPath
	}

	doc, err := xml.Parse(r)
	if err != nil {
		return nil, &errors.ParseError{Format: xmlFormat, Message: err.Error()}
	}
	nodes, err := doc.Select(opts.XPath)
	if err != nil {
		return nil, errors.NewValidation("xpath", opts.XPath, err.Error())
	}

	spans := make([]*Span, 0, len(nodes))
	for i, n := range nodes {
		s, err := spanFromNode(n, text, opts.Lenient)
		if err != nil {
			return nil, errors.Wrapf(err, "span %d", i)
		}
		spans = append(spans, s)
	}
	return spans, nil
}

func spanFromNode(n *xml.Node, text string, lenient bool) (*Span, error) {
	start, err := intAttr(n, "start")
	if err != nil {
		return nil, err
	}
	end, err := intAttr(n, "end")
	if err != nil {
		return nil, err
	}
	if start < 0 || end < start {
		return nil, errors.NewValidation("span", fmt.Sprintf("[%d,%d)", start, end), "bounds must satisfy 0 <= start <= end")
	}

	s := &Span{CharStart: start, CharEnd: end}
	s.ID, _ = n.Attr("id")
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.Type, _ = n.Attr("type")

	for k, v := range n.Attributes() {
		if slices.Contains(reserved, k) {
			continue
		}
		if s.Attributes == nil {
			s.Attributes = make(map[string]string)
		}
		s.Attributes[k] = v
	}

	if end > len(text) {
		if !lenient {
			return nil, errors.NewValidation("end", strconv.Itoa(end), fmt.Sprintf("exceeds text length %d", len(text)))
		}
		logging.Warn("annotation exceeds text", "span_id", s.ID, "end", end, "text_length", len(text))
		s.Text = text[min(start, len(text)):]
		return s, nil
	}

	s.Text = text[start:end]
	if declared := n.Text(); declared != "" && declared != s.Text {
		if !lenient {
			return nil, errors.NewValidation("text", strconv.Quote(declared), "does not match covered text "+strconv.Quote(s.Text))
		}
		logging.Warn("annotation text mismatch", "span_id", s.ID, "declared", declared, "covered", s.Text)
	}
	return s, nil
}

func intAttr(n *xml.Node, name string) (int, error) {
	v, ok := n.Attr(name)
	if !ok {
		return 0, errors.NewParse(xmlFormat, 0, fmt.Sprintf("<%s> is missing the %s attribute", n.Name(), name))
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, errors.NewParse(xmlFormat, 0, fmt.Sprintf("%s attribute %q is not an integer", name, v))
	}
	return i, nil
}

// WriteXML writes spans in the format read by ReadXML. Extra attributes
// are written in key order.
func WriteXML(w io.Writer, spans []*Span) error {
	var buf bytes.Buffer
	buf.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<annotations>\n")
	for _, s := range spans {
		fmt.Fprintf(&buf, "  <span id=\"%s\"", encoding.EscapeXMLAttr(s.ID))
		if s.Type != "" {
			fmt.Fprintf(&buf, " type=\"%s\"", encoding.EscapeXMLAttr(s.Type))
		}
		fmt.Fprintf(&buf, " start=\"%d\" end=\"%d\"", s.CharStart, s.CharEnd)

		keys := make([]string, 0, len(s.Attributes))
		for k := range s.Attributes {
			if !slices.Contains(reserved, k) {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&buf, " %s=\"%s\"", k, encoding.EscapeXMLAttr(s.Attributes[k]))
		}

		if s.Text == "" {
			buf.WriteString("/>\n")
			continue
		}
		fmt.Fprintf(&buf, ">%s</span>\n", encoding.EscapeXMLText(s.Text))
	}
	buf.WriteString("</annotations>\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.NewIO("write", "", err)
	}
	return nil
}

// Package xml parses annotation documents and selects nodes with XPath.
//
// Security Notes:
//   - Documents are checked for well-formedness with an encoding/xml decoder
//     whose entity table is empty, so no entity is ever expanded.
//   - The xmlquery library is used for the tree, which uses Go's
//     encoding/xml internally and never fetches external entities.
package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document is a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node is an element of a Document.
type Node struct {
	node *xmlquery.Node
}

// Parse reads and parses an XML document from r.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading XML: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses an XML document held in memory.
func ParseBytes(data []byte) (*Document, error) {
	if err := checkWellFormed(data); err != nil {
		return nil, err
	}
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// checkWellFormed walks every token with entity expansion disabled.
func checkWellFormed(data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Entity = map[string]string{}
	for {
		_, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parsing XML: %w", err)
		}
	}
}

// Compile checks an XPath expression.
func Compile(expr string) (*xpath.Expr, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return compiled, nil
}

// Select returns the element nodes matching expr in document order.
func (d *Document) Select(expr string) ([]*Node, error) {
	compiled, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	var out []*Node
	for _, n := range xmlquery.QuerySelectorAll(d.root, compiled) {
		if n.Type == xmlquery.ElementNode {
			out = append(out, &Node{node: n})
		}
	}
	return out, nil
}

// Root returns the document element, or nil for an empty document.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// Name returns the element name.
func (n *Node) Name() string {
	return n.node.Data
}

// Text returns the text content of the node and its descendants.
func (n *Node) Text() string {
	return n.node.InnerText()
}

// Attr returns the value of an attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	for _, attr := range n.node.Attr {
		if attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Attributes returns all attributes of the node by local name.
func (n *Node) Attributes() map[string]string {
	attrs := make(map[string]string, len(n.node.Attr))
	for _, attr := range n.node.Attr {
		attrs[attr.Name.Local] = attr.Value
	}
	return attrs
}

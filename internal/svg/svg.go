// Package svg is a small SVG element tree with ordered attributes.
//
// It mirrors the handful of DOM operations the board needs: attribute
// updates, appendChild semantics (re-appending moves a node to the end),
// clearing, and serialization.
package svg

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

const (
	Namespace      = "http://www.w3.org/2000/svg"
	XLinkNamespace = "http://www.w3.org/1999/xlink"
)

// Attr is a single attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is an SVG element. Text is written before children.
type Node struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
	parent   *Node
}

// New creates an element from tag and name/value attribute pairs.
func New(tag string, attrs ...string) *Node {
	n := &Node{Tag: tag}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Set(attrs[i], attrs[i+1])
	}
	return n
}

// Root creates a top-level <svg> carrying the namespace declarations.
func Root(class string) *Node {
	return New("svg", "xmlns", Namespace, "xmlns:xlink", XLinkNamespace, "class", class)
}

// Set replaces or appends an attribute.
func (n *Node) Set(name, value string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
	return n
}

// SetFloat sets a numeric attribute.
func (n *Node) SetFloat(name string, v float64) *Node {
	return n.Set(name, FormatFloat(v))
}

// Get returns an attribute value.
func (n *Node) Get(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Float parses a numeric attribute, returning 0 when absent or malformed.
func (n *Node) Float(name string) float64 {
	v, ok := n.Get(name)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// AddClass appends a class name.
func (n *Node) AddClass(class string) *Node {
	cur, ok := n.Get("class")
	if !ok || cur == "" {
		return n.Set("class", class)
	}
	if n.HasClass(class) {
		return n
	}
	return n.Set("class", cur+" "+class)
}

// HasClass reports whether class is among the node's classes.
func (n *Node) HasClass(class string) bool {
	cur, _ := n.Get("class")
	for _, c := range strings.Fields(cur) {
		if c == class {
			return true
		}
	}
	return false
}

// SetText replaces the text content.
func (n *Node) SetText(text string) *Node {
	n.Text = text
	return n
}

// Append adds children at the end. A node that already has a parent is
// detached from it first.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.parent != nil {
			c.parent.remove(c)
		}
		c.parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

func (n *Node) remove(c *Node) {
	for i, child := range n.Children {
		if child == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

// Clear removes all children and text.
func (n *Node) Clear() {
	for _, c := range n.Children {
		c.parent = nil
	}
	n.Children = nil
	n.Text = ""
}

// Parent returns the node this one is attached to.
func (n *Node) Parent() *Node { return n.parent }

// LastChild returns the final child or nil.
func (n *Node) LastChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

// FindClass returns descendants (including n) that carry class, in document order.
func (n *Node) FindClass(class string) []*Node {
	var out []*Node
	n.walk(func(x *Node) {
		if x.HasClass(class) {
			out = append(out, x)
		}
	})
	return out
}

// FindTag returns descendants (including n) with the given tag, in document order.
func (n *Node) FindTag(tag string) []*Node {
	var out []*Node
	n.walk(func(x *Node) {
		if x.Tag == tag {
			out = append(out, x)
		}
	})
	return out
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// Render writes the element as XML.
func (n *Node) Render(w io.Writer) error {
	var buf bytes.Buffer
	n.render(&buf)
	_, err := w.Write(buf.Bytes())
	return err
}

// String returns the serialized element.
func (n *Node) String() string {
	var buf bytes.Buffer
	n.render(&buf)
	return buf.String()
}

func (n *Node) render(buf *bytes.Buffer) {
	buf.WriteByte('<')
	buf.WriteString(n.Tag)
	for _, a := range n.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		xml.EscapeText(buf, []byte(a.Value))
		buf.WriteByte('"')
	}
	if n.Text == "" && len(n.Children) == 0 {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	xml.EscapeText(buf, []byte(n.Text))
	for _, c := range n.Children {
		c.render(buf)
	}
	buf.WriteString("</")
	buf.WriteString(n.Tag)
	buf.WriteByte('>')
}

// FormatFloat prints v with at most three decimals and no trailing zeros.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

// Package xmltree parses IDML XML fragments into a typed tree with uniform
// access to attributes, child elements and text.
package xmltree

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// Node wraps XML element. All methods are safe to call on nil Node, which
// makes chained lookups of optional structures possible.
type Node struct {
	el *etree.Element
}

// Parse reads XML fragment and returns its root element.
func Parse(text string) (*Node, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		ValidateInput: false,
		Permissive:    true,
	}
	if err := doc.ReadFromString(text); err != nil {
		return nil, fmt.Errorf("unable to parse XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("unable to parse XML: no root element")
	}
	return &Node{el: root}, nil
}

// Wrap makes Node from etree element.
func Wrap(el *etree.Element) *Node {
	if el == nil {
		return nil
	}
	return &Node{el: el}
}

// Element returns underlying etree element.
func (n *Node) Element() *etree.Element {
	if n == nil {
		return nil
	}
	return n.el
}

// Tag returns local element name without namespace prefix.
func (n *Node) Tag() string {
	if n == nil {
		return ""
	}
	return n.el.Tag
}

// FullTag returns element name with namespace prefix, if any.
func (n *Node) FullTag() string {
	if n == nil {
		return ""
	}
	return n.el.FullTag()
}

// AttrOK returns value of the attribute with given local name.
func (n *Node) AttrOK(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.el.Attr {
		if a.Key == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attr returns value of the attribute or empty string.
func (n *Node) Attr(name string) string {
	v, _ := n.AttrOK(name)
	return v
}

// Float returns numeric attribute value or def when attribute is absent or
// unparsable.
func (n *Node) Float(name string, def float64) float64 {
	v, ok := n.AttrOK(name)
	if !ok {
		return def
	}
	f, err := ParseFloat(v)
	if err != nil {
		return def
	}
	return f
}

// FloatOK returns numeric attribute value and whether it was present and valid.
func (n *Node) FloatOK(name string) (float64, bool) {
	v, ok := n.AttrOK(name)
	if !ok {
		return 0, false
	}
	f, err := ParseFloat(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int returns integer attribute value or def, values outside of int range
// are unparsable.
func (n *Node) Int(name string, def int) int {
	v, ok := n.AttrOK(name)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		// InDesign sometimes writes integers as "2.0"
		if f, ferr := ParseFloat(v); ferr == nil && f >= math.MinInt && f < -math.MinInt {
			return int(f)
		}
		return def
	}
	return i
}

// Bool returns boolean attribute value or def.
func (n *Node) Bool(name string, def bool) bool {
	v, ok := n.AttrOK(name)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return def
}

// Elements returns all child elements in document order.
func (n *Node) Elements() []*Node {
	if n == nil {
		return nil
	}
	children := n.el.ChildElements()
	res := make([]*Node, 0, len(children))
	for _, c := range children {
		res = append(res, &Node{el: c})
	}
	return res
}

// Children returns child elements with given local name. Result is always a
// sequence, even for single or missing child.
func (n *Node) Children(tag string) []*Node {
	if n == nil {
		return nil
	}
	var res []*Node
	for _, c := range n.el.ChildElements() {
		if c.Tag == tag {
			res = append(res, &Node{el: c})
		}
	}
	return res
}

// Child returns first child element with given local name or nil.
func (n *Node) Child(tag string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.el.ChildElements() {
		if c.Tag == tag {
			return &Node{el: c}
		}
	}
	return nil
}

// Find descends through first matching children for every path element.
func (n *Node) Find(path ...string) *Node {
	cur := n
	for _, tag := range path {
		if cur = cur.Child(tag); cur == nil {
			return nil
		}
	}
	return cur
}

// Prop returns element from "Properties" wrapper.
func (n *Node) Prop(name string) *Node {
	return n.Find("Properties", name)
}

// Text returns concatenated character data directly under the element.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	for _, t := range n.el.Child {
		if cd, ok := t.(*etree.CharData); ok {
			sb.WriteString(cd.Data)
		}
	}
	return sb.String()
}

// Parent returns parent element or nil for root.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return Wrap(n.el.Parent())
}

// Package document models the element tree that registered parsers walk.
//
// A Node has a tag, ordered children and named attributes. Attributes hold
// their raw text values; typed accessors such as Float64s convert on demand
// and report failures as *StructuralError so callers can surface them as
// document problems rather than programming errors.
package document

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// IDAttribute names the attribute that registers an element in the object store.
	IDAttribute = "id"
	// IDRefAttribute names the attribute that points at a previously stored element.
	IDRefAttribute = "idref"
)

// Attr is a single attribute value. List is true when the source spelled the
// value as a sequence rather than a scalar.
type Attr struct {
	Values []string
	List   bool
}

// Node is one element of a document.
type Node struct {
	Tag  string
	Line int

	attrs    map[string]Attr
	children []*Node
	parent   *Node
	ordinal  int
}

// NewNode returns an empty element with the given tag.
func NewNode(tag string) *Node {
	return &Node{Tag: tag, attrs: map[string]Attr{}}
}

// SetAttribute stores a scalar attribute.
func (n *Node) SetAttribute(name, value string) {
	n.attrs[name] = Attr{Values: []string{value}}
}

// SetListAttribute stores a sequence attribute.
func (n *Node) SetListAttribute(name string, values []string) {
	n.attrs[name] = Attr{Values: append([]string{}, values...), List: true}
}

// Append adds child as the last child of n.
func (n *Node) Append(child *Node) {
	child.parent = n
	child.ordinal = 0
	for _, existing := range n.children {
		if existing.Tag == child.Tag {
			child.ordinal++
		}
	}
	n.children = append(n.children, child)
}

// Children returns every child in document order.
func (n *Node) Children() []*Node {
	return append([]*Node{}, n.children...)
}

// ChildCount reports how many direct children n has.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// ChildrenByTag returns the children with the given tag in document order.
func (n *Node) ChildrenByTag(tag string) []*Node {
	var out []*Node
	for _, child := range n.children {
		if child.Tag == tag {
			out = append(out, child)
		}
	}
	return out
}

// Child returns the first child with the given tag.
func (n *Node) Child(tag string) (*Node, bool) {
	for _, child := range n.children {
		if child.Tag == tag {
			return child, true
		}
	}
	return nil, false
}

// Parent returns the enclosing element, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// HasAttribute reports whether the attribute is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.attrs[name]
	return ok
}

// Attribute returns the raw attribute. Scalar attributes have exactly one value.
func (n *Node) Attribute(name string) (Attr, bool) {
	attr, ok := n.attrs[name]
	if !ok {
		return Attr{}, false
	}
	return Attr{Values: append([]string{}, attr.Values...), List: attr.List}, true
}

// String returns a scalar attribute as trimmed text.
func (n *Node) String(name string) (string, error) {
	attr, ok := n.attrs[name]
	if !ok {
		return "", Errorf(n, "missing attribute %q", name)
	}
	if attr.List {
		return "", Errorf(n, "attribute %q must be a single value", name)
	}
	return strings.TrimSpace(attr.Values[0]), nil
}

// ID returns the id attribute, or "" when absent.
func (n *Node) ID() string {
	return n.optionalString(IDAttribute)
}

// IDRef returns the idref attribute, or "" when absent.
func (n *Node) IDRef() string {
	return n.optionalString(IDRefAttribute)
}

func (n *Node) optionalString(name string) string {
	value, err := n.String(name)
	if err != nil {
		return ""
	}
	return value
}

// Float64s parses an attribute as an ordered sequence of reals. Both list
// attributes and a single whitespace- or comma-separated scalar are accepted.
func (n *Node) Float64s(name string) ([]float64, error) {
	attr, ok := n.attrs[name]
	if !ok {
		return nil, Errorf(n, "missing attribute %q", name)
	}
	fields := attr.Values
	if !attr.List {
		fields = strings.FieldsFunc(attr.Values[0], func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
	}
	if len(fields) == 0 {
		return nil, Errorf(n, "attribute %q holds no values", name)
	}
	values := make([]float64, len(fields))
	for i, field := range fields {
		field = strings.TrimSpace(field)
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			yamlValue, ok := yamlNumber(field)
			if !ok {
				return nil, NewStructuralError(n, fmt.Sprintf("attribute %q value %d is not a number", name, i), err)
			}
			value = yamlValue
		}
		values[i] = value
	}
	return values, nil
}

// Path renders the element position as tag[ordinal] segments from the root.
func (n *Node) Path() string {
	var segments []string
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		segments = append(segments, fmt.Sprintf("%s[%d]", cur.Tag, cur.ordinal))
	}
	if len(segments) == 0 {
		if n.Tag == "" {
			return "/"
		}
		return n.Tag
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, "/")
}

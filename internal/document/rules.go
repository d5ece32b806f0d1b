package document

import "math"

// Unbounded lifts the upper limit of an ElementRule.
const Unbounded = math.MaxInt

// Rule checks one structural expectation against an element.
type Rule interface {
	Check(n *Node) error
}

// ElementRule requires between Min and Max children tagged Tag, each of which
// must satisfy Rules.
type ElementRule struct {
	Tag   string
	Min   int
	Max   int
	Rules []Rule
}

// Element builds an ElementRule.
func Element(tag string, minCount, maxCount int, rules ...Rule) ElementRule {
	return ElementRule{Tag: tag, Min: minCount, Max: maxCount, Rules: rules}
}

func (r ElementRule) Check(n *Node) error {
	children := n.ChildrenByTag(r.Tag)
	switch {
	case len(children) < r.Min && r.Min == 1:
		return Errorf(n, "missing required element %q", r.Tag)
	case len(children) < r.Min:
		return Errorf(n, "element %q appears %d times, at least %d required", r.Tag, len(children), r.Min)
	case len(children) > r.Max:
		return Errorf(n, "element %q appears %d times, at most %d allowed", r.Tag, len(children), r.Max)
	}
	for _, child := range children {
		if err := Evaluate(child, r.Rules); err != nil {
			return err
		}
	}
	return nil
}

// AttributeKind selects how an AttributeRule checks the value.
type AttributeKind int

const (
	// TextAttribute accepts any scalar.
	TextAttribute AttributeKind = iota
	// Float64sAttribute requires a parseable sequence of reals.
	Float64sAttribute
)

// AttributeRule requires an attribute of the given kind.
type AttributeRule struct {
	Name     string
	Kind     AttributeKind
	Optional bool
}

// Attribute builds a required text AttributeRule.
func Attribute(name string) AttributeRule {
	return AttributeRule{Name: name, Kind: TextAttribute}
}

// Float64s builds a required real-sequence AttributeRule.
func Float64s(name string) AttributeRule {
	return AttributeRule{Name: name, Kind: Float64sAttribute}
}

func (r AttributeRule) Check(n *Node) error {
	if !n.HasAttribute(r.Name) {
		if r.Optional {
			return nil
		}
		return Errorf(n, "missing required attribute %q", r.Name)
	}
	switch r.Kind {
	case Float64sAttribute:
		_, err := n.Float64s(r.Name)
		return err
	default:
		_, err := n.String(r.Name)
		return err
	}
}

// Evaluate checks rules in order and returns the first violation.
func Evaluate(n *Node, rules []Rule) error {
	for _, rule := range rules {
		if err := rule.Check(n); err != nil {
			return err
		}
	}
	return nil
}

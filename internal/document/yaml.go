package document

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// RootTag is the tag given to the synthetic root returned by ParseYAML.
const RootTag = "document"

// ParseYAML decodes a YAML payload into an element tree.
//
// Mapping keys become element tags or attribute names depending on their
// value: scalars and scalar sequences are attributes, mappings are single
// child elements and sequences of mappings are repeated child elements. The
// top level may be a mapping or a sequence of single-element mappings.
func ParseYAML(data []byte) (*Node, error) {
	root := NewNode(RootTag)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, Errorf(root, "document payload is empty")
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewStructuralError(root, "decode yaml", err)
	}
	if err := AppendYAML(root, &doc); err != nil {
		return nil, err
	}
	return root, nil
}

// Aliases may expand a document to at most expansionFactor times the nodes
// it spells out, and never less than minExpansion.
const (
	expansionFactor = 10
	minExpansion    = 10000
)

// decoder walks a yaml.Node tree, charging every visited node against budget
// so repeated aliases cannot grow the element tree without bound.
type decoder struct {
	budget int
}

func (d *decoder) resolve(parent *Node, n *yaml.Node) (*yaml.Node, error) {
	d.budget--
	if d.budget < 0 {
		return nil, Errorf(parent, "document expands too many aliases")
	}
	return resolveAlias(n), nil
}

// AppendYAML decodes the elements of a YAML document node and appends them
// to parent in document order.
func AppendYAML(parent *Node, doc *yaml.Node) error {
	d := &decoder{budget: max(minExpansion, expansionFactor*countNodes(doc))}
	top, err := d.resolve(parent, doc)
	if err != nil {
		return err
	}
	if top.Kind == yaml.DocumentNode {
		if len(top.Content) == 0 {
			return Errorf(parent, "document payload is empty")
		}
		if top, err = d.resolve(parent, top.Content[0]); err != nil {
			return err
		}
	}
	parent.Line = top.Line
	switch top.Kind {
	case yaml.MappingNode:
		return d.decodeMapping(parent, top)
	case yaml.SequenceNode:
		for _, item := range top.Content {
			item, err := d.resolve(parent, item)
			if err != nil {
				return err
			}
			if item.Kind != yaml.MappingNode {
				return Errorf(parent, "top-level sequence items must be mappings (line %d)", item.Line)
			}
			if err := d.decodeMapping(parent, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return Errorf(parent, "document root must be a mapping or a sequence of mappings")
	}
}

func (d *decoder) decodeMapping(parent *Node, mapping *yaml.Node) error {
	seen := make(map[string]struct{}, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode := mapping.Content[i]
		key := keyNode.Value
		if _, dup := seen[key]; dup {
			return Errorf(parent, "key %q already defined (line %d)", key, keyNode.Line)
		}
		seen[key] = struct{}{}
		value, err := d.resolve(parent, mapping.Content[i+1])
		if err != nil {
			return err
		}
		switch value.Kind {
		case yaml.ScalarNode:
			parent.SetAttribute(key, value.Value)
		case yaml.MappingNode:
			child := NewNode(key)
			child.Line = value.Line
			parent.Append(child)
			if err := d.decodeMapping(child, value); err != nil {
				return err
			}
		case yaml.SequenceNode:
			if err := d.decodeSequence(parent, key, value); err != nil {
				return err
			}
		default:
			return Errorf(parent, "unsupported value for %q (line %d)", key, value.Line)
		}
	}
	return nil
}

func (d *decoder) decodeSequence(parent *Node, key string, seq *yaml.Node) error {
	items := make([]*yaml.Node, len(seq.Content))
	scalars := make([]string, 0, len(seq.Content))
	mappings := 0
	for i, item := range seq.Content {
		item, err := d.resolve(parent, item)
		if err != nil {
			return err
		}
		items[i] = item
		switch item.Kind {
		case yaml.ScalarNode:
			scalars = append(scalars, item.Value)
		case yaml.MappingNode:
			mappings++
		default:
			return Errorf(parent, "unsupported item in %q (line %d)", key, item.Line)
		}
	}
	if mappings == 0 {
		parent.SetListAttribute(key, scalars)
		return nil
	}
	if len(scalars) > 0 {
		return Errorf(parent, "%q mixes scalar values and elements (line %d)", key, seq.Line)
	}
	for _, item := range items {
		child := NewNode(key)
		child.Line = item.Line
		parent.Append(child)
		if err := d.decodeMapping(child, item); err != nil {
			return err
		}
	}
	return nil
}

// countNodes counts the nodes written out in a document, without following
// aliases.
func countNodes(n *yaml.Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Content {
		total += countNodes(c)
	}
	return total
}

// yamlNumber parses a single YAML int or float spelling (.inf, 0x10, 1_000)
// that strconv.ParseFloat rejects.
func yamlNumber(text string) (float64, bool) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil || len(doc.Content) != 1 {
		return 0, false
	}
	scalar := doc.Content[0]
	if scalar.Kind != yaml.ScalarNode || (scalar.Tag != "!!int" && scalar.Tag != "!!float") {
		return 0, false
	}
	var f float64
	if err := scalar.Decode(&f); err != nil {
		return 0, false
	}
	return f, true
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

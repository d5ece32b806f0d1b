// Package taxa provides the ordered taxon registry that observation models
// index into.
package taxa

import (
	"fmt"
	"strings"

	"github.com/kingrea/arbitrary-partials/internal/document"
	"github.com/kingrea/arbitrary-partials/internal/plugin"
)

const (
	// ElementName is the document tag of a taxon list.
	ElementName = "taxa"

	taxonElement = "taxon"
)

// Taxon is a named leaf of the tree.
type Taxon struct {
	ID string
}

// Set is an ordered, duplicate-free list of taxa. It is never modified after
// construction.
type Set struct {
	id    string
	taxa  []Taxon
	index map[string]int
}

// New builds a Set from taxon identifiers in order.
func New(ids ...string) (*Set, error) {
	return newSet("", ids)
}

func newSet(id string, ids []string) (*Set, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("taxa: at least one taxon is required")
	}
	s := &Set{
		id:    id,
		taxa:  make([]Taxon, 0, len(ids)),
		index: make(map[string]int, len(ids)),
	}
	for i, raw := range ids {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, fmt.Errorf("taxa: taxon[%d] id is required", i)
		}
		if prev, exists := s.index[name]; exists {
			return nil, fmt.Errorf("taxa: taxon[%d] duplicates taxon[%d] %q", i, prev, name)
		}
		s.index[name] = len(s.taxa)
		s.taxa = append(s.taxa, Taxon{ID: name})
	}
	return s, nil
}

// ID returns the element id the list was declared with, if any.
func (s *Set) ID() string { return s.id }

// Count returns the number of taxa.
func (s *Set) Count() int { return len(s.taxa) }

// At returns the taxon at index i. It panics when i is out of range, like a
// slice index.
func (s *Set) At(i int) Taxon { return s.taxa[i] }

// IDs returns the taxon identifiers in order.
func (s *Set) IDs() []string {
	ids := make([]string, len(s.taxa))
	for i, t := range s.taxa {
		ids[i] = t.ID
	}
	return ids
}

// IndexOf returns the position of the taxon with the given id.
func (s *Set) IndexOf(id string) (int, bool) {
	i, ok := s.index[strings.TrimSpace(id)]
	return i, ok
}

// Parser handles the taxa element.
type Parser struct{}

func (Parser) Name() string { return ElementName }

func (Parser) Description() string {
	return "An ordered list of uniquely named taxa."
}

func (Parser) Returns() string { return "*taxa.Set" }

func (Parser) Rules() []document.Rule {
	return []document.Rule{
		document.Element(taxonElement, 1, document.Unbounded, document.Attribute(document.IDAttribute)),
	}
}

func (p Parser) Parse(_ plugin.Scope, node *document.Node) (any, error) {
	return FromNode(node)
}

// FromNode builds a Set from an inline taxa element after checking its
// structural rules.
func FromNode(node *document.Node) (*Set, error) {
	if err := document.Evaluate(node, Parser{}.Rules()); err != nil {
		return nil, err
	}
	children := node.ChildrenByTag(taxonElement)
	ids := make([]string, 0, len(children))
	for _, child := range children {
		id := child.ID()
		if prev, ok := indexOf(ids, id); ok {
			return nil, document.Errorf(child, "taxon %q duplicates taxon[%d]", id, prev)
		}
		ids = append(ids, id)
	}
	set, err := newSet(node.ID(), ids)
	if err != nil {
		return nil, document.NewStructuralError(node, "invalid taxon list", err)
	}
	return set, nil
}

func indexOf(ids []string, id string) (int, bool) {
	for i, existing := range ids {
		if existing == id {
			return i, true
		}
	}
	return 0, false
}

// Plugin contributes the taxa parser to a registry.
type Plugin struct{}

func (Plugin) Parsers() []plugin.Parser {
	return []plugin.Parser{Parser{}}
}

package partials

import (
	"github.com/kingrea/arbitrary-partials/internal/document"
	"github.com/kingrea/arbitrary-partials/internal/plugin"
	"github.com/kingrea/arbitrary-partials/internal/taxa"
)

const (
	sequenceElement = "sequence"
	partialElement  = "partial"

	// ProbabilitiesAttribute holds one site's probability vector.
	ProbabilitiesAttribute = "p"
	// TaxonAttribute optionally names the taxon a sequence belongs to.
	TaxonAttribute = "taxon"
)

// Parser handles the partialsAlignment element.
type Parser struct{}

func (Parser) Name() string { return ElementName }

func (Parser) Description() string {
	return "Represents an alignment of partial probability vectors instead of states."
}

func (Parser) Returns() string { return "*partials.Model" }

func (Parser) Rules() []document.Rule {
	return []document.Rule{
		document.Element(sequenceElement, 1, document.Unbounded,
			document.Element(partialElement, 1, document.Unbounded,
				document.Float64s(ProbabilitiesAttribute),
			),
		),
		document.Element(taxa.ElementName, 1, 1),
	}
}

// Parse builds a Model from node. Sequences become rows in document order and
// partials become sites in document order. The number of sequences must match
// the taxon count, every sequence must cover the same number of sites, and a
// sequence that names its taxon must sit at that taxon's row.
func (p Parser) Parse(scope plugin.Scope, node *document.Node) (any, error) {
	if err := document.Evaluate(node, p.Rules()); err != nil {
		return nil, err
	}
	taxaNode, _ := node.Child(taxa.ElementName)
	set, err := resolveTaxa(scope, taxaNode)
	if err != nil {
		return nil, err
	}

	var (
		rows  [][][]float64
		sites int
	)
	for _, child := range node.Children() {
		if child.Tag != sequenceElement {
			continue
		}
		row := len(rows)
		if err := checkTaxon(child, set, row); err != nil {
			return nil, err
		}
		var vectors [][]float64
		for _, entry := range child.Children() {
			if entry.Tag != partialElement {
				continue
			}
			values, err := entry.Float64s(ProbabilitiesAttribute)
			if err != nil {
				return nil, err
			}
			vectors = append(vectors, values)
		}
		if row == 0 {
			sites = len(vectors)
		} else if len(vectors) != sites {
			return nil, document.Errorf(child, "sequence has %d partials, expected %d", len(vectors), sites)
		}
		rows = append(rows, vectors)
	}
	if len(rows) != set.Count() {
		return nil, document.Errorf(node, "%d sequences for %d taxa", len(rows), set.Count())
	}

	matrix, err := NewMatrix(rows)
	if err != nil {
		return nil, document.NewStructuralError(node, "invalid partials", err)
	}
	model, err := NewModel(node.ID(), set, matrix)
	if err != nil {
		return nil, document.NewStructuralError(node, "invalid partials", err)
	}
	return model, nil
}

// resolveTaxa follows an idref to a stored taxon list or builds one inline.
func resolveTaxa(scope plugin.Scope, node *document.Node) (*taxa.Set, error) {
	ref := node.IDRef()
	if ref == "" {
		return taxa.FromNode(node)
	}
	if scope == nil {
		return nil, document.Errorf(node, "cannot resolve idref %q without a scope", ref)
	}
	obj, ok := scope.Lookup(ref)
	if !ok {
		return nil, document.Errorf(node, "idref %q does not name an earlier element", ref)
	}
	set, ok := obj.(*taxa.Set)
	if !ok {
		return nil, document.Errorf(node, "idref %q refers to %T, not a taxon list", ref, obj)
	}
	return set, nil
}

func checkTaxon(sequence *document.Node, set *taxa.Set, row int) error {
	if !sequence.HasAttribute(TaxonAttribute) {
		if row >= set.Count() {
			return document.Errorf(sequence, "sequence %d has no taxon; only %d taxa declared", row, set.Count())
		}
		return nil
	}
	name, err := sequence.String(TaxonAttribute)
	if err != nil {
		return err
	}
	index, ok := set.IndexOf(name)
	switch {
	case !ok:
		return document.Errorf(sequence, "unknown taxon %q", name)
	case index != row:
		return document.Errorf(sequence, "taxon %q is taxon %d but its sequence is row %d", name, index, row)
	}
	return nil
}

// Plugin contributes the partialsAlignment parser to a registry.
type Plugin struct{}

func (Plugin) Parsers() []plugin.Parser {
	return []plugin.Parser{Parser{}}
}

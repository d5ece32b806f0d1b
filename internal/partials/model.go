// Package partials implements a tip observation model whose leaves carry a
// probability vector per site instead of a single state, together with the
// parser that builds it from a partialsAlignment element.
package partials

import (
	"fmt"

	"github.com/kingrea/arbitrary-partials/internal/taxa"
	"github.com/kingrea/arbitrary-partials/internal/tip"
)

// ElementName is the document tag and registry key of the model.
const ElementName = "partialsAlignment"

const onlyPartials = "this model emits only tip partials"

// Model serves each taxon's stored probability vectors. It references the
// taxon list and owns its Matrix; neither changes after construction.
type Model struct {
	id     string
	taxa   *taxa.Set
	matrix *Matrix
}

var _ tip.Model = (*Model)(nil)

// NewModel binds a matrix to a taxon list. Row i holds taxon i, so the row
// count must equal the taxon count.
func NewModel(id string, set *taxa.Set, matrix *Matrix) (*Model, error) {
	if set == nil {
		return nil, fmt.Errorf("partials: taxa are required")
	}
	if matrix == nil {
		return nil, fmt.Errorf("partials: matrix is required")
	}
	if matrix.Taxa() != set.Count() {
		return nil, fmt.Errorf("partials: %d rows for %d taxa", matrix.Taxa(), set.Count())
	}
	return &Model{id: id, taxa: set, matrix: matrix}, nil
}

// ID returns the element id, if one was declared.
func (m *Model) ID() string { return m.id }

// Taxa returns the taxon list the rows are indexed by.
func (m *Model) Taxa() *taxa.Set { return m.taxa }

// Matrix returns the stored partials.
func (m *Model) Matrix() *Matrix { return m.matrix }

// Kind is always tip.KindPartials.
func (m *Model) Kind() tip.Kind { return tip.KindPartials }

func (m *Model) TaxonCount() int { return m.taxa.Count() }

// PartialsLen returns the buffer length TipPartials needs for a taxon.
func (m *Model) PartialsLen(taxon int) (int, error) {
	if err := tip.CheckTaxon(taxon, m.TaxonCount()); err != nil {
		return 0, err
	}
	return m.matrix.RowLen(taxon)
}

// TipPartials copies the taxon's vectors, site after site, into out.
func (m *Model) TipPartials(taxon int, out []float64) error {
	if err := tip.CheckTaxon(taxon, m.TaxonCount()); err != nil {
		return err
	}
	return m.matrix.CopyRow(taxon, out)
}

func (m *Model) TipStates(int, []int) error {
	return tip.Unsupported("TipStates", onlyPartials)
}

// OnTaxaChanged always fails: the rows were bound to the taxon list at parse
// time and cannot be rebuilt.
func (m *Model) OnTaxaChanged() error {
	return tip.Unsupported("OnTaxaChanged", "partials cannot be rebuilt after the taxon list changes")
}

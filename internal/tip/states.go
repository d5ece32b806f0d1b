package tip

import (
	"fmt"

	"github.com/kingrea/arbitrary-partials/internal/taxa"
)

// StatesModel serves one discrete state per taxon and site.
type StatesModel struct {
	taxa   *taxa.Set
	states [][]int
}

var _ Model = (*StatesModel)(nil)

// NewStatesModel copies states, which must hold one equally long row per taxon.
func NewStatesModel(set *taxa.Set, states [][]int) (*StatesModel, error) {
	if set == nil {
		return nil, fmt.Errorf("tip: taxa are required")
	}
	if len(states) != set.Count() {
		return nil, fmt.Errorf("tip: %d state rows for %d taxa", len(states), set.Count())
	}
	rows := make([][]int, len(states))
	for i, row := range states {
		if len(row) != len(states[0]) {
			return nil, fmt.Errorf("tip: row %d has %d sites, expected %d", i, len(row), len(states[0]))
		}
		rows[i] = append([]int{}, row...)
	}
	return &StatesModel{taxa: set, states: rows}, nil
}

func (m *StatesModel) Kind() Kind { return KindDiscreteStates }

func (m *StatesModel) TaxonCount() int { return m.taxa.Count() }

func (m *StatesModel) TipStates(taxon int, out []int) error {
	if err := CheckTaxon(taxon, len(m.states)); err != nil {
		return err
	}
	row := m.states[taxon]
	if err := CheckBuffer(len(out), len(row)); err != nil {
		return err
	}
	copy(out, row)
	return nil
}

func (m *StatesModel) TipPartials(int, []float64) error {
	return Unsupported("TipPartials", "this model emits only tip states")
}

// OnTaxaChanged is a no-op: the model keeps no state derived from taxon order.
func (m *StatesModel) OnTaxaChanged() error { return nil }

package tip

import "fmt"

// Tips holds every taxon's observations as loaded by an engine. Only the
// slice matching Kind is populated.
type Tips struct {
	Kind     Kind
	States   [][]int
	Partials [][]float64
}

// Collect reads every taxon from m the way a likelihood engine does at setup:
// it asks for the kind once, then fills one buffer per taxon. Partials
// buffers hold siteCount*stateCount values, states buffers siteCount.
func Collect(m Model, siteCount, stateCount int) (*Tips, error) {
	if m == nil {
		return nil, fmt.Errorf("tip: model is required")
	}
	if siteCount <= 0 {
		return nil, fmt.Errorf("tip: site count must be positive")
	}
	n := m.TaxonCount()
	tips := &Tips{Kind: m.Kind()}
	switch tips.Kind {
	case KindPartials:
		if stateCount <= 0 {
			return nil, fmt.Errorf("tip: state count must be positive")
		}
		tips.Partials = make([][]float64, n)
		for i := 0; i < n; i++ {
			buf := make([]float64, siteCount*stateCount)
			if err := m.TipPartials(i, buf); err != nil {
				return nil, fmt.Errorf("tip: taxon %d: %w", i, err)
			}
			tips.Partials[i] = buf
		}
	case KindDiscreteStates:
		tips.States = make([][]int, n)
		for i := 0; i < n; i++ {
			buf := make([]int, siteCount)
			if err := m.TipStates(i, buf); err != nil {
				return nil, fmt.Errorf("tip: taxon %d: %w", i, err)
			}
			tips.States[i] = buf
		}
	default:
		return nil, fmt.Errorf("tip: unknown model kind %s", tips.Kind)
	}
	return tips, nil
}

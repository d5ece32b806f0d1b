// Package tip defines the contract through which a likelihood engine reads
// per-taxon observations at the leaves of a tree.
//
// Observations come in two kinds. A discrete-states model hands out one state
// index per site; a partials model hands out a probability vector per site.
// Kind is the tag an engine switches on to pick its evaluation strategy, and
// each model only supports the accessor matching its kind.
package tip

import "fmt"

// Kind discriminates the observation variants.
type Kind int

const (
	KindDiscreteStates Kind = iota
	KindPartials
)

func (k Kind) String() string {
	switch k {
	case KindDiscreteStates:
		return "discrete-states"
	case KindPartials:
		return "partials"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Model is implemented by every tip observation source.
//
// TipPartials and TipStates copy one taxon's data into a caller-owned buffer;
// the caller controls allocation so repeated evaluations do not allocate.
// Implementations are immutable once constructed and safe for concurrent
// reads with distinct buffers.
type Model interface {
	Kind() Kind
	TaxonCount() int
	TipPartials(taxon int, out []float64) error
	TipStates(taxon int, out []int) error
	// OnTaxaChanged is called when the host's taxon list changes.
	OnTaxaChanged() error
}

package partials

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/kingrea/arbitrary-partials/internal/tip"
)

// Matrix stores matrix[taxon][site] = probability vector. Each taxon's row is
// kept flattened in site-major order so it can be copied into an engine
// buffer in one step. A Matrix is immutable; accessors return copies.
type Matrix struct {
	rows    [][]float64
	offsets [][]int // offsets[t][s] is where site s starts in rows[t]; len sites+1
	sites   int
}

// NewMatrix copies vectors into a Matrix. Every row must have the same,
// non-zero number of sites and every vector at least one value. Vector
// lengths may differ between sites.
func NewMatrix(vectors [][][]float64) (*Matrix, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("partials: matrix has no rows")
	}
	sites := len(vectors[0])
	if sites == 0 {
		return nil, fmt.Errorf("partials: row 0 has no sites")
	}
	m := &Matrix{
		rows:    make([][]float64, len(vectors)),
		offsets: make([][]int, len(vectors)),
		sites:   sites,
	}
	for t, row := range vectors {
		if len(row) != sites {
			return nil, fmt.Errorf("partials: row %d has %d sites, expected %d", t, len(row), sites)
		}
		offsets := make([]int, sites+1)
		total := 0
		for s, v := range row {
			if len(v) == 0 {
				return nil, fmt.Errorf("partials: row %d site %d has an empty vector", t, s)
			}
			offsets[s] = total
			total += len(v)
		}
		offsets[sites] = total
		flat := make([]float64, 0, total)
		for _, v := range row {
			flat = append(flat, v...)
		}
		m.rows[t] = flat
		m.offsets[t] = offsets
	}
	return m, nil
}

// Taxa returns the number of rows.
func (m *Matrix) Taxa() int { return len(m.rows) }

// Sites returns the number of sites shared by every row.
func (m *Matrix) Sites() int { return m.sites }

// RowLen returns the flattened length of a row.
func (m *Matrix) RowLen(taxon int) (int, error) {
	if err := tip.CheckTaxon(taxon, len(m.rows)); err != nil {
		return 0, err
	}
	return len(m.rows[taxon]), nil
}

// Row returns a copy of a flattened row.
func (m *Matrix) Row(taxon int) ([]float64, error) {
	if err := tip.CheckTaxon(taxon, len(m.rows)); err != nil {
		return nil, err
	}
	return append([]float64{}, m.rows[taxon]...), nil
}

// Vector returns a copy of one site's probability vector.
func (m *Matrix) Vector(taxon, site int) ([]float64, error) {
	if err := tip.CheckTaxon(taxon, len(m.rows)); err != nil {
		return nil, err
	}
	if site < 0 || site >= m.sites {
		return nil, &tip.BoundsError{What: "site", Index: site, Limit: m.sites}
	}
	off := m.offsets[taxon]
	return append([]float64{}, m.rows[taxon][off[site]:off[site+1]]...), nil
}

// CopyRow copies a flattened row into out without allocating.
func (m *Matrix) CopyRow(taxon int, out []float64) error {
	if err := tip.CheckTaxon(taxon, len(m.rows)); err != nil {
		return err
	}
	row := m.rows[taxon]
	if err := tip.CheckBuffer(len(out), len(row)); err != nil {
		return err
	}
	copy(out, row)
	return nil
}

// Uniform reports the common vector length when every site of every row has
// the same number of states.
func (m *Matrix) Uniform() (int, bool) {
	width := m.offsets[0][1]
	for _, off := range m.offsets {
		for s := 0; s < m.sites; s++ {
			if off[s+1]-off[s] != width {
				return 0, false
			}
		}
	}
	return width, true
}

// Dense returns a sites×states copy of a row. The row must have a uniform
// vector length.
func (m *Matrix) Dense(taxon int) (*mat.Dense, error) {
	if err := tip.CheckTaxon(taxon, len(m.rows)); err != nil {
		return nil, err
	}
	off := m.offsets[taxon]
	width := off[1]
	for s := 0; s < m.sites; s++ {
		if off[s+1]-off[s] != width {
			return nil, fmt.Errorf("partials: row %d has vectors of differing length", taxon)
		}
	}
	return mat.NewDense(m.sites, width, append([]float64{}, m.rows[taxon]...)), nil
}

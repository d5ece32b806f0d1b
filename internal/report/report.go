// Package report summarises a partials alignment for the command line.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kingrea/arbitrary-partials/internal/partials"
)

// TaxonSummary describes one row of the alignment. Site sums are reported but
// never enforced; vectors are not required to be normalised.
type TaxonSummary struct {
	Taxon   string
	Values  int
	MinSum  float64
	MaxSum  float64
	MeanSum float64
	// OffSites counts sites whose sum differs from 1 by more than the tolerance.
	OffSites int
}

// Summary describes a whole alignment.
type Summary struct {
	ID    string
	Taxa  int
	Sites int
	// States is the common vector length, or 0 when lengths vary.
	States    int
	Tolerance float64
	Rows      []TaxonSummary
}

// Summarize computes per-taxon site sums.
func Summarize(m *partials.Model, tolerance float64) (*Summary, error) {
	if m == nil {
		return nil, fmt.Errorf("report: model is required")
	}
	if tolerance < 0 || math.IsNaN(tolerance) {
		return nil, fmt.Errorf("report: tolerance must be non-negative")
	}
	matrix := m.Matrix()
	s := &Summary{
		ID:        m.ID(),
		Taxa:      m.TaxonCount(),
		Sites:     matrix.Sites(),
		Tolerance: tolerance,
		Rows:      make([]TaxonSummary, 0, m.TaxonCount()),
	}
	if width, ok := matrix.Uniform(); ok {
		s.States = width
	}
	ids := m.Taxa().IDs()
	sums := make([]float64, matrix.Sites())
	for t, n := 0, m.TaxonCount(); t < n; t++ {
		row := TaxonSummary{Taxon: ids[t]}
		for site := range sums {
			v, err := matrix.Vector(t, site)
			if err != nil {
				return nil, fmt.Errorf("report: %w", err)
			}
			row.Values += len(v)
			sums[site] = floats.Sum(v)
			if math.Abs(sums[site]-1) > tolerance || math.IsNaN(sums[site]) {
				row.OffSites++
			}
		}
		row.MinSum = floats.Min(sums)
		row.MaxSum = floats.Max(sums)
		row.MeanSum = stat.Mean(sums, nil)
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	warnStyle   = cellStyle.Foreground(lipgloss.Color("#FF6B6B"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

// Render draws the summary as a titled table.
func Render(s *Summary) string {
	if s == nil {
		return ""
	}
	states := "mixed"
	if s.States > 0 {
		states = strconv.Itoa(s.States)
	}
	name := s.ID
	if name == "" {
		name = partials.ElementName
	}
	title := titleStyle.Render(fmt.Sprintf("%s: %d taxa × %d sites, states %s", name, s.Taxa, s.Sites, states))

	rows := make([][]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, []string{
			r.Taxon,
			strconv.Itoa(r.Values),
			formatSum(r.MinSum),
			formatSum(r.MaxSum),
			formatSum(r.MeanSum),
			strconv.Itoa(r.OffSites),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))).
		Headers("TAXON", "VALUES", "MIN SUM", "MAX SUM", "MEAN SUM", "OFF").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 5 && row >= 0 && row < len(s.Rows) && s.Rows[row].OffSites > 0:
				return warnStyle
			default:
				return cellStyle
			}
		})

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

func formatSum(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

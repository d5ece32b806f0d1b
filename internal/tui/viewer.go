// Package tui provides an interactive browser for a partials alignment.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/mat"

	"github.com/kingrea/arbitrary-partials/internal/logging"
	"github.com/kingrea/arbitrary-partials/internal/partials"
)

const logPanelLines = 5

// taxonItem implements list.Item for one row of the alignment.
type taxonItem struct {
	index  int
	id     string
	sites  int
	values int
}

func (i taxonItem) Title() string { return i.id }
func (i taxonItem) Description() string {
	return fmt.Sprintf("taxon %d · %d sites · %d values", i.index, i.sites, i.values)
}
func (i taxonItem) FilterValue() string { return i.id }

// Viewer is the bubbletea model behind `partials view`.
type Viewer struct {
	model    *partials.Model
	title    string
	taxaMenu list.Model
	width    int
	height   int
	// offset is the first site shown in the detail pane.
	offset  int
	logPath string
}

// Option customizes a Viewer.
type Option func(*Viewer)

// WithLogFile shows the tail of the project log under the panes.
func WithLogFile(path string) Option {
	return func(v *Viewer) { v.logPath = path }
}

// NewViewer builds a viewer listing every taxon of m.
func NewViewer(m *partials.Model, title string, opts ...Option) (*Viewer, error) {
	if m == nil {
		return nil, fmt.Errorf("tui: model is required")
	}
	ids := m.Taxa().IDs()
	items := make([]list.Item, len(ids))
	for i, id := range ids {
		n, err := m.PartialsLen(i)
		if err != nil {
			return nil, fmt.Errorf("tui: %w", err)
		}
		items[i] = taxonItem{index: i, id: id, sites: m.Matrix().Sites(), values: n}
	}
	menu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "Taxa"
	menu.SetShowHelp(false)
	if strings.TrimSpace(title) == "" {
		title = partials.ElementName
	}
	v := &Viewer{model: m, title: title, taxaMenu: menu}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v, nil
}

// Run opens the viewer on the terminal until the user quits.
func Run(m *partials.Model, title string, opts ...Option) error {
	v, err := NewViewer(m, title, opts...)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(v, tea.WithAltScreen()).Run()
	return err
}

func (v *Viewer) Init() tea.Cmd { return nil }

func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.taxaMenu.SetSize(v.menuWidth(), max(0, msg.Height-6))
		v.clampOffset()
		return v, nil

	case tea.KeyMsg:
		if v.taxaMenu.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return v, tea.Quit
		case "right", "l", "pgdown":
			v.offset += v.pageSize()
			v.clampOffset()
			return v, nil
		case "left", "h", "pgup":
			v.offset -= v.pageSize()
			v.clampOffset()
			return v, nil
		case "home":
			v.offset = 0
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.taxaMenu, cmd = v.taxaMenu.Update(msg)
	return v, cmd
}

func (v *Viewer) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ " + v.title)
	left := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Render(v.taxaMenu.View())
	right := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(v.renderDetail())
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render("↑/↓ taxa · ←/→ sites · / filter · q quit")
	parts := []string{header, lipgloss.JoinHorizontal(lipgloss.Top, left, right)}
	if panel := v.renderLogPanel(); panel != "" {
		parts = append(parts, panel)
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (v *Viewer) renderLogPanel() string {
	lines, err := logging.Tail(v.logPath, logPanelLines)
	if err != nil {
		lines = append(lines, err.Error())
	}
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("LOG")
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		MaxWidth(max(20, v.width-4)).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(head + "\n" + body)
}

// Selected returns the index of the highlighted taxon.
func (v *Viewer) Selected() int {
	if item, ok := v.taxaMenu.SelectedItem().(taxonItem); ok {
		return item.index
	}
	return 0
}

// Offset returns the first site shown in the detail pane.
func (v *Viewer) Offset() int { return v.offset }

func (v *Viewer) renderDetail() string {
	taxon := v.Selected()
	matrix := v.model.Matrix()
	sites := matrix.Sites()
	end := min(sites, v.offset+v.pageSize())

	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("%s · sites %d-%d of %d", v.model.Taxa().At(taxon).ID, v.offset, end-1, sites))

	var body string
	if dense, err := matrix.Dense(taxon); err == nil {
		_, cols := dense.Dims()
		page := dense.Slice(v.offset, end, 0, cols)
		body = fmt.Sprintf("%.4g", mat.Formatted(page, mat.Squeeze()))
	} else {
		lines := make([]string, 0, end-v.offset)
		for site := v.offset; site < end; site++ {
			vec, err := matrix.Vector(taxon, site)
			if err != nil {
				return err.Error()
			}
			lines = append(lines, fmt.Sprintf("%4d  %v", site, vec))
		}
		body = strings.Join(lines, "\n")
	}
	return head + "\n" + body
}

func (v *Viewer) pageSize() int {
	return max(1, v.height-8)
}

func (v *Viewer) clampOffset() {
	last := v.model.Matrix().Sites() - v.pageSize()
	if v.offset > last {
		v.offset = last
	}
	if v.offset < 0 {
		v.offset = 0
	}
}

func (v *Viewer) menuWidth() int {
	return max(20, v.width/3)
}

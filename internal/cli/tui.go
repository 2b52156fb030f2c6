package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/sketchmap/pkg/feature"
	"github.com/matzehuels/sketchmap/pkg/panel"
	"github.com/matzehuels/sketchmap/pkg/style"
)

// List styles
var (
	listDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	panelKeyStyle = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	panelBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// subtypeColor returns the fill color of a polygon subtype for the terminal.
func subtypeColor(s style.Subtype) (lipgloss.Color, bool) {
	c, ok := s.FillColor()
	if !ok {
		return "", false
	}
	return lipgloss.Color(c.Hex()), true
}

// =============================================================================
// FeatureListModel - Interactive feature browser
// =============================================================================

// FeatureListModel is the bubbletea model for browsing the features of a
// session. Enter selects the feature under the cursor, which shows it in
// the attributes panel of the session.
type FeatureListModel struct {
	Title    string
	Features []feature.Feature
	Cursor   int
	Selected *feature.Feature
	Height   int
	Offset   int
}

// NewFeatureListModel creates a new feature list model.
func NewFeatureListModel(title string, features []feature.Feature) FeatureListModel {
	return FeatureListModel{
		Title:    title,
		Features: features,
		Height:   12,
	}
}

func (m FeatureListModel) Init() tea.Cmd {
	return nil
}

func (m FeatureListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Features)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(len(m.Features)-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		case "enter":
			if len(m.Features) == 0 {
				return m, nil
			}
			f := m.Features[m.Cursor]
			m.Selected = &f
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		// title, help, table borders, panel
		m.Height = max(msg.Height-14, 3)
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

func (m FeatureListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.Features) == 0 {
		b.WriteString(listDimStyle.Render("  No features drawn yet"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Features))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		f := m.Features[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		sub := string(f.Subtype())
		if sub == "" {
			sub = "—"
		}
		rows = append(rows, []string{cursor, f.ID, string(f.Type), sub, panel.FormatMetric(f.Length), panel.FormatMetric(f.Area)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Type", "Subtype", "Length (m)", "Area (m²)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Features) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle().Foreground(colorDim)
			if c, ok := subtypeColor(m.Features[idx].Subtype()); ok && col == 3 {
				base = base.Foreground(c)
			}
			if idx == m.Cursor {
				if col == 3 {
					return base.Bold(true)
				}
				return base.Foreground(colorCyan).Bold(true)
			}
			if col == 1 {
				return base.Foreground(colorWhite)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(attributesBox(m.Features[m.Cursor]))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Features))))

	return b.String()
}

// attributesBox renders the attributes panel of f.
func attributesBox(f feature.Feature) string {
	var lines []string
	for _, field := range panel.Attributes(f) {
		lines = append(lines, panelKeyStyle.Render(field.Label)+" "+StyleValue.Render(field.Value))
	}
	return panelBoxStyle.Render(strings.Join(lines, "\n"))
}

package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/prosegen/narrate/pkg/book"
)

// Section browser styles
var (
	tabSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	tabNormalStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// newViewCmd creates the view command, an interactive section browser.
func newViewCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "view [input.fable]",
		Short: "Browse the rendered book's sections interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := renderForCommand(cmd.Context(), args, configPath)
			if err != nil {
				return err
			}
			model := newSectionModel(book.Sections(doc))
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "book metadata file (TOML)")

	return cmd
}

// sectionModel is the bubbletea model for paging through book sections.
type sectionModel struct {
	Sections []book.Section
	Cursor   int
	Offset   int
	Height   int
}

// newSectionModel creates a section browser over the given sections.
func newSectionModel(sections []book.Section) sectionModel {
	return sectionModel{
		Sections: sections,
		Height:   20,
	}
}

func (m sectionModel) Init() tea.Cmd {
	return nil
}

func (m sectionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.Cursor > 0 {
				m.Cursor--
				m.Offset = 0
			}
		case "right", "l", "tab":
			if m.Cursor < len(m.Sections)-1 {
				m.Cursor++
				m.Offset = 0
			}
		case "up", "k":
			if m.Offset > 0 {
				m.Offset--
			}
		case "down", "j":
			if m.Offset < m.maxOffset() {
				m.Offset++
			}
		case "pgup":
			m.Offset -= m.Height
			if m.Offset < 0 {
				m.Offset = 0
			}
		case "pgdown":
			m.Offset += m.Height
			if max := m.maxOffset(); m.Offset > max {
				m.Offset = max
			}
		case "home", "g":
			m.Offset = 0
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 5
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// maxOffset returns the largest body scroll offset that still fills the
// window.
func (m sectionModel) maxOffset() int {
	lines := m.bodyLines()
	if len(lines) <= m.Height {
		return 0
	}
	return len(lines) - m.Height
}

func (m sectionModel) bodyLines() []string {
	if len(m.Sections) == 0 {
		return nil
	}
	return strings.Split(strings.TrimRight(m.Sections[m.Cursor].Body, "\n"), "\n")
}

func (m sectionModel) View() string {
	var b strings.Builder

	if len(m.Sections) == 0 {
		return StyleDim.Render("empty book") + "\n"
	}

	tabs := make([]string, len(m.Sections))
	for i, s := range m.Sections {
		if i == m.Cursor {
			tabs[i] = tabSelectedStyle.Render(s.Title)
		} else {
			tabs[i] = tabNormalStyle.Render(s.Title)
		}
	}
	b.WriteString(strings.Join(tabs, StyleDim.Render("  ·  ")))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ section  ↑/↓ scroll  q quit"))
	b.WriteString("\n\n")

	lines := m.bodyLines()
	end := m.Offset + m.Height
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[m.Offset:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Sections))))

	return b.String()
}

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"pcfg.dev/cli/internal/core/domain"
	"pcfg.dev/cli/internal/core/property"
)

// NewViewCommand creates the view command
func NewViewCommand(container *CLIContainer) *cobra.Command {
	flags := &ResolveFlags{}

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse resolved properties interactively",
		Long: `Resolve configuration and browse the properties in a terminal view.

Controls: [/] filter by key prefix, [Enter/Esc] leave filter, [↑↓ PgUp PgDn] scroll, [q] quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(container)
			if err != nil {
				return err
			}
			res, err := container.ResolutionService.Resolve(cmd.Context(), req)
			if err != nil {
				return err
			}

			program := tea.NewProgram(newViewModel(res), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("view failed: %w", err)
			}
			return nil
		},
	}

	flags.bind(cmd.Flags())
	return cmd
}

var (
	viewTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	viewKeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	viewMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	viewFilterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// viewModel holds the state of the property browser
type viewModel struct {
	res       *domain.Resolution
	filter    string
	filtering bool
	viewport  viewport.Model
	ready     bool
}

func newViewModel(res *domain.Resolution) viewModel {
	return viewModel{res: res}
}

// Init implements the Bubble Tea init method
func (m viewModel) Init() tea.Cmd {
	return nil
}

// Update implements the Bubble Tea update method
func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 1)
		m.ready = true
		m.viewport.SetContent(m.body())
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			switch msg.Type {
			case tea.KeyEnter, tea.KeyEsc:
				m.filtering = false
			case tea.KeyBackspace:
				if m.filter != "" {
					m.filter = m.filter[:len(m.filter)-1]
				}
			case tea.KeyRunes:
				m.filter += string(msg.Runes)
			case tea.KeyCtrlC:
				return m, tea.Quit
			}
			m.viewport.SetContent(m.body())
			m.viewport.GotoTop()
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "/":
			m.filtering = true
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// visible returns the properties whose key starts with the filter
func (m viewModel) visible() []property.Entry {
	var out []property.Entry
	m.res.Properties.Range(func(key string, value property.Value) bool {
		if strings.HasPrefix(key, m.filter) {
			out = append(out, property.Entry{Key: key, Value: value})
		}
		return true
	})
	return out
}

func (m viewModel) body() string {
	entries := m.visible()
	if len(entries) == 0 {
		return viewMutedStyle.Render("  No properties match.")
	}
	width := 0
	for _, e := range entries {
		width = max(width, len(e.Key))
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		key := viewKeyStyle.Render(fmt.Sprintf("%-*s", width, e.Key))
		value := e.Value.String()
		if e.Value.Kind() == property.KindNull {
			value = viewMutedStyle.Render(value)
		}
		lines[i] = key + " = " + value
	}
	return strings.Join(lines, "\n")
}

// View implements the Bubble Tea view method
func (m viewModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	profiles := m.res.ProfilesString()
	if profiles == "" {
		profiles = "(none)"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		viewTitleStyle.Render("pcfg"),
		"  ",
		fmt.Sprintf("Profiles: %s | Sources: %d | Properties: %d/%d",
			profiles, len(m.res.Sources), len(m.visible()), m.res.Properties.Len()),
	)

	filter := viewMutedStyle.Render("Press / to filter")
	if m.filtering || m.filter != "" {
		filter = viewFilterStyle.Render("Filter: " + m.filter)
		if m.filtering {
			filter += viewFilterStyle.Render("▏")
		}
	}

	footer := viewMutedStyle.Render("Controls: [/] Filter | [↑↓] Scroll | [q] Quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, m.viewport.View(), footer)
}

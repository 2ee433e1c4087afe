package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dsjohal14/quicksearch/internal/widget"
	"github.com/spf13/cobra"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#7928CA", Dark: "#7D56F4"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#98A2B3", Dark: "#667085"}
	colorDanger  = lipgloss.AdaptiveColor{Light: "#D92D20", Dark: "#F97066"}

	titleStyle    = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	selectedStyle = lipgloss.NewStyle().Reverse(true).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(colorDanger)
)

// Screen rows of the layout. Item i is drawn on firstItemRow+i.
const (
	inputRow     = 1
	viewAllRow   = 2
	firstItemRow = 3
)

// dispatchMsg carries a widget callback onto the bubbletea update loop
type dispatchMsg struct {
	f func()
}

type tuiModel struct {
	w       *widget.Widget
	input   textinput.Model
	hovered int
	status  string
}

func newTUIModel() *tuiModel {
	ti := textinput.New()
	ti.Placeholder = "Search entire store here..."
	ti.CharLimit = 128
	ti.Width = 48
	ti.Focus()

	return &tuiModel{input: ti, hovered: -1}
}

func (m *tuiModel) Init() tea.Cmd {
	m.w.Focus()
	return textinput.Blink
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dispatchMsg:
		msg.f()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.w.Stop()
			return m, tea.Quit
		}
		if key, ok := widgetKey(msg.Type); ok {
			m.w.KeyDown(key)
			m.syncInput()
			return m, nil
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if value := m.input.Value(); value != before {
			m.status = ""
			m.w.Input(value)
		}
		return m, cmd

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}

	return m, nil
}

func widgetKey(t tea.KeyType) (widget.Key, bool) {
	switch t {
	case tea.KeyHome:
		return widget.KeyHome, true
	case tea.KeyEnd:
		return widget.KeyEnd, true
	case tea.KeyEsc:
		return widget.KeyEscape, true
	case tea.KeyEnter:
		return widget.KeyEnter, true
	case tea.KeyUp:
		return widget.KeyUp, true
	case tea.KeyDown:
		return widget.KeyDown, true
	default:
		return widget.KeyOther, false
	}
}

// syncInput copies a value the widget overwrote back into the text input
func (m *tuiModel) syncInput() {
	if value := m.w.View().Field.Value; value != m.input.Value() {
		m.input.SetValue(value)
		m.input.CursorEnd()
	}
}

func (m *tuiModel) handleMouse(msg tea.MouseMsg) {
	v := m.w.View()
	row := msg.Y - firstItemRow
	onItem := v.Visible && row >= 0 && row < len(v.Elements)

	switch msg.Action {
	case tea.MouseActionMotion:
		if m.hovered >= 0 && (!onItem || row != m.hovered) {
			m.w.MouseOut(m.hovered)
			m.hovered = -1
		}
		if onItem && row != m.hovered {
			m.w.Hover(row)
			m.hovered = row
		}

	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		switch {
		case onItem:
			m.status = "open " + v.Elements[row].URL
		case v.Visible && msg.Y == viewAllRow:
			m.w.Close()
		default:
			m.w.DocumentClick(msg.Y == inputRow)
		}
	}
}

func (m *tuiModel) View() string {
	v := m.w.View()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Quick search"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	if v.Form.Loading {
		b.WriteString(mutedStyle.Render("  searching..."))
	}
	b.WriteString("\n")

	if v.Visible {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("View All Results: %d  [x]", v.Info.Size)))
		b.WriteString("\n")
		for i, it := range v.Results {
			line := fmt.Sprintf("%-40s %12s", it.Name, it.Price)
			if it.Reviews != "" {
				line += " *"
			}
			if i == v.Selected {
				line = selectedStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("\nenter search  up/down select  esc close  ctrl+c quit"))
	return b.String()
}

func newTUICmd(apiURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive quick search box",
		RunE: func(*cobra.Command, []string) error {
			opts := widget.DefaultOptions()
			opts.URL = suggestURL(*apiURL)

			fetcher, err := widget.NewHTTPFetcher(opts.URL, nil)
			if err != nil {
				return err
			}

			m := newTUIModel()
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

			w, err := widget.New(opts, fetcher,
				func(f func()) { p.Send(dispatchMsg{f: f}) },
				widget.WithSubmit(func(value string) { m.status = "search: " + value }),
			)
			if err != nil {
				return err
			}
			m.w = w

			_, err = p.Run()
			return err
		},
	}
}

package interactive

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
)

// ErrSelectionCancelled is returned when the operator quits the multi-select
var ErrSelectionCancelled = errors.New("selection cancelled")

// multiSelectModel is the bubbletea model for multi-select
type multiSelectModel struct {
	items     []string
	cursor    int
	selected  map[int]bool
	title     string
	done      bool
	cancelled bool
}

func newMultiSelectModel(items []string, title string) multiSelectModel {
	return multiSelectModel{
		items:    items,
		selected: make(map[int]bool, len(items)),
		title:    title,
	}
}

func (m multiSelectModel) Init() tea.Cmd {
	return nil
}

func (m multiSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.done = true
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case " ":
		m.selected[m.cursor] = !m.selected[m.cursor]
	case "a":
		all := len(m.chosen()) < len(m.items)
		for i := range m.items {
			m.selected[i] = all
		}
	case "enter":
		if len(m.chosen()) > 0 {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// chosen returns the selected items in display order
func (m multiSelectModel) chosen() []string {
	var out []string
	for i, item := range m.items {
		if m.selected[i] {
			out = append(out, item)
		}
	}
	return out
}

func (m multiSelectModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(color.New(color.FgCyan, color.Bold).Sprintf("%s\n\n", m.title))

	for i, item := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = color.New(color.FgCyan).Sprint("▸")
		}

		checkbox := color.New(color.FgWhite).Sprint("○")
		if m.selected[i] {
			checkbox = color.New(color.FgGreen).Sprint("✓")
		}

		b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, checkbox, item))
	}

	b.WriteString("\n")
	b.WriteString(color.New(color.FgYellow).Sprint("↑/↓: move  Space: toggle  a: all  Enter: confirm  q: quit\n"))

	return b.String()
}

// SelectComponents shows a multi-select over names and returns the ticked ones
func SelectComponents(names []string, title string) ([]string, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no components to select")
	}

	p := tea.NewProgram(newMultiSelectModel(names, title))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("multi-select failed: %w", err)
	}

	m := finalModel.(multiSelectModel)
	if m.cancelled || !m.done {
		return nil, ErrSelectionCancelled
	}
	return m.chosen(), nil
}

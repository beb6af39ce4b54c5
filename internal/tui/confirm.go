package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmResultMsg is emitted once the user answers a confirmation.
type ConfirmResultMsg struct {
	ID  string
	Yes bool
}

// ConfirmModel is a yes/no prompt. While active it swallows key presses;
// y confirms; n, enter and esc decline.
type ConfirmModel struct {
	id     string
	prompt string
	active bool
	width  int
}

func NewConfirmModel() ConfirmModel { return ConfirmModel{} }

// Ask activates the prompt. The answer comes back tagged with id.
func (m ConfirmModel) Ask(id, prompt string) ConfirmModel {
	m.id = id
	m.prompt = prompt
	m.active = true
	return m
}

func (m ConfirmModel) Active() bool { return m.active }

func (m ConfirmModel) Update(msg tea.Msg) (ConfirmModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if !m.active {
			return m, nil
		}
		var yes bool
		switch msg.String() {
		case "y", "Y":
			yes = true
		case "n", "N", "enter", "esc", "ctrl+c":
			yes = false
		default:
			return m, nil
		}
		m.active = false
		id := m.id
		return m, func() tea.Msg { return ConfirmResultMsg{ID: id, Yes: yes} }
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if !m.active {
		return ""
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("11")).
		Padding(0, 2)
	hint := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("[y/N]")
	box := style.Render(m.prompt + " " + hint)
	if m.width <= 0 {
		return box
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, box)
}

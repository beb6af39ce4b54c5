package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastError
)

// ToastDuration is how long a toast stays on screen.
const ToastDuration = 3 * time.Second

type ShowToastMsg struct {
	Message string
	Kind    ToastKind
}

type HideToastMsg struct{ shownAt time.Time }

type ToastModel struct {
	message   string
	kind      ToastKind
	visible   bool
	timestamp time.Time
	width     int
}

func NewToastModel() ToastModel { return ToastModel{} }

// ShowToast is a convenience command for emitting a toast.
func ShowToast(message string, kind ToastKind) tea.Cmd {
	return func() tea.Msg { return ShowToastMsg{Message: message, Kind: kind} }
}

func (m ToastModel) Update(msg tea.Msg) (ToastModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ShowToastMsg:
		m.message = msg.Message
		m.kind = msg.Kind
		m.visible = true
		m.timestamp = time.Now()
		shownAt := m.timestamp
		return m, tea.Tick(ToastDuration, func(time.Time) tea.Msg { return HideToastMsg{shownAt: shownAt} })
	case HideToastMsg:
		// a newer toast replaced the one this hide was scheduled for
		if msg.shownAt.IsZero() || msg.shownAt.Equal(m.timestamp) {
			m.visible = false
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m ToastModel) Visible() bool { return m.visible }

func (m ToastModel) Message() string { return m.message }

func (m ToastModel) View() string {
	if !m.visible {
		return ""
	}
	bg := lipgloss.Color("86")
	switch m.kind {
	case ToastSuccess:
		bg = lipgloss.Color("42")
	case ToastError:
		bg = lipgloss.Color("9")
	}
	toast := lipgloss.NewStyle().
		Foreground(lipgloss.Color("230")).
		Background(bg).
		Padding(0, 2).
		MarginRight(2).
		Bold(true).
		Render(m.message)
	if m.width <= 0 {
		return toast
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toast)
}

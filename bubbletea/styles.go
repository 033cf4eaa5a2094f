package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/trickle"
)

// Styles holds the lipgloss styles derived from a Theme.
type Styles struct {
	User       lipgloss.Style
	Thinking   lipgloss.Style
	Error      lipgloss.Style
	Attachment lipgloss.Style
	Status     lipgloss.Style
	Title      lipgloss.Style
}

func NewStyles(t trickle.Theme) Styles {
	return Styles{
		User:       lipgloss.NewStyle().Foreground(ansiColor(t.User)).Bold(true),
		Thinking:   lipgloss.NewStyle().Foreground(ansiColor(t.Thinking)).Faint(true),
		Error:      lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Attachment: lipgloss.NewStyle().Foreground(ansiColor(t.Attachment)).Italic(true),
		Status:     lipgloss.NewStyle().Foreground(ansiColor(t.Status)).Faint(true),
		Title:      lipgloss.NewStyle().Foreground(ansiColor(t.Title)).Bold(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

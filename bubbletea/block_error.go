package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders the reason a reply failed and how to regenerate it.
type ErrorBlock struct {
	reason string
	styles Styles
}

// NewErrorBlock creates an ErrorBlock. An empty reason reads "Unknown error".
func NewErrorBlock(reason string, styles Styles) *ErrorBlock {
	if reason == "" {
		reason = "Unknown error"
	}
	return &ErrorBlock{reason: reason, styles: styles}
}

func (b *ErrorBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ErrorBlock) View(width int) string {
	content := b.styles.Error.Render("Error: "+b.reason) + "\n" +
		b.styles.Status.Render("Ctrl+R to regenerate")
	return lipgloss.NewStyle().Width(width).Render(content)
}

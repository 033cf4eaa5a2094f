package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*AssistantTextBlock)(nil)

// AssistantTextBlock renders answer text as plain wrapped text. While a
// reply streams the model replaces its text with the paced visible prefix.
type AssistantTextBlock struct {
	text string
}

// NewAssistantTextBlock creates an empty AssistantTextBlock.
func NewAssistantTextBlock() *AssistantTextBlock {
	return &AssistantTextBlock{}
}

// SetText replaces the displayed text.
func (b *AssistantTextBlock) SetText(text string) { b.text = text }

// Text returns the displayed text.
func (b *AssistantTextBlock) Text() string { return b.text }

func (b *AssistantTextBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *AssistantTextBlock) View(width int) string {
	if b.text == "" {
		return ""
	}
	return lipgloss.NewStyle().Width(width).Render(b.text)
}

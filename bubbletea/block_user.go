package bubbletea

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/trickle"
)

var _ MessageBlock = (*UserMessageBlock)(nil)

// UserMessageBlock renders a sent message: text after a "> " prompt, one
// line per image attachment.
type UserMessageBlock struct {
	msg    trickle.UserMessage
	styles Styles
}

func NewUserMessageBlock(msg trickle.UserMessage, styles Styles) *UserMessageBlock {
	return &UserMessageBlock{msg: msg, styles: styles}
}

func (b *UserMessageBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *UserMessageBlock) View(width int) string {
	var lines []string
	if text := b.msg.Text(); text != "" {
		lines = append(lines, b.styles.User.Render("> ")+text)
	}
	for _, c := range b.msg.Content {
		if img, ok := c.(trickle.ImageBlock); ok {
			label := fmt.Sprintf("[%s, %d bytes]", img.MimeType, len(img.Data))
			lines = append(lines, b.styles.Attachment.Render(label))
		}
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

package bubbletea

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*ThinkingBlock)(nil)

// ThinkingBlock renders model thinking with a collapsible toggle. It is
// hidden while it has no content.
type ThinkingBlock struct {
	text      string
	collapsed bool
	styles    Styles
}

// NewThinkingBlock creates a ThinkingBlock that starts collapsed.
func NewThinkingBlock(styles Styles) *ThinkingBlock {
	return &ThinkingBlock{collapsed: true, styles: styles}
}

// SetText replaces the thinking text.
func (b *ThinkingBlock) SetText(text string) { b.text = text }

// SetCollapsed sets the collapsed state.
func (b *ThinkingBlock) SetCollapsed(collapsed bool) { b.collapsed = collapsed }

// Collapsed reports whether the content is hidden.
func (b *ThinkingBlock) Collapsed() bool { return b.collapsed }

func (b *ThinkingBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ThinkingBlock) View(width int) string {
	if b.text == "" {
		return ""
	}
	wrap := lipgloss.NewStyle().Width(width)

	if b.collapsed {
		label := fmt.Sprintf("▶ Thinking (%d words)", len(strings.Fields(b.text)))
		return b.styles.Thinking.Render(wrap.Render(label))
	}
	header := b.styles.Thinking.Render(wrap.Render("▼ Thinking"))
	content := b.styles.Thinking.Render(wrap.Render(b.text))
	return header + "\n" + content
}

package bubbletea

import tea "github.com/charmbracelet/bubbletea"

// MessageBlock is one rendered piece of a conversation. View takes the
// viewport width so the model owns layout. An empty View hides the block.
type MessageBlock interface {
	Update(tea.Msg) (MessageBlock, tea.Cmd)
	View(width int) string
}

// collapsible blocks can take focus and respond to ToggleMsg.
type collapsible interface {
	MessageBlock
	Collapsed() bool
}

// ToggleMsg expands or collapses the focused block.
type ToggleMsg struct{}

package bubbletea

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/trickle"
	"github.com/fwojciec/trickle/chat"
	"github.com/fwojciec/trickle/pace"
)

var _ tea.Model = Model{}

// Options configures a [Model].
type Options struct {
	// Model is the model ID sent with each request.
	Model string
	// Persona applies to a conversation created by the first send.
	Persona *trickle.Persona
	Theme   trickle.Theme
	// Interval is the pacer tick. Zero uses pace.DefaultInterval.
	Interval time.Duration
}

// Model is the Bubble Tea model for the trickle TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	svc    *chat.Service
	store  trickle.ConversationStore
	conv   trickle.Conversation
	opts   Options
	styles Styles
	pacer  *pace.Pacer

	blocks     []MessageBlock
	blockFocus int // index of focused thinking block (-1 = none)

	// Blocks of the running exchange. They are replaced by the stored
	// reply once the exchange ends.
	live         *liveThinking
	liveThinking *ThinkingBlock
	liveText     *AssistantTextBlock

	running bool
	cancel  context.CancelFunc
	err     error
	ready   bool
}

// New creates a TUI Model for conv. A zero conv starts a new conversation
// on the first send.
func New(svc *chat.Service, store trickle.ConversationStore, conv trickle.Conversation, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		Input:      ti,
		svc:        svc,
		store:      store,
		conv:       conv,
		opts:       opts,
		styles:     NewStyles(opts.Theme),
		pacer:      pace.New(pace.WithInterval(opts.Interval)),
		blockFocus: -1,
	}
}

// Running returns whether an exchange is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Conversation returns the conversation shown, as last read from the store.
func (m Model) Conversation() trickle.Conversation { return m.conv }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case RevealTickMsg:
		if !m.running {
			return m, nil
		}
		m.liveThinking.SetText(m.live.get())
		m.liveText.SetText(m.pacer.Visible())
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		return m, revealTick()

	case ExchangeDoneMsg:
		m.running = false
		m.cancel = nil
		m.live = nil
		m.liveThinking = nil
		m.liveText = nil
		if msg.Err != nil && !trickle.IsCanceled(msg.Err) {
			m.err = msg.Err
		}
		m = m.reload()
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		cmd := m.Input.Focus()
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	// Pass remaining messages to sub-components.
	// Viewport always receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	// Output area.
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")

	// Status line.
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	// Input area.
	b.WriteString(m.Input.View())

	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := msg.Height - inputH - statusHeight - borderHeight

	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderConversation()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			m.cancel()
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEsc:
		if m.running {
			m.cancel()
		}
		return m, nil

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)

	case tea.KeyCtrlR:
		if m.running || !m.hasUserMessage() {
			return m, nil
		}
		m.err = nil
		m = m.dropReply()
		return m.startExchange(true)

	case tea.KeyTab:
		if m.blockFocus >= 0 {
			block, cmd := m.blocks[m.blockFocus].Update(ToggleMsg{})
			m.blocks[m.blockFocus] = block
			m.Viewport.SetContent(m.renderContent())
			return m, cmd
		}
		return m, nil

	case tea.KeyShiftTab:
		if !m.running {
			m = m.cycleFocusPrev()
		}
		return m, nil
	}

	// When idle, pass keys to both input (for typing) and viewport
	// (for scrolling). Only forward non-character keys to viewport to avoid
	// conflicts (e.g. 'j'/'k' are viewport scroll AND text characters).
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	msg := trickle.NewUserMessage(text)
	if m.conv.ID == "" {
		conv, err := m.svc.NewConversation(ctx, msg, m.opts.Persona)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.conv = conv
	} else {
		if err := m.svc.AddUserMessage(ctx, m.conv.ID, msg); err != nil {
			m.err = err
			return m, nil
		}
		m.conv.Messages = append(m.conv.Messages, msg)
	}

	m.Input.SetValue("")
	m.err = nil
	m.blocks = append(m.blocks, NewUserMessageBlock(msg, m.styles))
	return m.startExchange(false)
}

// startExchange adds the live blocks and runs Send, or Retry when retry is
// set, on a command goroutine. Reveal ticks redraw until it ends.
func (m Model) startExchange(retry bool) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.running = true
	m.pacer.Reset()

	m.live = &liveThinking{}
	m.liveThinking = NewThinkingBlock(m.styles)
	m.liveThinking.SetCollapsed(false)
	m.liveText = NewAssistantTextBlock()
	m.blocks = append(m.blocks, m.liveThinking, m.liveText)
	m = m.updateBlockFocus()

	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	m.Input.Blur()

	send := m.svc.Send
	if retry {
		send = m.svc.Retry
	}
	convID, model, p, onUpdate := m.conv.ID, m.opts.Model, m.pacer, m.live.update
	exchange := func() tea.Msg {
		_, err := send(ctx, convID, model, p, onUpdate)
		return ExchangeDoneMsg{Err: err}
	}
	return m, tea.Batch(exchange, revealTick())
}

// reload re-reads the conversation from the store and rebuilds the blocks.
func (m Model) reload() Model {
	if m.conv.ID == "" {
		return m
	}
	conv, err := m.store.Get(context.Background(), m.conv.ID)
	if err != nil {
		if m.err == nil {
			m.err = err
		}
		return m
	}
	m.conv = conv
	return m.renderConversation()
}

// renderConversation creates blocks from the stored messages.
func (m Model) renderConversation() Model {
	m.blocks = nil
	for _, msg := range m.conv.Messages {
		switch msg := msg.(type) {
		case trickle.UserMessage:
			m.blocks = append(m.blocks, NewUserMessageBlock(msg, m.styles))
		case trickle.AssistantMessage:
			if msg.Thinking != "" {
				block := NewThinkingBlock(m.styles)
				block.SetText(msg.Thinking)
				m.blocks = append(m.blocks, block)
			}
			if msg.Text != "" {
				block := NewAssistantTextBlock()
				block.SetText(msg.Text)
				m.blocks = append(m.blocks, block)
			}
			if msg.IsError {
				m.blocks = append(m.blocks, NewErrorBlock(msg.Error, m.styles))
			}
		}
	}
	return m.updateBlockFocus()
}

func (m Model) renderContent() string {
	var b strings.Builder
	for _, block := range m.blocks {
		view := block.View(m.Viewport.Width)
		if view == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(view)
	}
	return b.String()
}

func (m Model) hasUserMessage() bool {
	for _, msg := range m.conv.Messages {
		if msg.Role() == trickle.RoleUser {
			return true
		}
	}
	return false
}

// dropReply removes the blocks after the last user message.
func (m Model) dropReply() Model {
	for i := len(m.blocks) - 1; i >= 0; i-- {
		if _, ok := m.blocks[i].(*UserMessageBlock); ok {
			m.blocks = m.blocks[:i+1]
			break
		}
	}
	return m.updateBlockFocus()
}

// updateBlockFocus focuses the last thinking block. Only the focused block
// responds to Tab. ShiftTab cycles to the previous one.
func (m Model) updateBlockFocus() Model {
	m.blockFocus = -1
	for i := len(m.blocks) - 1; i >= 0; i-- {
		if _, ok := m.blocks[i].(collapsible); ok {
			m.blockFocus = i
			return m
		}
	}
	return m
}

// cycleFocusPrev moves blockFocus to the previous thinking block, wrapping around.
func (m Model) cycleFocusPrev() Model {
	start := m.blockFocus - 1
	if start < 0 {
		start = len(m.blocks) - 1
	}
	for i := range len(m.blocks) {
		idx := (start - i + len(m.blocks)) % len(m.blocks)
		if _, ok := m.blocks[idx].(collapsible); ok {
			m.blockFocus = idx
			return m
		}
	}
	m.blockFocus = -1
	return m
}

func (m Model) title() string {
	switch {
	case m.conv.ID != "":
		return m.conv.Title
	case m.opts.Persona != nil:
		return m.opts.Persona.Name
	default:
		return trickle.DefaultTitle
	}
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.running {
		return m.styles.Status.Render("Generating... Esc to cancel")
	}
	return m.styles.Title.Render(m.title()) + " " +
		m.styles.Status.Render("Enter to send, Ctrl+R to retry, Tab for thinking, Ctrl+C to quit")
}

// Package bubbletea provides a Bubble Tea TUI for trickle conversations.
package bubbletea

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/trickle"
)

// RevealInterval is how often the view re-reads the paced answer while a
// reply streams.
const RevealInterval = 33 * time.Millisecond

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// RevealTickMsg asks the model to redraw the streaming reply.
type RevealTickMsg struct{}

// ExchangeDoneMsg signals that an exchange has ended.
type ExchangeDoneMsg struct {
	Err error
}

func revealTick() tea.Cmd {
	return tea.Tick(RevealInterval, func(time.Time) tea.Msg { return RevealTickMsg{} })
}

// liveThinking holds the thinking text of the running exchange. It is
// written by the exchange goroutine and read on reveal ticks.
type liveThinking struct {
	mu   sync.Mutex
	text string
}

func (l *liveThinking) update(s trickle.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.text = s.Thinking
}

func (l *liveThinking) get() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.text
}

package pace

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rivo/uniseg"
)

// DefaultInterval is the tick period used by Run and Wait.
const DefaultInterval = 16 * time.Millisecond

// Pacer paces one stream of answer text. SetText is called from the decode
// loop while Tick and Visible are called from the render loop, so all
// methods are safe for concurrent use.
type Pacer struct {
	mu       sync.Mutex
	state    State
	text     string
	bounds   []int // byte offset just past each grapheme cluster of text
	interval time.Duration
}

// Option configures a [Pacer].
type Option func(*Pacer)

// WithInterval sets the tick period.
func WithInterval(d time.Duration) Option {
	return func(p *Pacer) {
		if d > 0 {
			p.interval = d
		}
	}
}

// New creates a [Pacer] with nothing to reveal.
func New(opts ...Option) *Pacer {
	p := &Pacer{interval: DefaultInterval}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Interval returns the tick period.
func (p *Pacer) Interval() time.Duration { return p.interval }

// SetText replaces the received text and moves the target to its length.
func (p *Pacer) SetText(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.segment(text)
	p.state.SetTarget(len(p.bounds))
}

// segment updates bounds for text. Appended text is segmented from the start
// of the previous final cluster, which a combining suffix may extend.
func (p *Pacer) segment(text string) {
	start := 0
	if len(p.bounds) > 0 && strings.HasPrefix(text, p.text) {
		p.bounds = p.bounds[:len(p.bounds)-1]
		if n := len(p.bounds); n > 0 {
			start = p.bounds[n-1]
		}
	} else {
		p.bounds = p.bounds[:0]
	}
	rest := text[start:]
	state := -1
	var cluster string
	for rest != "" {
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		start += len(cluster)
		p.bounds = append(p.bounds, start)
	}
	p.text = text
}

// Tick performs one bounded unit of reveal work and reports whether the
// visible text changed.
func (p *Pacer) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Tick() > 0
}

// Visible returns the revealed prefix of the received text.
func (p *Pacer) Visible() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Revealed == 0 {
		return ""
	}
	return p.text[:p.bounds[p.state.Revealed-1]]
}

// State returns a copy of the reveal counters.
func (p *Pacer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// CaughtUp reports whether all received text is visible.
func (p *Pacer) CaughtUp() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.CaughtUp()
}

// Reset drops all text and zeroes both counters immediately.
func (p *Pacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = State{}
	p.text = ""
	p.bounds = p.bounds[:0]
}

// Run calls Tick on every interval until ctx is done.
func (p *Pacer) Run(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Tick()
		}
	}
}

// Wait blocks until the revealed length reaches the target, polling with
// short sleeps. Something else must be driving Tick. It returns ctx.Err()
// if ctx ends first.
func (p *Pacer) Wait(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for !p.CaughtUp() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

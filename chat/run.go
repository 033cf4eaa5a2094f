package chat

import (
	"context"

	"github.com/fwojciec/trickle"
)

// Run is a session started with Controller.Start. Updates delivers the
// latest snapshot and is closed when the session ends; Wait returns the
// final result.
type Run struct {
	updates chan trickle.Snapshot
	done    chan struct{}
	cancel  context.CancelFunc
	snap    trickle.Snapshot
	err     error
}

// Start runs Send on a new goroutine. Snapshots are delivered latest-value
// first: a consumer that falls behind sees only the newest snapshot, and
// the decode loop never blocks on it.
func (c *Controller) Start(ctx context.Context, req trickle.Request) *Run {
	ctx, cancel := context.WithCancel(ctx)
	r := &Run{
		updates: make(chan trickle.Snapshot, 1),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
	go func() {
		defer close(r.done)
		defer close(r.updates)
		defer cancel()
		r.snap, r.err = c.Send(ctx, req, r.publish)
	}()
	return r
}

func (r *Run) publish(s trickle.Snapshot) {
	select {
	case r.updates <- s:
		return
	default:
	}
	// Replace the stale pending snapshot.
	select {
	case <-r.updates:
	default:
	}
	r.updates <- s
}

// Updates returns the snapshot feed.
func (r *Run) Updates() <-chan trickle.Snapshot { return r.updates }

// Done is closed once the session has ended.
func (r *Run) Done() <-chan struct{} { return r.done }

// Cancel aborts this run.
func (r *Run) Cancel() { r.cancel() }

// Wait blocks until the session ends and returns its result.
func (r *Run) Wait() (trickle.Snapshot, error) {
	<-r.done
	return r.snap, r.err
}

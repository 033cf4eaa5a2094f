package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/trickle"
	"github.com/fwojciec/trickle/pace"
	"golang.org/x/sync/errgroup"
)

// printAnswer runs send with a pacer and copies the revealed answer to w
// as it grows. Cancellation is not reported as an error.
func (a *app) printAnswer(ctx context.Context, w io.Writer, send func(ctx context.Context, p *pace.Pacer) error) error {
	p := pace.New(pace.WithInterval(a.cfg.TickInterval()))
	done := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(done)
		return send(gctx, p)
	})
	g.Go(func() error {
		return copyRevealed(w, p, done, p.Interval())
	})
	err := g.Wait()
	if trickle.IsCanceled(err) {
		fmt.Fprintln(w)
		return nil
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

// copyRevealed writes the newly visible part of p's text to w on every
// interval until done is closed, then writes whatever remains.
func copyRevealed(w io.Writer, p *pace.Pacer, done <-chan struct{}, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	written := 0
	flush := func() error {
		visible := p.Visible()
		if len(visible) <= written {
			return nil
		}
		n, err := io.WriteString(w, visible[written:])
		written += n
		return err
	}
	for {
		select {
		case <-done:
			return flush()
		case <-t.C:
			if err := flush(); err != nil {
				return err
			}
		}
	}
}

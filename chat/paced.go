package chat

import (
	"context"
	"sync"

	"github.com/fwojciec/trickle"
	"github.com/fwojciec/trickle/pace"
)

// SendPaced runs Send while feeding the answer text to p and ticking it.
// On completion it returns only after p has revealed the whole answer. On
// cancellation p is reset. A nil p makes it equivalent to Send.
func (c *Controller) SendPaced(ctx context.Context, req trickle.Request, p *pace.Pacer, onUpdate func(trickle.Snapshot)) (trickle.Snapshot, error) {
	if p == nil {
		return c.Send(ctx, req, onUpdate)
	}
	p.Reset()
	tickCtx, stopTicking := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Run(tickCtx)
	}()
	defer func() {
		stopTicking()
		wg.Wait()
	}()

	snap, err := c.Send(ctx, req, func(update trickle.Snapshot) {
		p.SetText(update.Text)
		if onUpdate != nil {
			onUpdate(update)
		}
	})
	switch {
	case err == nil:
		p.SetText(snap.Text)
		if werr := p.Wait(ctx); werr != nil {
			p.Reset()
			return trickle.Snapshot{}, trickle.Canceled(werr)
		}
		return snap, nil
	case trickle.IsCanceled(err):
		p.Reset()
	}
	return snap, err
}

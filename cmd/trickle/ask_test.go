package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fwojciec/trickle/pace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyRevealed(t *testing.T) {
	t.Parallel()
	p := pace.New(pace.WithInterval(time.Millisecond))
	p.SetText("Hello, paced world")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for !p.CaughtUp() {
			p.Tick()
			time.Sleep(time.Millisecond)
		}
	}()

	var b bytes.Buffer
	require.NoError(t, copyRevealed(&b, p, done, time.Millisecond))
	require.NoError(t, ctx.Err())
	assert.Equal(t, "Hello, paced world", b.String())
}

func TestCopyRevealed_DoneFlushesRemainder(t *testing.T) {
	t.Parallel()
	p := pace.New()
	p.SetText("abc")
	for !p.CaughtUp() {
		p.Tick()
	}
	done := make(chan struct{})
	close(done)

	var b bytes.Buffer
	require.NoError(t, copyRevealed(&b, p, done, time.Hour))
	assert.Equal(t, "abc", b.String())
}

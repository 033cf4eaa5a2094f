package trickle_test

import (
	"testing"

	"github.com/fwojciec/trickle"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTheme(t *testing.T) {
	t.Parallel()

	assert.Equal(t, trickle.Theme{
		User:       4,
		Thinking:   8,
		Error:      1,
		Attachment: 6,
		Status:     8,
		Title:      5,
	}, trickle.DefaultTheme())
}

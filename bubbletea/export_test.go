package bubbletea

import (
	"github.com/fwojciec/trickle"
	"github.com/fwojciec/trickle/pace"
)

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// Pacer returns the model's answer pacer.
func Pacer(m Model) *pace.Pacer {
	return m.pacer
}

// PublishThinking feeds a snapshot to the running exchange's thinking view.
func PublishThinking(m Model, s trickle.Snapshot) {
	m.live.update(s)
}

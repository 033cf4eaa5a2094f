// Package pace reveals streamed text at a steady rate that is independent of
// network arrival timing.
//
// A State holds two counters: the length of text received so far (Target)
// and the length shown to the reader (Revealed). Each tick moves Revealed
// toward Target by a step that grows with the gap, so a burst is caught up
// quickly while a slow stream still reads one character at a time. Lengths
// are counted in grapheme clusters.
package pace

// Step returns how far one tick advances for the given gap between target
// and revealed length.
func Step(gap int) int {
	switch {
	case gap <= 0:
		return 0
	case gap >= 400:
		return 40
	case gap >= 150:
		return 15
	case gap >= 50:
		return 5
	case gap >= 15:
		return 2
	default:
		return 1
	}
}

// State tracks reveal progress for one stream. Revealed never exceeds Target.
type State struct {
	Target   int
	Revealed int
}

// SetTarget records a new target length. If the target shrinks, Revealed is
// clamped down to match.
func (s *State) SetTarget(n int) {
	if n < 0 {
		n = 0
	}
	s.Target = n
	if s.Revealed > n {
		s.Revealed = n
	}
}

// Tick advances Revealed by one step and returns the amount advanced.
func (s *State) Tick() int {
	step := Step(s.Target - s.Revealed)
	s.Revealed += step
	return step
}

// Gap returns how many clusters are still hidden.
func (s State) Gap() int { return s.Target - s.Revealed }

// CaughtUp reports whether everything received has been revealed.
func (s State) CaughtUp() bool { return s.Revealed >= s.Target }

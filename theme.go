package trickle

// Theme maps conversation roles to ANSI color indices (0-15). A negative
// index leaves the terminal's default color.
type Theme struct {
	User       int
	Thinking   int
	Error      int
	Attachment int
	Status     int
	Title      int
}

// DefaultTheme returns the palette used when none is configured.
func DefaultTheme() Theme {
	return Theme{
		User:       4,
		Thinking:   8,
		Error:      1,
		Attachment: 6,
		Status:     8,
		Title:      5,
	}
}

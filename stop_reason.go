package trickle

// StopReason indicates why the assistant stopped generating.
type StopReason string

const (
	StopEndTurn  StopReason = "end_turn"
	StopLength   StopReason = "length"
	StopSequence StopReason = "stop_sequence"
	StopError    StopReason = "error"
	StopAborted  StopReason = "aborted"
	StopUnknown  StopReason = "unknown"
)

// ParseStopReason maps a raw wire stop reason to a StopReason.
// An empty string maps to the empty StopReason.
func ParseStopReason(raw string) StopReason {
	switch raw {
	case "":
		return ""
	case "end_turn", "stop", "STOP":
		return StopEndTurn
	case "max_tokens", "MAX_TOKENS":
		return StopLength
	case "stop_sequence":
		return StopSequence
	default:
		return StopUnknown
	}
}

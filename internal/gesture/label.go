// Package gesture turns per-frame hand landmarks into a debounced,
// confirmable gesture signal: a geometric classifier, a temporal
// stabilizer, and a hold-to-confirm detector.
package gesture

// Label identifies a recognized hand gesture.
type Label int

const (
	// None means no hand was detected this frame.
	None Label = iota
	// Unknown means a hand was detected but matched no known shape.
	Unknown
	// OpenPalm is all five digits extended.
	OpenPalm
	// Fist is all five digits flexed.
	Fist
	// ThumbsUp is only the thumb extended.
	ThumbsUp
	// PeaceSign is index and middle extended, thumb, ring and pinky flexed.
	PeaceSign
)

// String returns the display name of the label.
func (l Label) String() string {
	switch l {
	case None:
		return "None"
	case Unknown:
		return "Unknown"
	case OpenPalm:
		return "Open Palm"
	case Fist:
		return "Fist"
	case ThumbsUp:
		return "Thumbs Up"
	case PeaceSign:
		return "Peace Sign"
	default:
		return "Invalid"
	}
}

// MarshalText implements encoding.TextMarshaler so labels serialize as
// their display names in JSON payloads.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

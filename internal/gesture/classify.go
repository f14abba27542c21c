package gesture

import (
	"math"

	"github.com/ayusman/kalari/internal/detector"
)

// extendedAngleDeg is the minimum angle between the two outer finger
// segments for a digit to count as extended.
const extendedAngleDeg = 160.0

// Classify maps a single frame of hand landmarks to a raw gesture label.
// A nil hand classifies as None. The function is pure: identical landmarks
// always produce the same label.
func Classify(hand *detector.HandLandmarks) Label {
	if hand == nil {
		return None
	}

	extended := [5]bool{
		thumbExtended(hand),
		fingerExtended(hand, detector.IndexMCP, detector.IndexPIP, detector.IndexTip),
		fingerExtended(hand, detector.MiddleMCP, detector.MiddlePIP, detector.MiddleTip),
		fingerExtended(hand, detector.RingMCP, detector.RingPIP, detector.RingTip),
		fingerExtended(hand, detector.PinkyMCP, detector.PinkyPIP, detector.PinkyTip),
	}

	switch {
	case extended[0] && extended[1] && extended[2] && extended[3] && extended[4]:
		return OpenPalm
	case !extended[0] && !extended[1] && !extended[2] && !extended[3] && !extended[4]:
		return Fist
	case extended[0] && !extended[1] && !extended[2] && !extended[3] && !extended[4]:
		return ThumbsUp
	case !extended[0] && extended[1] && extended[2] && !extended[3] && !extended[4]:
		return PeaceSign
	default:
		return Unknown
	}
}

// thumbExtended reports whether the thumb points away from the palm plane.
// The palm normal is the cross product of the index-knuckle and wrist
// vectors taken from the pinky knuckle.
func thumbExtended(hand *detector.HandLandmarks) bool {
	thumb := hand.Points[detector.ThumbTip].Sub(hand.Points[detector.ThumbMCP])

	pinkyBase := hand.Points[detector.PinkyMCP]
	normal := hand.Points[detector.IndexMCP].Sub(pinkyBase).
		Cross(hand.Points[detector.Wrist].Sub(pinkyBase))

	return thumb.Dot(normal) < 0
}

// fingerExtended reports whether a non-thumb digit is extended: the angle
// between the MCP->PIP and PIP->TIP segments exceeds 160 degrees and the
// tip sits above the knuckle (image Y grows downward). Degenerate
// zero-length segments read as not extended.
func fingerExtended(hand *detector.HandLandmarks, mcpIdx, pipIdx, tipIdx int) bool {
	mcp := hand.Points[mcpIdx]
	pip := hand.Points[pipIdx]
	tip := hand.Points[tipIdx]

	v1 := pip.Sub(mcp)
	v2 := tip.Sub(pip)

	n1 := v1.Norm()
	n2 := v2.Norm()
	if n1 < 1e-10 || n2 < 1e-10 {
		return false
	}

	// Clamp before acos so floating point drift cannot produce NaN.
	cos := v1.Dot(v2) / (n1 * n2)
	cos = math.Max(-1, math.Min(1, cos))
	angle := math.Acos(cos) * 180 / math.Pi

	return angle > extendedAngleDeg && tip.Y < mcp.Y
}

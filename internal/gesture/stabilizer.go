package gesture

import "time"

// Stabilizer timing and hysteresis constants.
const (
	// WindowSize is the number of recent raw labels considered.
	WindowSize = 5
	// SwitchConfidence is the minimum fraction of the window a candidate
	// must occupy before the stable label can change.
	SwitchConfidence = 0.6
	// MinStableDuration is the minimum time between stable-label changes.
	MinStableDuration = 300 * time.Millisecond
)

// Stabilizer smooths the raw per-frame label stream into a stable label.
// A candidate replaces the current stable label only when it dominates the
// recent window and enough time has passed since the last change, which
// keeps single-frame misclassifications away from downstream consumers.
//
// Not safe for concurrent use; the tick loop is the only caller.
type Stabilizer struct {
	window     []Label
	current    Label
	lastChange time.Time
}

// NewStabilizer creates a Stabilizer with an empty window and a stable
// label of None.
func NewStabilizer() *Stabilizer {
	return &Stabilizer{
		window:  make([]Label, 0, WindowSize),
		current: None,
	}
}

// Observe appends a raw label to the window and returns the stable label.
// The stable label switches to the window's dominant label only when its
// confidence is at least SwitchConfidence, it differs from the current
// stable label, and at least MinStableDuration has elapsed since the last
// switch. Ties for dominance go to the most recently observed label.
func (s *Stabilizer) Observe(raw Label, now time.Time) Label {
	if len(s.window) == WindowSize {
		copy(s.window, s.window[1:])
		s.window = s.window[:WindowSize-1]
	}
	s.window = append(s.window, raw)

	candidate, count := s.dominant()
	confidence := float64(count) / float64(len(s.window))

	if confidence >= SwitchConfidence && candidate != s.current {
		if s.lastChange.IsZero() || now.Sub(s.lastChange) >= MinStableDuration {
			s.current = candidate
			s.lastChange = now
		}
	}

	return s.current
}

// dominant returns the most frequent label in the window and its count.
// Scanning newest to oldest makes the most recently seen label win ties.
func (s *Stabilizer) dominant() (Label, int) {
	counts := make(map[Label]int, len(s.window))
	for _, l := range s.window {
		counts[l]++
	}

	best := None
	bestCount := 0
	for i := len(s.window) - 1; i >= 0; i-- {
		l := s.window[i]
		if counts[l] > bestCount {
			best = l
			bestCount = counts[l]
		}
	}
	return best, bestCount
}

// Current returns the stable label without observing a new frame.
func (s *Stabilizer) Current() Label {
	return s.current
}

// Confidence returns the fraction of the window occupied by the label.
func (s *Stabilizer) Confidence(l Label) float64 {
	if len(s.window) == 0 {
		return 0
	}
	count := 0
	for _, w := range s.window {
		if w == l {
			count++
		}
	}
	return float64(count) / float64(len(s.window))
}

// Confidences returns the confidence of every label present in the window.
// The returned map is a copy; values sum to 1 when the window is non-empty.
func (s *Stabilizer) Confidences() map[Label]float64 {
	out := make(map[Label]float64)
	if len(s.window) == 0 {
		return out
	}
	for _, w := range s.window {
		out[w] += 1.0 / float64(len(s.window))
	}
	return out
}

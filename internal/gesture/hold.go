package gesture

import "time"

// HoldThreshold is how long a stable label must be held continuously
// before it counts as a deliberate, confirmed action.
const HoldThreshold = time.Second

// HoldDetector latches a confirmation once a stable label has been held
// without interruption for HoldThreshold. The latch is one-shot per hold
// episode: after a consumer takes it via Consume it stays clear until the
// label changes and a fresh hold completes.
//
// Not safe for concurrent use; the tick loop is the only caller.
type HoldDetector struct {
	label     Label
	holdStart time.Time
	started   bool
	confirmed bool
	fired     bool

	// OnConfirmed, when set, fires once per hold episode at the moment
	// the confirmation latches. Used to notify the presentation layer.
	OnConfirmed func(Label)
}

// NewHoldDetector creates a HoldDetector with no active hold.
func NewHoldDetector() *HoldDetector {
	return &HoldDetector{}
}

// Observe feeds the current stable label. A label change resets the hold
// episode and clears any unconsumed confirmation; holding the same label
// past HoldThreshold latches the confirmation exactly once.
func (h *HoldDetector) Observe(stable Label, now time.Time) {
	if !h.started || stable != h.label {
		h.label = stable
		h.holdStart = now
		h.started = true
		h.confirmed = false
		h.fired = false
		return
	}

	if !h.fired && now.Sub(h.holdStart) >= HoldThreshold {
		h.confirmed = true
		h.fired = true
		if h.OnConfirmed != nil {
			h.OnConfirmed(stable)
		}
	}
}

// Peek reports whether an unconsumed confirmation is latched, without
// clearing it. Rendering uses this; actions must use Consume.
func (h *HoldDetector) Peek() bool {
	return h.confirmed
}

// Consume reads and clears the confirmation in one step so at most one
// consumer can act on a given hold episode.
func (h *HoldDetector) Consume() bool {
	c := h.confirmed
	h.confirmed = false
	return c
}

// Label returns the stable label currently being held.
func (h *HoldDetector) Label() Label {
	return h.label
}

// Progress returns how far the current hold is toward confirmation, in
// [0,1]. It is monotonically non-decreasing within a hold episode and
// resets to 0 when the label changes.
func (h *HoldDetector) Progress(now time.Time) float64 {
	if !h.started {
		return 0
	}
	p := float64(now.Sub(h.holdStart)) / float64(HoldThreshold)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

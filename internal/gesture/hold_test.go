package gesture

import (
	"testing"
	"time"
)

func TestHoldDetectorLatchesAfterThreshold(t *testing.T) {
	h := NewHoldDetector()
	start := time.Unix(1000, 0)

	h.Observe(OpenPalm, start)
	if h.Peek() {
		t.Fatal("Peek() = true immediately after hold start")
	}

	h.Observe(OpenPalm, start.Add(HoldThreshold-time.Millisecond))
	if h.Peek() {
		t.Fatal("Peek() = true before threshold")
	}

	h.Observe(OpenPalm, start.Add(HoldThreshold))
	if !h.Peek() {
		t.Fatal("Peek() = false at threshold")
	}
	if got := h.Label(); got != OpenPalm {
		t.Errorf("Label() = %v, want OpenPalm", got)
	}
}

func TestHoldDetectorConsumeIsOneShot(t *testing.T) {
	h := NewHoldDetector()
	start := time.Unix(1000, 0)

	h.Observe(Fist, start)
	h.Observe(Fist, start.Add(HoldThreshold))

	if !h.Consume() {
		t.Fatal("Consume() = false on latched confirmation")
	}
	if h.Consume() {
		t.Fatal("Consume() = true twice for one hold episode")
	}

	// Continuing to hold the same label must not re-latch.
	h.Observe(Fist, start.Add(2*HoldThreshold))
	h.Observe(Fist, start.Add(3*HoldThreshold))
	if h.Peek() {
		t.Fatal("Peek() = true after consume with no label change")
	}
}

func TestHoldDetectorResetOnLabelChange(t *testing.T) {
	h := NewHoldDetector()
	start := time.Unix(1000, 0)

	h.Observe(ThumbsUp, start)
	h.Observe(ThumbsUp, start.Add(HoldThreshold))
	if !h.Peek() {
		t.Fatal("confirmation not latched")
	}

	// A label change discards the unconsumed confirmation and starts a
	// fresh episode.
	changed := start.Add(HoldThreshold + 200*time.Millisecond)
	h.Observe(PeaceSign, changed)
	if h.Peek() {
		t.Fatal("Peek() = true after label change")
	}
	if got := h.Progress(changed); got != 0 {
		t.Errorf("Progress() right after change = %v, want 0", got)
	}

	// The new episode can latch again.
	h.Observe(PeaceSign, changed.Add(HoldThreshold))
	if !h.Consume() {
		t.Fatal("Consume() = false after fresh hold completed")
	}
}

func TestHoldDetectorProgress(t *testing.T) {
	h := NewHoldDetector()
	start := time.Unix(1000, 0)

	if got := h.Progress(start); got != 0 {
		t.Errorf("Progress() before any observation = %v, want 0", got)
	}

	h.Observe(OpenPalm, start)
	prev := 0.0
	for _, d := range []time.Duration{0, 250 * time.Millisecond, 500 * time.Millisecond, 900 * time.Millisecond} {
		got := h.Progress(start.Add(d))
		if got < prev {
			t.Fatalf("Progress() decreased within an episode: %v then %v", prev, got)
		}
		prev = got
	}

	if got := h.Progress(start.Add(500 * time.Millisecond)); got != 0.5 {
		t.Errorf("Progress() at half threshold = %v, want 0.5", got)
	}
	if got := h.Progress(start.Add(5 * HoldThreshold)); got != 1.0 {
		t.Errorf("Progress() past threshold = %v, want clamped 1.0", got)
	}
}

func TestHoldDetectorOnConfirmedFiresOnce(t *testing.T) {
	h := NewHoldDetector()
	start := time.Unix(1000, 0)

	var fired []Label
	h.OnConfirmed = func(l Label) { fired = append(fired, l) }

	h.Observe(Fist, start)
	h.Observe(Fist, start.Add(HoldThreshold))
	h.Observe(Fist, start.Add(2*HoldThreshold))

	if len(fired) != 1 || fired[0] != Fist {
		t.Errorf("OnConfirmed calls = %v, want exactly one Fist", fired)
	}
}

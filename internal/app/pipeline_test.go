package app

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ayusman/kalari/internal/detector"
	"github.com/ayusman/kalari/internal/game"
	"github.com/ayusman/kalari/internal/gesture"
)

// scriptedOpponent always plays the same move.
type scriptedOpponent struct {
	next game.Choice
}

func (o *scriptedOpponent) Record(game.Choice) {}
func (o *scriptedOpponent) Predict(game.Difficulty) game.Choice { return o.next }
func (o *scriptedOpponent) Reset() {}

func newTestPipeline(opp game.Opponent) *Pipeline {
	engine := game.NewEngine(opp, nil, log.New(io.Discard))
	return NewPipeline(engine)
}

// tickUntil feeds the same hand at a steady cadence until the condition
// holds or the tick budget runs out.
func tickUntil(t *testing.T, p *Pipeline, hand *detector.HandLandmarks,
	now *time.Time, max int, cond func(Output) bool) Output {
	t.Helper()
	var out Output
	for i := 0; i < max; i++ {
		*now = now.Add(100 * time.Millisecond)
		out = p.Tick(hand, *now)
		if cond(out) {
			return out
		}
	}
	t.Fatalf("condition not reached within %d ticks; last output: stable=%v state=%v",
		max, out.Stable, out.Game.State)
	return out
}

func TestPipelineIdleOutput(t *testing.T) {
	p := newTestPipeline(&scriptedOpponent{next: game.Rock})
	now := time.Unix(1000, 0)

	var out Output
	for i := 0; i < 5; i++ {
		now = now.Add(100 * time.Millisecond)
		out = p.Tick(nil, now)
	}

	if out.Raw != gesture.None || out.Stable != gesture.None {
		t.Errorf("idle output = raw %v stable %v, want None/None", out.Raw, out.Stable)
	}
	if out.Game.State != game.Menu {
		t.Errorf("Game.State = %v, want Menu", out.Game.State)
	}
	if out.Game.SelectedOption != 0 {
		t.Errorf("SelectedOption = %d, want 0", out.Game.SelectedOption)
	}
}

func TestPipelineHoldDrivesMenuSelection(t *testing.T) {
	p := newTestPipeline(&scriptedOpponent{next: game.Rock})
	now := time.Unix(1000, 0)

	for i := 0; i < 3; i++ {
		now = now.Add(100 * time.Millisecond)
		p.Tick(nil, now)
	}

	hand := detector.OpenPalmLandmarks()

	// The raw label is immediate; the stable label lags behind the
	// debounce window.
	out := p.Tick(&hand, now.Add(100*time.Millisecond))
	if out.Raw != gesture.OpenPalm {
		t.Fatalf("Raw = %v, want OpenPalm", out.Raw)
	}
	now = now.Add(100 * time.Millisecond)

	out = tickUntil(t, p, &hand, &now, 20, func(o Output) bool {
		return o.Stable == gesture.OpenPalm
	})
	if out.Confirmed {
		t.Error("Confirmed = true before the hold completed")
	}
	if out.HoldProgress >= 1 {
		t.Errorf("HoldProgress = %v right after stabilizing, want < 1", out.HoldProgress)
	}

	// Holding the palm past the threshold fires the menu action: the
	// selection advances and the confirmation is consumed in the same
	// tick.
	out = tickUntil(t, p, &hand, &now, 20, func(o Output) bool {
		return o.Game.SelectedOption == 1
	})
	if out.Confirmed {
		t.Error("Confirmed = true after the engine consumed the hold")
	}
	if out.HoldProgress != 1 {
		t.Errorf("HoldProgress = %v at confirmation, want 1", out.HoldProgress)
	}

	// Keeping the palm up must not cycle again: the latch is one-shot
	// per hold episode.
	for i := 0; i < 15; i++ {
		now = now.Add(100 * time.Millisecond)
		out = p.Tick(&hand, now)
	}
	if out.Game.SelectedOption != 1 {
		t.Errorf("SelectedOption = %d after sustained hold, want 1", out.Game.SelectedOption)
	}
}

func TestPipelineHandRemovalResets(t *testing.T) {
	p := newTestPipeline(&scriptedOpponent{next: game.Rock})
	now := time.Unix(1000, 0)

	hand := detector.FistLandmarks()
	tickUntil(t, p, &hand, &now, 20, func(o Output) bool {
		return o.Stable == gesture.Fist
	})

	out := tickUntil(t, p, nil, &now, 20, func(o Output) bool {
		return o.Stable == gesture.None
	})
	if out.Raw != gesture.None {
		t.Errorf("Raw = %v with no hand, want None", out.Raw)
	}
}

func TestPipelinePlaysFullRound(t *testing.T) {
	p := newTestPipeline(&scriptedOpponent{next: game.Scissors})
	now := time.Unix(1000, 0)

	// Hold thumbs up on the default "Play Game" option.
	thumbs := detector.ThumbsUpLandmarks()
	tickUntil(t, p, &thumbs, &now, 30, func(o Output) bool {
		return o.Game.State == game.Transitioning
	})

	// Ride out the fade with no hand in view.
	tickUntil(t, p, nil, &now, 100, func(o Output) bool {
		return o.Game.State == game.Playing
	})

	// Hold a fist: Rock beats the scripted Scissors.
	fist := detector.FistLandmarks()
	out := tickUntil(t, p, &fist, &now, 30, func(o Output) bool {
		return o.Game.State == game.Transitioning
	})
	if out.Game.UserScore != 1 {
		t.Errorf("UserScore = %d after winning round, want 1", out.Game.UserScore)
	}

	out = tickUntil(t, p, nil, &now, 100, func(o Output) bool {
		return o.Game.State == game.Result
	})
	if out.Game.LastRound == nil {
		t.Fatal("LastRound = nil on the result screen")
	}
	if out.Game.LastRound.Player != game.Rock || out.Game.LastRound.Opponent != game.Scissors {
		t.Errorf("LastRound = %v vs %v, want Rock vs Scissors",
			out.Game.LastRound.Player, out.Game.LastRound.Opponent)
	}
	if out.Game.LastRound.Outcome != game.PlayerWin {
		t.Errorf("Outcome = %v, want PlayerWin", out.Game.LastRound.Outcome)
	}
}

func TestPipelineConfidencesTrackWindow(t *testing.T) {
	p := newTestPipeline(&scriptedOpponent{next: game.Rock})
	now := time.Unix(1000, 0)

	hand := detector.PeaceSignLandmarks()
	out := tickUntil(t, p, &hand, &now, 20, func(o Output) bool {
		return o.Confidences[gesture.PeaceSign] > 0.99
	})
	if out.Stable != gesture.PeaceSign {
		t.Errorf("Stable = %v with a saturated window, want PeaceSign", out.Stable)
	}
}

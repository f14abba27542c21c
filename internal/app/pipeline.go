package app

import (
	"time"

	"github.com/ayusman/kalari/internal/detector"
	"github.com/ayusman/kalari/internal/game"
	"github.com/ayusman/kalari/internal/gesture"
)

// Output is everything the presentation layer needs from one tick: the
// gesture signal at each stage plus the render-ready game snapshot.
type Output struct {
	Raw          gesture.Label             `json:"raw"`
	Stable       gesture.Label             `json:"stable"`
	Confidences  map[gesture.Label]float64 `json:"confidences"`
	Confirmed    bool                      `json:"confirmed"`
	HoldProgress float64                   `json:"holdProgress"`
	Game         game.Snapshot             `json:"game"`
}

// Pipeline is the synchronous per-tick chain: classify, stabilize,
// hold-detect, then advance the game engine. All state is owned by the
// single caller; there is no internal locking or parallelism.
type Pipeline struct {
	stabilizer *gesture.Stabilizer
	hold       *gesture.HoldDetector
	engine     *game.Engine
}

// NewPipeline creates a Pipeline around the given engine.
func NewPipeline(engine *game.Engine) *Pipeline {
	return &Pipeline{
		stabilizer: gesture.NewStabilizer(),
		hold:       gesture.NewHoldDetector(),
		engine:     engine,
	}
}

// Hold exposes the hold detector, e.g. to attach a confirmation callback.
func (p *Pipeline) Hold() *gesture.HoldDetector {
	return p.hold
}

// Tick advances the pipeline by one frame. A nil hand means no hand was
// detected and classifies as None.
func (p *Pipeline) Tick(hand *detector.HandLandmarks, now time.Time) Output {
	raw := gesture.Classify(hand)
	stable := p.stabilizer.Observe(raw, now)
	p.hold.Observe(stable, now)

	p.engine.Update(stable, p.hold, now)

	return Output{
		Raw:          raw,
		Stable:       stable,
		Confidences:  p.stabilizer.Confidences(),
		Confirmed:    p.hold.Peek(),
		HoldProgress: p.hold.Progress(now),
		Game:         p.engine.Snapshot(),
	}
}

// runLoop is the capture loop: read a frame at the current rate, gate on
// motion, detect the hand and feed the pipeline. Mirrors the idle/active
// cadence of the capture package: 5 FPS until motion, 15 FPS while a
// player is in front of the camera.
func (a *App) runLoop() {
	defer close(a.stopped)

	activeMode := false
	lastMotionTime := a.clock.Now()

	interval := time.Second / time.Duration(IdleFPS)
	ticker := a.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			now := a.clock.Now()

			frame, err := a.camera.ReadFrame()
			if err != nil {
				a.logger.Error("Error reading frame", "error", err)
				continue
			}

			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = now
				if !activeMode {
					activeMode = true
					a.camera.SetFPS(ActiveFPS)
					interval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(interval)
					a.logger.Debug("Switched to active mode")
				}
			} else if activeMode && now.Sub(lastMotionTime) > IdleTimeout {
				activeMode = false
				a.camera.SetFPS(IdleFPS)
				interval = time.Second / time.Duration(IdleFPS)
				ticker.Reset(interval)
				a.logger.Debug("Switched to idle mode")
			}

			var hand *detector.HandLandmarks
			if activeMode && a.Detector() != nil {
				hands, err := a.Detector().Detect(frame)
				if err != nil {
					a.logger.Error("Error detecting hand", "error", err)
				} else if len(hands) > 0 {
					hand = &hands[0]
				}
			}
			frame.Close()

			output := a.pipeline.Tick(hand, now)

			a.mu.RLock()
			onOutput := a.onOutput
			a.mu.RUnlock()
			if onOutput != nil {
				onOutput(output)
			}

			if output.Game.ExitRequested {
				a.logger.Info("Exit requested from game")
				return
			}
		}
	}
}

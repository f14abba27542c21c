// Package app wires the duel together: camera, motion gate, hand
// detection, the gesture pipeline and the game engine.
package app

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/ayusman/kalari/internal/capture"
	"github.com/ayusman/kalari/internal/detector"
	"github.com/ayusman/kalari/internal/game"
	"github.com/ayusman/kalari/internal/gesture"
	"github.com/ayusman/kalari/internal/randutil"
	"github.com/ayusman/kalari/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active play.
	ActiveFPS = 15
	// IdleTimeout is how long without motion before dropping back to idle.
	IdleTimeout = 2 * time.Second
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	Camera       capture.Camera
	CameraID     int
	MotionThresh float64
	Difficulty   game.Difficulty
	Seed         int64
	Logger       *log.Logger
	Clock        quartz.Clock
}

// App owns the capture loop and the per-tick gesture-to-game pipeline.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	pipeline *Pipeline
	engine   *game.Engine
	logger   *log.Logger
	clock    quartz.Clock

	enabled  bool
	mu       sync.RWMutex
	stopCh   chan struct{}
	stopped  chan struct{}
	onOutput func(Output)
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}

	clock := config.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}

	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // 1% pixel change
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var scores game.ScoreStore
	if config.Store != nil {
		scores = config.Store.Scores()
	}

	camera := config.Camera
	if camera == nil {
		camera = capture.NewCamera(config.CameraID)
	}

	predictor := game.NewPredictor(randutil.New(seed))
	engine := game.NewEngine(predictor, scores, logger.WithPrefix("game"))
	engine.SetDifficulty(config.Difficulty)

	a := &App{
		config:   config,
		camera:   camera,
		motion:   capture.NewMotionDetector(motionThreshold),
		pipeline: NewPipeline(engine),
		engine:   engine,
		logger:   logger,
		clock:    clock,
		enabled:  true,
	}

	if config.Store != nil {
		rounds := config.Store.Rounds()
		engine.OnRound = func(r game.Round) {
			if err := rounds.Record(roundToStore(r)); err != nil {
				logger.Error("Failed to record round", "error", err)
			}
		}
	}

	a.pipeline.Hold().OnConfirmed = func(l gesture.Label) {
		logger.Debug("Gesture held", "gesture", l)
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		logger.Info("Using MediaPipe hand detection")
	} else {
		logger.Warn("MediaPipe not available, using mock detector", "error", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// roundToStore converts an engine round to its persisted form.
func roundToStore(r game.Round) *store.Round {
	outcome := store.OutcomeDraw
	switch r.Outcome {
	case game.PlayerWin:
		outcome = store.OutcomePlayer
	case game.OpponentWin:
		outcome = store.OutcomeOpponent
	}

	return &store.Round{
		Player:     r.Player.String(),
		Opponent:   r.Opponent.String(),
		Outcome:    outcome,
		Difficulty: r.Difficulty.String(),
	}
}

// SetEnabled enables or disables gesture detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// OnOutput registers a callback invoked with every tick's output, on the
// pipeline goroutine. Used by the server to stream snapshots.
func (a *App) OnOutput(fn func(Output)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onOutput = fn
}

// Start opens the camera and begins the capture loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	a.stopped = make(chan struct{})
	go a.runLoop()

	a.logger.Info("Capture loop started")
	return nil
}

// Stop halts the capture loop, persists the high score and releases
// resources.
func (a *App) Stop() {
	a.mu.Lock()

	if a.stopCh != nil {
		close(a.stopCh)
		stopped := a.stopped
		a.stopCh = nil
		a.stopped = nil
		a.mu.Unlock()
		<-stopped
		a.mu.Lock()
	}

	if err := a.camera.Close(); err != nil {
		a.logger.Error("Error closing camera", "error", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			a.logger.Error("Error closing detector", "error", err)
		}
	}

	a.mu.Unlock()

	a.engine.Shutdown()
	a.logger.Info("Capture loop stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Engine returns the game engine.
func (a *App) Engine() *game.Engine {
	return a.engine
}

// Pipeline returns the tick pipeline.
func (a *App) Pipeline() *Pipeline {
	return a.pipeline
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Done returns a channel closed when the capture loop exits, either via
// Stop or a player-requested exit. Valid after Start.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopped
}

package game

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/ayusman/kalari/internal/gesture"
)

// State identifies the engine's top-level mode.
type State int

const (
	Menu State = iota
	Playing
	Result
	Transitioning
)

// String returns the display name of the state.
func (s State) String() string {
	switch s {
	case Menu:
		return "Menu"
	case Playing:
		return "Playing"
	case Result:
		return "Result"
	case Transitioning:
		return "Transitioning"
	default:
		return "Invalid"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Gameplay timing constants.
const (
	// MenuCooldown rate-limits menu cycling to one step per interval.
	MenuCooldown = 500 * time.Millisecond
	// ResultDelay is how long the result screen shows before play resumes.
	ResultDelay = 2 * time.Second
	// TransitionStep is the progress added per tick while transitioning.
	TransitionStep = 0.02
)

// Menu option indices.
const (
	optionPlay = iota
	optionDifficulty
	optionExit
)

// menuOptions are the main menu entries in display order.
var menuOptions = []string{"Play Game", "Difficulty", "Exit"}

// Confirmer is the hold-to-confirm signal the engine consumes. Peek reads
// the latch without taking it; Consume reads and clears it so a given
// confirmation drives at most one action.
type Confirmer interface {
	Peek() bool
	Consume() bool
}

// Opponent chooses the computer's move and tracks the player's habits.
// *Predictor is the production implementation.
type Opponent interface {
	Record(Choice)
	Predict(Difficulty) Choice
	Reset()
}

// ScoreStore persists the high score across runs.
type ScoreStore interface {
	HighScore() (int, error)
	SetHighScore(score int) error
}

// Round is one resolved rock-paper-scissors exchange.
type Round struct {
	Player     Choice     `json:"player"`
	Opponent   Choice     `json:"opponent"`
	Outcome    Outcome    `json:"outcome"`
	Difficulty Difficulty `json:"difficulty"`
}

// Engine is the turn-based duel state machine. It consumes the stable
// gesture stream once per tick and owns scores, difficulty, menu state and
// round resolution. Malformed input (None/Unknown labels) produces no
// transition; the engine always has a valid next tick.
//
// Not safe for concurrent use; the tick loop is the only caller.
type Engine struct {
	state      State
	prevState  State
	nextState  State
	transition float64

	selected       int
	selectingDiff  bool
	lastMenuChange time.Time
	difficulty     Difficulty

	userScore    int
	cpuScore     int
	highScore    int
	newHighScore bool
	lastRound    *Round
	resultSince  time.Time

	exitRequested bool

	predictor Opponent
	scores    ScoreStore
	logger    *log.Logger

	// OnRound, when set, is called after each resolved round.
	OnRound func(Round)
}

// NewEngine creates an Engine in the menu state with the persisted high
// score loaded. A load failure is logged and the score defaults to 0.
func NewEngine(predictor Opponent, scores ScoreStore, logger *log.Logger) *Engine {
	e := &Engine{
		state:      Menu,
		prevState:  Menu,
		difficulty: Easy,
		predictor:  predictor,
		scores:     scores,
		logger:     logger,
	}

	if scores != nil {
		hs, err := scores.HighScore()
		if err != nil {
			logger.Error("Failed to load high score, starting from 0", "error", err)
			hs = 0
		}
		e.highScore = hs
	}

	return e
}

// SetDifficulty overrides the current difficulty, normally driven through
// the menu sub-mode. Exposed for configuration at startup.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// Update advances the state machine by one tick.
func (e *Engine) Update(label gesture.Label, conf Confirmer, now time.Time) {
	switch e.state {
	case Transitioning:
		e.updateTransition(now)
	case Menu:
		e.updateMenu(label, conf, now)
	case Playing:
		e.updatePlaying(label, conf, now)
	case Result:
		e.updateResult(label, conf, now)
	}
}

// startTransition begins a fade toward next. Leaving the result screen
// retires the new-high-score banner.
func (e *Engine) startTransition(next State) {
	e.prevState = e.state
	e.nextState = next
	e.state = Transitioning
	e.transition = 0
	if e.prevState == Result {
		e.newHighScore = false
	}
}

// updateTransition advances the fade and, on saturation, adopts the target
// state and runs its entry effects.
func (e *Engine) updateTransition(now time.Time) {
	e.transition += TransitionStep
	if e.transition < 1 {
		return
	}
	e.transition = 1
	e.state = e.nextState

	switch e.state {
	case Playing:
		e.lastRound = nil
		// A fresh match only starts from the menu; returning from the
		// result screen keeps the running score.
		if e.prevState == Menu {
			e.userScore = 0
			e.cpuScore = 0
			e.newHighScore = false
			e.predictor.Reset()
		}
	case Result:
		e.resultSince = now
	case Menu:
		e.selectingDiff = false
	}
}

func (e *Engine) updateMenu(label gesture.Label, conf Confirmer, now time.Time) {
	confirmed := conf.Peek()
	if !confirmed {
		return
	}

	if e.selectingDiff {
		switch label {
		case gesture.OpenPalm:
			if now.Sub(e.lastMenuChange) > MenuCooldown {
				conf.Consume()
				e.difficulty = e.difficulty.Toggle()
				e.lastMenuChange = now
			}
		case gesture.ThumbsUp, gesture.PeaceSign:
			// Confirm and cancel both leave the sub-mode; neither
			// reverts the difficulty.
			conf.Consume()
			e.selectingDiff = false
		}
		return
	}

	switch label {
	case gesture.OpenPalm:
		if now.Sub(e.lastMenuChange) > MenuCooldown {
			conf.Consume()
			e.selected = (e.selected + 1) % len(menuOptions)
			e.lastMenuChange = now
		}
	case gesture.ThumbsUp:
		conf.Consume()
		switch e.selected {
		case optionPlay:
			e.startTransition(Playing)
		case optionDifficulty:
			e.selectingDiff = true
			e.lastMenuChange = now
		case optionExit:
			e.requestExit()
		}
	case gesture.PeaceSign:
		conf.Consume()
		e.requestExit()
	}
}

func (e *Engine) updatePlaying(label gesture.Label, conf Confirmer, now time.Time) {
	confirmed := conf.Peek()

	if choice, ok := ChoiceForLabel(label); ok && confirmed {
		conf.Consume()
		e.resolveRound(choice, now)
		return
	}

	// Reachable only for non-move gestures; Peace Sign already plays
	// Scissors above, matching the original precedence.
	if label == gesture.PeaceSign && confirmed {
		conf.Consume()
		e.startTransition(Menu)
	}
}

// resolveRound plays one round against the predictor, applies scoring and
// begins the transition to the result screen. A hard-mode win is worth
// double.
func (e *Engine) resolveRound(player Choice, now time.Time) {
	e.predictor.Record(player)
	opponent := e.predictor.Predict(e.difficulty)
	outcome := Resolve(player, opponent)

	switch outcome {
	case PlayerWin:
		increment := 1
		if e.difficulty == Hard {
			increment = 2
		}
		e.userScore += increment
		if e.userScore > e.highScore {
			e.highScore = e.userScore
			e.newHighScore = true
			e.persistHighScore()
		}
	case OpponentWin:
		e.cpuScore++
	}

	round := Round{
		Player:     player,
		Opponent:   opponent,
		Outcome:    outcome,
		Difficulty: e.difficulty,
	}
	e.lastRound = &round

	e.logger.Info("Round resolved",
		"player", player, "opponent", opponent, "outcome", outcome,
		"user", e.userScore, "cpu", e.cpuScore)

	if e.OnRound != nil {
		e.OnRound(round)
	}

	e.startTransition(Result)
}

func (e *Engine) updateResult(label gesture.Label, conf Confirmer, now time.Time) {
	if !e.resultSince.IsZero() && now.Sub(e.resultSince) >= ResultDelay {
		e.resultSince = time.Time{}
		e.startTransition(Playing)
		return
	}

	if !conf.Peek() {
		return
	}

	switch label {
	case gesture.PeaceSign:
		conf.Consume()
		e.startTransition(Menu)
	case gesture.ThumbsUp:
		conf.Consume()
		e.startTransition(Playing)
	}
}

// requestExit persists the high score and marks the session as finished.
// The driver loop observes ExitRequested and stops ticking.
func (e *Engine) requestExit() {
	e.persistHighScore()
	e.exitRequested = true
}

// persistHighScore is fire-and-forget: a failed write is logged and play
// continues.
func (e *Engine) persistHighScore() {
	if e.scores == nil {
		return
	}
	if err := e.scores.SetHighScore(e.highScore); err != nil {
		e.logger.Error("Failed to save high score", "score", e.highScore, "error", err)
	}
}

// Shutdown performs the final high-score write.
func (e *Engine) Shutdown() {
	e.persistHighScore()
}

// ExitRequested reports whether the player asked to leave the game.
func (e *Engine) ExitRequested() bool {
	return e.exitRequested
}

// State returns the current top-level state.
func (e *Engine) State() State {
	return e.state
}

// Difficulty returns the current difficulty level.
func (e *Engine) Difficulty() Difficulty {
	return e.difficulty
}

// HighScore returns the best score seen, including this session.
func (e *Engine) HighScore() int {
	return e.highScore
}

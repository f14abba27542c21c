package game

// Snapshot is the render-ready view of the game handed to the
// presentation layer each tick. It is self-contained: the renderer never
// reaches back into engine state.
type Snapshot struct {
	State              State      `json:"state"`
	PreviousState      State      `json:"previousState"`
	NextState          State      `json:"nextState,omitempty"`
	TransitionProgress float64    `json:"transitionProgress"`
	MenuOptions        []string   `json:"menuOptions"`
	SelectedOption     int        `json:"selectedOption"`
	SelectingDiff      bool       `json:"selectingDifficulty"`
	Difficulty         Difficulty `json:"difficulty"`
	UserScore          int        `json:"userScore"`
	OpponentScore      int        `json:"opponentScore"`
	HighScore          int        `json:"highScore"`
	NewHighScore       bool       `json:"newHighScore"`
	LastRound          *Round     `json:"lastRound,omitempty"`
	ExitRequested      bool       `json:"exitRequested"`
}

// Snapshot captures the current engine state.
func (e *Engine) Snapshot() Snapshot {
	options := make([]string, len(menuOptions))
	copy(options, menuOptions)

	var lastRound *Round
	if e.lastRound != nil {
		r := *e.lastRound
		lastRound = &r
	}

	return Snapshot{
		State:              e.state,
		PreviousState:      e.prevState,
		NextState:          e.nextState,
		TransitionProgress: e.transition,
		MenuOptions:        options,
		SelectedOption:     e.selected,
		SelectingDiff:      e.selectingDiff,
		Difficulty:         e.difficulty,
		UserScore:          e.userScore,
		OpponentScore:      e.cpuScore,
		HighScore:          e.highScore,
		NewHighScore:       e.newHighScore,
		LastRound:          lastRound,
		ExitRequested:      e.exitRequested,
	}
}

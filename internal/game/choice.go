// Package game implements the rock-paper-scissors duel: the round rules,
// the adaptive opponent, and the menu/play/result state machine driven by
// confirmed gestures.
package game

import "github.com/ayusman/kalari/internal/gesture"

// Choice is one of the three playable moves.
type Choice int

const (
	Rock Choice = iota
	Paper
	Scissors
)

// Choices lists all moves in their canonical order. The order doubles as
// the deterministic tie-break for modal-choice selection.
var Choices = [3]Choice{Rock, Paper, Scissors}

// String returns the display name of the choice.
func (c Choice) String() string {
	switch c {
	case Rock:
		return "Rock"
	case Paper:
		return "Paper"
	case Scissors:
		return "Scissors"
	default:
		return "Invalid"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Choice) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Counter returns the move that beats c: Paper beats Rock, Scissors beats
// Paper, Rock beats Scissors.
func (c Choice) Counter() Choice {
	switch c {
	case Rock:
		return Paper
	case Paper:
		return Scissors
	default:
		return Rock
	}
}

// Beats reports whether c wins against other.
func (c Choice) Beats(other Choice) bool {
	return other.Counter() == c
}

// Outcome is the result of a resolved round from the player's viewpoint.
type Outcome int

const (
	Draw Outcome = iota
	PlayerWin
	OpponentWin
)

// String returns the display name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Draw:
		return "Draw"
	case PlayerWin:
		return "You Win!"
	case OpponentWin:
		return "Computer Wins!"
	default:
		return "Invalid"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Resolve applies the cyclic dominance rule.
func Resolve(player, opponent Choice) Outcome {
	switch {
	case player == opponent:
		return Draw
	case player.Beats(opponent):
		return PlayerWin
	default:
		return OpponentWin
	}
}

// Difficulty selects the opponent behavior and the win scoring.
type Difficulty int

const (
	Easy Difficulty = iota
	Hard
)

// String returns the display name of the difficulty.
func (d Difficulty) String() string {
	if d == Hard {
		return "Hard"
	}
	return "Easy"
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Toggle returns the other difficulty level.
func (d Difficulty) Toggle() Difficulty {
	if d == Easy {
		return Hard
	}
	return Easy
}

// ChoiceForLabel maps a confirmed gesture to its move: Fist plays Rock,
// Open Palm plays Paper, Peace Sign plays Scissors. ok is false for
// gestures that are not moves.
func ChoiceForLabel(l gesture.Label) (Choice, bool) {
	switch l {
	case gesture.Fist:
		return Rock, true
	case gesture.OpenPalm:
		return Paper, true
	case gesture.PeaceSign:
		return Scissors, true
	default:
		return 0, false
	}
}

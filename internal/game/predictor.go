package game

import rand "math/rand/v2"

// Predictor tuning constants.
const (
	// HistorySize bounds how many resolved player moves the predictor
	// remembers.
	HistorySize = 5
	// counterProbability is how often the hard opponent plays the counter
	// to the player's modal move rather than a random one.
	counterProbability = 0.75
	// minHistoryForModel is the history size above which the hard
	// opponent starts modeling the player.
	minHistoryForModel = 2
)

// Predictor chooses the opponent's move. On Easy it plays uniformly at
// random. On Hard, once it has seen enough rounds, it finds the player's
// most frequent recent move and usually plays the move that beats it,
// which makes the opponent beatable but not trivial.
type Predictor struct {
	history []Choice
	rng     *rand.Rand
}

// NewPredictor creates a Predictor using the provided random source.
func NewPredictor(rng *rand.Rand) *Predictor {
	return &Predictor{
		history: make([]Choice, 0, HistorySize),
		rng:     rng,
	}
}

// Record appends a resolved player move, evicting the oldest once the
// history is full.
func (p *Predictor) Record(c Choice) {
	if len(p.history) == HistorySize {
		copy(p.history, p.history[1:])
		p.history = p.history[:HistorySize-1]
	}
	p.history = append(p.history, c)
}

// Reset clears the recorded history, as happens when a new match starts.
func (p *Predictor) Reset() {
	p.history = p.history[:0]
}

// History returns a copy of the recorded player moves, oldest first.
func (p *Predictor) History() []Choice {
	out := make([]Choice, len(p.history))
	copy(out, p.history)
	return out
}

// Predict returns the opponent's move for the next round.
func (p *Predictor) Predict(difficulty Difficulty) Choice {
	if difficulty == Hard && len(p.history) > minHistoryForModel {
		modal := p.modalChoice()
		if p.rng.Float64() < counterProbability {
			return modal.Counter()
		}
	}
	return p.randomChoice()
}

// modalChoice returns the most frequent move in the history. Ties break
// toward the earlier move in the canonical Rock, Paper, Scissors order.
func (p *Predictor) modalChoice() Choice {
	var counts [3]int
	for _, c := range p.history {
		counts[c]++
	}

	modal := Rock
	for _, c := range Choices {
		if counts[c] > counts[modal] {
			modal = c
		}
	}
	return modal
}

func (p *Predictor) randomChoice() Choice {
	return Choices[p.rng.IntN(len(Choices))]
}

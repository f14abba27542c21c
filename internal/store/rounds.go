package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Round outcome values as stored.
const (
	OutcomeDraw     = "draw"
	OutcomePlayer   = "player"
	OutcomeOpponent = "opponent"
)

// Round is one resolved round as persisted.
type Round struct {
	ID         string
	Player     string
	Opponent   string
	Outcome    string
	Difficulty string
	CreatedAt  time.Time
}

// Tally aggregates round outcomes.
type Tally struct {
	Draws        int `json:"draws"`
	PlayerWins   int `json:"playerWins"`
	OpponentWins int `json:"opponentWins"`
}

// RoundRepository provides access to the round history.
type RoundRepository struct {
	db *sql.DB
}

// Rounds returns the round repository for this store.
func (s *Store) Rounds() *RoundRepository {
	return &RoundRepository{db: s.db}
}

// Record inserts a resolved round. A missing ID is filled in with a fresh
// UUID.
func (r *RoundRepository) Record(round *Round) error {
	if round.ID == "" {
		round.ID = uuid.NewString()
	}
	if round.CreatedAt.IsZero() {
		round.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO rounds (id, player, opponent, outcome, difficulty, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		round.ID, round.Player, round.Opponent, round.Outcome, round.Difficulty, round.CreatedAt,
	)
	return err
}

// ListRecent returns up to limit rounds, newest first.
func (r *RoundRepository) ListRecent(limit int) ([]*Round, error) {
	rows, err := r.db.Query(
		`SELECT id, player, opponent, outcome, difficulty, created_at
		 FROM rounds ORDER BY created_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*Round
	for rows.Next() {
		round := &Round{}
		if err := rows.Scan(&round.ID, &round.Player, &round.Opponent,
			&round.Outcome, &round.Difficulty, &round.CreatedAt); err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rounds, nil
}

// Tally returns the all-time outcome counts.
func (r *RoundRepository) Tally() (*Tally, error) {
	rows, err := r.db.Query(`SELECT outcome, COUNT(*) FROM rounds GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := &Tally{}
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, err
		}
		switch outcome {
		case OutcomeDraw:
			t.Draws = count
		case OutcomePlayer:
			t.PlayerWins = count
		case OutcomeOpponent:
			t.OpponentWins = count
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return t, nil
}

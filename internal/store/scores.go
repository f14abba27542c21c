package store

import (
	"database/sql"
	"errors"
	"strconv"
)

// highScoreKey is the settings key holding the persisted high score.
const highScoreKey = "high_score"

// ScoreRepository reads and writes the persisted high score.
type ScoreRepository struct {
	db *sql.DB
}

// Scores returns the score repository for this store.
func (s *Store) Scores() *ScoreRepository {
	return &ScoreRepository{db: s.db}
}

// HighScore returns the persisted high score. A missing or malformed
// record reads as 0 rather than an error; only a real database failure
// is reported.
func (r *ScoreRepository) HighScore() (int, error) {
	var raw string
	err := r.db.QueryRow(
		`SELECT value FROM settings WHERE key = ?`, highScoreKey,
	).Scan(&raw)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}

	score, err := strconv.Atoi(raw)
	if err != nil || score < 0 {
		return 0, nil
	}
	return score, nil
}

// SetHighScore writes the high score, replacing any previous value.
func (r *ScoreRepository) SetHighScore(score int) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		highScoreKey, strconv.Itoa(score),
	)
	return err
}

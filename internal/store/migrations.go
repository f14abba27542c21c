package store

// schema holds the migrations in application order. Statements are
// idempotent so migrate can run on every startup.
var schema = []string{
	// Free-form settings; the high score lives here.
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	// One row per resolved rock-paper-scissors round.
	`CREATE TABLE IF NOT EXISTS rounds (
		id TEXT PRIMARY KEY,
		player TEXT NOT NULL CHECK(player IN ('Rock', 'Paper', 'Scissors')),
		opponent TEXT NOT NULL CHECK(opponent IN ('Rock', 'Paper', 'Scissors')),
		outcome TEXT NOT NULL CHECK(outcome IN ('draw', 'player', 'opponent')),
		difficulty TEXT NOT NULL CHECK(difficulty IN ('Easy', 'Hard')),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_rounds_created_at ON rounds(created_at)`,
}

func (s *Store) migrate() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

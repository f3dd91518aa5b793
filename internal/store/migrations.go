package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Workout sessions
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			exercise TEXT NOT NULL,
			archetype TEXT NOT NULL,
			user_email TEXT NOT NULL DEFAULT '',
			target_reps INTEGER NOT NULL,
			total_sets INTEGER NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('active', 'completed', 'stopped')),
			total_reps INTEGER NOT NULL DEFAULT 0,
			partial_reps INTEGER NOT NULL DEFAULT 0,
			sets_completed INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// One row per completed set
		`CREATE TABLE IF NOT EXISTS set_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			set_index INTEGER NOT NULL,
			reps INTEGER NOT NULL,
			partial_reps INTEGER NOT NULL DEFAULT 0,
			hold_ms INTEGER NOT NULL DEFAULT 0,
			completed_at DATETIME NOT NULL,
			UNIQUE(session_id, set_index)
		)`,

		// Progress records waiting for delivery, in enqueue order
		`CREATE TABLE IF NOT EXISTS progress_outbox (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			payload TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status)`,
		`CREATE INDEX IF NOT EXISTS idx_set_results_session_id ON set_results(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

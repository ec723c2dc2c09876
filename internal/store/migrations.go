package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Schemas table - named landmark-to-hand mappings
		`CREATE TABLE IF NOT EXISTS schemas (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			model TEXT NOT NULL,
			left_hand TEXT NOT NULL,
			right_hand TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Bindings table - what to run when a hand produces an event kind
		`CREATE TABLE IF NOT EXISTS bindings (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL CHECK(kind IN ('hit-down', 'hit-sideways')),
			hand TEXT NOT NULL CHECK(hand IN ('left', 'right')),
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(kind, hand)
		)`,

		// Sessions table - one row per classifier run
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			schema_name TEXT NOT NULL,
			settings TEXT NOT NULL DEFAULT '{}',
			frames INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Hits table - every emitted event
		`CREATE TABLE IF NOT EXISTS hits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			frame INTEGER NOT NULL,
			hand TEXT NOT NULL,
			kind TEXT NOT NULL,
			direction INTEGER NOT NULL DEFAULT 0,
			x REAL NOT NULL,
			y REAL NOT NULL,
			velocity REAL NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_hits_session_id ON hits(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

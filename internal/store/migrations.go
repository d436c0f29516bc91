package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Profiles table - stores per-camera calibration: which facing,
		// whether the preview is mirrored, and the detector coordinate
		// convention validated for that setup
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			facing TEXT NOT NULL CHECK(facing IN ('front', 'back')),
			mirrored INTEGER NOT NULL DEFAULT 0,
			units TEXT NOT NULL CHECK(units IN ('normalized', 'pixel')),
			rotation_mode TEXT NOT NULL CHECK(rotation_mode IN ('baked', 'separate')),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_profiles_facing ON profiles(facing)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

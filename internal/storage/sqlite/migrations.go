package sqlite

import "database/sql"

// schema sets up the database. It runs on startup to ensure tables exist.
// The snapshot itself is stored as JSON; schema_version mirrors the
// version inside the payload so old rows can be found without decoding.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    schema_version INTEGER NOT NULL,
    step TEXT NOT NULL,
    people_count INTEGER NOT NULL,
    data TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

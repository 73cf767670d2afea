package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// documents holds the current body of every live document. changelog is
// the append-only log of every applied mutation; seq is the feed
// sequence number.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
    path TEXT NOT NULL,
    id TEXT NOT NULL,
    body TEXT NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (path, id)
);

CREATE TABLE IF NOT EXISTS changelog (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL,
    doc_id TEXT NOT NULL,
    action TEXT NOT NULL,
    body TEXT,
    at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_changelog_path_seq ON changelog(path, seq);
`

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

package database

import (
	"database/sql"
	"fmt"
)

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
// List-valued attributes are JSON text; weak references are plain TEXT
// columns without REFERENCES so deleted targets leave readable rows.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    quality_score REAL NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    last_modified TEXT NOT NULL,
    group_id TEXT
);

CREATE TABLE IF NOT EXISTS note_groups (
    id TEXT PRIMARY KEY,
    is_permanent INTEGER NOT NULL DEFAULT 0,
    permanence_date TEXT,
    permanence_confidence REAL NOT NULL DEFAULT 0
        CHECK(permanence_confidence >= 0 AND permanence_confidence <= 1),
    created_at TEXT NOT NULL,
    front_card_id TEXT,
    supporting_card_ids TEXT NOT NULL DEFAULT '[]',
    topic_id TEXT
);

CREATE TABLE IF NOT EXISTS topics (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL,
    group_ids TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS comparisons (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    note_a_id TEXT NOT NULL DEFAULT '',
    note_b_id TEXT NOT NULL DEFAULT '',
    chosen_note_id TEXT NOT NULL DEFAULT '',
    session_type TEXT NOT NULL DEFAULT 'gradual',
    compared_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_type TEXT NOT NULL DEFAULT 'gradual',
    start_date TEXT NOT NULL,
    end_date TEXT,
    comparisons_count INTEGER NOT NULL DEFAULT 0,
    is_complete INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_notes_group ON notes(group_id);
CREATE INDEX IF NOT EXISTS idx_note_groups_topic ON note_groups(topic_id);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "link comparisons to sessions",
		Up: func(tx *sql.Tx) error {
			exists, err := hasColumn(tx, "comparisons", "session_id")
			if err != nil {
				return err
			}
			if !exists {
				if _, err := tx.Exec(`ALTER TABLE comparisons ADD COLUMN session_id INTEGER`); err != nil {
					return err
				}
			}
			_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_comparisons_session ON comparisons(session_id)`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}

func hasColumn(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

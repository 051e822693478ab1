package database

import (
	"database/sql"
	"fmt"
	"time"
)

const comparisonColumns = `id, note_a_id, note_b_id, chosen_note_id, session_type, session_id, compared_at`

// InsertComparison stores a comparison and sets its id.
func (db *DB) InsertComparison(c *Comparison) error {
	id, err := insertComparison(db.conn, c)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// RecordSessionComparison stores c under the session and increments the
// session's comparison count in one transaction.
func (db *DB) RecordSessionComparison(sessionID int64, c *Comparison) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	c.SessionID = &sessionID
	id, err := insertComparison(tx, c)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		`UPDATE sessions SET comparisons_count = comparisons_count + 1 WHERE id = ?`, sessionID,
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	c.ID = id
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertComparison(e execer, c *Comparison) (int64, error) {
	if c.SessionType == "" {
		c.SessionType = DefaultSessionType
	}
	if c.ComparedAt.IsZero() {
		c.ComparedAt = time.Now().UTC()
	}
	result, err := e.Exec(
		`INSERT INTO comparisons (note_a_id, note_b_id, chosen_note_id, session_type, session_id, compared_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(c.NoteAID), string(c.NoteBID), string(c.ChosenNoteID), c.SessionType, c.SessionID,
		formatTime(c.ComparedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting comparison: %w", err)
	}
	return result.LastInsertId()
}

// GetAllComparisons returns every comparison in insertion order.
func (db *DB) GetAllComparisons() ([]Comparison, error) {
	return db.queryComparisons(`SELECT ` + comparisonColumns + ` FROM comparisons ORDER BY id`)
}

// GetSessionComparisons returns the comparisons recorded in a session.
func (db *DB) GetSessionComparisons(sessionID int64) ([]Comparison, error) {
	return db.queryComparisons(
		`SELECT `+comparisonColumns+` FROM comparisons WHERE session_id = ? ORDER BY id`, sessionID,
	)
}

// DeleteComparisons removes comparisons by id.
func (db *DB) DeleteComparisons(ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	result, err := db.conn.Exec(`DELETE FROM comparisons WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteAllComparisons removes every comparison.
func (db *DB) DeleteAllComparisons() (int64, error) {
	result, err := db.conn.Exec(`DELETE FROM comparisons`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (db *DB) queryComparisons(query string, args ...any) ([]Comparison, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comparison
	for rows.Next() {
		var (
			c          Comparison
			a, b, ch   string
			comparedAt string
		)
		if err := rows.Scan(&c.ID, &a, &b, &ch, &c.SessionType, &c.SessionID, &comparedAt); err != nil {
			return nil, err
		}
		c.NoteAID, c.NoteBID, c.ChosenNoteID = NoteID(a), NoteID(b), NoteID(ch)
		c.ComparedAt = parseTime(comparedAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

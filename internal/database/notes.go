package database

import (
	"database/sql"
	"fmt"
	"time"
)

const noteColumns = `id, title, content, tags, quality_score, created_at, last_modified, group_id`

// InsertNote stores a fully constructed note. Missing id and timestamps
// are filled in.
func (db *DB) InsertNote(n *Note) error {
	if n.ID == "" {
		n.ID = NewNoteID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.LastModified.IsZero() {
		n.LastModified = n.CreatedAt
	}
	tags, err := encodeList(n.Tags)
	if err != nil {
		return err
	}

	_, err = db.conn.Exec(
		`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(n.ID), n.Title, n.Content, tags, n.QualityScore,
		formatTime(n.CreatedAt), formatTime(n.LastModified), groupIDArg(n.GroupID),
	)
	if err != nil {
		return fmt.Errorf("inserting note %q: %w", n.Title, err)
	}
	return nil
}

// GetNote returns a note by id, or nil if it does not exist.
func (db *DB) GetNote(id NoteID) (*Note, error) {
	row := db.conn.QueryRow(`SELECT `+noteColumns+` FROM notes WHERE id = ?`, string(id))
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// GetAllNotes returns every note in insertion order.
func (db *DB) GetAllNotes() ([]Note, error) {
	return db.queryNotes(`SELECT ` + noteColumns + ` FROM notes ORDER BY rowid`)
}

// GetNotesInGroup returns the notes whose group_id points at groupID.
func (db *DB) GetNotesInGroup(groupID GroupID) ([]Note, error) {
	return db.queryNotes(`SELECT `+noteColumns+` FROM notes WHERE group_id = ? ORDER BY rowid`, string(groupID))
}

// UpdateNote saves title, content, tags, score and group of an existing note
// and bumps its modification time.
func (db *DB) UpdateNote(n *Note) error {
	tags, err := encodeList(n.Tags)
	if err != nil {
		return err
	}
	n.LastModified = time.Now().UTC()

	_, err = db.conn.Exec(
		`UPDATE notes SET title = ?, content = ?, tags = ?, quality_score = ?, last_modified = ?, group_id = ?
		WHERE id = ?`,
		n.Title, n.Content, tags, n.QualityScore, formatTime(n.LastModified), groupIDArg(n.GroupID), string(n.ID),
	)
	return err
}

// SetQualityScore overwrites the quality score of a note.
func (db *DB) SetQualityScore(id NoteID, score float64) error {
	_, err := db.conn.Exec(
		`UPDATE notes SET quality_score = ?, last_modified = ? WHERE id = ?`,
		score, formatTime(time.Now()), string(id),
	)
	return err
}

// AssignNoteToGroup sets or clears (nil) the group reference of a note.
func (db *DB) AssignNoteToGroup(id NoteID, groupID *GroupID) error {
	_, err := db.conn.Exec(
		`UPDATE notes SET group_id = ?, last_modified = ? WHERE id = ?`,
		groupIDArg(groupID), formatTime(time.Now()), string(id),
	)
	return err
}

// DeleteNotes removes notes by id. References held by groups, topics or
// comparisons are left untouched.
func (db *DB) DeleteNotes(ids ...NoteID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = string(id)
	}
	result, err := db.conn.Exec(`DELETE FROM notes WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteNotesWithTag removes every note whose tags include tag.
func (db *DB) DeleteNotesWithTag(tag string) (int64, error) {
	result, err := db.conn.Exec(
		`DELETE FROM notes WHERE `+hasTagClause,
		tag,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteAllNotes removes every note.
func (db *DB) DeleteAllNotes() (int64, error) {
	result, err := db.conn.Exec(`DELETE FROM notes`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (db *DB) queryNotes(query string, args ...any) ([]Note, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*Note, error) {
	var (
		n                 Note
		id                string
		tags              *string
		created, modified string
		groupID           *string
	)
	if err := s.Scan(&id, &n.Title, &n.Content, &tags, &n.QualityScore, &created, &modified, &groupID); err != nil {
		return nil, err
	}
	n.ID = NoteID(id)
	n.Tags = decodeList[string](tags)
	n.CreatedAt = parseTime(created)
	n.LastModified = parseTime(modified)
	if groupID != nil {
		g := GroupID(*groupID)
		n.GroupID = &g
	}
	return &n, nil
}

func groupIDArg(id *GroupID) any {
	if id == nil {
		return nil
	}
	return string(*id)
}

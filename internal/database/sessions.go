package database

import (
	"database/sql"
	"fmt"
	"time"
)

const sessionColumns = `id, session_type, start_date, end_date, comparisons_count, is_complete`

// InsertSession stores a session and sets its id.
func (db *DB) InsertSession(s *Session) error {
	if s.SessionType == "" {
		s.SessionType = DefaultSessionType
	}
	if s.StartDate.IsZero() {
		s.StartDate = time.Now().UTC()
	}
	result, err := db.conn.Exec(
		`INSERT INTO sessions (session_type, start_date, end_date, comparisons_count, is_complete)
		VALUES (?, ?, ?, ?, ?)`,
		s.SessionType, formatTime(s.StartDate), formatTimePtr(s.EndDate), s.ComparisonsCount, boolInt(s.IsComplete),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	s.ID, err = result.LastInsertId()
	return err
}

// GetSession returns a session by id, or nil if it does not exist.
func (db *DB) GetSession(id int64) (*Session, error) {
	row := db.conn.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetAllSessions returns every session, newest first.
func (db *DB) GetAllSessions() ([]Session, error) {
	rows, err := db.conn.Query(`SELECT ` + sessionColumns + ` FROM sessions ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// UpdateSession saves end date, count and completion flag.
func (db *DB) UpdateSession(s *Session) error {
	_, err := db.conn.Exec(
		`UPDATE sessions SET session_type = ?, end_date = ?, comparisons_count = ?, is_complete = ? WHERE id = ?`,
		s.SessionType, formatTimePtr(s.EndDate), s.ComparisonsCount, boolInt(s.IsComplete), s.ID,
	)
	return err
}

// DeleteSessions removes sessions by id. Their comparisons are kept.
func (db *DB) DeleteSessions(ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	result, err := db.conn.Exec(`DELETE FROM sessions WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteAllSessions removes every session.
func (db *DB) DeleteAllSessions() (int64, error) {
	result, err := db.conn.Exec(`DELETE FROM sessions`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanSession(sc scanner) (*Session, error) {
	var (
		s        Session
		start    string
		end      *string
		complete int
	)
	if err := sc.Scan(&s.ID, &s.SessionType, &start, &end, &s.ComparisonsCount, &complete); err != nil {
		return nil, err
	}
	s.StartDate = parseTime(start)
	s.EndDate = parseTimePtr(end)
	s.IsComplete = complete != 0
	return &s, nil
}

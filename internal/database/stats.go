package database

import "github.com/TobiSchelling/Permanence/internal/drawing"

const hasTagClause = `EXISTS (SELECT 1 FROM json_each(notes.tags) WHERE json_each.value = ?)`

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	queries := []struct {
		sql  string
		args []any
		dest *int
	}{
		{"SELECT COUNT(*) FROM notes", nil, &s.Notes},
		{"SELECT COUNT(*) FROM notes WHERE quality_score > 0", nil, &s.RankedNotes},
		{"SELECT COUNT(*) FROM notes WHERE " + hasTagClause, []any{TagUNotes}, &s.UNotes},
		{"SELECT COUNT(*) FROM notes WHERE instr(content, ?) > 0 AND " + hasTagClause,
			[]any{drawing.Marker, drawing.TagDrawing}, &s.DrawingNotes},
		{"SELECT COUNT(*) FROM notes WHERE group_id IS NOT NULL", nil, &s.GroupedNotes},
		{"SELECT COUNT(*) FROM note_groups", nil, &s.Groups},
		{"SELECT COUNT(*) FROM note_groups WHERE is_permanent = 1", nil, &s.Permanent},
		{"SELECT COUNT(*) FROM topics", nil, &s.Topics},
		{"SELECT COUNT(*) FROM topics WHERE is_active = 1", nil, &s.ActiveTopics},
		{"SELECT COUNT(*) FROM comparisons", nil, &s.Comparisons},
		{"SELECT COUNT(*) FROM sessions", nil, &s.Sessions},
		{"SELECT COUNT(*) FROM sessions WHERE is_complete = 0", nil, &s.OpenSessions},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql, q.args...).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	return s, nil
}

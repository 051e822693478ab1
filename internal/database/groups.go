package database

import (
	"database/sql"
	"fmt"
	"time"
)

const groupColumns = `id, is_permanent, permanence_date, permanence_confidence, created_at,
	front_card_id, supporting_card_ids, topic_id`

// InsertGroup stores a group. A missing id is generated.
func (db *DB) InsertGroup(g *Group) error {
	if g.ID == "" {
		g.ID = NewGroupID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	supporting, err := encodeList(g.SupportingCardIDs)
	if err != nil {
		return err
	}

	_, err = db.conn.Exec(
		`INSERT INTO note_groups (`+groupColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(g.ID), boolInt(g.IsPermanent), formatTimePtr(g.PermanenceDate), g.PermanenceConfidence,
		formatTime(g.CreatedAt), noteIDArg(g.FrontCardID), supporting, topicIDArg(g.TopicID),
	)
	if err != nil {
		return fmt.Errorf("inserting group %s: %w", g.ID, err)
	}
	return nil
}

// GetGroup returns a group by id, or nil if it does not exist.
func (db *DB) GetGroup(id GroupID) (*Group, error) {
	row := db.conn.QueryRow(`SELECT `+groupColumns+` FROM note_groups WHERE id = ?`, string(id))
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetAllGroups returns every group in insertion order.
func (db *DB) GetAllGroups() ([]Group, error) {
	rows, err := db.conn.Query(`SELECT ` + groupColumns + ` FROM note_groups ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// UpdateGroup saves every mutable field of a group.
func (db *DB) UpdateGroup(g *Group) error {
	supporting, err := encodeList(g.SupportingCardIDs)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(
		`UPDATE note_groups SET is_permanent = ?, permanence_date = ?, permanence_confidence = ?,
		front_card_id = ?, supporting_card_ids = ?, topic_id = ? WHERE id = ?`,
		boolInt(g.IsPermanent), formatTimePtr(g.PermanenceDate), g.PermanenceConfidence,
		noteIDArg(g.FrontCardID), supporting, topicIDArg(g.TopicID), string(g.ID),
	)
	return err
}

// DeleteGroups removes groups by id without touching referencing notes or topics.
func (db *DB) DeleteGroups(ids ...GroupID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = string(id)
	}
	result, err := db.conn.Exec(`DELETE FROM note_groups WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteAllGroups removes every group.
func (db *DB) DeleteAllGroups() (int64, error) {
	result, err := db.conn.Exec(`DELETE FROM note_groups`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanGroup(s scanner) (*Group, error) {
	var (
		g              Group
		id             string
		permanent      int
		permanenceDate *string
		created        string
		front          *string
		supporting     *string
		topic          *string
	)
	if err := s.Scan(&id, &permanent, &permanenceDate, &g.PermanenceConfidence, &created,
		&front, &supporting, &topic); err != nil {
		return nil, err
	}
	g.ID = GroupID(id)
	g.IsPermanent = permanent != 0
	g.PermanenceDate = parseTimePtr(permanenceDate)
	g.CreatedAt = parseTime(created)
	if front != nil {
		f := NoteID(*front)
		g.FrontCardID = &f
	}
	g.SupportingCardIDs = decodeList[NoteID](supporting)
	if topic != nil {
		t := TopicID(*topic)
		g.TopicID = &t
	}
	return &g, nil
}

func noteIDArg(id *NoteID) any {
	if id == nil {
		return nil
	}
	return string(*id)
}

func topicIDArg(id *TopicID) any {
	if id == nil {
		return nil
	}
	return string(*id)
}

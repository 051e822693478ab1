package database

import (
	"database/sql"
	"fmt"
	"time"
)

const topicColumns = `id, name, description, is_active, created_at, group_ids`

// InsertTopic stores a topic. A missing id is generated.
func (db *DB) InsertTopic(t *Topic) error {
	if t.ID == "" {
		t.ID = NewTopicID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	groups, err := encodeList(t.GroupIDs)
	if err != nil {
		return err
	}

	_, err = db.conn.Exec(
		`INSERT INTO topics (`+topicColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		string(t.ID), t.Name, t.Description, boolInt(t.IsActive), formatTime(t.CreatedAt), groups,
	)
	if err != nil {
		return fmt.Errorf("inserting topic %q: %w", t.Name, err)
	}
	return nil
}

// GetTopic returns a topic by id, or nil if it does not exist.
func (db *DB) GetTopic(id TopicID) (*Topic, error) {
	row := db.conn.QueryRow(`SELECT `+topicColumns+` FROM topics WHERE id = ?`, string(id))
	t, err := scanTopic(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetAllTopics returns every topic in insertion order.
func (db *DB) GetAllTopics() ([]Topic, error) {
	rows, err := db.conn.Query(`SELECT ` + topicColumns + ` FROM topics ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, *t)
	}
	return topics, rows.Err()
}

// UpdateTopic saves name, description, active flag and group list.
func (db *DB) UpdateTopic(t *Topic) error {
	groups, err := encodeList(t.GroupIDs)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(
		`UPDATE topics SET name = ?, description = ?, is_active = ?, group_ids = ? WHERE id = ?`,
		t.Name, t.Description, boolInt(t.IsActive), groups, string(t.ID),
	)
	return err
}

// DeleteTopics removes topics by id.
func (db *DB) DeleteTopics(ids ...TopicID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = string(id)
	}
	result, err := db.conn.Exec(`DELETE FROM topics WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteAllTopics removes every topic.
func (db *DB) DeleteAllTopics() (int64, error) {
	result, err := db.conn.Exec(`DELETE FROM topics`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanTopic(s scanner) (*Topic, error) {
	var (
		t       Topic
		id      string
		active  int
		created string
		groups  *string
	)
	if err := s.Scan(&id, &t.Name, &t.Description, &active, &created, &groups); err != nil {
		return nil, err
	}
	t.ID = TopicID(id)
	t.IsActive = active != 0
	t.CreatedAt = parseTime(created)
	t.GroupIDs = decodeList[GroupID](groups)
	return &t, nil
}

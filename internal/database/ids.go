package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NewNoteID returns a random note identifier.
func NewNoteID() NoteID { return NoteID(uuid.NewString()) }

// NewGroupID returns a random group identifier.
func NewGroupID() GroupID { return GroupID(uuid.NewString()) }

// NewTopicID returns a random topic identifier.
func NewTopicID() TopicID { return TopicID(uuid.NewString()) }

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t := parseTime(*s)
	return &t
}

// encodeList stores a list-valued attribute as JSON text.
func encodeList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeList reads a JSON list column, tolerating NULL and bad data.
func decodeList[T any](raw *string) []T {
	if raw == nil || *raw == "" {
		return nil
	}
	var items []T
	if err := json.Unmarshal([]byte(*raw), &items); err != nil {
		return nil
	}
	return items
}

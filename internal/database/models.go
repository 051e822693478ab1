package database

import (
	"strings"
	"time"

	"github.com/TobiSchelling/Permanence/internal/drawing"
)

// NoteID identifies a note.
type NoteID string

// GroupID identifies a quality group.
type GroupID string

// TopicID identifies a topic.
type TopicID string

const (
	// TagUNotes marks notes created by the bulk paste import.
	TagUNotes = "u-notes"

	// DefaultSessionType is used when a session or comparison has no type.
	DefaultSessionType = "gradual"

	uNotePrefix = "U-"
)

// Note is a single captured note.
type Note struct {
	ID           NoteID
	Title        string
	Content      string
	Tags         []string
	QualityScore float64
	CreatedAt    time.Time
	LastModified time.Time
	GroupID      *GroupID
}

// Group collects a front card and its supporting cards.
type Group struct {
	ID                   GroupID
	IsPermanent          bool
	PermanenceDate       *time.Time
	PermanenceConfidence float64
	CreatedAt            time.Time
	FrontCardID          *NoteID
	SupportingCardIDs    []NoteID
	TopicID              *TopicID
}

// Topic is a named set of groups.
type Topic struct {
	ID          TopicID
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	GroupIDs    []GroupID
}

// Comparison records one pairwise quality judgment.
type Comparison struct {
	ID           int64
	NoteAID      NoteID
	NoteBID      NoteID
	ChosenNoteID NoteID
	SessionType  string
	SessionID    *int64
	ComparedAt   time.Time
}

// Session is a bounded run of comparisons.
type Session struct {
	ID               int64
	SessionType      string
	StartDate        time.Time
	EndDate          *time.Time
	ComparisonsCount int
	IsComplete       bool
}

// Stats contains aggregate database statistics.
type Stats struct {
	Notes        int
	RankedNotes  int
	UNotes       int
	DrawingNotes int
	GroupedNotes int
	Groups       int
	Permanent    int
	Topics       int
	ActiveTopics int
	Comparisons  int
	Sessions     int
	OpenSessions int
}

// RankedFraction is the share of notes with a positive quality score.
func (s *Stats) RankedFraction() float64 {
	if s.Notes == 0 {
		return 0
	}
	return float64(s.RankedNotes) / float64(s.Notes)
}

// NewNote builds a note with fresh id and timestamps.
func NewNote(title, content string, tags []string) *Note {
	now := time.Now().UTC()
	return &Note{
		ID:           NewNoteID(),
		Title:        title,
		Content:      content,
		Tags:         tags,
		CreatedAt:    now,
		LastModified: now,
	}
}

// NewDrawingNote builds a note with strokes embedded in its content.
// Passing nil strokes yields a plain note.
func NewDrawingNote(title, content string, tags []string, strokes []drawing.Stroke) (*Note, error) {
	c, t, err := drawing.Attach(content, tags, strokes)
	if err != nil {
		return nil, err
	}
	return NewNote(title, c, t), nil
}

// HasTag reports whether the note carries tag.
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasDrawing reports whether the note carries a drawing payload and tag.
func (n *Note) HasDrawing() bool {
	return drawing.HasDrawing(n.Content, n.Tags)
}

// IsDrawingNote reports whether the note is tagged as a drawing.
func (n *Note) IsDrawingNote() bool {
	return drawing.IsDrawingNote(n.Tags)
}

// Drawing decodes the embedded strokes. It returns nil when the note has
// no drawing or the payload is unreadable.
func (n *Note) Drawing() []drawing.Stroke {
	if !n.HasDrawing() {
		return nil
	}
	strokes, ok := drawing.Extract(n.Content)
	if !ok {
		return nil
	}
	return strokes
}

// TextContent returns the content without any drawing payload.
func (n *Note) TextContent() string {
	return drawing.TextContent(n.Content)
}

// DisplayTitle strips the paste sentinel from content-less u-notes.
func (n *Note) DisplayTitle() string {
	if n.HasTag(TagUNotes) && n.Content == "" && strings.HasPrefix(n.Title, uNotePrefix) {
		return strings.TrimSpace(strings.TrimPrefix(n.Title, uNotePrefix))
	}
	return n.Title
}

// NewGroup builds a forming group with a fresh id.
func NewGroup(front *NoteID, supporting []NoteID) *Group {
	return &Group{
		ID:                NewGroupID(),
		CreatedAt:         time.Now().UTC(),
		FrontCardID:       front,
		SupportingCardIDs: supporting,
	}
}

// ShortID returns the first eight characters of the group id.
func (g *Group) ShortID() string {
	if len(g.ID) > 8 {
		return string(g.ID[:8])
	}
	return string(g.ID)
}

// NewTopic builds an active topic with a fresh id.
func NewTopic(name, description string) *Topic {
	return &Topic{
		ID:          NewTopicID(),
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
}

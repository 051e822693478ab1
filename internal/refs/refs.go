// Package refs resolves the weak references between stored records and
// reports the ones that no longer point anywhere.
package refs

import (
	"context"
	"fmt"

	"github.com/TobiSchelling/Permanence/internal/database"
)

// Store is the read side of the record store.
type Store interface {
	GetNote(id database.NoteID) (*database.Note, error)
	GetGroup(id database.GroupID) (*database.Group, error)
	GetTopic(id database.TopicID) (*database.Topic, error)
	GetAllNotes() ([]database.Note, error)
	GetAllGroups() ([]database.Group, error)
	GetAllTopics() ([]database.Topic, error)
	GetAllComparisons() ([]database.Comparison, error)
}

// Resolver looks up referenced records. A missing target resolves to nil.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver over store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Note returns the note id points to, or nil.
func (r *Resolver) Note(id *database.NoteID) (*database.Note, error) {
	if id == nil {
		return nil, nil
	}
	return r.store.GetNote(*id)
}

// Group returns the group id points to, or nil.
func (r *Resolver) Group(id *database.GroupID) (*database.Group, error) {
	if id == nil {
		return nil, nil
	}
	return r.store.GetGroup(*id)
}

// Topic returns the topic id points to, or nil.
func (r *Resolver) Topic(id *database.TopicID) (*database.Topic, error) {
	if id == nil {
		return nil, nil
	}
	return r.store.GetTopic(*id)
}

// FrontCard returns the group's front card, or nil if unset or deleted.
func (r *Resolver) FrontCard(g *database.Group) (*database.Note, error) {
	return r.Note(g.FrontCardID)
}

// SupportingCards returns the group's supporting cards that still exist,
// in stored order.
func (r *Resolver) SupportingCards(g *database.Group) ([]database.Note, error) {
	var notes []database.Note
	for _, id := range g.SupportingCardIDs {
		n, err := r.store.GetNote(id)
		if err != nil {
			return nil, err
		}
		if n != nil {
			notes = append(notes, *n)
		}
	}
	return notes, nil
}

// TopicGroups returns the topic's groups that still exist.
func (r *Resolver) TopicGroups(t *database.Topic) ([]database.Group, error) {
	var groups []database.Group
	for _, id := range t.GroupIDs {
		g, err := r.store.GetGroup(id)
		if err != nil {
			return nil, err
		}
		if g != nil {
			groups = append(groups, *g)
		}
	}
	return groups, nil
}

// Dangling is a reference whose target does not exist.
type Dangling struct {
	Kind   string // note, group, topic, comparison
	Owner  string
	Field  string
	Target string
}

func (d Dangling) String() string {
	return fmt.Sprintf("%s %s: %s -> %s (missing)", d.Kind, d.Owner, d.Field, d.Target)
}

// Check walks every reference field and returns those that dangle. It
// does not modify anything.
func Check(ctx context.Context, store Store) ([]Dangling, error) {
	notes, err := store.GetAllNotes()
	if err != nil {
		return nil, fmt.Errorf("loading notes: %w", err)
	}
	groups, err := store.GetAllGroups()
	if err != nil {
		return nil, fmt.Errorf("loading groups: %w", err)
	}
	topics, err := store.GetAllTopics()
	if err != nil {
		return nil, fmt.Errorf("loading topics: %w", err)
	}
	comparisons, err := store.GetAllComparisons()
	if err != nil {
		return nil, fmt.Errorf("loading comparisons: %w", err)
	}

	noteSet := make(map[database.NoteID]bool, len(notes))
	for _, n := range notes {
		noteSet[n.ID] = true
	}
	groupSet := make(map[database.GroupID]bool, len(groups))
	for _, g := range groups {
		groupSet[g.ID] = true
	}
	topicSet := make(map[database.TopicID]bool, len(topics))
	for _, t := range topics {
		topicSet[t.ID] = true
	}

	var out []Dangling
	report := func(kind, owner, field, target string) {
		out = append(out, Dangling{Kind: kind, Owner: owner, Field: field, Target: target})
	}

	for _, n := range notes {
		if n.GroupID != nil && !groupSet[*n.GroupID] {
			report("note", string(n.ID), "group_id", string(*n.GroupID))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, g := range groups {
		if g.FrontCardID != nil && !noteSet[*g.FrontCardID] {
			report("group", string(g.ID), "front_card_id", string(*g.FrontCardID))
		}
		for i, id := range g.SupportingCardIDs {
			if !noteSet[id] {
				report("group", string(g.ID), fmt.Sprintf("supporting_card_ids[%d]", i), string(id))
			}
		}
		if g.TopicID != nil && !topicSet[*g.TopicID] {
			report("group", string(g.ID), "topic_id", string(*g.TopicID))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, t := range topics {
		for i, id := range t.GroupIDs {
			if !groupSet[id] {
				report("topic", string(t.ID), fmt.Sprintf("group_ids[%d]", i), string(id))
			}
		}
	}

	for _, c := range comparisons {
		owner := fmt.Sprintf("%d", c.ID)
		for _, ref := range []struct {
			field string
			id    database.NoteID
		}{
			{"note_a_id", c.NoteAID},
			{"note_b_id", c.NoteBID},
			{"chosen_note_id", c.ChosenNoteID},
		} {
			if !noteSet[ref.id] {
				report("comparison", owner, ref.field, string(ref.id))
			}
		}
	}

	return out, nil
}

package refs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/Permanence/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func addNote(t *testing.T, db *database.DB, title string) *database.Note {
	t.Helper()
	n := database.NewNote(title, "", nil)
	require.NoError(t, db.InsertNote(n))
	return n
}

func TestCheckCleanStore(t *testing.T) {
	db := openTestDB(t)
	a := addNote(t, db, "a")
	b := addNote(t, db, "b")

	g := database.NewGroup(&a.ID, []database.NoteID{b.ID})
	require.NoError(t, db.InsertGroup(g))
	require.NoError(t, db.AssignNoteToGroup(a.ID, &g.ID))

	topic := database.NewTopic("music", "")
	topic.GroupIDs = []database.GroupID{g.ID}
	require.NoError(t, db.InsertTopic(topic))

	require.NoError(t, db.InsertComparison(&database.Comparison{NoteAID: a.ID, NoteBID: b.ID, ChosenNoteID: a.ID}))

	dangling, err := Check(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, dangling)
}

func TestDeletedFrontCardIsReported(t *testing.T) {
	db := openTestDB(t)
	front := addNote(t, db, "front")
	support := addNote(t, db, "support")

	g := database.NewGroup(&front.ID, []database.NoteID{support.ID})
	require.NoError(t, db.InsertGroup(g))

	_, err := db.DeleteNotes(front.ID)
	require.NoError(t, err)

	got, err := db.GetGroup(g.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	r := NewResolver(db)
	card, err := r.FrontCard(got)
	require.NoError(t, err)
	assert.Nil(t, card)

	cards, err := r.SupportingCards(got)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, support.ID, cards[0].ID)

	dangling, err := Check(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, dangling, 1)
	assert.Equal(t, Dangling{Kind: "group", Owner: string(g.ID), Field: "front_card_id", Target: string(front.ID)}, dangling[0])
}

func TestCheckReportsEveryField(t *testing.T) {
	db := openTestDB(t)
	a := addNote(t, db, "a")
	missingNote := database.NoteID("gone-note")
	missingGroup := database.GroupID("gone-group")
	missingTopic := database.TopicID("gone-topic")

	require.NoError(t, db.AssignNoteToGroup(a.ID, &missingGroup))

	g := database.NewGroup(nil, []database.NoteID{a.ID, missingNote})
	g.TopicID = &missingTopic
	require.NoError(t, db.InsertGroup(g))

	topic := database.NewTopic("t", "")
	topic.GroupIDs = []database.GroupID{missingGroup}
	require.NoError(t, db.InsertTopic(topic))

	require.NoError(t, db.InsertComparison(&database.Comparison{NoteAID: a.ID, NoteBID: missingNote, ChosenNoteID: missingNote}))

	dangling, err := Check(context.Background(), db)
	require.NoError(t, err)

	var fields []string
	for _, d := range dangling {
		fields = append(fields, d.Kind+"."+d.Field)
	}
	assert.Equal(t, []string{
		"note.group_id",
		"group.supporting_card_ids[1]",
		"group.topic_id",
		"topic.group_ids[0]",
		"comparison.note_b_id",
		"comparison.chosen_note_id",
	}, fields)

	// Check never repairs anything.
	again, err := Check(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, dangling, again)
}

func TestResolverNilIDs(t *testing.T) {
	r := NewResolver(openTestDB(t))

	n, err := r.Note(nil)
	require.NoError(t, err)
	assert.Nil(t, n)

	g, err := r.Group(nil)
	require.NoError(t, err)
	assert.Nil(t, g)

	missing := database.TopicID("nope")
	topic, err := r.Topic(&missing)
	require.NoError(t, err)
	assert.Nil(t, topic)
}

func TestTopicGroupsSkipsMissing(t *testing.T) {
	db := openTestDB(t)
	g := database.NewGroup(nil, nil)
	require.NoError(t, db.InsertGroup(g))

	topic := database.NewTopic("t", "")
	topic.GroupIDs = []database.GroupID{"missing", g.ID}

	groups, err := NewResolver(db).TopicGroups(topic)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, g.ID, groups[0].ID)
}

func TestDanglingString(t *testing.T) {
	d := Dangling{Kind: "group", Owner: "g1", Field: "front_card_id", Target: "n1"}
	assert.Equal(t, "group g1: front_card_id -> n1 (missing)", d.String())
}

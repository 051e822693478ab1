package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/TobiSchelling/Permanence/internal/drawing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertNote(t *testing.T, db *DB, title string, score float64, tags ...string) *Note {
	t.Helper()
	n := NewNote(title, title+" content", tags)
	n.QualityScore = score
	if err := db.InsertNote(n); err != nil {
		t.Fatalf("insert note %q: %v", title, err)
	}
	return n
}

func TestInsertAndGetNote(t *testing.T) {
	db := openTestDB(t)
	n := NewNote("Music Theory", "Chord progressions", []string{"music", "theory"})
	if err := db.InsertNote(n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.ID == "" {
		t.Fatal("expected generated note ID")
	}

	got, err := db.GetNote(n.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected note")
	}
	if got.Title != "Music Theory" || got.Content != "Chord progressions" {
		t.Errorf("unexpected note %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "music" || got.Tags[1] != "theory" {
		t.Errorf("expected ordered tags, got %v", got.Tags)
	}
	if got.QualityScore != 0 {
		t.Errorf("expected default score 0, got %v", got.QualityScore)
	}
	if got.GroupID != nil {
		t.Errorf("expected no group, got %v", *got.GroupID)
	}
	if !got.CreatedAt.Equal(n.CreatedAt) {
		t.Errorf("created time not preserved: %v vs %v", got.CreatedAt, n.CreatedAt)
	}
}

func TestGetNoteMissing(t *testing.T) {
	db := openTestDB(t)
	got, err := db.GetNote("missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing note")
	}
}

func TestDuplicateTitlesAndTagsAllowed(t *testing.T) {
	db := openTestDB(t)
	insertNote(t, db, "Same", 0, "a", "a")
	insertNote(t, db, "Same", 0)

	notes, err := db.GetAllNotes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if len(notes[0].Tags) != 2 {
		t.Errorf("expected duplicate tags kept, got %v", notes[0].Tags)
	}
}

func TestGetAllNotesInsertionOrder(t *testing.T) {
	db := openTestDB(t)
	for _, title := range []string{"C", "A", "B"} {
		insertNote(t, db, title, 0)
	}
	notes, _ := db.GetAllNotes()
	var titles []string
	for _, n := range notes {
		titles = append(titles, n.Title)
	}
	if len(titles) != 3 || titles[0] != "C" || titles[1] != "A" || titles[2] != "B" {
		t.Errorf("expected insertion order [C A B], got %v", titles)
	}
}

func TestUpdateNote(t *testing.T) {
	db := openTestDB(t)
	n := insertNote(t, db, "Draft", 0)
	before := n.LastModified

	time.Sleep(2 * time.Millisecond)
	n.Title = "Final"
	n.Tags = []string{"done"}
	n.QualityScore = 0.75
	if err := db.UpdateNote(n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := db.GetNote(n.ID)
	if got.Title != "Final" || got.QualityScore != 0.75 || len(got.Tags) != 1 {
		t.Errorf("update not persisted: %+v", got)
	}
	if !got.LastModified.After(before) {
		t.Error("expected last_modified to advance")
	}
}

func TestSetQualityScoreAndAssignGroup(t *testing.T) {
	db := openTestDB(t)
	n := insertNote(t, db, "Note", 0)

	if err := db.SetQualityScore(n.ID, 0.9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gid := GroupID("g-1")
	if err := db.AssignNoteToGroup(n.ID, &gid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := db.GetNote(n.ID)
	if got.QualityScore != 0.9 {
		t.Errorf("expected 0.9, got %v", got.QualityScore)
	}
	if got.GroupID == nil || *got.GroupID != gid {
		t.Errorf("expected group %s", gid)
	}

	inGroup, _ := db.GetNotesInGroup(gid)
	if len(inGroup) != 1 {
		t.Errorf("expected 1 note in group, got %d", len(inGroup))
	}

	db.AssignNoteToGroup(n.ID, nil)
	got, _ = db.GetNote(n.ID)
	if got.GroupID != nil {
		t.Error("expected group cleared")
	}
}

func TestDeleteNotes(t *testing.T) {
	db := openTestDB(t)
	a := insertNote(t, db, "A", 0)
	b := insertNote(t, db, "B", 0)
	insertNote(t, db, "C", 0)

	n, err := db.DeleteNotes(a.ID, b.ID, "unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}
	notes, _ := db.GetAllNotes()
	if len(notes) != 1 || notes[0].Title != "C" {
		t.Errorf("expected only C left, got %v", notes)
	}
}

func TestDeleteNotesWithTag(t *testing.T) {
	db := openTestDB(t)
	insertNote(t, db, "U-One", 0, "imported", TagUNotes)
	insertNote(t, db, "U-Two", 0, TagUNotes)
	insertNote(t, db, "Keep", 0, "u-notes-archive")

	n, err := db.DeleteNotesWithTag(TagUNotes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}
	notes, _ := db.GetAllNotes()
	if len(notes) != 1 || notes[0].Title != "Keep" {
		t.Errorf("expected only Keep left, got %v", notes)
	}
}

func TestGroupLifecycle(t *testing.T) {
	db := openTestDB(t)
	front := insertNote(t, db, "Front", 0.8)
	support := insertNote(t, db, "Support", 0.4)

	g := NewGroup(&front.ID, []NoteID{support.ID})
	if err := db.InsertGroup(g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := db.GetGroup(g.ID)
	if err != nil || got == nil {
		t.Fatalf("expected group, err=%v", err)
	}
	if got.IsPermanent || got.PermanenceConfidence != 0 || got.PermanenceDate != nil {
		t.Errorf("expected forming group, got %+v", got)
	}
	if got.FrontCardID == nil || *got.FrontCardID != front.ID {
		t.Error("front card not persisted")
	}
	if len(got.SupportingCardIDs) != 1 || got.SupportingCardIDs[0] != support.ID {
		t.Errorf("supporting cards not persisted: %v", got.SupportingCardIDs)
	}

	now := time.Now().UTC()
	topic := TopicID("t-1")
	got.IsPermanent = true
	got.PermanenceDate = &now
	got.PermanenceConfidence = 0.6
	got.TopicID = &topic
	if err := db.UpdateGroup(got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, _ := db.GetGroup(g.ID)
	if !again.IsPermanent || again.PermanenceDate == nil || again.TopicID == nil || *again.TopicID != topic {
		t.Errorf("update not persisted: %+v", again)
	}

	if n, _ := db.DeleteGroups(g.ID); n != 1 {
		t.Errorf("expected 1 group deleted, got %d", n)
	}
	gone, _ := db.GetGroup(g.ID)
	if gone != nil {
		t.Error("expected group gone")
	}
}

func TestGroupConfidenceOutOfRangeRejected(t *testing.T) {
	db := openTestDB(t)
	g := NewGroup(nil, nil)
	g.PermanenceConfidence = 1.5
	if err := db.InsertGroup(g); err == nil {
		t.Error("expected check constraint failure for confidence > 1")
	}
}

func TestDeletingFrontCardLeavesDanglingGroup(t *testing.T) {
	db := openTestDB(t)
	front := insertNote(t, db, "Front", 0)
	g := NewGroup(&front.ID, nil)
	db.InsertGroup(g)

	if _, err := db.DeleteNotes(front.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := db.GetGroup(g.ID)
	if err != nil {
		t.Fatalf("reading group with dangling reference: %v", err)
	}
	if got == nil {
		t.Fatal("expected group to survive note deletion")
	}
	if got.FrontCardID == nil || *got.FrontCardID != front.ID {
		t.Error("expected dangling front card id to be kept")
	}
	note, _ := db.GetNote(*got.FrontCardID)
	if note != nil {
		t.Error("expected front card lookup to miss")
	}
}

func TestTopicLifecycle(t *testing.T) {
	db := openTestDB(t)
	topic := NewTopic("Music", "Everything about playing")
	topic.GroupIDs = []GroupID{"g1", "g2"}
	if err := db.InsertTopic(topic); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := db.GetTopic(topic.ID)
	if got == nil || !got.IsActive || len(got.GroupIDs) != 2 {
		t.Fatalf("unexpected topic %+v", got)
	}

	got.IsActive = false
	got.GroupIDs = append(got.GroupIDs, "g3")
	db.UpdateTopic(got)

	all, _ := db.GetAllTopics()
	if len(all) != 1 || all[0].IsActive || len(all[0].GroupIDs) != 3 {
		t.Errorf("update not persisted: %+v", all)
	}

	if n, _ := db.DeleteAllTopics(); n != 1 {
		t.Errorf("expected 1 topic deleted, got %d", n)
	}
}

func TestSessionComparisons(t *testing.T) {
	db := openTestDB(t)
	s := &Session{}
	if err := db.InsertSession(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID == 0 || s.SessionType != DefaultSessionType {
		t.Fatalf("unexpected session %+v", s)
	}

	for i := 0; i < 3; i++ {
		c := &Comparison{NoteAID: "a", NoteBID: "b", ChosenNoteID: "a"}
		if err := db.RecordSessionComparison(s.ID, c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ID == 0 || c.SessionID == nil || *c.SessionID != s.ID {
			t.Errorf("unexpected comparison %+v", c)
		}
	}

	got, _ := db.GetSession(s.ID)
	if got.ComparisonsCount != 3 {
		t.Errorf("expected 3 comparisons, got %d", got.ComparisonsCount)
	}
	comps, _ := db.GetSessionComparisons(s.ID)
	if len(comps) != 3 {
		t.Errorf("expected 3 session comparisons, got %d", len(comps))
	}

	loose := &Comparison{NoteAID: "x", NoteBID: "y", ChosenNoteID: "y", SessionType: "burst"}
	db.InsertComparison(loose)
	all, _ := db.GetAllComparisons()
	if len(all) != 4 {
		t.Errorf("expected 4 comparisons, got %d", len(all))
	}
	if all[3].SessionID != nil || all[3].SessionType != "burst" {
		t.Errorf("unexpected loose comparison %+v", all[3])
	}

	end := time.Now().UTC()
	got.EndDate = &end
	got.IsComplete = true
	db.UpdateSession(got)
	done, _ := db.GetSession(s.ID)
	if !done.IsComplete || done.EndDate == nil {
		t.Errorf("completion not persisted: %+v", done)
	}
}

func TestClearAll(t *testing.T) {
	db := openTestDB(t)
	insertNote(t, db, "A", 0)
	db.InsertGroup(NewGroup(nil, nil))
	db.InsertTopic(NewTopic("T", ""))
	db.InsertSession(&Session{})
	db.InsertComparison(&Comparison{NoteAID: "a", NoteBID: "b", ChosenNoteID: "a"})

	if err := db.ClearAll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats, _ := db.GetStats()
	if stats.Notes+stats.Groups+stats.Topics+stats.Sessions+stats.Comparisons != 0 {
		t.Errorf("expected empty store, got %+v", stats)
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	insertNote(t, db, "Ranked", 0.5)
	insertNote(t, db, "U-Pasted", 0, "imported", TagUNotes)
	dn, err := NewDrawingNote("Sketch", "stage", nil, []drawing.Stroke{drawing.NewStroke()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	db.InsertNote(dn)
	// Tag without payload does not count as a drawing.
	insertNote(t, db, "Tag only", 0, drawing.TagDrawing)

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Notes != 4 {
		t.Errorf("expected 4 notes, got %d", stats.Notes)
	}
	if stats.RankedNotes != 1 || stats.RankedFraction() != 0.25 {
		t.Errorf("expected 1 ranked (0.25), got %d (%v)", stats.RankedNotes, stats.RankedFraction())
	}
	if stats.UNotes != 1 {
		t.Errorf("expected 1 u-note, got %d", stats.UNotes)
	}
	if stats.DrawingNotes != 1 {
		t.Errorf("expected 1 drawing note, got %d", stats.DrawingNotes)
	}
}

func TestRankedFractionEmpty(t *testing.T) {
	s := &Stats{}
	if s.RankedFraction() != 0 {
		t.Error("expected 0 for empty store")
	}
}

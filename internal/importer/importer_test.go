package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/Permanence/internal/database"
)

type fakeStore struct {
	notes  []*database.Note
	failOn string
}

func (f *fakeStore) InsertNote(n *database.Note) error {
	if n.Title == f.failOn {
		return errors.New("disk full")
	}
	f.notes = append(f.notes, n)
	return nil
}

func TestImportIntoDatabase(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	drafts := ParsePaste("U-Theory: chords and scales\nU-alpha beta gamma delta epsilon\n")
	res, err := New(db, nil).Import(context.Background(), drafts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Zero(t, res.Failed)

	notes, err := db.GetAllNotes()
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "U-Theory", notes[0].Title)
	assert.Equal(t, "U-Theory", notes[0].DisplayTitle())
	assert.Equal(t, res.NoteIDs, []database.NoteID{notes[0].ID, notes[1].ID})

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.UNotes)
}

func TestImportContinuesAfterFailure(t *testing.T) {
	store := &fakeStore{failOn: "bad"}
	var events []Progress
	im := New(store, func(p Progress) { events = append(events, p) })

	res, err := im.Import(context.Background(), []Draft{
		{Title: "one"}, {Title: "bad"}, {Title: "three"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Failed)
	assert.Len(t, store.notes, 2)

	require.Len(t, events, 3)
	assert.Equal(t, 1, events[0].Index)
	assert.Equal(t, 3, events[2].Total)
	assert.Error(t, events[1].Err)
	assert.NoError(t, events[2].Err)
	assert.InDelta(t, 1.0, events[2].Fraction(), 1e-9)
}

func TestImportStopsWhenCancelled(t *testing.T) {
	store := &fakeStore{}
	ctx, cancel := context.WithCancel(context.Background())

	im := New(store, func(p Progress) {
		if p.Index == 1 {
			cancel()
		}
	})
	res, err := im.Import(ctx, []Draft{{Title: "a"}, {Title: "b"}, {Title: "c"}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.Imported)
	assert.Len(t, store.notes, 1)
}

func TestImportEmpty(t *testing.T) {
	res, err := New(&fakeStore{}, nil).Import(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Imported)
	assert.InDelta(t, 1.0, Progress{}.Fraction(), 1e-9)
}

func TestReadInputStdin(t *testing.T) {
	text, err := ReadInput(strings.NewReader("U-one\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "U-one\n", text)
}

func TestReadInputGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("U-a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("U-b\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.md"), []byte("U-skip\n"), 0o644))

	text, err := ReadInput(nil, []string{filepath.Join(dir, "**", "*.txt")})
	require.NoError(t, err)
	assert.Equal(t, "U-a\nU-b\n", text)
}

func TestExpandPathsDeduplicates(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0o644))

	paths, err := ExpandPaths([]string{a, filepath.Join(dir, "*.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{a}, paths)
}

func TestExpandPathsNoMatch(t *testing.T) {
	_, err := ExpandPaths([]string{filepath.Join(t.TempDir(), "*.txt")})
	assert.Error(t, err)
}

func TestReadInputMissingFile(t *testing.T) {
	_, err := ReadInput(nil, []string{filepath.Join(t.TempDir(), "missing.txt")})
	assert.Error(t, err)
}

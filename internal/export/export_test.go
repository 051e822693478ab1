package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/Permanence/internal/database"
	"github.com/TobiSchelling/Permanence/internal/drawing"
)

func TestFileName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "chord-theory.md", FileName("Chord Theory!", used))
	assert.Equal(t, "chord-theory-2.md", FileName("chord theory", used))
	assert.Equal(t, "chord-theory-3.md", FileName("Chord  Theory", used))
	assert.Equal(t, "note.md", FileName("???", used))
	assert.Equal(t, "note-2.md", FileName("", used))
}

func TestRenderAndParse(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	gid := database.GroupID("g-1")
	n := &database.Note{
		ID:           "n-1",
		Title:        "Zen: motorcycle",
		Content:      "Quality is an event.\n",
		Tags:         []string{"imported", "philosophy"},
		QualityScore: 0.75,
		CreatedAt:    created,
		LastModified: created.Add(time.Hour),
		GroupID:      &gid,
	}

	body, err := Render(n)
	require.NoError(t, err)
	assert.Contains(t, string(body), "tags: [imported, philosophy]\n")

	fm, content, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, &FrontMatter{
		ID:           "n-1",
		Title:        "Zen: motorcycle",
		Tags:         []string{"imported", "philosophy"},
		QualityScore: 0.75,
		Created:      "2024-01-02T03:04:05Z",
		Modified:     "2024-01-02T04:04:05Z",
		GroupID:      "g-1",
	}, fm)
	assert.Equal(t, "Quality is an event.", content)
}

func TestRenderKeepsDrawingPayload(t *testing.T) {
	strokes := []drawing.Stroke{{Points: []drawing.Point{{X: 1, Y: 2}}, Color: drawing.Red, LineWidth: 3}}
	n, err := database.NewDrawingNote("Sketch", "caption", nil, strokes)
	require.NoError(t, err)

	body, err := Render(n)
	require.NoError(t, err)

	_, content, err := Parse(body)
	require.NoError(t, err)
	got, ok := drawing.Extract(content)
	require.True(t, ok)
	assert.Equal(t, strokes, got)
	assert.Equal(t, "caption", drawing.TextContent(content))
}

func TestParseRejectsPlainText(t *testing.T) {
	_, _, err := Parse([]byte("hello"))
	assert.Error(t, err)
	_, _, err = Parse([]byte("---\ntitle: x\n"))
	assert.Error(t, err)
}

func TestNotesWritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	notes := []database.Note{
		*database.NewNote("Same", "one", nil),
		*database.NewNote("Same", "two", nil),
		*database.NewNote("Other", "", []string{"manual"}),
	}

	res, err := Notes(dir, notes)
	require.NoError(t, err)
	require.Len(t, res.Files, 3)
	assert.Equal(t, filepath.Join(dir, "same.md"), res.Files[0])
	assert.Equal(t, filepath.Join(dir, "same-2.md"), res.Files[1])
	assert.Equal(t, filepath.Join(dir, "other.md"), res.Files[2])

	data, err := os.ReadFile(res.Files[1])
	require.NoError(t, err)
	fm, content, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, string(notes[1].ID), fm.ID)
	assert.Equal(t, "two", content)
	assert.Empty(t, fm.GroupID)
	assert.Empty(t, fm.Tags)
}

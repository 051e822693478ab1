package importer

import (
	"context"
	"log"

	"github.com/TobiSchelling/Permanence/internal/database"
)

// Progress describes one step of a running import.
type Progress struct {
	Index int // 1-based position of the record just handled
	Total int
	Title string
	Err   error
}

// Fraction returns how much of the batch has been handled.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Index) / float64(p.Total)
}

// Result holds the results of an import run.
type Result struct {
	Imported int
	Failed   int
	NoteIDs  []database.NoteID
}

// Store is the part of the record store the importer writes to.
type Store interface {
	InsertNote(n *database.Note) error
}

// Importer inserts drafts one by one. Records stored before a failure
// are kept.
type Importer struct {
	store    Store
	progress func(Progress)
}

// New creates an importer. progress may be nil.
func New(store Store, progress func(Progress)) *Importer {
	return &Importer{store: store, progress: progress}
}

// Import stores every draft in order. It stops early only when ctx is
// cancelled; insert failures are logged and counted.
func (im *Importer) Import(ctx context.Context, drafts []Draft) (*Result, error) {
	r := &Result{}
	for i, d := range drafts {
		if err := ctx.Err(); err != nil {
			log.Printf("Import cancelled after %d of %d notes", i, len(drafts))
			return r, err
		}

		note := database.NewNote(d.Title, d.Content, d.Tags)
		err := im.store.InsertNote(note)
		if err != nil {
			log.Printf("Error importing %q: %v", d.Title, err)
			r.Failed++
		} else {
			r.Imported++
			r.NoteIDs = append(r.NoteIDs, note.ID)
		}

		if im.progress != nil {
			im.progress(Progress{Index: i + 1, Total: len(drafts), Title: d.Title, Err: err})
		}
	}

	log.Printf("Import complete: %d imported, %d failed", r.Imported, r.Failed)
	return r, nil
}

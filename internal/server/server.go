package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/Permanence/internal/database"
	"github.com/TobiSchelling/Permanence/internal/drawing"
	"github.com/TobiSchelling/Permanence/internal/refs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

const (
	drawingWidth  = 600
	drawingHeight = 400
	previewLen    = 140
)

// Server is the HTTP server for browsing notes.
type Server struct {
	db       *database.DB
	resolver *refs.Resolver
	pages    map[string]*template.Template
	mux      *http.ServeMux
}

// New creates a new Server.
func New(db *database.DB) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"ago":      ago,
		"percent": func(f float64) string {
			return fmt.Sprintf("%.0f%%", f*100)
		},
		"score": func(f float64) string {
			return humanize.FtoaWithDigits(f, 2)
		},
		"tagURL": func(tag string) string {
			return "/?tag=" + url.QueryEscape(tag)
		},
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone so {{define "content"}} does not collide.
	pageNames := []string{"index.html", "note.html", "groups.html", "topics.html", "check.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, resolver: refs.NewResolver(db), pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/notes/purge", s.handlePurge)
	s.mux.HandleFunc("/notes/", s.handleNote)
	s.mux.HandleFunc("/groups", s.handleGroups)
	s.mux.HandleFunc("/topics", s.handleTopics)
	s.mux.HandleFunc("/check", s.handleCheck)
}

type noteRow struct {
	ID         database.NoteID
	Title      string
	Preview    string
	Tags       []string
	Score      float64
	Created    time.Time
	HasDrawing bool
}

func newNoteRow(n *database.Note) noteRow {
	return noteRow{
		ID:         n.ID,
		Title:      n.DisplayTitle(),
		Preview:    preview(n.TextContent()),
		Tags:       n.Tags,
		Score:      n.QualityScore,
		Created:    n.CreatedAt,
		HasDrawing: n.HasDrawing(),
	}
}

type tagCount struct {
	Tag   string
	Count int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	notes, err := s.db.GetAllNotes()
	if err != nil {
		log.Printf("Error loading notes: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	stats, err := s.db.GetStats()
	if err != nil {
		log.Printf("Error loading stats: %v", err)
		stats = &database.Stats{}
	}

	tag := strings.TrimSpace(r.URL.Query().Get("tag"))
	tags := countTags(notes)
	if tag != "" {
		notes = database.FilterByTag(notes, tag)
	}
	notes = database.SortByQuality(notes)

	rows := make([]noteRow, len(notes))
	for i := range notes {
		rows[i] = newNoteRow(&notes[i])
	}

	s.render(w, "index.html", map[string]any{
		"Notes": rows,
		"Tag":   tag,
		"Tags":  tags,
		"Stats": stats,
	})
}

func countTags(notes []database.Note) []tagCount {
	counts := map[string]int{}
	for _, n := range notes {
		for _, t := range n.Tags {
			counts[t]++
		}
	}
	out := make([]tagCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, tagCount{Tag: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func (s *Server) handleNote(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/notes/")
	id, action, _ := strings.Cut(path, "/")
	if id == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	switch action {
	case "":
		s.showNote(w, r, database.NoteID(id))
	case "delete":
		if r.Method != http.MethodPost {
			http.Redirect(w, r, "/notes/"+id, http.StatusFound)
			return
		}
		if _, err := s.db.DeleteNotes(database.NoteID(id)); err != nil {
			log.Printf("Error deleting note %s: %v", id, err)
		}
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) showNote(w http.ResponseWriter, r *http.Request, id database.NoteID) {
	note, err := s.db.GetNote(id)
	if err != nil {
		log.Printf("Error loading note %s: %v", id, err)
	}
	if note == nil {
		http.NotFound(w, r)
		return
	}

	var svg template.HTML
	if strokes := note.Drawing(); len(strokes) > 0 {
		svg = template.HTML(drawing.SVG(strokes, drawingWidth, drawingHeight)) //nolint: gosec
	}

	group, err := s.resolver.Group(note.GroupID)
	if err != nil {
		log.Printf("Error loading group for note %s: %v", id, err)
	}

	s.render(w, "note.html", map[string]any{
		"Note":    note,
		"Title":   note.DisplayTitle(),
		"Text":    note.TextContent(),
		"Drawing": svg,
		"Group":   group,
	})
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	tag := strings.TrimSpace(r.FormValue("tag"))
	if tag == "" {
		tag = database.TagUNotes
	}
	n, err := s.db.DeleteNotesWithTag(tag)
	if err != nil {
		log.Printf("Error purging notes tagged %q: %v", tag, err)
	} else {
		log.Printf("Purged %d notes tagged %q", n, tag)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

type groupView struct {
	Group      database.Group
	Front      *database.Note
	Supporting []database.Note
	Missing    int
	Topic      *database.Topic
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.db.GetAllGroups()
	if err != nil {
		log.Printf("Error loading groups: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	views := make([]groupView, 0, len(groups))
	for _, g := range groups {
		v := groupView{Group: g}
		v.Front, _ = s.resolver.FrontCard(&g)
		v.Supporting, _ = s.resolver.SupportingCards(&g)
		v.Missing = len(g.SupportingCardIDs) - len(v.Supporting)
		v.Topic, _ = s.resolver.Topic(g.TopicID)
		views = append(views, v)
	}

	s.render(w, "groups.html", map[string]any{
		"Groups": views,
	})
}

type topicView struct {
	Topic  database.Topic
	Groups []database.Group
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.db.GetAllTopics()
	if err != nil {
		log.Printf("Error loading topics: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	views := make([]topicView, 0, len(topics))
	for _, t := range topics {
		groups, _ := s.resolver.TopicGroups(&t)
		views = append(views, topicView{Topic: t, Groups: groups})
	}

	s.render(w, "topics.html", map[string]any{
		"Topics": views,
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	dangling, err := refs.Check(r.Context(), s.db)
	if err != nil {
		log.Printf("Error checking references: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.render(w, "check.html", map[string]any{
		"Dangling": dangling,
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

func ago(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > previewLen {
		return string(r[:previewLen]) + "…"
	}
	return text
}

// Serve starts the HTTP server on the given port.
func Serve(db *database.DB, port int) error {
	srv, err := New(db)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}

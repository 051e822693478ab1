// Package export writes notes to a directory of Markdown files.
package export

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/TobiSchelling/Permanence/internal/database"
)

const fallbackName = "note"

// FrontMatter is the YAML header of an exported note.
type FrontMatter struct {
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	Tags         []string `yaml:"tags,flow"`
	QualityScore float64  `yaml:"quality_score"`
	Created      string   `yaml:"created"`
	Modified     string   `yaml:"modified"`
	GroupID      string   `yaml:"group_id,omitempty"`
}

// Result describes a finished export.
type Result struct {
	Dir   string
	Files []string
}

// Notes writes one file per note into dir, creating it if needed. Files
// are named after the note title; repeated names get -2, -3 and so on.
func Notes(dir string, notes []database.Note) (*Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	res := &Result{Dir: dir}
	used := map[string]bool{}
	for i := range notes {
		n := &notes[i]
		name := FileName(n.Title, used)
		body, err := Render(n)
		if err != nil {
			return res, fmt.Errorf("rendering note %s: %w", n.ID, err)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return res, fmt.Errorf("writing %s: %w", path, err)
		}
		res.Files = append(res.Files, path)
	}

	log.Printf("Exported %d notes to %s", len(res.Files), dir)
	return res, nil
}

// FileName returns a unique file name for title. used holds the names
// handed out so far and is updated.
func FileName(title string, used map[string]bool) string {
	base := slug.Make(title)
	if base == "" {
		base = fallbackName
	}
	name := base
	for i := 2; used[name]; i++ {
		name = fmt.Sprintf("%s-%d", base, i)
	}
	used[name] = true
	return name + ".md"
}

// Render produces the file body: front matter then the note content.
// Drawing payloads stay in the content so the file can be read back.
func Render(n *database.Note) ([]byte, error) {
	fm := FrontMatter{
		ID:           string(n.ID),
		Title:        n.Title,
		Tags:         n.Tags,
		QualityScore: n.QualityScore,
		Created:      n.CreatedAt.UTC().Format(time.RFC3339),
		Modified:     n.LastModified.UTC().Format(time.RFC3339),
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}
	if n.GroupID != nil {
		fm.GroupID = string(*n.GroupID)
	}

	header, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	if content := strings.TrimRight(n.Content, "\n"); content != "" {
		buf.WriteString(content)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// Parse splits an exported file back into front matter and content.
func Parse(data []byte) (*FrontMatter, string, error) {
	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		return nil, "", fmt.Errorf("missing front matter")
	}
	header, body, found := strings.Cut(text[len("---\n"):], "\n---\n")
	if !found {
		return nil, "", fmt.Errorf("unterminated front matter")
	}

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, "", fmt.Errorf("parsing front matter: %w", err)
	}
	return &fm, strings.TrimSuffix(strings.TrimPrefix(body, "\n"), "\n"), nil
}

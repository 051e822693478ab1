// Package importer turns pasted text into notes.
package importer

import (
	"strings"
	"unicode/utf8"
)

const (
	// Prefix marks a pasted line as a u-note. Other lines are ignored.
	Prefix = "U-"

	TagImported = "imported"
	TagUNotes   = "u-notes"
	TagManual   = "manual"

	// DefaultTitle is used for manual lines with an empty title segment.
	DefaultTitle = "Untitled"

	manualSeparator = " | "
	minTitleLen     = 3
	maxTitleLen     = 50
	fallbackWords   = 3
)

// separators are tried in order; the first that yields a usable split wins.
var separators = []string{":", ".", "!", "?", "-"}

// category tags and the keywords that trigger them.
var categories = []struct {
	tag      string
	keywords []string
}{
	{"music", []string{"music", "chord", "song", "band"}},
	{"programming", []string{"swift", "code", "programming", "ios"}},
	{"philosophy", []string{"quality", "pirsig", "philosophy", "zen"}},
	{"permanence-system", []string{"permanence", "sensing", "group"}},
	{"architecture", []string{"architecture", "design", "pattern"}},
}

// Draft is a parsed note that has not been stored yet.
type Draft struct {
	Title   string
	Content string
	Tags    []string
}

// ParsePaste parses u-note lines. Blank lines and lines that do not start
// with Prefix are skipped.
func ParsePaste(text string) []Draft {
	var drafts []Draft
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, Prefix) {
			continue
		}
		drafts = append(drafts, ParseLine(line))
	}
	return drafts
}

// ParseLine converts a single u-note line into a draft.
func ParseLine(line string) Draft {
	title, content := SplitTitleContent(line)
	return Draft{Title: title, Content: content, Tags: InferTags(line)}
}

// SplitTitleContent guesses a title and body for a free-form line.
func SplitTitleContent(line string) (string, string) {
	for _, sep := range separators {
		before, after, found := strings.Cut(line, sep)
		if !found {
			continue
		}
		title := strings.TrimSpace(before)
		content := strings.TrimSpace(after)
		n := utf8.RuneCountInString(title)
		if n >= minTitleLen && n <= maxTitleLen && content != "" {
			return title, content
		}
	}

	words := strings.Fields(line)
	if len(words) > fallbackWords {
		return strings.Join(words[:fallbackWords], " "), strings.Join(words[fallbackWords:], " ")
	}
	return line, ""
}

// InferTags returns the base import tags plus any keyword categories found
// in line. The result has no duplicates.
func InferTags(line string) []string {
	tags := []string{TagImported, TagUNotes}
	tags = append(tags, CategoryTags(line)...)
	return dedupe(tags)
}

// CategoryTags returns the category tags whose keywords appear in text.
func CategoryTags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, c.tag)
				break
			}
		}
	}
	return tags
}

// ParseManual parses "Title | Content | tag1,tag2" lines.
func ParseManual(text string) []Draft {
	var drafts []Draft
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		drafts = append(drafts, ParseManualLine(line))
	}
	return drafts
}

// ParseManualLine parses one manual-format line.
func ParseManualLine(line string) Draft {
	parts := strings.Split(line, manualSeparator)

	d := Draft{Title: strings.TrimSpace(parts[0])}
	if d.Title == "" {
		d.Title = DefaultTitle
	}
	if len(parts) > 1 {
		d.Content = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		for _, tag := range strings.Split(parts[2], ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				d.Tags = append(d.Tags, tag)
			}
		}
	}
	if len(d.Tags) == 0 {
		d.Tags = []string{TagManual}
	}
	return d
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

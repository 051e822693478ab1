// Package capture turns feeds and web pages into importable drafts.
package capture

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/mmcdole/gofeed"

	"github.com/TobiSchelling/Permanence/internal/importer"
)

const (
	TagFeed = "feed"
	TagClip = "clip"

	defaultMaxItems = 20
	defaultTimeout  = 15 * time.Second
	userAgent       = "Permanence/1.0 (note capture)"
)

// Feed is a single feed subscription.
type Feed struct {
	URL  string
	Name string
}

// FeedImporter reads RSS/Atom feeds into drafts.
type FeedImporter struct {
	parser   *gofeed.Parser
	maxItems int
}

// NewFeedImporter creates a feed importer. Zero values select defaults.
func NewFeedImporter(maxItems int, timeout time.Duration) *FeedImporter {
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = userAgent
	return &FeedImporter{parser: parser, maxItems: maxItems}
}

// FetchAll reads every feed. A feed that fails is logged and skipped.
func (fi *FeedImporter) FetchAll(ctx context.Context, feeds []Feed) []importer.Draft {
	var all []importer.Draft
	for _, f := range feeds {
		drafts, err := fi.Fetch(ctx, f)
		if err != nil {
			log.Printf("Failed to parse feed %s: %v", f.URL, err)
			continue
		}
		all = append(all, drafts...)
	}
	return all
}

// Fetch reads one feed.
func (fi *FeedImporter) Fetch(ctx context.Context, f Feed) ([]importer.Draft, error) {
	feed, err := fi.parser.ParseURLWithContext(f.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", f.URL, err)
	}

	name := f.Name
	if name == "" {
		name = sourceName(f.URL)
	}
	drafts := fi.drafts(feed, name)
	log.Printf("Parsed %d items from %s", len(drafts), name)
	return drafts, nil
}

// Parse reads a feed document that has already been downloaded.
func (fi *FeedImporter) Parse(body string, name string) ([]importer.Draft, error) {
	feed, err := fi.parser.ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return fi.drafts(feed, name), nil
}

func (fi *FeedImporter) drafts(feed *gofeed.Feed, name string) []importer.Draft {
	if name == "" {
		name = feed.Title
	}
	var drafts []importer.Draft
	for _, item := range feed.Items {
		if len(drafts) >= fi.maxItems {
			break
		}
		if d, ok := itemDraft(item, name); ok {
			drafts = append(drafts, d)
		}
	}
	return drafts
}

func itemDraft(item *gofeed.Item, source string) (importer.Draft, bool) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return importer.Draft{}, false
	}

	content := stripHTML(item.Content)
	if content == "" {
		content = stripHTML(item.Description)
	}
	if link := item.Link; link != "" {
		content = appendSource(content, link)
	}

	return importer.Draft{
		Title:   title,
		Content: content,
		Tags:    feedTags(title+" "+content, source),
	}, true
}

func feedTags(text, source string) []string {
	tags := []string{TagFeed}
	if s := slug.Make(source); s != "" && s != TagFeed {
		tags = append(tags, s)
	}
	for _, t := range importer.CategoryTags(text) {
		if !contains(tags, t) {
			tags = append(tags, t)
		}
	}
	return tags
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func appendSource(content, link string) string {
	if content == "" {
		return "Source: " + link
	}
	return content + "\n\nSource: " + link
}

func stripHTML(text string) string {
	var b strings.Builder
	inTag := false
	for _, r := range text {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	s := entityReplacer.Replace(b.String())
	return strings.Join(strings.Fields(s), " ")
}

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

func sourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Hostname() == "" {
		return feedURL
	}
	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "blog.", "blogs.", "rss.", "feeds."} {
		host = strings.TrimPrefix(host, prefix)
	}

	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return host
}

package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/TobiSchelling/Permanence/internal/importer"
)

const maxClipBody = 10 << 20

// ErrNoContent is returned when a page has no readable text.
var ErrNoContent = errors.New("no extractable content")

// HTTPError reports a response status of 400 or above.
type HTTPError struct {
	URL  string
	Code int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Clipper fetches a web page and keeps its readable text.
type Clipper struct {
	client *http.Client
}

// NewClipper creates a clipper with the given request timeout.
func NewClipper(timeout time.Duration) *Clipper {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Clipper{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Clip downloads pageURL and returns a draft tagged "clip". When title is
// empty the first words of the page text are used.
func (c *Clipper) Clip(ctx context.Context, pageURL, title string) (importer.Draft, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return importer.Draft{}, fmt.Errorf("invalid url %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return importer.Draft{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return importer.Draft{}, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return importer.Draft{}, &HTTPError{URL: pageURL, Code: resp.StatusCode}
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxClipBody), parsed)
	if err != nil {
		return importer.Draft{}, fmt.Errorf("extracting %s: %w", pageURL, err)
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return importer.Draft{}, ErrNoContent
	}

	if title = strings.TrimSpace(title); title == "" {
		title, _ = importer.SplitTitleContent(firstLine(text))
	}

	tags := []string{TagClip}
	for _, t := range importer.CategoryTags(title + " " + text) {
		if !contains(tags, t) {
			tags = append(tags, t)
		}
	}

	return importer.Draft{
		Title:   title,
		Content: appendSource(text, pageURL),
		Tags:    tags,
	}, nil
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(line)
}

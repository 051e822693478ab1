// Package drawing encodes freehand sketches into note content.
//
// A sketch is an ordered list of strokes. It is serialized to JSON,
// base64-encoded and appended to a note's text on its own line behind
// the Marker token.
package drawing

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

const (
	// Marker prefixes the encoded payload line inside note content.
	Marker = "DRAWING_DATA:"

	// TagDrawing marks a note carrying a drawing payload.
	TagDrawing = "drawing"
	// TagSketch is the alternate tag for drawing notes.
	TagSketch = "sketch"

	DefaultLineWidth = 3.0
)

// Point is a single 2D sample of a stroke.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is a polyline with a color and width.
type Stroke struct {
	Points    []Point `json:"points"`
	Color     Color   `json:"color"`
	LineWidth float64 `json:"lineWidth"`
}

// NewStroke returns an empty black stroke with the default width.
func NewStroke() Stroke {
	return Stroke{Points: []Point{}, Color: Black, LineWidth: DefaultLineWidth}
}

// Encode serializes strokes into the base64 payload.
func Encode(strokes []Stroke) (string, error) {
	out := make([]Stroke, len(strokes))
	for i, s := range strokes {
		if s.Points == nil {
			s.Points = []Point{}
		}
		if s.Color == "" {
			s.Color = Black
		}
		out[i] = s
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encoding strokes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode parses a base64 payload back into strokes.
func Decode(payload string) ([]Stroke, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}
	var strokes []Stroke
	if err := json.Unmarshal(data, &strokes); err != nil {
		return nil, fmt.Errorf("decoding strokes: %w", err)
	}
	if strokes == nil {
		return nil, fmt.Errorf("decoding strokes: payload is not a list")
	}
	for i := range strokes {
		if strokes[i].Color == "" {
			return nil, fmt.Errorf("decoding strokes: stroke %d has no color", i)
		}
		if strokes[i].Points == nil {
			strokes[i].Points = []Point{}
		}
	}
	return strokes, nil
}

// Embed appends the encoded strokes to content behind the marker line.
func Embed(content string, strokes []Stroke) (string, error) {
	payload, err := Encode(strokes)
	if err != nil {
		return "", err
	}
	return content + "\n" + Marker + payload, nil
}

// Extract finds the first marker line in content and decodes it.
// It reports false when the marker is absent or the payload is malformed.
func Extract(content string) ([]Stroke, bool) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, Marker) {
			continue
		}
		strokes, err := Decode(strings.TrimPrefix(line, Marker))
		if err != nil {
			return nil, false
		}
		return strokes, true
	}
	return nil, false
}

// TextContent returns the part of content that precedes the payload.
func TextContent(content string) string {
	text, _, _ := strings.Cut(content, Marker)
	return strings.TrimRight(text, " \t\r\n")
}

// HasDrawing reports whether content carries a payload and tags mark it.
func HasDrawing(content string, tags []string) bool {
	return strings.Contains(content, Marker) && slices.Contains(tags, TagDrawing)
}

// IsDrawingNote reports whether tags mark a note as a drawing.
func IsDrawingNote(tags []string) bool {
	return slices.Contains(tags, TagDrawing) || slices.Contains(tags, TagSketch)
}

// Attach embeds strokes into content and adds the drawing tags.
// A nil strokes slice leaves content and tags unchanged.
func Attach(content string, tags []string, strokes []Stroke) (string, []string, error) {
	outTags := slices.Clone(tags)
	if strokes == nil {
		return content, outTags, nil
	}
	out, err := Embed(content, strokes)
	if err != nil {
		return "", nil, err
	}
	if !slices.Contains(outTags, TagDrawing) {
		outTags = append(outTags, TagDrawing)
	}
	if !slices.Contains(outTags, TagSketch) {
		outTags = append(outTags, TagSketch)
	}
	return out, outTags, nil
}

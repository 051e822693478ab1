package drawing

import (
	"fmt"
	"strconv"
	"strings"
)

// SVG renders strokes as a standalone SVG document of the given size.
// Strokes without points are skipped.
func SVG(strokes []Stroke, width, height int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		width, height, width, height)
	for _, s := range strokes {
		if len(s.Points) == 0 {
			continue
		}
		pts := make([]string, len(s.Points))
		for i, p := range s.Points {
			pts[i] = formatFloat(p.X) + "," + formatFloat(p.Y)
		}
		lw := s.LineWidth
		if lw <= 0 {
			lw = DefaultLineWidth
		}
		fmt.Fprintf(&b,
			`<polyline points="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round"/>`,
			strings.Join(pts, " "), s.Color.Hex(), formatFloat(lw))
	}
	b.WriteString("</svg>")
	return b.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

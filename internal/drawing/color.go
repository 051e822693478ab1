package drawing

import "fmt"

// Color is one of the fixed palette names.
type Color string

const (
	Black  Color = "black"
	Blue   Color = "blue"
	Red    Color = "red"
	Green  Color = "green"
	Orange Color = "orange"
	Purple Color = "purple"
	Brown  Color = "brown"
	Pink   Color = "pink"
)

// Palette lists every supported color in display order.
var Palette = []Color{Black, Blue, Red, Green, Orange, Purple, Brown, Pink}

var hexValues = map[Color]string{
	Black:  "#000000",
	Blue:   "#007aff",
	Red:    "#ff3b30",
	Green:  "#34c759",
	Orange: "#ff9500",
	Purple: "#af52de",
	Brown:  "#a2845e",
	Pink:   "#ff2d55",
}

// ParseColor validates a palette name.
func ParseColor(s string) (Color, error) {
	c := Color(s)
	if _, ok := hexValues[c]; !ok {
		return "", fmt.Errorf("unknown drawing color %q", s)
	}
	return c, nil
}

// Hex returns the CSS color for c.
func (c Color) Hex() string {
	if h, ok := hexValues[c]; ok {
		return h
	}
	return hexValues[Black]
}

// UnmarshalText rejects names outside the palette.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	if _, ok := hexValues[c]; !ok {
		return nil, fmt.Errorf("unknown drawing color %q", string(c))
	}
	return []byte(c), nil
}

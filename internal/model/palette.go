package model

import (
	"encoding/json"
	"strings"
)

// Color is a key into the fixed event palette.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorPurple Color = "purple"
	ColorPink   Color = "pink"
	ColorIndigo Color = "indigo"
	ColorGray   Color = "gray"

	DefaultColor = ColorBlue
)

var palette = []Color{
	ColorBlue,
	ColorGreen,
	ColorRed,
	ColorYellow,
	ColorPurple,
	ColorPink,
	ColorIndigo,
	ColorGray,
}

var paletteHex = map[Color]string{
	ColorBlue:   "#3b82f6",
	ColorGreen:  "#22c55e",
	ColorRed:    "#ef4444",
	ColorYellow: "#eab308",
	ColorPurple: "#a855f7",
	ColorPink:   "#ec4899",
	ColorIndigo: "#6366f1",
	ColorGray:   "#6b7280",
}

// Palette returns the ordered list of selectable colors.
func Palette() []Color {
	out := make([]Color, len(palette))
	copy(out, palette)
	return out
}

// ParseColor maps a user-supplied value onto the palette. Unknown or empty
// values resolve to DefaultColor.
func ParseColor(s string) Color {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := paletteHex[c]; ok {
		return c
	}
	return DefaultColor
}

// Valid reports whether c is one of the palette keys.
func (c Color) Valid() bool {
	_, ok := paletteHex[c]
	return ok
}

// Resolve returns c, or DefaultColor if c is not a palette key.
func (c Color) Resolve() Color {
	if c.Valid() {
		return c
	}
	return DefaultColor
}

// Hex returns the CSS color for c.
func (c Color) Hex() string {
	return paletteHex[c.Resolve()]
}

// UnmarshalJSON normalizes incoming colors onto the palette.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ParseColor(s)
	return nil
}

package snapshot

// Color is a tab group colour from the fixed browser palette.
type Color string

// Palette colours, in the order the browser presents them.
const (
	ColorGrey   Color = "grey"
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorPink   Color = "pink"
	ColorPurple Color = "purple"
	ColorCyan   Color = "cyan"
	ColorOrange Color = "orange"
)

// DefaultColor is used whenever a colour is missing or unknown.
const DefaultColor = ColorGrey

// Palette lists every valid colour.
var Palette = []Color{
	ColorGrey,
	ColorBlue,
	ColorRed,
	ColorYellow,
	ColorGreen,
	ColorPink,
	ColorPurple,
	ColorCyan,
	ColorOrange,
}

// Valid reports whether c is part of the palette.
func (c Color) Valid() bool {
	for _, p := range Palette {
		if c == p {
			return true
		}
	}
	return false
}

// ParseColor coerces a string into the palette, falling back to DefaultColor.
func ParseColor(s string) Color {
	c := Color(s)
	if c.Valid() {
		return c
	}
	return DefaultColor
}

// Next returns the colour after c in palette order, wrapping around.
func (c Color) Next() Color {
	for i, p := range Palette {
		if p == c {
			return Palette[(i+1)%len(Palette)]
		}
	}
	return DefaultColor
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/tabshelf/pkg/editor"
	"github.com/entrhq/tabshelf/pkg/snapshot"
)

// palette is one colour theme. Every style is derived from it so a theme
// switch only swaps the palette.
type palette struct {
	accent    lipgloss.Color
	secondary lipgloss.Color
	success   lipgloss.Color
	muted     lipgloss.Color
	text      lipgloss.Color
	highlight lipgloss.Color
	danger    lipgloss.Color
}

var (
	darkPalette = palette{
		accent:    lipgloss.Color("#FFB3BA"),
		secondary: lipgloss.Color("#FFCCCB"),
		success:   lipgloss.Color("#A8E6CF"),
		muted:     lipgloss.Color("#6B7280"),
		text:      lipgloss.Color("#F9FAFB"),
		highlight: lipgloss.Color("#374151"),
		danger:    lipgloss.Color("203"),
	}
	lightPalette = palette{
		accent:    lipgloss.Color("#B4232F"),
		secondary: lipgloss.Color("#9A3412"),
		success:   lipgloss.Color("#047857"),
		muted:     lipgloss.Color("#6B7280"),
		text:      lipgloss.Color("#111827"),
		highlight: lipgloss.Color("#E5E7EB"),
		danger:    lipgloss.Color("160"),
	}
)

// groupColors maps the browser palette to terminal colours.
var groupColors = map[snapshot.Color]lipgloss.Color{
	snapshot.ColorGrey:   lipgloss.Color("#9CA3AF"),
	snapshot.ColorBlue:   lipgloss.Color("#3B82F6"),
	snapshot.ColorRed:    lipgloss.Color("#EF4444"),
	snapshot.ColorYellow: lipgloss.Color("#EAB308"),
	snapshot.ColorGreen:  lipgloss.Color("#22C55E"),
	snapshot.ColorPink:   lipgloss.Color("#EC4899"),
	snapshot.ColorPurple: lipgloss.Color("#A855F7"),
	snapshot.ColorCyan:   lipgloss.Color("#06B6D4"),
	snapshot.ColorOrange: lipgloss.Color("#F97316"),
}

type styles struct {
	header    lipgloss.Style
	tips      lipgloss.Style
	window    lipgloss.Style
	set       lipgloss.Style
	tab       lipgloss.Style
	url       lipgloss.Style
	cursor    lipgloss.Style
	moved     lipgloss.Style
	duplicate lipgloss.Style
	count     lipgloss.Style
	statusBar lipgloss.Style
	errorText lipgloss.Style
	inputBox  lipgloss.Style
	overlay   lipgloss.Style
	title     lipgloss.Style
	help      lipgloss.Style
}

func newStyles(theme string) styles {
	p := lightPalette
	if theme == editor.ThemeDark {
		p = darkPalette
	}
	return styles{
		header:    lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		tips:      lipgloss.NewStyle().Foreground(p.muted),
		window:    lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		set:       lipgloss.NewStyle().Foreground(p.secondary).Bold(true),
		tab:       lipgloss.NewStyle().Foreground(p.text),
		url:       lipgloss.NewStyle().Foreground(p.muted),
		cursor:    lipgloss.NewStyle().Background(p.highlight).Bold(true),
		moved:     lipgloss.NewStyle().Foreground(p.success).Bold(true),
		duplicate: lipgloss.NewStyle().Foreground(p.danger),
		count:     lipgloss.NewStyle().Foreground(p.muted),
		statusBar: lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1),
		errorText: lipgloss.NewStyle().Foreground(p.danger),
		inputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.accent).
			Padding(0, 1),
		overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.accent).
			Padding(0, 1),
		title: lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		help:  lipgloss.NewStyle().Foreground(p.muted).Italic(true),
	}
}

func groupStyle(c snapshot.Color) lipgloss.Style {
	color, ok := groupColors[c]
	if !ok {
		color = groupColors[snapshot.DefaultColor]
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}

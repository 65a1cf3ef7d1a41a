package ui

import "strings"

// Border is the set of glyphs a Panel frame is drawn with.
type Border struct {
	TL, TR, BL, BR, H, V string
}

// Theme is the look of plain-terminal grocery output.
type Theme struct {
	Name string

	// colors
	Heading, Section, Muted string
	InCart, ToBuy           string
	Alert                   string

	// glyphs for an item row and the header counters
	Box, BoxChecked     string
	CartMark, ToBuyMark string
	Frame               Border
	plain               bool
}

var (
	rounded = Border{"╭", "╮", "╰", "╯", "─", "│"}
	square  = Border{"┌", "┐", "└", "┘", "─", "│"}
	ascii   = Border{"+", "+", "+", "+", "-", "|"}
)

var themes = map[string]Theme{
	"classic": {
		Name: "classic", Heading: bold, Section: fgBlue, Muted: fgGray,
		InCart: fgGreen, ToBuy: fgYellow, Alert: fgRed,
		Box: "☐", BoxChecked: "☑", CartMark: "✔", ToBuyMark: "•",
		Frame: square,
	},
	"neon": {
		Name: "neon", Heading: "\033[95m", Section: "\033[96m", Muted: fgGray,
		InCart: fgGreen, ToBuy: "\033[93m", Alert: fgRed,
		Box: "◻", BoxChecked: "◼", CartMark: "✔", ToBuyMark: "•",
		Frame: rounded,
	},
	"mono": {
		Name: "mono",
		Box:  "[ ]", BoxChecked: "[x]", CartMark: "x", ToBuyMark: "-",
		Frame: ascii,
		plain: true,
	},
}

var current Theme

func init() { SetTheme("classic") }

// SetTheme switches the theme; unknown names fall back to classic.
func SetTheme(name string) {
	t, ok := themes[strings.ToLower(name)]
	if !ok {
		t = themes["classic"]
	}
	current = t
	disableColor = t.plain
}

// Current returns the active theme.
func Current() Theme { return current }

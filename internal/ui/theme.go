package ui

import "strings"

// Theme bundles palette, symbols and box borders for plain-terminal output.
type Theme struct {
	Name                                          string
	Title, Muted, Accent, Success, Error, Pending string
	BoxUnchecked, BoxChecked                      string
	CornerTL, CornerTR, CornerBL, CornerBR        string
	H, V                                          string
	SymDone, SymActive, SymFail                   string
}

var themes = map[string]Theme{
	"classic": {
		Name:  "classic",
		Title: bold, Muted: fgGray, Accent: fgBlue,
		Success: fgGreen, Error: fgRed, Pending: fgYellow,
		BoxUnchecked: "☐", BoxChecked: "☑",
		CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
		H: "─", V: "│",
		SymDone: "✔", SymActive: "•", SymFail: "✖",
	},
	"neon": {
		Name:  "neon",
		Title: "\033[95m", // bright magenta
		Muted: fgGray, Accent: "\033[96m",
		Success: fgGreen, Error: fgRed, Pending: "\033[93m",
		BoxUnchecked: "◻", BoxChecked: "◼",
		CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
		H: "─", V: "│",
		SymDone: "✔", SymActive: "•", SymFail: "✖",
	},
	"mono": {
		Name:         "mono",
		BoxUnchecked: "[ ]", BoxChecked: "[x]",
		CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
		H: "-", V: "|",
		SymDone: "x", SymActive: "-", SymFail: "!",
	},
}

var current = themes["classic"]

// SetTheme selects a theme by name; unknown names select classic.
func SetTheme(name string) {
	t, ok := themes[strings.ToLower(name)]
	if !ok {
		t = themes["classic"]
	}
	current = t
	disableColor = t.Name == "mono"
}

// Current is the active theme.
func Current() Theme { return current }

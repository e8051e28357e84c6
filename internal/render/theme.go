package render

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors used by the console renderer
type Theme struct {
	Name string

	// Base colors
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Border     lipgloss.Color

	// Semantic colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color
}

// Nord theme - Arctic, north-bluish color palette
// https://www.nordtheme.com/
var Nord = Theme{
	Name: "nord",

	Foreground: lipgloss.Color("#ECEFF4"),
	Subtle:     lipgloss.Color("#4C566A"),
	Border:     lipgloss.Color("#4C566A"),

	// Frost
	Primary:   lipgloss.Color("#88C0D0"),
	Secondary: lipgloss.Color("#81A1C1"),
	Info:      lipgloss.Color("#5E81AC"),

	// Aurora
	Success: lipgloss.Color("#A3BE8C"),
	Warning: lipgloss.Color("#EBCB8B"),
	Error:   lipgloss.Color("#BF616A"),
}

// Dracula theme - Dark theme with vibrant colors
// https://draculatheme.com/
var Dracula = Theme{
	Name: "dracula",

	Foreground: lipgloss.Color("#F8F8F2"),
	Subtle:     lipgloss.Color("#6272A4"),
	Border:     lipgloss.Color("#6272A4"),

	Primary:   lipgloss.Color("#BD93F9"), // Purple
	Secondary: lipgloss.Color("#8BE9FD"), // Cyan
	Info:      lipgloss.Color("#8BE9FD"),

	Success: lipgloss.Color("#50FA7B"),
	Warning: lipgloss.Color("#F1FA8C"),
	Error:   lipgloss.Color("#FF5555"),
}

// Catppuccin theme - Soothing pastel theme (Mocha variant)
// https://github.com/catppuccin/catppuccin
var Catppuccin = Theme{
	Name: "catppuccin",

	Foreground: lipgloss.Color("#CDD6F4"),
	Subtle:     lipgloss.Color("#6C7086"),
	Border:     lipgloss.Color("#45475A"),

	Primary:   lipgloss.Color("#89B4FA"), // Blue
	Secondary: lipgloss.Color("#CBA6F7"), // Mauve
	Info:      lipgloss.Color("#74C7EC"), // Sapphire

	Success: lipgloss.Color("#A6E3A1"),
	Warning: lipgloss.Color("#F9E2AF"),
	Error:   lipgloss.Color("#F38BA8"),
}

// Gruvbox theme - Retro groove color scheme
// https://github.com/morhetz/gruvbox
var Gruvbox = Theme{
	Name: "gruvbox",

	Foreground: lipgloss.Color("#EBDBB2"),
	Subtle:     lipgloss.Color("#928374"),
	Border:     lipgloss.Color("#504945"),

	Primary:   lipgloss.Color("#83A598"), // Aqua
	Secondary: lipgloss.Color("#8EC07C"),
	Info:      lipgloss.Color("#83A598"),

	Success: lipgloss.Color("#B8BB26"),
	Warning: lipgloss.Color("#FABD2F"),
	Error:   lipgloss.Color("#FB4934"),
}

// Available returns all available themes
func Available() []Theme {
	return []Theme{Nord, Dracula, Catppuccin, Gruvbox}
}

// ThemeByName returns a theme by its name
func ThemeByName(name string) (Theme, bool) {
	for _, t := range Available() {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// Styles holds pre-computed lipgloss styles based on a theme
type Styles struct {
	Header    lipgloss.Style
	Message   lipgloss.Style
	Error     lipgloss.Style
	Syntax    lipgloss.Style
	Index     lipgloss.Style
	Item      lipgloss.Style
	ItemDone  lipgloss.Style
	ItemLate  lipgloss.Style
	Tag       lipgloss.Style
	Date      lipgloss.Style
	DateLate  lipgloss.Style
	DateSoon  lipgloss.Style
	Empty     lipgloss.Style
	Card      lipgloss.Style
	CardValue lipgloss.Style
	CardLabel lipgloss.Style
}

// NewStyles creates styles from a theme, bound to r
func NewStyles(r *lipgloss.Renderer, t Theme) Styles {
	return Styles{
		Header: r.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Message: r.NewStyle().
			Foreground(t.Success),

		Error: r.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Syntax: r.NewStyle().
			Foreground(t.Subtle).
			Italic(true),

		Index: r.NewStyle().
			Foreground(t.Subtle).
			Width(4).
			Align(lipgloss.Right),

		Item: r.NewStyle().
			Foreground(t.Foreground),

		ItemDone: r.NewStyle().
			Foreground(t.Subtle).
			Strikethrough(true),

		ItemLate: r.NewStyle().
			Foreground(t.Error),

		Tag: r.NewStyle().
			Foreground(t.Info),

		Date: r.NewStyle().
			Foreground(t.Subtle),

		DateLate: r.NewStyle().
			Foreground(t.Error),

		DateSoon: r.NewStyle().
			Foreground(t.Warning),

		Empty: r.NewStyle().
			Foreground(t.Subtle).
			Italic(true),

		Card: r.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2).
			Width(18),

		CardValue: r.NewStyle().
			Bold(true).
			Foreground(t.Primary),

		CardLabel: r.NewStyle().
			Foreground(t.Subtle),
	}
}

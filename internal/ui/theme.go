package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a named color palette. Colors are hex strings.
type Theme struct {
	Name string

	Background string
	Surface    string // header, command bar
	SurfaceAlt string // unfocused boxes
	FocusBg    string // focused box and table body

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// PlatformColors tint device type chips, keyed by lowercase device type.
	PlatformColors map[string]string
}

// Styles holds the text styles derived from a Theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Logo   lipgloss.Style
	Header lipgloss.Style

	chipText  string
	chipEmpty string
	chips     map[string]string
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Styles returns the lipgloss styles for t.
func (t Theme) Styles() Styles {
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),
		Logo:        fg(t.Warning).Bold(true),
		Header: fg(t.Text).
			Background(lipgloss.Color(t.Surface)).
			Padding(0, 1),
		chipText:  t.Background,
		chipEmpty: t.Muted,
		chips:     t.PlatformColors,
	}
}

// WithBackground returns a copy of s with every style painted on bgColor,
// so text on a colored bar never falls back to the terminal background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	for _, st := range []*lipgloss.Style{
		&s.Text, &s.MutedText, &s.FaintText, &s.AccentText,
		&s.SuccessText, &s.WarningText, &s.DangerText, &s.InfoText,
		&s.Logo, &s.Header,
	} {
		*st = st.Background(bg)
	}
	return s
}

// PlatformChip returns the chip style for a device type. Unknown types use
// the muted color.
func (s Styles) PlatformChip(platform string) lipgloss.Style {
	color, ok := s.chips[strings.ToLower(strings.TrimSpace(platform))]
	if !ok || color == "" {
		color = s.chipEmpty
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.chipText)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// themeList is the cycle order of T; the first entry is the default.
var themeList = []Theme{nightfox, kanagawa, slate}

// GetTheme returns the theme called name, or the default theme.
func GetTheme(name string) Theme {
	for _, t := range themeList {
		if t.Name == name {
			return t
		}
	}
	return themeList[0]
}

// NextTheme returns the name of the theme after current.
func NextTheme(current string) string {
	for i, t := range themeList {
		if t.Name == current {
			return themeList[(i+1)%len(themeList)].Name
		}
	}
	return themeList[0].Name
}

// ThemeNames returns the theme names in cycle order.
func ThemeNames() []string {
	names := make([]string, len(themeList))
	for i, t := range themeList {
		names[i] = t.Name
	}
	return names
}

// platformPalette maps the Parse device types onto six palette colors.
func platformPalette(blue, green, violet, cyan, yellow, orange string) map[string]string {
	return map[string]string{
		"ios":      blue,
		"android":  green,
		"osx":      violet,
		"tvos":     cyan,
		"winrt":    yellow,
		"winphone": orange,
	}
}

// https://github.com/EdenEast/nightfox.nvim
var nightfox = Theme{
	Name:          "Nightfox",
	Background:    "#131a24",
	Surface:       "#192330",
	SurfaceAlt:    "#212e3f",
	FocusBg:       "#29394f",
	SelectionBg:   "#2b3b51",
	SelectionText: "#cdcecf",
	Border:        "#39506d",
	BorderFocus:   "#719cd6",
	Text:          "#cdcecf",
	Muted:         "#738091",
	Faint:         "#71839b",
	Accent:        "#719cd6",
	Success:       "#81b29a",
	Warning:       "#dbc074",
	Danger:        "#c94f6d",
	Info:          "#63cdcf",
	PlatformColors: platformPalette(
		"#719cd6", "#81b29a", "#9d79d6", "#63cdcf", "#dbc074", "#f4a261"),
}

// https://github.com/rebelot/kanagawa.nvim
var kanagawa = Theme{
	Name:          "Kanagawa",
	Background:    "#16161D",
	Surface:       "#1F1F28",
	SurfaceAlt:    "#2A2A37",
	FocusBg:       "#2A2A37",
	SelectionBg:   "#2D4F67",
	SelectionText: "#DCD7BA",
	Border:        "#54546D",
	BorderFocus:   "#7E9CD8",
	Text:          "#DCD7BA",
	Muted:         "#C8C093",
	Faint:         "#727169",
	Accent:        "#7E9CD8",
	Success:       "#98BB6C",
	Warning:       "#E6C384",
	Danger:        "#E46876",
	Info:          "#7FB4CA",
	PlatformColors: platformPalette(
		"#7E9CD8", "#98BB6C", "#957FB8", "#7FB4CA", "#E6C384", "#FFA066"),
}

// Tailwind slate and sky.
var slate = Theme{
	Name:          "Slate",
	Background:    "#020617",
	Surface:       "#0f172a",
	SurfaceAlt:    "#1e293b",
	FocusBg:       "#283548",
	SelectionBg:   "#0284c7",
	SelectionText: "#f8fafc",
	Border:        "#334155",
	BorderFocus:   "#38bdf8",
	Text:          "#f1f5f9",
	Muted:         "#94a3b8",
	Faint:         "#64748b",
	Accent:        "#38bdf8",
	Success:       "#22c55e",
	Warning:       "#f59e0b",
	Danger:        "#ef4444",
	Info:          "#06b6d4",
	PlatformColors: platformPalette(
		"#38bdf8", "#22c55e", "#a78bfa", "#06b6d4", "#f59e0b", "#fb923c"),
}

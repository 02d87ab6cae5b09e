package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle paints text segments on one background color. Without it the ANSI
// reset after each styled word leaves the spaces between them unpainted.
type BgStyle struct {
	base lipgloss.Style
}

// NewBgStyle returns a BgStyle for bgColor.
func NewBgStyle(bgColor string) BgStyle {
	return BgStyle{base: lipgloss.NewStyle().Background(lipgloss.Color(bgColor))}
}

// Render renders text in style, painting the spaces inside it as well.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	style = style.Background(b.base.GetBackground())
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = style.Render(w)
		}
	}
	return strings.Join(words, b.Space())
}

// Space returns one painted space.
func (b BgStyle) Space() string {
	return b.Spaces(1)
}

// Spaces returns n painted spaces.
func (b BgStyle) Spaces(n int) string {
	return b.Sep(strings.Repeat(" ", max(n, 0)))
}

// Sep paints sep.
func (b BgStyle) Sep(sep string) string {
	return b.base.Render(sep)
}

// Join joins parts with a painted sep.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, b.Sep(sep))
}

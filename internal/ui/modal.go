package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
	// Failed records an error from the action the modal submitted.
	Failed(err error) Modal
}

// modalFrame is the shared layout of a dialog.
type modalFrame struct {
	title  string
	body   string
	footer string
	err    error
	danger bool
	width  int
}

// renderModal draws a bordered dialog centered in a width x height area.
func renderModal(theme Theme, f modalFrame, width, height int) string {
	styles := theme.Styles()

	accent := theme.Accent
	if f.danger {
		accent = theme.Danger
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accent)).Render(f.title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")
	b.WriteString(f.body)

	if f.err != nil {
		b.WriteString("\n\n")
		b.WriteString(styles.DangerText.Render("! " + f.err.Error()))
	}
	if f.footer != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.MutedText.Render(f.footer))
	}

	modalWidth := f.width
	if modalWidth <= 0 {
		modalWidth = 60
	}
	if width > 0 && modalWidth > width-4 {
		modalWidth = max(width-4, 20)
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(accent)).
		Padding(1, 2).
		Width(modalWidth).
		Render(b.String())

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

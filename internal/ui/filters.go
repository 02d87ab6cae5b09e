package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pushboard/internal/audience"
	"github.com/five82/pushboard/internal/parse"
	"github.com/five82/pushboard/internal/query"
)

// filterColumn is one column of the filter table.
type filterColumn struct {
	title string
	width int // 0 takes the remaining space
	value func(f parse.Filter, now time.Time) string
}

// filterColumns returns the columns that fit in width.
func filterColumns(width int) []filterColumn {
	cols := []filterColumn{
		{title: "Name", width: 24, value: func(f parse.Filter, _ time.Time) string { return f.Name }},
		{title: "Platforms", width: 18, value: func(f parse.Filter, _ time.Time) string {
			return strings.Join(f.Query.Platforms(), ", ")
		}},
		{title: "Filter", value: func(f parse.Filter, _ time.Time) string { return query.ConstraintSummary(f.Query) }},
		{title: "Created", width: 12, value: func(f parse.Filter, now time.Time) string { return formatRelative(f.CreatedAt, now) }},
		{title: "Updated", width: 12, value: func(f parse.Filter, now time.Time) string { return formatRelative(f.UpdatedAt, now) }},
		{title: "Sends", width: 7, value: func(f parse.Filter, _ time.Time) string { return fmt.Sprintf("%d", f.TimesUsed) }},
	}
	if width < 100 {
		// Drop Created and Platforms on narrow terminals.
		return []filterColumn{cols[0], cols[2], cols[4], cols[5]}
	}
	return cols
}

// columnWidths resolves the flexible column so the row fills width.
func columnWidths(cols []filterColumn, width int) []int {
	widths := make([]int, len(cols))
	fixed := 0
	flex := -1
	for i, c := range cols {
		if c.width == 0 {
			flex = i
			continue
		}
		widths[i] = c.width
		fixed += c.width + 1
	}
	if flex >= 0 {
		widths[flex] = max(width-fixed-2, 10)
	}
	return widths
}

// renderFilters renders the filter table or an empty state.
func (m Model) renderFilters() string {
	styles := m.theme.Styles()
	contentHeight := m.height - 2 // Account for header + cmdbar
	coll := m.snapshot.Collection

	if coll.Len() == 0 {
		var msg string
		switch {
		case m.loading || (!m.snapshot.Loaded() && m.fetchErr == nil):
			msg = m.spinner.View() + " " + styles.MutedText.Render("Loading push filters...")
		case m.devicesLoaded && len(m.availableDevices) == 0:
			msg = styles.WarningText.Render("No registered devices") + "\n\n" +
				styles.FaintText.Render("Push filters need at least one installation to target.")
		default:
			msg = styles.MutedText.Render("No push filters to display yet.") + "\n\n" +
				styles.FaintText.Render("Press n to create an audience.")
		}
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Align(lipgloss.Center).Render(msg))
	}

	content := m.renderFilterTable(m.width-2, contentHeight-2, m.theme.FocusBg)
	return m.renderTitledBox(m.filtersTitle(), content, m.width, contentHeight, true)
}

// filtersTitle shows the count and whether the server holds more.
func (m Model) filtersTitle() string {
	coll := m.snapshot.Collection
	title := fmt.Sprintf("Push Audiences (%d)", coll.Len())
	if coll != nil && coll.ShowMore {
		title = fmt.Sprintf("Push Audiences (%d, more on server)", coll.Len())
	}
	return title
}

// renderFilterTable renders a header row and the visible filter rows.
func (m Model) renderFilterTable(width, height int, bgColor string) string {
	coll := m.snapshot.Collection
	cols := filterColumns(m.width)
	widths := columnWidths(cols, width)
	now := time.Now()

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Muted)).
		Background(lipgloss.Color(bgColor)).
		Bold(true)
	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}
	lines := []string{headerStyle.Width(width).Render(" " + joinCells(titles, widths))}

	// Keep the selection visible.
	rows := max(height-1, 1)
	start := 0
	if m.selectedRow >= rows {
		start = m.selectedRow - rows + 1
	}
	end := min(start+rows, coll.Len())

	for i := start; i < end; i++ {
		f := coll.Filters[i]
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = c.value(f, now)
		}
		selected := i == m.selectedRow
		rowBg := bgColor
		fg := m.theme.Text
		if selected {
			rowBg = m.theme.SelectionBg
			fg = m.theme.SelectionText
		} else if f.ObjectID == "" || f.ObjectID == audience.UnassignedID {
			fg = m.theme.Muted
		}
		line := lipgloss.NewStyle().
			Background(lipgloss.Color(rowBg)).
			Foreground(lipgloss.Color(fg)).
			Width(width).
			Render(" " + joinCells(cells, widths))
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// joinCells pads and truncates cells to their column widths.
func joinCells(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = padRight(truncate(cell, widths[i]), widths[i])
	}
	return strings.Join(parts, " ")
}

// renderTitledBox renders content in a box with the title embedded in the top border.
// Frame style: ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).Background(lipgloss.Color(bgColorStr))

	contentLines := strings.Split(content, "\n")
	boxHeight := height - 2

	paddedLines := make([]string, 0, max(boxHeight, 0))
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		paddedLines = append(paddedLines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(paddedLines, "\n") + "\n" + bottomBorder
}

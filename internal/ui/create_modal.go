package ui

import (
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/pushboard/internal/query"
)

var errNameRequired = errors.New("name is required")

type createField int

const (
	fieldName createField = iota
	fieldPlatforms
	fieldWhere
	fieldCount
)

// createModal collects the name, platforms and constraints of a new audience.
type createModal struct {
	name      textinput.Model
	where     textinput.Model
	platforms []string
	selected  map[string]bool
	cursor    int
	focus     createField
	err       error
}

// newCreateModal lists devices as platform toggles. Platforms in preselect
// start checked; when none of them is available every platform starts checked.
func newCreateModal(devices, preselect []string) *createModal {
	name := textinput.New()
	name.Placeholder = "Audience name"
	name.CharLimit = 120
	name.Focus()

	where := textinput.New()
	where.Placeholder = "appVersion >= 2; locale = en"
	where.CharLimit = 500

	m := &createModal{
		name:      name,
		where:     where,
		platforms: append([]string(nil), devices...),
		selected:  make(map[string]bool, len(devices)),
	}
	for _, p := range preselect {
		if slices.Contains(m.platforms, p) {
			m.selected[p] = true
		}
	}
	if len(m.selected) == 0 {
		for _, p := range m.platforms {
			m.selected[p] = true
		}
	}
	return m
}

func (m *createModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, m.updateInput(msg), false
	}

	switch {
	case key.Matches(keyMsg, keys.Cancel):
		return m, nil, true
	case key.Matches(keyMsg, keys.NextField):
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil, false
	case key.Matches(keyMsg, keys.PrevField):
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil, false
	case key.Matches(keyMsg, keys.Confirm):
		req, err := m.request()
		if err != nil {
			m.err = err
			return m, nil, false
		}
		m.err = nil
		return m, func() tea.Msg { return req }, false
	}

	if m.focus == fieldPlatforms {
		switch {
		case key.Matches(keyMsg, keys.Left):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(keyMsg, keys.Right):
			if m.cursor < len(m.platforms)-1 {
				m.cursor++
			}
		case key.Matches(keyMsg, keys.Toggle):
			if m.cursor < len(m.platforms) {
				p := m.platforms[m.cursor]
				m.selected[p] = !m.selected[p]
			}
		}
		return m, nil, false
	}

	return m, m.updateInput(msg), false
}

func (m *createModal) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case fieldName:
		m.name, cmd = m.name.Update(msg)
	case fieldWhere:
		m.where, cmd = m.where.Update(msg)
	}
	return cmd
}

func (m *createModal) setFocus(f createField) {
	m.focus = f
	m.name.Blur()
	m.where.Blur()
	switch f {
	case fieldName:
		m.name.Focus()
	case fieldWhere:
		m.where.Focus()
	}
}

// chosenPlatforms returns the checked platforms in display order.
func (m *createModal) chosenPlatforms() []string {
	var out []string
	for _, p := range m.platforms {
		if m.selected[p] {
			out = append(out, p)
		}
	}
	return out
}

func (m *createModal) request() (createRequestMsg, error) {
	name := strings.TrimSpace(m.name.Value())
	if name == "" {
		return createRequestMsg{}, errNameRequired
	}
	platforms := m.chosenPlatforms()
	encoded, err := query.AudienceQuery(m.where.Value(), platforms)
	if err != nil {
		return createRequestMsg{}, err
	}
	return createRequestMsg{Name: name, Query: encoded, Platforms: platforms}, nil
}

func (m *createModal) Failed(err error) Modal {
	m.err = err
	return m
}

func (m *createModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	label := func(text string, f createField) string {
		if m.focus == f {
			return styles.AccentText.Bold(true).Render("› " + text)
		}
		return styles.MutedText.Render("  " + text)
	}

	var b strings.Builder
	b.WriteString(label("Name", fieldName))
	b.WriteString("\n  ")
	b.WriteString(m.name.View())
	b.WriteString("\n\n")

	b.WriteString(label("Platforms", fieldPlatforms))
	b.WriteString("\n  ")
	if len(m.platforms) == 0 {
		b.WriteString(styles.WarningText.Render("No registered devices"))
	}
	chips := make([]string, 0, len(m.platforms))
	for i, p := range m.platforms {
		mark := "[ ]"
		if m.selected[p] {
			mark = "[x]"
		}
		chip := mark + " " + p
		style := styles.Text
		if m.selected[p] {
			style = styles.PlatformChip(p).Padding(0)
		}
		if m.focus == fieldPlatforms && i == m.cursor {
			style = style.Underline(true).Bold(true)
		}
		chips = append(chips, style.Render(chip))
	}
	b.WriteString(strings.Join(chips, "  "))
	b.WriteString("\n\n")

	b.WriteString(label("Constraints", fieldWhere))
	b.WriteString("\n  ")
	b.WriteString(m.where.View())
	b.WriteString("\n  ")
	b.WriteString(styles.FaintText.Render("field op value; ...  ops: = != < <= > >= in exists !exists"))

	return renderModal(theme, modalFrame{
		title:  "Create an audience",
		body:   b.String(),
		footer: "tab: Next field  space: Toggle platform  enter: Create  esc: Cancel",
		err:    m.err,
		width:  72,
	}, width, height)
}

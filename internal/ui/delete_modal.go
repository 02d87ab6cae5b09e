package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// deleteModal asks for confirmation before deleting one audience.
type deleteModal struct {
	objectID string
	name     string
	err      error
}

func newDeleteModal(objectID, name string) *deleteModal {
	return &deleteModal{objectID: objectID, name: name}
}

func (m *deleteModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.ConfirmYes):
		req := destroyRequestMsg{ObjectID: m.objectID, Name: m.name}
		return m, func() tea.Msg { return req }, false
	case key.Matches(keyMsg, keys.ConfirmNo), key.Matches(keyMsg, keys.Cancel):
		return m, nil, true
	}
	return m, nil, false
}

func (m *deleteModal) Failed(err error) Modal {
	m.err = err
	return m
}

func (m *deleteModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := styles.Text.Render("Are you sure you want to delete ") +
		styles.Text.Bold(true).Render(m.name) +
		styles.Text.Render("?") + "\n" +
		styles.FaintText.Render("id "+m.objectID)

	return renderModal(theme, modalFrame{
		title:  "Delete Audience",
		body:   body,
		footer: "y: Delete  n/esc: Cancel",
		err:    m.err,
		danger: true,
		width:  56,
	}, width, height)
}

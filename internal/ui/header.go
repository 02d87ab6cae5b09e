package ui

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pushboard/internal/parse"
)

// renderHeader renders the one-line status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(m.buildStatusContent(styles, bg, time.Now()))
}

// buildStatusContent lists the status parts left to right: logo, server,
// connection, count, activity, last update, error and status message.
func (m Model) buildStatusContent(styles Styles, bg BgStyle, now time.Time) string {
	compact := m.width < 100
	limit := func(wide, narrow int) int {
		if compact {
			return narrow
		}
		return wide
	}

	parts := []string{bg.Render("pushboard", styles.Logo)}
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	if m.serverLabel != "" {
		add(bg.Render(truncateMiddle(m.serverLabel, limit(60, 30)), styles.MutedText))
	}

	snap := m.snapshot
	switch {
	case snap.IsOffline():
		add(bg.Render("● "+classifyConnectionError(snap.LastError), styles.DangerText))
	case snap.Loaded():
		add(bg.Render("● ONLINE", styles.SuccessText))
	default:
		add(bg.Render("Connecting...", styles.WarningText.Bold(true)))
	}

	if coll := snap.Collection; coll != nil {
		count := strconv.Itoa(coll.Len())
		if coll.ShowMore {
			count += "+"
		}
		add(bg.Render("Audiences:", styles.MutedText) + bg.Space() + bg.Render(count, styles.Text))
	}

	if m.loading || m.busy {
		label := "Loading"
		if m.busy {
			label = "Saving"
		}
		add(bg.Render(m.spinner.View(), styles.AccentText) + bg.Space() + bg.Render(label, styles.InfoText))
	}

	add(bg.Render(m.formatTimestamp(now), styles.MutedText))

	if m.fetchErr != nil {
		add(bg.Render("ERROR", styles.DangerText.Bold(true)) + bg.Space() +
			bg.Render(truncate(m.fetchErr.Error(), limit(80, 40)), styles.DangerText))
	}

	add(bg.Render(truncate(m.status, 60), styles.WarningText))

	return bg.Join(parts, "  ")
}

// formatTimestamp renders the last commit time with its age, or "" before
// the first commit.
func (m Model) formatTimestamp(now time.Time) string {
	if m.lastUpdated.IsZero() {
		return ""
	}
	stamp := m.lastUpdated.Format("15:04:05")
	switch age := now.Sub(m.lastUpdated); {
	case age < time.Minute:
		return stamp + " (now)"
	case age < 24*time.Hour:
		return stamp + " (" + formatRelative(m.lastUpdated, now) + ")"
	}
	return stamp
}

// classifyConnectionError names the kind of failure behind an offline
// store in a few words.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *parse.APIError
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, parse.ErrNoMasterKey):
		return "NO MASTER KEY"
	case errors.As(err, &apiErr):
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "UNAUTHORIZED"
		}
		return fmt.Sprintf("HTTP %d", apiErr.Status)
	case errors.Is(err, context.DeadlineExceeded):
		return "TIMEOUT"
	case errors.As(err, &dnsErr):
		return "HOST NOT FOUND"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "OFFLINE"
	}

	// Errors that lost their chain, e.g. after crossing a log line.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	case strings.Contains(msg, "unauthorized"):
		return "UNAUTHORIZED"
	}
	return "ERROR"
}

// renderCommandBar renders the key hints; bindings that need a filter are
// hidden while the list is empty.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	hasRows := m.snapshot.Collection.Len() > 0
	hints := []struct {
		key, desc string
		needsRows bool
	}{
		{"n", "New", false},
		{"d", "Delete", true},
		{"r", "Refresh", false},
		{"j/k", "Navigate", true},
		{"?", "More", false},
		{"q", "Quit", false},
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(hints)+1)
	for _, h := range hints {
		if h.needsRows && !hasRows {
			continue
		}
		segments = append(segments,
			bg.Render(h.key, styles.AccentText)+colon+bg.Render(h.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// Package ui provides the terminal dashboard for push audience filters.
//
// The interface is a Bubble Tea program. Model owns the view state and
// reads filter collections from a state.Store; every change to the
// collection goes through Store.Dispatch with an audience action:
//
//   - Fetch on startup and on refresh, keyed by FetchKey so quitting can
//     abort it
//   - Create from the create dialog, after the constraints and platforms
//     have been encoded into an installation query
//   - Destroy from the delete confirmation dialog
//
// Dispatches run inside tea.Cmd functions and report back as messages, so
// Update never blocks on the network. Only one create or delete runs at a
// time; input is ignored while one is in flight.
//
// # Files
//
//   - app.go: Model, messages, commands and Run
//   - filters.go: the audience table and empty states
//   - header.go: status bar and command hints
//   - modal.go, create_modal.go, delete_modal.go: dialogs
//   - help.go: keyboard shortcut overlay
//   - theme.go, style_helpers.go: colors and background-safe rendering
//   - keys.go: key bindings
//
// Themes are Nightfox (default), Kanagawa and Slate; T cycles them and the
// choice is saved to the preferences file.
package ui

// Package app is the composition root of pushboard.
//
// NewSession turns a config.Config into a Parse client and a state.Store
// that reduces audience actions against it; the CLI commands share it. Run
// adds the pieces only the dashboard needs:
//
//  1. Load config (~/.config/pushboard/config.toml) and prefs
//  2. Open the JSON log file, since stdout belongs to the terminal UI
//  3. Build the Session
//  4. Start the TUI and block until the user quits or ctx is cancelled
//
// Errors before the TUI starts are returned; errors inside it are shown on
// screen and written to the log file.
package app

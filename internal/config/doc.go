// Package config loads pushboard's TOML configuration.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/pushboard/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. PUSHBOARD_MASTER_KEY and PUSHBOARD_SERVER_URL override the result
//
// # TOML Format
//
//	server_url      = "http://127.0.0.1:1337/parse"
//	app_id          = "pushboard"
//	master_key      = ""
//	request_timeout = "10s"
//	log_file        = "~/.local/state/pushboard/pushboard.log"
//	log_level       = "info"
//
//	[filters]
//	initial_page_size = 10
//	show_more_limit   = 1000
//
// Every field is optional. The master key is required by every API call, so
// an empty one is accepted here and reported by the client when used.
//
// # Validation
//
// Invalid TOML, an unparsable request_timeout or log_level, and page sizes
// below one are errors. All of them mention "parse config".
//
// # Path Expansion
//
// log_file and the config path itself accept ~ for the home directory and are
// made absolute.
package config

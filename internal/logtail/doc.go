// Package logtail reads the end of the dashboard's JSON log file and renders
// it for `pushboard logs`.
//
// Read keeps a ring buffer of maxLines, so memory stays O(maxLines) however
// large the file is, and returns the lines oldest first. A missing file is
// not an error. Filter then decodes the slog JSON records, drops those below
// a level and formats the rest as
//
//	14:32:15 WARN  create audience failed error="..." name=VIPs
package logtail

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/five82/pushboard/internal/audience"
	"github.com/five82/pushboard/internal/parse"
	"github.com/five82/pushboard/internal/query"
)

// outputFormats are the values accepted by -o.
var outputFormats = []string{"table", "json", "yaml"}

func validateFormat(format string) error {
	if !slices.Contains(outputFormats, format) {
		return fmt.Errorf("invalid output %q: must be one of %s", format, strings.Join(outputFormats, ", "))
	}
	return nil
}

// filterListing is the json and yaml shape of `pushboard list`.
type filterListing struct {
	Filters  []parse.Filter `json:"filters" yaml:"filters"`
	ShowMore bool           `json:"showMore" yaml:"showMore"`
}

// writeFilters prints a collection in the given format.
func writeFilters(w io.Writer, format string, coll *audience.State) error {
	listing := filterListing{Filters: []parse.Filter{}}
	if coll != nil {
		listing.Filters = append(listing.Filters, coll.Filters...)
		listing.ShowMore = coll.ShowMore
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(listing); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return writeFilterTable(w, listing)
	}
}

func writeFilterTable(w io.Writer, listing filterListing) error {
	if len(listing.Filters) == 0 {
		_, err := fmt.Fprintln(w, "No push filters to display yet.")
		return err
	}

	rows := make([][]string, 0, len(listing.Filters))
	for _, f := range listing.Filters {
		rows = append(rows, []string{
			f.ObjectID,
			f.Name,
			strings.Join(f.Query.Platforms(), ","),
			query.ConstraintSummary(f.Query),
			formatTime(f.CreatedAt),
			formatTime(f.UpdatedAt),
			strconv.Itoa(f.TimesUsed),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "PLATFORMS", "FILTER", "CREATED", "UPDATED", "SENDS").
		Rows(rows...)

	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}
	if listing.ShowMore {
		_, err := fmt.Fprintln(w, "More filters exist on the server; raise --limit to see them.")
		return err
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

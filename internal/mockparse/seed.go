package mockparse

import (
	"fmt"
	"time"

	"github.com/five82/pushboard/internal/parse"
	"github.com/five82/pushboard/internal/query"
)

var sampleAudiences = []struct {
	name  string
	query query.Predicate
}{
	{"Everyone on iOS", query.Predicate{"deviceType": "ios"}},
	{"Android beta", query.Predicate{
		"deviceType": map[string]any{"$in": []any{"android"}},
		"beta":       true,
	}},
	{"Recent versions", query.Predicate{
		"deviceType": map[string]any{"$in": []any{"ios", "android"}},
		"appVersion": map[string]any{"$gte": 2},
	}},
	{"English speakers", query.Predicate{
		"deviceType":       map[string]any{"$in": []any{"ios", "android"}},
		"localeIdentifier": map[string]any{"$in": []any{"en-US", "en-GB"}},
	}},
	{"Badge holders", query.Predicate{
		"deviceType": map[string]any{"$in": []any{"ios"}},
		"badge":      map[string]any{"$exists": true},
	}},
}

// SampleFilters returns n plausible filters, oldest first, spaced an hour
// apart ending at now.
func SampleFilters(n int, now time.Time) []parse.Filter {
	out := make([]parse.Filter, 0, max(n, 0))
	for i := 0; i < n; i++ {
		sample := sampleAudiences[i%len(sampleAudiences)]
		name := sample.name
		if i >= len(sampleAudiences) {
			name = fmt.Sprintf("%s #%d", sample.name, i/len(sampleAudiences)+1)
		}
		at := now.Add(-time.Duration(n-1-i) * time.Hour)
		out = append(out, parse.Filter{
			Name:      name,
			Query:     sample.query.Clone(),
			CreatedAt: at,
			UpdatedAt: at,
			TimesUsed: (i * 7) % 13,
		})
	}
	return out
}

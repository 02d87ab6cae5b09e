package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DeviceTypeField is the installation field that holds the platform name.
const DeviceTypeField = "deviceType"

// Predicate is a Parse "where" object: field names mapped to either a plain
// value (equality) or an operator object such as {"$gt": 3}.
type Predicate map[string]any

// Parse decodes a JSON-encoded predicate. The top-level value must be an object.
func Parse(raw string) (Predicate, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("query is empty")
	}
	var p Predicate
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return nil, fmt.Errorf("decode query: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("query must be a JSON object")
	}
	return p, nil
}

// UnmarshalJSON accepts either an object or a string holding an encoded
// object, since Parse stores audience queries as strings.
func (p *Predicate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return err
		}
		if strings.TrimSpace(encoded) == "" {
			*p = Predicate{}
			return nil
		}
		data = []byte(encoded)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("query is not an object: %w", err)
	}
	*p = Predicate(m)
	return nil
}

// Encode returns the compact JSON form used in create requests.
func (p Predicate) Encode() (string, error) {
	if p == nil {
		p = Predicate{}
	}
	data, err := json.Marshal(map[string]any(p))
	if err != nil {
		return "", fmt.Errorf("encode query: %w", err)
	}
	return string(data), nil
}

// Clone returns a shallow copy with operator objects copied one level deep.
func (p Predicate) Clone() Predicate {
	if p == nil {
		return nil
	}
	out := make(Predicate, len(p))
	for field, value := range p {
		if ops, ok := value.(map[string]any); ok {
			dup := make(map[string]any, len(ops))
			for op, v := range ops {
				dup[op] = v
			}
			out[field] = dup
			continue
		}
		out[field] = value
	}
	return out
}

// WithPlatforms intersects p with a device-type membership constraint. Any
// existing deviceType constraint is replaced.
func WithPlatforms(p Predicate, platforms []string) Predicate {
	out := p.Clone()
	if out == nil {
		out = Predicate{}
	}
	list := make([]any, 0, len(platforms))
	for _, platform := range platforms {
		if platform = strings.TrimSpace(platform); platform != "" {
			list = append(list, platform)
		}
	}
	out[DeviceTypeField] = map[string]any{"$in": list}
	return out
}

// Platforms returns the device types named by a deviceType constraint.
func (p Predicate) Platforms() []string {
	switch v := p[DeviceTypeField].(type) {
	case string:
		return []string{v}
	case map[string]any:
		items, _ := v["$in"].([]any)
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

var opSymbols = map[string]string{
	"$ne":     "!=",
	"$lt":     "<",
	"$lte":    "<=",
	"$gt":     ">",
	"$gte":    ">=",
	"$in":     "in",
	"$nin":    "not in",
	"$exists": "exists",
	"$regex":  "matches",
}

// Summary renders p as a short human-readable line, fields sorted by name.
func Summary(p Predicate) string {
	if len(p) == 0 {
		return "everyone"
	}
	fields := make([]string, 0, len(p))
	for field := range p {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		ops, ok := p[field].(map[string]any)
		if !ok {
			parts = append(parts, fmt.Sprintf("%s = %s", field, formatValue(p[field])))
			continue
		}
		names := make([]string, 0, len(ops))
		for op := range ops {
			names = append(names, op)
		}
		sort.Strings(names)
		for _, op := range names {
			value := ops[op]
			if op == "$exists" {
				if b, _ := value.(bool); b {
					parts = append(parts, field+" exists")
				} else {
					parts = append(parts, field+" !exists")
				}
				continue
			}
			symbol, ok := opSymbols[op]
			if !ok {
				symbol = op
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", field, symbol, formatValue(value)))
		}
	}
	return strings.Join(parts, ", ")
}

// ConstraintSummary is Summary without the deviceType constraint, for
// displays that list platforms separately.
func ConstraintSummary(p Predicate) string {
	rest := p.Clone()
	delete(rest, DeviceTypeField)
	return Summary(rest)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			items = append(items, formatValue(item))
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

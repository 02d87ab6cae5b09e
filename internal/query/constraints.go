package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax reports a constraint clause that could not be read.
var ErrSyntax = errors.New("constraint syntax")

// Constraint is a single "field op value" clause.
type Constraint struct {
	Field string
	Op    string
	Value any
}

// Operators ordered so longer symbols match before their prefixes.
var operators = []struct {
	symbol string
	parse  string
}{
	{"!exists", "!exists"},
	{"exists", "$exists"},
	{"!=", "$ne"},
	{"<=", "$lte"},
	{">=", "$gte"},
	{"<", "$lt"},
	{">", "$gt"},
	{"=", ""},
	{" in ", "$in"},
}

// ParseConstraints reads clauses separated by ';'. Empty input yields an
// empty predicate.
//
//	appVersion >= 2; locale = en; badge exists; channels in news,sports
func ParseConstraints(input string) (Predicate, error) {
	p := Predicate{}
	for _, clause := range strings.Split(input, ";") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		c, err := parseClause(clause)
		if err != nil {
			return nil, err
		}
		p.Add(c)
	}
	return p, nil
}

func parseClause(clause string) (Constraint, error) {
	for _, op := range operators {
		if op.symbol == "exists" || op.symbol == "!exists" {
			if !strings.HasSuffix(clause, " "+op.symbol) {
				continue
			}
			field := strings.TrimSpace(strings.TrimSuffix(clause, op.symbol))
			if field == "" {
				return Constraint{}, fmt.Errorf("%w: %q: missing field", ErrSyntax, clause)
			}
			if strings.ContainsAny(field, " =<>!") {
				// "name = exists" is an equality on the literal "exists".
				continue
			}
			return Constraint{Field: field, Op: "$exists", Value: op.symbol == "exists"}, nil
		}

		idx := strings.Index(clause, op.symbol)
		if idx < 0 {
			continue
		}
		field := strings.TrimSpace(clause[:idx])
		raw := strings.TrimSpace(clause[idx+len(op.symbol):])
		if field == "" || strings.ContainsAny(field, " ") {
			return Constraint{}, fmt.Errorf("%w: %q: bad field", ErrSyntax, clause)
		}
		if raw == "" {
			return Constraint{}, fmt.Errorf("%w: %q: missing value", ErrSyntax, clause)
		}
		if op.parse == "$in" {
			parts := strings.Split(raw, ",")
			values := make([]any, 0, len(parts))
			for _, part := range parts {
				if part = strings.TrimSpace(part); part != "" {
					values = append(values, literal(part))
				}
			}
			return Constraint{Field: field, Op: op.parse, Value: values}, nil
		}
		return Constraint{Field: field, Op: op.parse, Value: literal(raw)}, nil
	}
	return Constraint{}, fmt.Errorf("%w: %q: no operator", ErrSyntax, clause)
}

// literal decodes JSON scalars (numbers, booleans, quoted strings, null) and
// falls back to the raw text.
func literal(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		switch v.(type) {
		case map[string]any, []any:
			return raw
		}
		return v
	}
	return raw
}

// Add merges c into p. Equality replaces whatever was on the field; an
// operator merges into the field's operator object.
func (p Predicate) Add(c Constraint) {
	if c.Op == "" {
		p[c.Field] = c.Value
		return
	}
	ops, ok := p[c.Field].(map[string]any)
	if !ok {
		ops = map[string]any{}
	}
	ops[c.Op] = c.Value
	p[c.Field] = ops
}

// ErrNoPlatforms is returned by AudienceQuery when no platform is chosen.
var ErrNoPlatforms = errors.New("select at least one platform")

// AudienceQuery builds the JSON-encoded query of a push audience: the
// constraints in where, restricted to the given device types.
func AudienceQuery(where string, platforms []string) (string, error) {
	p, err := ParseConstraints(where)
	if err != nil {
		return "", err
	}
	p = WithPlatforms(p, platforms)
	if len(p.Platforms()) == 0 {
		return "", ErrNoPlatforms
	}
	return p.Encode()
}

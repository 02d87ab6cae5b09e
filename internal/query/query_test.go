package query

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConstraints_BuildsWhereObject(t *testing.T) {
	p, err := ParseConstraints("appVersion >= 2; locale = en; badge exists; channels in news, sports; beta != true")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"$gte": float64(2)}, p["appVersion"])
	assert.Equal(t, "en", p["locale"])
	assert.Equal(t, map[string]any{"$exists": true}, p["badge"])
	assert.Equal(t, map[string]any{"$in": []any{"news", "sports"}}, p["channels"])
	assert.Equal(t, map[string]any{"$ne": true}, p["beta"])
}

func TestParseConstraints_Empty(t *testing.T) {
	p, err := ParseConstraints("  ;  ")
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestParseConstraints_MergesOperatorsOnSameField(t *testing.T) {
	p, err := ParseConstraints("score > 1; score < 5")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"$gt": float64(1), "$lt": float64(5)}, p["score"])
}

func TestParseConstraints_EqualityReplacesOperators(t *testing.T) {
	p, err := ParseConstraints("score > 1; score = 3")
	require.NoError(t, err)
	assert.Equal(t, float64(3), p["score"])

	p, err = ParseConstraints("score = 3; score > 1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"$gt": float64(1)}, p["score"])
}

func TestParseConstraints_NotExistsAndLiteralExists(t *testing.T) {
	p, err := ParseConstraints("badge !exists; name = exists")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"$exists": false}, p["badge"])
	assert.Equal(t, "exists", p["name"])
}

func TestParseConstraints_SyntaxErrors(t *testing.T) {
	for _, input := range []string{"locale", "= en", "locale =", "two words = x"} {
		_, err := ParseConstraints(input)
		require.Error(t, err, input)
		assert.True(t, errors.Is(err, ErrSyntax), "%q: %v", input, err)
	}
}

func TestWithPlatforms_IntersectsWithoutMutatingInput(t *testing.T) {
	base := Predicate{"locale": "en", "score": map[string]any{"$gt": 1}}
	got := WithPlatforms(base, []string{"ios", " ", "android"})

	assert.Equal(t, map[string]any{"$in": []any{"ios", "android"}}, got[DeviceTypeField])
	assert.Equal(t, "en", got["locale"])
	_, touched := base[DeviceTypeField]
	assert.False(t, touched, "input predicate must not change")
	assert.Equal(t, []string{"ios", "android"}, got.Platforms())
}

func TestWithPlatforms_NilPredicate(t *testing.T) {
	got := WithPlatforms(nil, []string{"ios"})
	encoded, err := got.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"deviceType":{"$in":["ios"]}}`, encoded)
}

func TestParse(t *testing.T) {
	p, err := Parse(`{"deviceType":{"$in":["ios"]}}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"ios"}, p.Platforms())

	for _, bad := range []string{"", "null", "[1]", "{nope"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestPredicate_UnmarshalAcceptsEncodedString(t *testing.T) {
	var wrapper struct {
		Query Predicate `json:"query"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"query":"{\"locale\":\"en\"}"}`), &wrapper))
	assert.Equal(t, "en", wrapper.Query["locale"])

	require.NoError(t, json.Unmarshal([]byte(`{"query":{"locale":"fr"}}`), &wrapper))
	assert.Equal(t, "fr", wrapper.Query["locale"])

	assert.Error(t, json.Unmarshal([]byte(`{"query":"[1,2]"}`), &wrapper))
}

func TestSummary(t *testing.T) {
	p := Predicate{
		"locale":     "en",
		"deviceType": map[string]any{"$in": []any{"ios", "android"}},
		"badge":      map[string]any{"$exists": false},
		"score":      map[string]any{"$gte": float64(2), "$lt": float64(10)},
	}
	assert.Equal(t,
		"badge !exists, deviceType in [ios, android], locale = en, score >= 2, score < 10",
		Summary(p))
	assert.Equal(t, "everyone", Summary(nil))
}

func TestConstraintSummary_OmitsDeviceType(t *testing.T) {
	p := Predicate{
		"deviceType": map[string]any{"$in": []any{"ios"}},
		"beta":       true,
	}
	assert.Equal(t, "beta = true", ConstraintSummary(p))
	assert.Contains(t, p, DeviceTypeField, "input must not be modified")
	assert.Equal(t, "everyone", ConstraintSummary(Predicate{"deviceType": "ios"}))
}

func TestAudienceQuery(t *testing.T) {
	encoded, err := AudienceQuery("locale = en", []string{"ios", "android"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"locale":"en","deviceType":{"$in":["ios","android"]}}`, encoded)

	_, err = AudienceQuery("", []string{" "})
	assert.ErrorIs(t, err, ErrNoPlatforms)

	_, err = AudienceQuery("locale", []string{"ios"})
	assert.ErrorIs(t, err, ErrSyntax)
}

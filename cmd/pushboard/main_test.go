package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/five82/pushboard/internal/config"
	"github.com/five82/pushboard/internal/mockparse"
	"github.com/five82/pushboard/internal/parse"
	"github.com/five82/pushboard/internal/query"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// newBackend starts a mock Parse server and writes a config pointing at it.
func newBackend(t *testing.T) (*mockparse.Server, string) {
	t.Helper()
	t.Setenv(config.EnvMasterKey, "")
	t.Setenv(config.EnvServerURL, "")

	srv := mockparse.New(mockparse.Options{AppID: "app", MasterKey: "secret", Devices: []string{"ios", "android"}})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	path := filepath.Join(t.TempDir(), "config.toml")
	body := fmt.Sprintf("server_url = %q\napp_id = \"app\"\nmaster_key = \"secret\"\n", ts.URL+"/parse")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return srv, path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestList_JSON(t *testing.T) {
	srv, cfgPath := newBackend(t)
	srv.Seed(
		parse.Filter{ObjectID: "old", Name: "Older"},
		parse.Filter{ObjectID: "new", Name: "Newer", Query: query.Predicate{"deviceType": "ios"}},
	)

	out, err := execute(t, "--config", cfgPath, "list", "-o", "json")
	require.NoError(t, err)

	var listing filterListing
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	require.Len(t, listing.Filters, 2)
	assert.Equal(t, "new", listing.Filters[0].ObjectID)
	assert.False(t, listing.ShowMore)
}

func TestList_LimitSetsShowMore(t *testing.T) {
	srv, cfgPath := newBackend(t)
	srv.Seed(mockparse.SampleFilters(3, testNow)...)

	out, err := execute(t, "--config", cfgPath, "list", "--limit", "2", "-o", "yaml")
	require.NoError(t, err)

	var listing struct {
		Filters  []map[string]any `yaml:"filters"`
		ShowMore bool             `yaml:"showMore"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &listing))
	assert.Len(t, listing.Filters, 2)
	assert.True(t, listing.ShowMore)
}

func TestList_Table(t *testing.T) {
	srv, cfgPath := newBackend(t)
	srv.Seed(parse.Filter{ObjectID: "abc", Name: "Beta", Query: query.Predicate{
		"deviceType": map[string]any{"$in": []any{"ios"}},
		"beta":       true,
	}})

	out, err := execute(t, "--config", cfgPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Beta")
	assert.Contains(t, out, "beta = true")
}

func TestList_EmptyAndInvalidFormat(t *testing.T) {
	_, cfgPath := newBackend(t)

	out, err := execute(t, "--config", cfgPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No push filters to display yet.")

	_, err = execute(t, "--config", cfgPath, "list", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output")
}

func TestCreate(t *testing.T) {
	srv, cfgPath := newBackend(t)

	out, err := execute(t, "--config", cfgPath, "create",
		"--name", "English", "--platform", "ios", "--where", "locale = en")
	require.NoError(t, err)
	assert.Contains(t, out, `Created "English"`)

	stored := srv.Filters()
	require.Len(t, stored, 1)
	assert.Equal(t, "en", stored[0].Query["locale"])
	assert.Equal(t, []string{"ios"}, stored[0].Query.Platforms())
}

func TestCreate_DefaultsToServerDevices(t *testing.T) {
	srv, cfgPath := newBackend(t)

	_, err := execute(t, "--config", cfgPath, "create", "--name", "All")
	require.NoError(t, err)
	assert.Equal(t, []string{"ios", "android"}, srv.Filters()[0].Query.Platforms())
}

func TestCreate_ValidatesBeforeConnecting(t *testing.T) {
	srv, cfgPath := newBackend(t)

	_, err := execute(t, "--config", cfgPath, "create", "--where", "locale = en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--name is required")

	_, err = execute(t, "--config", cfgPath, "create", "--name", "x", "--where", "locale")
	require.ErrorIs(t, err, query.ErrSyntax)
	assert.Zero(t, srv.Hits("POST /push_audiences"))
}

func TestDelete(t *testing.T) {
	srv, cfgPath := newBackend(t)
	srv.Seed(parse.Filter{ObjectID: "gone", Name: "Doomed"})

	out, err := execute(t, "--config", cfgPath, "delete", "gone")
	require.NoError(t, err)
	assert.Contains(t, out, `Deleted "Doomed" (gone)`)
	assert.Empty(t, srv.Filters())
}

func TestDelete_UnknownIDFails(t *testing.T) {
	_, cfgPath := newBackend(t)

	_, err := execute(t, "--config", cfgPath, "delete", "missing")
	require.Error(t, err)

	var apiErr *parse.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, parse.CodeObjectNotFound, apiErr.Code)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pushboard ")
}

func TestLogs_FiltersByLevel(t *testing.T) {
	t.Setenv(config.EnvMasterKey, "")
	dir := t.TempDir()
	logPath := filepath.Join(dir, "pushboard.log")
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("log_file = %q\n", logPath)), 0o644))
	require.NoError(t, os.WriteFile(logPath, []byte(
		`{"level":"DEBUG","msg":"store action"}`+"\n"+
			`{"level":"WARN","msg":"fetch filters failed","error":"boom"}`+"\n"), 0o644))

	out, err := execute(t, "--config", cfgPath, "logs", "--level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "fetch filters failed error=boom")
	assert.NotContains(t, out, "store action")
}

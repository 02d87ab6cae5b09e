package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/pushboard/internal/audience"
	"github.com/five82/pushboard/internal/parse"
	"github.com/five82/pushboard/internal/prefs"
	"github.com/five82/pushboard/internal/query"
	"github.com/five82/pushboard/internal/state"
)

type fakeAPI struct {
	mu        sync.Mutex
	filters   []parse.Filter
	queryErr  error
	createErr error
	deleteErr error
	nextID    int
	created   []parse.CreateAudienceRequest
	deleted   []string
}

func (f *fakeAPI) QueryFilters(context.Context, int) (parse.FilterPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return parse.FilterPage{}, f.queryErr
	}
	return parse.FilterPage{Results: append([]parse.Filter(nil), f.filters...)}, nil
}

func (f *fakeAPI) CreateAudience(_ context.Context, req parse.CreateAudienceRequest) (parse.CreateAudienceResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return parse.CreateAudienceResponse{}, f.createErr
	}
	f.created = append(f.created, req)
	f.nextID++
	resp := parse.CreateAudienceResponse{}
	resp.NewAudience = &struct {
		ObjectID string `json:"objectId"`
	}{ObjectID: fmt.Sprintf("new%d", f.nextID)}
	return resp, nil
}

func (f *fakeAPI) DeleteAudience(_ context.Context, objectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, objectID)
	return nil
}

type fakeDevices struct {
	devices []string
	err     error
}

func (f fakeDevices) FetchAvailableDevices(context.Context) ([]string, error) {
	return f.devices, f.err
}

func sampleFilters() []parse.Filter {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return []parse.Filter{
		{ObjectID: "a1", Name: "Beta testers", Query: query.Predicate{"beta": true}, CreatedAt: created, UpdatedAt: created, TimesUsed: 3},
		{ObjectID: "b2", Name: "Everyone", Query: query.Predicate{}, CreatedAt: created, UpdatedAt: created},
	}
}

func newTestModel(t *testing.T, api *fakeAPI) (Model, *state.Store) {
	t.Helper()
	store := state.New(audience.Env{Client: api})
	m := New(Options{
		Store:     store,
		Devices:   fakeDevices{devices: []string{"ios", "android"}},
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	return resize(m, 140, 30), store
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func resize(m Model, w, h int) Model {
	m, _ = update(m, tea.WindowSizeMsg{Width: w, Height: h})
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, api *fakeAPI) (Model, *state.Store) {
	t.Helper()
	m, store := newTestModel(t, api)
	m, _ = update(m, fetchCmd(context.Background(), store, m.fetch)())
	return m, store
}

func TestModel_FetchShowsFilters(t *testing.T) {
	m, _ := loaded(t, &fakeAPI{filters: sampleFilters()})

	if m.loading {
		t.Fatal("loading still set after fetch")
	}
	if got := m.snapshot.Collection.Len(); got != 2 {
		t.Fatalf("collection len = %d, want 2", got)
	}
	view := m.View()
	for _, want := range []string{"Push Audiences (2)", "Beta testers", "Everyone"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestModel_FetchErrorShownInHeader(t *testing.T) {
	m, _ := loaded(t, &fakeAPI{queryErr: errors.New("connection refused")})

	if m.fetchErr == nil {
		t.Fatal("fetchErr not set")
	}
	if !strings.Contains(m.renderHeader(), "ERROR") {
		t.Fatal("header does not show the fetch error")
	}
}

func TestModel_AbortedFetchIgnored(t *testing.T) {
	m, _ := newTestModel(t, &fakeAPI{})
	m, _ = update(m, fetchedMsg{err: fmt.Errorf("fetch filters: %w", audience.ErrAborted)})

	if m.fetchErr != nil {
		t.Fatalf("fetchErr = %v, want nil for an aborted fetch", m.fetchErr)
	}
}

func TestModel_EmptyStates(t *testing.T) {
	m, _ := loaded(t, &fakeAPI{})
	if !strings.Contains(m.View(), "No push filters to display yet.") {
		t.Fatal("empty list message missing")
	}

	m, _ = update(m, devicesMsg{devices: []string{}})
	if !strings.Contains(m.View(), "No registered devices") {
		t.Fatal("no devices message missing")
	}
}

func TestModel_DeviceErrorFallsBackToDefaults(t *testing.T) {
	m, _ := newTestModel(t, &fakeAPI{})
	m, _ = update(m, devicesMsg{err: errors.New("boom")})

	got := m.deviceList()
	if len(got) != len(DefaultDevices) || got[0] != "ios" || got[1] != "android" {
		t.Fatalf("deviceList = %v, want %v", got, DefaultDevices)
	}
}

func TestModel_Navigation(t *testing.T) {
	m, _ := loaded(t, &fakeAPI{filters: sampleFilters()})

	m, _ = update(m, runes("j"))
	if m.selectedRow != 1 {
		t.Fatalf("selectedRow = %d after j, want 1", m.selectedRow)
	}
	m, _ = update(m, runes("j"))
	if m.selectedRow != 1 {
		t.Fatalf("selectedRow = %d past the end, want 1", m.selectedRow)
	}
	m, _ = update(m, runes("g"))
	if m.selectedRow != 0 {
		t.Fatalf("selectedRow = %d after g, want 0", m.selectedRow)
	}
}

func TestModel_CreateFlow(t *testing.T) {
	api := &fakeAPI{filters: sampleFilters()}
	m, store := loaded(t, api)

	m, _ = update(m, runes("n"))
	if _, ok := m.modal.(*createModal); !ok {
		t.Fatalf("modal = %T, want *createModal", m.modal)
	}

	m, _ = update(m, runes("VIPs"))
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	req, ok := cmd().(createRequestMsg)
	if !ok {
		t.Fatalf("command message = %T, want createRequestMsg", cmd())
	}
	if req.Name != "VIPs" {
		t.Fatalf("request name = %q, want VIPs", req.Name)
	}
	if !strings.Contains(req.Query, `"deviceType"`) {
		t.Fatalf("request query %q has no deviceType constraint", req.Query)
	}

	m, _ = update(m, req)
	if !m.busy {
		t.Fatal("busy not set while create is in flight")
	}
	m, _ = update(m, createCmd(context.Background(), store, req)())

	if m.busy || m.modal != nil {
		t.Fatalf("busy=%v modal=%T after create, want idle and closed", m.busy, m.modal)
	}
	coll := m.snapshot.Collection
	if coll.Len() != 3 || coll.Filters[0].Name != "VIPs" || coll.Filters[0].ObjectID != "new1" {
		t.Fatalf("collection head = %#v, want new VIPs record first", coll.Filters[0])
	}

	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if len(saved.Platforms) != 2 {
		t.Fatalf("saved platforms = %v, want ios and android", saved.Platforms)
	}
}

func TestModel_CreateRequiresName(t *testing.T) {
	m, _ := loaded(t, &fakeAPI{})
	m, _ = update(m, runes("n"))
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Fatal("enter with an empty name produced a command")
	}
	cm := m.modal.(*createModal)
	if !errors.Is(cm.err, errNameRequired) {
		t.Fatalf("modal err = %v, want errNameRequired", cm.err)
	}
}

func TestModel_CreateFailureKeepsModal(t *testing.T) {
	api := &fakeAPI{createErr: errors.New("server said no")}
	m, store := loaded(t, api)
	m, _ = update(m, runes("n"))

	req := createRequestMsg{Name: "x", Query: `{"deviceType":"ios"}`, Platforms: []string{"ios"}}
	m, _ = update(m, req)
	m, _ = update(m, createCmd(context.Background(), store, req)())

	cm, ok := m.modal.(*createModal)
	if !ok {
		t.Fatalf("modal = %T, want the create dialog to stay open", m.modal)
	}
	if cm.err == nil || !strings.Contains(cm.err.Error(), "server said no") {
		t.Fatalf("modal err = %v, want the server error", cm.err)
	}
	if m.busy {
		t.Fatal("busy still set after failure")
	}
}

func TestModel_DeleteFlow(t *testing.T) {
	api := &fakeAPI{filters: sampleFilters()}
	m, store := loaded(t, api)

	m, _ = update(m, runes("d"))
	if _, ok := m.modal.(*deleteModal); !ok {
		t.Fatalf("modal = %T, want *deleteModal", m.modal)
	}
	m, cmd := update(m, runes("y"))
	req, ok := cmd().(destroyRequestMsg)
	if !ok || req.ObjectID != "a1" {
		t.Fatalf("command message = %#v, want destroy of a1", req)
	}

	m, _ = update(m, req)
	m, _ = update(m, destroyCmd(context.Background(), store, req)())

	if m.modal != nil {
		t.Fatalf("modal = %T after delete, want closed", m.modal)
	}
	coll := m.snapshot.Collection
	if coll.Len() != 1 || coll.Filters[0].ObjectID != "b2" {
		t.Fatalf("collection = %#v, want only b2", coll.Filters)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "a1" {
		t.Fatalf("deleted = %v, want [a1]", api.deleted)
	}
}

func TestModel_DeleteNotListedClosesWithStatus(t *testing.T) {
	m, _ := loaded(t, &fakeAPI{filters: sampleFilters()})
	m.modal = newDeleteModal("zz", "Ghost")
	m.busy = true

	m, _ = update(m, destroyedMsg{
		snapshot: m.snapshot,
		objectID: "zz",
		name:     "Ghost",
		err:      fmt.Errorf("delete audience zz: %w", audience.ErrNotFound),
	})

	if m.modal != nil {
		t.Fatalf("modal = %T, want closed", m.modal)
	}
	if !strings.Contains(m.status, "no longer listed") {
		t.Fatalf("status = %q, want a not-listed warning", m.status)
	}
}

func TestModel_CancelClosesModal(t *testing.T) {
	m, _ := loaded(t, &fakeAPI{filters: sampleFilters()})
	m, _ = update(m, runes("d"))
	m, _ = update(m, runes("n"))
	if m.modal != nil {
		t.Fatalf("modal = %T after n, want closed", m.modal)
	}

	m, _ = update(m, runes("n"))
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.modal != nil {
		t.Fatalf("modal = %T after esc, want closed", m.modal)
	}
}

func TestModel_BusyIgnoresModalInput(t *testing.T) {
	m, _ := loaded(t, &fakeAPI{filters: sampleFilters()})
	m, _ = update(m, runes("d"))
	m.busy = true

	m, cmd := update(m, runes("y"))
	if cmd != nil {
		t.Fatal("confirm while busy produced a command")
	}
	if m.modal == nil {
		t.Fatal("modal closed while busy")
	}
}

func TestModel_CycleThemeSavesPrefs(t *testing.T) {
	m, _ := newTestModel(t, &fakeAPI{})
	m, _ = update(m, runes("T"))

	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if saved.Theme != "Kanagawa" {
		t.Fatalf("saved theme = %q, want Kanagawa", saved.Theme)
	}
}

func TestModel_QuitAbortsFetch(t *testing.T) {
	m, _ := newTestModel(t, &fakeAPI{})
	_, cmd := update(m, runes("q"))
	if cmd == nil {
		t.Fatal("quit produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("quit command message = %T, want tea.QuitMsg", cmd())
	}
}

func TestModel_HelpClosesOnAnyKey(t *testing.T) {
	m, _ := newTestModel(t, &fakeAPI{})
	m, _ = update(m, runes("?"))
	if !m.showHelp {
		t.Fatal("help not shown")
	}
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatal("help overlay missing title")
	}
	m, _ = update(m, runes("j"))
	if m.showHelp {
		t.Fatal("help still shown after a key")
	}
}

func TestModel_CreateRequestWaitsForInitialFetch(t *testing.T) {
	api := &fakeAPI{filters: sampleFilters()}
	m, store := newTestModel(t, api)
	if !m.loading {
		t.Fatal("model not loading before the first fetch")
	}

	m.modal = newCreateModal(DefaultDevices, nil)
	req := createRequestMsg{Name: "VIPs", Query: `{"deviceType":{"$in":["ios"]}}`, Platforms: []string{"ios"}}
	m, cmd := update(m, req)
	if cmd != nil || m.busy {
		t.Fatalf("create accepted while loading: busy=%v cmd=%v", m.busy, cmd != nil)
	}
	if cm := m.modal.(*createModal); !errors.Is(cm.err, errInFlight) {
		t.Fatalf("modal err = %v, want errInFlight", cm.err)
	}
	if len(api.created) != 0 {
		t.Fatalf("created = %v, want no request sent", api.created)
	}

	m, _ = update(m, fetchCmd(context.Background(), store, m.fetch)())
	m, _ = update(m, req)
	if !m.busy {
		t.Fatal("create refused after the fetch finished")
	}
	m, _ = update(m, createCmd(context.Background(), store, req)())
	if got := m.snapshot.Collection.Len(); got != 3 {
		t.Fatalf("collection len = %d, want the 2 fetched filters plus VIPs", got)
	}
}

func TestModel_DestroyRequestRefusedWhileLoading(t *testing.T) {
	api := &fakeAPI{filters: sampleFilters()}
	m, _ := loaded(t, api)
	m.loading = true
	m.modal = newDeleteModal("a1", "Beta testers")

	m, cmd := update(m, destroyRequestMsg{ObjectID: "a1", Name: "Beta testers"})
	if cmd != nil || m.busy {
		t.Fatalf("delete accepted while loading: busy=%v cmd=%v", m.busy, cmd != nil)
	}
	if m.modal == nil {
		t.Fatal("delete dialog closed by a refused request")
	}
	if len(api.deleted) != 0 {
		t.Fatalf("deleted = %v, want none", api.deleted)
	}
}

func TestModel_KeysRefusedWhileRequestInFlight(t *testing.T) {
	tests := []struct {
		name    string
		loading bool
		busy    bool
		key     string
	}{
		{"create while loading", true, false, "n"},
		{"delete while loading", true, false, "d"},
		{"refresh while loading", true, false, "r"},
		{"refresh while saving", false, true, "r"},
		{"create while saving", false, true, "n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := loaded(t, &fakeAPI{filters: sampleFilters()})
			m.loading, m.busy = tt.loading, tt.busy

			m, cmd := update(m, runes(tt.key))
			if cmd != nil {
				t.Fatalf("%q produced a command while a request is in flight", tt.key)
			}
			if m.modal != nil {
				t.Fatalf("%q opened %T while a request is in flight", tt.key, m.modal)
			}
			if m.status != errInFlight.Error() {
				t.Fatalf("status = %q, want %q", m.status, errInFlight.Error())
			}
			if m.loading != tt.loading {
				t.Fatalf("loading = %v, want unchanged %v", m.loading, tt.loading)
			}
		})
	}
}

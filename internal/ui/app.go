package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pushboard/internal/audience"
	"github.com/five82/pushboard/internal/logging"
	"github.com/five82/pushboard/internal/parse"
	"github.com/five82/pushboard/internal/prefs"
	"github.com/five82/pushboard/internal/state"
)

// FetchKey names the list fetch so it can be aborted on teardown.
const FetchKey = "PushFiltersIndex"

// Page sizes used when Options leaves them unset.
const (
	InitialPageSize = 10
	ShowMoreLimit   = 1000
)

// DefaultDevices are offered when the server cannot list its device types.
var DefaultDevices = []string{"ios", "android"}

// DeviceSource lists the device types that have registered installations.
type DeviceSource interface {
	FetchAvailableDevices(ctx context.Context) ([]string, error)
}

var _ DeviceSource = (*parse.Client)(nil)

var errInFlight = errors.New("wait for the current request to finish")

// Options configures the UI.
type Options struct {
	Context         context.Context
	Store           *state.Store
	Devices         DeviceSource
	Logger          *slog.Logger
	ThemeName       string
	PrefsPath       string
	Platforms       []string // preselected in the create dialog
	InitialPageSize int
	ShowMoreLimit   int
	ServerLabel     string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	store       *state.Store
	devices     DeviceSource
	logger      *slog.Logger
	prefsPath   string
	fetch       audience.Fetch
	serverLabel string
	keys        keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	spinner  spinner.Model
	loading  bool
	busy     bool // a create or delete is in flight
	showHelp bool
	modal    Modal
	status   string

	// Data state
	snapshot         state.Snapshot
	fetchErr         error
	lastUpdated      time.Time
	availableDevices []string
	devicesLoaded    bool
	platforms        []string

	// Table state
	selectedRow int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Default().Theme
	}

	initial := opts.InitialPageSize
	if initial <= 0 {
		initial = InitialPageSize
	}
	limit := opts.ShowMoreLimit
	if limit <= 0 {
		limit = ShowMoreLimit
	}

	theme := GetTheme(themeName)
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent))

	m := Model{
		ctx:         ctx,
		store:       opts.Store,
		devices:     opts.Devices,
		logger:      logger,
		prefsPath:   opts.PrefsPath,
		fetch:       audience.Fetch{Limit: limit, Min: initial, Key: FetchKey},
		serverLabel: opts.ServerLabel,
		keys:        defaultKeys(),
		theme:       theme,
		spinner:     spin,
		loading:     opts.Store != nil,
		platforms:   append([]string(nil), opts.Platforms...),
	}
	if opts.Store != nil {
		m.snapshot = opts.Store.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, tickCmd(time.Minute)}
	if m.store != nil {
		cmds = append(cmds, fetchCmd(m.ctx, m.store, m.fetch))
	}
	cmds = append(cmds, devicesCmd(m.ctx, m.devices))
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		// Re-render relative timestamps.
		return m, tickCmd(time.Minute)

	case fetchedMsg:
		return m.handleFetched(msg), nil

	case devicesMsg:
		m.devicesLoaded = true
		if msg.err != nil {
			m.logger.Warn("fetch available devices failed", "error", msg.err)
			m.availableDevices = append([]string(nil), DefaultDevices...)
			return m, nil
		}
		m.availableDevices = msg.devices
		return m, nil

	case createRequestMsg:
		if m.store == nil {
			return m, nil
		}
		if m.inFlight() {
			return m.refuse(), nil
		}
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, createCmd(m.ctx, m.store, msg))

	case createdMsg:
		return m.handleCreated(msg), nil

	case destroyRequestMsg:
		if m.store == nil {
			return m, nil
		}
		if m.inFlight() {
			return m.refuse(), nil
		}
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, destroyCmd(m.ctx, m.store, msg))

	case destroyedMsg:
		return m.handleDestroyed(msg), nil
	}

	// Cursor blinks and other input component messages.
	if m.modal != nil {
		var cmd tea.Cmd
		m.modal, cmd, _ = m.modal.Update(msg, m.keys)
		return m, cmd
	}
	return m, nil
}

// inFlight reports whether a store action is running. Only one runs at a time.
func (m Model) inFlight() bool {
	return m.loading || m.busy
}

// refuse reports a request that arrived while another was in flight.
func (m Model) refuse() Model {
	if m.modal != nil {
		m.modal = m.modal.Failed(errInFlight)
	} else {
		m.status = errInFlight.Error()
	}
	return m
}

func (m Model) handleFetched(msg fetchedMsg) Model {
	m.loading = false
	if msg.err != nil {
		if errors.Is(msg.err, audience.ErrAborted) {
			return m
		}
		m.logger.Warn("fetch filters failed", "error", msg.err)
		m.fetchErr = msg.err
		return m
	}
	m.fetchErr = nil
	m.snapshot = msg.snapshot
	m.lastUpdated = msg.snapshot.LastUpdated
	m.clampSelection()
	return m
}

func (m Model) handleCreated(msg createdMsg) Model {
	m.busy = false
	if msg.err != nil {
		m.logger.Warn("create audience failed", "name", msg.name, "error", msg.err)
		if m.modal != nil {
			m.modal = m.modal.Failed(msg.err)
		}
		return m
	}
	m.snapshot = msg.snapshot
	m.modal = nil
	m.selectedRow = 0
	m.status = fmt.Sprintf("Created %q", msg.name)
	m.logger.Info("audience created", "name", msg.name)

	m.platforms = msg.platforms
	if m.prefsPath != "" {
		if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, Platforms: m.platforms}); err != nil {
			m.logger.Warn("save prefs failed", "error", err)
		}
	}
	return m
}

func (m Model) handleDestroyed(msg destroyedMsg) Model {
	m.busy = false
	switch {
	case errors.Is(msg.err, audience.ErrNotFound):
		// Deleted on the server but already gone from the local list.
		m.logger.Warn("deleted audience was not in the list", "object_id", msg.objectID)
		m.modal = nil
		m.status = fmt.Sprintf("Deleted %q (it was no longer listed)", msg.name)
	case msg.err != nil:
		m.logger.Warn("delete audience failed", "object_id", msg.objectID, "error", msg.err)
		if m.modal != nil {
			m.modal = m.modal.Failed(msg.err)
		}
		return m
	default:
		m.modal = nil
		m.status = fmt.Sprintf("Deleted %q", msg.name)
		m.logger.Info("audience deleted", "object_id", msg.objectID)
	}
	m.snapshot = msg.snapshot
	m.clampSelection()
	return m
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		var b strings.Builder
		b.WriteString(m.renderHeader())
		b.WriteString("\n")
		b.WriteString(m.modal.View(m.theme, m.width, m.height-1))
		return b.String()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		if m.busy {
			return m, nil
		}
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
			return m, nil
		}
		m.modal = modal
		return m, cmd
	}

	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
		if m.prefsPath != "" {
			if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, Platforms: m.platforms}); err != nil {
				m.logger.Warn("save prefs failed", "error", err)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.store == nil {
			return m, nil
		}
		if m.inFlight() {
			return m.refuse(), nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, fetchCmd(m.ctx, m.store, m.fetch))

	case key.Matches(msg, m.keys.Create):
		if m.inFlight() {
			return m.refuse(), nil
		}
		m.modal = newCreateModal(m.deviceList(), m.platforms)
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		f, ok := m.selectedFilter()
		if !ok {
			return m, nil
		}
		if m.inFlight() {
			return m.refuse(), nil
		}
		m.modal = newDeleteModal(f.ObjectID, f.Name)
		return m, nil
	}

	return m.handleTableKey(msg)
}

// handleTableKey moves the selection.
func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := m.snapshot.Collection.Len()
	if count == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = count - 1
	}
	return m, nil
}

// quit aborts the list fetch before leaving so a late response cannot land
// on a torn down program.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.abortFetch()
	return m, tea.Quit
}

func (m Model) abortFetch() {
	if m.store == nil {
		return
	}
	_, _ = m.store.Dispatch(context.Background(), audience.AbortFetch{Key: FetchKey})
}

// deviceList returns the known device types, or the defaults before the
// device fetch has answered.
func (m Model) deviceList() []string {
	if !m.devicesLoaded {
		return DefaultDevices
	}
	return m.availableDevices
}

func (m Model) selectedFilter() (parse.Filter, bool) {
	coll := m.snapshot.Collection
	if coll.Len() == 0 || m.selectedRow < 0 || m.selectedRow >= coll.Len() {
		return parse.Filter{}, false
	}
	return coll.Filters[m.selectedRow], true
}

func (m *Model) clampSelection() {
	count := m.snapshot.Collection.Len()
	if m.selectedRow >= count {
		m.selectedRow = count - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderFilters())

	return b.String()
}

// Messages

type tickMsg time.Time

type fetchedMsg struct {
	snapshot state.Snapshot
	err      error
}

type devicesMsg struct {
	devices []string
	err     error
}

type createRequestMsg struct {
	Name      string
	Query     string
	Platforms []string
}

type createdMsg struct {
	snapshot  state.Snapshot
	name      string
	platforms []string
	err       error
}

type destroyRequestMsg struct {
	ObjectID string
	Name     string
}

type destroyedMsg struct {
	snapshot state.Snapshot
	objectID string
	name     string
	err      error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchCmd(ctx context.Context, store *state.Store, action audience.Fetch) tea.Cmd {
	return func() tea.Msg {
		_, err := store.Dispatch(ctx, action)
		return fetchedMsg{snapshot: store.Snapshot(), err: err}
	}
}

func devicesCmd(ctx context.Context, src DeviceSource) tea.Cmd {
	return func() tea.Msg {
		if src == nil {
			return devicesMsg{err: errors.New("no device source")}
		}
		devices, err := src.FetchAvailableDevices(ctx)
		return devicesMsg{devices: devices, err: err}
	}
}

func createCmd(ctx context.Context, store *state.Store, req createRequestMsg) tea.Cmd {
	return func() tea.Msg {
		_, err := store.Dispatch(ctx, audience.Create{Query: req.Query, Name: req.Name})
		return createdMsg{snapshot: store.Snapshot(), name: req.Name, platforms: req.Platforms, err: err}
	}
}

func destroyCmd(ctx context.Context, store *state.Store, req destroyRequestMsg) tea.Cmd {
	return func() tea.Msg {
		_, err := store.Dispatch(ctx, audience.Destroy{ObjectID: req.ObjectID})
		return destroyedMsg{snapshot: store.Snapshot(), objectID: req.ObjectID, name: req.Name, err: err}
	}
}

// Run starts the Bubble Tea program and aborts the list fetch once it exits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	m.abortFetch()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		// Cancelled from outside, e.g. by SIGTERM.
		return nil
	}
	return err
}

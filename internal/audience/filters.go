package audience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/five82/pushboard/internal/parse"
	"github.com/five82/pushboard/internal/query"
)

// StaleAfter is how long a fetched collection satisfies repeat fetches.
const StaleAfter = 60 * time.Second

// UnassignedID marks a created filter whose id the server did not report.
const UnassignedID = "-1"

var (
	// ErrNotFound is returned by Destroy when no local filter has the id.
	ErrNotFound = errors.New("filter not found")
	// ErrAborted is returned by a fetch cancelled through AbortFetch.
	ErrAborted = errors.New("request aborted")
	// ErrInvalidQuery is returned by Create when the query is not a JSON object.
	ErrInvalidQuery = errors.New("invalid audience query")
)

// State is the filter collection as last seen by this session. A nil *State
// means nothing has been fetched yet. States are never modified once
// returned by Reduce.
type State struct {
	LastFetch time.Time
	Filters   []parse.Filter
	ShowMore  bool
}

// Len returns the number of filters, treating nil as empty.
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Filters)
}

// Find returns the filter with the given id.
func (s *State) Find(objectID string) (parse.Filter, bool) {
	if s == nil {
		return parse.Filter{}, false
	}
	for _, f := range s.Filters {
		if f.ObjectID == objectID {
			return f, true
		}
	}
	return parse.Filter{}, false
}

// Action is one of Fetch, Create, Destroy or AbortFetch.
type Action interface {
	action()
	// Kind names the action for logs.
	Kind() string
}

// Fetch loads up to Limit filters unless the current state is fresh and
// already holds at least Min of them. Key names the request for AbortFetch.
type Fetch struct {
	Limit int
	Min   int
	Key   string
}

// Create saves a new audience. Query is a JSON-encoded predicate.
type Create struct {
	Query string
	Name  string
}

// Destroy deletes the audience with ObjectID.
type Destroy struct {
	ObjectID string
}

// AbortFetch cancels the in-flight fetch registered under Key.
type AbortFetch struct {
	Key string
}

func (Fetch) action()      {}
func (Create) action()     {}
func (Destroy) action()    {}
func (AbortFetch) action() {}

func (Fetch) Kind() string      { return "fetch" }
func (Create) Kind() string     { return "create" }
func (Destroy) Kind() string    { return "destroy" }
func (AbortFetch) Kind() string { return "abort_fetch" }

// Env holds what Reduce needs from the outside world.
type Env struct {
	Client   parse.AudienceAPI
	Requests *Requests
	Now      func() time.Time
	Logger   *slog.Logger
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Logger
}

// Reduce applies action to prev and returns the next state. On error the
// returned state is nil, except for Destroy with an unknown id, which returns
// prev alongside ErrNotFound.
func Reduce(ctx context.Context, env Env, prev *State, action Action) (*State, error) {
	switch a := action.(type) {
	case Fetch:
		return fetch(ctx, env, prev, a)
	case Create:
		return create(ctx, env, prev, a)
	case Destroy:
		return destroy(ctx, env, prev, a)
	case AbortFetch:
		aborted := env.Requests.Abort(a.Key)
		env.logger().Debug("store action", "action", a.Kind(), "key", a.Key, "aborted", aborted)
		return prev, nil
	case nil:
		return nil, fmt.Errorf("nil action")
	default:
		return nil, fmt.Errorf("unsupported action %T", action)
	}
}

func fetch(ctx context.Context, env Env, prev *State, a Fetch) (*State, error) {
	now := env.now()
	if prev != nil && now.Sub(prev.LastFetch) < StaleAfter && len(prev.Filters) >= a.Min {
		env.logger().Debug("store action", "action", a.Kind(), "key", a.Key, "cache_hit", true, "count", len(prev.Filters))
		return prev, nil
	}
	if env.Client == nil {
		return nil, fmt.Errorf("fetch filters: no client")
	}

	reqCtx, release := env.Requests.Begin(ctx, a.Key)
	defer release()

	page, err := env.Client.QueryFilters(reqCtx, a.Limit)
	if err != nil {
		if errors.Is(context.Cause(reqCtx), ErrAborted) {
			return nil, fmt.Errorf("fetch filters: %w: %w", ErrAborted, err)
		}
		return nil, fmt.Errorf("fetch filters: %w", err)
	}

	filters := append([]parse.Filter(nil), page.Results...)
	env.logger().Debug("store action", "action", a.Kind(), "key", a.Key, "cache_hit", false, "count", len(filters), "show_more", page.ShowMore)
	return &State{LastFetch: now, Filters: filters, ShowMore: page.ShowMore}, nil
}

func create(ctx context.Context, env Env, prev *State, a Create) (*State, error) {
	predicate, err := query.Parse(a.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	if env.Client == nil {
		return nil, fmt.Errorf("create audience: no client")
	}

	resp, err := env.Client.CreateAudience(ctx, parse.CreateAudienceRequest{Query: a.Query, Name: a.Name})
	if err != nil {
		return nil, fmt.Errorf("create audience %q: %w", a.Name, err)
	}

	id := resp.ObjectID()
	if id == "" {
		id = UnassignedID
	}
	now := env.now()
	record := parse.Filter{
		ObjectID:  id,
		Name:      a.Name,
		Query:     predicate,
		CreatedAt: now,
		UpdatedAt: now,
		TimesUsed: 0,
	}

	next := &State{}
	if prev != nil {
		*next = *prev
	}
	next.Filters = make([]parse.Filter, 0, prev.Len()+1)
	next.Filters = append(next.Filters, record)
	if prev != nil {
		next.Filters = append(next.Filters, prev.Filters...)
	}
	env.logger().Debug("store action", "action", a.Kind(), "object_id", id, "count", len(next.Filters))
	return next, nil
}

func destroy(ctx context.Context, env Env, prev *State, a Destroy) (*State, error) {
	if env.Client == nil {
		return nil, fmt.Errorf("delete audience: no client")
	}
	if err := env.Client.DeleteAudience(ctx, a.ObjectID); err != nil {
		return nil, fmt.Errorf("delete audience %s: %w", a.ObjectID, err)
	}

	idx := -1
	if prev != nil {
		for i, f := range prev.Filters {
			if f.ObjectID == a.ObjectID {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		env.logger().Warn("deleted audience missing locally", "object_id", a.ObjectID)
		return prev, fmt.Errorf("delete audience %s: %w", a.ObjectID, ErrNotFound)
	}

	next := *prev
	next.Filters = make([]parse.Filter, 0, len(prev.Filters)-1)
	next.Filters = append(next.Filters, prev.Filters[:idx]...)
	next.Filters = append(next.Filters, prev.Filters[idx+1:]...)
	env.logger().Debug("store action", "action", a.Kind(), "object_id", a.ObjectID, "count", len(next.Filters))
	return &next, nil
}

package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/five82/pushboard/internal/audience"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Collection          *audience.State
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed actions
}

// Loaded reports whether a fetch has ever succeeded.
func (s Snapshot) Loaded() bool {
	return s.Collection != nil
}

// IsOffline returns true when the backend has failed several actions in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store holds the filter collection of one session and runs actions
// against it.
type Store struct {
	env audience.Env

	// actions serializes every action except AbortFetch, so each one reduces
	// the collection committed by the one before it.
	actions sync.Mutex

	mu       sync.RWMutex
	snapshot Snapshot
}

// New returns a Store that reduces actions with env.
func New(env audience.Env) *Store {
	if env.Requests == nil {
		env.Requests = audience.NewRequests()
	}
	if env.Now == nil {
		env.Now = time.Now
	}
	return &Store{env: env}
}

// Dispatch runs action against the current collection. The result is
// committed only when the action succeeds; failures are recorded and the
// previous collection is kept. Actions run one at a time, each against the
// collection committed by the one before it.
// AbortFetch skips the queue so it can reach a fetch that is still waiting
// on the network, and never touches the snapshot.
func (s *Store) Dispatch(ctx context.Context, action audience.Action) (*audience.State, error) {
	if _, isAbort := action.(audience.AbortFetch); isAbort {
		_, err := audience.Reduce(ctx, s.env, nil, action)
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.snapshot.Collection, err
	}

	s.actions.Lock()
	defer s.actions.Unlock()

	s.mu.RLock()
	prev := s.snapshot.Collection
	s.mu.RUnlock()

	next, err := audience.Reduce(ctx, s.env, prev, action)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		// Neither an abort nor a delete of an unlisted record counts as a failure.
		if !errors.Is(err, audience.ErrAborted) && !errors.Is(err, audience.ErrNotFound) {
			s.snapshot.LastError = err
			s.snapshot.LastUpdated = s.env.Now()
			s.snapshot.ConsecutiveFailures++
		}
		return s.snapshot.Collection, err
	}
	s.snapshot.Collection = next
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = s.env.Now()
	s.snapshot.ConsecutiveFailures = 0
	return next, nil
}

// Snapshot returns a copy of the current snapshot. The collection itself is
// shared since states are never modified after they are committed.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

package audience

import (
	"context"
	"sync"
)

// Requests tracks in-flight requests by key so they can be aborted from
// another action. The zero value is ready to use.
type Requests struct {
	mu      sync.Mutex
	entries map[string]*request
}

type request struct {
	cancel context.CancelCauseFunc
}

// NewRequests returns an empty registry.
func NewRequests() *Requests {
	return &Requests{}
}

// Begin registers a request under key and returns its context. A request
// already registered under the same key is superseded, not cancelled. The
// release func must be called once the request finishes; it only removes the
// entry if it is still the current one for key.
func (r *Requests) Begin(ctx context.Context, key string) (context.Context, func()) {
	reqCtx, cancel := context.WithCancelCause(ctx)
	if r == nil || key == "" {
		return reqCtx, func() { cancel(nil) }
	}

	entry := &request{cancel: cancel}
	r.mu.Lock()
	if r.entries == nil {
		r.entries = make(map[string]*request)
	}
	r.entries[key] = entry
	r.mu.Unlock()

	return reqCtx, func() {
		r.mu.Lock()
		if r.entries[key] == entry {
			delete(r.entries, key)
		}
		r.mu.Unlock()
		cancel(nil)
	}
}

// Abort cancels the request registered under key. It reports whether one
// was in flight; aborting an unknown or finished key does nothing.
func (r *Requests) Abort(key string) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	entry, ok := r.entries[key]
	if ok {
		delete(r.entries, key)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	entry.cancel(ErrAborted)
	return true
}

// InFlight reports whether a request is registered under key.
func (r *Requests) InFlight(key string) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[key]
	return ok
}

// Package state holds the filter collection for one pushboard session.
//
// # Overview
//
// The reducer in package audience is a function from (state, action) to the
// next state. Store is the piece that remembers the current state between
// actions so the UI and CLI commands do not have to thread it around:
//
//	store := state.New(audience.Env{Client: client})
//	coll, err := store.Dispatch(ctx, audience.Fetch{Limit: 1000, Min: 10, Key: "PushFiltersIndex"})
//
// Store replaces a global registry of named stores: callers construct one
// and pass it to whatever needs it.
//
// # Commit Semantics
//
// Dispatch reads the current collection, runs the reducer without holding
// the lock, then commits:
//
//   - Success: the new collection replaces the old one, LastError is cleared.
//   - Failure: the old collection is kept, LastError and ConsecutiveFailures
//     are updated so the UI can show the problem.
//   - AbortFetch never touches the snapshot. A fetch that fails because it
//     was aborted is not counted as a failure.
//
// Because the reducer never modifies a state it has returned, Snapshot can
// hand out the committed *audience.State without copying it.
//
// # Concurrency
//
// Store is safe for concurrent use. It does not serialize actions: two
// mutations dispatched at once may both read the same previous collection
// and the later commit wins. The UI only issues one mutation at a time.
package state

// Package mockparse serves the slice of the Parse REST API that pushboard
// uses, backed by memory. It is meant for local development (pushboard
// mock-server) and for tests.
package mockparse

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/five82/pushboard/internal/parse"
	"github.com/five82/pushboard/internal/query"
)

// Options configure a Server.
type Options struct {
	AppID     string
	MasterKey string
	// Devices is returned by /available_devices.
	Devices []string
	Logger  *slog.Logger
	// Now stamps created records; defaults to time.Now.
	Now func() time.Time
}

// Server is an in-memory Parse backend.
type Server struct {
	opts   Options
	router *mux.Router
	logger *slog.Logger

	mu      sync.Mutex
	filters []parse.Filter // newest first
	hits    map[string]int
}

// New builds a Server with its routes registered.
func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		opts:   opts,
		router: mux.NewRouter(),
		logger: logger,
		hits:   make(map[string]int),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.PathPrefix("/parse").Subrouter()
	api.Use(s.countRequests, s.requireMasterKey)
	api.HandleFunc("/classes/"+parse.FilterClass, s.listFilters).Methods(http.MethodGet)
	api.HandleFunc("/push_audiences", s.createAudience).Methods(http.MethodPost)
	api.HandleFunc("/push_audiences/{id}", s.deleteAudience).Methods(http.MethodDelete)
	api.HandleFunc("/available_devices", s.availableDevices).Methods(http.MethodGet)
}

// Handler returns the HTTP handler. The API is mounted under /parse.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Seed inserts filters as if they had been created in order; the last one
// ends up first in listings.
func (s *Server) Seed(filters ...parse.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range filters {
		if f.ObjectID == "" {
			f.ObjectID = newObjectID()
		}
		now := s.opts.Now()
		if f.CreatedAt.IsZero() {
			f.CreatedAt = now
		}
		if f.UpdatedAt.IsZero() {
			f.UpdatedAt = f.CreatedAt
		}
		s.filters = append([]parse.Filter{f}, s.filters...)
	}
}

// Filters returns a copy of the stored filters, newest first.
func (s *Server) Filters() []parse.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]parse.Filter(nil), s.filters...)
}

// Hits reports how many requests reached a route, whether or not they were
// authorized. Routes are keyed by method and path template, e.g.
// "DELETE /push_audiences/{id}".
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/parse")
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = r.Method + " " + strings.TrimPrefix(tmpl, "/parse")
			}
		}
		s.mu.Lock()
		s.hits[route]++
		s.mu.Unlock()
		s.logger.Debug("mock request", "route", route, "request_id", r.Header.Get("X-Parse-Request-Id"))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireMasterKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.AppID != "" && r.Header.Get("X-Parse-Application-Id") != s.opts.AppID {
			writeError(w, http.StatusForbidden, 0, "unauthorized")
			return
		}
		if r.Header.Get("X-Parse-Master-Key") != s.opts.MasterKey {
			writeError(w, http.StatusForbidden, parse.CodeOperationForbidden, "unauthorized: master key is required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listFilters(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, parse.CodeInvalidJSON, "invalid limit")
			return
		}
		limit = n
	}

	s.mu.Lock()
	total := len(s.filters)
	results := append([]parse.Filter{}, s.filters[:min(limit, total)]...)
	s.mu.Unlock()

	payload := map[string]any{"results": results}
	if r.URL.Query().Get("count") == "1" {
		payload["count"] = total
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) createAudience(w http.ResponseWriter, r *http.Request) {
	var body parse.CreateAudienceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, parse.CodeInvalidJSON, "invalid JSON")
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, 0, "name is required")
		return
	}
	predicate, err := query.Parse(body.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, parse.CodeInvalidJSON, fmt.Sprintf("invalid query: %v", err))
		return
	}

	now := s.opts.Now()
	f := parse.Filter{
		ObjectID:  newObjectID(),
		Name:      name,
		Query:     predicate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.filters = append([]parse.Filter{f}, s.filters...)
	s.mu.Unlock()

	s.logger.Info("audience created", "object_id", f.ObjectID, "name", f.Name)
	writeJSON(w, http.StatusCreated, map[string]any{
		"new_audience": map[string]string{"objectId": f.ObjectID},
	})
}

func (s *Server) deleteAudience(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	idx := -1
	for i, f := range s.filters {
		if f.ObjectID == id {
			idx = i
			break
		}
	}
	if idx >= 0 {
		s.filters = append(s.filters[:idx:idx], s.filters[idx+1:]...)
	}
	s.mu.Unlock()

	if idx < 0 {
		writeError(w, http.StatusNotFound, parse.CodeObjectNotFound, "Object not found.")
		return
	}
	s.logger.Info("audience deleted", "object_id", id)
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) availableDevices(w http.ResponseWriter, r *http.Request) {
	devices := s.opts.Devices
	if devices == nil {
		devices = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"available_devices": devices})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status, code int, msg string) {
	payload := map[string]any{"error": msg}
	if code != 0 {
		payload["code"] = code
	}
	writeJSON(w, status, payload)
}

// newObjectID returns a 10 character id in the style of Parse object ids.
func newObjectID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// Package devserver is a small json-server compatible store for the /items
// collection. It backs local development and the HTTP round-trip tests.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/idilsaglam/grocery/internal/model"
	"github.com/idilsaglam/grocery/internal/store/jsonstore"
)

// Server holds the collection in memory and optionally mirrors it to a file.
type Server struct {
	mu    sync.Mutex
	items []model.Item
	file  *jsonstore.File
	log   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithItems seeds the collection.
func WithItems(items []model.Item) Option {
	return func(s *Server) { s.items = append([]model.Item{}, items...) }
}

// WithFile persists the collection to f after every mutation. Items already
// in the file replace any seed.
func WithFile(f *jsonstore.File) Option {
	return func(s *Server) { s.file = f }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New builds a server, loading the backing file when one is set.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		items: []model.Item{},
		log:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.file != nil {
		items, err := s.file.Load()
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", s.file.Path(), err)
		}
		if len(items) > 0 || len(s.items) == 0 {
			s.items = items
		}
	}
	return s, nil
}

// Items returns a copy of the current collection.
func (s *Server) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item{}, s.items...)
}

// Handler returns the HTTP routes of the store.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/items", s.list).Methods(http.MethodGet)
	r.HandleFunc("/items", s.create).Methods(http.MethodPost)
	r.HandleFunc("/items/{id}", s.get).Methods(http.MethodGet)
	r.HandleFunc("/items/{id}", s.patch).Methods(http.MethodPatch)
	r.HandleFunc("/items/{id}", s.remove).Methods(http.MethodDelete)
	return r
}

// ListenAndServe serves on addr until ctx is done. ready, when non-nil,
// receives the bound address once the listener is open.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	if ready != nil {
		ready(listener.Addr())
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(listener) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Items())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	i := indexOf(s.items, id)
	var it model.Item
	if i >= 0 {
		it = s.items[i]
	}
	s.mu.Unlock()

	if i < 0 {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var it model.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.items, it.ID) >= 0 {
		http.Error(w, "duplicate id "+it.ID, http.StatusConflict)
		return
	}
	next := append(append([]model.Item{}, s.items...), it)
	if err := s.commit(next); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// patchBody mirrors the fields a client may partially update.
type patchBody struct {
	Item    *string `json:"item"`
	Checked *bool   `json:"checked"`
}

func (s *Server) patch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var p patchBody
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.items, id)
	if i < 0 {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	next := append([]model.Item{}, s.items...)
	if p.Item != nil {
		next[i].Item = *p.Item
	}
	if p.Checked != nil {
		next[i].Checked = *p.Checked
	}
	if err := s.commit(next); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, next[i])
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.items, id)
	if i < 0 {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	next := make([]model.Item, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	next = append(next, s.items[i+1:]...)
	if err := s.commit(next); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// commit must be called with s.mu held.
func (s *Server) commit(next []model.Item) error {
	if s.file != nil {
		if err := s.file.Save(next); err != nil {
			return fmt.Errorf("persist: %w", err)
		}
	}
	s.items = next
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"request_id", r.Header.Get("X-Request-Id"),
			"elapsed", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func indexOf(items []model.Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// Package fakepad provides an in-process fake of the pad.ws backend for
// integration tests: the pad store HTTP API with per-operation failure
// stubbing, and a WebSocket collector for the message channel.
package fakepad

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/uuid"
	"github.com/gorilla/mux"

	"github.com/padws/pad.go/pkg/models"
)

// Operation names accepted by FailNext.
const (
	OpList    = "list"
	OpCreate  = "create"
	OpRename  = "rename"
	OpDelete  = "delete"
	OpSharing = "sharing"
	OpGet     = "get"
)

type stubFailure struct {
	status int
	body   string
	count  int
}

// Server is a fake pad store. It keeps pads in memory, serves the real
// API routes, and can be told to fail the next N calls of a given
// operation with a chosen status and body.
type Server struct {
	mu       sync.Mutex
	pads     map[string]models.Tab
	order    []string
	docs     map[string]models.Document
	failures map[string]*stubFailure
	user     models.User

	httpServer *httptest.Server
}

// NewServer starts a fake pad store on a local listener.
func NewServer() *Server {
	s := &Server{
		pads:     make(map[string]models.Tab),
		docs:     make(map[string]models.Document),
		failures: make(map[string]*stubFailure),
		user: models.User{
			Username: "tester",
			Email:    "tester@example.com",
		},
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/users/me", s.handleMe).Methods(http.MethodGet)
	r.HandleFunc("/api/pad/new", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/api/pad/{id}/rename", s.handleRename).Methods(http.MethodPut)
	r.HandleFunc("/api/pad/{id}/sharing", s.handleSharing).Methods(http.MethodPut)
	r.HandleFunc("/api/pad/{id}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/api/pad/{id}", s.handleDelete).Methods(http.MethodDelete)

	s.httpServer = httptest.NewServer(r)
	return s
}

// URL returns the base URL of the fake store.
func (s *Server) URL() string {
	return s.httpServer.URL
}

func (s *Server) Close() {
	s.httpServer.Close()
}

// Seed inserts pads directly into the store, bypassing the API.
func (s *Server) Seed(tabs ...models.Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tab := range tabs {
		if _, exists := s.pads[tab.ID]; !exists {
			s.order = append(s.order, tab.ID)
		}
		s.pads[tab.ID] = tab
	}
}

// SeedDocument sets the canvas document served for a pad id.
func (s *Server) SeedDocument(id string, doc models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = doc
}

// FailNext makes the next count calls of op fail with the given status
// and raw response body.
func (s *Server) FailNext(op string, status int, body string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = &stubFailure{status: status, body: body, count: count}
}

// Pads returns the pads currently stored, in insertion order.
func (s *Server) Pads() []models.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.padsLocked()
}

func (s *Server) padsLocked() []models.Tab {
	out := make([]models.Tab, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.pads[id])
	}
	return out
}

// failLocked consumes one stubbed failure for op, writing it to w.
func (s *Server) failLocked(w http.ResponseWriter, op string) bool {
	f, ok := s.failures[op]
	if !ok || f.count <= 0 {
		return false
	}
	f.count--
	if f.count <= 0 {
		delete(s.failures, op)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = w.Write([]byte(f.body))
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failLocked(w, OpList) {
		return
	}

	user := s.user
	user.Pads = s.padsLocked()
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failLocked(w, OpCreate) {
		return
	}

	now := time.Now().UTC()
	tab := models.Tab{
		ID:            uuid.Must(uuid.NewV4()).String(),
		Title:         models.DefaultTabTitle + " " + strconv.Itoa(len(s.order)+1),
		OwnerID:       s.user.Username,
		SharingPolicy: models.SharingPrivate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.pads[tab.ID] = tab
	s.order = append(s.order, tab.ID)

	writeJSON(w, http.StatusCreated, tab)
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failLocked(w, OpRename) {
		return
	}

	id := mux.Vars(r)["id"]
	tab, ok := s.pads[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "pad not found"})
		return
	}

	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid body"})
		return
	}

	tab.Title = body.DisplayName
	tab.UpdatedAt = time.Now().UTC()
	s.pads[id] = tab

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleSharing(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failLocked(w, OpSharing) {
		return
	}

	id := mux.Vars(r)["id"]
	tab, ok := s.pads[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "pad not found"})
		return
	}

	var body struct {
		Policy models.SharingPolicy `json:"policy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.Policy.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid policy"})
		return
	}

	tab.SharingPolicy = body.Policy
	tab.UpdatedAt = time.Now().UTC()
	s.pads[id] = tab

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failLocked(w, OpDelete) {
		return
	}

	id := mux.Vars(r)["id"]
	if _, ok := s.pads[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "pad not found"})
		return
	}

	delete(s.pads, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failLocked(w, OpGet) {
		return
	}

	id := mux.Vars(r)["id"]
	if _, ok := s.pads[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "pad not found"})
		return
	}

	doc := s.docs[id]
	writeJSON(w, http.StatusOK, doc)
}

// Package vortextest provides an in-memory Vortex API for tests.
package vortextest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/vortex-bridge/pkg/vortex"
)

// APIKey is a well-formed key accepted by Server
const APIKey = "VRTX.AAECAwQFBgcICQoLDA0ODw.test-secret"

// Call records one request received by the server
type Call struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// Server is a fake Vortex API backed by an invitation map
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	invitations map[string]*vortex.Invitation
	calls       []Call
	failures    map[string]int
	now         func() time.Time
}

// NewServer starts a fake API that is closed when the test ends
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		invitations: make(map[string]*vortex.Invitation),
		failures:    make(map[string]int),
		now:         func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) },
	}

	r := mux.NewRouter()
	r.Use(s.record, s.authenticate)
	r.HandleFunc("/invitations", s.listByTarget).Methods(http.MethodGet)
	r.HandleFunc("/invitations/accept", s.accept).Methods(http.MethodPost)
	r.HandleFunc("/invitations/by-group/{type}/{id}", s.listByGroup).Methods(http.MethodGet)
	r.HandleFunc("/invitations/by-group/{type}/{id}", s.deleteByGroup).Methods(http.MethodDelete)
	r.HandleFunc("/invitations/{id}", s.get).Methods(http.MethodGet)
	r.HandleFunc("/invitations/{id}", s.revoke).Methods(http.MethodDelete)
	r.HandleFunc("/invitations/{id}/reinvite", s.reinvite).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Add stores a pending invitation
func (s *Server) Add(inv vortex.Invitation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv.Status == "" {
		inv.Status = vortex.InvitationStatusPending
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = s.now()
	}
	s.invitations[inv.ID] = &inv
}

// Invitation returns a copy of the stored invitation
func (s *Server) Invitation(id string) (vortex.Invitation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[id]
	if !ok {
		return vortex.Invitation{}, false
	}
	return *inv, true
}

// FailWith makes every request to path answer with status
func (s *Server) FailWith(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Calls returns the requests received so far
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
		status, fail := s.failures[r.URL.Path]
		s.mu.Unlock()

		if fail {
			writeError(w, status, "injected failure")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != APIKey {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listByTarget(w http.ResponseWriter, r *http.Request) {
	targetType := r.URL.Query().Get("targetType")
	targetValue := r.URL.Query().Get("targetValue")

	s.filter(w, func(inv *vortex.Invitation) bool {
		return inv.TargetType == targetType && inv.TargetValue == targetValue
	})
}

func (s *Server) listByGroup(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.filter(w, func(inv *vortex.Invitation) bool {
		return inGroup(inv, vars["type"], vars["id"])
	})
}

func (s *Server) filter(w http.ResponseWriter, match func(*vortex.Invitation) bool) {
	s.mu.Lock()
	out := []vortex.Invitation{}
	for _, inv := range s.invitations {
		if match(inv) {
			out = append(out, *inv)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{"invitations": out})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	inv, ok := s.Invitation(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "invitation not found")
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) revoke(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	inv, ok := s.invitations[id]
	if ok {
		now := s.now()
		inv.Status = vortex.InvitationStatusRevoked
		inv.RevokedAt = &now
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "invitation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) accept(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InvitationIDs []string      `json:"invitationIds"`
		Target        vortex.Target `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.InvitationIDs) == 0 {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var last *vortex.Invitation
	for _, id := range req.InvitationIDs {
		inv, ok := s.invitations[id]
		if !ok {
			writeError(w, http.StatusNotFound, "invitation "+id+" not found")
			return
		}
		if inv.Status != vortex.InvitationStatusPending {
			writeError(w, http.StatusConflict, "invitation "+id+" is "+string(inv.Status))
			return
		}
		now := s.now()
		inv.Status = vortex.InvitationStatusAccepted
		inv.AcceptedAt = &now
		last = inv
	}
	writeJSON(w, http.StatusOK, last)
}

func (s *Server) deleteByGroup(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	s.mu.Lock()
	for id, inv := range s.invitations {
		if inGroup(inv, vars["type"], vars["id"]) {
			delete(s.invitations, id)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) reinvite(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	inv, ok := s.invitations[id]
	var out vortex.Invitation
	if ok {
		now := s.now()
		inv.Status = vortex.InvitationStatusPending
		inv.UpdatedAt = &now
		inv.RevokedAt = nil
		out = *inv
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "invitation not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func inGroup(inv *vortex.Invitation, groupType, groupID string) bool {
	for _, g := range inv.Groups {
		if g.Type == groupType && g.ID == groupID {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

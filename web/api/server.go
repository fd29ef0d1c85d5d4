// Package api exposes the forge state over HTTP for the web dashboard.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/hochfrequenz/app-forge/internal/domain"
	"github.com/hochfrequenz/app-forge/internal/runlog"
)

// Catalog is the read surface of the app catalog
type Catalog interface {
	All() []domain.Entry
	Get(name string) *domain.Entry
	Count() int
}

// State is the read surface of the run state
type State interface {
	Stats() map[string]int
	LastRun() *domain.RunSummary
}

// History is the read surface of the run history
type History interface {
	ListRuns(limit int) ([]*runlog.Run, error)
}

// Server is the HTTP API server
type Server struct {
	catalog Catalog
	state   State
	history History
	addr    string
	mux     *http.ServeMux
	sseHub  *SSEHub
}

// NewServer creates a new API server
func NewServer(catalog Catalog, state State, history History, addr string) *Server {
	s := &Server{
		catalog: catalog,
		state:   state,
		history: history,
		addr:    addr,
		mux:     http.NewServeMux(),
		sseHub:  NewSSEHub(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/status", s.statusHandler())
	s.mux.HandleFunc("/api/apps", s.listAppsHandler())
	s.mux.HandleFunc("/api/apps/", s.getAppHandler())
	s.mux.HandleFunc("/api/runs", s.listRunsHandler())
	s.mux.HandleFunc("/api/events", s.sseHandler())

	// Static files (dashboard build output)
	s.mux.Handle("/", http.FileServer(http.Dir("web/ui/build")))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	go s.sseHub.Run()
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Broadcast sends an event to all SSE clients
func (s *Server) Broadcast(event SSEEvent) {
	s.sseHub.Broadcast(event)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

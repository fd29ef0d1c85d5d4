package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hochfrequenz/app-forge/internal/domain"
	"github.com/hochfrequenz/app-forge/internal/runlog"
	"github.com/hochfrequenz/app-forge/internal/runstate"
)

// AppResponse is the API response for a cataloged app
type AppResponse struct {
	Name      string            `json:"name"`
	Category  string            `json:"category"`
	Path      string            `json:"path"`
	Services  []string          `json:"services,omitempty"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt *string           `json:"updated_at,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// StatusResponse is the API response for overall status
type StatusResponse struct {
	TotalApps     int       `json:"total_apps"`
	AppsGenerated int       `json:"apps_generated"`
	BugsFixed     int       `json:"bugs_fixed"`
	Improvements  int       `json:"improvements"`
	DocUpdates    int       `json:"doc_updates"`
	LastRunAt     *string   `json:"last_run_at,omitempty"`
	LastRunTotal  int       `json:"last_run_total"`
	Categories    []CatStat `json:"categories,omitempty"`
}

// CatStat is the per-category app count
type CatStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RunResponse is the API response for a historical run
type RunResponse struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	StartedAt     string  `json:"started_at"`
	FinishedAt    *string `json:"finished_at,omitempty"`
	AppsGenerated int     `json:"apps_generated"`
	BugsFixed     int     `json:"bugs_fixed"`
	Error         string  `json:"error,omitempty"`
}

func appToResponse(e domain.Entry) AppResponse {
	resp := AppResponse{
		Name:      e.Name,
		Category:  e.Category,
		Path:      e.Path,
		Services:  e.Services,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		Metadata:  e.Metadata,
	}
	if e.UpdatedAt != nil {
		t := e.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &t
	}
	return resp
}

func runToResponse(r *runlog.Run) RunResponse {
	resp := RunResponse{
		ID:            r.ID,
		Status:        string(r.Status),
		StartedAt:     r.StartedAt.Format(time.RFC3339),
		AppsGenerated: r.AppsGenerated,
		BugsFixed:     r.BugsFixed,
		Error:         r.Error,
	}
	if r.FinishedAt != nil {
		t := r.FinishedAt.Format(time.RFC3339)
		resp.FinishedAt = &t
	}
	return resp
}

func (s *Server) statusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		stats := s.state.Stats()
		status := StatusResponse{
			TotalApps:     s.catalog.Count(),
			AppsGenerated: stats[runstate.StatAppsGenerated],
			BugsFixed:     stats[runstate.StatBugsFixed],
			Improvements:  stats[runstate.StatImprovements],
			DocUpdates:    stats[runstate.StatDocUpdates],
		}

		if last := s.state.LastRun(); last != nil {
			t := last.Timestamp.Format(time.RFC3339)
			status.LastRunAt = &t
			status.LastRunTotal = last.Total()
		}

		counts := map[string]int{}
		for _, app := range s.catalog.All() {
			counts[app.Category]++
		}
		for name, count := range counts {
			status.Categories = append(status.Categories, CatStat{Name: name, Count: count})
		}

		writeJSON(w, status)
	}
}

func (s *Server) listAppsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		category := r.URL.Query().Get("category")

		apps := s.catalog.All()
		out := make([]AppResponse, 0, len(apps))
		for _, app := range apps {
			if category != "" && app.Category != category {
				continue
			}
			out = append(out, appToResponse(app))
		}
		writeJSON(w, out)
	}
}

func (s *Server) getAppHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		name := strings.TrimPrefix(r.URL.Path, "/api/apps/")
		if name == "" {
			writeError(w, http.StatusBadRequest, "app name required")
			return
		}

		app := s.catalog.Get(name)
		if app == nil {
			writeError(w, http.StatusNotFound, "app not found")
			return
		}
		writeJSON(w, appToResponse(*app))
	}
}

func (s *Server) listRunsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if s.history == nil {
			writeJSON(w, []RunResponse{})
			return
		}

		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		runs, err := s.history.ListRuns(limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		out := make([]RunResponse, 0, len(runs))
		for _, run := range runs {
			out = append(out, runToResponse(run))
		}
		writeJSON(w, out)
	}
}

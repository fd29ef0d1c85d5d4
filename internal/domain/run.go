package domain

import "time"

// TaskRecord is a pending or completed unit of work tracked in run state
type TaskRecord struct {
	ID          string     `json:"id"`
	Type        TaskType   `json:"type"`
	App         string     `json:"app,omitempty"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunSummary captures the outcome of one orchestrator run
type RunSummary struct {
	Timestamp   time.Time `json:"timestamp"`
	NewApps     []string  `json:"new_apps"`
	BugsFixed   []string  `json:"bugs_fixed"`
	Improved    []string  `json:"improvements"`
	DocsUpdated []string  `json:"docs_updated"`
}

// Total returns the number of items touched by the run
func (s *RunSummary) Total() int {
	return len(s.NewApps) + len(s.BugsFixed) + len(s.Improved) + len(s.DocsUpdated)
}

// Empty reports whether the run produced nothing
func (s *RunSummary) Empty() bool {
	return s.Total() == 0
}

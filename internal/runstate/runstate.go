// Package runstate tracks counters, category balance and task records
// across automation runs.
package runstate

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hochfrequenz/app-forge/internal/domain"
	"github.com/hochfrequenz/app-forge/internal/store"
)

const docVersion = "1.0.0"

// CategoryState is the rolling per-category counter used to weight
// future category selection
type CategoryState struct {
	AppsCount   int        `json:"apps_count"`
	LastAppAt   *time.Time `json:"last_app_at,omitempty"`
	LastAppName string     `json:"last_app_name,omitempty"`
}

// document is the on-disk run-state layout
type document struct {
	Version       string                   `json:"version"`
	InitializedAt time.Time                `json:"initialized_at"`
	LastUpdated   time.Time                `json:"last_updated"`
	LastRun       *domain.RunSummary       `json:"last_run,omitempty"`
	Stats         map[string]int           `json:"stats"`
	Categories    map[string]CategoryState `json:"categories"`
	PendingTasks  []domain.TaskRecord      `json:"pending_tasks"`
	DoneTasks     []domain.TaskRecord      `json:"completed_tasks"`
}

func (d document) DocVersion() string { return d.Version }

// Well-known stat counters
const (
	StatAppsGenerated = "total_apps_generated"
	StatBugsFixed     = "total_bugs_fixed"
	StatImprovements  = "total_improvements"
	StatDocUpdates    = "total_doc_updates"
)

// State owns the run-state document. Every mutation is written through
// immediately, so a crash loses at most the in-memory delta since the
// last successful operation.
type State struct {
	doc  *store.Document[document]
	data document
	log  zerolog.Logger
}

// Open loads run state from path, substituting a fresh document when
// the file is missing or unreadable
func Open(path string, log zerolog.Logger) *State {
	doc := store.NewDocument[document](path, log)
	def := document{
		Version:       docVersion,
		InitializedAt: time.Now(),
		Stats: map[string]int{
			StatAppsGenerated: 0,
			StatBugsFixed:     0,
			StatImprovements:  0,
			StatDocUpdates:    0,
		},
		Categories: map[string]CategoryState{},
	}
	s := &State{doc: doc, data: doc.Load(def), log: log}
	if s.data.Stats == nil {
		s.data.Stats = map[string]int{}
	}
	if s.data.Categories == nil {
		s.data.Categories = map[string]CategoryState{}
	}
	return s
}

func (s *State) save() error {
	s.data.LastUpdated = time.Now()
	return s.doc.Save(s.data)
}

// IncrementStat adds delta to a counter. Counters never decrease;
// a negative delta is rejected.
func (s *State) IncrementStat(name string, delta int) error {
	if delta < 0 {
		return fmt.Errorf("runstate: negative delta %d for %s", delta, name)
	}
	s.data.Stats[name] += delta
	return s.save()
}

// Stat returns the current value of a counter
func (s *State) Stat(name string) int {
	return s.data.Stats[name]
}

// Stats returns a copy of all counters
func (s *State) Stats() map[string]int {
	out := make(map[string]int, len(s.data.Stats))
	for k, v := range s.data.Stats {
		out[k] = v
	}
	return out
}

// Category returns the rolling state for a category, zero-valued when
// the category has never produced an app
func (s *State) Category(name string) CategoryState {
	return s.data.Categories[name]
}

// BumpCategory records one more produced app for a category
func (s *State) BumpCategory(category, appName string) error {
	cs := s.data.Categories[category]
	cs.AppsCount++
	now := time.Now()
	cs.LastAppAt = &now
	cs.LastAppName = appName
	s.data.Categories[category] = cs
	return s.save()
}

// AddTask queues a pending task record
func (s *State) AddTask(task domain.TaskRecord) error {
	if task.ID == "" {
		task.ID = fmt.Sprintf("task_%d_%d", len(s.data.PendingTasks)+1, time.Now().UnixNano())
	}
	task.Status = domain.TaskPending
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	s.data.PendingTasks = append(s.data.PendingTasks, task)
	return s.save()
}

// CompleteTask moves a pending task to the completed list
func (s *State) CompleteTask(id string) error {
	for i, task := range s.data.PendingTasks {
		if task.ID != id {
			continue
		}
		now := time.Now()
		task.Status = domain.TaskCompleted
		task.CompletedAt = &now
		s.data.DoneTasks = append(s.data.DoneTasks, task)
		s.data.PendingTasks = append(s.data.PendingTasks[:i], s.data.PendingTasks[i+1:]...)
		return s.save()
	}
	s.log.Warn().Str("task", id).Msg("complete skipped, task not pending")
	return nil
}

// PendingTasks returns pending records, optionally filtered by type
func (s *State) PendingTasks(taskType domain.TaskType) []domain.TaskRecord {
	var out []domain.TaskRecord
	for _, t := range s.data.PendingTasks {
		if taskType == "" || t.Type == taskType {
			out = append(out, t)
		}
	}
	return out
}

// RecordRun stores the summary of a finished run
func (s *State) RecordRun(summary domain.RunSummary) error {
	if summary.Timestamp.IsZero() {
		summary.Timestamp = time.Now()
	}
	s.data.LastRun = &summary
	return s.save()
}

// LastRun returns the most recent run summary, or nil
func (s *State) LastRun() *domain.RunSummary {
	return s.data.LastRun
}

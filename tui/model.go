// Package tui is the terminal dashboard for the forge.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hochfrequenz/app-forge/internal/domain"
	"github.com/hochfrequenz/app-forge/internal/runlog"
)

// Model is the TUI application model
type Model struct {
	// Data
	apps    []domain.Entry
	runs    []*runlog.Run
	stats   map[string]int
	lastRun *domain.RunSummary

	// UI state
	width       int
	height      int
	activeTab   int
	selectedRow int
	scroll      int

	lastRefresh time.Time
}

// ModelConfig holds initial data for the TUI model
type ModelConfig struct {
	Apps    []domain.Entry
	Runs    []*runlog.Run
	Stats   map[string]int
	LastRun *domain.RunSummary
}

// NewModel creates a new TUI model
func NewModel(cfg ModelConfig) Model {
	stats := cfg.Stats
	if stats == nil {
		stats = map[string]int{}
	}
	return Model{
		apps:    cfg.Apps,
		runs:    cfg.Runs,
		stats:   stats,
		lastRun: cfg.LastRun,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// TickMsg triggers a refresh
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// SetApps updates the app list
func (m *Model) SetApps(apps []domain.Entry) {
	m.apps = apps
}

// SetRuns updates the run history
func (m *Model) SetRuns(runs []*runlog.Run) {
	m.runs = runs
}

// Package runlog keeps a queryable history of automation runs in SQLite.
package runlog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hochfrequenz/app-forge/internal/domain"
)

// Artifact kinds recorded per run.
const (
	ArtifactApp    = "app"
	ArtifactFix    = "fix"
	ArtifactDoc    = "doc"
	ArtifactReview = "review"
)

// Run is one persisted automation run.
type Run struct {
	ID            string
	Status        domain.RunStatus
	StartedAt     time.Time
	FinishedAt    *time.Time
	AppsGenerated int
	BugsFixed     int
	Improvements  int
	DocUpdates    int
	Error         string
}

// Artifact is one product of a run.
type Artifact struct {
	ID        int64
	RunID     string
	AppName   string
	Category  string
	Kind      string
	Path      string
	CreatedAt time.Time
}

// Store provides SQLite-backed run history
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// StartRun records the beginning of a run and returns its id
func (s *Store) StartRun() (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, status, started_at) VALUES (?, ?, ?)`,
		id, "running", time.Now(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// FinishRun records the final state and counters of a run
func (s *Store) FinishRun(id string, status domain.RunStatus, summary domain.RunSummary, runErr string) error {
	_, err := s.db.Exec(`
		UPDATE runs SET status = ?, finished_at = ?,
			apps_generated = ?, bugs_fixed = ?, improvements = ?, doc_updates = ?, error = ?
		WHERE id = ?
	`,
		string(status), time.Now(),
		len(summary.NewApps), len(summary.BugsFixed), len(summary.Improved), len(summary.DocsUpdated), runErr,
		id,
	)
	return err
}

// RecordArtifact records one product of a run
func (s *Store) RecordArtifact(runID, appName, category, kind, path string) error {
	_, err := s.db.Exec(`
		INSERT INTO artifacts (run_id, app_name, category, kind, path)
		VALUES (?, ?, ?, ?, ?)
	`, runID, appName, category, kind, path)
	return err
}

// ListRuns returns the most recent runs, newest first
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, status, started_at, finished_at,
			apps_generated, bugs_fixed, improvements, doc_updates, error
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun retrieves one run by id
func (s *Store) GetRun(id string) (*Run, error) {
	rows, err := s.db.Query(`
		SELECT id, status, started_at, finished_at,
			apps_generated, bugs_fixed, improvements, doc_updates, error
		FROM runs WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}
	return scanRun(rows)
}

// Artifacts returns every artifact recorded for a run
func (s *Store) Artifacts(runID string) ([]*Artifact, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, app_name, category, kind, path, created_at
		FROM artifacts WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []*Artifact
	for rows.Next() {
		var a Artifact
		var category, path sql.NullString
		if err := rows.Scan(&a.ID, &a.RunID, &a.AppName, &category, &a.Kind, &path, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Category = category.String
		a.Path = path.String
		artifacts = append(artifacts, &a)
	}
	return artifacts, rows.Err()
}

// ArtifactCount returns how many artifacts of a kind exist across all runs
func (s *Store) ArtifactCount(kind string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM artifacts WHERE kind = ?`, kind).Scan(&count)
	return count, err
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var run Run
	var status string
	var finishedAt sql.NullTime
	var runErr sql.NullString

	err := rows.Scan(&run.ID, &status, &run.StartedAt, &finishedAt,
		&run.AppsGenerated, &run.BugsFixed, &run.Improvements, &run.DocUpdates, &runErr)
	if err != nil {
		return nil, err
	}

	run.Status = domain.RunStatus(status)
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	if runErr.Valid {
		run.Error = runErr.String
	}
	return &run, nil
}

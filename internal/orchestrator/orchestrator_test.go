package orchestrator

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hochfrequenz/app-forge/internal/catalog"
	"github.com/hochfrequenz/app-forge/internal/config"
	"github.com/hochfrequenz/app-forge/internal/domain"
	"github.com/hochfrequenz/app-forge/internal/quality"
	"github.com/hochfrequenz/app-forge/internal/repo"
	"github.com/hochfrequenz/app-forge/internal/runlog"
	"github.com/hochfrequenz/app-forge/internal/runstate"
)

type stubIdeas struct {
	idea  domain.Idea
	calls int
}

func (s *stubIdeas) Generate(_ context.Context, category string, services []string) domain.Idea {
	s.calls++
	idea := s.idea
	idea.Services = services
	return idea
}

type stubAppGen struct {
	files map[string]string
	err   error
}

func (s *stubAppGen) GenerateApp(context.Context, domain.Idea) (map[string]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.files, nil
}

type stubReviewer struct {
	issues []quality.Issue
	calls  int
}

func (s *stubReviewer) ReviewApp(context.Context, string) []quality.Issue {
	s.calls++
	return s.issues
}

type stubFixer struct {
	fixed []string
}

func (s *stubFixer) FixIssues(context.Context, string, []quality.Issue) []string {
	return s.fixed
}

type testEnv struct {
	orch    *Orchestrator
	catalog *catalog.Catalog
	state   *runstate.State
	history *runlog.Store
	ws      *repo.Workspace
	dataDir string
}

func newTestEnv(t *testing.T, deps Deps) *testEnv {
	t.Helper()

	stateDir := t.TempDir()
	dataDir := t.TempDir()

	if deps.Config == nil {
		deps.Config = config.Default()
	}
	deps.Config.Generation.NewAppsPerWeek = 1
	deps.Config.Generation.BugFixesPerDay = 1

	deps.Catalog = catalog.Open(filepath.Join(stateDir, "catalog.json"), zerolog.Nop())
	deps.State = runstate.Open(filepath.Join(stateDir, "state.json"), zerolog.Nop())
	deps.Repo = repo.New(t.TempDir(), dataDir, zerolog.Nop())

	history, err := runlog.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { history.Close() })
	deps.History = history

	if deps.Ideas == nil {
		deps.Ideas = &stubIdeas{idea: domain.Idea{Name: "Test App", Description: "d"}}
	}
	if deps.AppGen == nil {
		deps.AppGen = &stubAppGen{files: map[string]string{"app.py": "code", "README.md": "readme"}}
	}
	if deps.Reviewer == nil {
		deps.Reviewer = &stubReviewer{}
	}
	if deps.Fixer == nil {
		deps.Fixer = &stubFixer{}
	}

	orch := New(deps, zerolog.Nop())
	orch.rng = rand.New(rand.NewSource(1))

	return &testEnv{
		orch:    orch,
		catalog: deps.Catalog,
		state:   deps.State,
		history: history,
		ws:      deps.Repo,
		dataDir: dataDir,
	}
}

func TestRunGeneratesAndRegistersApp(t *testing.T) {
	env := newTestEnv(t, Deps{})

	summary, err := env.orch.Run(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}

	if len(summary.NewApps) != 1 || summary.NewApps[0] != "Test App" {
		t.Fatalf("NewApps = %v", summary.NewApps)
	}
	if !env.catalog.Exists("Test App") {
		t.Error("app not registered in catalog")
	}
	entry := env.catalog.Get("Test App")
	if !env.ws.FileExists(filepath.Join(entry.Path, "app.py")) {
		t.Error("app files not written")
	}
	if env.state.Stat(runstate.StatAppsGenerated) != 1 {
		t.Errorf("apps stat = %d", env.state.Stat(runstate.StatAppsGenerated))
	}
	if env.state.Category(entry.Category).AppsCount != 1 {
		t.Error("category counter not bumped")
	}

	msg, err := os.ReadFile(filepath.Join(env.dataDir, "last_commit_message.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(msg), "add 1 new app(s)") {
		t.Errorf("commit message = %q", msg)
	}
	if _, err := os.Stat(filepath.Join(env.dataDir, "iteration_summary.md")); err != nil {
		t.Errorf("summary report missing: %v", err)
	}

	runs, err := env.history.ListRuns(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Status != domain.RunCompleted || runs[0].AppsGenerated != 1 {
		t.Errorf("history run = %+v", runs[0])
	}
}

func TestRunSkipsGenerationOffDay(t *testing.T) {
	ideas := &stubIdeas{idea: domain.Idea{Name: "Test App"}}
	env := newTestEnv(t, Deps{Ideas: ideas})

	// Pin the clock to a Tuesday with Monday configured.
	env.orch.now = func() time.Time {
		return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	}

	summary, err := env.orch.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.NewApps) != 0 {
		t.Errorf("NewApps = %v, want none off-day", summary.NewApps)
	}
	if ideas.calls != 0 {
		t.Error("idea selector should not run off-day")
	}
}

func TestRunGeneratesOnConfiguredDay(t *testing.T) {
	env := newTestEnv(t, Deps{})

	// Monday, matching the default new_app_day of zero.
	env.orch.now = func() time.Time {
		return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	}

	summary, err := env.orch.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.NewApps) != 1 {
		t.Errorf("NewApps = %v, want one on new app day", summary.NewApps)
	}
}

func TestRunSurvivesGenerationFailure(t *testing.T) {
	env := newTestEnv(t, Deps{
		AppGen: &stubAppGen{err: errors.New("model unavailable")},
	})

	summary, err := env.orch.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("run must not fail on a single app failure: %v", err)
	}
	if len(summary.NewApps) != 0 {
		t.Errorf("NewApps = %v", summary.NewApps)
	}
	if env.catalog.Count() != 0 {
		t.Error("failed app must not be registered")
	}

	// Maintenance commit message still gets written.
	msg, err := os.ReadFile(filepath.Join(env.dataDir, "last_commit_message.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(msg), "chore: daily repository maintenance") {
		t.Errorf("commit message = %q", msg)
	}
}

func TestRunFailsWhenHandoffWritesFail(t *testing.T) {
	env := newTestEnv(t, Deps{})

	// A plain file where the data dir should be makes the commit
	// message and report writes fail.
	blocked := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	env.orch.ws = repo.New(t.TempDir(), blocked, zerolog.Nop())

	_, err := env.orch.Run(context.Background(), true)
	if err == nil {
		t.Fatal("Run returned nil although the hand-off artifacts were never written")
	}
	if !strings.Contains(err.Error(), "commit message") {
		t.Errorf("err = %v", err)
	}

	runs, lerr := env.history.ListRuns(1)
	if lerr != nil {
		t.Fatal(lerr)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	if runs[0].Status != domain.RunFailed {
		t.Errorf("run status = %s, want failed", runs[0].Status)
	}
	if runs[0].Error == "" {
		t.Error("run error not recorded")
	}
}

func TestRunReviewsAndFixesExistingApps(t *testing.T) {
	reviewer := &stubReviewer{issues: []quality.Issue{
		{Severity: domain.SeverityCritical, Issue: "broken"},
	}}
	fixer := &stubFixer{fixed: []string{"cat/old-app/app.py"}}
	env := newTestEnv(t, Deps{Reviewer: reviewer, Fixer: fixer})

	if err := env.catalog.Register(domain.Entry{Name: "Old App", Category: "cat", Path: "cat/old-app"}); err != nil {
		t.Fatal(err)
	}

	env.orch.now = func() time.Time {
		return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) // off-day
	}

	summary, err := env.orch.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.BugsFixed) != 1 || !strings.Contains(summary.BugsFixed[0], "Old App") {
		t.Errorf("BugsFixed = %v", summary.BugsFixed)
	}
	if reviewer.calls != 1 {
		t.Errorf("reviewer calls = %d", reviewer.calls)
	}
	if env.state.Stat(runstate.StatBugsFixed) != 1 {
		t.Errorf("bugs stat = %d", env.state.Stat(runstate.StatBugsFixed))
	}
}

func TestCommitSubject(t *testing.T) {
	cases := []struct {
		summary domain.RunSummary
		want    string
	}{
		{domain.RunSummary{}, "chore: daily repository maintenance"},
		{domain.RunSummary{NewApps: []string{"a"}}, "feat: add 1 new app(s)"},
		{
			domain.RunSummary{NewApps: []string{"a"}, BugsFixed: []string{"b", "c"}},
			"feat: add 1 new app(s), fix 2 bug(s)",
		},
	}
	for _, tc := range cases {
		if got := CommitSubject(tc.summary); got != tc.want {
			t.Errorf("CommitSubject = %q, want %q", got, tc.want)
		}
	}
}

func TestReportMarksEmptySections(t *testing.T) {
	report := Report(domain.RunSummary{
		Timestamp: time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC),
		NewApps:   []string{"My App"},
	})
	if !strings.Contains(report, "## New Applications (1)") || !strings.Contains(report, "- My App") {
		t.Errorf("report missing new app section:\n%s", report)
	}
	if !strings.Contains(report, "*None*") {
		t.Error("empty sections should read *None*")
	}
}

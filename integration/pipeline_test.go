//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hochfrequenz/app-forge/internal/appgen"
	"github.com/hochfrequenz/app-forge/internal/batch"
	"github.com/hochfrequenz/app-forge/internal/catalog"
	"github.com/hochfrequenz/app-forge/internal/config"
	"github.com/hochfrequenz/app-forge/internal/domain"
	"github.com/hochfrequenz/app-forge/internal/ideas"
	"github.com/hochfrequenz/app-forge/internal/orchestrator"
	"github.com/hochfrequenz/app-forge/internal/prompts"
	"github.com/hochfrequenz/app-forge/internal/quality"
	"github.com/hochfrequenz/app-forge/internal/repo"
	"github.com/hochfrequenz/app-forge/internal/runlog"
	"github.com/hochfrequenz/app-forge/internal/runstate"
)

const ideaResponse = `{
  "name": "AWS Receipt Auditor",
  "description": "Audits expense receipts with Bedrock vision models",
  "features": ["receipt ingestion", "policy checks", "summary reports"],
  "services": ["bedrock"],
  "use_case": "Finance teams auditing travel expenses"
}`

// TestIterationFlow_GenerateToCatalog runs one full iteration against
// real on-disk state: config -> orchestrator -> workspace files,
// catalog, run state and run history.
func TestIterationFlow_GenerateToCatalog(t *testing.T) {
	repoDir := t.TempDir()
	dataDir := filepath.Join(repoDir, "data")
	dbPath := TempDBPath(t)

	configPath := createTestConfig(t, repoDir, dataDir, dbPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	provider := &scriptProvider{
		byPromptPart: map[string]string{
			"unique AI application idea": ideaResponse,
			"README":                     "```markdown\n# AWS Receipt Auditor\n```",
			"CloudFormation":             "```yaml\nAWSTemplateFormatVersion: '2010-09-09'\n```",
			"Review the following":       "[]",
		},
		fallback: "```python\nimport streamlit as st\nst.title('AWS Receipt Auditor')\n```",
	}

	log := zerolog.Nop()
	cat := catalog.Open(filepath.Join(dataDir, "app_registry.json"), log)
	state := runstate.Open(filepath.Join(dataDir, "state.json"), log)

	history, err := runlog.New(dbPath)
	if err != nil {
		t.Fatalf("runlog.New failed: %v", err)
	}
	defer history.Close()

	loader := prompts.NewLoader()
	ws := repo.New(cfg.General.TargetRepoPath, cfg.General.DataDir, log)
	coordinator := batch.New(provider, log)

	orch := orchestrator.New(orchestrator.Deps{
		Config:   cfg,
		Catalog:  cat,
		State:    state,
		History:  history,
		Ideas:    ideas.New(provider, cat, loader, log),
		AppGen:   appgen.New(coordinator, loader, log),
		Reviewer: quality.NewReviewer(provider, loader, ws, log),
		Fixer:    quality.NewFixer(provider, loader, ws, log),
		Repo:     ws,
	}, log)

	summary, err := orch.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(summary.NewApps) != 1 {
		t.Fatalf("NewApps = %v, want one app", summary.NewApps)
	}
	if summary.NewApps[0] != "AWS Receipt Auditor" {
		t.Errorf("app name = %q", summary.NewApps[0])
	}

	// Catalog entry persisted
	entry := cat.Get("AWS Receipt Auditor")
	if entry == nil {
		t.Fatal("app not registered in catalog")
	}

	// App files written into the target repo
	appPy := filepath.Join(repoDir, entry.Path, "app.py")
	data, err := os.ReadFile(appPy)
	if err != nil {
		t.Fatalf("app.py not written: %v", err)
	}
	if !strings.Contains(string(data), "streamlit") {
		t.Error("app.py missing generated code")
	}
	for _, name := range []string{"README.md", "requirements.txt", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(repoDir, entry.Path, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	// Stats bumped
	if got := state.Stat(runstate.StatAppsGenerated); got != 1 {
		t.Errorf("apps generated stat = %d, want 1", got)
	}

	// Run recorded in history
	runs, err := history.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	if runs[0].AppsGenerated != 1 {
		t.Errorf("run apps = %d, want 1", runs[0].AppsGenerated)
	}

	// Commit message and report written
	msg, err := os.ReadFile(filepath.Join(dataDir, "last_commit_message.txt"))
	if err != nil {
		t.Fatalf("commit message not written: %v", err)
	}
	if !strings.Contains(string(msg), "feat: add 1 new app") {
		t.Errorf("commit message = %q", msg)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "iteration_summary.md")); err != nil {
		t.Errorf("iteration summary not written: %v", err)
	}
}

// TestIterationFlow_SecondRunSeesCatalog verifies a second run loads the
// catalog written by the first and rejects the duplicate idea.
func TestIterationFlow_SecondRunSeesCatalog(t *testing.T) {
	dataDir := t.TempDir()
	log := zerolog.Nop()

	cat := catalog.Open(filepath.Join(dataDir, "app_registry.json"), log)
	if err := cat.Register(sampleEntry()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	reopened := catalog.Open(filepath.Join(dataDir, "app_registry.json"), log)
	if reopened.Count() != 1 {
		t.Fatalf("reopened catalog count = %d, want 1", reopened.Count())
	}
	if !reopened.Exists("AWS Receipt Auditor") {
		t.Error("entry lost across reopen")
	}
}

func sampleEntry() domain.Entry {
	return domain.Entry{
		Name:     "AWS Receipt Auditor",
		Category: "multimodal_ai",
		Path:     "multimodal_ai/aws-receipt-auditor",
		Services: []string{"bedrock"},
	}
}

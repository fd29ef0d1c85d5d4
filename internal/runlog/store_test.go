package runlog

import (
	"testing"

	"github.com/hochfrequenz/app-forge/internal/domain"
)

func TestStore_RunLifecycle(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	id, err := store.StartRun()
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("empty run id")
	}

	run, err := store.GetRun(id)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != "running" {
		t.Errorf("Status = %q, want running", run.Status)
	}
	if run.FinishedAt != nil {
		t.Error("FinishedAt should be nil while running")
	}

	summary := domain.RunSummary{
		NewApps:   []string{"my-app"},
		BugsFixed: []string{"other-app: 1 bug fixed", "third-app: 2 bugs fixed"},
	}
	if err := store.FinishRun(id, domain.RunCompleted, summary, ""); err != nil {
		t.Fatal(err)
	}

	run, err = store.GetRun(id)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != domain.RunCompleted {
		t.Errorf("Status = %q, want %q", run.Status, domain.RunCompleted)
	}
	if run.FinishedAt == nil {
		t.Error("FinishedAt should be set after finish")
	}
	if run.AppsGenerated != 1 || run.BugsFixed != 2 {
		t.Errorf("counters = %d/%d, want 1/2", run.AppsGenerated, run.BugsFixed)
	}
}

func TestStore_FailedRunKeepsError(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	id, err := store.StartRun()
	if err != nil {
		t.Fatal(err)
	}
	if err := store.FinishRun(id, domain.RunFailed, domain.RunSummary{}, "provider unreachable"); err != nil {
		t.Fatal(err)
	}

	run, err := store.GetRun(id)
	if err != nil {
		t.Fatal(err)
	}
	if run.Error != "provider unreachable" {
		t.Errorf("Error = %q", run.Error)
	}
}

func TestStore_Artifacts(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	id, err := store.StartRun()
	if err != nil {
		t.Fatal(err)
	}

	if err := store.RecordArtifact(id, "my-app", "rag_on_aws", ArtifactApp, "rag_on_aws/my-app"); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordArtifact(id, "other-app", "bedrock_ai_agents", ArtifactFix, "bedrock_ai_agents/other-app/app.py"); err != nil {
		t.Fatal(err)
	}

	artifacts, err := store.Artifacts(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(artifacts))
	}
	if artifacts[0].Kind != ArtifactApp || artifacts[0].AppName != "my-app" {
		t.Errorf("first artifact = %+v", artifacts[0])
	}

	count, err := store.ArtifactCount(ArtifactFix)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("fix count = %d, want 1", count)
	}
}

func TestStore_ListRunsNewestFirst(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	for i := 0; i < 3; i++ {
		if _, err := store.StartRun(); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.ListRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
}

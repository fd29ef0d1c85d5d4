package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWriteAndReadFile(t *testing.T) {
	ws := New(t.TempDir(), "", zerolog.Nop())

	if ws.FileExists("a/b/app.py") {
		t.Fatal("file should not exist yet")
	}
	if err := ws.WriteFile("a/b/app.py", "print('x')"); err != nil {
		t.Fatal(err)
	}
	if !ws.FileExists("a/b/app.py") {
		t.Error("file should exist after write")
	}

	got, err := ws.ReadFile("a/b/app.py")
	if err != nil {
		t.Fatal(err)
	}
	if got != "print('x')" {
		t.Errorf("content = %q", got)
	}
}

func TestWriteFilesCreatesNestedPaths(t *testing.T) {
	root := t.TempDir()
	ws := New(root, "", zerolog.Nop())

	files := map[string]string{
		"app.py":                           "code",
		"aws/cloudformation/template.yaml": "yaml",
	}
	if err := ws.WriteFiles("rag_on_aws/my-app", files); err != nil {
		t.Fatal(err)
	}

	for relPath := range files {
		full := filepath.Join(root, "rag_on_aws/my-app", relPath)
		if _, err := os.Stat(full); err != nil {
			t.Errorf("missing %s: %v", relPath, err)
		}
	}
}

func TestFlushCommitMessage(t *testing.T) {
	dataDir := t.TempDir()
	ws := New(t.TempDir(), dataDir, zerolog.Nop())

	ws.AddCommitLine("Add new app: %s", "my-app")
	ws.AddCommitLine("Fix %d bugs in %s", 2, "other-app")

	if err := ws.FlushCommitMessage("Daily automation run"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dataDir, "last_commit_message.txt"))
	if err != nil {
		t.Fatal(err)
	}
	msg := string(data)
	if !strings.HasPrefix(msg, "Daily automation run\n\n") {
		t.Errorf("missing header:\n%s", msg)
	}
	if !strings.Contains(msg, "Add new app: my-app") || !strings.Contains(msg, "Fix 2 bugs in other-app") {
		t.Errorf("missing lines:\n%s", msg)
	}

	if len(ws.CommitLines()) != 0 {
		t.Error("accumulator should reset after flush")
	}
}

func TestFlushCommitMessageEmptyAccumulator(t *testing.T) {
	dataDir := t.TempDir()
	ws := New(t.TempDir(), dataDir, zerolog.Nop())

	if err := ws.FlushCommitMessage(""); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dataDir, "last_commit_message.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "Automated maintenance run" {
		t.Errorf("message = %q", string(data))
	}
}

func TestDefaultDataDir(t *testing.T) {
	root := t.TempDir()
	ws := New(root, "", zerolog.Nop())
	if ws.DataDir() != filepath.Join(root, "data") {
		t.Errorf("data dir = %q", ws.DataDir())
	}
}

//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hochfrequenz/app-forge/internal/llm"
)

// TempDBPath creates a temporary database path for testing
func TempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

// TempConfigPath creates a temporary config file path for testing
func TempConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.toml")
}

// createTestConfig writes a config pointing at temp directories
func createTestConfig(t *testing.T, repoPath, dataDir, dbPath string) string {
	t.Helper()
	configPath := TempConfigPath(t)

	config := `[general]
target_repo_path = "` + repoPath + `"
data_dir = "` + dataDir + `"
database_path = "` + dbPath + `"

[llm]
provider = "anthropic"
model = "claude-sonnet-4-5-20250929"

[generation]
new_apps_per_week = 1
new_app_day = 0
bug_fixes_per_day = 1

[web]
port = 8080
host = "127.0.0.1"
`

	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return configPath
}

// scriptProvider replays canned responses keyed by a substring of the
// prompt, falling back to a default response
type scriptProvider struct {
	byPromptPart map[string]string
	fallback     string
}

func (p *scriptProvider) Name() string { return "script" }

func (p *scriptProvider) Generate(ctx context.Context, req llm.Request) (string, error) {
	for part, resp := range p.byPromptPart {
		if part != "" && strings.Contains(req.Prompt, part) {
			return resp, nil
		}
	}
	return p.fallback, nil
}

func (p *scriptProvider) SubmitBatch(ctx context.Context, items []llm.BatchItem) (string, error) {
	return "", llm.ErrBatchUnsupported
}

func (p *scriptProvider) PollBatch(ctx context.Context, jobID string) (llm.BatchStatus, error) {
	return llm.BatchFailed, llm.ErrBatchUnsupported
}

func (p *scriptProvider) FetchBatchResults(ctx context.Context, jobID string) (map[string]llm.Outcome, error) {
	return nil, llm.ErrBatchUnsupported
}

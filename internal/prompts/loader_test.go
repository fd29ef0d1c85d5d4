package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildIdeaPrompt(t *testing.T) {
	l := NewLoader()

	prompt, err := l.BuildIdeaPrompt(IdeaData{
		Category:       "serverless",
		Services:       "Lambda, DynamoDB",
		ExistingCount:  2,
		ExistingSample: "- url-shortener\n- image-resizer",
		TotalApps:      12,
	})
	if err != nil {
		t.Fatalf("BuildIdeaPrompt: %v", err)
	}

	for _, want := range []string{"serverless", "Lambda, DynamoDB", "url-shortener"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "---") {
		t.Error("frontmatter leaked into rendered prompt")
	}
}

func TestAllEmbeddedTemplatesRender(t *testing.T) {
	l := NewLoader()

	app := AppData{
		Name:        "log-archiver",
		Description: "archives logs to S3",
		Features:    []string{"batching", "compression"},
		Services:    []string{"S3", "SQS"},
		UseCase:     "ops tooling",
		Difficulty:  "intermediate",
		Framework:   "Flask",
	}

	cases := []struct {
		name string
		run  func() (string, error)
	}{
		{"idea system", l.IdeaSystemPrompt},
		{"code system", l.CodeSystemPrompt},
		{"review system", l.ReviewSystemPrompt},
		{"app code", func() (string, error) { return l.BuildAppCodePrompt(app) }},
		{"readme", func() (string, error) { return l.BuildReadmePrompt(app) }},
		{"cloudformation", func() (string, error) { return l.BuildCloudFormationPrompt(app) }},
		{"review", func() (string, error) {
			return l.BuildReviewPrompt(ReviewData{Path: "app.py", Code: "print('hi')"})
		}},
		{"fix", func() (string, error) {
			return l.BuildFixPrompt(FixData{Issue: "bare except", Severity: "high", Suggestion: "catch specific exceptions", Line: 3, Code: "try:\n  pass\nexcept:\n  pass"})
		}},
	}

	for _, tc := range cases {
		got, err := tc.run()
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if got == "" {
			t.Errorf("%s: empty render", tc.name)
		}
	}
}

func TestOverrideDirWins(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "idea"), 0755); err != nil {
		t.Fatal(err)
	}
	override := "---\nid: custom\n---\ncustom idea prompt for {{.Category}}"
	if err := os.WriteFile(filepath.Join(dir, "idea", "generate.md"), []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(dir)
	got, err := l.BuildIdeaPrompt(IdeaData{Category: "iot"})
	if err != nil {
		t.Fatalf("BuildIdeaPrompt: %v", err)
	}
	if got != "custom idea prompt for iot" {
		t.Errorf("override not used, got %q", got)
	}

	// Other templates still come from the embedded set.
	if _, err := l.IdeaSystemPrompt(); err != nil {
		t.Errorf("embedded fallback: %v", err)
	}
}

func TestParseFrontmatter(t *testing.T) {
	meta, body, err := parseFrontmatter([]byte("---\nid: x\ndescription: y\n---\nbody text"))
	if err != nil {
		t.Fatal(err)
	}
	if meta == nil || meta.ID != "x" || meta.Description != "y" {
		t.Errorf("meta = %+v", meta)
	}
	if body != "body text" {
		t.Errorf("body = %q", body)
	}

	meta, body, err = parseFrontmatter([]byte("no frontmatter here"))
	if err != nil {
		t.Fatal(err)
	}
	if meta != nil {
		t.Error("expected nil meta without frontmatter")
	}
	if body != "no frontmatter here" {
		t.Errorf("body = %q", body)
	}
}

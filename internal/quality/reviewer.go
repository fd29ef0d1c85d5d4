// Package quality reviews generated code and applies automated fixes.
package quality

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/hochfrequenz/app-forge/internal/domain"
	"github.com/hochfrequenz/app-forge/internal/ideas"
	"github.com/hochfrequenz/app-forge/internal/llm"
	"github.com/hochfrequenz/app-forge/internal/prompts"
	"github.com/hochfrequenz/app-forge/internal/repo"
)

const (
	reviewTemperature = 0.3
	reviewMaxTokens   = 2048
)

// Issue is one finding from a code review.
type Issue struct {
	Line       int                  `json:"line"`
	Severity   domain.IssueSeverity `json:"severity"`
	Issue      string               `json:"issue"`
	Suggestion string               `json:"suggestion"`
}

// Reviewer inspects generated applications for defects. Review
// failures degrade to an empty finding list so a bad review never
// blocks a run.
type Reviewer struct {
	provider llm.Provider
	loader   *prompts.Loader
	ws       *repo.Workspace
	log      zerolog.Logger
}

// NewReviewer creates a Reviewer over the workspace.
func NewReviewer(provider llm.Provider, loader *prompts.Loader, ws *repo.Workspace, log zerolog.Logger) *Reviewer {
	return &Reviewer{
		provider: provider,
		loader:   loader,
		ws:       ws,
		log:      log.With().Str("component", "quality").Logger(),
	}
}

// ReviewApp reviews the main file of one application directory
// (relative to the workspace root).
func (r *Reviewer) ReviewApp(ctx context.Context, appDir string) []Issue {
	mainFile := filepath.Join(appDir, "app.py")
	if !r.ws.FileExists(mainFile) {
		r.log.Debug().Str("app", appDir).Msg("no app.py, skipping review")
		return nil
	}
	return r.ReviewFile(ctx, mainFile)
}

// ReviewFile reviews a single file relative to the workspace root.
func (r *Reviewer) ReviewFile(ctx context.Context, relPath string) []Issue {
	code, err := r.ws.ReadFile(relPath)
	if err != nil {
		r.log.Error().Err(err).Str("file", relPath).Msg("cannot read file for review")
		return nil
	}

	system, err := r.loader.ReviewSystemPrompt()
	if err != nil {
		r.log.Error().Err(err).Msg("loading review system prompt failed")
		return nil
	}
	prompt, err := r.loader.BuildReviewPrompt(prompts.ReviewData{Path: relPath, Code: code})
	if err != nil {
		r.log.Error().Err(err).Msg("building review prompt failed")
		return nil
	}

	text, err := r.provider.Generate(ctx, llm.Request{
		Prompt:      prompt,
		System:      system,
		Temperature: reviewTemperature,
		MaxTokens:   reviewMaxTokens,
	})
	if err != nil {
		r.log.Error().Err(err).Str("file", relPath).Msg("review generation failed")
		return nil
	}

	issues := ParseIssues(text)
	r.log.Info().Str("file", relPath).Int("issues", len(issues)).Msg("file reviewed")
	return issues
}

// ParseIssues parses a review response. Anything that is not a JSON
// array of findings yields an empty list.
func ParseIssues(text string) []Issue {
	cleaned := ideas.StripFences(text)

	var issues []Issue
	if err := json.Unmarshal([]byte(cleaned), &issues); err != nil {
		return nil
	}
	return issues
}

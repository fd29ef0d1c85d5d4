package quality

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/hochfrequenz/app-forge/internal/appgen"
	"github.com/hochfrequenz/app-forge/internal/llm"
	"github.com/hochfrequenz/app-forge/internal/prompts"
	"github.com/hochfrequenz/app-forge/internal/repo"
)

const (
	fixTemperature = 0.2
	fixMaxTokens   = 4096
)

// Fixer applies automated fixes for critical and high severity issues.
type Fixer struct {
	provider llm.Provider
	loader   *prompts.Loader
	ws       *repo.Workspace
	log      zerolog.Logger
}

// NewFixer creates a Fixer over the workspace.
func NewFixer(provider llm.Provider, loader *prompts.Loader, ws *repo.Workspace, log zerolog.Logger) *Fixer {
	return &Fixer{
		provider: provider,
		loader:   loader,
		ws:       ws,
		log:      log.With().Str("component", "quality").Logger(),
	}
}

// FixIssues applies fixes to the app's main file for every issue that
// warrants action. Lower severities are ignored. Returns the list of
// files that were actually rewritten.
func (f *Fixer) FixIssues(ctx context.Context, appDir string, issues []Issue) []string {
	var actionable []Issue
	for _, issue := range issues {
		if issue.Severity.ActionRequired() {
			actionable = append(actionable, issue)
		}
	}
	if len(actionable) == 0 {
		return nil
	}

	mainFile := filepath.Join(appDir, "app.py")
	if f.fixFile(ctx, mainFile, actionable) {
		return []string{mainFile}
	}
	return nil
}

// fixFile feeds the file through a fix round per issue, each round
// seeing the previous round's output. The file is rewritten only when
// the final code differs from the original.
func (f *Fixer) fixFile(ctx context.Context, relPath string, issues []Issue) bool {
	original, err := f.ws.ReadFile(relPath)
	if err != nil {
		f.log.Error().Err(err).Str("file", relPath).Msg("cannot read file for fixing")
		return false
	}

	code := original
	for _, issue := range issues {
		prompt, err := f.loader.BuildFixPrompt(prompts.FixData{
			Issue:      issue.Issue,
			Severity:   string(issue.Severity),
			Suggestion: issue.Suggestion,
			Line:       issue.Line,
			Code:       code,
		})
		if err != nil {
			f.log.Error().Err(err).Msg("building fix prompt failed")
			return false
		}

		fixed, err := f.provider.Generate(ctx, llm.Request{
			Prompt:      prompt,
			Temperature: fixTemperature,
			MaxTokens:   fixMaxTokens,
		})
		if err != nil {
			f.log.Error().Err(err).Str("file", relPath).Msg("fix generation failed")
			return false
		}
		code = appgen.ExtractCodeBlock(fixed)
	}

	if code == original {
		f.log.Debug().Str("file", relPath).Msg("fix rounds produced no change")
		return false
	}

	if err := f.ws.WriteFile(relPath, code); err != nil {
		f.log.Error().Err(err).Str("file", relPath).Msg("writing fixed file failed")
		return false
	}
	f.log.Info().Str("file", relPath).Int("issues", len(issues)).Msg("fixed issues")
	return true
}

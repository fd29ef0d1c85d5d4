// Package ideas turns catalog context into unique application ideas.
package ideas

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hochfrequenz/app-forge/internal/catalog"
	"github.com/hochfrequenz/app-forge/internal/domain"
	"github.com/hochfrequenz/app-forge/internal/llm"
	"github.com/hochfrequenz/app-forge/internal/prompts"
)

const (
	defaultMaxAttempts = 3
	ideaTemperature    = 0.8
	ideaMaxTokens      = 2048
	contextSampleSize  = 10
)

// Selector generates application ideas that do not collide with the
// existing catalog. When every attempt fails it falls back to a static
// idea so a run never dies on the idea stage.
type Selector struct {
	provider    llm.Provider
	catalog     *catalog.Catalog
	loader      *prompts.Loader
	maxAttempts int
	log         zerolog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithMaxAttempts overrides the number of generation attempts.
func WithMaxAttempts(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// New creates a Selector backed by the given provider and catalog.
func New(provider llm.Provider, cat *catalog.Catalog, loader *prompts.Loader, log zerolog.Logger, opts ...Option) *Selector {
	s := &Selector{
		provider:    provider,
		catalog:     cat,
		loader:      loader,
		maxAttempts: defaultMaxAttempts,
		log:         log.With().Str("component", "ideas").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces a unique idea for the category, preferring the
// given services. It retries on parse failures and uniqueness
// collisions, and returns a fallback idea when all attempts fail.
func (s *Selector) Generate(ctx context.Context, category string, services []string) domain.Idea {
	prompt, err := s.buildPrompt(category, services)
	if err != nil {
		s.log.Error().Err(err).Msg("building idea prompt failed, using fallback")
		return s.fallback(category, services)
	}
	system, err := s.loader.IdeaSystemPrompt()
	if err != nil {
		s.log.Error().Err(err).Msg("loading idea system prompt failed, using fallback")
		return s.fallback(category, services)
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		text, err := s.provider.Generate(ctx, llm.Request{
			Prompt:      prompt,
			System:      system,
			Temperature: ideaTemperature,
			MaxTokens:   ideaMaxTokens,
		})
		if err != nil {
			s.log.Error().Err(err).Int("attempt", attempt).Int("max", s.maxAttempts).Msg("idea generation failed")
			continue
		}

		idea, err := ParseIdea(text)
		if err != nil {
			s.log.Error().Err(err).Int("attempt", attempt).Int("max", s.maxAttempts).Msg("idea response unusable")
			continue
		}

		if !s.IsUnique(idea.Name) {
			s.log.Warn().Str("idea", idea.Name).Int("attempt", attempt).Int("max", s.maxAttempts).Msg("idea collides with catalog")
			continue
		}

		s.log.Info().Str("idea", idea.Name).Str("category", category).Msg("generated unique idea")
		return idea
	}

	s.log.Warn().Str("category", category).Msg("no unique idea after retries, using fallback")
	return s.fallback(category, services)
}

// buildPrompt assembles the generation prompt from catalog context. At
// most contextSampleSize existing names are listed verbatim; the rest
// are summarized as a count.
func (s *Selector) buildPrompt(category string, services []string) (string, error) {
	existing := s.catalog.ByCategory(category)
	names := make([]string, len(existing))
	for i, e := range existing {
		names[i] = e.Name
	}

	sample := names
	if len(sample) > contextSampleSize {
		rand.Shuffle(len(sample), func(i, j int) { sample[i], sample[j] = sample[j], sample[i] })
		sample = sample[:contextSampleSize]
	}

	var b strings.Builder
	for _, name := range sample {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	if extra := len(names) - len(sample); extra > 0 {
		fmt.Fprintf(&b, "...and %d more\n", extra)
	}

	return s.loader.BuildIdeaPrompt(prompts.IdeaData{
		Category:       category,
		Services:       strings.Join(services, ", "),
		ExistingCount:  len(names),
		ExistingSample: b.String(),
		TotalApps:      s.catalog.Count(),
	})
}

// ParseIdea parses a model response into an Idea. Markdown code fences
// around the JSON are tolerated; missing required fields are not.
func ParseIdea(text string) (domain.Idea, error) {
	cleaned := StripFences(text)

	var idea domain.Idea
	if err := json.Unmarshal([]byte(cleaned), &idea); err != nil {
		return domain.Idea{}, fmt.Errorf("ideas: response is not valid JSON: %w", err)
	}

	switch {
	case idea.Name == "":
		return domain.Idea{}, fmt.Errorf("ideas: response missing required field: name")
	case idea.Description == "":
		return domain.Idea{}, fmt.Errorf("ideas: response missing required field: description")
	case len(idea.Features) == 0:
		return domain.Idea{}, fmt.Errorf("ideas: response missing required field: features")
	case len(idea.Services) == 0:
		return domain.Idea{}, fmt.Errorf("ideas: response missing required field: services")
	case idea.UseCase == "":
		return domain.Idea{}, fmt.Errorf("ideas: response missing required field: use_case")
	}

	return idea, nil
}

// StripFences removes a surrounding markdown code fence, if present.
func StripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// IsUnique reports whether the name is distinct from every cataloged
// app. Names match when equal ignoring case, or when one contains the
// other and both are longer than five characters.
func (s *Selector) IsUnique(name string) bool {
	candidate := strings.ToLower(name)
	for _, app := range s.catalog.All() {
		existing := strings.ToLower(app.Name)
		if candidate == existing {
			return false
		}
		if len(candidate) > 5 && len(existing) > 5 {
			if strings.Contains(candidate, existing) || strings.Contains(existing, candidate) {
				return false
			}
		}
	}
	return true
}

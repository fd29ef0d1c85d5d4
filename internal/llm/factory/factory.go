// Package factory constructs the configured llm.Provider.
package factory

import (
	"fmt"
	"strings"

	"github.com/hochfrequenz/app-forge/internal/llm"
	anthropicprov "github.com/hochfrequenz/app-forge/internal/llm/anthropic"
	openaiprov "github.com/hochfrequenz/app-forge/internal/llm/openai"
)

// Settings selects and configures a provider backend
type Settings struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// New returns the provider named in the settings
func New(settings Settings) (llm.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(settings.Provider)) {
	case "anthropic":
		opts := []anthropicprov.Option{anthropicprov.WithModel(settings.Model)}
		if settings.BaseURL != "" {
			opts = append(opts, anthropicprov.WithBaseURL(settings.BaseURL))
		}
		return anthropicprov.New(settings.APIKey, opts...)

	case "openai":
		opts := []openaiprov.Option{openaiprov.WithModel(settings.Model)}
		if settings.BaseURL != "" {
			opts = append(opts, openaiprov.WithBaseURL(settings.BaseURL))
		}
		return openaiprov.New(settings.APIKey, opts...)
	}

	return nil, fmt.Errorf("unsupported llm provider %q (use anthropic or openai)", settings.Provider)
}

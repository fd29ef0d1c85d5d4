// Package appgen renders a complete application scaffold from an idea.
package appgen

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/hochfrequenz/app-forge/internal/batch"
	"github.com/hochfrequenz/app-forge/internal/domain"
	"github.com/hochfrequenz/app-forge/internal/llm"
	"github.com/hochfrequenz/app-forge/internal/prompts"
)

// Request ids for the batched artifact generation.
const (
	reqAppCode        = "app_code"
	reqReadme         = "readme"
	reqCloudFormation = "cloudformation"
)

const (
	codeTemperature   = 0.3
	readmeTemperature = 0.5
	codeMaxTokens     = 4096
	readmeMaxTokens   = 2048
)

// Generator produces all files of one application. The three
// model-generated artifacts go through the batch coordinator in a
// single request set; the rest are rendered locally.
type Generator struct {
	coordinator *batch.Coordinator
	loader      *prompts.Loader
	log         zerolog.Logger
}

// New creates a Generator.
func New(coordinator *batch.Coordinator, loader *prompts.Loader, log zerolog.Logger) *Generator {
	return &Generator{
		coordinator: coordinator,
		loader:      loader,
		log:         log.With().Str("component", "appgen").Logger(),
	}
}

// GenerateApp renders the full file set for an idea, keyed by relative
// path within the app directory. Artifacts the model could not produce
// are replaced by static fallbacks, so the set is always complete.
func (g *Generator) GenerateApp(ctx context.Context, idea domain.Idea) (map[string]string, error) {
	g.log.Info().Str("app", idea.Name).Msg("generating app")

	requests, err := g.buildRequests(idea)
	if err != nil {
		return nil, err
	}
	generated := g.coordinator.Run(ctx, requests)

	code := generated[reqAppCode]
	if code == "" {
		g.log.Warn().Str("app", idea.Name).Msg("app code generation failed, using fallback scaffold")
		code = fallbackAppCode(idea)
	} else {
		code = ExtractCodeBlock(code)
	}

	readme := generated[reqReadme]
	if readme == "" {
		g.log.Warn().Str("app", idea.Name).Msg("readme generation failed, using fallback")
		readme = fallbackReadme(idea)
	}

	cfn := generated[reqCloudFormation]
	if cfn == "" {
		g.log.Warn().Str("app", idea.Name).Msg("cloudformation generation failed, using fallback")
		cfn = fallbackCloudFormation(idea)
	} else {
		cfn = ExtractYAMLBlock(cfn)
	}

	configYAML, err := renderConfig(idea)
	if err != nil {
		return nil, fmt.Errorf("appgen: rendering config for %q: %w", idea.Name, err)
	}

	files := map[string]string{
		"app.py":                           code,
		"README.md":                        readme,
		"requirements.txt":                 renderRequirements(idea),
		"config.yaml":                      configYAML,
		".env.example":                     renderEnvExample(idea),
		"aws/cloudformation/template.yaml": cfn,
		"aws/deploy.sh":                    renderDeployScript(idea),
	}

	g.log.Info().Str("app", idea.Name).Int("files", len(files)).Msg("app generated")
	return files, nil
}

func (g *Generator) buildRequests(idea domain.Idea) (map[string]llm.Request, error) {
	data := prompts.AppData{
		Name:        idea.Name,
		Description: idea.Description,
		Features:    idea.Features,
		Services:    idea.Services,
		UseCase:     idea.UseCase,
		Difficulty:  idea.Difficulty,
		Framework:   primaryFramework(idea),
	}

	system, err := g.loader.CodeSystemPrompt()
	if err != nil {
		return nil, fmt.Errorf("appgen: %w", err)
	}
	codePrompt, err := g.loader.BuildAppCodePrompt(data)
	if err != nil {
		return nil, fmt.Errorf("appgen: %w", err)
	}
	readmePrompt, err := g.loader.BuildReadmePrompt(data)
	if err != nil {
		return nil, fmt.Errorf("appgen: %w", err)
	}
	cfnPrompt, err := g.loader.BuildCloudFormationPrompt(data)
	if err != nil {
		return nil, fmt.Errorf("appgen: %w", err)
	}

	return map[string]llm.Request{
		reqAppCode: {
			Prompt:      codePrompt,
			System:      system,
			Temperature: codeTemperature,
			MaxTokens:   codeMaxTokens,
		},
		reqReadme: {
			Prompt:      readmePrompt,
			Temperature: readmeTemperature,
			MaxTokens:   readmeMaxTokens,
		},
		reqCloudFormation: {
			Prompt:      cfnPrompt,
			Temperature: codeTemperature,
			MaxTokens:   codeMaxTokens,
		},
	}, nil
}

func primaryFramework(idea domain.Idea) string {
	if len(idea.Frameworks) > 0 {
		return idea.Frameworks[0]
	}
	return "streamlit"
}

// renderRequirements derives the Python dependency pins from the
// idea's services and frameworks.
func renderRequirements(idea domain.Idea) string {
	deps := map[string]struct{}{
		"boto3>=1.34.0":        {},
		"botocore>=1.34.0":     {},
		"python-dotenv>=1.0.0": {},
		"pydantic>=2.6.0":      {},
		"pyyaml>=6.0.1":        {},
	}

	for _, svc := range idea.Services {
		if strings.EqualFold(svc, "bedrock") {
			deps["anthropic>=0.18.0"] = struct{}{}
		}
	}

	frameworks := idea.Frameworks
	if len(frameworks) == 0 {
		frameworks = []string{"streamlit"}
	}
	for _, fw := range frameworks {
		switch strings.ToLower(fw) {
		case "streamlit":
			deps["streamlit>=1.31.0"] = struct{}{}
		case "fastapi":
			deps["fastapi>=0.109.0"] = struct{}{}
			deps["uvicorn>=0.27.0"] = struct{}{}
		case "langchain":
			deps["langchain>=0.1.0"] = struct{}{}
			deps["langchain-aws>=0.1.0"] = struct{}{}
		case "flask":
			deps["flask>=3.0.0"] = struct{}{}
		}
	}

	lines := make([]string, 0, len(deps))
	for dep := range deps {
		lines = append(lines, dep)
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n") + "\n"
}

type appConfig struct {
	AppName   string    `yaml:"app_name"`
	AWSRegion string    `yaml:"aws_region"`
	Services  []string  `yaml:"aws_services"`
	LLM       llmConfig `yaml:"llm_config"`
}

type llmConfig struct {
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

func renderConfig(idea domain.Idea) (string, error) {
	cfg := appConfig{
		AppName:   idea.Name,
		AWSRegion: "us-east-1",
		Services:  idea.Services,
		LLM: llmConfig{
			Model:       "anthropic.claude-3-sonnet-20240229-v1:0",
			MaxTokens:   2048,
			Temperature: 0.7,
		},
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func renderEnvExample(idea domain.Idea) string {
	var b strings.Builder
	b.WriteString("# AWS Configuration\n")
	b.WriteString("AWS_ACCESS_KEY_ID=your_access_key_here\n")
	b.WriteString("AWS_SECRET_ACCESS_KEY=your_secret_key_here\n")
	b.WriteString("AWS_REGION=us-east-1\n\n")

	for _, svc := range idea.Services {
		if strings.EqualFold(svc, "bedrock") {
			b.WriteString("# AWS Bedrock Configuration\n")
			b.WriteString("BEDROCK_MODEL_ID=anthropic.claude-3-sonnet-20240229-v1:0\n\n")
			break
		}
	}

	b.WriteString("# Application Configuration\n")
	b.WriteString("LOG_LEVEL=INFO\n")
	return b.String()
}

func renderDeployScript(idea domain.Idea) string {
	return fmt.Sprintf(`#!/bin/bash
# Deployment script for %s

set -e

echo "Deploying %s to AWS..."

export AWS_REGION=${AWS_REGION:-us-east-1}

aws cloudformation deploy \
    --template-file cloudformation/template.yaml \
    --stack-name %s \
    --capabilities CAPABILITY_IAM \
    --region $AWS_REGION

echo "Deployment complete!"
`, idea.Name, idea.Name, domain.Slugify(idea.Name))
}

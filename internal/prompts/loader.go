package prompts

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Loader manages prompt templates with override support.
type Loader struct {
	overrideDirs []string // Directories to check for overrides (in priority order)
	cache        map[string]*template.Template
	mu           sync.RWMutex
}

// TemplateMeta holds frontmatter metadata for prompt templates.
type TemplateMeta struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// NewLoader creates a loader with the given override directories.
// Directories are checked in order; first match wins.
func NewLoader(overrideDirs ...string) *Loader {
	return &Loader{
		overrideDirs: overrideDirs,
		cache:        make(map[string]*template.Template),
	}
}

// DefaultLoader creates a loader that checks <dataDir>/prompts for
// overrides before falling back to the embedded templates.
func DefaultLoader(dataDir string) *Loader {
	var dirs []string
	if dataDir != "" {
		dirs = append(dirs, filepath.Join(dataDir, "prompts"))
	}
	return NewLoader(dirs...)
}

// loadContent loads raw content from override dirs or embedded FS.
func (l *Loader) loadContent(path string) ([]byte, error) {
	for _, dir := range l.overrideDirs {
		fullPath := filepath.Join(dir, path)
		if data, err := os.ReadFile(fullPath); err == nil {
			return data, nil
		}
	}
	return fs.ReadFile(embeddedFS, path)
}

// parseFrontmatter splits content into frontmatter and body.
func parseFrontmatter(content []byte) (*TemplateMeta, string, error) {
	str := string(content)

	if !strings.HasPrefix(str, "---\n") {
		return nil, str, nil // No frontmatter
	}

	end := strings.Index(str[4:], "\n---\n")
	if end == -1 {
		return nil, str, nil // Malformed, treat as no frontmatter
	}

	frontmatter := str[4 : 4+end]
	body := str[4+end+5:]

	var meta TemplateMeta
	if err := yaml.Unmarshal([]byte(frontmatter), &meta); err != nil {
		return nil, "", fmt.Errorf("parse frontmatter: %w", err)
	}

	return &meta, body, nil
}

// LoadTemplate loads and parses a template by path (e.g., "idea/generate.md").
func (l *Loader) LoadTemplate(path string) (*template.Template, error) {
	l.mu.RLock()
	if tmpl, ok := l.cache[path]; ok {
		l.mu.RUnlock()
		return tmpl, nil
	}
	l.mu.RUnlock()

	content, err := l.loadContent(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	_, body, err := parseFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	tmpl, err := template.New(path).Parse(body)
	if err != nil {
		return nil, fmt.Errorf("compile template %s: %w", path, err)
	}

	l.mu.Lock()
	l.cache[path] = tmpl
	l.mu.Unlock()

	return tmpl, nil
}

// Execute loads and executes a template with the given data.
func (l *Loader) Execute(path string, data interface{}) (string, error) {
	tmpl, err := l.LoadTemplate(path)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute %s: %w", path, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// IdeaData holds template variables for idea generation prompts.
type IdeaData struct {
	Category       string
	Services       string
	ExistingCount  int
	ExistingSample string
	TotalApps      int
}

// AppData holds template variables for artifact generation prompts.
type AppData struct {
	Name        string
	Description string
	Features    []string
	Services    []string
	UseCase     string
	Difficulty  string
	Framework   string
}

// ReviewData holds template variables for code review prompts.
type ReviewData struct {
	Path string
	Code string
}

// FixData holds template variables for bug fix prompts.
type FixData struct {
	Issue      string
	Severity   string
	Suggestion string
	Line       int
	Code       string
}

// IdeaSystemPrompt returns the system prompt for idea generation.
func (l *Loader) IdeaSystemPrompt() (string, error) {
	return l.Execute("idea/system.md", struct{}{})
}

// BuildIdeaPrompt loads and executes the idea generation template.
func (l *Loader) BuildIdeaPrompt(data IdeaData) (string, error) {
	return l.Execute("idea/generate.md", data)
}

// CodeSystemPrompt returns the system prompt for code generation.
func (l *Loader) CodeSystemPrompt() (string, error) {
	return l.Execute("appgen/system.md", struct{}{})
}

// BuildAppCodePrompt loads and executes the application code template.
func (l *Loader) BuildAppCodePrompt(data AppData) (string, error) {
	return l.Execute("appgen/app_code.md", data)
}

// BuildReadmePrompt loads and executes the README template.
func (l *Loader) BuildReadmePrompt(data AppData) (string, error) {
	return l.Execute("appgen/readme.md", data)
}

// BuildCloudFormationPrompt loads and executes the infrastructure template.
func (l *Loader) BuildCloudFormationPrompt(data AppData) (string, error) {
	return l.Execute("appgen/cloudformation.md", data)
}

// ReviewSystemPrompt returns the system prompt for code review.
func (l *Loader) ReviewSystemPrompt() (string, error) {
	return l.Execute("quality/review_system.md", struct{}{})
}

// BuildReviewPrompt loads and executes the code review template.
func (l *Loader) BuildReviewPrompt(data ReviewData) (string, error) {
	return l.Execute("quality/review.md", data)
}

// BuildFixPrompt loads and executes the bug fix template.
func (l *Loader) BuildFixPrompt(data FixData) (string, error) {
	return l.Execute("quality/fix.md", data)
}

// ClearCache clears the template cache (useful for development/testing).
func (l *Loader) ClearCache() {
	l.mu.Lock()
	l.cache = make(map[string]*template.Template)
	l.mu.Unlock()
}

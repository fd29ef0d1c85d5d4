// Package config loads the forge configuration from TOML, environment
// variables and the category/service YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hochfrequenz/app-forge/internal/domain"
)

// Config holds all application configuration
type Config struct {
	General       GeneralConfig       `toml:"general"`
	LLM           LLMConfig           `toml:"llm"`
	Generation    GenerationConfig    `toml:"generation"`
	Batch         BatchConfig         `toml:"batch"`
	Notifications NotificationsConfig `toml:"notifications"`
	Web           WebConfig           `toml:"web"`

	Categories []domain.Category `toml:"-"`
	Services   []domain.Service  `toml:"-"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	TargetRepoPath string `toml:"target_repo_path"`
	DataDir        string `toml:"data_dir"`
	DatabasePath   string `toml:"database_path"`
	CategoriesFile string `toml:"categories_file"`
	ServicesFile   string `toml:"services_file"`
	Schedule       string `toml:"schedule"`
}

// LLMConfig holds model provider settings. The API key is read from
// the environment only, never from the config file.
type LLMConfig struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	BaseURL     string  `toml:"base_url"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
	APIKey      string  `toml:"-"`
}

// GenerationConfig holds generation behavior settings
type GenerationConfig struct {
	NewAppsPerWeek      int      `toml:"new_apps_per_week"`
	NewAppDay           int      `toml:"new_app_day"` // 0=Monday .. 6=Sunday
	BugFixesPerDay      int      `toml:"bug_fixes_per_day"`
	ImprovementsPerDay  int      `toml:"improvements_per_day"`
	DocUpdatesPerDay    int      `toml:"doc_updates_per_day"`
	ReviewSampleSize    int      `toml:"review_sample_size"`
	PreferredFrameworks []string `toml:"preferred_frameworks"`
	PreferredServices   []string `toml:"preferred_services"`
}

// BatchConfig holds batch coordination settings
type BatchConfig struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	MaxWaitSeconds      int `toml:"max_wait_seconds"`
}

// NotificationsConfig holds notification settings
type NotificationsConfig struct {
	SlackWebhook string `toml:"slack_webhook"`
}

// WebConfig holds web UI settings
type WebConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		General: GeneralConfig{
			TargetRepoPath: ".",
			DataDir:        "data",
			DatabasePath:   filepath.Join(home, ".app-forge", "forge.db"),
			Schedule:       "0 6 * * *",
		},
		LLM: LLMConfig{
			Provider:    "anthropic",
			Model:       "claude-sonnet-4-5-20250929",
			MaxTokens:   8192,
			Temperature: 0.7,
		},
		Generation: GenerationConfig{
			NewAppsPerWeek:     1,
			NewAppDay:          0,
			BugFixesPerDay:     1,
			ImprovementsPerDay: 1,
			DocUpdatesPerDay:   0,
			ReviewSampleSize:   3,
		},
		Batch: BatchConfig{
			PollIntervalSeconds: 10,
			MaxWaitSeconds:      600,
		},
		Web: WebConfig{
			Port: 8080,
			Host: "127.0.0.1",
		},
		Categories: DefaultCategories(),
		Services:   DefaultServices(),
	}
}

// Load reads configuration from a TOML file, falling back to defaults.
// A .env file next to the working directory is honored, then
// environment variables override file values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyEnv()

	cfg.General.TargetRepoPath = ExpandPath(cfg.General.TargetRepoPath)
	cfg.General.DataDir = ExpandPath(cfg.General.DataDir)
	cfg.General.DatabasePath = ExpandPath(cfg.General.DatabasePath)

	if err := cfg.loadCategories(); err != nil {
		return nil, err
	}
	if err := cfg.loadServices(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides config values from the environment
func (c *Config) applyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "openai":
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if v := os.Getenv("OPENAI_MODEL"); v != "" {
			c.LLM.Model = v
		}
	default:
		c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if v := os.Getenv("ANTHROPIC_MODEL"); v != "" {
			c.LLM.Model = v
		}
	}
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LLM.MaxTokens = n
		}
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.LLM.Temperature = f
		}
	}
	if v := os.Getenv("TARGET_REPO_PATH"); v != "" {
		c.General.TargetRepoPath = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		c.Notifications.SlackWebhook = v
	}
	if v := os.Getenv("NEW_APP_DAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Generation.NewAppDay = n
		}
	}
}

type categoriesDoc struct {
	Categories []domain.Category `yaml:"categories"`
}

type servicesDoc struct {
	Services []domain.Service `yaml:"services"`
}

func (c *Config) loadCategories() error {
	if c.General.CategoriesFile == "" {
		return nil
	}
	data, err := os.ReadFile(ExpandPath(c.General.CategoriesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var doc categoriesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing categories file: %w", err)
	}
	if len(doc.Categories) > 0 {
		c.Categories = doc.Categories
	}
	return nil
}

func (c *Config) loadServices() error {
	if c.General.ServicesFile == "" {
		return nil
	}
	data, err := os.ReadFile(ExpandPath(c.General.ServicesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var doc servicesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing services file: %w", err)
	}
	if len(doc.Services) > 0 {
		c.Services = doc.Services
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "app-forge", "config.toml")
}

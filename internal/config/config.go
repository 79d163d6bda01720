// Package config loads prodassist configuration from YAML with environment
// variable overrides. A missing config file is not an error: defaults apply,
// and the environment can supply everything a deployment needs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all prodassist configuration.
type Config struct {
	// LLM configuration (Gemini)
	LLM LLMConfig `yaml:"llm"`

	// Repository analyzer (Codex CLI subprocess)
	Analyzer AnalyzerConfig `yaml:"analyzer"`

	// Git repository access
	Git GitConfig `yaml:"git"`

	// Conversation history bounds
	History HistoryConfig `yaml:"history"`

	// SQLite database
	Database DatabaseConfig `yaml:"database"`

	// Feature discovery pipeline
	Discovery DiscoveryConfig `yaml:"discovery"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the Gemini client.
type LLMConfig struct {
	APIKey        string `yaml:"api_key"`
	Model         string `yaml:"model"`
	FallbackModel string `yaml:"fallback_model"`
	Timeout       string `yaml:"timeout"`
}

// AnalyzerConfig configures the Codex CLI invocation used for deep
// repository analysis.
type AnalyzerConfig struct {
	Command        string `yaml:"command"`
	Model          string `yaml:"model"`
	FallbackModel  string `yaml:"fallback_model"`
	Sandbox        string `yaml:"sandbox"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// GitConfig configures where project repositories are cloned and which
// branch is checked out.
type GitConfig struct {
	BasePath string `yaml:"base_path"`
	Branch   string `yaml:"branch"`
}

// HistoryConfig bounds persisted conversation history.
type HistoryConfig struct {
	MaxMessages int `yaml:"max_messages"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// DiscoveryConfig configures the feature discovery pipeline.
type DiscoveryConfig struct {
	MaxCapabilities int `yaml:"max_capabilities"`
	MaxConcurrent   int `yaml:"max_concurrent"`
}

// LoggingConfig configures the categorized file logger.
type LoggingConfig struct {
	Dir     string `yaml:"dir"`
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:         "gemini-2.5-flash",
			FallbackModel: "gemini-2.5-pro",
			Timeout:       "120s",
		},
		Analyzer: AnalyzerConfig{
			Command:        "codex",
			Model:          "gpt-5-codex",
			FallbackModel:  "gpt-5",
			Sandbox:        "read-only",
			TimeoutSeconds: 300,
		},
		Git: GitConfig{
			BasePath: defaultRepoBase(),
			Branch:   "main",
		},
		History: HistoryConfig{
			MaxMessages: 20,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(defaultStateDir(), "prodassist.db"),
		},
		Discovery: DiscoveryConfig{
			MaxCapabilities: 50,
			MaxConcurrent:   1,
		},
		Logging: LoggingConfig{
			Dir:   filepath.Join(defaultStateDir(), "logs"),
			Level: "info",
		},
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".prodassist"
	}
	return filepath.Join(home, ".prodassist")
}

func defaultRepoBase() string {
	return filepath.Join(defaultStateDir(), "repos")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(defaultStateDir(), "config.yaml")
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file, creating the directory.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides. Environment
// always wins over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("GEMINI_FALLBACK_MODEL"); v != "" {
		c.LLM.FallbackModel = v
	}
	if v := os.Getenv("CODEX_MODEL"); v != "" {
		c.Analyzer.Model = v
	}
	if v := os.Getenv("CODEX_FALLBACK_MODEL"); v != "" {
		c.Analyzer.FallbackModel = v
	}
	if v := os.Getenv("GIT_REPO_BASE_PATH"); v != "" {
		c.Git.BasePath = v
	}
	if v := os.Getenv("GIT_BRANCH"); v != "" {
		c.Git.Branch = v
	}
	if v := os.Getenv("MAX_CONVERSATION_HISTORY_MESSAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.History.MaxMessages = n
		}
	}
	if v := os.Getenv("PRODASSIST_DB_PATH"); v != "" {
		c.Database.Path = v
	}
}

// GetLLMTimeout parses the LLM timeout, defaulting to 120s on bad input.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// GetAnalyzerTimeout returns the analyzer subprocess timeout, defaulting to
// five minutes on non-positive input.
func (c *Config) GetAnalyzerTimeout() time.Duration {
	if c.Analyzer.TimeoutSeconds <= 0 {
		return 300 * time.Second
	}
	return time.Duration(c.Analyzer.TimeoutSeconds) * time.Second
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("Gemini API key not configured (set GEMINI_API_KEY)")
	}
	if c.Analyzer.Command == "" {
		return fmt.Errorf("analyzer command not configured")
	}
	if c.Git.BasePath == "" {
		return fmt.Errorf("repository base path not configured (set GIT_REPO_BASE_PATH)")
	}
	return nil
}

// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

// Package config handles loading and validating mailbox monitor configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	// Email configures the IMAP mailbox to watch.
	Email EmailConfig `yaml:"email"`

	// AI configures the assignee prediction provider.
	AI AIConfig `yaml:"ai"`

	// Tracker configures the issue tracker used for reassignment.
	Tracker TrackerConfig `yaml:"tracker"`

	// App contains polling and decision settings.
	App AppConfig `yaml:"app"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// EmailConfig holds IMAP connection settings.
type EmailConfig struct {
	IMAPServer   string `yaml:"imap_server"`
	IMAPPort     int    `yaml:"imap_port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Mailbox      string `yaml:"mailbox"`
	SenderFilter string `yaml:"sender_filter"`
	MaxPerCycle  int    `yaml:"max_per_cycle"`
	Timeout      int    `yaml:"timeout"` // seconds
}

// AIConfig holds prediction provider settings.
type AIConfig struct {
	Provider     string `yaml:"provider"` // "http" or "gemini"
	APIURL       string `yaml:"api_url"`
	APIKey       string `yaml:"api_key"`
	Timeout      int    `yaml:"timeout"` // seconds
	MaxRetries   int    `yaml:"max_retries"`
	Model        string `yaml:"model,omitempty"`
	GeminiAPIKey string `yaml:"gemini_api_key,omitempty"`
}

// TrackerConfig holds issue tracker settings.
type TrackerConfig struct {
	Provider    string `yaml:"provider"` // "gitlab" or "github"
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	GitHubToken string `yaml:"github_token,omitempty"`
	Timeout     int    `yaml:"timeout"` // seconds
	MaxRetries  int    `yaml:"max_retries"`
}

// AppConfig holds polling and decision settings.
type AppConfig struct {
	CheckInterval int      `yaml:"check_interval"` // seconds
	MinConfidence float64  `yaml:"min_confidence"`
	DryRun        bool     `yaml:"dry_run"`
	ItemDelayMS   int      `yaml:"item_delay_ms"`
	Workflow      string   `yaml:"workflow,omitempty"`
	Steps         []string `yaml:"steps,omitempty"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr,omitempty"`
}

// envKeys maps the supported environment variables to config keys.
var envKeys = map[string]string{
	"IMAP_SERVER":          "email.imap_server",
	"IMAP_PORT":            "email.imap_port",
	"EMAIL_USERNAME":       "email.username",
	"EMAIL_PASSWORD":       "email.password",
	"EMAIL_MAILBOX":        "email.mailbox",
	"EMAIL_SENDER_FILTER":  "email.sender_filter",
	"EMAIL_MAX_PER_CYCLE":  "email.max_per_cycle",
	"AI_PROVIDER":          "ai.provider",
	"AI_API_URL":           "ai.api_url",
	"AI_API_KEY":           "ai.api_key",
	"AI_API_TIMEOUT":       "ai.timeout",
	"AI_MAX_RETRIES":       "ai.max_retries",
	"GEMINI_API_KEY":       "ai.gemini_api_key",
	"GEMINI_MODEL":         "ai.model",
	"TRACKER_PROVIDER":     "tracker.provider",
	"GITLAB_URL":           "tracker.url",
	"GITLAB_PRIVATE_TOKEN": "tracker.token",
	"GITHUB_TOKEN":         "tracker.github_token",
	"TRACKER_TIMEOUT":      "tracker.timeout",
	"CHECK_INTERVAL":       "app.check_interval",
	"MIN_CONFIDENCE":       "app.min_confidence",
	"DRY_RUN":              "app.dry_run",
	"WORKFLOW":             "app.workflow",
	"LOG_LEVEL":            "logging.level",
	"LOG_FORMAT":           "logging.format",
	"METRICS_ADDR":         "metrics.listen_addr",
}

// Load reads an optional config file, expands environment variables in it,
// overlays the supported environment variables and applies defaults.
// An empty path loads from the environment only.
func Load(path string) (*Config, error) {
	var cfg *Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if cfg, err = parseRaw(data); err != nil {
			return nil, err
		}
	} else {
		cfg = &Config{}
	}

	if err := overlayEnv(cfg); err != nil {
		return nil, err
	}

	// Apply defaults
	cfg.applyDefaults()

	return cfg, nil
}

// parseRaw parses YAML content after expanding environment variables.
func parseRaw(data []byte) (*Config, error) {
	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// overlayEnv overrides fields with the non-empty environment variables
// listed in envKeys.
func overlayEnv(cfg *Config) error {
	k := koanf.New(".")
	if err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return envKeys[key], value
	}), nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return fmt.Errorf("failed to apply environment variables: %w", err)
	}
	return nil
}

// FindConfigPath searches for a config file in standard locations.
func FindConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	// Search in common locations
	candidates := []string{
		"mailbox-monitor.yaml",
		"mailbox-monitor.yml",
		".mailbox-monitor.yaml",
		"config/mailbox-monitor.yaml",
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			abs, _ := filepath.Abs(c)
			return abs
		}
	}

	return ""
}

// applyDefaults sets default values for unset fields.
func (c *Config) applyDefaults() {
	if c.Email.IMAPPort == 0 {
		c.Email.IMAPPort = 993
	}
	if c.Email.Mailbox == "" {
		c.Email.Mailbox = "INBOX"
	}
	if c.Email.SenderFilter == "" {
		c.Email.SenderFilter = "gitlab"
	}
	if c.Email.MaxPerCycle == 0 {
		c.Email.MaxPerCycle = 25
	}
	if c.Email.Timeout == 0 {
		c.Email.Timeout = 30
	}

	if c.AI.Provider == "" {
		c.AI.Provider = "http"
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 30
	}
	if c.AI.MaxRetries == 0 {
		c.AI.MaxRetries = 2
	}
	if c.AI.Provider == "gemini" && c.AI.Model == "" {
		c.AI.Model = "gemini-2.0-flash-lite"
	}

	if c.Tracker.Provider == "" {
		c.Tracker.Provider = "gitlab"
	}
	if c.Tracker.Provider == "github" && c.Tracker.Token == "" {
		c.Tracker.Token = c.Tracker.GitHubToken
	}
	if c.Tracker.Timeout == 0 {
		c.Tracker.Timeout = 30
	}
	if c.Tracker.MaxRetries == 0 {
		c.Tracker.MaxRetries = 2
	}

	if c.App.CheckInterval == 0 {
		c.App.CheckInterval = 60
	}
	if c.App.MinConfidence == 0 {
		c.App.MinConfidence = 0.7
	}
	if c.App.ItemDelayMS == 0 {
		c.App.ItemDelayMS = 1000
	}
	if c.App.Workflow == "" {
		c.App.Workflow = "auto-assign"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Validate reports every missing or invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	require := func(value, name string) {
		if strings.TrimSpace(value) == "" {
			problems = append(problems, name+" is required")
		}
	}

	require(c.Email.IMAPServer, "email.imap_server")
	require(c.Email.Username, "email.username")
	require(c.Email.Password, "email.password")

	switch c.AI.Provider {
	case "http":
		require(c.AI.APIURL, "ai.api_url")
	case "gemini":
		require(c.AI.GeminiAPIKey, "ai.gemini_api_key")
	default:
		problems = append(problems, fmt.Sprintf("ai.provider %q is not supported (use http or gemini)", c.AI.Provider))
	}

	switch c.Tracker.Provider {
	case "gitlab":
		require(c.Tracker.URL, "tracker.url")
		require(c.Tracker.Token, "tracker.token")
	case "github":
		require(c.Tracker.Token, "tracker.token")
	default:
		problems = append(problems, fmt.Sprintf("tracker.provider %q is not supported (use gitlab or github)", c.Tracker.Provider))
	}

	if c.App.MinConfidence < 0 || c.App.MinConfidence > 1 {
		problems = append(problems, fmt.Sprintf("app.min_confidence must be within [0,1], got %g", c.App.MinConfidence))
	}
	if c.Email.IMAPPort <= 0 || c.Email.IMAPPort > 65535 {
		problems = append(problems, fmt.Sprintf("email.imap_port %d is out of range", c.Email.IMAPPort))
	}
	if c.App.CheckInterval < 0 {
		problems = append(problems, "app.check_interval must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// CheckInterval returns the polling interval.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.App.CheckInterval) * time.Second
}

// ItemDelay returns the pause between processed emails.
func (c *Config) ItemDelay() time.Duration {
	return time.Duration(c.App.ItemDelayMS) * time.Millisecond
}

// AITimeout returns the per-request prediction timeout.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.Timeout) * time.Second
}

// TrackerTimeout returns the per-request issue tracker timeout.
func (c *Config) TrackerTimeout() time.Duration {
	return time.Duration(c.Tracker.Timeout) * time.Second
}

// EmailTimeout returns the IMAP command timeout.
func (c *Config) EmailTimeout() time.Duration {
	return time.Duration(c.Email.Timeout) * time.Second
}

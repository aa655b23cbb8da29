// Package config loads and validates the deskbot configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Config is the root configuration for deskbot.
type Config struct {
	General   GeneralConfig   `json:"general"`
	HTTP      HTTPConfig      `json:"http"`
	Slack     SlackConfig     `json:"slack"`
	Store     StoreConfig     `json:"store"`
	Reminders RemindersConfig `json:"reminders"`
	Checkins  CheckinsConfig  `json:"checkins"`
	Metrics   MetricsConfig   `json:"metrics"`
}

type GeneralConfig struct {
	LogLevel string `json:"logLevel"`
	LogFile  string `json:"logFile,omitempty"` // optional log file path
}

type HTTPConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// SlackConfig holds the inbound verification token and the optional
// single-tenant fallback credential. Tokens usually arrive through env
// expansion (${SLACK_VERIFICATION_TOKEN}) rather than literal values.
type SlackConfig struct {
	VerificationToken string `json:"verificationToken"`
	DefaultBotToken   string `json:"defaultBotToken,omitempty"`
	DefaultTeamName   string `json:"defaultTeamName,omitempty"`
	WelcomeText       string `json:"welcomeText,omitempty"`
}

type StoreConfig struct {
	DBPath    string `json:"dbPath"`
	TopicsDir string `json:"topicsDir,omitempty"` // YAML topic seed files
}

type RemindersConfig struct {
	// Timezone is the fixed display timezone for rendered clock times,
	// independent of where the server runs.
	Timezone string `json:"timezone"`
}

// CheckinsConfig configures recurring check-in prompts.
type CheckinsConfig struct {
	Enabled bool          `json:"enabled"`
	Tasks   []CheckinTask `json:"tasks,omitempty"`
}

type CheckinTask struct {
	ID        string `json:"id"`
	TeamID    string `json:"teamId,omitempty"` // empty: use the default credential
	ChannelID string `json:"channelId"`
	IntervalS int    `json:"intervalSeconds"`
	Enabled   bool   `json:"enabled"`
}

type MetricsConfig struct {
	Enabled bool `json:"enabled"`
}

// DefaultConfigDir returns the default config directory (~/.deskbot).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".deskbot"
	}
	return filepath.Join(home, ".deskbot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	// Defaults carry ${VAR} placeholders too; the file-level expansion
	// above only covers keys the file actually sets.
	cfg.Slack.VerificationToken = ExpandEnvVars(cfg.Slack.VerificationToken)
	cfg.Slack.DefaultBotToken = ExpandEnvVars(cfg.Slack.DefaultBotToken)

	cfg.Store.DBPath = ExpandPath(cfg.Store.DBPath)
	cfg.Store.TopicsDir = ExpandPath(cfg.Store.TopicsDir)
	cfg.General.LogFile = ExpandPath(cfg.General.LogFile)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is
// unset or empty. Unresolvable references collapse to the empty string
// so a missing optional secret never survives as a literal "${...}"
// credential.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		val, exists := os.LookupEnv(groups[1])
		if !exists || val == "" {
			if len(groups) >= 3 {
				return groups[2]
			}
			return ""
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.HTTP.Port < 0 || cfg.HTTP.Port > 65535 {
		errs = append(errs, "http.port must be between 0 and 65535")
	}

	if cfg.Reminders.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Reminders.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("reminders.timezone: unknown timezone %q", cfg.Reminders.Timezone))
		}
	}

	for _, task := range cfg.Checkins.Tasks {
		if task.ID == "" {
			errs = append(errs, "checkins.tasks: every task needs an id")
			continue
		}
		if task.ChannelID == "" {
			errs = append(errs, fmt.Sprintf("checkins.tasks[%s]: channelId is required", task.ID))
		}
		if task.IntervalS < 60 {
			errs = append(errs, fmt.Sprintf("checkins.tasks[%s]: intervalSeconds must be >= 60", task.ID))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Location resolves the configured display timezone, defaulting to UTC.
func (c *Config) Location() *time.Location {
	if c.Reminders.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Reminders.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

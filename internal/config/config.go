package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the main Sparr configuration.
type Config struct {
	// Provider holds the active LLM backend profile
	Provider ProviderConfig `json:"provider" mapstructure:"provider"`

	// Debate holds session manager tuning
	Debate DebateConfig `json:"debate" mapstructure:"debate"`

	// Topics holds topic generator settings
	Topics TopicsConfig `json:"topics" mapstructure:"topics"`

	// Reaper holds idle-session reaper settings
	Reaper ReaperConfig `json:"reaper" mapstructure:"reaper"`

	// Archive holds transcript archive settings
	Archive ArchiveConfig `json:"archive" mapstructure:"archive"`

	// Ops holds the metrics/health listener settings
	Ops OpsConfig `json:"ops" mapstructure:"ops"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ProviderConfig selects and authenticates the LLM backend.
type ProviderConfig struct {
	Provider string `json:"provider" mapstructure:"provider"` // anthropic, openai, gemini
	APIKey   string `json:"api_key" mapstructure:"api_key"`
	Model    string `json:"model" mapstructure:"model"`
}

// DebateConfig tunes the session manager.
type DebateConfig struct {
	CompactionThreshold int     `json:"compaction_threshold" mapstructure:"compaction_threshold"` // raw turns before compaction
	RetainTurns         int     `json:"retain_turns" mapstructure:"retain_turns"`                 // raw turns kept verbatim after compaction
	ProviderTimeout     int     `json:"provider_timeout" mapstructure:"provider_timeout"`         // seconds
	Temperature         float64 `json:"temperature" mapstructure:"temperature"`
	MaxReplyTokens      int     `json:"max_reply_tokens" mapstructure:"max_reply_tokens"`
	SummaryWordBudget   int     `json:"summary_word_budget" mapstructure:"summary_word_budget"`
}

// TopicsConfig tunes the topic generator.
type TopicsConfig struct {
	Count int `json:"count" mapstructure:"count"`
}

// ReaperConfig tunes the idle-session reaper.
type ReaperConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Schedule string `json:"schedule" mapstructure:"schedule"` // cron spec, e.g. "@every 5m"
	MaxIdle  int    `json:"max_idle" mapstructure:"max_idle"` // minutes
}

// ArchiveConfig tunes the transcript archive.
type ArchiveConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// OpsConfig holds the metrics/health HTTP listener settings.
type OpsConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Provider: "gemini",
		},
		Debate: DebateConfig{
			CompactionThreshold: 20,
			RetainTurns:         10,
			ProviderTimeout:     45,
			Temperature:         0.8,
			MaxReplyTokens:      1024,
			SummaryWordBudget:   250,
		},
		Topics: TopicsConfig{
			Count: 5,
		},
		Reaper: ReaperConfig{
			Enabled:  true,
			Schedule: "@every 5m",
			MaxIdle:  60,
		},
		Archive: ArchiveConfig{
			Enabled: false,
		},
		Ops: OpsConfig{
			Host: "127.0.0.1",
			Port: 9190,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Redaction: true,
		},
	}
}

// String returns a JSON representation of the config.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Provider.Provider {
	case "anthropic", "openai", "gemini":
	case "":
		return fmt.Errorf("provider is required")
	default:
		return fmt.Errorf("invalid provider %s (must be: anthropic, openai, gemini)", c.Provider.Provider)
	}
	if c.Provider.APIKey == "" {
		return fmt.Errorf("provider api_key is required")
	}

	if c.Debate.CompactionThreshold <= 0 {
		return fmt.Errorf("debate compaction_threshold must be positive")
	}
	if c.Debate.RetainTurns <= 0 {
		return fmt.Errorf("debate retain_turns must be positive")
	}
	if c.Debate.RetainTurns >= c.Debate.CompactionThreshold {
		return fmt.Errorf("debate retain_turns (%d) must be below compaction_threshold (%d)",
			c.Debate.RetainTurns, c.Debate.CompactionThreshold)
	}
	if c.Debate.ProviderTimeout <= 0 {
		return fmt.Errorf("debate provider_timeout must be positive")
	}

	if c.Topics.Count <= 0 {
		return fmt.Errorf("topics count must be positive")
	}

	if c.Reaper.Enabled {
		if c.Reaper.Schedule == "" {
			return fmt.Errorf("reaper schedule is required when the reaper is enabled")
		}
		if c.Reaper.MaxIdle <= 0 {
			return fmt.Errorf("reaper max_idle must be positive")
		}
	}

	if c.Archive.Enabled && c.Archive.Path == "" {
		return fmt.Errorf("archive path is required when the archive is enabled")
	}

	if c.Ops.Port <= 0 || c.Ops.Port > 65535 {
		return fmt.Errorf("ops port %d out of range", c.Ops.Port)
	}

	return nil
}

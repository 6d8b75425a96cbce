package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Provider.APIKey = "test-key"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "gemini", cfg.Provider.Provider)
	assert.Equal(t, 20, cfg.Debate.CompactionThreshold)
	assert.Equal(t, 10, cfg.Debate.RetainTurns)
	assert.Equal(t, 45, cfg.Debate.ProviderTimeout)
	assert.Equal(t, 0.8, cfg.Debate.Temperature)
	assert.Equal(t, 1024, cfg.Debate.MaxReplyTokens)
	assert.Equal(t, 250, cfg.Debate.SummaryWordBudget)
	assert.Equal(t, 5, cfg.Topics.Count)
	assert.True(t, cfg.Reaper.Enabled)
	assert.Equal(t, "@every 5m", cfg.Reaper.Schedule)
	assert.Equal(t, 60, cfg.Reaper.MaxIdle)
	assert.False(t, cfg.Archive.Enabled)
	assert.Equal(t, 9190, cfg.Ops.Port)
	assert.True(t, cfg.Logging.Redaction)
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing provider", func(c *Config) { c.Provider.Provider = "" }},
		{"unknown provider", func(c *Config) { c.Provider.Provider = "watson" }},
		{"missing api key", func(c *Config) { c.Provider.APIKey = "" }},
		{"zero threshold", func(c *Config) { c.Debate.CompactionThreshold = 0 }},
		{"zero retain", func(c *Config) { c.Debate.RetainTurns = 0 }},
		{"retain at threshold", func(c *Config) { c.Debate.RetainTurns = c.Debate.CompactionThreshold }},
		{"retain above threshold", func(c *Config) { c.Debate.RetainTurns = c.Debate.CompactionThreshold + 5 }},
		{"zero timeout", func(c *Config) { c.Debate.ProviderTimeout = 0 }},
		{"zero topic count", func(c *Config) { c.Topics.Count = 0 }},
		{"reaper without schedule", func(c *Config) { c.Reaper.Schedule = "" }},
		{"reaper without max idle", func(c *Config) { c.Reaper.MaxIdle = 0 }},
		{"archive without path", func(c *Config) { c.Archive.Enabled = true; c.Archive.Path = "" }},
		{"ops port out of range", func(c *Config) { c.Ops.Port = 70000 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateDisabledReaperSkipsReaperChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Reaper.Enabled = false
	cfg.Reaper.Schedule = ""
	cfg.Reaper.MaxIdle = 0
	require.NoError(t, cfg.Validate())
}

func TestConfigStringIsJSON(t *testing.T) {
	s := validConfig().String()
	assert.Contains(t, s, `"provider"`)
	assert.Contains(t, s, `"compaction_threshold"`)
}

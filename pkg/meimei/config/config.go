// Package config defines the configuration surface, read once at startup.
// The environment carries secrets and runtime toggles; an optional YAML file
// overlays trigger lists and persona tuning.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// defaultCooldown applies when reply-all mode is off and no explicit
// cooldown was configured.
const defaultCooldown = 15 * time.Second

// Config holds all settings. Read-only after Load.
type Config struct {
	// DiscordToken authenticates against the messaging gateway.
	DiscordToken string `env:"DISCORD_TOKEN,required,notEmpty"`

	// GeminiAPIKey enables the generation backend. Empty disables
	// generation entirely; the bot then answers with fallback text.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// GeminiModel is the backend model name.
	GeminiModel string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`

	// ReplyAll makes the bot answer every normal message instead of only
	// mentions, greetings, and keywords.
	ReplyAll bool `env:"MEIMEI_REPLY_ALL" envDefault:"true"`

	// CooldownSeconds overrides the reply cooldown. Negative means derive:
	// 0 when ReplyAll, otherwise the fixed default.
	CooldownSeconds float64 `env:"MEIMEI_COOLDOWN_SECONDS" envDefault:"-1"`

	// MemoryDir is where per-channel memory logs live.
	MemoryDir string `env:"MEIMEI_MEMORY_DIR" envDefault:"data"`

	// Port is the keepalive HTTP port.
	Port int `env:"PORT" envDefault:"10000"`

	// LogLevel is "debug", "info", "warn", or "error".
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogFormat is "text" or "json".
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Greetings and Keywords override the trigger token lists.
	Greetings []string `yaml:"greetings"`
	Keywords  []string `yaml:"keywords"`
}

// overlay is the YAML file shape. Pointer fields distinguish "absent" from
// zero values.
type overlay struct {
	ReplyAll        *bool    `yaml:"reply_all"`
	CooldownSeconds *float64 `yaml:"cooldown_seconds"`
	MemoryDir       string   `yaml:"memory_dir"`
	Greetings       []string `yaml:"greetings"`
	Keywords        []string `yaml:"keywords"`
}

// Load parses the environment and, when path is non-empty, applies the YAML
// overlay on top.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		var o overlay
		if err := yaml.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		cfg.apply(&o)
	}

	return cfg, nil
}

// apply merges the YAML overlay into the env-derived config.
func (c *Config) apply(o *overlay) {
	if o.ReplyAll != nil {
		c.ReplyAll = *o.ReplyAll
	}
	if o.CooldownSeconds != nil {
		c.CooldownSeconds = *o.CooldownSeconds
	}
	if o.MemoryDir != "" {
		c.MemoryDir = o.MemoryDir
	}
	if len(o.Greetings) > 0 {
		c.Greetings = o.Greetings
	}
	if len(o.Keywords) > 0 {
		c.Keywords = o.Keywords
	}
}

// Cooldown returns the effective reply cooldown: the explicit value when
// set, otherwise zero in reply-all mode and the fixed default otherwise.
func (c *Config) Cooldown() time.Duration {
	if c.CooldownSeconds >= 0 {
		return time.Duration(c.CooldownSeconds * float64(time.Second))
	}
	if c.ReplyAll {
		return 0
	}
	return defaultCooldown
}

// GenerationEnabled reports whether a backend API key is configured.
func (c *Config) GenerationEnabled() bool {
	return c.GeminiAPIKey != ""
}

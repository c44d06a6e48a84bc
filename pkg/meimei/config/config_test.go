package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "test-token")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.ReplyAll {
		t.Error("ReplyAll should default to true")
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.MemoryDir != "data" {
		t.Errorf("MemoryDir = %q", cfg.MemoryDir)
	}
	if cfg.Port != 10000 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.GenerationEnabled() {
		t.Error("generation should be disabled without an API key")
	}
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	if _, err := Load(""); err == nil {
		t.Fatal("expected an error without DISCORD_TOKEN")
	}
}

func TestCooldown_Derivation(t *testing.T) {
	tests := []struct {
		name     string
		replyAll bool
		seconds  float64
		want     time.Duration
	}{
		{"reply-all derives zero", true, -1, 0},
		{"keyword mode derives default", false, -1, 15 * time.Second},
		{"explicit value wins", true, 30, 30 * time.Second},
		{"explicit zero wins", false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ReplyAll: tt.replyAll, CooldownSeconds: tt.seconds}
			if got := cfg.Cooldown(); got != tt.want {
				t.Errorf("Cooldown() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "meimei.yaml")
	data := []byte("reply_all: false\ncooldown_seconds: 5\ngreetings: [oi, ola]\nkeywords: [gold]\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing overlay: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ReplyAll {
		t.Error("overlay should disable reply-all")
	}
	if got := cfg.Cooldown(); got != 5*time.Second {
		t.Errorf("Cooldown() = %v, want 5s", got)
	}
	if len(cfg.Greetings) != 2 || cfg.Greetings[0] != "oi" {
		t.Errorf("Greetings = %v", cfg.Greetings)
	}
	if len(cfg.Keywords) != 1 || cfg.Keywords[0] != "gold" {
		t.Errorf("Keywords = %v", cfg.Keywords)
	}
}

func TestLoad_BadOverlayPath(t *testing.T) {
	setRequiredEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

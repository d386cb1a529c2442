package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"empty address", func(cfg *Config) { cfg.HTTP.Address = "" }},
		{"damping too high", func(cfg *Config) { cfg.Pipeline.Damping = 1.0 }},
		{"negative blend weight", func(cfg *Config) { cfg.Pipeline.BlendWeight = -0.1 }},
		{"zero iterations", func(cfg *Config) { cfg.Pipeline.MaxIterations = 0 }},
		{"maxTopK below defaultTopK", func(cfg *Config) { cfg.Pipeline.MaxTopK = 1 }},
		{"zero generation timeout", func(cfg *Config) { cfg.Pipeline.GenerationTimeout = 0 }},
		{"valkey enabled without addr", func(cfg *Config) { cfg.Cache.Valkey.Enabled = true }},
	}
	for _, tc := range cases {
		cfg := defaultConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := []byte("http:\n  address: \":9999\"\npipeline:\n  defaultTopK: 5\n  generationTimeout: 5s\n")
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PIPELINE_BLEND_WEIGHT", "0.7")
	t.Setenv("CACHE_TTL", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Address != ":9999" {
		t.Fatalf("expected file address, got %q", cfg.HTTP.Address)
	}
	if cfg.Pipeline.DefaultTopK != 5 {
		t.Fatalf("expected defaultTopK 5, got %d", cfg.Pipeline.DefaultTopK)
	}
	if cfg.Pipeline.GenerationTimeout != 5*time.Second {
		t.Fatalf("expected generationTimeout 5s, got %s", cfg.Pipeline.GenerationTimeout)
	}
	if cfg.Pipeline.BlendWeight != 0.7 {
		t.Fatalf("expected env override blendWeight 0.7, got %f", cfg.Pipeline.BlendWeight)
	}
	if cfg.Cache.TTL != 90*time.Second {
		t.Fatalf("expected env override ttl 90s, got %s", cfg.Cache.TTL)
	}
	// Untouched knobs keep their defaults.
	if cfg.Pipeline.Damping != 0.85 {
		t.Fatalf("expected default damping, got %f", cfg.Pipeline.Damping)
	}
}

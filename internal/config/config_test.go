package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig tests the default values.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", cfg.Model, DefaultModel)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.MaxQuestions != DefaultMaxQuestions {
		t.Errorf("MaxQuestions = %d, want %d", cfg.MaxQuestions, DefaultMaxQuestions)
	}
	if cfg.MaxFollowUps != DefaultMaxFollowUps {
		t.Errorf("MaxFollowUps = %d, want %d", cfg.MaxFollowUps, DefaultMaxFollowUps)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

// TestLoadFromMissingFile tests that a missing config file yields defaults.
func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q, want default", cfg.Model)
	}
}

// TestSaveAndLoadRoundTrip tests persistence.
func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.Model = "gemini-2.5-pro"
	cfg.Port = "9090"
	cfg.MaxFollowUps = 3

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if loaded.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q, want %q", loaded.Model, "gemini-2.5-pro")
	}
	if loaded.Port != "9090" {
		t.Errorf("Port = %q, want %q", loaded.Port, "9090")
	}
	if loaded.MaxFollowUps != 3 {
		t.Errorf("MaxFollowUps = %d, want 3", loaded.MaxFollowUps)
	}
}

// TestLoadFromInvalidJSON tests that a corrupt config file is an error, not
// silently replaced with defaults.
func TestLoadFromInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() expected error for invalid JSON")
	}
}

// TestValidate tests the invalid configurations.
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "Empty model", mutate: func(c *Config) { c.Model = "" }},
		{name: "Zero questions", mutate: func(c *Config) { c.MaxQuestions = 0 }},
		{name: "Missing key file", mutate: func(c *Config) { c.APIKeyFile = "/does/not/exist" }},
		{name: "Missing gmail credentials", mutate: func(c *Config) { c.GmailCredentialsPath = "/does/not/exist" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

// TestResolveAPIKey tests the key resolution order.
func TestResolveAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("gemini", "")

	cfg := DefaultConfig()

	if _, err := cfg.ResolveAPIKey(); err == nil {
		t.Error("ResolveAPIKey() expected error with no key configured")
	}

	keyFile := filepath.Join(t.TempDir(), "key.txt")
	if err := os.WriteFile(keyFile, []byte("file-key\n"), 0600); err != nil {
		t.Fatalf("writing key file: %v", err)
	}
	cfg.APIKeyFile = keyFile

	key, err := cfg.ResolveAPIKey()
	if err != nil {
		t.Fatalf("ResolveAPIKey() error = %v", err)
	}
	if key != "file-key" {
		t.Errorf("key = %q, want %q", key, "file-key")
	}

	t.Setenv("gemini", "dotenv-key")
	key, err = cfg.ResolveAPIKey()
	if err != nil {
		t.Fatalf("ResolveAPIKey() error = %v", err)
	}
	if key != "dotenv-key" {
		t.Errorf("key = %q, want legacy env to beat the key file", key)
	}

	t.Setenv("GEMINI_API_KEY", "env-key")
	key, err = cfg.ResolveAPIKey()
	if err != nil {
		t.Fatalf("ResolveAPIKey() error = %v", err)
	}
	if key != "env-key" {
		t.Errorf("key = %q, want GEMINI_API_KEY to win", key)
	}
}

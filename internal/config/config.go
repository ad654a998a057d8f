package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = "gemini-2.5-flash-lite"
	// DefaultMaxQuestions caps how many main questions one interview asks.
	DefaultMaxQuestions = 5
	// DefaultMaxFollowUps caps consecutive follow-ups on a single question.
	DefaultMaxFollowUps = 2
)

// Config holds application configuration.
type Config struct {
	Model                string  `json:"model"`
	Temperature          float32 `json:"temperature"`
	ExtractDir           string  `json:"extract_dir"`
	Port                 string  `json:"port"`
	MaxQuestions         int     `json:"max_questions"`
	MaxFollowUps         int     `json:"max_follow_ups"`
	APIKeyFile           string  `json:"api_key_file"`
	GmailCredentialsPath string  `json:"gmail_credentials_path"`
}

// DefaultConfig returns a new config with default values.
func DefaultConfig() *Config {
	return &Config{
		Model:        DefaultModel,
		Temperature:  0.6,
		ExtractDir:   "extracted_resumes",
		Port:         "8080",
		MaxQuestions: DefaultMaxQuestions,
		MaxFollowUps: DefaultMaxFollowUps,
	}
}

// GetConfigPath returns the path to the configuration file.
// On Windows: %APPDATA%/Interviewer/config.json
// On Unix: ~/.config/Interviewer/config.json
func GetConfigPath() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		// Windows
		configDir = filepath.Join(os.Getenv("APPDATA"), "Interviewer")
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "Interviewer")
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load loads configuration from the default config path.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path. A missing file yields
// the defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the default config path.
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}

	if c.MaxQuestions <= 0 {
		return fmt.Errorf("max_questions must be positive")
	}

	if c.APIKeyFile != "" {
		if _, err := os.Stat(c.APIKeyFile); err != nil {
			return fmt.Errorf("api key file not found: %w", err)
		}
	}

	if c.GmailCredentialsPath != "" {
		if _, err := os.Stat(c.GmailCredentialsPath); err != nil {
			return fmt.Errorf("gmail credentials file not found: %w", err)
		}
	}

	return nil
}

// LoadDotEnv loads a .env file from the working directory when present.
// A missing file is not an error.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// ResolveAPIKey returns the Gemini API key. Resolution order: GEMINI_API_KEY
// environment variable, the legacy "gemini" variable from .env, then the
// configured key file. The process cannot run without it.
func (c *Config) ResolveAPIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		return key, nil
	}

	if key := strings.TrimSpace(os.Getenv("gemini")); key != "" {
		return key, nil
	}

	if c.APIKeyFile != "" {
		data, err := os.ReadFile(c.APIKeyFile)
		if err != nil {
			return "", fmt.Errorf("failed to read api key file: %w", err)
		}
		if key := strings.TrimSpace(string(data)); key != "" {
			return key, nil
		}
		return "", fmt.Errorf("api key file %s is empty", c.APIKeyFile)
	}

	return "", fmt.Errorf("missing Gemini API key: add gemini=YOUR_KEY to .env or set GEMINI_API_KEY")
}

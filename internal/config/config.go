// Package config handles reading and writing ~/.prepdeck/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for ~/.prepdeck/config.yaml.
type Config struct {
	Version   int             `yaml:"version"`
	API       APIConfig       `yaml:"api"`
	Voice     VoiceConfig     `yaml:"voice"`
	Audio     AudioConfig     `yaml:"audio"`
	Interview InterviewConfig `yaml:"interview"`
}

// APIConfig points the client at the remote coaching service.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// VoiceConfig controls spoken question playback.
type VoiceConfig struct {
	Enabled         bool     `yaml:"enabled"`
	DeepgramKey     string   `yaml:"deepgram_key"`
	PreferredVoices []string `yaml:"preferred_voices"`
	PlayerCommand   string   `yaml:"player_command"` // reads raw 48kHz s16le mono PCM on stdin
}

// AudioConfig controls microphone capture for dictated answers.
type AudioConfig struct {
	RecordCommand string `yaml:"record_command"` // writes an audio container to stdout until killed
}

// InterviewConfig holds default settings for new sessions.
type InterviewConfig struct {
	TargetRole      string `yaml:"target_role"`
	Difficulty      string `yaml:"difficulty"` // easy | medium | hard
	CareerLevel     string `yaml:"career_level"`
	NumInterviewers int    `yaml:"num_interviewers"`
	DurationMinutes int    `yaml:"duration_minutes"`
}

// envOverrides are applied on top of the YAML file so tokens and keys can
// live in the environment instead of on disk.
type envOverrides struct {
	BaseURL     string `env:"PREPDECK_API_URL"`
	Token       string `env:"PREPDECK_API_TOKEN"`
	DeepgramKey string `env:"DEEPGRAM_API_KEY"`
	TargetRole  string `env:"PREPDECK_TARGET_ROLE"`
}

// configFile is the path relative to the config directory.
const configDir = ".prepdeck"
const configFile = "config.yaml"

// Dir returns the prepdeck config directory under the user's home directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// ReadConfig reads config.yaml from the given directory and applies
// environment overrides. dir is the .prepdeck directory itself.
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteConfig writes cfg to config.yaml in the given directory.
// Creates the directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func applyEnv(cfg *Config) error {
	var raw envOverrides
	if err := env.Parse(&raw); err != nil {
		return fmt.Errorf("environment variables are invalid: %w", err)
	}
	if raw.BaseURL != "" {
		cfg.API.BaseURL = raw.BaseURL
	}
	if raw.Token != "" {
		cfg.API.Token = raw.Token
	}
	if raw.DeepgramKey != "" {
		cfg.Voice.DeepgramKey = raw.DeepgramKey
	}
	if raw.TargetRole != "" {
		cfg.Interview.TargetRole = raw.TargetRole
	}
	return nil
}

// Validate checks values the TUI cannot recover from at runtime.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	switch c.Interview.Difficulty {
	case "easy", "medium", "hard":
	default:
		return fmt.Errorf("interview.difficulty must be easy, medium or hard, got %q", c.Interview.Difficulty)
	}
	if c.Interview.NumInterviewers < 1 || c.Interview.NumInterviewers > 3 {
		return fmt.Errorf("interview.num_interviewers must be between 1 and 3, got %d", c.Interview.NumInterviewers)
	}
	if c.Interview.DurationMinutes < 5 || c.Interview.DurationMinutes > 90 {
		return fmt.Errorf("interview.duration_minutes must be between 5 and 90, got %d", c.Interview.DurationMinutes)
	}
	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 60,
		},
		Voice: VoiceConfig{
			Enabled: true,
			PreferredVoices: []string{
				"Orion", "Asteria", "Arcas", "Athena", "Luna", "Perseus",
			},
			PlayerCommand: "aplay -q -f S16_LE -r 48000 -c 1 -t raw -",
		},
		Audio: AudioConfig{
			RecordCommand: "arecord -q -f S16_LE -r 16000 -c 1 -t wav -",
		},
		Interview: InterviewConfig{
			TargetRole:      "Software Engineer",
			Difficulty:      "medium",
			CareerLevel:     "Entry-level",
			NumInterviewers: 2,
			DurationMinutes: 20,
		},
	}
}

package config

import (
	"strings"
	"testing"

	"github.com/prepdeck-dev/prepdeck/internal/testutil"
)

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://coach.example.com"
	cfg.Interview.TargetRole = "Data Engineer"

	if err := WriteConfig(dir, cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	got, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if got.API.BaseURL != "https://coach.example.com" {
		t.Errorf("BaseURL = %q, want https://coach.example.com", got.API.BaseURL)
	}
	if got.Interview.TargetRole != "Data Engineer" {
		t.Errorf("TargetRole = %q, want Data Engineer", got.Interview.TargetRole)
	}
	if got.Interview.NumInterviewers != 2 {
		t.Errorf("NumInterviewers = %d, want 2", got.Interview.NumInterviewers)
	}
}

func TestReadConfigPartialFile(t *testing.T) {
	dir := testutil.TempConfigDir(t, map[string]string{
		"config.yaml": "api:\n  base_url: https://coach.example.com\ninterview:\n  difficulty: hard\n",
	})

	got, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if got.API.BaseURL != "https://coach.example.com" {
		t.Errorf("BaseURL = %q", got.API.BaseURL)
	}
	if got.Interview.Difficulty != "hard" {
		t.Errorf("Difficulty = %q", got.Interview.Difficulty)
	}
	// Keys absent from the file stay zero-valued.
	if got.Interview.NumInterviewers != 0 {
		t.Errorf("NumInterviewers = %d, want 0", got.Interview.NumInterviewers)
	}
}

func TestReadConfigMalformed(t *testing.T) {
	dir := testutil.TempConfigDir(t, map[string]string{
		"config.yaml": "api: [not a mapping\n",
	})
	if _, err := ReadConfig(dir); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestReadConfigMissing(t *testing.T) {
	if _, err := ReadConfig(t.TempDir()); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	if err := WriteConfig(dir, DefaultConfig()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	t.Setenv("PREPDECK_API_TOKEN", "tok-123")
	t.Setenv("DEEPGRAM_API_KEY", "dg-456")

	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.API.Token != "tok-123" {
		t.Errorf("Token = %q, want tok-123", cfg.API.Token)
	}
	if cfg.Voice.DeepgramKey != "dg-456" {
		t.Errorf("DeepgramKey = %q, want dg-456", cfg.Voice.DeepgramKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults pass", func(c *Config) {}, ""},
		{"missing base url", func(c *Config) { c.API.BaseURL = "" }, "base_url"},
		{"bad difficulty", func(c *Config) { c.Interview.Difficulty = "extreme" }, "difficulty"},
		{"too many interviewers", func(c *Config) { c.Interview.NumInterviewers = 5 }, "num_interviewers"},
		{"duration too short", func(c *Config) { c.Interview.DurationMinutes = 1 }, "duration_minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

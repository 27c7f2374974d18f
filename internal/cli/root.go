// Package cli defines Cobra command definitions for the prepdeck CLI.
// This file contains the root command, which launches the TUI.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/prepdeck-dev/prepdeck/internal/config"
	"github.com/prepdeck-dev/prepdeck/internal/log"
	"github.com/prepdeck-dev/prepdeck/internal/session"
	"github.com/prepdeck-dev/prepdeck/internal/tui"
	"github.com/prepdeck-dev/prepdeck/internal/tui/app"
)

var version = "dev" // set via ldflags at build time

var rootCmd = &cobra.Command{
	Use:   "prepdeck",
	Short: "Terminal client for AI mock-interview practice",
	Long: `Prepdeck runs live mock interviews from your terminal: a generated
panel asks questions under a countdown, evaluates your answers, and
produces a final report you can review or export later.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !tui.IsTTY() {
			return cmd.Help()
		}

		cfg, dir, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := log.NewLogger(dir)
		if err != nil {
			return fmt.Errorf("opening event log: %w", err)
		}

		archive, err := session.NewArchive(archivePath(dir))
		if err != nil {
			return fmt.Errorf("opening local archive: %w", err)
		}
		defer archive.Close()

		return tui.Run(app.New(cfg, logger, archive))
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads ~/.prepdeck/config.yaml, writing defaults on first run,
// and validates the result.
func loadConfig() (*config.Config, string, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.ReadConfig(dir)
	if err != nil {
		cfg = config.DefaultConfig()
		if writeErr := config.WriteConfig(dir, cfg); writeErr != nil {
			return nil, "", fmt.Errorf("writing default config: %w", writeErr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, dir, nil
}

func archivePath(dir string) string {
	return filepath.Join(dir, "archive.db")
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(exportCmd)
}

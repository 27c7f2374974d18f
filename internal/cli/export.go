package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prepdeck-dev/prepdeck/internal/report"
	"github.com/prepdeck-dev/prepdeck/internal/session"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a finished session as markdown",
	Long: `Export writes the archived transcript and final report of a completed
session to a markdown file. Sessions are archived locally when they finish,
so export works even after the remote copy is deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, dir, err := loadConfig()
		if err != nil {
			return err
		}

		archive, err := session.NewArchive(archivePath(dir))
		if err != nil {
			return fmt.Errorf("opening local archive: %w", err)
		}
		defer archive.Close()

		arch, err := archive.Get(args[0])
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}
		if arch == nil {
			return fmt.Errorf("session %s is not in the local archive", args[0])
		}

		out := exportDir
		if out == "" {
			out, err = os.Getwd()
			if err != nil {
				return err
			}
		}

		path, err := report.Write(out, arch)
		if err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "output", "o", "", "Directory to write the export into (default: current directory)")
}

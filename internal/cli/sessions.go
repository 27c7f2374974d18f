package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/prepdeck-dev/prepdeck/internal/api"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List past interview sessions",
	Long:  `Sessions prints the remote interview history without starting the TUI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		client := api.NewClient(cfg.API.BaseURL, cfg.API.Token, time.Duration(cfg.API.TimeoutSeconds)*time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		sessions, err := client.ListSessions(ctx)
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No past sessions.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tROLE\tDIFFICULTY\tPANEL\tRECOMMENDATION\tSUMMARY")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
				s.SessionID, s.TargetRole, s.Difficulty, s.NumInterviewers,
				orDash(s.HireRecommendation), clip(s.Summary, 60))
		}
		return w.Flush()
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// Package commands provides Bubble Tea commands for TUI operations.
package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/prepdeck-dev/prepdeck/internal/session"
	"github.com/prepdeck-dev/prepdeck/internal/tui"
)

const requestTimeout = 60 * time.Second

// LoadSessionsCmd fetches the session history.
// Returns SessionsLoadedMsg or SessionsErrorMsg.
func LoadSessionsCmd(cat *session.Catalog) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		sessions, err := cat.List(ctx)
		if err != nil {
			return tui.SessionsErrorMsg{Err: err}
		}
		return tui.SessionsLoadedMsg{Sessions: sessions}
	}
}

// StartSessionCmd requests a new session from the remote service.
// Returns SessionStartedMsg with a live controller, or StartErrorMsg.
func StartSessionCmd(cat *session.Catalog, settings session.Settings) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		ctrl, err := cat.Start(ctx, settings)
		if err != nil {
			return tui.StartErrorMsg{Err: err}
		}
		return tui.SessionStartedMsg{Controller: ctrl}
	}
}

// DeleteSessionCmd deletes a session after the console has confirmed with
// the user. Returns DeletedMsg to trigger a re-fetch, or DeleteErrorMsg.
func DeleteSessionCmd(cat *session.Catalog, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := cat.Delete(ctx, id); err != nil {
			return tui.DeleteErrorMsg{Err: err}
		}
		return tui.DeletedMsg{ID: id}
	}
}

// BootTickCmd advances the boot loader staging line while starting.
func BootTickCmd() tea.Cmd {
	return tea.Tick(600*time.Millisecond, func(time.Time) tea.Msg {
		return tui.BootTickMsg{}
	})
}

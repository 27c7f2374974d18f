package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/prepdeck-dev/prepdeck/internal/api"
	"github.com/prepdeck-dev/prepdeck/internal/session"
	"github.com/prepdeck-dev/prepdeck/internal/tui"
)

// ListenEventsCmd polls the controller's event channel. Returns
// ControllerEventMsg for each event, or PollMsg on timeout to keep polling.
func ListenEventsCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-ctrl.Events():
			return tui.ControllerEventMsg{Event: ev}
		case <-time.After(100 * time.Millisecond):
			return tui.PollMsg{}
		}
	}
}

// SubmitAnswerCmd sends an accepted answer to the remote service.
// Returns AnswerResultMsg or SubmitErrorMsg tagged with the panel id so the
// response is dropped if the panel has been torn down.
func SubmitAnswerCmd(client *api.Client, sessionID string, req api.AnswerRequest, panel uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		res, err := client.SubmitAnswer(ctx, sessionID, req)
		if err != nil {
			return tui.SubmitErrorMsg{Panel: panel, Err: err}
		}
		return tui.AnswerResultMsg{Panel: panel, Result: res}
	}
}

// FetchReportCmd loads the final report for a session.
// Returns ReportMsg or ReportErrorMsg.
func FetchReportCmd(cat *session.Catalog, sessionID string, panel uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		report, err := cat.FetchReport(ctx, sessionID)
		if err != nil {
			return tui.ReportErrorMsg{Panel: panel, Err: err}
		}
		return tui.ReportMsg{Panel: panel, Report: report}
	}
}

// TranscribeCmd uploads a recorded answer for transcription.
// Returns TranscribedMsg or TranscribeErrorMsg.
func TranscribeCmd(client *api.Client, audio []byte, panel uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		text, err := client.Transcribe(ctx, audio, "answer.wav")
		if err != nil {
			return tui.TranscribeErrorMsg{Panel: panel, Err: err}
		}
		return tui.TranscribedMsg{Panel: panel, Text: text}
	}
}

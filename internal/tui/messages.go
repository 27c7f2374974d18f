// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"github.com/google/uuid"

	"github.com/prepdeck-dev/prepdeck/internal/api"
	"github.com/prepdeck-dev/prepdeck/internal/session"
)

// ============================================================================
// Catalog Messages
// ============================================================================

// SessionsLoadedMsg carries the refreshed session history.
type SessionsLoadedMsg struct {
	Sessions []api.SessionSummary
}

// SessionsErrorMsg signals that the history fetch failed.
type SessionsErrorMsg struct {
	Err error
}

// SessionStartedMsg carries the live controller for a freshly started session.
type SessionStartedMsg struct {
	Controller *session.Controller
}

// StartPendingMsg signals that a start request is in flight and the boot
// screen should show.
type StartPendingMsg struct{}

// StartErrorMsg signals that starting a session failed; no panel opens.
type StartErrorMsg struct {
	Err error
}

// DeletedMsg signals that a session was deleted and the list should refresh.
type DeletedMsg struct {
	ID string
}

// DeleteErrorMsg signals a delete failure; the list is left unchanged.
type DeleteErrorMsg struct {
	Err error
}

// ============================================================================
// Panel Messages
// ============================================================================

// ControllerEventMsg wraps an asynchronous controller event (tick, ending).
type ControllerEventMsg struct {
	Event session.Event
}

// PollMsg keeps the event listener alive when no event arrived in time.
type PollMsg struct{}

// AnswerResultMsg carries the remote evaluation of a submitted answer.
// Panel identifies the target panel so stale results are dropped.
type AnswerResultMsg struct {
	Panel  uuid.UUID
	Result *api.AnswerResponse
}

// SubmitErrorMsg signals a failed answer submission.
type SubmitErrorMsg struct {
	Panel uuid.UUID
	Err   error
}

// ReportMsg carries the fetched final report.
type ReportMsg struct {
	Panel  uuid.UUID
	Report *api.FinalReport
}

// ReportErrorMsg signals that the report fetch failed.
type ReportErrorMsg struct {
	Panel uuid.UUID
	Err   error
}

// TranscribedMsg carries recognized text for the answer field.
type TranscribedMsg struct {
	Panel uuid.UUID
	Text  string
}

// TranscribeErrorMsg signals that transcription failed; the answer field is
// left unchanged.
type TranscribeErrorMsg struct {
	Panel uuid.UUID
	Err   error
}

// ============================================================================
// Utility Messages
// ============================================================================

// BootTickMsg advances the boot loader staging line.
type BootTickMsg struct{}

// CtrlCResetMsg clears the quit confirmation after a timeout.
type CtrlCResetMsg struct{}

// ErrorMsg is a generic error message.
type ErrorMsg struct {
	Err error
}

// Package session drives a live mock-interview panel and the catalog of
// past sessions.
package session

import (
	"fmt"
	"time"

	"github.com/prepdeck-dev/prepdeck/internal/api"
)

// State is the panel lifecycle position.
type State int

const (
	StateGreeting State = iota
	StateAwaitingAnswer
	StateSubmitting
	StateEnding
	StateEnded
	StateReportOnly
)

func (s State) String() string {
	switch s {
	case StateGreeting:
		return "greeting"
	case StateAwaitingAnswer:
		return "awaiting_answer"
	case StateSubmitting:
		return "submitting"
	case StateEnding:
		return "ending"
	case StateEnded:
		return "ended"
	case StateReportOnly:
		return "report_only"
	default:
		return "unknown"
	}
}

// EntryKind distinguishes transcript entries.
type EntryKind int

const (
	EntrySystem EntryKind = iota
	EntryInterviewer
	EntryUser
	EntryFeedback
)

// Entry is one line of the append-only session transcript.
type Entry struct {
	Kind    EntryKind
	Speaker string // interviewer name, EntryInterviewer only
	Text    string
	Skipped bool // EntryUser only

	// EntryFeedback only.
	Feedback       *api.Feedback
	PenaltySeconds int
	PenaltyReason  string

	At time.Time
}

// Settings is the user-chosen configuration for a new session.
type Settings struct {
	TargetRole      string
	Difficulty      string
	CareerLevel     string
	NumInterviewers int
	DurationMinutes int
	PresentSkills   []string
	MissingSkills   []string
}

// Session is one interview instance, live or historical.
type Session struct {
	ID           string
	Brief        string
	TargetRole   string
	Difficulty   string
	CareerLevel  string
	Interviewers []api.Interviewer
	History      bool
}

// FormatTime renders seconds as m:ss with zero-padded seconds.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

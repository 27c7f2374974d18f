// Package tui implements the terminal user interface using Bubble Tea.
package tui

// ViewState represents the current state of the TUI.
type ViewState int

const (
	StateConsole  ViewState = iota // catalog: past sessions + new-session setup
	StateStarting                  // waiting for the remote service to build a panel
	StatePanel                     // live or history session
)

// Difficulty levels offered by the setup form.
var Difficulties = []string{"easy", "medium", "hard"}

// CareerLevels offered by the setup form.
var CareerLevels = []string{"Entry-level", "Mid-level", "Senior", "Lead"}

// DurationChoices are the selectable interview lengths in minutes.
var DurationChoices = []int{15, 20, 30}

// InterviewerChoices are the selectable panel sizes.
var InterviewerChoices = []int{1, 2, 3}

// BootLines rotate under the spinner while a session is being prepared.
var BootLines = []string{
	"Reviewing your target role...",
	"Assembling your interview panel...",
	"Calibrating question difficulty...",
	"Preparing the first question...",
}

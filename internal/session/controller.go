package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prepdeck-dev/prepdeck/internal/api"
	"github.com/prepdeck-dev/prepdeck/internal/clock"
	"github.com/prepdeck-dev/prepdeck/internal/log"
	"github.com/prepdeck-dev/prepdeck/internal/speech"
)

// Local validation errors, rejected before any network call.
var (
	ErrNoActiveQuestion = errors.New("no question is active")
	ErrEmptyAnswer      = errors.New("answer is empty")
	ErrNotLive          = errors.New("session is not accepting answers")
)

// EventKind identifies asynchronous controller events.
type EventKind int

const (
	// EventTick carries the updated remaining time.
	EventTick EventKind = iota
	// EventEndingStarted fires at most once, when the session begins ending
	// on its own (expiry or completion); the receiver is expected to fetch
	// the final report. A confirmed close fetches directly instead of
	// emitting, so the report cannot be lost if the panel goes away before
	// its event listener runs.
	EventEndingStarted
)

// Event is delivered on the controller's events channel. Panel identifies
// the originating panel instance so stale events can be discarded.
type Event struct {
	Panel     uuid.UUID
	Kind      EventKind
	Remaining int
	EndReason string
}

// CloseDecision is the outcome of a close request.
type CloseDecision int

const (
	// CloseNow means the panel may close immediately.
	CloseNow CloseDecision = iota
	// CloseConfirm means the session is still live and the user must
	// confirm before closing.
	CloseConfirm
)

// Archiver persists a completed session locally.
type Archiver interface {
	SaveCompleted(sess Session, transcript []Entry, report *api.FinalReport) error
}

// Controller is the turn-by-turn interview state machine. It owns the panel's
// Clock and Speaker as instance fields, so independent controllers (and
// tests) never interfere. All methods are safe for the TUI goroutine and the
// clock's tick goroutine to interleave.
type Controller struct {
	mu sync.Mutex

	panelID uuid.UUID
	sess    Session
	state   State

	clk     *clock.Clock
	speaker *speech.Speaker
	logger  *log.Logger
	archive Archiver

	events chan Event
	closed bool

	remaining       int
	question        string
	questionShownAt time.Time
	currentIndex    int
	greetingPlayed  bool
	endingStarted   bool
	rounds          int

	pendingAnswer  string
	pendingSkipped bool
	pendingActive  bool

	transcript []Entry
	report     *api.FinalReport
}

// NewController builds a live-session controller seeded from a start
// response. speaker, logger and archive may each be nil.
func NewController(sess Session, firstQuestion string, remainingSeconds int, speaker *speech.Speaker, logger *log.Logger, archive Archiver) *Controller {
	return &Controller{
		panelID:   uuid.New(),
		sess:      sess,
		state:     StateGreeting,
		clk:       clock.New(),
		speaker:   speaker,
		logger:    logger,
		archive:   archive,
		events:    make(chan Event, 32),
		remaining: remainingSeconds,
		question:  firstQuestion,
	}
}

// NewHistoryController builds a read-only controller for a past session.
// No clock runs and no speech plays; submit and skip are inert.
func NewHistoryController(sess Session, logger *log.Logger) *Controller {
	sess.History = true
	return &Controller{
		panelID: uuid.New(),
		sess:    sess,
		state:   StateReportOnly,
		logger:  logger,
		events:  make(chan Event, 32),
	}
}

// Events is the channel the panel drains for ticks and ending notification.
func (c *Controller) Events() <-chan Event { return c.events }

func (c *Controller) PanelID() uuid.UUID { return c.panelID }

func (c *Controller) Session() Session { return c.sess }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Controller) Question() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.question
}

func (c *Controller) Rounds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rounds
}

func (c *Controller) Report() *api.FinalReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report
}

// CurrentInterviewer returns the panel member whose turn it is.
func (c *Controller) CurrentInterviewer() api.Interviewer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interviewerAtLocked(c.currentIndex)
}

func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentIndex
}

// Transcript returns a copy of the append-only transcript.
func (c *Controller) Transcript() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Begin enters the live session: plays the greeting once, shows the first
// question, and starts the countdown. Safe to call repeatedly; the greeting
// and clock start only happen the first time.
func (c *Controller) Begin() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.History || c.state != StateGreeting {
		return
	}

	if !c.greetingPlayed && len(c.sess.Interviewers) > 0 && c.question != "" {
		first := c.sess.Interviewers[0]
		name := first.Name
		if name == "" {
			name = "Interviewer"
		}
		roleText := c.sess.TargetRole
		if roleText == "" {
			roleText = "this role"
		}
		greeting := fmt.Sprintf(
			"Hi, I'm %s, %s. Welcome to your mock interview for the %s position. Let's begin with the first question.",
			name, first.Role, roleText,
		)
		c.appendLocked(Entry{Kind: EntrySystem, Text: greeting})
		c.appendLocked(Entry{Kind: EntryInterviewer, Speaker: name, Text: c.question})
		if c.speaker != nil {
			c.speaker.Speak(greeting+" "+c.question, name)
		}
		c.greetingPlayed = true
	}

	c.state = StateAwaitingAnswer
	c.questionShownAt = time.Now()
	c.clk.Start(c.remaining, c.onTick, c.onExpire)

	c.logLocked(log.LogEvent{
		Event:      log.EventSessionStarted,
		TargetRole: c.sess.TargetRole,
		Difficulty: c.sess.Difficulty,
		Remaining:  c.remaining,
	})
}

func (c *Controller) onTick(remaining int) {
	c.mu.Lock()
	c.remaining = remaining
	c.emitLocked(Event{Kind: EventTick, Remaining: remaining})
	c.mu.Unlock()
}

func (c *Controller) onExpire() {
	c.mu.Lock()
	c.remaining = 0
	c.beginEndingLocked("time_expired", true)
	c.mu.Unlock()
}

// SubmitAnswer validates a submit or skip and, if accepted, moves to
// Submitting and returns the request to send. Validation failures leave all
// state untouched.
func (c *Controller) SubmitAnswer(answer string, skipped bool) (api.AnswerRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAwaitingAnswer {
		return api.AnswerRequest{}, ErrNotLive
	}
	if c.question == "" {
		return api.AnswerRequest{}, ErrNoActiveQuestion
	}
	if answer == "" && !skipped {
		return api.AnswerRequest{}, ErrEmptyAnswer
	}

	c.state = StateSubmitting
	c.pendingAnswer = answer
	c.pendingSkipped = skipped
	c.pendingActive = true

	return api.AnswerRequest{
		Answer:          answer,
		InterviewerName: c.interviewerAtLocked(c.currentIndex).Name,
		ElapsedSeconds:  int(time.Since(c.questionShownAt).Seconds()),
		Skipped:         skipped,
	}, nil
}

// ApplyAnswerResult ingests the remote evaluation: appends the user and
// feedback entries, applies any penalty, and either advances to the next
// question or begins ending. A result that lands after the clock expired
// mid-submission still records the turn in the transcript, but never
// resumes the session.
func (c *Controller) ApplyAnswerResult(res api.AnswerResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSubmitting {
		if (c.state == StateEnding || c.state == StateEnded) && c.pendingActive {
			c.appendExchangeLocked(res)
		}
		return
	}

	c.appendExchangeLocked(res)

	if res.PenaltySeconds > 0 {
		c.clk.ApplyPenalty(res.PenaltySeconds)
		c.remaining = c.clk.Remaining()
		c.logLocked(log.LogEvent{
			Event:          log.EventPenaltyApplied,
			PenaltySeconds: res.PenaltySeconds,
			PenaltyReason:  res.PenaltyReason,
			Remaining:      c.remaining,
		})
	}

	c.rounds = res.RoundsCompleted

	if res.ShouldContinue && res.NextQuestion != "" {
		if n := len(c.sess.Interviewers); n > 0 {
			c.currentIndex = (c.currentIndex + 1) % n
		} else {
			c.currentIndex = 0
		}
		c.question = res.NextQuestion
		c.questionShownAt = time.Now()
		next := c.interviewerAtLocked(c.currentIndex)
		name := next.Name
		if name == "" {
			name = "Interviewer"
		}
		c.appendLocked(Entry{Kind: EntryInterviewer, Speaker: name, Text: res.NextQuestion})
		if c.speaker != nil {
			c.speaker.Speak(res.NextQuestion, name)
		}
		c.state = StateAwaitingAnswer
		return
	}

	c.beginEndingLocked("completed", true)
}

// appendExchangeLocked records the pending user turn and its feedback, then
// clears the pending submission.
func (c *Controller) appendExchangeLocked(res api.AnswerResponse) {
	userText := c.pendingAnswer
	if c.pendingSkipped {
		userText = "[Skipped]"
	}
	fb := res.Feedback
	c.appendLocked(Entry{Kind: EntryUser, Text: userText, Skipped: c.pendingSkipped})
	c.appendLocked(Entry{
		Kind:           EntryFeedback,
		Feedback:       &fb,
		PenaltySeconds: res.PenaltySeconds,
		PenaltyReason:  res.PenaltyReason,
	})

	c.logLocked(log.LogEvent{
		Event:   log.EventAnswerSubmitted,
		Skipped: c.pendingSkipped,
		Score:   res.Feedback.Score,
	})

	c.pendingAnswer = ""
	c.pendingSkipped = false
	c.pendingActive = false
}

// FailSubmission records a failed submit and returns to AwaitingAnswer with
// the previous question still live. The caller keeps the answer text.
func (c *Controller) FailSubmission(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSubmitting {
		return
	}
	c.appendLocked(Entry{Kind: EntrySystem, Text: "Failed to send answer."})
	c.pendingAnswer = ""
	c.pendingSkipped = false
	c.pendingActive = false
	c.state = StateAwaitingAnswer
}

// BeginEnding terminates the live session: stops the clock and speech and
// signals that the final report should be fetched. Idempotent; only the
// first call transitions. Returns whether this call started the ending.
func (c *Controller) BeginEnding(reason string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beginEndingLocked(reason, true)
}

func (c *Controller) beginEndingLocked(reason string, emit bool) bool {
	if c.endingStarted || c.sess.History {
		return false
	}
	c.endingStarted = true
	c.state = StateEnding
	c.clk.Stop()
	if c.speaker != nil {
		c.speaker.StopAll()
	}
	if emit {
		c.emitLocked(Event{Kind: EventEndingStarted, Remaining: c.remaining, EndReason: reason})
	}
	c.logLocked(log.LogEvent{
		Event:     log.EventSessionEnded,
		Reason:    reason,
		Remaining: c.remaining,
		Rounds:    c.rounds,
	})
	return true
}

// ApplyReport stores the fetched final report. For a live session this
// completes the Ending transition; for a history session it fills the
// read-only view. A nil report is treated as a fetch failure.
func (c *Controller) ApplyReport(report *api.FinalReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateEnding && c.state != StateReportOnly {
		return
	}
	if report == nil {
		c.failReportLocked()
		return
	}

	c.report = report
	c.logLocked(log.LogEvent{Event: log.EventReportFetched})

	if c.state == StateEnding {
		c.state = StateEnded
		if c.archive != nil {
			_ = c.archive.SaveCompleted(c.sess, c.transcript, report)
		}
	}
}

// FailReport records a report fetch failure. A live session still reaches
// Ended; a history session stays read-only with the error in the transcript.
func (c *Controller) FailReport(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateEnding && c.state != StateReportOnly {
		return
	}
	c.failReportLocked()
}

func (c *Controller) failReportLocked() {
	if c.state == StateReportOnly {
		c.appendLocked(Entry{Kind: EntrySystem, Text: "Failed to load final report."})
		return
	}
	c.appendLocked(Entry{Kind: EntrySystem, Text: "Failed to generate final report."})
	c.state = StateEnded
}

// RequestClose decides whether the panel may close now or needs the user to
// confirm first. Closing an ended or history panel stops speech and closes.
func (c *Controller) RequestClose() CloseDecision {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.endingStarted && !c.sess.History {
		return CloseConfirm
	}
	if c.speaker != nil {
		c.speaker.StopAll()
	}
	return CloseNow
}

// ConfirmClose is called after the user confirms closing a live session.
// It begins ending (so the report is still produced) and stops speech.
// Returns whether an ending was started by this call; when it was, the
// caller fetches the final report itself rather than waiting on an event,
// since the panel's event listener dies with the panel.
func (c *Controller) ConfirmClose() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	started := c.beginEndingLocked("closed", false)
	if c.speaker != nil {
		c.speaker.StopAll()
	}
	return started
}

// Teardown releases the clock and speech and drops all further events.
// Late-arriving callbacks after Teardown are ignored.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.clk != nil {
		c.clk.Stop()
	}
	if c.speaker != nil {
		c.speaker.StopAll()
	}
}

func (c *Controller) interviewerAtLocked(i int) api.Interviewer {
	if len(c.sess.Interviewers) == 0 {
		return api.Interviewer{}
	}
	if i < 0 || i >= len(c.sess.Interviewers) {
		i = 0
	}
	return c.sess.Interviewers[i]
}

func (c *Controller) appendLocked(e Entry) {
	e.At = time.Now()
	c.transcript = append(c.transcript, e)
}

func (c *Controller) emitLocked(e Event) {
	if c.closed {
		return
	}
	e.Panel = c.panelID
	select {
	case c.events <- e:
	default:
	}
}

func (c *Controller) logLocked(e log.LogEvent) {
	if c.logger == nil {
		return
	}
	e.SessionID = c.sess.ID
	e.PanelID = c.panelID.String()
	_ = c.logger.Append(e)
}

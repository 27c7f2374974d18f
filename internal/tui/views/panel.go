package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prepdeck-dev/prepdeck/internal/api"
	"github.com/prepdeck-dev/prepdeck/internal/audio"
	"github.com/prepdeck-dev/prepdeck/internal/log"
	"github.com/prepdeck-dev/prepdeck/internal/session"
	"github.com/prepdeck-dev/prepdeck/internal/speech"
	"github.com/prepdeck-dev/prepdeck/internal/tui"
	"github.com/prepdeck-dev/prepdeck/internal/tui/commands"
)

// PanelClosedMsg tells the app router the panel is done and the console
// should take over again.
type PanelClosedMsg struct{}

// PanelModel is the view model for a live or historical interview session.
type PanelModel struct {
	ctrl    *session.Controller
	client  *api.Client
	catalog *session.Catalog
	keys    tui.KeyMap

	speaker  *speech.Speaker
	recorder *audio.Recorder
	logger   *log.Logger

	answer     textarea.Model
	transcript viewport.Model
	spinner    spinner.Model

	remaining    int
	submitting   bool
	recording    bool
	voiceOn      bool
	confirmClose bool
	notice       string

	width  int
	height int
}

// NewPanelModel builds the panel around an already-constructed controller.
func NewPanelModel(ctrl *session.Controller, client *api.Client, catalog *session.Catalog, speaker *speech.Speaker, recorder *audio.Recorder, logger *log.Logger, width, height int) PanelModel {
	ta := textarea.New()
	ta.Placeholder = "Type your answer (or ctrl+r to dictate)..."
	ta.CharLimit = 4000
	ta.SetHeight(4)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := PanelModel{
		ctrl:       ctrl,
		client:     client,
		catalog:    catalog,
		keys:       tui.DefaultKeyMap,
		speaker:    speaker,
		recorder:   recorder,
		logger:     logger,
		answer:     ta,
		spinner:    sp,
		remaining:  ctrl.Remaining(),
		voiceOn:    speaker != nil && speaker.Available(),
		width:      width,
		height:     height,
		transcript: viewport.New(width-4, 10),
	}
	m.resize(width, height)
	m.refreshTranscript()
	return m
}

// Init starts the panel's background listeners.
func (m PanelModel) Init() tea.Cmd {
	cmds := []tea.Cmd{commands.ListenEventsCmd(m.ctrl), m.spinner.Tick}
	if m.ctrl.Session().History {
		// Read-only mode loads the stored report immediately.
		cmds = append(cmds, commands.FetchReportCmd(m.catalog, m.ctrl.Session().ID, m.ctrl.PanelID()))
	}
	return tea.Batch(cmds...)
}

// Controller exposes the underlying state machine (for teardown by the app).
func (m PanelModel) Controller() *session.Controller { return m.ctrl }

// Update handles messages for the panel view.
func (m PanelModel) Update(msg tea.Msg) (PanelModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tui.PollMsg:
		return m, commands.ListenEventsCmd(m.ctrl)

	case tui.ControllerEventMsg:
		return m.handleEvent(msg.Event)

	case tui.AnswerResultMsg:
		if msg.Panel != m.ctrl.PanelID() {
			return m, nil
		}
		m.submitting = false
		m.ctrl.ApplyAnswerResult(*msg.Result)
		m.remaining = m.ctrl.Remaining() // penalty may have moved it
		m.answer.Reset()
		m.refreshTranscript()
		return m, nil

	case tui.SubmitErrorMsg:
		if msg.Panel != m.ctrl.PanelID() {
			return m, nil
		}
		m.submitting = false
		m.ctrl.FailSubmission(msg.Err)
		m.refreshTranscript()
		return m, nil

	case tui.ReportMsg:
		if msg.Panel != m.ctrl.PanelID() {
			return m, nil
		}
		m.ctrl.ApplyReport(msg.Report)
		m.refreshTranscript()
		return m, nil

	case tui.ReportErrorMsg:
		if msg.Panel != m.ctrl.PanelID() {
			return m, nil
		}
		m.ctrl.FailReport(msg.Err)
		m.refreshTranscript()
		return m, nil

	case tui.TranscribedMsg:
		if msg.Panel != m.ctrl.PanelID() {
			return m, nil
		}
		if msg.Text != "" {
			m.answer.SetValue(msg.Text)
		}
		return m, nil

	case tui.TranscribeErrorMsg:
		if msg.Panel != m.ctrl.PanelID() {
			return m, nil
		}
		m.notice = "Could not transcribe audio."
		if m.logger != nil {
			_ = m.logger.Append(log.LogEvent{
				Event:     log.EventTranscribeFailed,
				SessionID: m.ctrl.Session().ID,
				Error:     msg.Err.Error(),
			})
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.answer, cmd = m.answer.Update(msg)
	return m, cmd
}

func (m PanelModel) handleEvent(ev session.Event) (PanelModel, tea.Cmd) {
	if ev.Panel != m.ctrl.PanelID() {
		return m, commands.ListenEventsCmd(m.ctrl)
	}
	switch ev.Kind {
	case session.EventTick:
		m.remaining = ev.Remaining
	case session.EventEndingStarted:
		return m, tea.Batch(
			commands.FetchReportCmd(m.catalog, m.ctrl.Session().ID, m.ctrl.PanelID()),
			commands.ListenEventsCmd(m.ctrl),
		)
	}
	return m, commands.ListenEventsCmd(m.ctrl)
}

func (m PanelModel) handleKey(msg tea.KeyMsg) (PanelModel, tea.Cmd) {
	if m.confirmClose {
		switch msg.String() {
		case "y", "Y":
			m.confirmClose = false
			m.stopCapture()
			if m.ctrl.ConfirmClose() {
				// Fetch directly: the event listener dies with the panel,
				// so the report must not depend on it.
				return m, tea.Batch(
					commands.FetchReportCmd(m.catalog, m.ctrl.Session().ID, m.ctrl.PanelID()),
					closePanel,
				)
			}
			return m, closePanel
		case "n", "N", tui.KeyEsc:
			m.confirmClose = false
		}
		return m, nil
	}

	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Escape):
		if m.ctrl.RequestClose() == session.CloseNow {
			m.stopCapture()
			return m, closePanel
		}
		m.confirmClose = true
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit(false)

	case key.Matches(msg, m.keys.Skip):
		return m.submit(true)

	case key.Matches(msg, m.keys.Record):
		return m.toggleRecording()

	case key.Matches(msg, m.keys.Voice):
		if m.speaker != nil {
			m.voiceOn = !m.voiceOn
			m.speaker.SetEnabled(m.voiceOn)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.answer, cmd = m.answer.Update(msg)
	return m, cmd
}

func (m PanelModel) submit(skipped bool) (PanelModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	req, err := m.ctrl.SubmitAnswer(strings.TrimSpace(m.answer.Value()), skipped)
	if err != nil {
		switch err {
		case session.ErrEmptyAnswer:
			m.notice = "Please type an answer first."
		case session.ErrNoActiveQuestion:
			m.notice = "No question is active."
		}
		return m, nil
	}
	m.submitting = true
	return m, commands.SubmitAnswerCmd(m.client, m.ctrl.Session().ID, req, m.ctrl.PanelID())
}

func (m PanelModel) toggleRecording() (PanelModel, tea.Cmd) {
	if m.recorder == nil || m.ctrl.Session().History {
		return m, nil
	}
	if !m.recording {
		if err := m.recorder.Start(); err != nil {
			m.notice = "Microphone not accessible."
			return m, nil
		}
		m.recording = true
		return m, nil
	}

	m.recording = false
	blob, err := m.recorder.Stop()
	if err != nil {
		m.notice = "Recording failed."
		return m, nil
	}
	return m, commands.TranscribeCmd(m.client, blob, m.ctrl.PanelID())
}

// stopCapture releases the microphone on the way out of the panel.
func (m *PanelModel) stopCapture() {
	if m.recorder != nil {
		m.recorder.Abort()
	}
	m.recording = false
}

func closePanel() tea.Msg { return PanelClosedMsg{} }

func (m *PanelModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.answer.SetWidth(width - 6)
	vpHeight := height - 18
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.transcript = viewport.New(width-4, vpHeight)
}

func (m *PanelModel) refreshTranscript() {
	m.transcript.SetContent(m.renderTranscript())
	m.transcript.GotoBottom()
}

// View renders the panel.
func (m PanelModel) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTiles())
	b.WriteString("\n")
	b.WriteString(m.transcript.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m PanelModel) renderHeader() string {
	sess := m.ctrl.Session()
	title := tui.TitleStyle.Render("Mock Interview — " + sess.TargetRole)

	var right string
	if sess.History {
		right = tui.DimStyle.Render("history")
	} else {
		right = tui.TimerStyle.Render("⏱ " + session.FormatTime(m.remaining))
	}

	head := lipgloss.JoinHorizontal(lipgloss.Top, title, "   ", right)
	if sess.Brief != "" {
		head += "\n" + tui.DimStyle.Render(truncate(sess.Brief, m.width-4))
	}
	return head
}

func (m PanelModel) renderTiles() string {
	sess := m.ctrl.Session()
	if len(sess.Interviewers) == 0 {
		return ""
	}
	current := m.ctrl.CurrentIndex()
	live := !sess.History && m.ctrl.State() != session.StateEnded

	var tiles []string
	for i, iv := range sess.Interviewers {
		body := iv.Name
		if iv.Role != "" {
			body += "\n" + tui.DimStyle.Render(iv.Role)
		}
		if live && i == current {
			tiles = append(tiles, tui.ActiveTileStyle.Render(body))
		} else {
			tiles = append(tiles, tui.TileStyle.Render(body))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
}

func (m PanelModel) renderTranscript() string {
	var b strings.Builder

	for _, e := range m.ctrl.Transcript() {
		switch e.Kind {
		case session.EntrySystem:
			b.WriteString(tui.DimStyle.Render(e.Text))
		case session.EntryInterviewer:
			b.WriteString(tui.SelectedStyle.Render(e.Speaker+": ") + e.Text)
		case session.EntryUser:
			b.WriteString(tui.SuccessStyle.Render("You: ") + e.Text)
		case session.EntryFeedback:
			if e.Feedback == nil {
				continue
			}
			b.WriteString(tui.WarningStyle.Render(fmt.Sprintf("Feedback (%.1f/10): ", e.Feedback.Score)))
			b.WriteString(e.Feedback.Summary)
			for _, s := range e.Feedback.Strengths {
				b.WriteString("\n  + " + s)
			}
			for _, s := range e.Feedback.Improvements {
				b.WriteString("\n  - " + s)
			}
			if e.PenaltySeconds > 0 {
				b.WriteString("\n  " + tui.ErrorStyle.Render(fmt.Sprintf("-%ds penalty", e.PenaltySeconds)))
				if e.PenaltyReason != "" {
					b.WriteString(tui.DimStyle.Render(" (" + e.PenaltyReason + ")"))
				}
			}
		}
		b.WriteString("\n\n")
	}

	if rep := m.ctrl.Report(); rep != nil {
		b.WriteString(m.renderReport(rep.Summary))
	}

	return b.String()
}

func (m PanelModel) renderReport(s api.ReportSummary) string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Final Report"))
	b.WriteString("\n")
	if s.HireRecommendation != "" {
		b.WriteString(tui.BadgeStyle.Render(s.HireRecommendation))
		b.WriteString("\n")
	}
	if s.OverallImpression != "" {
		b.WriteString(s.OverallImpression)
		b.WriteString("\n")
	}
	writeReportList(&b, "Strengths", s.Strengths)
	writeReportList(&b, "Areas for improvement", s.AreasForImprovement)
	writeReportList(&b, "Next steps", s.NextSteps)
	return b.String()
}

func writeReportList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(tui.SelectedStyle.Render(title + ":"))
	for _, it := range items {
		b.WriteString("\n  • " + it)
	}
	b.WriteString("\n")
}

func (m PanelModel) renderFooter() string {
	if m.confirmClose {
		return tui.WarningStyle.Render("End the interview and close? The final report will still be generated. (y/n)")
	}

	sess := m.ctrl.Session()
	state := m.ctrl.State()

	if sess.History || state == session.StateEnded {
		return tui.DimStyle.Render("esc: close")
	}

	var b strings.Builder
	q := m.ctrl.Question()
	if q != "" {
		b.WriteString(tui.SelectedStyle.Render("Q: ") + q + "\n\n")
	}
	b.WriteString(m.answer.View())
	b.WriteString("\n")

	var status []string
	if m.submitting {
		status = append(status, m.spinner.View()+" evaluating...")
	}
	if m.recording {
		status = append(status, tui.ErrorStyle.Render("● recording"))
	}
	if m.voiceOn {
		status = append(status, "voice on")
	} else {
		status = append(status, tui.DimStyle.Render("voice off"))
	}
	if m.notice != "" {
		status = append(status, tui.WarningStyle.Render(m.notice))
	}
	b.WriteString(strings.Join(status, "  "))
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("ctrl+s: submit • ctrl+k: skip • ctrl+r: record • ctrl+v: voice • esc: close"))
	return b.String()
}

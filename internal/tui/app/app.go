// Package app provides the main TUI application that wires all views together.
package app

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prepdeck-dev/prepdeck/internal/api"
	"github.com/prepdeck-dev/prepdeck/internal/audio"
	"github.com/prepdeck-dev/prepdeck/internal/config"
	"github.com/prepdeck-dev/prepdeck/internal/log"
	"github.com/prepdeck-dev/prepdeck/internal/session"
	"github.com/prepdeck-dev/prepdeck/internal/speech"
	"github.com/prepdeck-dev/prepdeck/internal/tui"
	"github.com/prepdeck-dev/prepdeck/internal/tui/commands"
	"github.com/prepdeck-dev/prepdeck/internal/tui/views"
)

// App is the main TUI application that wires all views together.
type App struct {
	state tui.ViewState

	cfg      *config.Config
	client   *api.Client
	catalog  *session.Catalog
	speaker  *speech.Speaker
	recorder *audio.Recorder
	logger   *log.Logger

	consoleView views.ConsoleModel
	panelView   views.PanelModel

	// A confirmed close can leave a report fetch in flight; the controller
	// is kept here until the response lands so the session still archives.
	finishing *session.Controller

	bootSpinner spinner.Model
	bootLine    int

	ctrlCPending bool

	width  int
	height int
}

// New wires the application from configuration. logger and archive are
// optional; their absence only disables event logging and offline reports.
func New(cfg *config.Config, logger *log.Logger, archive *session.Archive) *App {
	client := api.NewClient(cfg.API.BaseURL, cfg.API.Token, time.Duration(cfg.API.TimeoutSeconds)*time.Second)

	var speaker *speech.Speaker
	if cfg.Voice.Enabled && cfg.Voice.DeepgramKey != "" {
		engine := speech.NewDeepgramEngine(cfg.Voice.DeepgramKey)
		player := speech.NewExecPlayer(cfg.Voice.PlayerCommand)
		onError := func(err error) {
			if logger != nil {
				_ = logger.Append(log.LogEvent{Event: log.EventSpeechError, Error: err.Error()})
			}
		}
		speaker = speech.NewSpeaker(engine, player, true, onError)
	}

	catalog := session.NewCatalog(client, speaker, logger, archive, cfg.Voice.PreferredVoices)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	a := &App{
		state:       tui.StateConsole,
		cfg:         cfg,
		client:      client,
		catalog:     catalog,
		speaker:     speaker,
		recorder:    audio.NewRecorder(cfg.Audio.RecordCommand),
		logger:      logger,
		bootSpinner: sp,
		width:       80,
		height:      24,
	}
	a.consoleView = views.NewConsoleModel(catalog, cfg.Interview, a.width, a.height)
	return a
}

// Init returns the initial command for the TUI.
func (a *App) Init() tea.Cmd {
	return a.consoleView.Init()
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == tui.KeyCtrlC {
			if a.ctrlCPending {
				a.teardownPanel()
				return a, tea.Quit
			}
			a.ctrlCPending = true
			return a, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return tui.CtrlCResetMsg{}
			})
		}

	case tui.CtrlCResetMsg:
		a.ctrlCPending = false
		return a, nil

	// Late report responses for a panel that was closed mid-ending.
	case tui.ReportMsg:
		if a.finishing != nil && msg.Panel == a.finishing.PanelID() {
			a.finishing.ApplyReport(msg.Report)
			a.finishing = nil
			return a, commands.LoadSessionsCmd(a.catalog)
		}

	case tui.ReportErrorMsg:
		if a.finishing != nil && msg.Panel == a.finishing.PanelID() {
			a.finishing.FailReport(msg.Err)
			a.finishing = nil
			return a, nil
		}
	}

	switch a.state {
	case tui.StateConsole:
		return a.updateConsole(msg)
	case tui.StateStarting:
		return a.updateStarting(msg)
	case tui.StatePanel:
		return a.updatePanel(msg)
	}
	return a, nil
}

func (a *App) updateConsole(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tui.SessionStartedMsg:
		return a.openPanel(msg.Controller)

	case tui.StartPendingMsg:
		a.state = tui.StateStarting
		a.bootLine = 0
		return a, tea.Batch(a.bootSpinner.Tick, commands.BootTickCmd())
	}

	var cmd tea.Cmd
	a.consoleView, cmd = a.consoleView.Update(msg)
	return a, cmd
}

func (a *App) updateStarting(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.bootSpinner, cmd = a.bootSpinner.Update(msg)
		return a, cmd

	case tui.BootTickMsg:
		a.bootLine = (a.bootLine + 1) % len(tui.BootLines)
		return a, commands.BootTickCmd()

	case tui.SessionStartedMsg:
		return a.openPanel(msg.Controller)

	case tui.StartErrorMsg:
		a.state = tui.StateConsole
		a.consoleView.SetAlert("Could not start the interview: " + msg.Err.Error())
		return a, nil
	}
	return a, nil
}

func (a *App) openPanel(ctrl *session.Controller) (tea.Model, tea.Cmd) {
	ctrl.Begin()
	a.panelView = views.NewPanelModel(ctrl, a.client, a.catalog, a.speaker, a.recorder, a.logger, a.width, a.height)
	a.state = tui.StatePanel
	return a, a.panelView.Init()
}

func (a *App) updatePanel(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(views.PanelClosedMsg); ok {
		a.closePanel()
		a.state = tui.StateConsole
		return a, commands.LoadSessionsCmd(a.catalog)
	}

	var cmd tea.Cmd
	a.panelView, cmd = a.panelView.Update(msg)
	return a, cmd
}

// closePanel tears the live panel down, releasing the microphone. If a
// report fetch is still owed (close confirmed mid-session), the controller
// is parked so the response can still be applied and archived.
func (a *App) closePanel() {
	a.recorder.Abort()
	ctrl := a.panelView.Controller()
	if ctrl == nil {
		return
	}
	if ctrl.State() == session.StateEnding {
		a.finishing = ctrl
	}
	ctrl.Teardown()
}

func (a *App) teardownPanel() {
	if a.state == tui.StatePanel {
		a.recorder.Abort()
		if ctrl := a.panelView.Controller(); ctrl != nil {
			ctrl.Teardown()
		}
	}
}

// View renders the current application state.
func (a *App) View() string {
	var content string

	switch a.state {
	case tui.StateConsole:
		content = a.consoleView.View()
	case tui.StateStarting:
		content = a.renderStarting()
	case tui.StatePanel:
		content = a.panelView.View()
	}

	if a.ctrlCPending {
		content += "\n" + tui.WarningStyle.Render("Press ctrl+c again to quit.")
	}
	return content
}

func (a *App) renderStarting() string {
	body := a.bootSpinner.View() + " " + tui.BootLines[a.bootLine]
	box := tui.BoxStyle.Render(tui.TitleStyle.Render("Preparing your interview") + "\n\n" + body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

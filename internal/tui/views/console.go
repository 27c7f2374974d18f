// Package views provides TUI view components for the prepdeck application.
package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prepdeck-dev/prepdeck/internal/api"
	"github.com/prepdeck-dev/prepdeck/internal/config"
	"github.com/prepdeck-dev/prepdeck/internal/session"
	"github.com/prepdeck-dev/prepdeck/internal/tui"
	"github.com/prepdeck-dev/prepdeck/internal/tui/commands"
)

// Console panes.
const (
	paneSetup = iota
	paneHistory
)

// Setup form fields, top to bottom.
const (
	fieldRole = iota
	fieldDifficulty
	fieldCareer
	fieldInterviewers
	fieldDuration
	fieldStart
	fieldCount
)

// ConsoleModel is the view model for the catalog screen: past sessions plus
// the new-session setup form.
type ConsoleModel struct {
	catalog *session.Catalog
	keys    tui.KeyMap

	roleInput       textinput.Model
	difficultyIdx   int
	careerIdx       int
	interviewersIdx int
	durationIdx     int

	pane  int
	field int

	sessions []api.SessionSummary
	cursor   int
	loading  bool
	spinner  spinner.Model

	alert         string
	confirmDelete string // session id pending delete confirmation

	width  int
	height int
}

// NewConsoleModel builds the console seeded with the configured interview
// defaults.
func NewConsoleModel(catalog *session.Catalog, defaults config.InterviewConfig, width, height int) ConsoleModel {
	ti := textinput.New()
	ti.Placeholder = "Target role, e.g. Backend Engineer"
	ti.CharLimit = 120
	ti.Width = 48
	ti.SetValue(defaults.TargetRole)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := ConsoleModel{
		catalog:   catalog,
		keys:      tui.DefaultKeyMap,
		roleInput: ti,
		spinner:   sp,
		loading:   true,
		width:     width,
		height:    height,
	}
	m.difficultyIdx = indexOf(tui.Difficulties, defaults.Difficulty, 1)
	m.careerIdx = indexOf(tui.CareerLevels, defaults.CareerLevel, 0)
	m.interviewersIdx = indexOfInt(tui.InterviewerChoices, defaults.NumInterviewers, 1)
	m.durationIdx = indexOfInt(tui.DurationChoices, defaults.DurationMinutes, 1)
	return m
}

// Init starts the history fetch.
func (m ConsoleModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, commands.LoadSessionsCmd(m.catalog))
}

// Settings reads the current form values.
func (m ConsoleModel) Settings() session.Settings {
	return session.Settings{
		TargetRole:      strings.TrimSpace(m.roleInput.Value()),
		Difficulty:      tui.Difficulties[m.difficultyIdx],
		CareerLevel:     tui.CareerLevels[m.careerIdx],
		NumInterviewers: tui.InterviewerChoices[m.interviewersIdx],
		DurationMinutes: tui.DurationChoices[m.durationIdx],
	}
}

// SetAlert shows a catalog error banner (start or delete failure).
func (m *ConsoleModel) SetAlert(text string) {
	m.alert = text
}

// Update handles messages for the console view.
func (m ConsoleModel) Update(msg tea.Msg) (ConsoleModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tui.SessionsLoadedMsg:
		m.loading = false
		m.sessions = msg.Sessions
		if m.cursor >= len(m.sessions) {
			m.cursor = 0
		}
		return m, nil

	case tui.SessionsErrorMsg:
		m.loading = false
		m.alert = "Could not load session history: " + msg.Err.Error()
		return m, nil

	case tui.DeletedMsg:
		m.confirmDelete = ""
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, commands.LoadSessionsCmd(m.catalog))

	case tui.DeleteErrorMsg:
		m.confirmDelete = ""
		m.alert = "Could not delete session: " + msg.Err.Error()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.pane == paneSetup && m.field == fieldRole {
		var cmd tea.Cmd
		m.roleInput, cmd = m.roleInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ConsoleModel) handleKey(msg tea.KeyMsg) (ConsoleModel, tea.Cmd) {
	// Delete confirmation intercepts everything else.
	if m.confirmDelete != "" {
		switch msg.String() {
		case "y", "Y":
			id := m.confirmDelete
			return m, commands.DeleteSessionCmd(m.catalog, id)
		case "n", "N", tui.KeyEsc:
			m.confirmDelete = ""
		}
		return m, nil
	}

	if msg.String() != tui.KeyEnter {
		m.alert = ""
	}

	switch {
	case key.Matches(msg, m.keys.Tab):
		if m.pane == paneSetup {
			m.pane = paneHistory
			m.roleInput.Blur()
		} else {
			m.pane = paneSetup
			if m.field == fieldRole {
				m.roleInput.Focus()
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		// "k" goes to the text input when it has focus.
		if m.pane == paneSetup && m.field == fieldRole && msg.String() != "up" {
			break
		}
		if m.pane == paneSetup {
			m.moveField(-1)
		} else if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.pane == paneSetup && m.field == fieldRole && msg.String() != "down" {
			break
		}
		if m.pane == paneSetup {
			m.moveField(1)
		} else if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Left):
		if m.pane == paneSetup && m.field != fieldRole {
			m.cycleField(-1)
			return m, nil
		}

	case key.Matches(msg, m.keys.Right):
		if m.pane == paneSetup && m.field != fieldRole {
			m.cycleField(1)
			return m, nil
		}

	case key.Matches(msg, m.keys.Enter):
		return m.handleEnter()

	case key.Matches(msg, m.keys.Delete):
		if m.pane == paneHistory && len(m.sessions) > 0 {
			m.confirmDelete = m.sessions[m.cursor].SessionID
			return m, nil
		}
	}

	if m.pane == paneSetup && m.field == fieldRole {
		var cmd tea.Cmd
		m.roleInput, cmd = m.roleInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ConsoleModel) handleEnter() (ConsoleModel, tea.Cmd) {
	if m.pane == paneHistory {
		if len(m.sessions) == 0 {
			return m, nil
		}
		sum := m.sessions[m.cursor]
		cat := m.catalog
		return m, func() tea.Msg {
			return tui.SessionStartedMsg{Controller: cat.OpenHistory(sum)}
		}
	}

	if m.field != fieldStart && m.field != fieldRole {
		return m, nil
	}
	settings := m.Settings()
	if settings.TargetRole == "" {
		m.alert = "Enter a target role before starting."
		return m, nil
	}
	return m, tea.Batch(
		func() tea.Msg { return tui.StartPendingMsg{} },
		commands.StartSessionCmd(m.catalog, settings),
	)
}

func (m *ConsoleModel) moveField(delta int) {
	m.field = (m.field + delta + fieldCount) % fieldCount
	if m.field == fieldRole {
		m.roleInput.Focus()
	} else {
		m.roleInput.Blur()
	}
}

func (m *ConsoleModel) cycleField(delta int) {
	switch m.field {
	case fieldDifficulty:
		m.difficultyIdx = cycle(m.difficultyIdx, delta, len(tui.Difficulties))
	case fieldCareer:
		m.careerIdx = cycle(m.careerIdx, delta, len(tui.CareerLevels))
	case fieldInterviewers:
		m.interviewersIdx = cycle(m.interviewersIdx, delta, len(tui.InterviewerChoices))
	case fieldDuration:
		m.durationIdx = cycle(m.durationIdx, delta, len(tui.DurationChoices))
	}
}

// View renders the console.
func (m ConsoleModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("prepdeck — mock interview practice"))
	b.WriteString("\n\n")

	if m.alert != "" {
		b.WriteString(tui.ErrorStyle.Render(m.alert))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderSetup())
	b.WriteString("\n")
	b.WriteString(m.renderHistory())
	b.WriteString("\n")

	if m.confirmDelete != "" {
		b.WriteString(tui.WarningStyle.Render("Delete this session permanently? (y/n)"))
		b.WriteString("\n")
	} else {
		b.WriteString(tui.DimStyle.Render("tab: switch pane • ↑↓: move • ←→: change • enter: start/open • d: delete • ctrl+c: quit"))
		b.WriteString("\n")
	}

	return b.String()
}

func (m ConsoleModel) renderSetup() string {
	active := m.pane == paneSetup

	row := func(field int, label, value string) string {
		marker := "  "
		if active && m.field == field {
			marker = SelectedMarker()
			value = tui.SelectedStyle.Render(value)
		}
		return fmt.Sprintf("%s%-14s %s", marker, label, value)
	}

	lines := []string{
		row(fieldRole, "Target role", m.roleInput.View()),
		row(fieldDifficulty, "Difficulty", tui.Difficulties[m.difficultyIdx]),
		row(fieldCareer, "Career level", tui.CareerLevels[m.careerIdx]),
		row(fieldInterviewers, "Interviewers", fmt.Sprintf("%d", tui.InterviewerChoices[m.interviewersIdx])),
		row(fieldDuration, "Duration", fmt.Sprintf("%d minutes", tui.DurationChoices[m.durationIdx])),
		"",
		row(fieldStart, "", startLabel(active && m.field == fieldStart)),
	}

	title := "New Session"
	if active {
		title = tui.SelectedStyle.Render(title)
	}
	return tui.BoxStyle.Render(title + "\n\n" + strings.Join(lines, "\n"))
}

func (m ConsoleModel) renderHistory() string {
	active := m.pane == paneHistory

	title := "Past Sessions"
	if active {
		title = tui.SelectedStyle.Render(title)
	}

	var body string
	switch {
	case m.loading:
		body = m.spinner.View() + " Loading history..."
	case len(m.sessions) == 0:
		body = tui.DimStyle.Render("No past sessions yet.")
	default:
		var rows []string
		for i, s := range m.sessions {
			rows = append(rows, m.renderRow(i, s, active))
		}
		body = strings.Join(rows, "\n")
	}

	return tui.BoxStyle.Render(title + "\n\n" + body)
}

func (m ConsoleModel) renderRow(i int, s api.SessionSummary, active bool) string {
	marker := "  "
	line := fmt.Sprintf("%-28s %-8s %d interviewer(s)", truncate(s.TargetRole, 28), s.Difficulty, s.NumInterviewers)
	if s.HireRecommendation != "" {
		line += "  " + tui.BadgeStyle.Render(s.HireRecommendation)
	}
	if s.Summary != "" {
		line += "\n    " + tui.DimStyle.Render(truncate(s.Summary, 70))
	}
	if active && i == m.cursor {
		marker = SelectedMarker()
		return marker + tui.SelectedStyle.Render(line)
	}
	return marker + line
}

func startLabel(selected bool) string {
	label := "[ Start Interview ]"
	if selected {
		return tui.SuccessStyle.Render(label)
	}
	return label
}

// SelectedMarker is the cursor prefix for the focused row.
func SelectedMarker() string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Render("> ")
}

func indexOf(values []string, want string, fallback int) int {
	for i, v := range values {
		if strings.EqualFold(v, want) {
			return i
		}
	}
	return fallback
}

func indexOfInt(values []int, want, fallback int) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return fallback
}

func cycle(idx, delta, n int) int {
	return (idx + delta + n) % n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

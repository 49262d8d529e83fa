package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"igmonthly/pkg/report"
)

// Phase is the screen the program is currently showing.
type Phase int

const (
	// PhaseForm collects credentials, handles and the month range.
	PhaseForm Phase = iota
	// PhaseRunning shows live batch progress.
	PhaseRunning
	// PhaseResults shows the result table and export keys.
	PhaseResults
)

// Form input indexes.
const (
	fieldUsername = iota
	fieldPassword
	fieldFrom
	fieldTo
	fieldHandles
	fieldCount
)

// FormValues is what the form hands to the command layer on submit.
type FormValues struct {
	Username string
	Password string
	Handles  string
	From     string
	To       string
}

// ExportKind selects which artifact an export key produces.
type ExportKind string

const (
	ExportCSV ExportKind = "csv"
	ExportLog ExportKind = "log"
)

// LogMessage represents a log entry in the running view
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model represents the TUI model
type Model struct {
	phase Phase

	// Form components
	inputs  []textinput.Model
	handles textarea.Model
	focus   int
	formErr string

	// Running state
	spinner        spinner.Model
	targetsTotal   int
	targetsDone    int
	rowsAdded      int
	batchStartTime time.Time
	logMessages    []LogMessage
	maxLogMessages int

	// Results state
	rows       []report.PostCountRow
	lastExport string

	// Callbacks into the command layer
	onSubmit func(FormValues)
	onExport func(ExportKind) (string, error)

	// UI state
	width    int
	height   int
	showHelp bool
	quitting bool
}

// NewModel creates a new TUI model starting at the form.
func NewModel(onSubmit func(FormValues), onExport func(ExportKind) (string, error)) Model {
	inputs := make([]textinput.Model, 4)

	username := textinput.New()
	username.Placeholder = "Instagram username"
	username.CharLimit = 64
	username.Width = 40
	username.Focus()
	inputs[fieldUsername] = username

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 40
	inputs[fieldPassword] = password

	from := textinput.New()
	from.Placeholder = "From (YYYY-MM)"
	from.CharLimit = 7
	from.Width = 12
	inputs[fieldFrom] = from

	to := textinput.New()
	to.Placeholder = "To (YYYY-MM)"
	to.CharLimit = 7
	to.Width = 12
	inputs[fieldTo] = to

	handles := textarea.New()
	handles.Placeholder = "Handles, URLs or IG: lines, one per line"
	handles.SetWidth(60)
	handles.SetHeight(6)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	return Model{
		phase:          PhaseForm,
		inputs:         inputs,
		handles:        handles,
		spinner:        s,
		maxLogMessages: 50,
		onSubmit:       onSubmit,
		onExport:       onExport,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Phase returns the current screen.
func (m *Model) Phase() Phase {
	return m.phase
}

// Rows returns the collected result rows.
func (m *Model) Rows() []report.PostCountRow {
	return m.rows
}

// values snapshots the form fields.
func (m *Model) values() FormValues {
	return FormValues{
		Username: strings.TrimSpace(m.inputs[fieldUsername].Value()),
		Password: m.inputs[fieldPassword].Value(),
		Handles:  m.handles.Value(),
		From:     strings.TrimSpace(m.inputs[fieldFrom].Value()),
		To:       strings.TrimSpace(m.inputs[fieldTo].Value()),
	}
}

// validate reports the first missing form field, empty when complete.
func (m *Model) validate() string {
	v := m.values()
	switch {
	case v.Username == "":
		return "username is required"
	case v.Password == "":
		return "password is required"
	case strings.TrimSpace(v.Handles) == "":
		return "at least one handle is required"
	case v.From == "":
		return "start month is required"
	case v.To == "":
		return "end month is required"
	}
	return ""
}

// beginRun transitions the form into the running phase.
func (m *Model) beginRun() {
	m.phase = PhaseRunning
	m.batchStartTime = time.Now()
	m.rowsAdded = 0
	m.targetsDone = 0
	m.rows = nil
}

// AddLogMessage adds a log message to the running view
func (m *Model) AddLogMessage(level, message string) {
	color := dimWhite
	switch level {
	case "ERROR":
		color = lipgloss.Color("#FF0000")
	case "WARN":
		color = neonOrange
	case "SUCCESS":
		color = neonGreen
	case "INFO":
		color = neonCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	// Keep only the last N messages
	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// focusField moves keyboard focus to the given form field.
func (m *Model) focusField(idx int) tea.Cmd {
	if idx < 0 {
		idx = fieldCount - 1
	}
	m.focus = idx % fieldCount

	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.focus {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	if m.focus == fieldHandles {
		cmd = m.handles.Focus()
	} else {
		m.handles.Blur()
	}
	return cmd
}

package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"igmonthly/pkg/report"
)

// Message types for the TUI

// RowMsg is sent when the driver appends a result row
type RowMsg struct {
	Row report.PostCountRow
}

// ProgressMsg carries one progress or error line
type ProgressMsg struct {
	Message string
}

// TargetDoneMsg is sent when one target finishes
type TargetDoneMsg struct {
	Message string
}

// BatchDoneMsg is sent after the last target
type BatchDoneMsg struct{}

// ResultsMsg carries the final result set and switches to the table view
type ResultsMsg struct {
	Rows []report.PostCountRow
}

// TargetsTotalMsg announces how many targets the batch holds
type TargetsTotalMsg struct {
	Total int
}

// ExportedMsg is sent after an export key produced an artifact
type ExportedMsg struct {
	Path string
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		return m, tea.Batch(tickCmd(), m.spinner.Tick)

	case TargetsTotalMsg:
		m.targetsTotal = msg.Total
		return m, nil

	case RowMsg:
		m.rowsAdded++
		m.rows = append(m.rows, msg.Row)
		return m, nil

	case ProgressMsg:
		level := "SUCCESS"
		if len(msg.Message) >= 5 && msg.Message[:5] == "Error" {
			level = "ERROR"
		}
		m.AddLogMessage(level, msg.Message)
		return m, nil

	case TargetDoneMsg:
		m.targetsDone++
		m.AddLogMessage("INFO", msg.Message)
		return m, nil

	case BatchDoneMsg:
		m.AddLogMessage("SUCCESS", "Batch complete")
		return m, nil

	case ResultsMsg:
		m.rows = msg.Rows
		m.phase = PhaseResults
		return m, nil

	case ExportedMsg:
		m.lastExport = msg.Path
		m.AddLogMessage("SUCCESS", "Exported "+msg.Path)
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	// Route remaining messages to the focused form component.
	if m.phase == PhaseForm {
		return m, m.updateFormComponents(msg)
	}
	return m, nil
}

// handleKeyPress handles keyboard input per phase
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	}

	switch m.phase {
	case PhaseForm:
		return m.handleFormKey(msg)
	case PhaseRunning:
		if msg.String() == "q" {
			m.quitting = true
			return m, tea.Quit
		}
	case PhaseResults:
		return m.handleResultsKey(msg)
	}
	return m, nil
}

func (m *Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab", "down":
		if m.focus == fieldHandles && msg.String() == "down" {
			break // let the textarea consume cursor movement
		}
		return m, m.focusField(m.focus + 1)

	case "shift+tab", "up":
		if m.focus == fieldHandles && msg.String() == "up" {
			break
		}
		return m, m.focusField(m.focus - 1)

	case "enter":
		// The textarea needs enter for new lines; submit from anywhere
		// else once the form is complete.
		if m.focus != fieldHandles {
			return m.submit()
		}

	case "ctrl+s":
		return m.submit()
	}

	return m, m.updateFormComponents(msg)
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	if errMsg := m.validate(); errMsg != "" {
		m.formErr = errMsg
		return m, nil
	}
	m.formErr = ""
	values := m.values()
	m.beginRun()

	cmds := []tea.Cmd{m.spinner.Tick, tickCmd()}
	if m.onSubmit != nil {
		cmds = append(cmds, func() tea.Msg {
			m.onSubmit(values)
			return nil
		})
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "c":
		return m, m.exportCmd(ExportCSV)
	case "l":
		return m, m.exportCmd(ExportLog)
	}
	return m, nil
}

func (m *Model) exportCmd(kind ExportKind) tea.Cmd {
	if m.onExport == nil {
		return nil
	}
	return func() tea.Msg {
		path, err := m.onExport(kind)
		if err != nil {
			return LogMsg{Level: "ERROR", Message: "Export failed: " + err.Error()}
		}
		return ExportedMsg{Path: path}
	}
}

// updateFormComponents routes input to the focused field.
func (m *Model) updateFormComponents(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	m.handles, cmd = m.handles.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

// Commands

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Helper functions for external use

// SendRow creates a message for an appended result row
func SendRow(row report.PostCountRow) tea.Msg {
	return RowMsg{Row: row}
}

// SendTargetsTotal creates a batch size announcement
func SendTargetsTotal(total int) tea.Msg {
	return TargetsTotalMsg{Total: total}
}

// SendProgress creates a progress line message
func SendProgress(message string) tea.Msg {
	return ProgressMsg{Message: message}
}

// SendTargetDone creates a target completion message
func SendTargetDone(message string) tea.Msg {
	return TargetDoneMsg{Message: message}
}

// SendBatchDone creates a batch completion message
func SendBatchDone() tea.Msg {
	return BatchDoneMsg{}
}

// SendResults creates the final results message
func SendResults(rows []report.PostCountRow) tea.Msg {
	return ResultsMsg{Rows: rows}
}

// SendLog creates a log message
func SendLog(level, message string) tea.Msg {
	return LogMsg{Level: level, Message: message}
}

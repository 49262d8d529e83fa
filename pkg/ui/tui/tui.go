package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"igmonthly/pkg/report"
	"igmonthly/pkg/scan"
)

// TUI wraps the bubbletea program and feeds it batch events.
type TUI struct {
	program *tea.Program
	model   *Model
}

// New creates a TUI. onSubmit is invoked when the form is submitted,
// onExport when an export key is pressed on the results screen.
func New(onSubmit func(FormValues), onExport func(ExportKind) (string, error)) *TUI {
	model := NewModel(onSubmit, onExport)
	program := tea.NewProgram(&model, tea.WithAltScreen())

	return &TUI{
		program: program,
		model:   &model,
	}
}

// Start runs the program until the user quits.
func (t *TUI) Start() error {
	go func() {
		// Send initial tick to start the spinner
		time.Sleep(100 * time.Millisecond)
		t.program.Send(TickMsg(time.Now()))
	}()

	_, err := t.program.Run()
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// SetTargetsTotal announces the batch size before the first target runs.
func (t *TUI) SetTargetsTotal(n int) {
	t.Send(SendTargetsTotal(n))
}

// HandleEvent forwards a batch event into the running view.
func (t *TUI) HandleEvent(ev scan.Event) {
	switch ev.Type {
	case scan.EventRow:
		if ev.Row != nil {
			t.Send(SendRow(*ev.Row))
		}
	case scan.EventProgress:
		t.Send(SendProgress(ev.Message))
	case scan.EventTargetDone:
		t.Send(SendTargetDone(ev.Message))
	case scan.EventBatchDone:
		t.Send(SendBatchDone())
	}
}

// Summary switches the TUI to the results table.
func (t *TUI) Summary(rows []report.PostCountRow) {
	t.Send(SendResults(rows))
}

// Log sends a log message to the TUI
func (t *TUI) Log(level, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	t.Send(SendLog(level, message))
}

// LogInfo logs an info message
func (t *TUI) LogInfo(format string, args ...interface{}) {
	t.Log("INFO", format, args...)
}

// LogSuccess logs a success message
func (t *TUI) LogSuccess(format string, args ...interface{}) {
	t.Log("SUCCESS", format, args...)
}

// LogWarning logs a warning message
func (t *TUI) LogWarning(format string, args ...interface{}) {
	t.Log("WARN", format, args...)
}

// LogError logs an error message
func (t *TUI) LogError(format string, args ...interface{}) {
	t.Log("ERROR", format, args...)
}

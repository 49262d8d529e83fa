package ui

import (
	"igmonthly/pkg/report"
	"igmonthly/pkg/scan"
)

// Renderer receives batch driver events and the final result set. The
// colorized terminal display and the bubbletea program both implement it,
// so the command layer can swap one for the other.
type Renderer interface {
	HandleEvent(ev scan.Event)
	Summary(rows []report.PostCountRow)
}

package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// StatusTracker keeps track of batch scan progress
type StatusTracker struct {
	TotalRows    int
	TargetsDone  int
	TargetsTotal int
	StartTime    time.Time
}

// NewStatusTracker creates a new status tracker for a batch of targets
func NewStatusTracker(targetsTotal int) *StatusTracker {
	return &StatusTracker{
		TargetsTotal: targetsTotal,
		StartTime:    time.Now(),
	}
}

// IncrementRows counts one appended result row
func (st *StatusTracker) IncrementRows() {
	st.TotalRows++
}

// TargetCompleted counts one finished target
func (st *StatusTracker) TargetCompleted() {
	st.TargetsDone++
}

// GetBatchProgress returns a formatted progress bar over targets
func (st *StatusTracker) GetBatchProgress() string {
	const width = 20
	total := st.TargetsTotal
	if total == 0 {
		total = 1
	}
	progress := float64(st.TargetsDone) / float64(total)
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.TargetsDone, st.TargetsTotal)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetScanRate returns the average scan rate (rows per minute)
func (st *StatusTracker) GetScanRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.TotalRows) / elapsed
}

// PrintProgress prints the current progress status
func (st *StatusTracker) PrintProgress() {
	if IsQuietMode() {
		return
	}
	fmt.Printf("\r%s Rows: %d | Targets: %s",
		Green("[SCANNED]"),
		st.TotalRows,
		st.GetBatchProgress())
}

// IsDone reports whether every target has been processed
func (st *StatusTracker) IsDone() bool {
	return st.TargetsTotal > 0 && st.TargetsDone >= st.TargetsTotal
}

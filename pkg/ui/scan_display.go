package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"igmonthly/pkg/report"
	"igmonthly/pkg/scan"
)

// ScanDisplay renders batch driver events as colorized terminal lines and
// prints the summary table at the end of the run.
type ScanDisplay struct {
	mu      sync.Mutex
	tracker *StatusTracker
}

// NewScanDisplay creates a display for a batch of the given size.
func NewScanDisplay(targetsTotal int) *ScanDisplay {
	return &ScanDisplay{tracker: NewStatusTracker(targetsTotal)}
}

// HandleEvent is the driver observer hook.
func (d *ScanDisplay) HandleEvent(ev scan.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch ev.Type {
	case scan.EventRow:
		d.tracker.IncrementRows()
	case scan.EventProgress:
		if strings.HasPrefix(ev.Message, "Error") {
			PrintError(ev.Message)
		} else {
			PrintSuccess(ev.Message)
		}
	case scan.EventTargetDone:
		d.tracker.TargetCompleted()
		PrintInfo("Target", ev.Message)
	case scan.EventBatchDone:
		if !IsQuietMode() {
			fmt.Printf("\n%s %s in %s (%.1f rows/min)\n",
				Green("✓"),
				fmt.Sprintf("Processed %d targets, %d rows", d.tracker.TargetsDone, d.tracker.TotalRows),
				formatDuration(d.tracker.GetElapsedTime()),
				d.tracker.GetScanRate(),
			)
		}
	}
}

// Summary prints the result rows as an aligned table.
func (d *ScanDisplay) Summary(rows []report.PostCountRow) {
	if IsQuietMode() || len(rows) == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	header := fmt.Sprintf("%-20s %-11s %-6s %-10s %s", "Instagram ID", "Post Count", "Year", "Month", "Links")
	fmt.Println()
	fmt.Println(Cyan(header))
	fmt.Println(Dim(strings.Repeat("─", len(header))))
	for _, row := range rows {
		links := row.LinksCell()
		if len(links) > 60 {
			links = links[:57] + "..."
		}
		fmt.Printf("%-20s %-11d %-6s %-10s %s\n", row.Handle, row.PostCount, row.Year, row.Month, links)
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

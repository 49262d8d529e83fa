package ui

import (
	"strings"
	"testing"
	"time"

	"igmonthly/pkg/report"
	"igmonthly/pkg/scan"
)

func TestStatusTrackerCounts(t *testing.T) {
	st := NewStatusTracker(3)

	st.IncrementRows()
	st.IncrementRows()
	st.TargetCompleted()

	if st.TotalRows != 2 {
		t.Errorf("Expected 2 rows, got %d", st.TotalRows)
	}
	if st.TargetsDone != 1 {
		t.Errorf("Expected 1 target done, got %d", st.TargetsDone)
	}
	if st.IsDone() {
		t.Error("Expected tracker not to be done")
	}

	st.TargetCompleted()
	st.TargetCompleted()
	if !st.IsDone() {
		t.Error("Expected tracker to be done after all targets")
	}
}

func TestBatchProgressBar(t *testing.T) {
	st := NewStatusTracker(4)
	st.TargetCompleted()

	bar := st.GetBatchProgress()
	if !strings.Contains(bar, "1/4") {
		t.Errorf("Expected 1/4 in progress bar, got %q", bar)
	}
	if strings.Count(bar, ProgressBar) != 5 {
		t.Errorf("Expected 5 filled cells at 25%%, got %q", bar)
	}
}

func TestScanRate(t *testing.T) {
	st := NewStatusTracker(1)
	st.StartTime = time.Now().Add(-time.Minute)
	st.TotalRows = 30

	rate := st.GetScanRate()
	if rate < 25 || rate > 35 {
		t.Errorf("Expected roughly 30 rows/min, got %f", rate)
	}
}

func TestScanDisplayTracksEvents(t *testing.T) {
	SetQuietMode(true)
	defer SetQuietMode(false)

	d := NewScanDisplay(2)
	row := report.NewRow("alice", 3, 2024, time.February, nil)

	d.HandleEvent(scan.Event{Type: scan.EventRow, Handle: "alice", Row: &row})
	d.HandleEvent(scan.Event{Type: scan.EventTargetDone, Handle: "alice", Message: "Completed processing for alice."})
	d.HandleEvent(scan.Event{Type: scan.EventBatchDone})

	if d.tracker.TotalRows != 1 {
		t.Errorf("Expected 1 row tracked, got %d", d.tracker.TotalRows)
	}
	if d.tracker.TargetsDone != 1 {
		t.Errorf("Expected 1 target tracked, got %d", d.tracker.TargetsDone)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		45 * time.Second:               "45s",
		2*time.Minute + 5*time.Second:  "2m5s",
		time.Hour + 30*time.Minute:     "1h30m",
	}
	for d, want := range cases {
		if got := formatDuration(d); got != want {
			t.Errorf("formatDuration(%v) = %q, want %q", d, got, want)
		}
	}
}

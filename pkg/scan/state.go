package scan

import "igmonthly/pkg/report"

// RunState is the session-scoped store for one processing run. It is
// owned by the command layer and handed down so nothing here reaches for
// ambient state.
type RunState struct {
	Client    Client
	Results   []report.PostCountRow
	Completed bool
}

// NewRunState creates an empty run state around a client.
func NewRunState(client Client) *RunState {
	return &RunState{Client: client}
}

// Reset clears results before a new run.
func (s *RunState) Reset() {
	s.Results = nil
	s.Completed = false
}

// Append records a result row in scan order.
func (s *RunState) Append(row report.PostCountRow) {
	s.Results = append(s.Results, row)
}

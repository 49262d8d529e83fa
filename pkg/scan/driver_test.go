package scan

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igmonthly/pkg/config"
	errs "igmonthly/pkg/errors"
	"igmonthly/pkg/instagram"
	"igmonthly/pkg/report"
)

type recordingObserver struct {
	events []Event
}

func (o *recordingObserver) observe(ev Event) {
	o.events = append(o.events, ev)
}

func (o *recordingObserver) messages(typ EventType) []string {
	var msgs []string
	for _, ev := range o.events {
		if ev.Type == typ {
			msgs = append(msgs, ev.Message)
		}
	}
	return msgs
}

func (o *recordingObserver) count(typ EventType) int {
	n := 0
	for _, ev := range o.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

type fakeRecoverer struct {
	causes []error
	result error
}

func (r *fakeRecoverer) Recover(ctx context.Context, cause error) error {
	r.causes = append(r.causes, cause)
	return r.result
}

func testScanConfig() *config.ScanConfig {
	return &config.ScanConfig{FeedWindow: 1000, JitterMin: 0, JitterMax: 0}
}

func newTestDriver(client Client, rec Recoverer, obs Observer) *Driver {
	return NewDriver(client, rec, testScanConfig(), obs)
}

func TestDriverEndToEnd(t *testing.T) {
	feb := func(day int) time.Time { return time.Date(2024, 2, day, 12, 0, 0, 0, time.UTC) }
	client := &fakeFeedClient{
		users: map[string]int64{"alice": 7},
		feed: []feedResult{{medias: []instagram.Media{
			mediaAt("f1", feb(3)),
			mediaAt("f2", feb(14)),
			mediaAt("f3", feb(28)),
		}}},
	}
	obs := &recordingObserver{}
	driver := newTestDriver(client, nil, obs.observe)
	state := NewRunState(client)

	err := driver.Run(context.Background(), state, []string{"alice"}, Month{2024, time.January}, Month{2024, time.March})
	require.NoError(t, err)

	require.Len(t, state.Results, 3, "one row per month in range")
	assert.True(t, state.Completed)

	jan, febRow, mar := state.Results[0], state.Results[1], state.Results[2]
	assert.Equal(t, 0, jan.PostCount)
	assert.Equal(t, "January", jan.Month)
	assert.Equal(t, 3, febRow.PostCount)
	assert.Equal(t, "February", febRow.Month)
	assert.Equal(t, "2024", febRow.Year)
	assert.Equal(t, 0, mar.PostCount)

	progress := obs.messages(EventProgress)
	require.Len(t, progress, 3)
	assert.Contains(t, progress[1], "Completed alice | February 2024 | Posts: 3 | Time: ")
	assert.Contains(t, progress[1], " sec")

	done := obs.messages(EventTargetDone)
	assert.Equal(t, []string{"Completed processing for alice."}, done)
	assert.Equal(t, 1, obs.count(EventBatchDone))
}

func TestDriverRowsEqualTargetsTimesMonths(t *testing.T) {
	client := &fakeFeedClient{
		users: map[string]int64{"alice": 1, "bob": 2},
		feed:  []feedResult{{medias: nil}},
	}
	driver := newTestDriver(client, nil, nil)
	state := NewRunState(client)

	err := driver.Run(context.Background(), state, []string{"alice", "bob"}, Month{2024, time.January}, Month{2024, time.February})
	require.NoError(t, err)
	assert.Len(t, state.Results, 4)
}

func TestDriverDedupsTargetsByFirstOccurrence(t *testing.T) {
	client := &fakeFeedClient{
		users: map[string]int64{"alice": 1, "bob": 2},
		feed:  []feedResult{{medias: nil}},
	}
	obs := &recordingObserver{}
	driver := newTestDriver(client, nil, obs.observe)
	state := NewRunState(client)

	err := driver.Run(context.Background(), state, []string{"alice", "bob", "alice"}, Month{2024, time.January}, Month{2024, time.January})
	require.NoError(t, err)

	assert.Len(t, state.Results, 2)
	assert.Equal(t, []string{
		"Completed processing for alice.",
		"Completed processing for bob.",
	}, obs.messages(EventTargetDone))
}

func TestDriverUserNotFoundPlaceholder(t *testing.T) {
	client := &fakeFeedClient{
		users: map[string]int64{"alice": 1},
		feed:  []feedResult{{medias: nil}},
	}
	obs := &recordingObserver{}
	driver := newTestDriver(client, nil, obs.observe)
	state := NewRunState(client)

	err := driver.Run(context.Background(), state, []string{"ghost", "alice"}, Month{2024, time.January}, Month{2024, time.February})
	require.NoError(t, err, "the batch never aborts on a per-target error")

	// One placeholder for ghost, two real rows for alice.
	require.Len(t, state.Results, 3)
	assert.Equal(t, report.NotFoundRow("ghost"), state.Results[0])
	assert.Contains(t, obs.messages(EventProgress), "Error: User ghost not found.")
	assert.Equal(t, 2, obs.count(EventTargetDone))
}

func TestDriverErrorRowAfterPartialMonths(t *testing.T) {
	cause := errs.New(errs.KindLoginRequired, "login_required")
	client := &fakeFeedClient{
		users: map[string]int64{"alice": 1, "bob": 2},
		feed: []feedResult{
			{medias: nil}, // alice January succeeds
			{err: cause},  // alice February fails
			{medias: nil}, // bob continues normally
		},
	}
	rec := &fakeRecoverer{}
	obs := &recordingObserver{}
	driver := newTestDriver(client, rec, obs.observe)
	state := NewRunState(client)

	err := driver.Run(context.Background(), state, []string{"alice", "bob"}, Month{2024, time.January}, Month{2024, time.March})
	require.NoError(t, err)

	// alice: one counted month + one error placeholder; bob: all three months.
	require.Len(t, state.Results, 5)
	assert.Equal(t, "January", state.Results[0].Month)
	assert.Equal(t, report.ErrorRow("alice"), state.Results[1])
	assert.Equal(t, "bob", state.Results[2].Handle)

	require.Len(t, rec.causes, 1)
	assert.Equal(t, cause, rec.causes[0])
	assert.Contains(t, obs.messages(EventProgress), fmt.Sprintf("Error retrieving posts for alice: %v", cause))
}

func TestDriverReversedRangeFails(t *testing.T) {
	client := &fakeFeedClient{}
	driver := newTestDriver(client, nil, nil)

	err := driver.Run(context.Background(), NewRunState(client), []string{"alice"}, Month{2024, time.March}, Month{2024, time.January})
	assert.Error(t, err)
}

func TestDriverHonorsCancellation(t *testing.T) {
	client := &fakeFeedClient{
		users: map[string]int64{"alice": 1},
		feed:  []feedResult{{medias: nil}},
	}
	driver := newTestDriver(client, nil, nil)
	state := NewRunState(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := driver.Run(ctx, state, []string{"alice"}, Month{2024, time.January}, Month{2024, time.January})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, state.Results)
	assert.False(t, state.Completed)
}

package scan

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"igmonthly/pkg/config"
	errs "igmonthly/pkg/errors"
	"igmonthly/pkg/logger"
	"igmonthly/pkg/report"
)

// EventType discriminates driver events.
type EventType int

const (
	// EventRow fires after a result row is appended.
	EventRow EventType = iota
	// EventProgress fires for every user-facing progress or error line.
	EventProgress
	// EventTargetDone fires once per target, errors included.
	EventTargetDone
	// EventBatchDone fires once, after the last target.
	EventBatchDone
)

// Event is a driver notification. Row is set for EventRow, Message for
// EventProgress and EventTargetDone.
type Event struct {
	Type    EventType
	Handle  string
	Row     *report.PostCountRow
	Message string
}

// Observer receives driver events. Renderers subscribe here so the
// driver knows neither the CLI nor the TUI.
type Observer func(Event)

// Recoverer applies the account recovery policy to a failure that
// happened mid-run.
type Recoverer interface {
	Recover(ctx context.Context, cause error) error
}

// Driver walks targets × months, appending one row per pair and never
// aborting the batch on a per-target failure.
type Driver struct {
	client    Client
	recoverer Recoverer
	cfg       *config.ScanConfig
	observer  Observer
	log       logger.Logger
	rng       *rand.Rand
}

// NewDriver wires a batch driver. The recoverer and observer may be nil.
func NewDriver(client Client, recoverer Recoverer, cfg *config.ScanConfig, observer Observer) *Driver {
	return &Driver{
		client:    client,
		recoverer: recoverer,
		cfg:       cfg,
		observer:  observer,
		log:       logger.GetLogger(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run processes every target over every month in [from, to] inclusive.
// Targets are deduplicated by first occurrence. Rows land in the run
// state in scan order; progress streams to the observer.
func (d *Driver) Run(ctx context.Context, state *RunState, targets []string, from, to Month) error {
	months, err := MonthRange(from, to)
	if err != nil {
		return err
	}

	state.Reset()
	for _, username := range dedup(targets) {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.processTarget(ctx, state, username, months)
		d.emit(Event{
			Type:    EventTargetDone,
			Handle:  username,
			Message: fmt.Sprintf("Completed processing for %s.", username),
		})
	}
	state.Completed = true
	d.emit(Event{Type: EventBatchDone})
	return nil
}

// processTarget appends one row per month, or a single placeholder when
// the target cannot be processed at all.
func (d *Driver) processTarget(ctx context.Context, state *RunState, username string, months []Month) {
	userID, err := d.client.UserIDFromUsername(ctx, username)
	if err != nil {
		if errs.IsKind(err, errs.KindUserNotFound) {
			msg := fmt.Sprintf("Error: User %s not found.", username)
			d.log.Error(msg)
			d.addRow(state, username, report.NotFoundRow(username), msg)
			return
		}
		d.failTarget(ctx, state, username, err)
		return
	}

	for _, month := range months {
		started := time.Now()
		count, links, err := CountPostsForMonth(ctx, d.client, userID, month, d.cfg.FeedWindow)
		if err != nil {
			d.failTarget(ctx, state, username, err)
			return
		}

		row := report.NewRow(username, count, month.Year, month.Month, links)
		msg := fmt.Sprintf("Completed %s | %s %d | Posts: %d | Time: %.2f sec",
			username, month.Month, month.Year, count, time.Since(started).Seconds())
		d.log.Info(msg)
		d.addRow(state, username, row, msg)

		if err := d.sleep(ctx); err != nil {
			return
		}
	}
}

// failTarget routes the error through the recovery policy, records the
// placeholder row, and lets the batch continue with the next target.
func (d *Driver) failTarget(ctx context.Context, state *RunState, username string, cause error) {
	if d.recoverer != nil {
		if rerr := d.recoverer.Recover(ctx, cause); rerr != nil {
			d.log.WithError(rerr).WithField("username", username).Debug("Recovery did not clear the failure")
		}
	}
	msg := fmt.Sprintf("Error retrieving posts for %s: %v", username, cause)
	d.log.Error(msg)
	d.addRow(state, username, report.ErrorRow(username), msg)
}

func (d *Driver) addRow(state *RunState, username string, row report.PostCountRow, msg string) {
	state.Append(row)
	d.emit(Event{Type: EventRow, Handle: username, Row: &row})
	d.emit(Event{Type: EventProgress, Handle: username, Message: msg})
}

func (d *Driver) emit(ev Event) {
	if d.observer != nil {
		d.observer(ev)
	}
}

// sleep pauses a uniformly random interval between month calls so the
// request pattern does not look mechanical.
func (d *Driver) sleep(ctx context.Context) error {
	min, max := d.cfg.JitterMin, d.cfg.JitterMax
	if max <= min {
		if min <= 0 {
			return ctx.Err()
		}
		max = min
	}
	delay := min + time.Duration(d.rng.Int63n(int64(max-min)+1))
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dedup keeps the first occurrence of each target.
func dedup(targets []string) []string {
	seen := make(map[string]struct{}, len(targets))
	var out []string
	for _, t := range targets {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Package report defines the result rows produced by a month scan.
package report

import (
	"strconv"
	"strings"
	"time"
)

// Placeholder link cells for targets that produced no countable months.
const (
	LinksUserNotFound = "User not found"
	LinksError        = "Error occurred"
)

// PostCountRow is one (target, month) result. Placeholder rows carry "-"
// for year and month and a fixed links cell describing the failure.
type PostCountRow struct {
	Handle    string   `json:"instagram_id"`
	PostCount int      `json:"post_count"`
	Year      string   `json:"year"`
	Month     string   `json:"month"`
	Links     []string `json:"links"`
}

// NewRow builds a result row for a counted month. The month is stored by
// its English name, matching the export format.
func NewRow(handle string, count int, year int, month time.Month, links []string) PostCountRow {
	return PostCountRow{
		Handle:    handle,
		PostCount: count,
		Year:      strconv.Itoa(year),
		Month:     month.String(),
		Links:     links,
	}
}

// NotFoundRow is the single placeholder emitted when the target username
// does not resolve to an account.
func NotFoundRow(handle string) PostCountRow {
	return PostCountRow{
		Handle: handle,
		Year:   "-",
		Month:  "-",
		Links:  []string{LinksUserNotFound},
	}
}

// ErrorRow is the placeholder emitted when counting failed for any other
// reason.
func ErrorRow(handle string) PostCountRow {
	return PostCountRow{
		Handle: handle,
		Year:   "-",
		Month:  "-",
		Links:  []string{LinksError},
	}
}

// LinksCell renders the links column, pipe-delimited with spaces.
func (r PostCountRow) LinksCell() string {
	return strings.Join(r.Links, " | ")
}

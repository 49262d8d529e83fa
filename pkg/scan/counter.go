package scan

import (
	"context"

	"igmonthly/pkg/instagram"
)

// DefaultFeedWindow caps how many recent posts are inspected per user.
// Accounts with more posts than this inside the range are undercounted.
const DefaultFeedWindow = 1000

// Client is the slice of the Instagram client the scan layer needs.
type Client interface {
	UserIDFromUsername(ctx context.Context, username string) (int64, error)
	UserMedias(ctx context.Context, userID int64, amount int) ([]instagram.Media, error)
}

// CountPostsForMonth counts a user's posts taken within the given month
// and returns their permalinks in feed order. Timestamps are compared in
// UTC against [start of month, start of next month).
func CountPostsForMonth(ctx context.Context, client Client, userID int64, month Month, window int) (int, []string, error) {
	if window <= 0 {
		window = DefaultFeedWindow
	}

	medias, err := client.UserMedias(ctx, userID, window)
	if err != nil {
		return 0, nil, err
	}

	start := month.Start()
	end := month.Next().Start()

	count := 0
	var links []string
	for _, m := range medias {
		taken := m.TakenAt.UTC()
		if !taken.Before(start) && taken.Before(end) {
			count++
			links = append(links, m.PostURL())
		}
	}
	return count, links, nil
}

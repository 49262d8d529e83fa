package scan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "igmonthly/pkg/errors"
	"igmonthly/pkg/instagram"
)

type feedResult struct {
	medias []instagram.Media
	err    error
}

// fakeFeedClient scripts user lookups and feed fetches. Feed results pop
// per UserMedias call; the last entry repeats once the queue is drained.
type fakeFeedClient struct {
	users      map[string]int64
	userErrs   map[string]error
	feed       []feedResult
	feedCalls  int
	lastAmount int
}

func (f *fakeFeedClient) UserIDFromUsername(ctx context.Context, username string) (int64, error) {
	if err, ok := f.userErrs[username]; ok {
		return 0, err
	}
	id, ok := f.users[username]
	if !ok {
		return 0, errs.Newf(errs.KindUserNotFound, "user %s not found", username)
	}
	return id, nil
}

func (f *fakeFeedClient) UserMedias(ctx context.Context, userID int64, amount int) ([]instagram.Media, error) {
	f.lastAmount = amount
	idx := f.feedCalls
	if idx >= len(f.feed) {
		idx = len(f.feed) - 1
	}
	f.feedCalls++
	if idx < 0 {
		return nil, nil
	}
	return f.feed[idx].medias, f.feed[idx].err
}

func mediaAt(code string, taken time.Time) instagram.Media {
	return instagram.Media{ID: code + "_1", Code: code, TakenAt: taken}
}

func TestCountPostsForMonthBoundaries(t *testing.T) {
	client := &fakeFeedClient{
		users: map[string]int64{"alice": 7},
		feed: []feedResult{{medias: []instagram.Media{
			mediaAt("jan", time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)),
			mediaAt("feb1", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
			mediaAt("feb29", time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)),
			mediaAt("mar", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		}}},
	}

	count, links, err := CountPostsForMonth(context.Background(), client, 7, Month{2024, time.February}, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{
		"https://www.instagram.com/p/feb1/",
		"https://www.instagram.com/p/feb29/",
	}, links)
	assert.Equal(t, DefaultFeedWindow, client.lastAmount, "zero window falls back to the default cap")
}

func TestCountPostsDecemberRollsToJanuary(t *testing.T) {
	client := &fakeFeedClient{
		feed: []feedResult{{medias: []instagram.Media{
			mediaAt("dec", time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)),
			mediaAt("jan", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		}}},
	}

	count, links, err := CountPostsForMonth(context.Background(), client, 7, Month{2023, time.December}, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"https://www.instagram.com/p/dec/"}, links)
	assert.Equal(t, 100, client.lastAmount)
}

func TestCountPostsNormalizesToUTC(t *testing.T) {
	offset := time.FixedZone("UTC+5", 5*3600)
	client := &fakeFeedClient{
		feed: []feedResult{{medias: []instagram.Media{
			// 2024-03-01 02:00 +05:00 is 2024-02-29 21:00 UTC, inside February.
			mediaAt("late", time.Date(2024, 3, 1, 2, 0, 0, 0, offset)),
		}}},
	}

	count, _, err := CountPostsForMonth(context.Background(), client, 7, Month{2024, time.February}, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCountPostsPropagatesFeedError(t *testing.T) {
	client := &fakeFeedClient{
		feed: []feedResult{{err: errs.New(errs.KindServer, "feed fetch failed with status 500")}},
	}

	_, _, err := CountPostsForMonth(context.Background(), client, 7, Month{2024, time.February}, 100)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindServer))
}

package instagram

import (
	"fmt"
	"net/url"
)

const (
	// BaseAPIURL is the base URL for the private API
	BaseAPIURL = "https://i.instagram.com/api/v1"

	// WebBaseURL is the base URL for the public website
	WebBaseURL = "https://www.instagram.com"

	// LoginEndpoint is the endpoint for account login
	LoginEndpoint = "/accounts/login/"

	// UserInfoEndpoint is the endpoint resolving a username to a profile
	UserInfoEndpoint = "/users/web_profile_info/"

	// UserFeedEndpoint is the endpoint pattern for a user's post feed
	UserFeedEndpoint = "/feed/user/%d/"

	// DefaultFeedPageSize is the number of posts requested per feed page
	DefaultFeedPageSize = 33

	// MaxChallengeSteps bounds the challenge resolve loop
	MaxChallengeSteps = 5
)

// UserInfoPath builds the API path resolving a username to its profile
func UserInfoPath(username string) string {
	params := url.Values{}
	params.Set("username", username)

	return fmt.Sprintf("%s?%s", UserInfoEndpoint, params.Encode())
}

// UserFeedPath builds the API path for one page of a user's post feed.
// maxID is the pagination cursor, empty for the first page.
func UserFeedPath(userID int64, maxID string, count int) string {
	if count <= 0 {
		count = DefaultFeedPageSize
	}

	params := url.Values{}
	params.Set("count", fmt.Sprintf("%d", count))
	if maxID != "" {
		params.Set("max_id", maxID)
	}

	return fmt.Sprintf("%s?%s", fmt.Sprintf(UserFeedEndpoint, userID), params.Encode())
}

// ChallengePath normalizes a challenge API path as returned by the login
// endpoint (it starts with "/challenge/").
func ChallengePath(apiPath string) string {
	if apiPath == "" {
		return ""
	}
	if apiPath[0] != '/' {
		apiPath = "/" + apiPath
	}
	return apiPath
}

// GetPostURL constructs the canonical permalink for a post shortcode
func GetPostURL(shortcode string) string {
	if shortcode == "" {
		return ""
	}
	return fmt.Sprintf("%s/p/%s/", WebBaseURL, shortcode)
}

// SanitizeUsername removes any invalid characters from a username
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}

	// Remove @ symbol if present at the beginning
	if username[0] == '@' {
		username = username[1:]
	}

	// Remove any trailing slashes or spaces
	for len(username) > 0 && (username[len(username)-1] == '/' || username[len(username)-1] == ' ') {
		username = username[:len(username)-1]
	}

	return username
}

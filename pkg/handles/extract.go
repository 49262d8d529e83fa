// Package handles extracts Instagram usernames from free-form text.
//
// Input is typically a pasted list where each line names a target in one
// of three shapes: a profile URL, an "IG:" prefixed handle, or a bare
// username. Extraction preserves input order and keeps duplicates; the
// batch layer decides how to dedupe.
package handles

import (
	"regexp"
	"strings"

	"igmonthly/pkg/instagram"
)

var (
	profileURL   = regexp.MustCompile(`instagram\.com/([^/?]+)`)
	bareUsername = regexp.MustCompile(`^[\w.]+$`)
)

// Extract returns every username found in text, line by line, token by
// token. A token is classified by the first rule that applies:
//
//  1. contains "instagram.com": the path segment after the host;
//  2. contains "IG:": everything after the last "IG:", with slashes
//     stripped;
//  3. matches ^[\w.]+$: taken verbatim.
//
// Handles from the first two rules are sanitized (leading "@" and
// trailing slashes removed); tokens that yield an empty handle are
// dropped.
func Extract(text string) []string {
	var usernames []string
	for _, line := range strings.Split(text, "\n") {
		for _, token := range strings.Fields(line) {
			switch {
			case strings.Contains(token, "instagram.com"):
				if m := profileURL.FindStringSubmatch(token); m != nil {
					if handle := instagram.SanitizeUsername(m[1]); handle != "" {
						usernames = append(usernames, handle)
					}
				}
			case strings.Contains(token, "IG:"):
				parts := strings.Split(token, "IG:")
				handle := strings.ReplaceAll(parts[len(parts)-1], "/", "")
				if handle = instagram.SanitizeUsername(handle); handle != "" {
					usernames = append(usernames, handle)
				}
			case bareUsername.MatchString(token):
				usernames = append(usernames, token)
			}
		}
	}
	return usernames
}

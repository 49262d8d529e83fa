// Package scan counts Instagram posts per calendar month.
//
// CountPostsForMonth buckets a user's recent feed into one month window;
// Driver runs the full batch of targets × months with jitter between
// calls, continue-on-error semantics, and an observer stream that lets
// the CLI and TUI render progress without coupling to either.
package scan

// Package ratelimit throttles the API client so a counting run does not
// hammer Instagram's servers and trip a block.
//
// Available Implementations:
//
// Token Bucket:
//   - Fixed capacity bucket refilled over time
//   - Suitable for burst traffic followed by quiet periods
//   - Default implementation used by the client
//
// Sliding Window:
//   - Tracks requests within a moving time window
//   - More accurate rate limiting over time
//   - Better for consistent request patterns
//
// Interface:
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// Pick the limiter the config asks for
//	limiter := ratelimit.New(cfg.RequestsPerMinute, cfg.BurstSize, cfg.Strategy)
//
//	limiter.Wait()
//	// Proceed with request
package ratelimit

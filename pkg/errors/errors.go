package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies the failures the tool tells apart when deciding whether
// to retry, freeze the account, or give up on a target
type Kind string

const (
	KindBadPassword          Kind = "bad_password"
	KindLoginRequired        Kind = "login_required"
	KindChallengeRequired    Kind = "challenge_required"
	KindRecaptchaChallenge   Kind = "recaptcha_challenge"
	KindContactPointRecovery Kind = "contact_point_recovery"
	KindFeedbackRequired     Kind = "feedback_required"
	KindPleaseWait           Kind = "please_wait"
	KindReloginExceeded      Kind = "relogin_exceeded"
	KindUserNotFound         Kind = "user_not_found"
	KindSessionExpired       Kind = "session_expired"
	KindSessionCorrupt       Kind = "session_corrupt"
	KindRateLimited          Kind = "rate_limited"
	KindFrozen               Kind = "frozen"
	KindNetwork              Kind = "network"
	KindServer               Kind = "server"
	KindUnclassified         Kind = "unclassified"
)

// Error is a classified failure with whatever context the API returned.
// ChallengePath, Feedback and Until are only set for the kinds that use them.
type Error struct {
	Kind          Kind
	Message       string
	Code          int
	ChallengePath string
	Feedback      string
	Until         time.Time
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (code %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New returns an Error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf returns an Error of the given kind with a formatted message
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Frozen returns the error surfaced when an account is under an active
// cooldown. A zero until means the freeze holds until manually cleared.
func Frozen(reason string, until time.Time) *Error {
	return &Error{Kind: KindFrozen, Message: reason, Until: until}
}

// KindOf extracts the kind from err, unwrapping as needed.
// Errors that carry no kind classify as unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnclassified
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// AsError unwraps err into an *Error when it carries one
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// IsRetryable checks if an error kind should be retried at the transport
// level. Account-state failures never are; the recovery policy owns those.
func IsRetryable(kind Kind) bool {
	switch kind {
	case KindNetwork, KindRateLimited, KindServer:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 400, 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}

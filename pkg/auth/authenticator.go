package auth

import (
	"context"
	"strings"
	"time"

	errs "igmonthly/pkg/errors"
	"igmonthly/pkg/instagram"
	"igmonthly/pkg/logger"
	"igmonthly/pkg/session"
)

// Freeze durations applied by the recovery policy.
const (
	freezeRelogin   = 7 * 24 * time.Hour
	freezeChallenge = 2 * 24 * time.Hour
	freezeRecovery  = 4 * 24 * time.Hour
	freezeFeedback  = 12 * time.Hour
	freezeWait      = time.Hour
)

// maxRecoveryDepth bounds how many failures a single Authenticate call
// will chase before giving up with the last error.
const maxRecoveryDepth = 4

// feedbackFreezes maps known feedback_required message fragments to
// cooldown durations. A zero duration means indefinite.
var feedbackFreezes = []struct {
	fragment string
	duration time.Duration
}{
	{"This action was blocked. Please try again later", freezeFeedback},
	{"We restrict certain activity to protect our community", freezeFeedback},
	{"Your account has been temporarily blocked", 0},
}

// Client is the slice of the Instagram client the authenticator drives.
type Client interface {
	Login(ctx context.Context, username, password string) error
	Relogin(ctx context.Context) error
	ReloginAttempts() int
	NextProxy() string
	RebuildSettings()
	ExportSettings() ([]byte, error)
	RestoreSettings(blob []byte) error
	ResolveChallenge(ctx context.Context, apiPath string, solver instagram.ChallengeSolver) error
}

// Authenticator brings a client to an authenticated state: freeze gate,
// cached-session restore, fresh login, and the per-kind recovery policy.
type Authenticator struct {
	client   Client
	sessions *session.Store
	freezes  *FreezeStore
	account  *Account
	solver   instagram.ChallengeSolver
	log      logger.Logger
}

// NewAuthenticator wires the authenticator. The solver is consulted when
// a checkpoint challenge asks for a verification code; it may be nil for
// non-interactive runs, in which case challenges fail over to a freeze.
func NewAuthenticator(client Client, sessions *session.Store, freezes *FreezeStore, account *Account, solver instagram.ChallengeSolver) *Authenticator {
	return &Authenticator{
		client:   client,
		sessions: sessions,
		freezes:  freezes,
		account:  account,
		solver:   solver,
		log:      logger.GetLogger(),
	}
}

// Username returns the account under authentication.
func (a *Authenticator) Username() string {
	return a.account.Username
}

// Authenticate brings the client to a usable state. It consults the
// freeze store before touching the network, restores a cached session
// when one is still valid, and otherwise performs a full login routed
// through the recovery policy. A nil return means the caller may proceed;
// a non-terminal freeze (feedback, please-wait) is recorded but does not
// fail the call.
func (a *Authenticator) Authenticate(ctx context.Context) error {
	username := a.account.Username

	frozen, err := a.freezes.Active(username)
	if err != nil {
		return err
	}
	if frozen != nil {
		logger.LogSessionEvent(username, "login blocked by active freeze")
		return errs.Frozen(frozen.Reason, frozen.Until)
	}

	if a.sessions.IsValid(username) {
		blob, err := a.sessions.Load(username)
		if err == nil {
			if err := a.client.RestoreSettings(blob); err == nil {
				logger.LogSessionEvent(username, "session restored")
				return nil
			}
			// Corrupt blob, fall through to a fresh login.
			logger.LogSessionEvent(username, "cached session unusable, logging in")
		}
	}

	err = a.client.Login(ctx, username, a.account.Password)
	if err == nil {
		return a.persist()
	}
	return a.recover(ctx, err, 0)
}

// Recover applies the recovery policy to a failure that happened after
// authentication, mid-run. The same dispatch rules apply: a nil return
// means the client is usable again.
func (a *Authenticator) Recover(ctx context.Context, cause error) error {
	return a.recover(ctx, cause, 0)
}

// recover implements the per-kind recovery policy. Every branch retries,
// freezes with an explicit cooldown, or returns the error.
func (a *Authenticator) recover(ctx context.Context, err error, depth int) error {
	if depth >= maxRecoveryDepth {
		return err
	}

	e, ok := errs.AsError(err)
	if !ok {
		return err
	}

	a.log.WithError(err).WithField("kind", string(e.Kind)).Warn("Login failed, applying recovery policy")

	switch e.Kind {
	case errs.KindBadPassword:
		a.client.NextProxy()
		if a.client.ReloginAttempts() > 0 {
			if ferr := a.freezes.Set(a.account.Username, "Manual login required", freezeRelogin); ferr != nil {
				return ferr
			}
			return errs.New(errs.KindReloginExceeded, "manual login required, relogin attempts exceeded")
		}
		a.client.RebuildSettings()
		return a.retry(ctx, depth)

	case errs.KindLoginRequired:
		return a.retry(ctx, depth)

	case errs.KindChallengeRequired:
		// Only the bare endpoint is the generic challenge; any specific
		// path (/challenge/<id>/<hash>/) carries a resolvable checkpoint.
		if instagram.ChallengePath(e.ChallengePath) == "/challenge/" {
			a.client.NextProxy()
			a.client.RebuildSettings()
			return a.retry(ctx, depth)
		}
		return a.resolveChallenge(ctx, e.ChallengePath)

	case errs.KindRecaptchaChallenge, errs.KindContactPointRecovery:
		if ferr := a.freezes.Set(a.account.Username, e.Message, freezeRecovery); ferr != nil {
			return ferr
		}
		return err

	case errs.KindFeedbackRequired:
		for _, rule := range feedbackFreezes {
			if strings.Contains(e.Feedback, rule.fragment) {
				var ferr error
				if rule.duration == 0 {
					ferr = a.freezes.SetIndefinite(a.account.Username, e.Feedback)
				} else {
					ferr = a.freezes.Set(a.account.Username, e.Feedback, rule.duration)
				}
				if ferr != nil {
					return ferr
				}
				// Non-terminal: the client stays usable for now.
				return nil
			}
		}
		return err

	case errs.KindPleaseWait:
		if ferr := a.freezes.Set(a.account.Username, e.Message, freezeWait); ferr != nil {
			return ferr
		}
		// Non-terminal, same as feedback.
		return nil

	default:
		return err
	}
}

// retry performs an internal relogin and routes any failure back through
// the recovery policy.
func (a *Authenticator) retry(ctx context.Context, depth int) error {
	if err := a.client.Relogin(ctx); err != nil {
		return a.recover(ctx, err, depth+1)
	}
	return a.persist()
}

// resolveChallenge drives an interactive checkpoint. A challenge raised
// again during resolution or a recovery/recaptcha step is terminal and
// freezes the account.
func (a *Authenticator) resolveChallenge(ctx context.Context, apiPath string) error {
	err := a.client.ResolveChallenge(ctx, apiPath, a.solver)
	if err == nil {
		return a.persist()
	}

	switch errs.KindOf(err) {
	case errs.KindChallengeRequired:
		if ferr := a.freezes.Set(a.account.Username, "Manual Challenge Required", freezeChallenge); ferr != nil {
			return ferr
		}
		return errs.New(errs.KindChallengeRequired, "manual challenge required")
	case errs.KindRecaptchaChallenge, errs.KindContactPointRecovery:
		if ferr := a.freezes.Set(a.account.Username, err.Error(), freezeRecovery); ferr != nil {
			return ferr
		}
		return err
	default:
		return err
	}
}

// persist exports the client settings into the session cache after a
// successful login or challenge resolution.
func (a *Authenticator) persist() error {
	blob, err := a.client.ExportSettings()
	if err != nil {
		return err
	}
	if err := a.sessions.Save(a.account.Username, blob); err != nil {
		return err
	}
	logger.LogSessionEvent(a.account.Username, "session saved")
	return nil
}

package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"igmonthly/pkg/config"
	errs "igmonthly/pkg/errors"
	"igmonthly/pkg/logger"
	"igmonthly/pkg/ratelimit"
	"igmonthly/pkg/retry"
)

// ChallengeSolver supplies verification codes when Instagram demands an
// interactive challenge during login.
type ChallengeSolver interface {
	// Code returns the verification code for the given step (e.g. a code
	// sent to the account's email or phone).
	Code(ctx context.Context, username, step string) (string, error)
}

// Client is an authenticated Instagram private-API client. It owns the
// serializable Settings (device identity, cookies, logged-in user) and
// guards every request with the rate limiter and transport retry.
type Client struct {
	httpClient *http.Client
	apiBase    string
	headers    map[string]string
	settings   Settings

	username string
	password string

	proxies         []string
	proxyIdx        int
	reloginAttempts int

	limiter ratelimit.Limiter
	retrier *retry.HTTPRetrier
	logger  logger.Logger
}

// NewClient creates a client with a fresh device identity
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Instagram.RequestTimeout,
		},
		apiBase: BaseAPIURL,
		headers: map[string]string{
			"Accept":          "*/*",
			"Accept-Language": "en-US",
			"X-IG-App-Locale": "en_US",
			"X-IG-Capabilities": "3brTvx0=",
			"Connection":      "close",
		},
		settings: newSettings(cfg.Instagram.UserAgent),
		proxies:  cfg.Instagram.Proxies,
		limiter: ratelimit.New(
			cfg.RateLimit.RequestsPerMinute,
			cfg.RateLimit.BurstSize,
			cfg.RateLimit.Strategy,
		),
		retrier: retry.NewHTTPRetrier(cfg.Retry.MaxAttempts, log),
		logger:  log,
	}
}

// SetAPIBase points the client at a different API base URL. Used by tests
// against a local mock server.
func (c *Client) SetAPIBase(base string) {
	c.apiBase = strings.TrimSuffix(base, "/")
}

// Settings returns a copy of the current client settings
func (c *Client) Settings() Settings {
	return c.settings
}

// Username returns the account the client is (or will be) logged in as
func (c *Client) Username() string {
	return c.username
}

// ReloginAttempts returns how many relogins this client has performed
func (c *Client) ReloginAttempts() int {
	return c.reloginAttempts
}

// NextProxy rotates to the next configured proxy and returns it. An empty
// proxy list is a no-op rotation returning "".
func (c *Client) NextProxy() string {
	if len(c.proxies) == 0 {
		return ""
	}
	proxy := c.proxies[c.proxyIdx%len(c.proxies)]
	c.proxyIdx++
	if err := c.SetProxy(proxy); err != nil {
		c.logger.WithError(err).WithField("proxy", proxy).Warn("failed to apply proxy")
		return ""
	}
	return proxy
}

// SetProxy routes subsequent requests through the given proxy URL
func (c *Client) SetProxy(rawURL string) error {
	if rawURL == "" {
		c.httpClient.Transport = nil
		return nil
	}

	proxyURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid proxy url: %w", err)
	}

	c.httpClient.Transport = &http.Transport{
		Proxy: http.ProxyURL(proxyURL),
	}

	c.logger.WithField("proxy", proxyURL.Host).Debug("proxy applied")
	return nil
}

// RebuildSettings discards the device identity and cookies, keeping the
// user agent. The next login presents as a fresh install.
func (c *Client) RebuildSettings() {
	userAgent := c.settings.UserAgent
	c.settings = newSettings(userAgent)
	c.logger.Debug("client settings rebuilt with fresh device identity")
}

// ExportSettings serializes the client state for the session store
func (c *Client) ExportSettings() ([]byte, error) {
	return marshalSettings(c.settings)
}

// RestoreSettings loads client state from a session blob, skipping the
// network login entirely.
func (c *Client) RestoreSettings(blob []byte) error {
	settings, err := unmarshalSettings(blob)
	if err != nil {
		return errs.Newf(errs.KindSessionCorrupt, "%v", err)
	}

	c.settings = settings
	c.username = settings.Username

	c.logger.WithFields(map[string]interface{}{
		"username": settings.Username,
		"user_id":  settings.UserID,
	}).Debug("client settings restored from session")
	return nil
}

// Login performs a network login with the given credentials. Failures come
// back classified by kind so the recovery policy can dispatch on them.
func (c *Client) Login(ctx context.Context, username, password string) error {
	c.username = username
	c.password = password

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("device_id", c.settings.DeviceID)
	form.Set("phone_id", c.settings.UUIDs.PhoneID)
	form.Set("guid", c.settings.UUIDs.ClientSessionID)
	form.Set("login_attempt_count", "0")

	var resp loginResponse
	if err := c.postForm(ctx, LoginEndpoint, form, &resp); err != nil {
		return err
	}

	c.settings.UserID = resp.LoggedInUser.PK
	c.settings.Username = resp.LoggedInUser.Username

	c.logger.InfoWithFields("logged in", map[string]interface{}{
		"username": username,
		"user_id":  resp.LoggedInUser.PK,
	})
	return nil
}

// Relogin drops the cookies and logs in again with the remembered
// credentials. The attempt counter feeds the bad-password policy: one
// relogin is allowed, the second freezes the account.
func (c *Client) Relogin(ctx context.Context) error {
	if c.username == "" || c.password == "" {
		return errs.New(errs.KindLoginRequired, "no credentials remembered for relogin")
	}

	c.reloginAttempts++
	c.settings.Cookies = make(map[string]string)

	c.logger.WithFields(map[string]interface{}{
		"username": c.username,
		"attempt":  c.reloginAttempts,
	}).Warn("performing internal relogin")

	return c.Login(ctx, c.username, c.password)
}

// ResolveChallenge drives the challenge flow at the given API path,
// asking the solver for verification codes. Recaptcha and contact-point
// recovery steps cannot be solved here and return their own kinds.
func (c *Client) ResolveChallenge(ctx context.Context, apiPath string, solver ChallengeSolver) error {
	path := ChallengePath(apiPath)
	if path == "" {
		return errs.New(errs.KindChallengeRequired, "challenge has no api path")
	}

	var state challengeStateResponse
	if err := c.getJSON(ctx, path, &state); err != nil {
		return err
	}

	for step := 0; step < MaxChallengeSteps; step++ {
		switch {
		case state.Status == "ok" && state.StepName == "":
			c.logger.WithField("username", c.username).Info("challenge resolved")
			return nil

		case state.StepName == "verify_code" || state.StepName == "verify_email" || state.StepName == "verify_phone":
			if solver == nil {
				return errs.New(errs.KindChallengeRequired, "challenge requires a verification code and no solver is configured")
			}
			code, err := solver.Code(ctx, c.username, state.StepName)
			if err != nil {
				return errs.Newf(errs.KindChallengeRequired, "challenge code entry failed: %v", err)
			}

			form := url.Values{}
			form.Set("security_code", code)
			state = challengeStateResponse{}
			if err := c.postForm(ctx, path, form, &state); err != nil {
				return err
			}

		case state.StepName == "select_contact_point_recovery":
			return errs.New(errs.KindContactPointRecovery, "challenge requires contact point recovery")

		case state.StepName == "recaptcha_challenge" || state.StepData.FormType == "recaptcha":
			return errs.New(errs.KindRecaptchaChallenge, "challenge requires recaptcha")

		default:
			return errs.Newf(errs.KindChallengeRequired, "unsupported challenge step %q", state.StepName)
		}
	}

	return errs.Newf(errs.KindChallengeRequired, "challenge not resolved after %d steps", MaxChallengeSteps)
}

// UserIDFromUsername resolves a username to its numeric user id
func (c *Client) UserIDFromUsername(ctx context.Context, username string) (int64, error) {
	var resp webProfileResponse
	if err := c.getJSON(ctx, UserInfoPath(username), &resp); err != nil {
		if errs.IsKind(err, errs.KindUserNotFound) {
			return 0, errs.Newf(errs.KindUserNotFound, "user %s not found", username)
		}
		return 0, err
	}

	if resp.Data.User.ID == "" {
		return 0, errs.Newf(errs.KindUserNotFound, "user %s not found", username)
	}

	userID, err := strconv.ParseInt(resp.Data.User.ID, 10, 64)
	if err != nil {
		return 0, errs.Newf(errs.KindUnclassified, "unparseable user id %q for %s", resp.Data.User.ID, username)
	}

	c.logger.DebugWithFields("resolved username", map[string]interface{}{
		"username": username,
		"user_id":  userID,
	})
	return userID, nil
}

// UserMedias fetches up to amount of the user's most recent posts, paging
// through the feed until the cap or the last page. Accounts with more
// relevant posts than the cap silently undercount.
func (c *Client) UserMedias(ctx context.Context, userID int64, amount int) ([]Media, error) {
	if amount <= 0 {
		amount = DefaultFeedPageSize
	}

	var medias []Media
	maxID := ""

	for len(medias) < amount {
		var page feedResponse
		if err := c.getJSON(ctx, UserFeedPath(userID, maxID, DefaultFeedPageSize), &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			medias = append(medias, item.media())
			if len(medias) == amount {
				break
			}
		}

		if !page.MoreAvailable || page.NextMaxID == "" {
			break
		}
		maxID = page.NextMaxID
	}

	c.logger.DebugWithFields("fetched user feed", map[string]interface{}{
		"user_id": userID,
		"count":   len(medias),
	})
	return medias, nil
}

// getJSON performs a GET with transport retry and decodes the reply
func (c *Client) getJSON(ctx context.Context, path string, target interface{}) error {
	return c.retrier.DoWithErrorType(func() error {
		return c.requestJSON(ctx, http.MethodGet, path, nil, target)
	})
}

// postForm performs a form POST with transport retry and decodes the reply
func (c *Client) postForm(ctx context.Context, path string, form url.Values, target interface{}) error {
	return c.retrier.DoWithErrorType(func() error {
		return c.requestJSON(ctx, http.MethodPost, path, form, target)
	})
}

// requestJSON performs one HTTP round trip: rate limit gate, headers and
// cookies on the way out, cookie capture and error classification on the
// way back.
func (c *Client) requestJSON(ctx context.Context, method, path string, form url.Values, target interface{}) error {
	if !c.limiter.Allow() {
		c.logger.Debug("rate limit reached, waiting")
		c.limiter.Wait()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, body)
	if err != nil {
		return errs.Newf(errs.KindUnclassified, "failed to create request: %v", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("User-Agent", c.settings.UserAgent)
	req.Header.Set("X-IG-Device-ID", c.settings.UUIDs.PhoneID)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie := c.cookieHeader(); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return errs.Newf(errs.KindNetwork, "network error: %v", err)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	c.captureCookies(resp)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Newf(errs.KindNetwork, "failed to read response body: %v", err)
	}

	if err := c.checkResponse(resp.StatusCode, data, req.URL.String()); err != nil {
		return err
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		preview := string(data)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          req.URL.String(),
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return errs.Newf(errs.KindUnclassified, "failed to parse JSON: %v", err)
	}

	return nil
}

// cookieHeader assembles the Cookie header from the stored session cookies
func (c *Client) cookieHeader() string {
	if len(c.settings.Cookies) == 0 {
		return ""
	}
	var pairs []string
	for name, value := range c.settings.Cookies {
		pairs = append(pairs, fmt.Sprintf("%s=%s", name, value))
	}
	return strings.Join(pairs, "; ")
}

// captureCookies folds Set-Cookie headers into the session state
func (c *Client) captureCookies(resp *http.Response) {
	for _, cookie := range resp.Cookies() {
		if cookie.Value == "" {
			delete(c.settings.Cookies, cookie.Name)
			continue
		}
		c.settings.Cookies[cookie.Name] = cookie.Value
	}
}

// checkResponse classifies a non-OK reply into a typed failure. The API
// signals account-state failures in the body, so the body is inspected
// before the status code.
func (c *Client) checkResponse(status int, body []byte, reqURL string) error {
	if status == http.StatusOK {
		return nil
	}

	var envelope apiResponse
	_ = json.Unmarshal(body, &envelope)

	switch {
	case envelope.ErrorType == "bad_password":
		c.logger.WarnWithFields("bad password", map[string]interface{}{"url": reqURL})
		return &errs.Error{Kind: errs.KindBadPassword, Message: envelope.Message, Code: status}

	case envelope.Message == "login_required":
		c.logger.WarnWithFields("login required", map[string]interface{}{"url": reqURL})
		return &errs.Error{Kind: errs.KindLoginRequired, Message: envelope.Message, Code: status}

	case envelope.Message == "challenge_required":
		apiPath := ""
		if envelope.Challenge != nil {
			apiPath = envelope.Challenge.APIPath
		}
		c.logger.WarnWithFields("challenge required", map[string]interface{}{
			"url":      reqURL,
			"api_path": apiPath,
		})
		return &errs.Error{
			Kind:          errs.KindChallengeRequired,
			Message:       envelope.Message,
			Code:          status,
			ChallengePath: apiPath,
		}

	case envelope.Message == "feedback_required":
		c.logger.WarnWithFields("feedback required", map[string]interface{}{
			"url":      reqURL,
			"feedback": envelope.FeedbackMessage,
		})
		return &errs.Error{
			Kind:     errs.KindFeedbackRequired,
			Message:  envelope.Message,
			Code:     status,
			Feedback: envelope.FeedbackMessage,
		}

	case strings.Contains(envelope.Message, "wait a few minutes"):
		c.logger.WarnWithFields("throttled by API", map[string]interface{}{"url": reqURL})
		return &errs.Error{Kind: errs.KindPleaseWait, Message: envelope.Message, Code: status}
	}

	switch {
	case status == http.StatusNotFound:
		return &errs.Error{Kind: errs.KindUserNotFound, Message: "resource not found", Code: status}
	case status == http.StatusTooManyRequests:
		logger.LogRateLimit(reqURL, 0)
		return &errs.Error{Kind: errs.KindRateLimited, Message: "rate limit exceeded", Code: status}
	case status >= 500:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": status,
			"url":    reqURL,
		})
		return &errs.Error{Kind: errs.KindServer, Message: "server error", Code: status}
	default:
		message := envelope.Message
		if message == "" {
			message = fmt.Sprintf("unexpected status code: %d", status)
		}
		return &errs.Error{Kind: errs.KindUnclassified, Message: message, Code: status}
	}
}

package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igmonthly/pkg/config"
	errs "igmonthly/pkg/errors"
	"igmonthly/pkg/logger"
)

// testConfig returns a config suitable for hitting an httptest server:
// no transport retries, generous rate budget.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Instagram.RequestTimeout = 5 * time.Second
	cfg.RateLimit.RequestsPerMinute = 6000
	cfg.RateLimit.BurstSize = 1000
	cfg.Retry.MaxAttempts = 1
	return cfg
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client := NewClient(testConfig(), logger.NewNopLogger())
	client.SetAPIBase(server.URL)
	return client
}

func TestLoginSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, LoginEndpoint, r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostForm.Get("username"))
		assert.Equal(t, "hunter2", r.PostForm.Get("password"))
		assert.NotEmpty(t, r.PostForm.Get("device_id"))

		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "abc123"})
		fmt.Fprint(w, `{"status":"ok","logged_in_user":{"pk":42,"username":"alice"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.Login(context.Background(), "alice", "hunter2")
	require.NoError(t, err)

	settings := client.Settings()
	assert.Equal(t, int64(42), settings.UserID)
	assert.Equal(t, "alice", settings.Username)
	assert.Equal(t, "abc123", settings.Cookies["sessionid"])
}

func TestLoginBadPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"status":"fail","error_type":"bad_password","message":"The password you entered is incorrect."}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindBadPassword))
}

func TestLoginChallengeRequiredCarriesPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"status":"fail","message":"challenge_required","challenge":{"api_path":"/challenge/42/abcdef/"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.Login(context.Background(), "alice", "hunter2")
	require.Error(t, err)

	apiErr, ok := errs.AsError(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindChallengeRequired, apiErr.Kind)
	assert.Equal(t, "/challenge/42/abcdef/", apiErr.ChallengePath)
}

func TestLoginFeedbackRequiredCarriesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"status":"fail","message":"feedback_required","feedback_message":"This action was blocked. Please try again later"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.Login(context.Background(), "alice", "hunter2")
	require.Error(t, err)

	apiErr, ok := errs.AsError(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindFeedbackRequired, apiErr.Kind)
	assert.Contains(t, apiErr.Feedback, "This action was blocked")
}

func TestLoginPleaseWait(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"status":"fail","message":"Please wait a few minutes before you try again."}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.Login(context.Background(), "alice", "hunter2")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindPleaseWait))
}

func TestReloginIncrementsCounter(t *testing.T) {
	logins := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logins++
		fmt.Fprint(w, `{"status":"ok","logged_in_user":{"pk":42,"username":"alice"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	require.NoError(t, client.Login(context.Background(), "alice", "hunter2"))
	assert.Equal(t, 0, client.ReloginAttempts())

	require.NoError(t, client.Relogin(context.Background()))
	assert.Equal(t, 1, client.ReloginAttempts())
	assert.Equal(t, 2, logins)
}

func TestReloginWithoutCredentials(t *testing.T) {
	client := NewClient(testConfig(), logger.NewNopLogger())
	err := client.Relogin(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindLoginRequired))
}

func TestUserIDFromUsername(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, UserInfoEndpoint, r.URL.Path)
		require.Equal(t, "bob", r.URL.Query().Get("username"))
		fmt.Fprint(w, `{"status":"ok","data":{"user":{"id":"98765","username":"bob"}}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	userID, err := client.UserIDFromUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(98765), userID)
}

func TestUserIDFromUsernameNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"status":"fail","message":"User not found"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.UserIDFromUsername(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindUserNotFound))
}

func TestUserIDFromUsernameEmptyProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok","data":{"user":{}}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.UserIDFromUsername(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindUserNotFound))
}

func TestUserMediasPaginatesToCap(t *testing.T) {
	pages := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		var items []map[string]interface{}
		for i := 0; i < DefaultFeedPageSize; i++ {
			items = append(items, map[string]interface{}{
				"id":       fmt.Sprintf("%d_%d", pages, i),
				"pk":       int64(pages*1000 + i),
				"code":     fmt.Sprintf("C%d_%d", pages, i),
				"taken_at": time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC).Unix(),
			})
		}
		resp := map[string]interface{}{
			"status":         "ok",
			"items":          items,
			"more_available": true,
			"next_max_id":    fmt.Sprintf("cursor_%d", pages),
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	medias, err := client.UserMedias(context.Background(), 42, 50)
	require.NoError(t, err)
	assert.Len(t, medias, 50)
	assert.Equal(t, 2, pages)
	assert.Equal(t, "https://www.instagram.com/p/C1_0/", medias[0].PostURL())
	assert.Equal(t, time.UTC, medias[0].TakenAt.Location())
}

func TestUserMediasStopsAtLastPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok","items":[{"id":"1","pk":1,"code":"AAA","taken_at":1706745600}],"more_available":false}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	medias, err := client.UserMedias(context.Background(), 42, 1000)
	require.NoError(t, err)
	assert.Len(t, medias, 1)
}

func TestRestoreAndExportSettingsRoundTrip(t *testing.T) {
	client := NewClient(testConfig(), logger.NewNopLogger())
	client.settings.UserID = 42
	client.settings.Username = "alice"
	client.settings.Cookies["sessionid"] = "abc"

	blob, err := client.ExportSettings()
	require.NoError(t, err)

	restored := NewClient(testConfig(), logger.NewNopLogger())
	require.NoError(t, restored.RestoreSettings(blob))
	assert.Equal(t, int64(42), restored.Settings().UserID)
	assert.Equal(t, "alice", restored.Username())
	assert.Equal(t, "abc", restored.Settings().Cookies["sessionid"])
}

func TestRestoreSettingsCorruptBlob(t *testing.T) {
	client := NewClient(testConfig(), logger.NewNopLogger())
	err := client.RestoreSettings([]byte("not json"))
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindSessionCorrupt))
}

func TestRebuildSettingsFreshIdentity(t *testing.T) {
	client := NewClient(testConfig(), logger.NewNopLogger())
	oldDevice := client.Settings().DeviceID
	client.settings.Cookies["sessionid"] = "abc"

	client.RebuildSettings()

	assert.NotEqual(t, oldDevice, client.Settings().DeviceID)
	assert.Empty(t, client.Settings().Cookies)
}

func TestNextProxyRotation(t *testing.T) {
	cfg := testConfig()
	cfg.Instagram.Proxies = []string{"http://p1.example:8080", "http://p2.example:8080"}
	client := NewClient(cfg, logger.NewNopLogger())

	assert.Equal(t, "http://p1.example:8080", client.NextProxy())
	assert.Equal(t, "http://p2.example:8080", client.NextProxy())
	assert.Equal(t, "http://p1.example:8080", client.NextProxy())
}

func TestNextProxyEmptyList(t *testing.T) {
	client := NewClient(testConfig(), logger.NewNopLogger())
	assert.Equal(t, "", client.NextProxy())
}

type codeSolver struct {
	code  string
	asked int
}

func (s *codeSolver) Code(ctx context.Context, username, step string) (string, error) {
	s.asked++
	return s.code, nil
}

func TestResolveChallengeVerifyCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/challenge/42/abcdef/", r.URL.Path)
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `{"status":"ok","step_name":"verify_code"}`)
			return
		}
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "123456", r.PostForm.Get("security_code"))
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	solver := &codeSolver{code: "123456"}
	err := client.ResolveChallenge(context.Background(), "/challenge/42/abcdef/", solver)
	require.NoError(t, err)
	assert.Equal(t, 1, solver.asked)
}

func TestResolveChallengeRecaptcha(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok","step_name":"recaptcha_challenge"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.ResolveChallenge(context.Background(), "/challenge/42/abcdef/", &codeSolver{})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindRecaptchaChallenge))
}

func TestResolveChallengeContactPointRecovery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok","step_name":"select_contact_point_recovery"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.ResolveChallenge(context.Background(), "/challenge/42/abcdef/", &codeSolver{})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindContactPointRecovery))
}

func TestServerErrorClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.UserIDFromUsername(context.Background(), "bob")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindServer))
}

func TestRateLimitClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.UserIDFromUsername(context.Background(), "bob")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindRateLimited))
}

func TestNetworkErrorClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(testConfig(), logger.NewNopLogger())
	client.SetAPIBase(server.URL)
	_, err := client.UserIDFromUsername(context.Background(), "bob")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindNetwork))
}

package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/yourtyme-app/yourtyme/pkg/controller/http"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/repository/memory"
	"github.com/yourtyme-app/yourtyme/pkg/usecase"
)

func newTestServer(t *testing.T, repo *memory.Memory, opts ...httpctrl.Options) *httpctrl.Server {
	t.Helper()

	srv, err := httpctrl.New(usecase.New(repo), opts...)
	gt.NoError(t, err).Required()
	return srv
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, memory.New())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.String(t, rec.Body.String()).Contains("API is working")
}

func TestIdentityAuth(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	gt.NoError(t, repo.Profile().Upsert(ctx, "U1", &model.ProfilePatch{
		DisplayName: model.String("Jane"),
		City:        model.String("London"),
	})).Required()

	srv := newTestServer(t, repo)

	t.Run("missing identity is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("unknown identity is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("X-Slack-User-ID", "USTRANGER")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("header identity works", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("X-Slack-User-ID", "U1")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp map[string]any
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp["id"]).Equal("U1")
		gt.Value(t, resp["city"]).Equal("London")

		// The OAuth token must never appear in API responses
		gt.String(t, rec.Body.String()).NotContains("AuthToken")
		gt.String(t, rec.Body.String()).NotContains("access_token")
	})

	t.Run("query identity works", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profile?user_id=U1", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
	})
}

func TestCityEndpoints(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	gt.NoError(t, repo.Profile().Upsert(ctx, "U1", &model.ProfilePatch{
		DisplayName: model.String("Jane"),
	})).Required()

	srv := newTestServer(t, repo)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var reader *strings.Reader
		if body == "" {
			reader = strings.NewReader("")
		} else {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("X-Slack-User-ID", "U1")
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		return rec
	}

	t.Run("set city", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/city", `{"city": "Tokyo", "channel_id": "C1"}`)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.String(t, rec.Body.String()).Contains("Tokyo")
	})

	t.Run("get city", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/city", "")
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp map[string]string
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp["city"]).Equal("Tokyo")
	})

	t.Run("snapshot recorded for channel", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/community/C1/members", "")
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.String(t, rec.Body.String()).Contains("Tokyo")
		gt.String(t, rec.Body.String()).Contains("Jane")
	})

	t.Run("set city rejects empty", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/city", `{"city": ""}`)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("delete city", func(t *testing.T) {
		rec := do(http.MethodDelete, "/api/city", "")
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		rec = do(http.MethodGet, "/api/city", "")
		var resp map[string]string
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp["city"]).Equal("")
	})

	t.Run("clear all members", func(t *testing.T) {
		rec := do(http.MethodDelete, "/api/community/members", "")
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.String(t, rec.Body.String()).Contains("All members deleted")

		rec = do(http.MethodGet, "/api/community/C1/members", "")
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.String(t, rec.Body.String()).NotContains("Tokyo")
	})
}

func TestMembersEndpointMissingCommunity(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	gt.NoError(t, repo.Profile().Upsert(ctx, "U1", &model.ProfilePatch{
		City: model.String("Oslo"),
	})).Required()

	srv := newTestServer(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/community/CGHOST/members", nil)
	req.Header.Set("X-Slack-User-ID", "U1")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
}

func TestSlackEventURLVerification(t *testing.T) {
	const signingSecret = "test-signing-secret"

	srv := newTestServer(t, memory.New(), httpctrl.WithSlackSigningSecret(signingSecret))

	body := `{"type":"url_verification","challenge":"challenge-token-42"}`
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := computeSlackSignature(signingSecret, timestamp, body)

	req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader([]byte(body)))
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", signature)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, rec.Body.String()).Equal("challenge-token-42")
}

func TestSlackWebhookDisabledWithoutSecret(t *testing.T) {
	srv := newTestServer(t, memory.New())

	req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event",
		strings.NewReader(`{"type":"url_verification","challenge":"x"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	// Without a signing secret the webhook surface does not exist; the SPA
	// catch-all only serves GET, so a POST must not reach a handler
	gt.Value(t, rec.Code == http.StatusOK && rec.Body.String() == "x").Equal(false)
}

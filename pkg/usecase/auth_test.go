package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/repository/memory"
	"github.com/yourtyme-app/yourtyme/pkg/usecase"
)

func TestAuthGetAuthURL(t *testing.T) {
	uc := usecase.NewAuthUseCase(memory.New(), "client-id", "client-secret", "https://example.com/api/auth/callback")

	raw := uc.GetAuthURL("state-123")
	parsed, err := url.Parse(raw)
	gt.NoError(t, err).Required()

	gt.Value(t, parsed.Host).Equal("slack.com")
	gt.Value(t, parsed.Query().Get("client_id")).Equal("client-id")
	gt.Value(t, parsed.Query().Get("state")).Equal("state-123")
	gt.Value(t, parsed.Query().Get("redirect_uri")).Equal("https://example.com/api/auth/callback")
	gt.String(t, parsed.Query().Get("scope")).Contains("users:read")
}

func TestAuthHandleCallback(t *testing.T) {
	ctx := context.Background()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, r.ParseForm()).Required()
		gt.Value(t, r.PostFormValue("client_id")).Equal("client-id")

		w.Header().Set("Content-Type", "application/json")
		switch r.PostFormValue("code") {
		case "good-code":
			_, _ = w.Write([]byte(`{
				"ok": true,
				"access_token": "xoxp-secret",
				"team": {"id": "T1", "name": "Acme"},
				"authed_user": {"id": "U1"}
			}`))
		default:
			_, _ = w.Write([]byte(`{"ok": false, "error": "invalid_code"}`))
		}
	}))
	defer tokenSrv.Close()

	userSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer xoxp-secret")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true, "user": {"id": "U1", "name": "jdoe", "real_name": "Jane Doe"}}`))
	}))
	defer userSrv.Close()

	repo := memory.New()
	uc := usecase.NewAuthUseCase(repo, "client-id", "client-secret", "https://example.com/api/auth/callback",
		usecase.WithTokenURL(tokenSrv.URL),
		usecase.WithUserInfoURL(userSrv.URL),
	)

	t.Run("valid code stores profile", func(t *testing.T) {
		profile, err := uc.HandleCallback(ctx, "good-code")
		gt.NoError(t, err).Required()

		gt.Value(t, profile.ID.String()).Equal("U1")
		gt.Value(t, profile.DisplayName).Equal("Jane Doe")
		gt.Value(t, profile.TeamID).Equal("T1")
		gt.Value(t, profile.AuthToken).Equal("xoxp-secret")

		stored, err := repo.Profile().Get(ctx, "U1")
		gt.NoError(t, err).Required()
		gt.Value(t, stored.AuthToken).Equal("xoxp-secret")
	})

	t.Run("re-auth preserves city via merge", func(t *testing.T) {
		gt.NoError(t, repo.Profile().Upsert(ctx, "U1", &model.ProfilePatch{
			City: model.String("London"),
		})).Required()

		profile, err := uc.HandleCallback(ctx, "good-code")
		gt.NoError(t, err).Required()
		gt.Value(t, profile.City).Equal("London")
	})

	t.Run("invalid code is unauthorized", func(t *testing.T) {
		_, err := uc.HandleCallback(ctx, "bad-code")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrUnauthorized)).True()
	})

	t.Run("empty code is unauthorized", func(t *testing.T) {
		_, err := uc.HandleCallback(ctx, "")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrUnauthorized)).True()
	})
}

func TestAuthHandleCallbackUserInfoDegrades(t *testing.T) {
	ctx := context.Background()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"ok": true,
			"access_token": "xoxp-secret",
			"team": {"id": "T1"},
			"authed_user": {"id": "U1"}
		}`))
	}))
	defer tokenSrv.Close()

	userSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"ok": false, "error": "fatal_error"}`))
	}))
	defer userSrv.Close()

	uc := usecase.NewAuthUseCase(memory.New(), "client-id", "client-secret", "https://example.com/cb",
		usecase.WithTokenURL(tokenSrv.URL),
		usecase.WithUserInfoURL(userSrv.URL),
	)

	// The user info failure must not abort the flow; the raw ID stands in
	profile, err := uc.HandleCallback(ctx, "good-code")
	gt.NoError(t, err).Required()
	gt.Value(t, profile.DisplayName).Equal("U1")
	gt.Value(t, profile.AuthToken).Equal("xoxp-secret")
}

func TestAuthHandleCallbackMissingUser(t *testing.T) {
	ctx := context.Background()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true, "access_token": "xoxp-secret"}`))
	}))
	defer tokenSrv.Close()

	uc := usecase.NewAuthUseCase(memory.New(), "client-id", "client-secret", "https://example.com/cb",
		usecase.WithTokenURL(tokenSrv.URL),
	)

	_, err := uc.HandleCallback(ctx, "good-code")
	gt.Error(t, err)
	gt.Bool(t, strings.Contains(err.Error(), "authed_user")).True()
}

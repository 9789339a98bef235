package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
	"github.com/yourtyme-app/yourtyme/pkg/usecase"
	"github.com/yourtyme-app/yourtyme/pkg/utils/errutil"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	callerKey    contextKey = "caller_id"
	slackBodyKey contextKey = "slack_body"
)

// maxIdentityBodySize bounds how much of a request body is inspected for the
// caller identity field
const maxIdentityBodySize = 1 << 20

// callerFrom extracts the authenticated caller identity from the context
func callerFrom(ctx context.Context) types.UserID {
	if id, ok := ctx.Value(callerKey).(types.UserID); ok {
		return id
	}
	return ""
}

// identityAuthMiddleware resolves the caller identity from the
// X-Slack-User-ID header, the user_id query parameter, or a user_id field in
// a JSON body, and verifies it exists in the profile store. There is no
// cryptographic session.
func identityAuthMiddleware(profileUC *usecase.ProfileUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			id := types.UserID(r.Header.Get("X-Slack-User-ID"))
			if id == "" {
				id = types.UserID(r.URL.Query().Get("user_id"))
			}
			if id == "" && strings.Contains(r.Header.Get("Content-Type"), "application/json") {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxIdentityBodySize))
				if err != nil {
					errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				var payload struct {
					UserID string `json:"user_id"`
				}
				if err := json.Unmarshal(body, &payload); err == nil {
					id = types.UserID(payload.UserID)
				}
			}

			if err := profileUC.Authorize(ctx, id); err != nil {
				status := http.StatusInternalServerError
				if errors.Is(err, model.ErrUnauthorized) {
					status = http.StatusUnauthorized
				}
				errutil.HandleHTTP(ctx, w, err, status)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, callerKey, id)))
		})
	}
}

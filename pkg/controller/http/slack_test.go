package http_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/yourtyme-app/yourtyme/pkg/controller/http"
)

func computeSlackSignature(signingSecret, timestamp, body string) string {
	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	return "v0=" + hex.EncodeToString(h.Sum(nil))
}

func TestVerifySlackSignature(t *testing.T) {
	signingSecret := "test-signing-secret"
	body := []byte(`{"type":"url_verification","challenge":"test"}`)

	t.Run("valid signature", func(t *testing.T) {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		signature := computeSlackSignature(signingSecret, timestamp, string(body))

		gt.NoError(t, httpctrl.VerifySlackSignature(signingSecret, timestamp, signature, body))
	})

	t.Run("invalid signature", func(t *testing.T) {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		gt.Error(t, httpctrl.VerifySlackSignature(signingSecret, timestamp, "v0=invalid_signature", body))
	})

	t.Run("missing timestamp", func(t *testing.T) {
		signature := computeSlackSignature(signingSecret, "123456", string(body))
		gt.Error(t, httpctrl.VerifySlackSignature(signingSecret, "", signature, body))
	})

	t.Run("missing signature", func(t *testing.T) {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		gt.Error(t, httpctrl.VerifySlackSignature(signingSecret, timestamp, "", body))
	})

	t.Run("timestamp too old", func(t *testing.T) {
		oldTimestamp := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)
		signature := computeSlackSignature(signingSecret, oldTimestamp, string(body))
		gt.Error(t, httpctrl.VerifySlackSignature(signingSecret, oldTimestamp, signature, body))
	})

	t.Run("invalid timestamp format", func(t *testing.T) {
		signature := computeSlackSignature(signingSecret, "not-a-number", string(body))
		gt.Error(t, httpctrl.VerifySlackSignature(signingSecret, "not-a-number", signature, body))
	})

	t.Run("wrong secret", func(t *testing.T) {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		signature := computeSlackSignature("wrong-secret", timestamp, string(body))
		gt.Error(t, httpctrl.VerifySlackSignature(signingSecret, timestamp, signature, body))
	})

	t.Run("tampered body with fresh timestamp", func(t *testing.T) {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		signature := computeSlackSignature(signingSecret, timestamp, string(body))

		tampered := []byte(`{"type":"url_verification","challenge":"evil"}`)
		gt.Error(t, httpctrl.VerifySlackSignature(signingSecret, timestamp, signature, tampered))
	})
}

func TestSlackSignatureMiddleware(t *testing.T) {
	signingSecret := "test-signing-secret"
	body := []byte(`{"type":"url_verification","challenge":"test"}`)

	signedRequest := func(sig string) *http.Request {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		if sig == "" {
			sig = computeSlackSignature(signingSecret, timestamp, string(body))
		}
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader(body))
		req.Header.Set("X-Slack-Request-Timestamp", timestamp)
		req.Header.Set("X-Slack-Signature", sig)
		return req
	}

	t.Run("calls next handler when signature is valid", func(t *testing.T) {
		rec := httptest.NewRecorder()

		nextCalled := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextCalled = true
			w.WriteHeader(http.StatusOK)
		})

		httpctrl.SlackSignatureMiddleware(signingSecret)(next).ServeHTTP(rec, signedRequest(""))

		gt.Bool(t, nextCalled).True()
		gt.Value(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("rejects invalid signature without calling next", func(t *testing.T) {
		rec := httptest.NewRecorder()

		nextCalled := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextCalled = true
		})

		httpctrl.SlackSignatureMiddleware(signingSecret)(next).ServeHTTP(rec, signedRequest("v0=invalid"))

		gt.Bool(t, nextCalled).False()
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("restores request body for next handler", func(t *testing.T) {
		rec := httptest.NewRecorder()

		var receivedBody []byte
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var err error
			receivedBody, err = io.ReadAll(r.Body)
			gt.NoError(t, err).Required()
			w.WriteHeader(http.StatusOK)
		})

		httpctrl.SlackSignatureMiddleware(signingSecret)(next).ServeHTTP(rec, signedRequest(""))

		gt.Value(t, string(receivedBody)).Equal(string(body))
	})
}

package worldtime_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/service/worldtime"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) worldtime.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := worldtime.New("test-api-key", worldtime.WithBaseURL(srv.URL))
	gt.NoError(t, err).Required()
	return client
}

func TestLookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("X-Api-Key")).Equal("test-api-key")
		gt.Value(t, r.URL.Query().Get("city")).Equal("London")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"datetime": "2024-01-01T10:00:00",
			"timezone": "Europe/London",
			"day_of_week": "Monday"
		}`))
	})

	cityTime, err := client.Lookup(context.Background(), "London")
	gt.NoError(t, err).Required()
	gt.Value(t, cityTime.Datetime).Equal("2024-01-01T10:00:00")
	gt.Value(t, cityTime.Timezone).Equal("Europe/London")
	gt.Value(t, cityTime.Display()).Equal("2024-01-01T10:00:00 (Europe/London)")
}

func TestLookupUnknownCity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid city"}`))
	})

	_, err := client.Lookup(context.Background(), "Atlantis")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, model.ErrCityNotFound)).True()
}

func TestLookupServerErrorIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Lookup(context.Background(), "London")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, model.ErrCityNotFound)).False()
}

func TestLookupEmptyPayloadIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.Lookup(context.Background(), "Nowhere")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, model.ErrCityNotFound)).True()
}

func TestLookupEmptyCity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty city")
	})

	_, err := client.Lookup(context.Background(), "")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, model.ErrCityNotFound)).True()
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := worldtime.New("")
	gt.Error(t, err)
}

package opensky_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jengzang/flights-backend-go/internal/apperr"
	"github.com/jengzang/flights-backend-go/internal/opensky"
)

const sampleBody = `{"time": 1700000000, "states": [
 ["4ca7b4", "IBE1234 ", "Spain", 1699999990, 1699999995, -3.7, 40.4, 10500.5, false, 230.1, 45.0, 0.0, null, 10700.0, "1234", false, 0],
 ["3c6444", null, "Germany", null, 1699999990, null, null, null, true, null, null, null, [1, 2], null, null, false, 0, 3],
 ["a1b2c3", "UAL100", "United States", 1.69999998e9, 1699999990, -122.3, 37.6, -20, false, 80, 10, 1, null, null, null, true, 2]
]}`

func newServer(t *testing.T, status int, body string, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			time.Sleep(delay)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchStates(t *testing.T) {
	srv := newServer(t, http.StatusOK, sampleBody, 0)
	client := opensky.NewClient(opensky.Config{URL: srv.URL, Timeout: time.Second})

	resp, err := client.FetchStates(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if resp.Time != 1700000000 {
		t.Errorf("expected time 1700000000, got %d", resp.Time)
	}
	if len(resp.States) != 3 {
		t.Fatalf("expected 3 states, got %d", len(resp.States))
	}

	first := resp.States[0]
	if first.Icao24 != "4ca7b4" || first.Callsign == nil || *first.Callsign != "IBE1234 " {
		t.Errorf("unexpected identity %q/%v", first.Icao24, first.Callsign)
	}
	if first.TimePosition == nil || *first.TimePosition != 1699999990 {
		t.Errorf("unexpected time_position %v", first.TimePosition)
	}
	if first.BaroAltitude == nil || *first.BaroAltitude != 10500.5 {
		t.Errorf("unexpected baro_altitude %v", first.BaroAltitude)
	}
	if first.Squawk == nil || *first.Squawk != "1234" {
		t.Errorf("unexpected squawk %v", first.Squawk)
	}

	second := resp.States[1]
	if second.Callsign != nil || second.Latitude != nil || second.TimePosition != nil {
		t.Errorf("expected nulls to stay nil: %+v", second)
	}
	if !second.OnGround || len(second.Sensors) != 2 {
		t.Errorf("unexpected ground/sensors: %+v", second)
	}

	third := resp.States[2]
	if third.TimePosition == nil || *third.TimePosition != 1699999980 {
		t.Errorf("expected float time_position to be truncated, got %v", third.TimePosition)
	}
	if third.PositionSource == nil || *third.PositionSource != 2 || !third.SPI {
		t.Errorf("unexpected spi/source: %+v", third)
	}
}

func TestFetchStatesErrors(t *testing.T) {
	tests := []struct {
		Name   string
		Status int
		Body   string
		Schema bool
	}{
		{"server error", http.StatusServiceUnavailable, `oops`, false},
		{"malformed body", http.StatusOK, `{"time": 1, "states": [`, false},
		{"missing time", http.StatusOK, `{"states": []}`, false},
		{"short row", http.StatusOK, `{"time": 1, "states": [["abc", "X", "Spain"]]}`, true},
		{"wrong type", http.StatusOK, `{"time": 1, "states": [["abc", 5, "Spain", 1, 1, 1.0, 1.0, 1.0, false, 1.0, 1.0, 1.0, null, 1.0, null, false, 0]]}`, true},
		{"missing icao", http.StatusOK, `{"time": 1, "states": [[null, "X", "Spain", 1, 1, 1.0, 1.0, 1.0, false, 1.0, 1.0, 1.0, null, 1.0, null, false, 0]]}`, true},
	}

	for _, test := range tests {
		srv := newServer(t, test.Status, test.Body, 0)
		client := opensky.NewClient(opensky.Config{URL: srv.URL, Timeout: time.Second})

		_, err := client.FetchStates(context.Background())
		if err == nil {
			t.Errorf("%s: expected an error", test.Name)
			continue
		}

		var fetchErr *apperr.FetchError
		var schemaErr *apperr.SchemaError
		if test.Schema && !errors.As(err, &schemaErr) {
			t.Errorf("%s: expected SchemaError, got %T %v", test.Name, err, err)
		}
		if !test.Schema && !errors.As(err, &fetchErr) {
			t.Errorf("%s: expected FetchError, got %T %v", test.Name, err, err)
		}
	}
}

func TestFetchStatesTimeout(t *testing.T) {
	srv := newServer(t, http.StatusOK, sampleBody, 300*time.Millisecond)
	client := opensky.NewClient(opensky.Config{URL: srv.URL, Timeout: 50 * time.Millisecond})

	_, err := client.FetchStates(context.Background())
	var fetchErr *apperr.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError on timeout, got %v", err)
	}
}

func TestFetchStatesEmpty(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"time": 1700000000, "states": null}`, 0)
	client := opensky.NewClient(opensky.Config{URL: srv.URL, Timeout: time.Second})

	resp, err := client.FetchStates(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(resp.States) != 0 {
		t.Errorf("expected no states, got %d", len(resp.States))
	}
}

package ingest

import (
	"testing"
	"time"

	"github.com/jengzang/flights-backend-go/internal/models"
)

func fp(v float64) *float64 { return &v }
func sp(v string) *string   { return &v }

var extracted = time.Unix(1700000000, 0).UTC()

func TestClampAltitude(t *testing.T) {
	tests := []struct {
		In, Expected float64
	}{
		{-500, 0},
		{0, 0},
		{22000, 22000},
		{30000, 22000},
		{10500.5, 10500.5},
	}

	for _, test := range tests {
		states := Clean([]models.StateVector{{
			Icao24: "abc123", Longitude: fp(1), Latitude: fp(2), BaroAltitude: fp(test.In),
		}}, extracted)
		if len(states) != 1 {
			t.Fatalf("%v: expected one row, got %d", test.In, len(states))
		}
		if got := *states[0].BaroAltitude; got != test.Expected {
			t.Errorf("%v: expected %v, got %v", test.In, test.Expected, got)
		}
	}
}

func TestCleanGroundFill(t *testing.T) {
	states := Clean([]models.StateVector{
		{Icao24: "ground", OnGround: true, Longitude: fp(1), Latitude: fp(2)},
		{Icao24: "airborne", OnGround: false, Longitude: fp(1), Latitude: fp(2)},
	}, extracted)

	if len(states) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(states))
	}

	ground := states[0]
	if ground.BaroAltitude == nil || *ground.BaroAltitude != 0 {
		t.Errorf("expected ground altitude 0, got %v", ground.BaroAltitude)
	}
	if ground.Velocity == nil || *ground.Velocity != 0 {
		t.Errorf("expected ground velocity 0, got %v", ground.Velocity)
	}

	airborne := states[1]
	if airborne.BaroAltitude != nil || airborne.Velocity != nil {
		t.Errorf("expected airborne nulls to stay null, got %v/%v", airborne.BaroAltitude, airborne.Velocity)
	}
}

func TestCleanGroundKeepsKnownValues(t *testing.T) {
	states := Clean([]models.StateVector{
		{Icao24: "ground", OnGround: true, BaroAltitude: fp(-30), Velocity: fp(12), Longitude: fp(1), Latitude: fp(2)},
	}, extracted)

	if *states[0].BaroAltitude != 0 {
		t.Errorf("expected negative ground altitude clamped to 0, got %v", *states[0].BaroAltitude)
	}
	if *states[0].Velocity != 12 {
		t.Errorf("expected velocity kept, got %v", *states[0].Velocity)
	}
}

func TestCleanDropsRowsWithoutPosition(t *testing.T) {
	states := Clean([]models.StateVector{
		{Icao24: "nolat", Callsign: sp("AAA1"), OnGround: true, BaroAltitude: fp(1000), Longitude: fp(1)},
		{Icao24: "nolon", Callsign: sp("AAA2"), Latitude: fp(1)},
		{Icao24: "ok", Callsign: sp("AAA3"), Longitude: fp(1), Latitude: fp(2)},
	}, extracted)

	if len(states) != 1 || states[0].Icao24 != "ok" {
		t.Fatalf("expected only the positioned row, got %+v", states)
	}
}

func TestCleanTrimsCallsign(t *testing.T) {
	states := Clean([]models.StateVector{
		{Icao24: "a", Callsign: sp("  IBE1234   "), Longitude: fp(1), Latitude: fp(2)},
		{Icao24: "b", Callsign: nil, Longitude: fp(1), Latitude: fp(2)},
	}, extracted)

	if states[0].Callsign != "IBE1234" {
		t.Errorf("expected trimmed callsign, got %q", states[0].Callsign)
	}
	if states[1].Callsign != "" {
		t.Errorf("expected empty callsign for null, got %q", states[1].Callsign)
	}
	if !states[0].ExtractedAt.Equal(extracted) {
		t.Errorf("expected extracted_at %v, got %v", extracted, states[0].ExtractedAt)
	}
}

func TestCleanDoesNotAliasInput(t *testing.T) {
	alt := fp(30000)
	in := []models.StateVector{{Icao24: "a", BaroAltitude: alt, Longitude: fp(1), Latitude: fp(2)}}
	Clean(in, extracted)

	if *alt != 30000 {
		t.Errorf("input altitude was modified: %v", *alt)
	}
}

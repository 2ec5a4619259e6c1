package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jengzang/flights-backend-go/internal/models"
)

func newArchive(t *testing.T) *Archive {
	t.Helper()
	root := t.TempDir()
	a := &Archive{
		RawDir:     filepath.Join(root, "raw"),
		CuratedDir: filepath.Join(root, "curated"),
	}
	if err := a.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestSnapshotFileName(t *testing.T) {
	at := time.Date(2024, 3, 9, 7, 5, 2, 0, time.UTC)
	if got := SnapshotFileName("flights", at); got != "flights_20240309_070502.parquet" {
		t.Errorf("unexpected file name %q", got)
	}
}

func TestCuratedRoundTrip(t *testing.T) {
	a := newArchive(t)
	at := time.Date(2024, 3, 9, 7, 5, 2, 0, time.UTC)
	tp := int64(1699999990)

	states := []models.FlightState{
		{Icao24: "4ca7b4", Callsign: "IBE1234", OriginCountry: "Spain", TimePosition: &tp,
			Longitude: -3.7, Latitude: 40.4, BaroAltitude: fp(10500), Velocity: fp(230), ExtractedAt: extracted},
		{Icao24: "3c6444", OriginCountry: "Germany", Longitude: 8.5, Latitude: 50.0, OnGround: true,
			BaroAltitude: fp(0), Velocity: fp(0), ExtractedAt: extracted},
	}

	path, err := a.WriteCurated(states, at)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(path) != "flights_20240309_070502.parquet" {
		t.Errorf("unexpected path %s", path)
	}

	snap, err := ReadCurated(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(snap.States) != 2 {
		t.Fatalf("expected 2 rows back, got %d", len(snap.States))
	}
	if !snap.ExtractedAt.Equal(extracted) {
		t.Errorf("expected extracted_at %v, got %v", extracted, snap.ExtractedAt)
	}

	first := snap.States[0]
	if first.Callsign != "IBE1234" || first.TimePosition == nil || *first.TimePosition != tp {
		t.Errorf("unexpected first row %+v", first)
	}
	if snap.States[1].TimePosition != nil {
		t.Errorf("expected null time_position to survive, got %v", *snap.States[1].TimePosition)
	}
}

func TestWriteNeverOverwrites(t *testing.T) {
	a := newArchive(t)
	at := time.Date(2024, 3, 9, 7, 5, 2, 0, time.UTC)
	resp := &models.StatesResponse{Time: 1, States: []models.StateVector{{Icao24: "a"}}}

	first, err := a.WriteRaw(resp, at)
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.WriteRaw(resp, at)
	if err != nil {
		t.Fatal(err)
	}

	if first == second {
		t.Fatalf("second write reused %s", first)
	}
	if filepath.Base(second) != "raw_flights_20240309_070502_2.parquet" {
		t.Errorf("unexpected suffixed name %s", second)
	}

	entries, _ := os.ReadDir(a.RawDir)
	if len(entries) != 2 {
		t.Errorf("expected 2 raw files, got %d", len(entries))
	}
}

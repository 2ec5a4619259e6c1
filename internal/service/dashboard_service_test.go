package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/jengzang/flights-backend-go/internal/alert"
	"github.com/jengzang/flights-backend-go/internal/apperr"
	"github.com/jengzang/flights-backend-go/internal/database"
	"github.com/jengzang/flights-backend-go/internal/models"
	"github.com/jengzang/flights-backend-go/internal/service"
	"github.com/jengzang/flights-backend-go/internal/transform"
)

func fp(v float64) *float64 { return &v }
func ip(v int64) *int64     { return &v }

func flight(icao, callsign, country string, tp, at int64, lat, lon, alt, vel float64) models.FlightState {
	return models.FlightState{
		Icao24:        icao,
		Callsign:      callsign,
		OriginCountry: country,
		TimePosition:  ip(tp),
		Latitude:      lat,
		Longitude:     lon,
		BaroAltitude:  fp(alt),
		Velocity:      fp(vel),
		ExtractedAt:   time.Unix(at, 0).UTC(),
	}
}

// seed writes cycles through the engine and returns a reader over the same file.
func seed(t *testing.T, snaps ...[]models.FlightState) *service.DashboardService {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flights.db")

	db, err := database.OpenAndMigrate(path)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	defer db.Close()

	engine := transform.NewEngine(db, alert.DefaultRules(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, states := range snaps {
		snap := &models.Snapshot{ExtractedAt: states[0].ExtractedAt, States: states}
		if _, err := engine.ApplySnapshot(context.Background(), snap); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}

	ro, err := database.Open(database.Config{Path: path, ReadOnly: true})
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	t.Cleanup(func() { ro.Close() })
	return service.NewDashboardService(ro)
}

func TestNotReadyBeforeFirstCycle(t *testing.T) {
	ctx := context.Background()

	empty := seed(t)
	if _, err := empty.GetOverview(ctx); !errors.Is(err, apperr.ErrNotReady) {
		t.Errorf("migrated empty store: expected ErrNotReady, got %v", err)
	}

	ro, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "fresh.db"), ReadOnly: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer ro.Close()
	if _, err := service.NewDashboardService(ro).GetFlights(ctx, models.FlightFilter{}); !errors.Is(err, apperr.ErrNotReady) {
		t.Errorf("unmigrated store: expected ErrNotReady, got %v", err)
	}

	missing, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "data", "flights.db"), ReadOnly: true})
	if err != nil {
		t.Fatalf("open missing store: %v", err)
	}
	defer missing.Close()
	if _, err := service.NewDashboardService(missing).GetOverview(ctx); !errors.Is(err, apperr.ErrNotReady) {
		t.Errorf("missing store: expected ErrNotReady, got %v", err)
	}
}

func TestOverviewMatchesLatestCycle(t *testing.T) {
	svc := seed(t,
		[]models.FlightState{flight("a1", "AAA1", "Spain", 100, 1000, 40.4, -3.7, 10000, 200)},
		[]models.FlightState{
			flight("a1", "AAA1", "Spain", 200, 1060, 40.5, -3.6, 10000, 200),
			flight("b2", "BBB2", "Spain", 210, 1060, 41.3, 2.1, 800, 160),
		},
	)

	o, err := svc.GetOverview(context.Background())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if o.LastCycleSeq != 2 || o.Active != 2 || o.LastPosition != 210 || o.Alerts != 1 {
		t.Errorf("overview mixes cycles: %+v", o)
	}
}

func TestOverviewAndFlights(t *testing.T) {
	ground := flight("c3", "CCC3", "France", 100, 1000, 48.8, 2.3, 0, 0)
	ground.OnGround = true
	svc := seed(t, []models.FlightState{
		flight("a1", "AAA1", "Spain", 100, 1000, 40.4, -3.7, 10000, 200),
		flight("b2", "BBB2", "Spain", 120, 1000, 41.3, 2.1, 800, 160),
		ground,
	})
	ctx := context.Background()

	o, err := svc.GetOverview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if o.Active != 3 || o.Airborne != 2 || o.OnGround != 1 || o.LastPosition != 120 || o.LastCycleSeq != 1 {
		t.Errorf("unexpected overview %+v", o)
	}
	if math.Abs(o.AvgAirborneKMH-648) > 1e-6 {
		t.Errorf("avg airborne km/h = %v, want 648", o.AvgAirborneKMH)
	}
	// b2 is low and fast
	if o.Alerts != 1 {
		t.Errorf("expected 1 alert, got %d", o.Alerts)
	}

	flights, err := svc.GetFlights(ctx, models.FlightFilter{Countries: []string{" Spain ", ""}})
	if err != nil {
		t.Fatalf("flights: %v", err)
	}
	if len(flights) != 2 || flights[0].VelocityKMH == nil || *flights[0].VelocityKMH != 720 {
		t.Errorf("unexpected flights %+v", flights)
	}

	alerts, err := svc.GetAlerts(ctx, []string{"France"})
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("expected no French alerts, got %+v", alerts)
	}
}

func TestAltitudeProfileSkeleton(t *testing.T) {
	svc := seed(t, []models.FlightState{
		flight("a1", "AAA1", "Spain", 100, 1000, 40, -3, 10500, 200),
		flight("b2", "BBB2", "Spain", 100, 1000, 40, -3, 10999, 200),
		flight("c3", "CCC3", "Spain", 100, 1000, 40, -3, 17000, 200),
	})

	profile, err := svc.GetAltitudeProfile(context.Background())
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(profile) != 17 {
		t.Fatalf("expected 16 skeleton bands plus one above, got %d", len(profile))
	}
	if profile[0].Label != "0m - 1000m" || profile[0].Flights != 0 {
		t.Errorf("unexpected first band %+v", profile[0])
	}
	if profile[10].Floor != 10000 || profile[10].Flights != 2 {
		t.Errorf("unexpected 10000 m band %+v", profile[10])
	}
	if last := profile[16]; last.Floor != 17000 || last.Flights != 1 {
		t.Errorf("unexpected band above skeleton %+v", last)
	}

	floors, err := svc.GetAltitudeFloors(context.Background(), 0)
	if err != nil {
		t.Fatalf("floors: %v", err)
	}
	if len(floors) != 2 || floors[0].Floor != 10000 || floors[0].Flights != 2 || floors[1].Label != "15000m - 20000m" {
		t.Errorf("unexpected floors %+v", floors)
	}
}

func TestTrajectory(t *testing.T) {
	svc := seed(t,
		[]models.FlightState{flight("34520a", "IBE1234", "Spain", 100, 1000, 40.0, -3.0, 9000, 200)},
		[]models.FlightState{flight("34520a", "IBE1234", "Spain", 200, 1300, 40.0, -2.0, 10000, 250)},
	)
	ctx := context.Background()

	track, err := svc.GetTrajectory(ctx, " ibe1234")
	if err != nil {
		t.Fatalf("trajectory: %v", err)
	}
	s := track.Summary
	if s.Points != 2 || s.FirstSeen != 100 || s.LastSeen != 200 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.CurrentAltitude == nil || *s.CurrentAltitude != 10000 || s.CurrentKMH == nil || *s.CurrentKMH != 900 {
		t.Errorf("unexpected current state %+v", s)
	}
	if s.DistanceMeters < 80000 || s.DistanceMeters > 90000 {
		t.Errorf("distance = %.0f m, expected about 85 km", s.DistanceMeters)
	}
	if s.Bearing < 85 || s.Bearing > 95 {
		t.Errorf("bearing = %v, expected about east", s.Bearing)
	}

	if _, err := svc.GetTrajectory(ctx, "NOPE1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	versions, err := svc.GetFlightHistory(ctx, "34520A", "ibe1234")
	if err != nil {
		t.Fatalf("flight history: %v", err)
	}
	if len(versions) != 2 || versions[0].IsLatest || !versions[1].IsLatest {
		t.Errorf("expected the older version historical and the newer latest, got %+v", versions)
	}
}

func TestTrajectoryRejectsBlankCallsign(t *testing.T) {
	svc := seed(t, []models.FlightState{flight("a1", "AAA1", "Spain", 100, 1000, 40.4, -3.7, 10000, 200)})

	if _, err := svc.GetTrajectory(context.Background(), "  "); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if s := service.Summarize(nil); s.Points != 0 {
		t.Errorf("expected empty summary, got %+v", s)
	}
}

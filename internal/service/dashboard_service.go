package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/flights-backend-go/internal/apperr"
	"github.com/jengzang/flights-backend-go/internal/models"
	"github.com/jengzang/flights-backend-go/internal/repository"
	"github.com/jengzang/flights-backend-go/internal/spatial"
	"github.com/jengzang/flights-backend-go/internal/stats"
)

const (
	// SkeletonCeiling is the floor of the highest band always reported.
	SkeletonCeiling = 15000

	DefaultTopCountries = 10
	DefaultFloorWidth   = 5000
	DefaultHistoryLimit = 500
)

// DashboardService serves the read side of the store
type DashboardService struct {
	db          *sql.DB
	cycleRepo   *repository.CycleRepository
	stagingRepo *repository.StagingRepository
	alertRepo   *repository.AlertRepository
	trackRepo   *repository.TrackRepository
	statsRepo   *repository.StatsRepository
}

// NewDashboardService creates a dashboard service over a read-only connection
func NewDashboardService(db *sql.DB) *DashboardService {
	return &DashboardService{
		db:          db,
		cycleRepo:   repository.NewCycleRepository(db),
		stagingRepo: repository.NewStagingRepository(db),
		alertRepo:   repository.NewAlertRepository(db),
		trackRepo:   repository.NewTrackRepository(db),
		statsRepo:   repository.NewStatsRepository(db),
	}
}

// LatestCycle returns the newest committed cycle. A store that is missing,
// not migrated yet or still empty reports ErrNotReady.
func (s *DashboardService) LatestCycle(ctx context.Context) (*models.Cycle, error) {
	return latestCycle(ctx, s.cycleRepo)
}

func latestCycle(ctx context.Context, repo *repository.CycleRepository) (*models.Cycle, error) {
	cycle, err := repo.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrNotReady, err)
	}
	if cycle == nil {
		return nil, apperr.ErrNotReady
	}
	return cycle, nil
}

// GetOverview returns the headline numbers of the latest partition. All of
// them come from one read snapshot, so the counts match LastCycleSeq.
func (s *DashboardService) GetOverview(ctx context.Context) (*models.Overview, error) {
	var overview *models.Overview
	err := s.readSnapshot(ctx, func(tx *sql.Tx) error {
		cycle, err := latestCycle(ctx, repository.NewCycleRepository(tx))
		if err != nil {
			return err
		}

		overview, err = repository.NewStagingRepository(tx).GetOverview(ctx)
		if err != nil {
			return fmt.Errorf("failed to get overview: %w", err)
		}

		levels, err := repository.NewAlertRepository(tx).CountLatestByLevel(ctx)
		if err != nil {
			return fmt.Errorf("failed to get overview: %w", err)
		}
		for level, n := range levels {
			if level != "Normal" {
				overview.Alerts += n
			}
		}

		overview.LastCycleSeq = cycle.Seq
		overview.LastExtractedAt = cycle.ExtractedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return overview, nil
}

// readSnapshot runs fn inside a read-only transaction. SQLite pins the WAL
// snapshot at the first read, so every statement in fn sees the same cycle.
func (s *DashboardService) readSnapshot(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrNotReady, err)
	}
	defer tx.Rollback()
	return fn(tx)
}

// GetFlights returns the latest partition, optionally filtered
func (s *DashboardService) GetFlights(ctx context.Context, filter models.FlightFilter) ([]models.StagingRecord, error) {
	if _, err := s.LatestCycle(ctx); err != nil {
		return nil, err
	}

	filter.Countries = cleanCountries(filter.Countries)
	flights, err := s.stagingRepo.GetLatest(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get flights: %w", err)
	}
	return flights, nil
}

// GetFlightHistory returns every stored version of one identity, oldest first.
// Exactly one of them is latest.
func (s *DashboardService) GetFlightHistory(ctx context.Context, icao24, callsign string) ([]models.StagingRecord, error) {
	if _, err := s.LatestCycle(ctx); err != nil {
		return nil, err
	}

	id := models.Identity{
		Icao24:   strings.ToLower(strings.TrimSpace(icao24)),
		Callsign: strings.ToUpper(strings.TrimSpace(callsign)),
	}
	versions, err := s.stagingRepo.GetHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get flight history: %w", err)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("no versions for %s/%s: %w", id.Icao24, id.Callsign, apperr.ErrNotFound)
	}
	return versions, nil
}

// GetAlerts returns latest alerts other than Normal
func (s *DashboardService) GetAlerts(ctx context.Context, countries []string) ([]models.FlightAlert, error) {
	if _, err := s.LatestCycle(ctx); err != nil {
		return nil, err
	}

	alerts, err := s.alertRepo.GetLatestAlerts(ctx, cleanCountries(countries), false)
	if err != nil {
		return nil, fmt.Errorf("failed to get alerts: %w", err)
	}
	return alerts, nil
}

// GetCountries lists the origin countries of the latest partition
func (s *DashboardService) GetCountries(ctx context.Context) ([]string, error) {
	if _, err := s.LatestCycle(ctx); err != nil {
		return nil, err
	}
	return s.stagingRepo.GetCountries(ctx)
}

// GetTopCountries returns the busiest origin countries
func (s *DashboardService) GetTopCountries(ctx context.Context, limit int) ([]models.CountryTraffic, error) {
	if _, err := s.LatestCycle(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultTopCountries
	}
	return s.statsRepo.GetCountryTraffic(ctx, limit)
}

// GetAltitudeProfile returns 1000 m bands from 0 up to SkeletonCeiling,
// zero-filled, followed by any occupied band above it.
func (s *DashboardService) GetAltitudeProfile(ctx context.Context) ([]models.AltitudeBand, error) {
	if _, err := s.LatestCycle(ctx); err != nil {
		return nil, err
	}

	bands, err := s.statsRepo.GetAltitudeBands(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get altitude profile: %w", err)
	}

	counts := make(map[int]int, len(bands))
	for _, b := range bands {
		counts[b.Floor] = b.Flights
	}

	width := repository.AltitudeBandWidth
	profile := make([]models.AltitudeBand, 0, SkeletonCeiling/width+1)
	for floor := 0; floor <= SkeletonCeiling; floor += width {
		profile = append(profile, band(floor, width, counts[floor]))
	}
	for _, b := range bands {
		if b.Floor > SkeletonCeiling {
			profile = append(profile, band(b.Floor, width, b.Flights))
		}
	}
	return profile, nil
}

// GetAltitudeFloors groups the latest partition into coarse floors
func (s *DashboardService) GetAltitudeFloors(ctx context.Context, width int) ([]models.AltitudeBand, error) {
	if _, err := s.LatestCycle(ctx); err != nil {
		return nil, err
	}
	if width <= 0 {
		width = DefaultFloorWidth
	}

	floors, err := s.statsRepo.GetAltitudeFloors(ctx, width)
	if err != nil {
		return nil, fmt.Errorf("failed to get altitude floors: %w", err)
	}
	for i := range floors {
		floors[i].Label = bandLabel(floors[i].Floor, width)
	}
	return floors, nil
}

// GetTrafficHistory returns accumulated per-cycle country counts
func (s *DashboardService) GetTrafficHistory(ctx context.Context, country string, limit int) ([]models.TrafficHistoryEntry, error) {
	if _, err := s.LatestCycle(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.statsRepo.GetHistory(ctx, strings.TrimSpace(country), limit)
}

// GetTrajectory returns the accumulated track of a callsign with its summary
func (s *DashboardService) GetTrajectory(ctx context.Context, callsign string) (*models.TrajectoryResponse, error) {
	if _, err := s.LatestCycle(ctx); err != nil {
		return nil, err
	}

	callsign = strings.ToUpper(strings.TrimSpace(callsign))
	if callsign == "" {
		return nil, fmt.Errorf("callsign is required: %w", apperr.ErrInvalidInput)
	}

	points, err := s.trackRepo.GetTrack(ctx, callsign)
	if err != nil {
		return nil, fmt.Errorf("failed to get trajectory: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no track for %s: %w", callsign, apperr.ErrNotFound)
	}

	return &models.TrajectoryResponse{
		Callsign: callsign,
		Summary:  Summarize(points),
		Points:   points,
	}, nil
}

// GetCycles returns the committed cycle log
func (s *DashboardService) GetCycles(ctx context.Context, limit int) ([]models.Cycle, error) {
	if _, err := s.LatestCycle(ctx); err != nil {
		return nil, err
	}
	return s.cycleRepo.List(ctx, limit)
}

// Summarize describes a track ordered by time_position.
func Summarize(points []models.TrajectoryPoint) models.TrajectorySummary {
	if len(points) == 0 {
		return models.TrajectorySummary{}
	}

	var altitudes, speeds []float64
	for _, p := range points {
		if p.BaroAltitude != nil {
			altitudes = append(altitudes, *p.BaroAltitude)
		}
		if p.VelocityKMH != nil {
			speeds = append(speeds, *p.VelocityKMH)
		}
	}

	last := points[len(points)-1]
	bounds := spatial.TrackBounds(points)
	return models.TrajectorySummary{
		Points:          len(points),
		FirstSeen:       points[0].TimePosition,
		LastSeen:        last.TimePosition,
		CurrentAltitude: last.BaroAltitude,
		CurrentKMH:      last.VelocityKMH,
		MaxAltitude:     stats.Summarize(altitudes).Max,
		AvgKMH:          stats.Summarize(speeds).Mean,
		DistanceMeters:  spatial.PathLength(points),
		Bearing:         spatial.LastLegBearing(points),
		MinLat:          bounds.MinLat,
		MinLon:          bounds.MinLon,
		MaxLat:          bounds.MaxLat,
		MaxLon:          bounds.MaxLon,
	}
}

func band(floor, width, flights int) models.AltitudeBand {
	return models.AltitudeBand{Floor: floor, Width: width, Label: bandLabel(floor, width), Flights: flights}
}

func bandLabel(floor, width int) string {
	return fmt.Sprintf("%dm - %dm", floor, floor+width)
}

// cleanCountries trims values and drops blanks. Country names may contain
// commas ("Korea, Republic of"), so values are never split.
func cleanCountries(countries []string) []string {
	var out []string
	for _, c := range countries {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

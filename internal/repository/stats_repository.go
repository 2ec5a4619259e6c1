package repository

import (
	"context"
	"fmt"

	"github.com/jengzang/flights-backend-go/internal/models"
)

// AltitudeBandWidth is the height of one altitude band in meters.
const AltitudeBandWidth = 1000

// StatsRepository handles the traffic aggregates
type StatsRepository struct {
	db DBTX
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

// Refresh rebuilds the aggregates from the current partition and appends
// this cycle's country counts to the history. It returns the number of countries.
func (r *StatsRepository) Refresh(ctx context.Context, cycleSeq int64) (int, error) {
	steps := []struct {
		name  string
		query string
		args  []any
	}{
		{"clear country traffic", "DELETE FROM traffic_by_country", nil},
		{"rebuild country traffic", `INSERT INTO traffic_by_country (origin_country, flights, airborne, on_ground, cycle_seq)
			SELECT origin_country, COUNT(*),
				SUM(CASE WHEN on_ground = 0 THEN 1 ELSE 0 END),
				SUM(CASE WHEN on_ground = 1 THEN 1 ELSE 0 END),
				?
			FROM stg_flights WHERE is_latest = 1
			GROUP BY origin_country`, []any{cycleSeq}},
		{"clear altitude bands", "DELETE FROM altitude_bands", nil},
		{"rebuild altitude bands", `INSERT INTO altitude_bands (band_floor, flights, cycle_seq)
			SELECT CAST(baro_altitude / ? AS INTEGER) * ?, COUNT(*), ?
			FROM stg_flights WHERE is_latest = 1 AND baro_altitude IS NOT NULL
			GROUP BY 1`, []any{AltitudeBandWidth, AltitudeBandWidth, cycleSeq}},
		{"append traffic history", `INSERT INTO traffic_history (cycle_seq, origin_country, flights)
			SELECT cycle_seq, origin_country, flights FROM traffic_by_country`, nil},
	}

	for _, step := range steps {
		if _, err := r.db.ExecContext(ctx, step.query, step.args...); err != nil {
			return 0, fmt.Errorf("failed to %s: %w", step.name, err)
		}
	}

	var countries int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM traffic_by_country").Scan(&countries); err != nil {
		return 0, fmt.Errorf("failed to count countries: %w", err)
	}
	return countries, nil
}

// GetCountryTraffic returns countries by flight count, busiest first.
func (r *StatsRepository) GetCountryTraffic(ctx context.Context, limit int) ([]models.CountryTraffic, error) {
	query := `SELECT origin_country, flights, airborne, on_ground FROM traffic_by_country
		ORDER BY flights DESC, origin_country`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query country traffic: %w", err)
	}
	defer rows.Close()

	var out []models.CountryTraffic
	for rows.Next() {
		var c models.CountryTraffic
		if err := rows.Scan(&c.OriginCountry, &c.Flights, &c.Airborne, &c.OnGround); err != nil {
			return nil, fmt.Errorf("failed to scan country traffic: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetAltitudeBands returns the stored 1000 m bands, lowest first.
func (r *StatsRepository) GetAltitudeBands(ctx context.Context) ([]models.AltitudeBand, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT band_floor, flights FROM altitude_bands ORDER BY band_floor")
	if err != nil {
		return nil, fmt.Errorf("failed to query altitude bands: %w", err)
	}
	defer rows.Close()

	var out []models.AltitudeBand
	for rows.Next() {
		b := models.AltitudeBand{Width: AltitudeBandWidth}
		if err := rows.Scan(&b.Floor, &b.Flights); err != nil {
			return nil, fmt.Errorf("failed to scan altitude band: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetAltitudeFloors groups the latest partition into bands of width meters.
func (r *StatsRepository) GetAltitudeFloors(ctx context.Context, width int) ([]models.AltitudeBand, error) {
	if width <= 0 {
		return nil, fmt.Errorf("invalid band width %d", width)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT CAST(baro_altitude / ? AS INTEGER) * ? AS floor, COUNT(*)
		FROM stg_flights WHERE is_latest = 1 AND baro_altitude IS NOT NULL
		GROUP BY 1 ORDER BY 1`, width, width)
	if err != nil {
		return nil, fmt.Errorf("failed to query altitude floors: %w", err)
	}
	defer rows.Close()

	var out []models.AltitudeBand
	for rows.Next() {
		b := models.AltitudeBand{Width: width}
		if err := rows.Scan(&b.Floor, &b.Flights); err != nil {
			return nil, fmt.Errorf("failed to scan altitude floor: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetHistory returns accumulated per-cycle country counts, newest cycle first.
func (r *StatsRepository) GetHistory(ctx context.Context, country string, limit int) ([]models.TrafficHistoryEntry, error) {
	query := `SELECT h.cycle_seq, c.extracted_at, h.origin_country, h.flights
		FROM traffic_history h JOIN cycles c ON c.seq = h.cycle_seq`
	var args []any
	if country != "" {
		query += " WHERE h.origin_country = ?"
		args = append(args, country)
	}
	query += " ORDER BY h.cycle_seq DESC, h.flights DESC, h.origin_country"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query traffic history: %w", err)
	}
	defer rows.Close()

	var out []models.TrafficHistoryEntry
	for rows.Next() {
		var e models.TrafficHistoryEntry
		if err := rows.Scan(&e.CycleSeq, &e.ExtractedAt, &e.OriginCountry, &e.Flights); err != nil {
			return nil, fmt.Errorf("failed to scan traffic history: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

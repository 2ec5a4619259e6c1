package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/flights-backend-go/internal/models"
)

// AlertRepository handles alert records
type AlertRepository struct {
	db DBTX
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db DBTX) *AlertRepository {
	return &AlertRepository{db: db}
}

// Upsert writes the alert of a staging record, replacing any earlier evaluation.
func (r *AlertRepository) Upsert(ctx context.Context, recordID int64, level, rule string, evaluatedAt int64) error {
	query := `INSERT INTO flight_alerts (record_id, alert_level, rule, evaluated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (record_id) DO UPDATE SET
			alert_level = excluded.alert_level,
			rule = excluded.rule,
			evaluated_at = excluded.evaluated_at`

	if _, err := r.db.ExecContext(ctx, query, recordID, level, rule, evaluatedAt); err != nil {
		return fmt.Errorf("failed to write alert for record %d: %w", recordID, err)
	}
	return nil
}

// GetLatestAlerts returns alerts of the latest partition. Normal rows are
// skipped unless includeNormal is set.
func (r *AlertRepository) GetLatestAlerts(ctx context.Context, countries []string, includeNormal bool) ([]models.FlightAlert, error) {
	conditions := []string{"is_latest = 1"}
	var args []any

	if !includeNormal {
		conditions = append(conditions, "alert_level <> 'Normal'")
	}
	if len(countries) > 0 {
		clause, inArgs := inClause("origin_country", countries)
		conditions = append(conditions, clause)
		args = append(args, inArgs...)
	}

	query := `SELECT record_id, icao24, callsign, origin_country, alert_level, rule,
			baro_altitude, velocity_kmh, on_ground, latitude, longitude, evaluated_at, is_latest
		FROM fct_flight_alerts WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY CASE alert_level WHEN 'Critical' THEN 0 WHEN 'Warning' THEN 1 ELSE 2 END, callsign, icao24`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.FlightAlert
	for rows.Next() {
		var a models.FlightAlert
		var alt, kmh sql.NullFloat64
		err := rows.Scan(&a.RecordID, &a.Icao24, &a.Callsign, &a.OriginCountry, &a.AlertLevel, &a.Rule,
			&alt, &kmh, &a.OnGround, &a.Latitude, &a.Longitude, &a.EvaluatedAt, &a.IsLatest)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.BaroAltitude = nullFloat(alt)
		a.VelocityKMH = nullFloat(kmh)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// CountLatestByLevel counts latest alerts per level.
func (r *AlertRepository) CountLatestByLevel(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT alert_level, COUNT(*) FROM fct_flight_alerts
		WHERE is_latest = 1 GROUP BY alert_level`)
	if err != nil {
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var level string
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, fmt.Errorf("failed to scan alert count: %w", err)
		}
		counts[level] = n
	}
	return counts, rows.Err()
}

// CountRecordsWithoutAlert counts staging records that have no alert row.
func (r *AlertRepository) CountRecordsWithoutAlert(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM staging_records s
		LEFT JOIN flight_alerts a ON a.record_id = s.id WHERE a.record_id IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records without alert: %w", err)
	}
	return n, nil
}

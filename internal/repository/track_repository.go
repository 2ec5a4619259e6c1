package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/flights-backend-go/internal/models"
)

// TrackRepository handles the append-only trajectory log
type TrackRepository struct {
	db DBTX
}

// NewTrackRepository creates a new track repository
func NewTrackRepository(db DBTX) *TrackRepository {
	return &TrackRepository{db: db}
}

// Append adds a trajectory point. A point already stored under the same
// (callsign, time_position) is left untouched and appended is false.
func (r *TrackRepository) Append(ctx context.Context, cycleSeq int64, p models.TrajectoryPoint) (appended bool, err error) {
	query := `INSERT OR IGNORE INTO flight_tracks
		(callsign, time_position, icao24, origin_country, latitude, longitude,
		 baro_altitude, velocity, on_ground, record_id, cycle_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		p.Callsign, p.TimePosition, p.Icao24, p.OriginCountry, p.Latitude, p.Longitude,
		p.BaroAltitude, p.Velocity, p.OnGround, p.RecordID, cycleSeq,
	)
	if err != nil {
		return false, fmt.Errorf("failed to append track point %s@%d: %w", p.Callsign, p.TimePosition, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// GetTrack returns the trajectory of a callsign ordered by time_position.
func (r *TrackRepository) GetTrack(ctx context.Context, callsign string) ([]models.TrajectoryPoint, error) {
	query := `SELECT callsign, time_position, icao24, origin_country, latitude, longitude,
			baro_altitude, velocity, velocity_kmh, on_ground, record_id
		FROM fct_flight_tracks
		WHERE callsign = ?
		ORDER BY time_position ASC`

	rows, err := r.db.QueryContext(ctx, query, callsign)
	if err != nil {
		return nil, fmt.Errorf("failed to query track: %w", err)
	}
	defer rows.Close()

	var points []models.TrajectoryPoint
	for rows.Next() {
		var p models.TrajectoryPoint
		var alt, vel, kmh sql.NullFloat64
		err := rows.Scan(&p.Callsign, &p.TimePosition, &p.Icao24, &p.OriginCountry, &p.Latitude, &p.Longitude,
			&alt, &vel, &kmh, &p.OnGround, &p.RecordID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track point: %w", err)
		}
		p.BaroAltitude = nullFloat(alt)
		p.Velocity = nullFloat(vel)
		p.VelocityKMH = nullFloat(kmh)
		points = append(points, p)
	}
	return points, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/flights-backend-go/internal/models"
)

// StagingRepository handles the staging arena and its current-version index
type StagingRepository struct {
	db DBTX
}

// NewStagingRepository creates a new staging repository
func NewStagingRepository(db DBTX) *StagingRepository {
	return &StagingRepository{db: db}
}

// Version identifies the current record of an identity and its ordering keys.
type Version struct {
	RecordID     int64
	TimePosition *int64
	ExtractedAt  int64
}

// Newer reports whether v should replace cur: later time_position wins, a
// missing time_position is the oldest, ties go to the later extracted_at.
func (v Version) Newer(cur *Version) bool {
	if cur == nil {
		return true
	}
	switch {
	case v.TimePosition == nil && cur.TimePosition != nil:
		return false
	case v.TimePosition != nil && cur.TimePosition == nil:
		return true
	case v.TimePosition != nil && *v.TimePosition != *cur.TimePosition:
		return *v.TimePosition > *cur.TimePosition
	}
	return v.ExtractedAt > cur.ExtractedAt
}

// InsertRecord appends a state to the arena. inserted is false when the same
// observation is already stored.
func (r *StagingRepository) InsertRecord(ctx context.Context, cycleSeq int64, st models.FlightState) (id int64, inserted bool, err error) {
	query := `INSERT OR IGNORE INTO staging_records
		(cycle_seq, icao24, callsign, origin_country, time_position, last_contact,
		 longitude, latitude, baro_altitude, on_ground, velocity, true_track,
		 spi, position_source, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		cycleSeq, st.Icao24, st.Callsign, st.OriginCountry, st.TimePosition, st.LastContact,
		st.Longitude, st.Latitude, st.BaroAltitude, st.OnGround, st.Velocity, st.TrueTrack,
		st.SPI, st.PositionSource, st.ExtractedAt.Unix(),
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert staging record %s/%s: %w", st.Icao24, st.Callsign, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return 0, false, nil
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read staging record id: %w", err)
	}
	return id, true, nil
}

// CurrentVersion returns the current version of an identity, or nil.
func (r *StagingRepository) CurrentVersion(ctx context.Context, id models.Identity) (*Version, error) {
	query := `SELECT c.record_id, r.time_position, r.extracted_at
		FROM staging_current c
		JOIN staging_records r ON r.id = c.record_id
		WHERE c.icao24 = ? AND c.callsign = ?`

	var v Version
	var tp sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id.Icao24, id.Callsign).Scan(&v.RecordID, &tp, &v.ExtractedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current version of %s/%s: %w", id.Icao24, id.Callsign, err)
	}
	v.TimePosition = nullInt(tp)
	return &v, nil
}

// SetCurrent points the identity at recordID, demoting the previous version.
func (r *StagingRepository) SetCurrent(ctx context.Context, id models.Identity, recordID int64) error {
	query := `INSERT INTO staging_current (icao24, callsign, record_id) VALUES (?, ?, ?)
		ON CONFLICT (icao24, callsign) DO UPDATE SET record_id = excluded.record_id`

	if _, err := r.db.ExecContext(ctx, query, id.Icao24, id.Callsign, recordID); err != nil {
		return fmt.Errorf("failed to promote record %d: %w", recordID, err)
	}
	return nil
}

const stagingColumns = `id, cycle_seq, icao24, callsign, origin_country, time_position, last_contact,
	longitude, latitude, baro_altitude, on_ground, velocity, velocity_kmh, true_track,
	spi, position_source, extracted_at, is_latest`

func scanStaging(rows *sql.Rows) (models.StagingRecord, error) {
	var rec models.StagingRecord
	var tp, source sql.NullInt64
	var alt, vel, kmh, track sql.NullFloat64
	err := rows.Scan(
		&rec.ID, &rec.CycleSeq, &rec.Icao24, &rec.Callsign, &rec.OriginCountry, &tp, &rec.LastContact,
		&rec.Longitude, &rec.Latitude, &alt, &rec.OnGround, &vel, &kmh, &track,
		&rec.SPI, &source, &rec.ExtractedAt, &rec.IsLatest,
	)
	if err != nil {
		return rec, err
	}
	rec.TimePosition = nullInt(tp)
	rec.BaroAltitude = nullFloat(alt)
	rec.Velocity = nullFloat(vel)
	rec.VelocityKMH = nullFloat(kmh)
	rec.TrueTrack = nullFloat(track)
	rec.PositionSource = nullInt32(source)
	return rec, nil
}

// GetLatest returns the is_latest partition.
func (r *StagingRepository) GetLatest(ctx context.Context, filter models.FlightFilter) ([]models.StagingRecord, error) {
	conditions := []string{"is_latest = 1"}
	var args []any

	if len(filter.Countries) > 0 {
		clause, inArgs := inClause("origin_country", filter.Countries)
		conditions = append(conditions, clause)
		args = append(args, inArgs...)
	}
	if filter.OnGround != nil {
		conditions = append(conditions, "on_ground = ?")
		args = append(args, *filter.OnGround)
	}

	query := "SELECT " + stagingColumns + " FROM stg_flights WHERE " +
		strings.Join(conditions, " AND ") + " ORDER BY icao24, callsign"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return r.query(ctx, query, args...)
}

// GetHistory returns every stored version of an identity, oldest first.
func (r *StagingRepository) GetHistory(ctx context.Context, id models.Identity) ([]models.StagingRecord, error) {
	query := "SELECT " + stagingColumns + ` FROM stg_flights
		WHERE icao24 = ? AND callsign = ?
		ORDER BY IFNULL(time_position, -1), extracted_at, id`
	return r.query(ctx, query, id.Icao24, id.Callsign)
}

func (r *StagingRepository) query(ctx context.Context, query string, args ...any) ([]models.StagingRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query staging: %w", err)
	}
	defer rows.Close()

	var records []models.StagingRecord
	for rows.Next() {
		rec, err := scanStaging(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staging record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetCountries lists the distinct origin countries of the latest partition.
func (r *StagingRepository) GetCountries(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT origin_country FROM stg_flights
		WHERE is_latest = 1 AND origin_country <> '' ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to query countries: %w", err)
	}
	defer rows.Close()

	var countries []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

// GetOverview computes the headline numbers of the latest partition.
func (r *StagingRepository) GetOverview(ctx context.Context) (*models.Overview, error) {
	query := `SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN on_ground = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN on_ground = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(CASE WHEN on_ground = 0 THEN velocity_kmh END), 0),
			COALESCE(MAX(time_position), 0)
		FROM stg_flights WHERE is_latest = 1`

	var o models.Overview
	err := r.db.QueryRowContext(ctx, query).Scan(&o.Active, &o.Airborne, &o.OnGround, &o.AvgAirborneKMH, &o.LastPosition)
	if err != nil {
		return nil, fmt.Errorf("failed to compute overview: %w", err)
	}
	return &o, nil
}

// IdentityViolations counts identities with other than exactly one latest row.
func (r *StagingRepository) IdentityViolations(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM (
			SELECT icao24, callsign, SUM(is_latest) AS latest
			FROM stg_flights GROUP BY icao24, callsign
			HAVING latest <> 1
		)`

	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to check identities: %w", err)
	}
	return n, nil
}

// Package transform applies curated snapshots to the analytical store.
//
// A snapshot is applied as one cycle inside a single transaction: staging
// versions, alerts, trajectory points and aggregates either all move forward
// together or not at all.
package transform

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/flights-backend-go/internal/alert"
	"github.com/jengzang/flights-backend-go/internal/apperr"
	"github.com/jengzang/flights-backend-go/internal/database"
	"github.com/jengzang/flights-backend-go/internal/ingest"
	"github.com/jengzang/flights-backend-go/internal/models"
	"github.com/jengzang/flights-backend-go/internal/repository"
)

// Engine is the single writer of the store.
type Engine struct {
	db     *sql.DB
	policy alert.Policy
	log    *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewEngine creates an engine writing to db and classifying with policy.
func NewEngine(db *sql.DB, policy alert.Policy, log *slog.Logger) *Engine {
	return &Engine{
		db:     db,
		policy: policy,
		log:    log,
		now:    time.Now,
	}
}

// ApplySnapshot runs one transform cycle. On error nothing is written.
func (e *Engine) ApplySnapshot(ctx context.Context, snap *models.Snapshot) (*models.TransformResult, error) {
	if err := validate(snap); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	started := e.now()
	result := &models.TransformResult{
		CycleID:     uuid.NewString(),
		Records:     len(snap.States),
		AlertLevels: make(map[string]int),
	}

	err := database.Transaction(ctx, e.db, func(tx *sql.Tx) error {
		return e.apply(ctx, tx, snap, result, started)
	})
	if err != nil {
		var te *apperr.TransformError
		if !errors.As(err, &te) {
			err = apperr.Transform("commit", err)
		}
		e.log.Error("transform cycle rolled back", "cycle_id", result.CycleID, "error", err)
		return nil, err
	}

	e.log.Info("transform cycle committed",
		"cycle_seq", result.CycleSeq,
		"cycle_id", result.CycleID,
		"records", result.Records,
		"inserted", result.Inserted,
		"duplicates", result.Duplicates,
		"promoted", result.Promoted,
		"track_points", result.TrackPoints,
		"latest", result.LatestPartition,
		"duration", time.Since(started),
	)
	return result, nil
}

func (e *Engine) apply(ctx context.Context, tx *sql.Tx, snap *models.Snapshot, result *models.TransformResult, started time.Time) error {
	cycles := repository.NewCycleRepository(tx)
	staging := repository.NewStagingRepository(tx)
	alerts := repository.NewAlertRepository(tx)
	tracks := repository.NewTrackRepository(tx)
	stats := repository.NewStatsRepository(tx)

	seq, err := cycles.Create(ctx, models.Cycle{
		ID:          result.CycleID,
		ExtractedAt: snapshotTime(snap).Unix(),
		AppliedAt:   started.Unix(),
		SourceFile:  snap.CuratedFile,
		Records:     len(snap.States),
	})
	if err != nil {
		return apperr.Transform("cycle", err)
	}
	result.CycleSeq = seq
	evaluatedAt := started.Unix()

	for _, st := range snap.States {
		id, inserted, err := staging.InsertRecord(ctx, seq, st)
		if err != nil {
			return apperr.Transform("staging", err)
		}
		if !inserted {
			// Same observation already stored by an earlier cycle or row
			result.Duplicates++
			continue
		}
		result.Inserted++

		if err := e.promote(ctx, staging, st, id, result); err != nil {
			return apperr.Transform("staging", err)
		}

		res := e.policy.Evaluate(alertInput(st.OnGround, st.BaroAltitude, st.Velocity))
		if err := alerts.Upsert(ctx, id, string(res.Level), res.Rule, evaluatedAt); err != nil {
			return apperr.Transform("alerts", err)
		}
		result.AlertsWritten++

		if st.Callsign == "" || st.TimePosition == nil {
			continue
		}
		appended, err := tracks.Append(ctx, seq, models.TrajectoryPoint{
			Callsign:      st.Callsign,
			TimePosition:  *st.TimePosition,
			Icao24:        st.Icao24,
			OriginCountry: st.OriginCountry,
			Latitude:      st.Latitude,
			Longitude:     st.Longitude,
			BaroAltitude:  st.BaroAltitude,
			Velocity:      st.Velocity,
			OnGround:      st.OnGround,
			RecordID:      id,
		})
		if err != nil {
			return apperr.Transform("trajectory", err)
		}
		if appended {
			result.TrackPoints++
		} else {
			result.TrackDuplicates++
		}
	}

	// Read the partition fully before writing to it again.
	latest, err := staging.GetLatest(ctx, models.FlightFilter{})
	if err != nil {
		return apperr.Transform("alerts", err)
	}
	for _, rec := range latest {
		res := e.policy.Evaluate(alertInput(rec.OnGround, rec.BaroAltitude, rec.Velocity))
		if err := alerts.Upsert(ctx, rec.ID, string(res.Level), res.Rule, evaluatedAt); err != nil {
			return apperr.Transform("alerts", err)
		}
		result.AlertsWritten++
		result.AlertLevels[string(res.Level)]++
	}
	result.LatestPartition = len(latest)

	countries, err := stats.Refresh(ctx, seq)
	if err != nil {
		return apperr.Transform("aggregates", err)
	}
	result.Countries = countries

	if err := cycles.UpdateCounters(ctx, seq, result.Inserted, result.Promoted, result.TrackPoints); err != nil {
		return apperr.Transform("cycle", err)
	}
	return nil
}

// promote makes the inserted record current when it beats the identity's
// current version.
func (e *Engine) promote(ctx context.Context, staging *repository.StagingRepository, st models.FlightState, id int64, result *models.TransformResult) error {
	cur, err := staging.CurrentVersion(ctx, st.Identity())
	if err != nil {
		return err
	}

	candidate := repository.Version{
		RecordID:     id,
		TimePosition: st.TimePosition,
		ExtractedAt:  st.ExtractedAt.Unix(),
	}
	if !candidate.Newer(cur) {
		result.Historical++
		return nil
	}

	if err := staging.SetCurrent(ctx, st.Identity(), id); err != nil {
		return err
	}
	result.Promoted++
	return nil
}

func alertInput(onGround bool, altitude, velocity *float64) alert.Input {
	return alert.Input{OnGround: onGround, Altitude: altitude, Velocity: velocity}
}

// snapshotTime falls back to the newest row time when the snapshot carries none.
func snapshotTime(snap *models.Snapshot) time.Time {
	at := snap.ExtractedAt
	for _, st := range snap.States {
		if st.ExtractedAt.After(at) {
			at = st.ExtractedAt
		}
	}
	return at
}

func validate(snap *models.Snapshot) error {
	if snap.Len() == 0 {
		return fmt.Errorf("nothing to apply: %w", apperr.ErrEmptySnapshot)
	}
	for i, st := range snap.States {
		if st.Icao24 == "" {
			return &apperr.SchemaError{Row: i, Field: "icao24", Err: errors.New("missing aircraft address")}
		}
		if st.ExtractedAt.IsZero() {
			return &apperr.SchemaError{Row: i, Field: "extracted_at", Err: errors.New("missing extraction time")}
		}
		if st.BaroAltitude != nil && ingest.ClampAltitude(*st.BaroAltitude) != *st.BaroAltitude {
			return &apperr.SchemaError{Row: i, Field: "baro_altitude", Err: fmt.Errorf("%v m outside clamp range", *st.BaroAltitude)}
		}
	}
	return nil
}

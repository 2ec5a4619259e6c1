package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/flights-backend-go/internal/models"
)

// CycleRepository handles the committed cycle log
type CycleRepository struct {
	db DBTX
}

// NewCycleRepository creates a new cycle repository
func NewCycleRepository(db DBTX) *CycleRepository {
	return &CycleRepository{db: db}
}

// Create opens a cycle row and returns its sequence number.
func (r *CycleRepository) Create(ctx context.Context, c models.Cycle) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO cycles (id, extracted_at, applied_at, source_file, records)
		VALUES (?, ?, ?, ?, ?)`, c.ID, c.ExtractedAt, c.AppliedAt, c.SourceFile, c.Records)
	if err != nil {
		return 0, fmt.Errorf("failed to create cycle: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read cycle sequence: %w", err)
	}
	return seq, nil
}

// UpdateCounters stores the final counters of a cycle.
func (r *CycleRepository) UpdateCounters(ctx context.Context, seq int64, inserted, promoted, trackPoints int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE cycles SET inserted = ?, promoted = ?, track_points = ? WHERE seq = ?`,
		inserted, promoted, trackPoints, seq)
	if err != nil {
		return fmt.Errorf("failed to update cycle %d: %w", seq, err)
	}
	return nil
}

const cycleColumns = "seq, id, extracted_at, applied_at, source_file, records, inserted, promoted, track_points"

// Latest returns the newest committed cycle, or nil when there is none.
func (r *CycleRepository) Latest(ctx context.Context) (*models.Cycle, error) {
	var c models.Cycle
	err := r.db.QueryRowContext(ctx, "SELECT "+cycleColumns+" FROM cycles ORDER BY seq DESC LIMIT 1").Scan(
		&c.Seq, &c.ID, &c.ExtractedAt, &c.AppliedAt, &c.SourceFile, &c.Records, &c.Inserted, &c.Promoted, &c.TrackPoints)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest cycle: %w", err)
	}
	return &c, nil
}

// List returns committed cycles, newest first.
func (r *CycleRepository) List(ctx context.Context, limit int) ([]models.Cycle, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, "SELECT "+cycleColumns+" FROM cycles ORDER BY seq DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles: %w", err)
	}
	defer rows.Close()

	var cycles []models.Cycle
	for rows.Next() {
		var c models.Cycle
		err := rows.Scan(&c.Seq, &c.ID, &c.ExtractedAt, &c.AppliedAt, &c.SourceFile, &c.Records, &c.Inserted, &c.Promoted, &c.TrackPoints)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

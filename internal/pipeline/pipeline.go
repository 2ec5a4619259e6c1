// Package pipeline runs one fetch + transform cycle.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jengzang/flights-backend-go/internal/ingest"
	"github.com/jengzang/flights-backend-go/internal/models"
)

// Stage is the orchestrator state.
type Stage string

const (
	Idle         Stage = "IDLE"
	Fetching     Stage = "FETCHING"
	Transforming Stage = "TRANSFORMING"
)

// StageError tells which stage of a cycle failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// SnapshotFetcher produces a curated snapshot.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// SnapshotApplier applies a snapshot to the store.
type SnapshotApplier interface {
	ApplySnapshot(ctx context.Context, snap *models.Snapshot) (*models.TransformResult, error)
}

// Report summarises one cycle.
type Report struct {
	RawFile     string                  `json:"raw_file,omitempty"`
	CuratedFile string                  `json:"curated_file"`
	States      int                     `json:"states"`
	Result      *models.TransformResult `json:"result"`
	StartedAt   time.Time               `json:"started_at"`
	Duration    time.Duration           `json:"duration"`
}

// Pipeline chains a fetcher and a transform engine.
type Pipeline struct {
	fetcher SnapshotFetcher
	applier SnapshotApplier
	log     *slog.Logger
}

// New creates a pipeline.
func New(fetcher SnapshotFetcher, applier SnapshotApplier, log *slog.Logger) *Pipeline {
	return &Pipeline{fetcher: fetcher, applier: applier, log: log}
}

// RunOnce fetches one snapshot and transforms it.
func (p *Pipeline) RunOnce(ctx context.Context) (*Report, error) {
	return p.Run(ctx, nil)
}

// Run is RunOnce with a hook called on every stage change.
func (p *Pipeline) Run(ctx context.Context, onStage func(Stage)) (*Report, error) {
	if onStage == nil {
		onStage = func(Stage) {}
	}
	defer onStage(Idle)

	started := time.Now()

	onStage(Fetching)
	snap, err := p.fetcher.FetchSnapshot(ctx)
	if err != nil {
		return nil, &StageError{Stage: Fetching, Err: err}
	}

	onStage(Transforming)
	return p.transform(ctx, snap, started)
}

// Replay applies a curated file written by an earlier fetch.
func (p *Pipeline) Replay(ctx context.Context, path string) (*Report, error) {
	started := time.Now()

	snap, err := ingest.ReadCurated(path)
	if err != nil {
		return nil, &StageError{Stage: Fetching, Err: err}
	}
	p.log.Info("replaying curated snapshot", "file", path, "states", snap.Len())

	return p.transform(ctx, snap, started)
}

func (p *Pipeline) transform(ctx context.Context, snap *models.Snapshot, started time.Time) (*Report, error) {
	result, err := p.applier.ApplySnapshot(ctx, snap)
	if err != nil {
		return nil, &StageError{Stage: Transforming, Err: err}
	}

	return &Report{
		RawFile:     snap.RawFile,
		CuratedFile: snap.CuratedFile,
		States:      snap.Len(),
		Result:      result,
		StartedAt:   started,
		Duration:    time.Since(started),
	}, nil
}

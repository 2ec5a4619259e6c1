package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jengzang/flights-backend-go/internal/apperr"
	"github.com/jengzang/flights-backend-go/internal/models"
)

// StatesSource is the upstream API.
type StatesSource interface {
	FetchStates(ctx context.Context) (*models.StatesResponse, error)
}

// Fetcher produces one curated snapshot per call.
type Fetcher struct {
	source  StatesSource
	archive *Archive
	log     *slog.Logger
	now     func() time.Time
}

// NewFetcher creates a fetcher writing into archive.
func NewFetcher(source StatesSource, archive *Archive, log *slog.Logger) *Fetcher {
	return &Fetcher{
		source:  source,
		archive: archive,
		log:     log,
		now:     time.Now,
	}
}

// FetchSnapshot fetches, archives and cleans one snapshot. It never retries.
func (f *Fetcher) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	startedAt := f.now()

	resp, err := f.source.FetchStates(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.States) == 0 {
		return nil, fmt.Errorf("upstream returned no states: %w", apperr.ErrEmptySnapshot)
	}

	rawPath, err := f.archive.WriteRaw(resp, startedAt)
	if err != nil {
		return nil, err
	}
	f.log.Debug("raw snapshot archived", "file", rawPath, "states", len(resp.States))

	extractedAt := time.Unix(resp.Time, 0).UTC()
	states := Clean(resp.States, extractedAt)
	if len(states) == 0 {
		return nil, fmt.Errorf("no state with a position among %d: %w", len(resp.States), apperr.ErrEmptySnapshot)
	}

	curatedPath, err := f.archive.WriteCurated(states, startedAt)
	if err != nil {
		return nil, err
	}

	f.log.Info("snapshot curated",
		"file", curatedPath,
		"states", len(resp.States),
		"kept", len(states),
		"dropped", len(resp.States)-len(states),
	)

	return &models.Snapshot{
		ExtractedAt: extractedAt,
		RawFile:     rawPath,
		CuratedFile: curatedPath,
		States:      states,
	}, nil
}

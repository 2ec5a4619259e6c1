package live

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jengzang/flights-backend-go/internal/apperr"
	"github.com/jengzang/flights-backend-go/internal/models"
)

// Source is the read side the watcher polls.
type Source interface {
	LatestCycle(ctx context.Context) (*models.Cycle, error)
	GetOverview(ctx context.Context) (*models.Overview, error)
}

// Publisher receives a message for every new cycle.
type Publisher interface {
	Broadcast(msg Message)
}

// CycleWatcher polls the newest committed cycle and publishes the overview
// when it changes. It never writes to the store.
type CycleWatcher struct {
	source   Source
	pub      Publisher
	interval time.Duration
	log      *slog.Logger
	lastSeq  int64
}

// NewCycleWatcher creates a watcher polling every interval.
func NewCycleWatcher(source Source, pub Publisher, interval time.Duration, log *slog.Logger) *CycleWatcher {
	return &CycleWatcher{source: source, pub: pub, interval: interval, log: log}
}

// Run polls until ctx is done.
func (w *CycleWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.Poll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll checks once and reports whether a message was published.
func (w *CycleWatcher) Poll(ctx context.Context) bool {
	cycle, err := w.source.LatestCycle(ctx)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotReady) {
			w.log.Warn("failed to poll cycles", "error", err)
		}
		return false
	}
	if cycle.Seq == w.lastSeq {
		return false
	}

	overview, err := w.source.GetOverview(ctx)
	if err != nil {
		w.log.Warn("failed to load overview", "cycle_seq", cycle.Seq, "error", err)
		return false
	}

	// The overview may already reflect a newer cycle than the one polled
	if overview.LastCycleSeq == w.lastSeq {
		return false
	}

	w.lastSeq = overview.LastCycleSeq
	w.pub.Broadcast(Message{Type: "cycle", Data: overview})
	w.log.Debug("cycle published", "cycle_seq", overview.LastCycleSeq)
	return true
}

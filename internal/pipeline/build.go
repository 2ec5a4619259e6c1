package pipeline

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jengzang/flights-backend-go/internal/alert"
	"github.com/jengzang/flights-backend-go/internal/config"
	"github.com/jengzang/flights-backend-go/internal/ingest"
	"github.com/jengzang/flights-backend-go/internal/opensky"
	"github.com/jengzang/flights-backend-go/internal/transform"
)

// FromConfig wires the OpenSky client, the snapshot archive and the
// transform engine writing to db. Data directories are created first.
func FromConfig(cfg *config.Config, db *sql.DB, log *slog.Logger) (*Pipeline, error) {
	archive := &ingest.Archive{RawDir: cfg.RawDir, CuratedDir: cfg.CuratedDir}
	if err := archive.EnsureDirs(); err != nil {
		return nil, err
	}

	policy, err := alert.Load(cfg.AlertPolicyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert policy: %w", err)
	}
	if cfg.AlertPolicyPath != "" {
		log.Info("alert policy loaded", "path", cfg.AlertPolicyPath)
	}

	client := opensky.NewClient(opensky.Config{
		URL:                cfg.StatesURL,
		Username:           cfg.OpenSkyUsername,
		Password:           cfg.OpenSkyPassword,
		Timeout:            cfg.FetchTimeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})

	fetcher := ingest.NewFetcher(client, archive, log.With("component", "fetcher"))
	engine := transform.NewEngine(db, policy, log.With("component", "transform"))

	return New(fetcher, engine, log), nil
}

package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/jengzang/flights-backend-go/internal/models"
)

// FileTimeLayout names snapshot files by cycle wall clock.
const FileTimeLayout = "20060102_150405"

const maxNameAttempts = 100

// rawRow is the raw archive layout: every upstream column, nothing cleaned.
type rawRow struct {
	Icao24         string   `parquet:"icao24"`
	Callsign       *string  `parquet:"callsign"`
	OriginCountry  string   `parquet:"origin_country"`
	TimePosition   *int64   `parquet:"time_position"`
	LastContact    int64    `parquet:"last_contact"`
	Longitude      *float64 `parquet:"longitude"`
	Latitude       *float64 `parquet:"latitude"`
	BaroAltitude   *float64 `parquet:"baro_altitude"`
	OnGround       bool     `parquet:"on_ground"`
	Velocity       *float64 `parquet:"velocity"`
	TrueTrack      *float64 `parquet:"true_track"`
	VerticalRate   *float64 `parquet:"vertical_rate"`
	Sensors        []int32  `parquet:"sensors"`
	GeoAltitude    *float64 `parquet:"geo_altitude"`
	Squawk         *string  `parquet:"squawk"`
	SPI            bool     `parquet:"spi"`
	PositionSource *int32   `parquet:"position_source"`
	SnapshotTime   int64    `parquet:"snapshot_time"`
}

// curatedRow is the curated layout consumed by the transform.
type curatedRow struct {
	Icao24         string    `parquet:"icao24"`
	Callsign       string    `parquet:"callsign"`
	OriginCountry  string    `parquet:"origin_country"`
	TimePosition   *int64    `parquet:"time_position"`
	LastContact    int64     `parquet:"last_contact"`
	Longitude      float64   `parquet:"longitude"`
	Latitude       float64   `parquet:"latitude"`
	BaroAltitude   *float64  `parquet:"baro_altitude"`
	OnGround       bool      `parquet:"on_ground"`
	Velocity       *float64  `parquet:"velocity"`
	TrueTrack      *float64  `parquet:"true_track"`
	SPI            bool      `parquet:"spi"`
	PositionSource *int32    `parquet:"position_source"`
	ExtractedAt    time.Time `parquet:"extracted_at,timestamp(millisecond)"`
}

// Archive writes snapshot files into append-only directories.
type Archive struct {
	RawDir     string
	CuratedDir string
}

// EnsureDirs creates the raw and curated directories.
func (a *Archive) EnsureDirs() error {
	for _, dir := range []string{a.RawDir, a.CuratedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// WriteRaw archives the undecorated response as raw_flights_<ts>.parquet.
func (a *Archive) WriteRaw(resp *models.StatesResponse, at time.Time) (string, error) {
	rows := make([]rawRow, len(resp.States))
	for i, sv := range resp.States {
		rows[i] = rawRow{
			Icao24:         sv.Icao24,
			Callsign:       sv.Callsign,
			OriginCountry:  sv.OriginCountry,
			TimePosition:   sv.TimePosition,
			LastContact:    sv.LastContact,
			Longitude:      sv.Longitude,
			Latitude:       sv.Latitude,
			BaroAltitude:   sv.BaroAltitude,
			OnGround:       sv.OnGround,
			Velocity:       sv.Velocity,
			TrueTrack:      sv.TrueTrack,
			VerticalRate:   sv.VerticalRate,
			Sensors:        sv.Sensors,
			GeoAltitude:    sv.GeoAltitude,
			Squawk:         sv.Squawk,
			SPI:            sv.SPI,
			PositionSource: sv.PositionSource,
			SnapshotTime:   resp.Time,
		}
	}
	return writeExclusive(a.RawDir, "raw_flights", at, rows)
}

// WriteCurated writes the cleaned states as flights_<ts>.parquet.
func (a *Archive) WriteCurated(states []models.FlightState, at time.Time) (string, error) {
	rows := make([]curatedRow, len(states))
	for i, st := range states {
		rows[i] = curatedRow{
			Icao24:         st.Icao24,
			Callsign:       st.Callsign,
			OriginCountry:  st.OriginCountry,
			TimePosition:   st.TimePosition,
			LastContact:    st.LastContact,
			Longitude:      st.Longitude,
			Latitude:       st.Latitude,
			BaroAltitude:   st.BaroAltitude,
			OnGround:       st.OnGround,
			Velocity:       st.Velocity,
			TrueTrack:      st.TrueTrack,
			SPI:            st.SPI,
			PositionSource: st.PositionSource,
			ExtractedAt:    st.ExtractedAt,
		}
	}
	return writeExclusive(a.CuratedDir, "flights", at, rows)
}

// ReadCurated loads a curated file back into a snapshot.
func ReadCurated(path string) (*models.Snapshot, error) {
	rows, err := parquet.ReadFile[curatedRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curated file %s: %w", path, err)
	}

	snap := &models.Snapshot{
		CuratedFile: path,
		States:      make([]models.FlightState, len(rows)),
	}
	for i, r := range rows {
		snap.States[i] = models.FlightState{
			Icao24:         r.Icao24,
			Callsign:       r.Callsign,
			OriginCountry:  r.OriginCountry,
			TimePosition:   r.TimePosition,
			LastContact:    r.LastContact,
			Longitude:      r.Longitude,
			Latitude:       r.Latitude,
			BaroAltitude:   r.BaroAltitude,
			OnGround:       r.OnGround,
			Velocity:       r.Velocity,
			TrueTrack:      r.TrueTrack,
			SPI:            r.SPI,
			PositionSource: r.PositionSource,
			ExtractedAt:    r.ExtractedAt.UTC(),
		}
		if snap.ExtractedAt.Before(snap.States[i].ExtractedAt) {
			snap.ExtractedAt = snap.States[i].ExtractedAt
		}
	}
	return snap, nil
}

// SnapshotFileName is the name of a snapshot file for prefix at time at.
func SnapshotFileName(prefix string, at time.Time) string {
	return fmt.Sprintf("%s_%s.parquet", prefix, at.Format(FileTimeLayout))
}

// writeExclusive writes rows to a new file. An existing file is never
// replaced; a numeric suffix is added instead.
func writeExclusive[T any](dir, prefix string, at time.Time, rows []T) (string, error) {
	f, path, err := createExclusive(dir, prefix, at)
	if err != nil {
		return "", err
	}

	w := parquet.NewGenericWriter[T](f)
	if _, err := w.Write(rows); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

func createExclusive(dir, prefix string, at time.Time) (*os.File, string, error) {
	base := SnapshotFileName(prefix, at)
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		name := base
		if attempt > 1 {
			name = fmt.Sprintf("%s_%s_%d.parquet", prefix, at.Format(FileTimeLayout), attempt)
		}
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("failed to create %s: %w", path, err)
		}
	}
	return nil, "", fmt.Errorf("no free file name for %s in %s", base, dir)
}

package ingest

import (
	"strings"
	"time"

	"github.com/jengzang/flights-backend-go/internal/models"
)

const (
	MinAltitude = 0.0
	MaxAltitude = 22000.0 // meters
)

// Clean turns raw state vectors into curated flight states.
//
// Order is fixed: trim callsign, zero-fill ground aircraft, clamp altitude,
// then drop rows without a position. squawk, sensors, vertical_rate and
// geo_altitude are not carried over.
func Clean(states []models.StateVector, extractedAt time.Time) []models.FlightState {
	out := make([]models.FlightState, 0, len(states))
	for _, sv := range states {
		if sv.Latitude == nil || sv.Longitude == nil {
			continue
		}

		fs := models.FlightState{
			Icao24:         sv.Icao24,
			OriginCountry:  sv.OriginCountry,
			TimePosition:   copyPtr(sv.TimePosition),
			LastContact:    sv.LastContact,
			Longitude:      *sv.Longitude,
			Latitude:       *sv.Latitude,
			BaroAltitude:   copyPtr(sv.BaroAltitude),
			OnGround:       sv.OnGround,
			Velocity:       copyPtr(sv.Velocity),
			TrueTrack:      copyPtr(sv.TrueTrack),
			SPI:            sv.SPI,
			PositionSource: copyPtr(sv.PositionSource),
			ExtractedAt:    extractedAt.UTC(),
		}
		if sv.Callsign != nil {
			fs.Callsign = strings.TrimSpace(*sv.Callsign)
		}

		if fs.OnGround {
			if fs.BaroAltitude == nil {
				fs.BaroAltitude = zero()
			}
			if fs.Velocity == nil {
				fs.Velocity = zero()
			}
		}

		if fs.BaroAltitude != nil {
			clamped := ClampAltitude(*fs.BaroAltitude)
			fs.BaroAltitude = &clamped
		}

		out = append(out, fs)
	}
	return out
}

// ClampAltitude truncates an altitude to [0, 22000] meters.
func ClampAltitude(alt float64) float64 {
	if alt < MinAltitude {
		return MinAltitude
	}
	if alt > MaxAltitude {
		return MaxAltitude
	}
	return alt
}

func zero() *float64 {
	v := 0.0
	return &v
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

package models

import "time"

// StateVector is one row of the OpenSky states array, all 17 columns, as received.
type StateVector struct {
	Icao24         string   `json:"icao24"`
	Callsign       *string  `json:"callsign"`
	OriginCountry  string   `json:"origin_country"`
	TimePosition   *int64   `json:"time_position"`
	LastContact    int64    `json:"last_contact"`
	Longitude      *float64 `json:"longitude"`
	Latitude       *float64 `json:"latitude"`
	BaroAltitude   *float64 `json:"baro_altitude"`
	OnGround       bool     `json:"on_ground"`
	Velocity       *float64 `json:"velocity"`      // m/s over ground
	TrueTrack      *float64 `json:"true_track"`    // degrees clockwise from north
	VerticalRate   *float64 `json:"vertical_rate"` // m/s
	Sensors        []int32  `json:"sensors"`
	GeoAltitude    *float64 `json:"geo_altitude"`
	Squawk         *string  `json:"squawk"`
	SPI            bool     `json:"spi"`
	PositionSource *int32   `json:"position_source"` // 0 ADS-B, 1 ASTERIX, 2 MLAT, 3 FLARM
}

// StatesResponse is a decoded /api/states/all body.
type StatesResponse struct {
	Time   int64         `json:"time"` // epoch seconds
	States []StateVector `json:"states"`
}

// FlightState is a curated state row. Position is always present.
type FlightState struct {
	Icao24         string    `json:"icao24"`
	Callsign       string    `json:"callsign"`
	OriginCountry  string    `json:"origin_country"`
	TimePosition   *int64    `json:"time_position,omitempty"`
	LastContact    int64     `json:"last_contact"`
	Longitude      float64   `json:"longitude"`
	Latitude       float64   `json:"latitude"`
	BaroAltitude   *float64  `json:"baro_altitude,omitempty"` // meters, within [0, 22000]
	OnGround       bool      `json:"on_ground"`
	Velocity       *float64  `json:"velocity,omitempty"`
	TrueTrack      *float64  `json:"true_track,omitempty"`
	SPI            bool      `json:"spi"`
	PositionSource *int32    `json:"position_source,omitempty"`
	ExtractedAt    time.Time `json:"extracted_at"`
}

// Identity is the staging key of an aircraft.
type Identity struct {
	Icao24   string `json:"icao24"`
	Callsign string `json:"callsign"`
}

// Identity returns the (icao24, callsign) pair of the state.
func (s FlightState) Identity() Identity {
	return Identity{Icao24: s.Icao24, Callsign: s.Callsign}
}

// Snapshot is one fetch cycle's worth of curated states.
type Snapshot struct {
	ExtractedAt time.Time     `json:"extracted_at"`
	RawFile     string        `json:"raw_file,omitempty"`
	CuratedFile string        `json:"curated_file,omitempty"`
	States      []FlightState `json:"states"`
}

// Len reports the number of states; a nil snapshot is empty.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.States)
}

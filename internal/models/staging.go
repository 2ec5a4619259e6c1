package models

// StagingRecord is one observed state in the staging arena.
// IsLatest is derived from the current-version index, never stored on the row.
type StagingRecord struct {
	ID             int64    `json:"id" db:"id"`
	CycleSeq       int64    `json:"cycle_seq" db:"cycle_seq"`
	Icao24         string   `json:"icao24" db:"icao24"`
	Callsign       string   `json:"callsign" db:"callsign"`
	OriginCountry  string   `json:"origin_country" db:"origin_country"`
	TimePosition   *int64   `json:"time_position,omitempty" db:"time_position"`
	LastContact    int64    `json:"last_contact" db:"last_contact"`
	Longitude      float64  `json:"longitude" db:"longitude"`
	Latitude       float64  `json:"latitude" db:"latitude"`
	BaroAltitude   *float64 `json:"baro_altitude,omitempty" db:"baro_altitude"`
	OnGround       bool     `json:"on_ground" db:"on_ground"`
	Velocity       *float64 `json:"velocity,omitempty" db:"velocity"`
	VelocityKMH    *float64 `json:"velocity_kmh,omitempty" db:"velocity_kmh"`
	TrueTrack      *float64 `json:"true_track,omitempty" db:"true_track"`
	SPI            bool     `json:"spi" db:"spi"`
	PositionSource *int32   `json:"position_source,omitempty" db:"position_source"`
	ExtractedAt    int64    `json:"extracted_at" db:"extracted_at"` // Unix timestamp
	IsLatest       bool     `json:"is_latest" db:"is_latest"`
}

// FlightFilter represents filter parameters for the latest partition
type FlightFilter struct {
	Countries []string `form:"country"`
	OnGround  *bool    `form:"onGround"`
	Limit     int      `form:"limit"`
}

package models

// TrajectoryPoint is one immutable observation in a flight's track.
type TrajectoryPoint struct {
	Callsign      string   `json:"callsign" db:"callsign"`
	TimePosition  int64    `json:"time_position" db:"time_position"` // Unix timestamp
	Icao24        string   `json:"icao24" db:"icao24"`
	OriginCountry string   `json:"origin_country" db:"origin_country"`
	Latitude      float64  `json:"latitude" db:"latitude"`
	Longitude     float64  `json:"longitude" db:"longitude"`
	BaroAltitude  *float64 `json:"baro_altitude,omitempty" db:"baro_altitude"`
	Velocity      *float64 `json:"velocity,omitempty" db:"velocity"`
	VelocityKMH   *float64 `json:"velocity_kmh,omitempty" db:"velocity_kmh"`
	OnGround      bool     `json:"on_ground" db:"on_ground"`
	RecordID      int64    `json:"record_id" db:"record_id"`
}

// TrajectorySummary describes a track as the dashboard shows it.
type TrajectorySummary struct {
	Points          int      `json:"points"`
	FirstSeen       int64    `json:"first_seen"`
	LastSeen        int64    `json:"last_seen"`
	CurrentAltitude *float64 `json:"current_altitude,omitempty"`
	CurrentKMH      *float64 `json:"current_kmh,omitempty"`
	MaxAltitude     float64  `json:"max_altitude"`
	AvgKMH          float64  `json:"avg_kmh"`
	DistanceMeters  float64  `json:"distance_meters"`
	Bearing         float64  `json:"bearing"` // last leg, degrees
	MinLat          float64  `json:"min_lat"`
	MinLon          float64  `json:"min_lon"`
	MaxLat          float64  `json:"max_lat"`
	MaxLon          float64  `json:"max_lon"`
}

// TrajectoryResponse is a track plus its summary.
type TrajectoryResponse struct {
	Callsign string            `json:"callsign"`
	Summary  TrajectorySummary `json:"summary"`
	Points   []TrajectoryPoint `json:"points"`
}

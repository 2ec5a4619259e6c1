package models

// FlightAlert is the alert evaluation of one staging record.
type FlightAlert struct {
	RecordID      int64    `json:"record_id" db:"record_id"`
	Icao24        string   `json:"icao24" db:"icao24"`
	Callsign      string   `json:"callsign" db:"callsign"`
	OriginCountry string   `json:"origin_country" db:"origin_country"`
	AlertLevel    string   `json:"alert_level" db:"alert_level"`
	Rule          string   `json:"rule,omitempty" db:"rule"`
	BaroAltitude  *float64 `json:"baro_altitude,omitempty" db:"baro_altitude"`
	VelocityKMH   *float64 `json:"velocity_kmh,omitempty" db:"velocity_kmh"`
	OnGround      bool     `json:"on_ground" db:"on_ground"`
	Latitude      float64  `json:"latitude" db:"latitude"`
	Longitude     float64  `json:"longitude" db:"longitude"`
	EvaluatedAt   int64    `json:"evaluated_at" db:"evaluated_at"`
	IsLatest      bool     `json:"is_latest" db:"is_latest"`
}

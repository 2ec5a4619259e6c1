package models

// CountryTraffic is the number of latest flights per origin country.
type CountryTraffic struct {
	OriginCountry string `json:"origin_country" db:"origin_country"`
	Flights       int    `json:"flights" db:"flights"`
	Airborne      int    `json:"airborne" db:"airborne"`
	OnGround      int    `json:"on_ground" db:"on_ground"`
}

// AltitudeBand counts latest flights whose altitude falls in [Floor, Floor+Width).
type AltitudeBand struct {
	Floor   int    `json:"floor" db:"band_floor"`
	Width   int    `json:"width"`
	Label   string `json:"label"`
	Flights int    `json:"flights" db:"flights"`
}

// TrafficHistoryEntry is one cycle's count for one country.
type TrafficHistoryEntry struct {
	CycleSeq      int64  `json:"cycle_seq" db:"cycle_seq"`
	ExtractedAt   int64  `json:"extracted_at" db:"extracted_at"`
	OriginCountry string `json:"origin_country" db:"origin_country"`
	Flights       int    `json:"flights" db:"flights"`
}

// Overview holds the headline numbers of the latest partition.
type Overview struct {
	Active          int     `json:"active"`
	Airborne        int     `json:"airborne"`
	OnGround        int     `json:"on_ground"`
	AvgAirborneKMH  float64 `json:"avg_airborne_kmh"`
	Alerts          int     `json:"alerts"`
	LastPosition    int64   `json:"last_position"` // max time_position, Unix seconds
	LastCycleSeq    int64   `json:"last_cycle_seq"`
	LastExtractedAt int64   `json:"last_extracted_at"`
}

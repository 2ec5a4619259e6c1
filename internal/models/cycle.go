package models

// Cycle is one committed transform run.
type Cycle struct {
	Seq         int64  `json:"seq" db:"seq"`
	ID          string `json:"id" db:"id"`
	ExtractedAt int64  `json:"extracted_at" db:"extracted_at"`
	AppliedAt   int64  `json:"applied_at" db:"applied_at"`
	SourceFile  string `json:"source_file,omitempty" db:"source_file"`
	Records     int    `json:"records" db:"records"`
	Inserted    int    `json:"inserted" db:"inserted"`
	Promoted    int    `json:"promoted" db:"promoted"`
	TrackPoints int    `json:"track_points" db:"track_points"`
}

// TransformResult reports what one ApplySnapshot call changed.
type TransformResult struct {
	CycleSeq        int64          `json:"cycle_seq"`
	CycleID         string         `json:"cycle_id"`
	Records         int            `json:"records"`
	Inserted        int            `json:"inserted"`
	Duplicates      int            `json:"duplicates"`
	Promoted        int            `json:"promoted"`
	Historical      int            `json:"historical"`
	AlertsWritten   int            `json:"alerts_written"`
	AlertLevels     map[string]int `json:"alert_levels"`
	TrackPoints     int            `json:"track_points"`
	TrackDuplicates int            `json:"track_duplicates"`
	Countries       int            `json:"countries"`
	LatestPartition int            `json:"latest_partition"`
}

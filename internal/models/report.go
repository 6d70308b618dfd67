package models

// HourCount is one histogram bucket: a UTC hour of day and its message count.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// HourRange is a contiguous run of active UTC hours, inclusive on both ends.
// Ranges never merge across the 23->0 boundary.
type HourRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// OffsetCandidate is a UTC offset hypothesis that places the peak hour inside
// a plausible local evening window, scored by circular distance from 20:00
// local (lower is better).
type OffsetCandidate struct {
	Offset    int `json:"offset"`
	LocalHour int `json:"local_hour"`
	Distance  int `json:"distance"`
}

// TimezoneReport is the result of one inference run over a user's activity
// snapshot. It is ephemeral and never persisted. Confidence is an explicit
// heuristic (0-100), not a calibrated probability.
type TimezoneReport struct {
	UserID         int64             `json:"user_id"`
	Histogram      [24]int           `json:"hour_histogram"`
	TopHours       []HourCount       `json:"top_hours"`
	ActiveWindow   []HourRange       `json:"active_window"`
	Candidates     []OffsetCandidate `json:"candidate_offsets"`
	PrimaryDevice  string            `json:"primary_device"`
	DeviceCounts   map[string]int64  `json:"device_counts"`
	Confidence     int               `json:"confidence_score"`
	TotalSamples   int               `json:"total_samples"`
	SkippedSamples int               `json:"skipped_samples"`
}

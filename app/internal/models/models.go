package models

import "time"

// Observation states as they appear in the status poll data.
const (
	StateActive   = "active"
	StateInactive = "inactive"
)

// Observation is a single point-in-time status poll for a store.
type Observation struct {
	StoreID      string    `json:"store_id"`
	TimestampUTC time.Time `json:"timestamp_utc"`
	Status       string    `json:"status"`
}

// ScheduleRule declares local business hours for one weekday.
// Day uses Monday=0 .. Sunday=6; Day=7 is a catch-all that applies to any
// weekday without a specific rule.
type ScheduleRule struct {
	StoreID        string `json:"store_id"`
	Day            int    `json:"day_of_week"`
	StartTimeLocal string `json:"start_time_local"` // HH:MM:SS
	EndTimeLocal   string `json:"end_time_local"`   // HH:MM:SS
}

// CatchAllDay is the ScheduleRule.Day value that matches every weekday.
const CatchAllDay = 7

// TimezoneRecord maps a store to its IANA timezone.
type TimezoneRecord struct {
	StoreID     string `json:"store_id"`
	TimezoneStr string `json:"timezone_str"`
}

// Report holds the computed uptime/downtime figures for one store.
// Hour figures are in minutes, day and week figures in hours, all rounded
// to two decimals.
type Report struct {
	StoreID          string  `json:"store_id"`
	UptimeLastHour   float64 `json:"uptime_last_hour"`
	UptimeLastDay    float64 `json:"uptime_last_day"`
	UptimeLastWeek   float64 `json:"uptime_last_week"`
	DowntimeLastHour float64 `json:"downtime_last_hour"`
	DowntimeLastDay  float64 `json:"downtime_last_day"`
	DowntimeLastWeek float64 `json:"downtime_last_week"`

	// Error is set when this store's computation failed (for example an
	// unknown timezone). Other stores in the same report are unaffected.
	Error string `json:"error,omitempty"`
}

// ReportJob tracks the lifecycle of one requested report.
type ReportJob struct {
	ID          string `json:"report_id"`
	Status      string `json:"status"`
	FilePath    string `json:"-"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// Report job statuses.
const (
	JobRunning  = "Running"
	JobComplete = "Complete"
	JobFailed   = "Failed"
)

// Package uptime estimates how much of a store's declared business hours
// it was reachable, based on sparse status polls over the trailing week.
package uptime

import (
	"fmt"
	"time"

	"storemon/app/internal/models"
)

// FallbackTimezone is used when a store has no timezone record and no
// default is configured.
const FallbackTimezone = "America/Chicago"

// Interval is an absolute-time span. All interval math happens in UTC;
// local time is only used to construct boundaries.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns the interval length, or zero for degenerate intervals.
func (iv Interval) Duration() time.Duration {
	if !iv.Start.Before(iv.End) {
		return 0
	}
	return iv.End.Sub(iv.Start)
}

// ObservedInterval is a span during which a store is assumed to remain in
// the state reported by its most recent poll.
type ObservedInterval struct {
	Interval
	Status string
}

// StoreInputs carries everything needed to compute one store's report.
type StoreInputs struct {
	StoreID string

	// Now is the evaluation instant, typically the latest observation
	// timestamp across all stores rather than wall clock.
	Now time.Time

	// Observations within [Now - 7 days, Now], ascending by timestamp.
	Observations []models.Observation

	Rules []models.ScheduleRule

	// TimezoneStr is the store's IANA zone; empty falls back to
	// DefaultTimezone, then to FallbackTimezone.
	TimezoneStr     string
	DefaultTimezone string
}

// Compute produces the uptime/downtime report for a single store. It is
// pure: no I/O, no shared state, safe to run concurrently across stores.
func Compute(in StoreInputs) (models.Report, error) {
	name := in.TimezoneStr
	if name == "" {
		name = in.DefaultTimezone
	}
	if name == "" {
		name = FallbackTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return models.Report{}, fmt.Errorf("store %s: unknown timezone %q: %w", in.StoreID, name, err)
	}

	open, err := BusinessHours(in.Rules, loc, in.Now)
	if err != nil {
		return models.Report{}, fmt.Errorf("store %s: %w", in.StoreID, err)
	}

	observed := ObservedIntervals(in.Observations, in.Now)
	activeWeek, inactiveWeek := Integrate(open, observed)

	return assemble(in.StoreID, activeWeek, inactiveWeek), nil
}

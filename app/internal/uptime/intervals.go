package uptime

import (
	"time"

	"storemon/app/internal/models"
)

// ObservedIntervals turns ascending status polls into contiguous state
// intervals: each poll's state persists until the next poll, the last one
// until now. No interpolation is applied regardless of gap length.
func ObservedIntervals(obs []models.Observation, now time.Time) []ObservedInterval {
	out := make([]ObservedInterval, 0, len(obs))
	for i := range obs {
		end := now
		if i+1 < len(obs) {
			end = obs[i+1].TimestampUTC
		}
		out = append(out, ObservedInterval{
			Interval: Interval{Start: obs[i].TimestampUTC, End: end},
			Status:   obs[i].Status,
		})
	}
	return out
}

// Integrate intersects business-open intervals with observed-state
// intervals and accumulates total active and inactive time over the
// trailing week. Time outside business hours contributes to neither.
func Integrate(open []Interval, observed []ObservedInterval) (active, inactive time.Duration) {
	// Both sets are small (7 open intervals, sparse polls), so the full
	// cross product is fine.
	for _, ob := range observed {
		for _, op := range open {
			overlap := Interval{Start: maxTime(ob.Start, op.Start), End: minTime(ob.End, op.End)}
			d := overlap.Duration()
			if d <= 0 {
				continue
			}
			if ob.Status == models.StateActive {
				active += d
			} else {
				inactive += d
			}
		}
	}
	return active, inactive
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

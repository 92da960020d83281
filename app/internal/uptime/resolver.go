package uptime

import (
	"fmt"
	"time"

	"storemon/app/internal/models"
)

// Full-day span used when a store has no schedule rule for a weekday.
// The end mirrors the maximum clock time 23:59:59.999999.
const (
	fullDayStart = time.Duration(0)
	fullDayEnd   = 24*time.Hour - time.Microsecond
)

// BusinessHours resolves a store's schedule into seven absolute open
// intervals, one per trailing local calendar day ending at now.
func BusinessHours(rules []models.ScheduleRule, loc *time.Location, now time.Time) ([]Interval, error) {
	// The weekday domain is closed (Monday=0..Sunday=6 plus the catch-all
	// slot 7), so a fixed-size array replaces a keyed map.
	var byDay [8]*models.ScheduleRule
	for i := range rules {
		r := &rules[i]
		if r.Day >= 0 && r.Day < len(byDay) {
			byDay[r.Day] = r
		}
	}

	out := make([]Interval, 0, 7)
	local := now.In(loc)
	for i := 0; i < 7; i++ {
		day := local.AddDate(0, 0, -i)
		weekday := mondayIndexed(day.Weekday())

		rule := byDay[weekday]
		if rule == nil {
			rule = byDay[models.CatchAllDay]
		}

		start, end := fullDayStart, fullDayEnd
		if rule != nil {
			var err error
			start, err = ParseClock(rule.StartTimeLocal)
			if err != nil {
				return nil, fmt.Errorf("schedule rule for day %d: %w", rule.Day, err)
			}
			end, err = ParseClock(rule.EndTimeLocal)
			if err != nil {
				return nil, fmt.Errorf("schedule rule for day %d: %w", rule.Day, err)
			}
		}

		y, m, d := day.Date()
		out = append(out, Interval{
			Start: atClock(y, m, d, start, loc).UTC(),
			End:   atClock(y, m, d, end, loc).UTC(),
		})
	}
	return out, nil
}

// ParseClock parses a local HH:MM:SS clock time (optionally with a
// fractional seconds part) into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04:05.999999", s)
		if err != nil {
			return 0, fmt.Errorf("invalid clock time %q", s)
		}
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond()), nil
}

// atClock combines a local calendar date with a clock offset. Building the
// wall-clock components through time.Date keeps DST transitions correct.
func atClock(year int, month time.Month, day int, clock time.Duration, loc *time.Location) time.Time {
	h := int(clock / time.Hour)
	m := int(clock % time.Hour / time.Minute)
	s := int(clock % time.Minute / time.Second)
	ns := int(clock % time.Second)
	return time.Date(year, month, day, h, m, s, ns, loc)
}

// mondayIndexed converts Go's Sunday=0 weekday to the schedule's Monday=0.
func mondayIndexed(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

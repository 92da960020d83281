package uptime

import (
	"math"
	"time"

	"storemon/app/internal/models"
)

const weekSeconds = 7 * 24 * 3600

// Window fractions used to project weekly totals onto the trailing day and
// hour. The narrower windows end exactly at the evaluation instant, so the
// elapsed share of the week is a fixed constant.
const (
	dayFraction  = float64(24*3600) / weekSeconds
	hourFraction = float64(3600) / weekSeconds
)

// assemble projects the weekly totals onto the day and hour windows and
// formats the figures into the report units: minutes for the last hour,
// hours for the last day and week.
func assemble(storeID string, active, inactive time.Duration) models.Report {
	upWeek := active.Seconds()
	downWeek := inactive.Seconds()

	return models.Report{
		StoreID:          storeID,
		UptimeLastHour:   round2(upWeek * hourFraction / 60),
		UptimeLastDay:    round2(upWeek * dayFraction / 3600),
		UptimeLastWeek:   round2(upWeek / 3600),
		DowntimeLastHour: round2(downWeek * hourFraction / 60),
		DowntimeLastDay:  round2(downWeek * dayFraction / 3600),
		DowntimeLastWeek: round2(downWeek / 3600),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

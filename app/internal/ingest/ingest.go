// Package ingest loads the raw CSV exports (status polls, business hours,
// timezones) into the database.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"storemon/app/internal/database"
	"storemon/app/internal/models"
	"storemon/app/internal/uptime"
)

var validate = validator.New()

// Default file names inside the data directory.
const (
	StatusFile    = "store_status.csv"
	HoursFile     = "menu_hours.csv"
	TimezonesFile = "timezones.csv"
)

// batchSize bounds how many rows are buffered per insert transaction.
const batchSize = 5000

// LoadAll ingests all three CSV files from dataDir. Missing files are
// skipped with a log line; invalid rows are counted and skipped, never
// abort the file.
func LoadAll(dataDir string) error {
	type loader struct {
		file string
		fn   func(string) (int, int, error)
	}
	loaders := []loader{
		{TimezonesFile, LoadTimezones},
		{HoursFile, LoadBusinessHours},
		{StatusFile, LoadStatus},
	}

	for _, l := range loaders {
		path := filepath.Join(dataDir, l.file)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Printf("ingest: %s not found, skipping", path)
			continue
		}
		inserted, skipped, err := l.fn(path)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", l.file, err)
		}
		log.Printf("ingest: %s loaded rows=%d skipped=%d", l.file, inserted, skipped)
	}
	return nil
}

// statusRow is one raw poll record as validated before insert
type statusRow struct {
	StoreID   string `validate:"required"`
	Status    string `validate:"required,oneof=active inactive"`
	Timestamp string `validate:"required"`
}

// LoadStatus ingests store_status.csv in batched transactions
func LoadStatus(path string) (inserted, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	cols, err := headerIndex(r, "store_id", "status", "timestamp_utc")
	if err != nil {
		return 0, 0, err
	}

	batch := make([]models.Observation, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := database.InsertObservations(batch); err != nil {
			return err
		}
		inserted += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, skipped, err
		}

		row := statusRow{
			StoreID:   rec[cols["store_id"]],
			Status:    strings.TrimSpace(rec[cols["status"]]),
			Timestamp: rec[cols["timestamp_utc"]],
		}
		ts, perr := ParseTimestamp(row.Timestamp)
		if perr != nil || validate.Struct(row) != nil {
			skipped++
			continue
		}

		batch = append(batch, models.Observation{
			StoreID:      row.StoreID,
			TimestampUTC: ts,
			Status:       row.Status,
		})
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return inserted, skipped, err
			}
		}
	}
	return inserted, skipped, flush()
}

// hoursRow is one raw schedule record as validated before insert
type hoursRow struct {
	StoreID string `validate:"required"`
	Day     int    `validate:"gte=0,lte=7"`
	Start   string `validate:"required"`
	End     string `validate:"required"`
}

// LoadBusinessHours ingests menu_hours.csv
func LoadBusinessHours(path string) (inserted, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	cols, err := headerIndex(r, "store_id", "dayOfWeek", "start_time_local", "end_time_local")
	if err != nil {
		return 0, 0, err
	}

	batch := make([]models.ScheduleRule, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := database.InsertBusinessHours(batch); err != nil {
			return err
		}
		inserted += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, skipped, err
		}

		day, derr := strconv.Atoi(strings.TrimSpace(rec[cols["dayOfWeek"]]))
		row := hoursRow{
			StoreID: rec[cols["store_id"]],
			Day:     day,
			Start:   strings.TrimSpace(rec[cols["start_time_local"]]),
			End:     strings.TrimSpace(rec[cols["end_time_local"]]),
		}
		if derr != nil || validate.Struct(row) != nil || !validClock(row.Start) || !validClock(row.End) {
			skipped++
			continue
		}

		batch = append(batch, models.ScheduleRule{
			StoreID:        row.StoreID,
			Day:            row.Day,
			StartTimeLocal: row.Start,
			EndTimeLocal:   row.End,
		})
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return inserted, skipped, err
			}
		}
	}
	return inserted, skipped, flush()
}

// timezoneRow is one raw timezone record as validated before insert
type timezoneRow struct {
	StoreID  string `validate:"required"`
	Timezone string `validate:"required"`
}

// LoadTimezones ingests timezones.csv
func LoadTimezones(path string) (inserted, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	cols, err := headerIndex(r, "store_id", "timezone_str")
	if err != nil {
		return 0, 0, err
	}

	batch := make([]models.TimezoneRecord, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := database.InsertTimezones(batch); err != nil {
			return err
		}
		inserted += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, skipped, err
		}

		row := timezoneRow{
			StoreID:  rec[cols["store_id"]],
			Timezone: strings.TrimSpace(rec[cols["timezone_str"]]),
		}
		if validate.Struct(row) != nil {
			skipped++
			continue
		}

		batch = append(batch, models.TimezoneRecord{
			StoreID:     row.StoreID,
			TimezoneStr: row.Timezone,
		})
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return inserted, skipped, err
			}
		}
	}
	return inserted, skipped, flush()
}

// ParseTimestamp parses a poll timestamp such as
// "2023-01-24 09:06:42.605777 UTC" (the UTC suffix and fractional seconds
// are both optional).
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "UTC"))
	t, err := time.Parse("2006-01-02 15:04:05.999999", s)
	if err != nil {
		t, err = time.Parse("2006-01-02 15:04:05", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
		}
	}
	return t.UTC(), nil
}

func validClock(s string) bool {
	_, err := uptime.ParseClock(s)
	return err == nil
}

// headerIndex reads the CSV header and maps the wanted column names to
// their positions.
func headerIndex(r *csv.Reader, want ...string) (map[string]int, error) {
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(want))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range want {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return idx, nil
}

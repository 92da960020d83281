package reports

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"storemon/app/internal/database"
	"storemon/app/internal/models"
	"storemon/app/internal/uptime"
)

// Generator computes one full report: every store, in parallel, against a
// single shared evaluation instant.
type Generator struct {
	registry        *Registry
	reportsDir      string
	defaultTimezone string
	workers         int
}

// NewGenerator creates a generator writing CSV files under reportsDir.
func NewGenerator(registry *Registry, reportsDir, defaultTimezone string, workers int) *Generator {
	if workers < 1 {
		workers = 1
	}
	return &Generator{
		registry:        registry,
		reportsDir:      reportsDir,
		defaultTimezone: defaultTimezone,
		workers:         workers,
	}
}

// Run generates the report for an already-created job and records the
// outcome in the registry. Meant to be called in a background goroutine.
func (g *Generator) Run(id string) {
	started := time.Now()
	path, err := g.generate(id)
	if err != nil {
		log.Printf("report %s failed: %v", id, err)
		if ferr := g.registry.Fail(id, err.Error()); ferr != nil {
			log.Printf("report %s: failed to record error: %v", id, ferr)
		}
		return
	}
	if err := g.registry.Complete(id, path); err != nil {
		log.Printf("report %s: failed to record completion: %v", id, err)
		return
	}
	log.Printf("report %s complete in %v: %s", id, time.Since(started).Round(time.Millisecond), path)
}

func (g *Generator) generate(id string) (string, error) {
	// The evaluation instant is the latest poll across all stores, which
	// keeps output deterministic for a fixed dataset.
	now, ok, err := database.LatestObservationTime()
	if err != nil {
		return "", fmt.Errorf("resolve evaluation instant: %w", err)
	}
	if !ok {
		now = time.Now().UTC()
	}

	storeIDs, err := database.DistinctStoreIDs()
	if err != nil {
		return "", fmt.Errorf("list stores: %w", err)
	}

	// Per-store computations are pure and share no mutable state, so all
	// stores fan out at once, bounded only by the worker semaphore. Each
	// worker writes its own slot.
	rows := make([]models.Report, len(storeIDs))
	sem := make(chan struct{}, g.workers)
	var wg sync.WaitGroup
	for i, storeID := range storeIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, storeID string) {
			defer wg.Done()
			defer func() { <-sem }()
			rows[i] = g.computeStore(storeID, now)
		}(i, storeID)
	}
	wg.Wait()

	return g.writeCSV(id, rows)
}

// computeStore fetches one store's inputs and runs the estimation engine.
// A failure here is isolated: it becomes an error marker on this store's
// row and never aborts the batch.
func (g *Generator) computeStore(storeID string, now time.Time) models.Report {
	obs, err := database.ObservationsSince(storeID, now.Add(-7*24*time.Hour))
	if err != nil {
		return models.Report{StoreID: storeID, Error: err.Error()}
	}
	rules, err := database.GetBusinessHours(storeID)
	if err != nil {
		return models.Report{StoreID: storeID, Error: err.Error()}
	}
	tz, err := database.GetTimezone(storeID)
	if err != nil {
		return models.Report{StoreID: storeID, Error: err.Error()}
	}

	report, err := uptime.Compute(uptime.StoreInputs{
		StoreID:         storeID,
		Now:             now,
		Observations:    obs,
		Rules:           rules,
		TimezoneStr:     tz,
		DefaultTimezone: g.defaultTimezone,
	})
	if err != nil {
		return models.Report{StoreID: storeID, Error: err.Error()}
	}
	return report
}

var csvHeader = []string{
	"store_id",
	"uptime_last_hour", "uptime_last_day", "uptime_last_week",
	"downtime_last_hour", "downtime_last_day", "downtime_last_week",
	"error",
}

func (g *Generator) writeCSV(id string, rows []models.Report) (string, error) {
	if err := os.MkdirAll(g.reportsDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(g.reportsDir, id+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, r := range rows {
		rec := []string{
			r.StoreID,
			num(r.UptimeLastHour), num(r.UptimeLastDay), num(r.UptimeLastWeek),
			num(r.DowntimeLastHour), num(r.DowntimeLastDay), num(r.DowntimeLastWeek),
			r.Error,
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Package scheduler runs the periodic retention jobs: pruning old status
// polls and evicting expired report files.
package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"storemon/app/internal/database"
	"storemon/app/internal/reports"
)

// Scheduler owns the background cleanup job.
type Scheduler struct {
	scheduler *gocron.Scheduler
	registry  *reports.Registry

	observationRetention time.Duration
	reportRetention      time.Duration
	interval             time.Duration
}

// New creates a Scheduler.
func New(registry *reports.Registry, interval, observationRetention, reportRetention time.Duration) *Scheduler {
	return &Scheduler{
		scheduler:            gocron.NewScheduler(time.UTC),
		registry:             registry,
		observationRetention: observationRetention,
		reportRetention:      reportRetention,
		interval:             interval,
	}
}

// Start schedules the cleanup job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	hours := int(s.interval.Hours())
	if hours <= 0 {
		hours = 24
	}

	_, err := s.scheduler.Every(hours).Hours().Do(s.cleanup)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) cleanup() {
	// Retention is measured from the latest poll, not wall clock, so a
	// stale-but-complete dataset is never hollowed out.
	latest, ok, err := database.LatestObservationTime()
	if err != nil {
		log.Printf("cleanup: resolve latest observation: %v", err)
		return
	}
	if ok {
		pruned, err := database.PruneObservations(latest.Add(-s.observationRetention))
		if err != nil {
			log.Printf("cleanup: prune observations: %v", err)
		} else if pruned > 0 {
			log.Printf("cleanup: pruned %d old status polls", pruned)
		}
	}

	removed, err := s.registry.PruneExpired(s.reportRetention)
	if err != nil {
		log.Printf("cleanup: prune reports: %v", err)
	} else if removed > 0 {
		log.Printf("cleanup: removed %d expired reports", removed)
	}
}

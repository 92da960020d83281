// Package reports owns report job lifecycle: triggering, parallel
// per-store computation, CSV output and retrieval.
package reports

import (
	"errors"
	"log"
	"os"
	"time"

	"storemon/app/internal/database"
	"storemon/app/internal/models"
)

// ErrNotFound is returned when a report id is unknown.
var ErrNotFound = errors.New("report not found")

// Registry is an explicit key-value store for report jobs: a job is
// created on trigger, mutated exactly once on completion or failure, and
// retained until pruned. It is passed to whatever schedules and serves
// jobs rather than living as process-wide state.
type Registry struct {
	reportsDir string
}

// NewRegistry creates a registry whose job files live under reportsDir.
func NewRegistry(reportsDir string) *Registry {
	return &Registry{reportsDir: reportsDir}
}

// Create registers a new job in the Running state.
func (r *Registry) Create(id string) error {
	return database.CreateReportJob(id)
}

// Complete marks a job done and records the file it produced.
func (r *Registry) Complete(id, filePath string) error {
	return database.CompleteReportJob(id, filePath)
}

// Fail marks a job failed.
func (r *Registry) Fail(id, errMsg string) error {
	return database.FailReportJob(id, errMsg)
}

// Get returns a job by id.
func (r *Registry) Get(id string) (*models.ReportJob, error) {
	job, err := database.GetReportJob(id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrNotFound
	}
	return job, nil
}

// PruneExpired deletes jobs created before the retention window along with
// their CSV files, returning how many jobs were removed.
func (r *Registry) PruneExpired(retention time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-retention)
	jobs, err := database.ExpiredReportJobs(cutoff)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, job := range jobs {
		if job.FilePath != "" {
			if err := os.Remove(job.FilePath); err != nil && !os.IsNotExist(err) {
				log.Printf("reports: failed to remove %s: %v", job.FilePath, err)
			}
		}
		if err := database.DeleteReportJob(job.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

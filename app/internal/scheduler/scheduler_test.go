package scheduler

import (
	"testing"
	"time"

	"storemon/app/internal/cache"
	"storemon/app/internal/database"
	"storemon/app/internal/models"
	"storemon/app/internal/reports"
)

func initTestDB(t *testing.T) {
	t.Helper()
	if err := database.Init(":memory:"); err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	cache.StoreCache = cache.New(5 * time.Minute)
}

func TestCleanup(t *testing.T) {
	initTestDB(t)
	reg := reports.NewRegistry(t.TempDir())
	s := New(reg, 24*time.Hour, 30*24*time.Hour, -time.Hour)

	latest := time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)
	if err := database.InsertObservations([]models.Observation{
		{StoreID: "s1", TimestampUTC: latest.Add(-40 * 24 * time.Hour), Status: models.StateActive},
		{StoreID: "s1", TimestampUTC: latest, Status: models.StateActive},
	}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Create("expired-job"); err != nil {
		t.Fatal(err)
	}

	s.cleanup()

	count, err := database.CountObservations()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("observations after cleanup = %d, want 1", count)
	}
	if _, err := reg.Get("expired-job"); err != reports.ErrNotFound {
		t.Errorf("expired job still present: %v", err)
	}
}

func TestCleanup_EmptyDatabase(t *testing.T) {
	initTestDB(t)
	reg := reports.NewRegistry(t.TempDir())
	s := New(reg, 24*time.Hour, 30*24*time.Hour, 72*time.Hour)

	// No observations and no jobs: cleanup is a no-op, not an error.
	s.cleanup()

	count, err := database.CountObservations()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("observations = %d, want 0", count)
	}
}

func TestStartStop(t *testing.T) {
	initTestDB(t)
	reg := reports.NewRegistry(t.TempDir())
	s := New(reg, time.Hour, 24*time.Hour, 24*time.Hour)

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	s.Stop()
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"storemon/app/internal/auth"
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

func newTestServer(t *testing.T) (http.Handler, *reports.Registry) {
	t.Helper()
	initTestDB(t)
	dir := t.TempDir()
	reg := reports.NewRegistry(dir)
	gen := reports.NewGenerator(reg, dir, "America/Chicago", 2)
	return SetupRoutes(auth.NewAuth(nil), reg, gen, ""), reg
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

// --------------- trigger_report ---------------

func TestTriggerReport(t *testing.T) {
	router, reg := newTestServer(t)

	now := time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)
	if err := database.InsertObservations([]models.Observation{
		{StoreID: "s1", TimestampUTC: now, Status: models.StateActive},
	}); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/trigger_report", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	id := decode(t, rec)["report_id"]
	if id == "" {
		t.Fatal("no report_id in response")
	}

	// Generation runs in the background; wait for the job to settle.
	deadline := time.Now().Add(5 * time.Second)
	for {
		job, err := reg.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if job.Status != models.JobRunning {
			if job.Status != models.JobComplete {
				t.Fatalf("job ended %q: %s", job.Status, job.Error)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("report did not complete in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// --------------- get_report ---------------

func TestGetReport_MissingID(t *testing.T) {
	router, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/get_report", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetReport_Unknown(t *testing.T) {
	router, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/get_report?report_id=nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetReport_Running(t *testing.T) {
	router, reg := newTestServer(t)
	if err := reg.Create("run-1"); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/get_report?report_id=run-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decode(t, rec)["status"]; got != models.JobRunning {
		t.Errorf("status = %q, want %q", got, models.JobRunning)
	}
}

func TestGetReport_Complete(t *testing.T) {
	router, reg := newTestServer(t)
	file := t.TempDir() + "/done.csv"
	content := "store_id,uptime_last_hour\ns1,0.36\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := reg.Create("done-1"); err != nil {
		t.Fatal(err)
	}
	if err := reg.Complete("done-1", file); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/get_report?report_id=done-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "done-1.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if rec.Body.String() != content {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestGetReport_Failed(t *testing.T) {
	router, reg := newTestServer(t)
	if err := reg.Create("fail-1"); err != nil {
		t.Fatal(err)
	}
	if err := reg.Fail("fail-1", "boom"); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/get_report?report_id=fail-1", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "boom" {
		t.Errorf("error = %q, want boom", got)
	}
}

// --------------- health / admin ---------------

func TestHealth(t *testing.T) {
	router, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decode(t, rec)["status"]; got != "ok" {
		t.Errorf("status = %q, want ok", got)
	}
}

func TestIngest_DisabledWithoutToken(t *testing.T) {
	router, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/admin/ingest", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

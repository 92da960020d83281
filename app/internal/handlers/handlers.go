package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"storemon/app/internal/ingest"
	"storemon/app/internal/models"
	"storemon/app/internal/reports"
)

// HandleTriggerReport starts a new report job and returns its id
func HandleTriggerReport(registry *reports.Registry, gen *reports.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		if err := registry.Create(id); err != nil {
			log.Printf("trigger report: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create report job"})
			return
		}

		go gen.Run(id)

		writeJSON(w, http.StatusAccepted, map[string]string{"report_id": id})
	}
}

// HandleGetReport returns a job's status, or the finished CSV file
func HandleGetReport(registry *reports.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("report_id")
		if id == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "report_id is required"})
			return
		}

		job, err := registry.Get(id)
		if errors.Is(err, reports.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
			return
		}
		if err != nil {
			log.Printf("get report %s: %v", id, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}

		switch job.Status {
		case models.JobRunning:
			writeJSON(w, http.StatusOK, map[string]string{"status": models.JobRunning})
		case models.JobComplete:
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.csv"`)
			http.ServeFile(w, r, job.FilePath)
		default:
			msg := job.Error
			if msg == "" {
				msg = "report generation failed"
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
		}
	}
}

// HandleHealth returns service liveness
func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "storemon",
		})
	}
}

// HandleIngest re-runs CSV ingestion from the configured data directory
func HandleIngest(dataDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dataDir == "" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "DATA_DIR is not configured"})
			return
		}
		if err := ingest.LoadAll(dataDir); err != nil {
			log.Printf("ingest: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

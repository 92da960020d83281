package database

import (
	"database/sql"
	"time"

	"storemon/app/internal/models"
)

// CreateReportJob inserts a new job in the Running state
func CreateReportJob(id string) error {
	_, err := DB.Exec(`INSERT INTO report_jobs (id, status, created_at) VALUES (?, ?, ?)`,
		id, models.JobRunning, FormatTime(time.Now()))
	return err
}

// CompleteReportJob marks a job complete and records its file path
func CompleteReportJob(id, filePath string) error {
	_, err := DB.Exec(`UPDATE report_jobs SET status = ?, file_path = ?, completed_at = ? WHERE id = ?`,
		models.JobComplete, filePath, FormatTime(time.Now()), id)
	return err
}

// FailReportJob marks a job failed with an error message
func FailReportJob(id, errMsg string) error {
	_, err := DB.Exec(`UPDATE report_jobs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		models.JobFailed, errMsg, FormatTime(time.Now()), id)
	return err
}

// GetReportJob returns a job by id, or nil when it does not exist
func GetReportJob(id string) (*models.ReportJob, error) {
	var job models.ReportJob
	var filePath, errMsg, completedAt sql.NullString
	err := DB.QueryRow(`
		SELECT id, status, file_path, error, created_at, completed_at
		FROM report_jobs WHERE id = ?`, id).Scan(
		&job.ID, &job.Status, &filePath, &errMsg, &job.CreatedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	job.FilePath = filePath.String
	job.Error = errMsg.String
	job.CompletedAt = completedAt.String
	return &job, nil
}

// ExpiredReportJobs returns jobs created before the cutoff
func ExpiredReportJobs(before time.Time) ([]models.ReportJob, error) {
	rows, err := DB.Query(`
		SELECT id, status, COALESCE(file_path, ''), COALESCE(error, ''), created_at, COALESCE(completed_at, '')
		FROM report_jobs WHERE created_at < ?`, FormatTime(before))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []models.ReportJob
	for rows.Next() {
		var j models.ReportJob
		if err := rows.Scan(&j.ID, &j.Status, &j.FilePath, &j.Error, &j.CreatedAt, &j.CompletedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// DeleteReportJob removes a job row
func DeleteReportJob(id string) error {
	_, err := DB.Exec(`DELETE FROM report_jobs WHERE id = ?`, id)
	return err
}

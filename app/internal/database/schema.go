package database

// EnsureSchema creates all necessary database tables
func EnsureSchema() error {
	_, err := DB.Exec(`
CREATE TABLE IF NOT EXISTS store_status (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  store_id TEXT NOT NULL,
  timestamp_utc TEXT NOT NULL,
  status TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_store_status_store ON store_status(store_id);
CREATE INDEX IF NOT EXISTS idx_store_status_ts ON store_status(timestamp_utc);

CREATE TABLE IF NOT EXISTS business_hours (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  store_id TEXT NOT NULL,
  day INTEGER NOT NULL,
  start_time_local TEXT NOT NULL,
  end_time_local TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_business_hours_store ON business_hours(store_id);

CREATE TABLE IF NOT EXISTS store_timezone (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  store_id TEXT NOT NULL UNIQUE,
  timezone_str TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_store_timezone_store ON store_timezone(store_id);

CREATE TABLE IF NOT EXISTS report_jobs (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL,
  file_path TEXT,
  error TEXT,
  created_at TEXT NOT NULL,
  completed_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_report_jobs_created ON report_jobs(created_at);
`)
	return err
}

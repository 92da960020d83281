package database

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// DB is the global database instance
var DB *sql.DB

// TimeLayout is how UTC timestamps are stored. The fixed-width fractional
// part keeps lexicographic TEXT comparison consistent with time order, so
// MAX() and range filters work directly in SQL.
const TimeLayout = "2006-01-02 15:04:05.000000"

// Init initializes the database connection and creates schema
func Init(dbPath string) error {
	var err error
	DB, err = sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}

	return EnsureSchema()
}

// FormatTime renders a timestamp in the stored layout (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp. Rows written without fractional
// seconds are handled too.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		t, err = time.Parse("2006-01-02 15:04:05", s)
		if err != nil {
			return time.Time{}, err
		}
	}
	return t.UTC(), nil
}

package database

import (
	"database/sql"
	"time"

	"storemon/app/internal/cache"
	"storemon/app/internal/models"
)

// DistinctStoreIDs returns every store id that has at least one status poll
func DistinctStoreIDs() ([]string, error) {
	rows, err := DB.Query(`SELECT DISTINCT store_id FROM store_status ORDER BY store_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LatestObservationTime returns the newest poll timestamp across all
// stores. The second return is false when there is no data at all.
func LatestObservationTime() (time.Time, bool, error) {
	var ts sql.NullString
	err := DB.QueryRow(`SELECT MAX(timestamp_utc) FROM store_status`).Scan(&ts)
	if err != nil {
		return time.Time{}, false, err
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	t, err := ParseTime(ts.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// ObservationsSince returns one store's polls at or after the cutoff,
// ascending by timestamp.
func ObservationsSince(storeID string, since time.Time) ([]models.Observation, error) {
	rows, err := DB.Query(`
		SELECT store_id, timestamp_utc, status FROM store_status
		WHERE store_id = ? AND timestamp_utc >= ?
		ORDER BY timestamp_utc ASC, id ASC`,
		storeID, FormatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var obs []models.Observation
	for rows.Next() {
		var o models.Observation
		var ts string
		if err := rows.Scan(&o.StoreID, &ts, &o.Status); err != nil {
			return nil, err
		}
		if o.TimestampUTC, err = ParseTime(ts); err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// GetBusinessHours returns a store's schedule rules (0-8 rows)
func GetBusinessHours(storeID string) ([]models.ScheduleRule, error) {
	cacheKey := "hours:" + storeID
	if cached, ok := cache.StoreCache.Get(cacheKey); ok {
		if rules, ok := cached.([]models.ScheduleRule); ok {
			return rules, nil
		}
	}

	rows, err := DB.Query(`
		SELECT store_id, day, start_time_local, end_time_local
		FROM business_hours WHERE store_id = ? ORDER BY day ASC`,
		storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.ScheduleRule
	for rows.Next() {
		var r models.ScheduleRule
		if err := rows.Scan(&r.StoreID, &r.Day, &r.StartTimeLocal, &r.EndTimeLocal); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cache.StoreCache.Set(cacheKey, rules)
	return rules, nil
}

// GetTimezone returns a store's IANA timezone name, or "" when the store
// has no timezone record.
func GetTimezone(storeID string) (string, error) {
	cacheKey := "tz:" + storeID
	if cached, ok := cache.StoreCache.Get(cacheKey); ok {
		if tz, ok := cached.(string); ok {
			return tz, nil
		}
	}

	var tz string
	err := DB.QueryRow(`SELECT timezone_str FROM store_timezone WHERE store_id = ?`, storeID).Scan(&tz)
	if err == sql.ErrNoRows {
		tz = ""
	} else if err != nil {
		return "", err
	}

	cache.StoreCache.Set(cacheKey, tz)
	return tz, nil
}

// InsertObservations bulk-inserts status polls inside one transaction
func InsertObservations(obs []models.Observation) error {
	tx, err := DB.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO store_status (store_id, timestamp_utc, status) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, o := range obs {
		if _, err := stmt.Exec(o.StoreID, FormatTime(o.TimestampUTC), o.Status); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// InsertBusinessHours bulk-inserts schedule rules inside one transaction
func InsertBusinessHours(rules []models.ScheduleRule) error {
	tx, err := DB.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO business_hours (store_id, day, start_time_local, end_time_local) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range rules {
		if _, err := stmt.Exec(r.StoreID, r.Day, r.StartTimeLocal, r.EndTimeLocal); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	cache.StoreCache.DeletePrefix("hours:")
	return nil
}

// InsertTimezones bulk-inserts timezone records inside one transaction
func InsertTimezones(recs []models.TimezoneRecord) error {
	tx, err := DB.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO store_timezone (store_id, timezone_str) VALUES (?, ?)
		ON CONFLICT(store_id) DO UPDATE SET timezone_str = excluded.timezone_str`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.Exec(r.StoreID, r.TimezoneStr); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	cache.StoreCache.DeletePrefix("tz:")
	return nil
}

// CountObservations returns the number of stored status polls
func CountObservations() (int, error) {
	var n int
	err := DB.QueryRow(`SELECT COUNT(*) FROM store_status`).Scan(&n)
	return n, err
}

// PruneObservations deletes polls older than the cutoff and returns how
// many rows were removed.
func PruneObservations(before time.Time) (int64, error) {
	res, err := DB.Exec(`DELETE FROM store_status WHERE timestamp_utc < ?`, FormatTime(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

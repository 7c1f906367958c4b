package database

import (
	"time"

	"github.com/TobiSchelling/polisent/internal/series"
)

const dateFormat = "2006-01-02"

// InsertObservations bulk-inserts a run's observations in one transaction.
func (db *DB) InsertObservations(runID string, obs []series.Observation) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO observations (run_id, country_id, date, sentiment, is_weekend, post_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, o := range obs {
		weekend := 0
		if o.IsWeekend {
			weekend = 1
		}
		if _, err := stmt.Exec(runID, o.CountryID, o.Date.Format(dateFormat),
			o.Sentiment, weekend, o.PostCount); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// GetObservations returns a run's observations ordered by country and date.
func (db *DB) GetObservations(runID string) ([]series.Observation, error) {
	rows, err := db.conn.Query(
		`SELECT country_id, date, sentiment, is_weekend, post_count
		FROM observations WHERE run_id = ? ORDER BY country_id, date`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var obs []series.Observation
	for rows.Next() {
		var o series.Observation
		var date string
		var weekend int
		if err := rows.Scan(&o.CountryID, &date, &o.Sentiment, &weekend, &o.PostCount); err != nil {
			return nil, err
		}
		o.Date, err = time.Parse(dateFormat, date)
		if err != nil {
			return nil, err
		}
		o.IsWeekend = weekend != 0
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// CountObservations returns the number of stored observations for a run.
func (db *DB) CountObservations(runID string) (int, error) {
	var count int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM observations WHERE run_id = ?", runID,
	).Scan(&count)
	return count, err
}

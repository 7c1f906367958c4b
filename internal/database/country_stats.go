package database

import (
	"database/sql"

	"github.com/TobiSchelling/polisent/internal/stats"
)

// InsertCountryStats stores a run's per-country aggregates.
func (db *DB) InsertCountryStats(runID string, summaries []stats.CountrySummary) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO country_stats (run_id, country_id, name, democracy_score,
			classification, region, mean, stddev, min, max, median, observations, total_posts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, s := range summaries {
		if _, err := stmt.Exec(runID, s.CountryID, s.Name, s.DemocracyScore,
			s.Classification.Key(), s.Region.Key(), s.Mean, nullIfNaN(s.StdDev),
			s.Min, s.Max, s.Median, s.Observations, s.TotalPosts); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// GetCountryStats returns a run's per-country aggregates ordered by
// democracy score, highest first.
func (db *DB) GetCountryStats(runID string) ([]CountryStat, error) {
	rows, err := db.conn.Query(
		`SELECT run_id, country_id, name, democracy_score, classification, region,
			mean, stddev, min, max, median, observations, total_posts
		FROM country_stats WHERE run_id = ? ORDER BY democracy_score DESC`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CountryStat
	for rows.Next() {
		var cs CountryStat
		var stddev sql.NullFloat64
		if err := rows.Scan(&cs.RunID, &cs.CountryID, &cs.Name, &cs.DemocracyScore,
			&cs.Classification, &cs.Region, &cs.Mean, &stddev, &cs.Min, &cs.Max,
			&cs.Median, &cs.Observations, &cs.TotalPosts); err != nil {
			return nil, err
		}
		cs.StdDev = nanIfNull(stddev)
		out = append(out, cs)
	}
	return out, rows.Err()
}

package database

import (
	"database/sql"
	"math"
)

// nullIfNaN converts the NaN sentinel to a SQL NULL.
func nullIfNaN(x float64) sql.NullFloat64 {
	if math.IsNaN(x) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: x, Valid: true}
}

// nanIfNull converts a SQL NULL back to the NaN sentinel.
func nanIfNull(x sql.NullFloat64) float64 {
	if !x.Valid {
		return math.NaN()
	}
	return x.Float64
}

// InsertRun stores a run record. Undefined correlations persist as NULL.
func (db *DB) InsertRun(run Run) error {
	_, err := db.conn.Exec(
		`INSERT INTO runs (run_id, seed, start_date, horizon_days, country_count,
			observation_count, correlation_sentiment, correlation_volatility, report_markdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Seed, run.StartDate, run.HorizonDays, run.CountryCount,
		run.ObservationCount, nullIfNaN(run.CorrelationSentiment),
		nullIfNaN(run.CorrelationVolatility), run.ReportMarkdown,
	)
	return err
}

const runColumns = `id, run_id, seed, start_date, horizon_days, country_count,
	observation_count, correlation_sentiment, correlation_volatility, report_markdown, generated_at`

// GetRun returns a run by its run ID, or nil if not found.
func (db *DB) GetRun(runID string) (*Run, error) {
	row := db.conn.QueryRow(
		`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetLatestRun returns the most recent run, or nil if none exist.
func (db *DB) GetLatestRun() (*Run, error) {
	row := db.conn.QueryRow(
		`SELECT ` + runColumns + ` FROM runs ORDER BY id DESC LIMIT 1`,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetAllRuns returns all runs, newest first.
func (db *DB) GetAllRuns() ([]Run, error) {
	rows, err := db.conn.Query(
		`SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var corrSent, corrVol sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.RunID, &r.Seed, &r.StartDate, &r.HorizonDays,
			&r.CountryCount, &r.ObservationCount, &corrSent, &corrVol,
			&r.ReportMarkdown, &r.GeneratedAt); err != nil {
			return nil, err
		}
		r.CorrelationSentiment = nanIfNull(corrSent)
		r.CorrelationVolatility = nanIfNull(corrVol)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetStats returns aggregate statistics for the status command.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	if err := db.conn.QueryRow("SELECT COUNT(*) FROM runs").Scan(&stats.TotalRuns); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM observations").Scan(&stats.TotalObservations); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow(
		"SELECT COUNT(DISTINCT country_id) FROM observations",
	).Scan(&stats.CountriesTracked); err != nil {
		return nil, err
	}

	var latest sql.NullString
	if err := db.conn.QueryRow(
		"SELECT run_id FROM runs ORDER BY id DESC LIMIT 1",
	).Scan(&latest); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if latest.Valid {
		stats.LatestRun = &latest.String
	}

	return stats, nil
}

func scanRun(row *sql.Row) (*Run, error) {
	var r Run
	var corrSent, corrVol sql.NullFloat64
	if err := row.Scan(&r.ID, &r.RunID, &r.Seed, &r.StartDate, &r.HorizonDays,
		&r.CountryCount, &r.ObservationCount, &corrSent, &corrVol,
		&r.ReportMarkdown, &r.GeneratedAt); err != nil {
		return nil, err
	}
	r.CorrelationSentiment = nanIfNull(corrSent)
	r.CorrelationVolatility = nanIfNull(corrVol)
	return &r, nil
}

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	gotaseries "github.com/go-gota/gota/series"

	"github.com/TobiSchelling/polisent/internal/series"
	"github.com/TobiSchelling/polisent/internal/stats"
)

// Result holds the paths of the written export files.
type Result struct {
	ObservationsPath string
	CountryStatsPath string
}

// WriteRun exports a run's observations and per-country statistics as CSV
// files under outDir/<runID>/. Undefined statistics become empty cells.
func WriteRun(outDir, runID string, ds *series.Dataset, summary *stats.Summary) (*Result, error) {
	dir := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	obsPath := filepath.Join(dir, "observations.csv")
	if err := writeCSV(obsPath, observationRecords(ds)); err != nil {
		return nil, fmt.Errorf("writing observations: %w", err)
	}

	statsPath := filepath.Join(dir, "country_stats.csv")
	if err := writeCSV(statsPath, countryStatRecords(summary)); err != nil {
		return nil, fmt.Errorf("writing country stats: %w", err)
	}

	return &Result{ObservationsPath: obsPath, CountryStatsPath: statsPath}, nil
}

func observationRecords(ds *series.Dataset) [][]string {
	records := make([][]string, 0, ds.Len()+1)
	records = append(records, []string{"country", "date", "sentiment", "is_weekend", "post_count"})
	for _, o := range ds.Observations {
		records = append(records, []string{
			o.CountryID,
			o.Date.Format("2006-01-02"),
			strconv.FormatFloat(o.Sentiment, 'f', 6, 64),
			strconv.FormatBool(o.IsWeekend),
			strconv.Itoa(o.PostCount),
		})
	}
	return records
}

func countryStatRecords(summary *stats.Summary) [][]string {
	records := make([][]string, 0, len(summary.Countries)+1)
	records = append(records, []string{
		"country", "democracy_score", "classification", "region",
		"mean", "stddev", "min", "max", "median", "observations", "total_posts",
	})
	for _, s := range summary.Countries {
		records = append(records, []string{
			s.CountryID,
			strconv.FormatFloat(s.DemocracyScore, 'f', 1, 64),
			s.Classification.Key(),
			s.Region.Key(),
			fmtCell(s.Mean),
			fmtCell(s.StdDev),
			fmtCell(s.Min),
			fmtCell(s.Max),
			fmtCell(s.Median),
			strconv.Itoa(s.Observations),
			strconv.Itoa(s.TotalPosts),
		})
	}
	return records
}

// fmtCell formats a statistic for CSV, leaving undefined values empty.
func fmtCell(x float64) string {
	if stats.IsUndefined(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func writeCSV(path string, records [][]string) error {
	// Keep cells verbatim: type detection would turn empty (undefined)
	// cells into a literal NaN on write.
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(gotaseries.String),
	)
	if df.Err != nil {
		return df.Err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return df.WriteCSV(f)
}

package database

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/TobiSchelling/polisent/internal/country"
	"github.com/TobiSchelling/polisent/internal/series"
	"github.com/TobiSchelling/polisent/internal/stats"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesNestedDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "polisent.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if db.Path() != path {
		t.Errorf("expected path %q, got %q", path, db.Path())
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected database file on disk: %v", err)
	}
}

func TestOpenEnforcesForeignKeys(t *testing.T) {
	db := openTestDB(t)

	// No runs exist, so the observation references a missing run_id.
	day := time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)
	err := db.InsertObservations("no-such-run", []series.Observation{
		{CountryID: "sweden", Date: day, Sentiment: 0.4, PostCount: 1},
	})
	if err == nil {
		t.Error("expected foreign key violation for orphan observation")
	}
}

func testRun(runID string) Run {
	return Run{
		RunID:                 runID,
		Seed:                  42,
		StartDate:             "2025-01-01",
		HorizonDays:           365,
		CountryCount:          8,
		ObservationCount:      2920,
		CorrelationSentiment:  0.992,
		CorrelationVolatility: -0.925,
		ReportMarkdown:        "# Report",
	}
}

func TestInsertAndGetRun(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertRun(testRun("run-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	run, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run == nil {
		t.Fatal("expected run, got nil")
	}
	if run.Seed != 42 || run.HorizonDays != 365 || run.ReportMarkdown != "# Report" {
		t.Errorf("run did not round-trip: %+v", run)
	}
	if run.CorrelationSentiment != 0.992 {
		t.Errorf("expected correlation 0.992, got %v", run.CorrelationSentiment)
	}
	if run.GeneratedAt == nil {
		t.Error("expected generated_at to be set")
	}
}

func TestGetRunNotFound(t *testing.T) {
	db := openTestDB(t)
	run, err := db.GetRun("missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run != nil {
		t.Errorf("expected nil for missing run, got %+v", run)
	}
}

func TestUndefinedCorrelationRoundTrip(t *testing.T) {
	db := openTestDB(t)
	run := testRun("run-nan")
	run.CorrelationSentiment = math.NaN()
	run.CorrelationVolatility = math.NaN()
	if err := db.InsertRun(run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := db.GetRun("run-nan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(got.CorrelationSentiment) || !math.IsNaN(got.CorrelationVolatility) {
		t.Errorf("expected NaN correlations after round-trip, got %v / %v",
			got.CorrelationSentiment, got.CorrelationVolatility)
	}
}

func TestGetLatestAndAllRuns(t *testing.T) {
	db := openTestDB(t)
	db.InsertRun(testRun("run-1"))
	db.InsertRun(testRun("run-2"))

	latest, err := db.GetLatestRun()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest == nil || latest.RunID != "run-2" {
		t.Errorf("expected run-2 as latest, got %+v", latest)
	}

	runs, err := db.GetAllRuns()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "run-2" {
		t.Errorf("expected newest first, got %q", runs[0].RunID)
	}
}

func TestInsertAndGetObservations(t *testing.T) {
	db := openTestDB(t)
	db.InsertRun(testRun("run-1"))

	day1 := time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC) // Saturday
	day2 := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC) // Monday
	obs := []series.Observation{
		{CountryID: "sweden", Date: day1, Sentiment: 0.42, IsWeekend: true, PostCount: 11},
		{CountryID: "sweden", Date: day2, Sentiment: 0.38, IsWeekend: false, PostCount: 9},
		{CountryID: "poland", Date: day1, Sentiment: 0.05, IsWeekend: true, PostCount: 40},
	}
	if err := db.InsertObservations("run-1", obs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := db.CountObservations("run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 observations, got %d", count)
	}

	got, err := db.GetObservations("run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(got))
	}
	// Ordered by country, then date: poland first.
	if got[0].CountryID != "poland" {
		t.Errorf("expected poland first, got %q", got[0].CountryID)
	}
	if !got[1].IsWeekend || got[1].Sentiment != 0.42 {
		t.Errorf("observation did not round-trip: %+v", got[1])
	}
	if !got[1].Date.Equal(day1) {
		t.Errorf("expected date %v, got %v", day1, got[1].Date)
	}
}

func TestDuplicateObservationRejected(t *testing.T) {
	db := openTestDB(t)
	db.InsertRun(testRun("run-1"))

	day := time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)
	obs := []series.Observation{
		{CountryID: "sweden", Date: day, Sentiment: 0.4, PostCount: 1},
		{CountryID: "sweden", Date: day, Sentiment: 0.5, PostCount: 1},
	}
	if err := db.InsertObservations("run-1", obs); err == nil {
		t.Error("expected unique constraint error for duplicate (country, date)")
	}
}

func TestInsertAndGetCountryStats(t *testing.T) {
	db := openTestDB(t)
	db.InsertRun(testRun("run-1"))

	summaries := []stats.CountrySummary{
		{
			CountryID:      "poland",
			Name:           "Poland",
			DemocracyScore: 6.8,
			Classification: country.FlawedDemocracy,
			Region:         country.Europe,
			Mean:           0.1,
			StdDev:         0.3,
			Min:            -0.9,
			Max:            0.95,
			Median:         0.11,
			Observations:   365,
			TotalPosts:     14000,
		},
		{
			CountryID:      "sweden",
			Name:           "Sweden",
			DemocracyScore: 9.2,
			Classification: country.FullDemocracy,
			Region:         country.Europe,
			Mean:           0.4,
			StdDev:         math.NaN(),
			Min:            0.4,
			Max:            0.4,
			Median:         0.4,
			Observations:   1,
			TotalPosts:     10,
		},
	}
	if err := db.InsertCountryStats("run-1", summaries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := db.GetCountryStats("run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 country stats, got %d", len(got))
	}
	// Ordered by democracy score descending.
	if got[0].CountryID != "sweden" {
		t.Errorf("expected sweden first, got %q", got[0].CountryID)
	}
	if !math.IsNaN(got[0].StdDev) {
		t.Errorf("expected NaN stddev after round-trip, got %v", got[0].StdDev)
	}
	if got[1].Classification != "flawed_democracy" || got[1].Region != "europe" {
		t.Errorf("enum keys did not round-trip: %+v", got[1])
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)

	stats0, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats0.TotalRuns != 0 || stats0.LatestRun != nil {
		t.Errorf("expected empty stats, got %+v", stats0)
	}

	db.InsertRun(testRun("run-1"))
	day := time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)
	db.InsertObservations("run-1", []series.Observation{
		{CountryID: "sweden", Date: day, Sentiment: 0.4, PostCount: 1},
		{CountryID: "poland", Date: day, Sentiment: 0.1, PostCount: 2},
	})

	got, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalRuns != 1 || got.TotalObservations != 2 || got.CountriesTracked != 2 {
		t.Errorf("unexpected stats: %+v", got)
	}
	if got.LatestRun == nil || *got.LatestRun != "run-1" {
		t.Errorf("expected latest run run-1, got %v", got.LatestRun)
	}
}

package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/TobiSchelling/polisent/internal/config"
	"github.com/TobiSchelling/polisent/internal/country"
	"github.com/TobiSchelling/polisent/internal/database"
	"github.com/TobiSchelling/polisent/internal/series"
)

func testPipeline(t *testing.T) (*Pipeline, *database.DB, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Output.DataDir = dir
	return New(cfg, db), db, dir
}

func testCountries() []country.Profile {
	return []country.Profile{
		{
			ID:             "alpha",
			Name:           "Alpha",
			DemocracyScore: 9.0,
			Classification: country.FullDemocracy,
			Region:         country.Europe,
			Population:     10,
		},
		{
			ID:             "beta",
			Name:           "Beta",
			DemocracyScore: 4.5,
			Classification: country.HybridRegime,
			Region:         country.Asia,
			Population:     10,
		},
	}
}

func testParams() series.Params {
	return series.Params{
		StartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		HorizonDays: 30,
		Seed:        42,
	}
}

func TestRunCompletesAllSteps(t *testing.T) {
	p, db, dir := testPipeline(t)

	result := p.Run(testCountries(), testParams())
	if result.Failed() {
		for _, s := range result.Steps {
			if s.Err != nil {
				t.Fatalf("step %s failed: %v", s.Name, s.Err)
			}
		}
	}
	if len(result.Steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(result.Steps))
	}
	if result.RunID == "" {
		t.Fatal("expected a run ID")
	}

	run, err := db.GetRun(result.RunID)
	if err != nil {
		t.Fatalf("failed to load run: %v", err)
	}
	if run == nil {
		t.Fatal("run was not stored")
	}
	if run.ObservationCount != 60 {
		t.Fatalf("expected 60 observations, got %d", run.ObservationCount)
	}
	if run.ReportMarkdown == "" {
		t.Fatal("expected a stored report")
	}

	count, err := db.CountObservations(result.RunID)
	if err != nil {
		t.Fatalf("failed to count observations: %v", err)
	}
	if count != 60 {
		t.Fatalf("expected 60 stored observations, got %d", count)
	}

	if _, err := os.Stat(filepath.Join(dir, result.RunID, "observations.csv")); err != nil {
		t.Fatalf("expected observations export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, result.RunID, "country_stats.csv")); err != nil {
		t.Fatalf("expected country stats export: %v", err)
	}
}

func TestRunAbortsOnGenerationError(t *testing.T) {
	p, db, _ := testPipeline(t)

	params := testParams()
	params.HorizonDays = 0
	result := p.Run(testCountries(), params)
	if !result.Failed() {
		t.Fatal("expected a failed run")
	}
	if len(result.Steps) != 1 || result.Steps[0].Name != "Generate" {
		t.Fatalf("expected the run to stop at Generate, got %d steps", len(result.Steps))
	}

	run, err := db.GetRun(result.RunID)
	if err != nil {
		t.Fatalf("failed to query run: %v", err)
	}
	if run != nil {
		t.Fatal("failed run must not be persisted")
	}
}

func TestRunAbortsOnInsufficientCountries(t *testing.T) {
	p, _, _ := testPipeline(t)

	result := p.Run(testCountries()[:1], testParams())
	if !result.Failed() {
		t.Fatal("expected a failed run")
	}
	last := result.Steps[len(result.Steps)-1]
	if last.Name != "Summarize" || last.Err == nil {
		t.Fatalf("expected the run to fail at Summarize, got %q", last.Name)
	}
}

func TestDryRunTouchesNothing(t *testing.T) {
	p, db, dir := testPipeline(t)

	result := p.DryRun(testCountries(), testParams())
	if result.Failed() {
		t.Fatal("dry run must not fail")
	}
	if len(result.Steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(result.Steps))
	}
	for _, s := range result.Steps {
		if !strings.HasPrefix(s.Summary, "[dry-run]") {
			t.Fatalf("step %s summary missing dry-run marker: %q", s.Name, s.Summary)
		}
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("failed to read stats: %v", err)
	}
	if stats.TotalRuns != 0 {
		t.Fatalf("dry run stored %d runs", stats.TotalRuns)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read data dir: %v", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			t.Fatalf("dry run created directory %s", e.Name())
		}
	}
}

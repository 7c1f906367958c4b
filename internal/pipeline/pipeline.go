package pipeline

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/TobiSchelling/polisent/internal/config"
	"github.com/TobiSchelling/polisent/internal/country"
	"github.com/TobiSchelling/polisent/internal/database"
	"github.com/TobiSchelling/polisent/internal/export"
	"github.com/TobiSchelling/polisent/internal/report"
	"github.com/TobiSchelling/polisent/internal/series"
	"github.com/TobiSchelling/polisent/internal/stats"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	RunID string
	Steps []StepResult
}

// Failed reports whether any step errored.
func (r *Result) Failed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Pipeline orchestrates the 5-step analysis pipeline:
// generate -> summarize -> report -> store -> export.
type Pipeline struct {
	cfg *config.Config
	db  *database.DB
}

// New creates a new pipeline.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	return &Pipeline{cfg: cfg, db: db}
}

// Run executes the full pipeline for the given countries and parameters.
// Generation and aggregation errors abort the run; nothing is persisted
// for a failed run.
func (p *Pipeline) Run(countries []country.Profile, params series.Params) *Result {
	runID := uuid.NewString()
	r := &Result{RunID: runID}

	// Step 1: Generate
	log.Println("Step 1/5: Generating sentiment series...")
	ds, err := series.Generate(countries, params)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Generate", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Generate",
		Summary: fmt.Sprintf("Generated %d observations (%d countries x %d days)", ds.Len(), len(countries), params.HorizonDays),
	})

	// Step 2: Summarize
	log.Println("Step 2/5: Computing statistics...")
	summary, err := stats.Summarize(ds, countries)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Summarize", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Summarize",
		Summary: fmt.Sprintf("Democracy-sentiment r = %s, volatility r = %s", fmtCorr(summary.CorrelationSentiment), fmtCorr(summary.CorrelationVolatility)),
	})

	// Step 3: Report
	log.Println("Step 3/5: Composing insights report...")
	markdown := report.Render(summary, report.Meta{
		RunID:       runID,
		Seed:        params.Seed,
		StartDate:   params.StartDate,
		HorizonDays: params.HorizonDays,
		GeneratedAt: time.Now(),
	})
	r.Steps = append(r.Steps, StepResult{
		Name:    "Report",
		Summary: fmt.Sprintf("Composed report (%d bytes)", len(markdown)),
	})

	// Step 4: Store
	log.Println("Step 4/5: Storing run...")
	if err := p.store(runID, ds, summary, params, markdown); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Store", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Store",
		Summary: fmt.Sprintf("Stored run %s with %d observations", runID, ds.Len()),
	})

	// Step 5: Export
	log.Println("Step 5/5: Exporting CSV files...")
	result, err := export.WriteRun(p.cfg.GetDataDir(), runID, ds, summary)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Export", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Export",
		Summary: fmt.Sprintf("Wrote %s and %s", result.ObservationsPath, result.CountryStatsPath),
	})

	return r
}

// DryRun shows what would be done without executing.
func (p *Pipeline) DryRun(countries []country.Profile, params series.Params) *Result {
	r := &Result{}

	r.Steps = append(r.Steps, StepResult{
		Name: "Generate",
		Summary: fmt.Sprintf("[dry-run] Would generate %d observations (%d countries x %d days, seed %d)",
			len(countries)*params.HorizonDays, len(countries), params.HorizonDays, params.Seed),
	})
	r.Steps = append(r.Steps, StepResult{
		Name:    "Summarize",
		Summary: fmt.Sprintf("[dry-run] Would compute statistics over %d countries", len(countries)),
	})
	r.Steps = append(r.Steps, StepResult{
		Name:    "Report",
		Summary: "[dry-run] Would compose the insights report",
	})
	r.Steps = append(r.Steps, StepResult{
		Name:    "Store",
		Summary: fmt.Sprintf("[dry-run] Would store the run in %s", p.db.Path()),
	})
	r.Steps = append(r.Steps, StepResult{
		Name:    "Export",
		Summary: fmt.Sprintf("[dry-run] Would write CSV files to %s", p.cfg.GetDataDir()),
	})

	return r
}

func (p *Pipeline) store(runID string, ds *series.Dataset, summary *stats.Summary, params series.Params, markdown string) error {
	run := database.Run{
		RunID:                 runID,
		Seed:                  int64(params.Seed),
		StartDate:             params.StartDate.Format("2006-01-02"),
		HorizonDays:           params.HorizonDays,
		CountryCount:          len(summary.Countries),
		ObservationCount:      ds.Len(),
		CorrelationSentiment:  summary.CorrelationSentiment,
		CorrelationVolatility: summary.CorrelationVolatility,
		ReportMarkdown:        markdown,
	}
	if err := p.db.InsertRun(run); err != nil {
		return fmt.Errorf("storing run: %w", err)
	}
	if err := p.db.InsertObservations(runID, ds.Observations); err != nil {
		return fmt.Errorf("storing observations: %w", err)
	}
	if err := p.db.InsertCountryStats(runID, summary.Countries); err != nil {
		return fmt.Errorf("storing country stats: %w", err)
	}
	return nil
}

func fmtCorr(x float64) string {
	if stats.IsUndefined(x) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", x)
}

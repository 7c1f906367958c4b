package database

// Run is the stored record of one pipeline run. The correlation fields
// hold NaN when the statistic was undefined (stored as NULL).
type Run struct {
	ID                    int64
	RunID                 string
	Seed                  int64
	StartDate             string // YYYY-MM-DD
	HorizonDays           int
	CountryCount          int
	ObservationCount      int
	CorrelationSentiment  float64
	CorrelationVolatility float64
	ReportMarkdown        string
	GeneratedAt           *string
}

// CountryStat is the stored per-country aggregate for a run.
// StdDev is NaN when undefined.
type CountryStat struct {
	RunID          string
	CountryID      string
	Name           string
	DemocracyScore float64
	Classification string
	Region         string
	Mean           float64
	StdDev         float64
	Min            float64
	Max            float64
	Median         float64
	Observations   int
	TotalPosts     int
}

// Stats contains aggregate database statistics for the status command.
type Stats struct {
	TotalRuns         int
	TotalObservations int
	CountriesTracked  int
	LatestRun         *string
}

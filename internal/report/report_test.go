package report

import (
	"strings"
	"testing"
	"time"

	"github.com/TobiSchelling/polisent/internal/country"
	"github.com/TobiSchelling/polisent/internal/stats"
)

func testSummary() *stats.Summary {
	return &stats.Summary{
		Countries: []stats.CountrySummary{
			{
				CountryID:      "sweden",
				Name:           "Sweden",
				DemocracyScore: 9.2,
				Classification: country.FullDemocracy,
				Region:         country.Europe,
				Mean:           0.41,
				StdDev:         0.14,
				Min:            -0.1,
				Max:            0.9,
				Observations:   365,
				TotalPosts:     3800,
			},
			{
				CountryID:      "poland",
				Name:           "Poland",
				DemocracyScore: 6.8,
				Classification: country.FlawedDemocracy,
				Region:         country.Europe,
				Mean:           0.12,
				StdDev:         0.29,
				Min:            -0.8,
				Max:            0.95,
				Observations:   365,
				TotalPosts:     13000,
			},
		},
		CorrelationSentiment:  0.992,
		CorrelationVolatility: -0.925,
		Classifications: []stats.ClassificationGroup{
			{Classification: country.FullDemocracy, Countries: 1, MeanSentiment: 0.41, MeanScore: 9.2, MeanVolatility: 0.14},
			{Classification: country.FlawedDemocracy, Countries: 1, MeanSentiment: 0.12, MeanScore: 6.8, MeanVolatility: 0.29},
		},
		Regions: []stats.RegionGroup{
			{Region: country.Europe, Countries: 2, MeanSentiment: 0.265, SentimentStdDev: 0.205, MeanScore: 8.0, MeanVolatility: 0.215},
		},
		Observations: 730,
	}
}

func testMeta() Meta {
	return Meta{
		RunID:       "run-1234",
		Seed:        42,
		StartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		HorizonDays: 365,
		GeneratedAt: time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC),
	}
}

func TestRenderContainsSections(t *testing.T) {
	md := Render(testSummary(), testMeta())

	for _, want := range []string{
		"# Cross-Country Political Sentiment Analysis",
		"## Main Results",
		"r = 0.992",
		"very strong positive correlation",
		"r = -0.925",
		"## Results by Democracy Classification",
		"**Full Democracy** (n=1)",
		"## Country Highlights",
		"Sweden",
		"Poland",
		"## Regional Patterns",
		"### Europe (n=2)",
		"run-1234",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderSuperlatives(t *testing.T) {
	md := Render(testSummary(), testMeta())

	// Sweden has the higher mean, Poland the higher volatility.
	highest := section(md, "### Highest political sentiment")
	if !strings.Contains(highest, "Sweden") {
		t.Errorf("expected Sweden as highest sentiment, got:\n%s", highest)
	}
	volatile := section(md, "### Most volatile sentiment")
	if !strings.Contains(volatile, "Poland") {
		t.Errorf("expected Poland as most volatile, got:\n%s", volatile)
	}
}

func TestSuperlativesSkipUndefinedVolatility(t *testing.T) {
	s := testSummary()
	s.Countries = append(s.Countries, stats.CountrySummary{
		CountryID:      "micronation",
		Name:           "Micronation",
		DemocracyScore: 8.2,
		Classification: country.FullDemocracy,
		Region:         country.Oceania,
		Mean:           0.9,
		StdDev:         stats.Undefined(),
		Observations:   1,
	})

	md := Render(s, testMeta())

	// An undefined stddev must never win a volatility superlative in
	// either direction.
	volatile := section(md, "### Most volatile sentiment")
	if !strings.Contains(volatile, "Poland") {
		t.Errorf("expected Poland as most volatile, got:\n%s", volatile)
	}
	stable := section(md, "### Most stable sentiment")
	if !strings.Contains(stable, "Sweden") {
		t.Errorf("expected Sweden as most stable, got:\n%s", stable)
	}
	// A defined mean still competes normally.
	highest := section(md, "### Highest political sentiment")
	if !strings.Contains(highest, "Micronation") {
		t.Errorf("expected Micronation as highest sentiment, got:\n%s", highest)
	}
}

func TestRenderUndefinedStats(t *testing.T) {
	s := testSummary()
	s.CorrelationSentiment = stats.Undefined()
	s.Regions[0].SentimentStdDev = stats.Undefined()

	md := Render(s, testMeta())
	if !strings.Contains(md, "r = n/a") {
		t.Error("expected undefined correlation rendered as n/a")
	}
	if !strings.Contains(md, "± n/a") {
		t.Error("expected undefined region stddev rendered as n/a")
	}
	if strings.Contains(md, "NaN") {
		t.Error("NaN must never leak into the report")
	}
}

// section returns the text from the given heading to the next heading.
func section(md, heading string) string {
	idx := strings.Index(md, heading)
	if idx < 0 {
		return ""
	}
	rest := md[idx+len(heading):]
	if next := strings.Index(rest, "### "); next >= 0 {
		rest = rest[:next]
	}
	return rest
}

package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/TobiSchelling/polisent/internal/country"
	"github.com/TobiSchelling/polisent/internal/series"
)

// InsufficientDataError reports that a statistic was requested over too
// few countries for it to be defined.
type InsufficientDataError struct {
	Countries int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: correlation requires at least 2 countries, got %d", e.Countries)
}

// IsUndefined reports whether a statistic is the not-computable sentinel.
// Standard deviations over single-member groups and correlations over
// constant series are undefined, never zero.
func IsUndefined(x float64) bool {
	return math.IsNaN(x)
}

// Undefined is the sentinel for statistics that cannot be computed.
func Undefined() float64 {
	return math.NaN()
}

// CountrySummary aggregates one country's sentiment series.
// StdDev is the sample standard deviation (n-1 denominator).
type CountrySummary struct {
	CountryID      string
	Name           string
	DemocracyScore float64
	Classification country.Classification
	Region         country.Region
	Mean           float64
	StdDev         float64
	Min            float64
	Max            float64
	Median         float64
	Observations   int
	TotalPosts     int
	AvgPostsPerDay float64
}

// ClassificationGroup aggregates countries sharing a democracy
// classification.
type ClassificationGroup struct {
	Classification country.Classification
	Countries      int
	MeanSentiment  float64
	MeanScore      float64
	MeanVolatility float64
}

// RegionGroup aggregates countries sharing a region. SentimentStdDev is
// the spread of country means within the region and is undefined for
// single-country regions.
type RegionGroup struct {
	Region          country.Region
	Countries       int
	MeanSentiment   float64
	SentimentStdDev float64
	MeanScore       float64
	MeanVolatility  float64
}

// MonthlyTrend is the per-country, per-calendar-month rollup.
type MonthlyTrend struct {
	CountryID     string
	Month         string // YYYY-MM
	MeanSentiment float64
	StdDev        float64
	Posts         int
}

// Summary holds every statistic derived from one dataset. It is
// recomputed in full on each run, never updated incrementally.
type Summary struct {
	Countries []CountrySummary

	// Pearson correlation of democracy score against per-country mean
	// sentiment, and against per-country sentiment volatility.
	CorrelationSentiment  float64
	CorrelationVolatility float64

	Classifications []ClassificationGroup
	Regions         []RegionGroup
	Monthly         []MonthlyTrend

	Observations int
}

// Summarize computes the full statistics over a generated dataset.
// Correlation over fewer than 2 countries is undefined and returns an
// InsufficientDataError rather than a silent zero.
func Summarize(ds *series.Dataset, countries []country.Profile) (*Summary, error) {
	if len(countries) < 2 {
		return nil, &InsufficientDataError{Countries: len(countries)}
	}

	summaries := make([]CountrySummary, 0, len(countries))
	for _, c := range countries {
		obs := ds.ByCountry(c.ID)
		if len(obs) == 0 {
			return nil, fmt.Errorf("no observations for country %q", c.ID)
		}
		summaries = append(summaries, summarizeCountry(c, obs))
	}

	scores := make([]float64, len(summaries))
	means := make([]float64, len(summaries))
	stddevs := make([]float64, len(summaries))
	for i, s := range summaries {
		scores[i] = s.DemocracyScore
		means[i] = s.Mean
		stddevs[i] = s.StdDev
	}

	return &Summary{
		Countries:             summaries,
		CorrelationSentiment:  stat.Correlation(scores, means, nil),
		CorrelationVolatility: stat.Correlation(scores, stddevs, nil),
		Classifications:       groupByClassification(summaries),
		Regions:               groupByRegion(summaries),
		Monthly:               monthlyTrends(ds),
		Observations:          ds.Len(),
	}, nil
}

func summarizeCountry(c country.Profile, obs []series.Observation) CountrySummary {
	values := make([]float64, len(obs))
	totalPosts := 0
	for i, o := range obs {
		values[i] = o.Sentiment
		totalPosts += o.PostCount
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return CountrySummary{
		CountryID:      c.ID,
		Name:           c.Name,
		DemocracyScore: c.DemocracyScore,
		Classification: c.Classification,
		Region:         c.Region,
		Mean:           stat.Mean(values, nil),
		StdDev:         stat.StdDev(values, nil),
		Min:            min,
		Max:            max,
		Median:         stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Observations:   len(obs),
		TotalPosts:     totalPosts,
		AvgPostsPerDay: float64(totalPosts) / float64(len(obs)),
	}
}

func groupByClassification(summaries []CountrySummary) []ClassificationGroup {
	buckets := make(map[country.Classification][]CountrySummary)
	for _, s := range summaries {
		buckets[s.Classification] = append(buckets[s.Classification], s)
	}

	groups := make([]ClassificationGroup, 0, len(buckets))
	for class, members := range buckets {
		groups = append(groups, ClassificationGroup{
			Classification: class,
			Countries:      len(members),
			MeanSentiment:  meanOf(members, func(s CountrySummary) float64 { return s.Mean }),
			MeanScore:      meanOf(members, func(s CountrySummary) float64 { return s.DemocracyScore }),
			MeanVolatility: meanOf(members, func(s CountrySummary) float64 { return s.StdDev }),
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Classification < groups[j].Classification })
	return groups
}

func groupByRegion(summaries []CountrySummary) []RegionGroup {
	buckets := make(map[country.Region][]CountrySummary)
	for _, s := range summaries {
		buckets[s.Region] = append(buckets[s.Region], s)
	}

	groups := make([]RegionGroup, 0, len(buckets))
	for region, members := range buckets {
		means := make([]float64, len(members))
		for i, m := range members {
			means[i] = m.Mean
		}

		spread := Undefined()
		if len(members) >= 2 {
			spread = stat.StdDev(means, nil)
		}

		groups = append(groups, RegionGroup{
			Region:          region,
			Countries:       len(members),
			MeanSentiment:   stat.Mean(means, nil),
			SentimentStdDev: spread,
			MeanScore:       meanOf(members, func(s CountrySummary) float64 { return s.DemocracyScore }),
			MeanVolatility:  meanOf(members, func(s CountrySummary) float64 { return s.StdDev }),
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Region < groups[j].Region })
	return groups
}

func monthlyTrends(ds *series.Dataset) []MonthlyTrend {
	var trends []MonthlyTrend
	for _, id := range ds.Countries() {
		obs := ds.ByCountry(id)

		var month string
		var values []float64
		var posts int
		flush := func() {
			if month == "" {
				return
			}
			sd := Undefined()
			if len(values) >= 2 {
				sd = stat.StdDev(values, nil)
			}
			trends = append(trends, MonthlyTrend{
				CountryID:     id,
				Month:         month,
				MeanSentiment: stat.Mean(values, nil),
				StdDev:        sd,
				Posts:         posts,
			})
		}

		for _, o := range obs {
			m := o.Date.Format("2006-01")
			if m != month {
				flush()
				month = m
				values = values[:0]
				posts = 0
			}
			values = append(values, o.Sentiment)
			posts += o.PostCount
		}
		flush()
	}
	return trends
}

func meanOf(members []CountrySummary, f func(CountrySummary) float64) float64 {
	values := make([]float64, len(members))
	for i, m := range members {
		values[i] = f(m)
	}
	return stat.Mean(values, nil)
}

package country

import "fmt"

// Classification is the EIU democracy index bucket for a country.
type Classification int

const (
	ClassificationUnknown Classification = iota
	FullDemocracy
	FlawedDemocracy
	HybridRegime
	Authoritarian
)

var classificationNames = map[Classification]string{
	FullDemocracy:   "Full Democracy",
	FlawedDemocracy: "Flawed Democracy",
	HybridRegime:    "Hybrid Regime",
	Authoritarian:   "Authoritarian",
}

var classificationKeys = map[string]Classification{
	"full_democracy":   FullDemocracy,
	"flawed_democracy": FlawedDemocracy,
	"hybrid_regime":    HybridRegime,
	"authoritarian":    Authoritarian,
}

// String returns the display name of the classification.
func (c Classification) String() string {
	if name, ok := classificationNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Key returns the config/storage key of the classification.
func (c Classification) Key() string {
	for k, v := range classificationKeys {
		if v == c {
			return k
		}
	}
	return "unknown"
}

// ParseClassification parses a config key like "full_democracy".
func ParseClassification(s string) (Classification, error) {
	if c, ok := classificationKeys[s]; ok {
		return c, nil
	}
	return ClassificationUnknown, fmt.Errorf("unknown classification %q", s)
}

// ClassifyScore maps a democracy score to its EIU classification bucket.
// Ranges follow the EIU methodology: [8,10] full, [6,8) flawed,
// [4,6) hybrid, [0,4) authoritarian.
func ClassifyScore(score float64) Classification {
	switch {
	case score >= 8:
		return FullDemocracy
	case score >= 6:
		return FlawedDemocracy
	case score >= 4:
		return HybridRegime
	default:
		return Authoritarian
	}
}

// Region is the geographic region tag for a country.
type Region int

const (
	RegionUnknown Region = iota
	Europe
	NorthAmerica
	SouthAmerica
	Asia
	Africa
	Oceania
)

var regionNames = map[Region]string{
	Europe:       "Europe",
	NorthAmerica: "North America",
	SouthAmerica: "South America",
	Asia:         "Asia",
	Africa:       "Africa",
	Oceania:      "Oceania",
}

var regionKeys = map[string]Region{
	"europe":        Europe,
	"north_america": NorthAmerica,
	"south_america": SouthAmerica,
	"asia":          Asia,
	"africa":        Africa,
	"oceania":       Oceania,
}

// String returns the display name of the region.
func (r Region) String() string {
	if name, ok := regionNames[r]; ok {
		return name
	}
	return "Unknown"
}

// Key returns the config/storage key of the region.
func (r Region) Key() string {
	for k, v := range regionKeys {
		if v == r {
			return k
		}
	}
	return "unknown"
}

// ParseRegion parses a config key like "north_america".
func ParseRegion(s string) (Region, error) {
	if r, ok := regionKeys[s]; ok {
		return r, nil
	}
	return RegionUnknown, fmt.Errorf("unknown region %q", s)
}

// Profile is the immutable reference data for one country.
// Loaded once at startup and never mutated afterwards.
type Profile struct {
	ID              string
	Name            string
	DemocracyScore  float64 // 0-10, EIU democracy index
	Classification  Classification
	Region          Region
	VolatilityBase  float64 // stddev of the daily noise term, >= 0
	TrendBase       float64 // linear drift over the horizon
	Population      float64 // millions, drives post volume simulation
	PoliticalSystem string
}

// ConfigurationError reports an invalid profile or generation parameter.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Validate checks the profile's reference data. The classification must
// match the score's EIU bucket so group-by aggregation never silently
// drops a country into the wrong bucket.
func (p *Profile) Validate() error {
	if p.ID == "" {
		return &ConfigurationError{Field: "id", Reason: "must not be empty"}
	}
	if p.DemocracyScore < 0 || p.DemocracyScore > 10 {
		return &ConfigurationError{
			Field:  "democracy_score",
			Reason: fmt.Sprintf("%s: %.2f outside [0, 10]", p.ID, p.DemocracyScore),
		}
	}
	if p.VolatilityBase < 0 {
		return &ConfigurationError{
			Field:  "volatility",
			Reason: fmt.Sprintf("%s: %.2f must be >= 0", p.ID, p.VolatilityBase),
		}
	}
	if p.Classification == ClassificationUnknown {
		return &ConfigurationError{
			Field:  "classification",
			Reason: fmt.Sprintf("%s: missing classification", p.ID),
		}
	}
	if p.Region == RegionUnknown {
		return &ConfigurationError{
			Field:  "region",
			Reason: fmt.Sprintf("%s: missing region", p.ID),
		}
	}
	if want := ClassifyScore(p.DemocracyScore); p.Classification != want {
		return &ConfigurationError{
			Field: "classification",
			Reason: fmt.Sprintf("%s: %q does not match score %.1f (expected %q)",
				p.ID, p.Classification, p.DemocracyScore, want),
		}
	}
	return nil
}

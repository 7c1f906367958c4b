package series

import (
	"hash/fnv"
	"math"
	"sync"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/TobiSchelling/polisent/internal/country"
)

// Default generation constants. Calibrated so that the emergent
// democracy-sentiment correlation is strongly positive and the
// democracy-volatility correlation strongly negative.
const (
	DefaultHorizonDays       = 365
	DefaultSeasonalAmplitude = 0.1
	DefaultWeekendAdjustment = -0.05
	DefaultWeekdayAdjustment = 0.02
	DefaultSeed              = 42
)

// Params configures one generation run. It is an explicit value passed
// into Generate so tests can substitute alternate parameter sets without
// cross-test interference.
type Params struct {
	StartDate         time.Time
	HorizonDays       int
	SeasonalAmplitude float64
	WeekendAdjustment float64 // applied on Saturday and Sunday
	WeekdayAdjustment float64 // applied Monday through Friday
	Seed              uint64
}

// DefaultParams returns generation parameters covering the year ending
// at the given date.
func DefaultParams(end time.Time) Params {
	start := end.AddDate(0, 0, -(DefaultHorizonDays - 1))
	return Params{
		StartDate:         start,
		HorizonDays:       DefaultHorizonDays,
		SeasonalAmplitude: DefaultSeasonalAmplitude,
		WeekendAdjustment: DefaultWeekendAdjustment,
		WeekdayAdjustment: DefaultWeekdayAdjustment,
		Seed:              DefaultSeed,
	}
}

// Generate produces one observation per country per day over the horizon.
//
// Each sentiment value is the sum of a base term derived from the
// country's democracy score, a seasonal sine cycle, a day-of-week
// adjustment, a linear country trend, and Gaussian noise, clipped to
// [-1, 1]. Generation is deterministic for a fixed seed: every country
// draws from its own random source seeded from the run seed and the
// country ID, so results do not depend on goroutine scheduling or on the
// other countries in the set.
func Generate(countries []country.Profile, p Params) (*Dataset, error) {
	if p.HorizonDays <= 0 {
		return nil, &country.ConfigurationError{
			Field:  "horizon_days",
			Reason: "must be positive",
		}
	}
	for i := range countries {
		if err := countries[i].Validate(); err != nil {
			return nil, err
		}
	}

	order := make([]string, len(countries))
	byCountry := make(map[string][]Observation, len(countries))

	var wg sync.WaitGroup
	results := make([][]Observation, len(countries))
	for i := range countries {
		order[i] = countries[i].ID
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = generateCountry(countries[i], p)
		}(i)
	}
	wg.Wait()

	for i, id := range order {
		byCountry[id] = results[i]
	}
	return newDataset(order, byCountry), nil
}

// generateCountry produces the full horizon for a single country using
// its own partitioned random source.
func generateCountry(c country.Profile, p Params) []Observation {
	src := rand.NewSource(countrySeed(p.Seed, c.ID))
	noise := distuv.Normal{Mu: 0, Sigma: c.VolatilityBase, Src: src}
	// Daily post volume scales with population: ~10 posts per million.
	posts := distuv.Poisson{Lambda: math.Max(c.Population*10, 1), Src: src}

	base := (c.DemocracyScore - 5) / 10

	obs := make([]Observation, p.HorizonDays)
	start := p.StartDate
	for day := 0; day < p.HorizonDays; day++ {
		date := start.AddDate(0, 0, day)
		weekend := isWeekend(date)

		seasonal := p.SeasonalAmplitude * math.Sin(2*math.Pi*float64(date.YearDay())/365)

		adj := p.WeekdayAdjustment
		if weekend {
			adj = p.WeekendAdjustment
		}

		trend := c.TrendBase * float64(day) / float64(p.HorizonDays)

		sentiment := base + seasonal + adj + trend
		if c.VolatilityBase > 0 {
			sentiment += noise.Rand()
		}

		obs[day] = Observation{
			CountryID: c.ID,
			Date:      date,
			Sentiment: clip(sentiment, -1, 1),
			IsWeekend: weekend,
			PostCount: postCount(posts),
		}
	}
	return obs
}

// countrySeed derives a per-country seed by folding the country ID into
// the run seed, so random streams stay independent across countries.
func countrySeed(seed uint64, countryID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(countryID))
	return seed ^ h.Sum64()
}

func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func postCount(posts distuv.Poisson) int {
	n := int(posts.Rand())
	if n < 1 {
		return 1
	}
	return n
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

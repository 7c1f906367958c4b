package series

import "time"

// Observation is one simulated sentiment value for a (country, day) pair.
// Observations are never mutated after generation.
type Observation struct {
	CountryID string
	Date      time.Time
	Sentiment float64 // always within [-1, 1]
	IsWeekend bool
	PostCount int // simulated post volume for the day, >= 1
}

// Dataset is the ordered collection of observations produced by one
// generation run. Observations are grouped by country in the order the
// countries were passed to Generate, and by date within each country.
type Dataset struct {
	Observations []Observation

	order []string
	index map[string][]Observation
}

func newDataset(order []string, byCountry map[string][]Observation) *Dataset {
	total := 0
	for _, id := range order {
		total += len(byCountry[id])
	}
	obs := make([]Observation, 0, total)
	for _, id := range order {
		obs = append(obs, byCountry[id]...)
	}
	return &Dataset{Observations: obs, order: order, index: byCountry}
}

// Len returns the total number of observations.
func (d *Dataset) Len() int {
	return len(d.Observations)
}

// Countries returns the country IDs in generation order.
func (d *Dataset) Countries() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// ByCountry returns the observations for one country in date order.
// Returns nil for an unknown country.
func (d *Dataset) ByCountry(id string) []Observation {
	return d.index[id]
}

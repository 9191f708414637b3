package table

import (
	"encoding/json"
	"math"

	"github.com/kennygrant/codash/overview"
	"github.com/kennygrant/codash/series"
)

// DefaultScale is the population per capita values are expressed against
const DefaultScale = 100000

// Row holds the metrics for one region over the date filter
type Row struct {
	GeoID               string
	Name                string
	Population          int
	Selected            bool
	MaxSelectionReached bool

	// Rank is set by Rank, zero otherwise
	Rank int

	CasesNew                       float64
	CasesAccumulated               float64
	CasesPerCapita                 float64
	CasesPerCapitaAccumulated      float64
	DeathsNew                      float64
	DeathsAccumulated              float64
	DeathsPerCapita                float64
	DeathsPerCapitaAccumulated     float64
	MortalityPercentage            float64
	MortalityPercentageAccumulated float64
}

// Value returns the value of metric for this row, NaN for an unknown metric
func (r Row) Value(metric Metric) float64 {
	switch metric {
	case CasesNew:
		return r.CasesNew
	case CasesAccumulated:
		return r.CasesAccumulated
	case CasesPerCapita:
		return r.CasesPerCapita
	case CasesPerCapitaAccumulated:
		return r.CasesPerCapitaAccumulated
	case DeathsNew:
		return r.DeathsNew
	case DeathsAccumulated:
		return r.DeathsAccumulated
	case DeathsPerCapita:
		return r.DeathsPerCapita
	case DeathsPerCapitaAccumulated:
		return r.DeathsPerCapitaAccumulated
	case MortalityPercentage:
		return r.MortalityPercentage
	case MortalityPercentageAccumulated:
		return r.MortalityPercentageAccumulated
	}
	return math.NaN()
}

// Cells returns the display text for every metric, keyed by metric
func (r Row) Cells() map[Metric]string {
	cells := make(map[Metric]string, len(metrics))
	for _, m := range metrics {
		cells[m] = Cell(r.Value(m))
	}
	return cells
}

// MarshalJSON writes non-finite metrics as null
func (r Row) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"geoId":               r.GeoID,
		"name":                r.Name,
		"population":          r.Population,
		"selected":            r.Selected,
		"maxSelectionReached": r.MaxSelectionReached,
	}
	if r.Rank > 0 {
		out["rank"] = r.Rank
	}
	for _, m := range metrics {
		v := r.Value(m)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[string(m)] = nil
			continue
		}
		out[string(m)] = v
	}
	return json.Marshal(out)
}

// Project returns one row per region in dataset order with metrics over the filter dates.
// New values are summed over the range, accumulated values are totals at the end date.
// If the filter has no dates, nil is returned.
func Project(dataset *series.Dataset, filter overview.DateFilter, selected map[string]bool, maxSelectionReached bool, scale float64) []Row {
	if dataset == nil || !filter.Set() {
		return nil
	}
	if scale <= 0 {
		scale = DefaultScale
	}

	rows := make([]Row, 0, len(dataset.GeoIDs))
	for _, geoID := range dataset.GeoIDs {
		region := dataset.Region(geoID)
		if region == nil {
			continue
		}

		cases, deaths := region.Range(filter.StartDate, filter.EndDate)
		casesTotal, deathsTotal := region.AccumulatedAt(filter.EndDate)

		row := Row{
			GeoID:               geoID,
			Name:                region.Name,
			Population:          region.Population,
			Selected:            selected[geoID],
			MaxSelectionReached: maxSelectionReached,

			CasesNew:          float64(cases),
			CasesAccumulated:  float64(casesTotal),
			DeathsNew:         float64(deaths),
			DeathsAccumulated: float64(deathsTotal),
		}

		row.CasesPerCapita = perCapita(row.CasesNew, region.Population, scale)
		row.CasesPerCapitaAccumulated = perCapita(row.CasesAccumulated, region.Population, scale)
		row.DeathsPerCapita = perCapita(row.DeathsNew, region.Population, scale)
		row.DeathsPerCapitaAccumulated = perCapita(row.DeathsAccumulated, region.Population, scale)
		row.MortalityPercentage = percentage(row.DeathsNew, row.CasesNew)
		row.MortalityPercentageAccumulated = percentage(row.DeathsAccumulated, row.CasesAccumulated)

		rows = append(rows, row)
	}

	return rows
}

// ProjectState projects the current data, filter and selections of state
func ProjectState(state overview.State, scale float64) []Row {
	return Project(state.Data, state.DateFilter, state.SelectedGeoIDs, state.MaxSelectionReached(), scale)
}

// SelectedRows returns only the selected rows
func SelectedRows(rows []Row) []Row {
	var selected []Row
	for _, r := range rows {
		if r.Selected {
			selected = append(selected, r)
		}
	}
	return selected
}

func perCapita(value float64, population int, scale float64) float64 {
	if population == 0 {
		return math.NaN()
	}
	return value / float64(population) * scale
}

func percentage(value, total float64) float64 {
	if total == 0 {
		return math.NaN()
	}
	return value / total * 100
}

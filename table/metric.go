// Package table projects a dataset into per region rows for the table and ranking views.
package table

import (
	"github.com/kennygrant/codash/overview"
)

// Metric names one numeric column of a row
type Metric string

// Metrics shown in tables and rankings
const (
	CasesNew                       Metric = "casesNew"
	CasesAccumulated               Metric = "casesAccumulated"
	CasesPerCapita                 Metric = "casesPerCapita"
	CasesPerCapitaAccumulated      Metric = "casesPerCapitaAccumulated"
	DeathsNew                      Metric = "deathsNew"
	DeathsAccumulated              Metric = "deathsAccumulated"
	DeathsPerCapita                Metric = "deathsPerCapita"
	DeathsPerCapitaAccumulated     Metric = "deathsPerCapitaAccumulated"
	MortalityPercentage            Metric = "mortalityPercentage"
	MortalityPercentageAccumulated Metric = "mortalityPercentageAccumulated"
)

var metrics = []Metric{
	CasesNew,
	CasesAccumulated,
	CasesPerCapita,
	CasesPerCapitaAccumulated,
	DeathsNew,
	DeathsAccumulated,
	DeathsPerCapita,
	DeathsPerCapitaAccumulated,
	MortalityPercentage,
	MortalityPercentageAccumulated,
}

var metricNames = map[Metric]string{
	CasesNew:                       "Cases",
	CasesAccumulated:               "Cases (total)",
	CasesPerCapita:                 "Cases per capita",
	CasesPerCapitaAccumulated:      "Cases per capita (total)",
	DeathsNew:                      "Deaths",
	DeathsAccumulated:              "Deaths (total)",
	DeathsPerCapita:                "Deaths per capita",
	DeathsPerCapitaAccumulated:     "Deaths per capita (total)",
	MortalityPercentage:            "Mortality %",
	MortalityPercentageAccumulated: "Mortality % (total)",
}

// Metrics returns every metric in column order
func Metrics() []Metric {
	return append([]Metric(nil), metrics...)
}

// Valid returns true if m is a known metric
func (m Metric) Valid() bool {
	_, ok := metricNames[m]
	return ok
}

// Name returns the column heading for m
func (m Metric) Name() string {
	return metricNames[m]
}

// MetricOptions returns a set of options for the ranking metric select
func MetricOptions() (options []overview.Option) {
	for _, m := range metrics {
		options = append(options, overview.Option{Name: m.Name(), Value: string(m)})
	}
	return options
}

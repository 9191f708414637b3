package overview

// Option is used to generate options for selects in the view
type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DateFilterOptions returns a set of options for the date filter select
func DateFilterOptions() (options []Option) {

	options = append(options, Option{Name: "All Time", Value: string(DateFilterTotal)})
	options = append(options, Option{Name: "Last Day", Value: string(DateFilterLastDay)})
	options = append(options, Option{Name: "7 Days", Value: string(DateFilterLast7Days)})
	options = append(options, Option{Name: "14 Days", Value: string(DateFilterLast14Days)})
	options = append(options, Option{Name: "30 Days", Value: string(DateFilterLast30Days)})
	options = append(options, Option{Name: "Custom", Value: string(DateFilterCustom)})
	options = append(options, Option{Name: "Single Day", Value: string(DateFilterSingleDay)})

	return options
}

// ViewModeOptions returns a set of options for the view mode select
func ViewModeOptions() (options []Option) {

	options = append(options, Option{Name: "Table and Graphs", Value: string(ViewModeCombo)})
	options = append(options, Option{Name: "Graphs", Value: string(ViewModeGraphs)})
	options = append(options, Option{Name: "Table", Value: string(ViewModeTable)})

	return options
}

// GeoIDOptions returns a region option per geoId in display order
func (s State) GeoIDOptions() (options []Option) {
	if s.Data == nil {
		return options
	}
	for _, r := range s.Data.Regions {
		options = append(options, Option{Name: r.Name, Value: r.GeoID})
	}
	return options
}

package overview

import (
	"time"

	"github.com/kennygrant/codash/series"
)

// DefaultPreselectedGeoIDs are selected whenever new data arrives, if present in the data
var DefaultPreselectedGeoIDs = []string{"WW", "US", "CN", "DE", "FR", "ES", "IT", "CH"}

// defaultTrailingMode is the date filter applied to freshly fetched data
const defaultTrailingMode = DateFilterLast14Days

// ParseFunc turns raw records into a dataset
type ParseFunc func(records []series.Record, options series.ParseOptions) (*series.Dataset, error)

// Reducer computes the next state from a state and an action
// Reduce never modifies the state passed in
type Reducer struct {
	preselected []string
	parse       ParseFunc
}

// NewReducer returns a reducer which preselects the given geoIds
// if preselected is nil the default list is used
func NewReducer(preselected []string) *Reducer {
	if preselected == nil {
		preselected = DefaultPreselectedGeoIDs
	}
	return &Reducer{
		preselected: preselected,
		parse:       series.Parse,
	}
}

// WithParser returns a copy of the reducer using parse to read records
func (r *Reducer) WithParser(parse ParseFunc) *Reducer {
	c := *r
	c.parse = parse
	return &c
}

// Reduce returns the state which follows action
func (r *Reducer) Reduce(state State, action Action) State {
	switch a := action.(type) {

	case SetNotification:
		next := state.Clone()
		next.Notification = Notification{
			Message:     a.Message,
			Variant:     a.Variant,
			ShowSpinner: a.ShowSpinner,
		}
		if next.Notification.Variant == "" {
			next.Notification.Variant = VariantInfo
		}
		return next

	case ClearNotification:
		next := state.Clone()
		next.Notification = Notification{}
		return next

	case GetDataStart:
		next := InitialState()
		next.LoadingStatus = StatusPending
		return next

	case GetDataSuccess:
		next, ok := r.load(state, a.Records, series.DefaultParseOptions())
		if !ok {
			return next
		}
		next.DateFilter = trailingFilter(next.Data, defaultTrailingMode)
		return next

	case ReparseData:
		if state.Data == nil || len(state.Data.RawData) == 0 {
			return withDanger(state, MessageNoDataLoaded)
		}
		next, ok := r.load(state, state.Data.RawData, a.Options)
		if !ok {
			return next
		}
		next.DateFilter = rederive(state.DateFilter, next.Data)
		return next

	case GetDataFail:
		next := withDanger(state, a.Error)
		next.LoadingStatus = StatusFail
		return next

	case ChangeDateFilterMode:
		return changeDateFilterMode(state, a)

	case ChangeDateFilterInterval:
		filter := state.DateFilter
		if !a.StartDate.IsZero() {
			filter.StartDate = a.StartDate
		}
		if !a.EndDate.IsZero() {
			filter.EndDate = a.EndDate
		}
		if filter.Set() && filter.StartDate.After(filter.EndDate) {
			return withDanger(state, MessageInvalidDateRange)
		}
		next := state.Clone()
		filter.Mode = DateFilterCustom
		next.DateFilter = filter
		return next

	case ChangeGeoIDSelection:
		// Keys must stay a subset of the loaded geoIds
		if !state.Data.HasGeoID(a.GeoID) {
			return state
		}
		next := state.Clone()
		next.SelectedGeoIDs[a.GeoID] = a.Selected
		return next

	case ChangeViewMode:
		next := state.Clone()
		next.ViewMode = a.ViewMode
		next.TableVisible = true
		next.GraphsVisible = true
		switch a.ViewMode {
		case ViewModeGraphs:
			next.TableVisible = false
		case ViewModeTable:
			next.GraphsVisible = false
		default:
			next.ViewMode = ViewModeCombo
		}
		return next

	case ChangeRankingsVisibility:
		next := state.Clone()
		next.RankingsVisible = a.Visible
		return next
	}

	return state
}

// load parses records into a new state, selections are recomputed rather than merged
// on failure the prior data is kept and ok is false
func (r *Reducer) load(state State, records []series.Record, options series.ParseOptions) (State, bool) {
	parsed, err := r.parse(records, options)
	if err != nil || parsed == nil {
		return withDanger(state, MessageInvalidAPIData), false
	}

	next := state.Clone()
	next.LoadingStatus = StatusSuccess
	next.Data = parsed
	next.ParseOptions = options
	next.SelectedGeoIDs = make(map[string]bool, len(parsed.GeoIDs))
	for _, geoID := range parsed.GeoIDs {
		next.SelectedGeoIDs[geoID] = false
	}
	for _, geoID := range r.preselected {
		if _, ok := next.SelectedGeoIDs[geoID]; ok {
			next.SelectedGeoIDs[geoID] = true
		}
	}
	return next, true
}

// changeDateFilterMode applies a mode, reading dates from the data or the action
func changeDateFilterMode(state State, a ChangeDateFilterMode) State {
	var filter DateFilter

	switch a.Mode {
	case DateFilterCustom:
		filter = DateFilter{StartDate: a.StartDate, EndDate: a.EndDate, Mode: a.Mode}
	case DateFilterSingleDay:
		day := a.StartDate
		if day.IsZero() {
			day = a.EndDate
		}
		filter = DateFilter{StartDate: day, EndDate: day, Mode: a.Mode}
	default:
		mode := a.Mode
		if !mode.Valid() {
			mode = DateFilterTotal
		}
		filter = trailingFilter(state.Data, mode)
	}

	if a.Mode.Explicit() && (!filter.Set() || filter.StartDate.After(filter.EndDate)) {
		return withDanger(state, MessageInvalidDateRange)
	}

	next := state.Clone()
	next.DateFilter = filter
	return next
}

// trailingFilter returns the filter for a mode computed from the data end date
// with no data the dates are left unset
func trailingFilter(data *series.Dataset, mode DateFilterMode) DateFilter {
	filter := DateFilter{Mode: mode}
	if data == nil || data.EndDate.IsZero() {
		return filter
	}

	filter.StartDate = data.StartDate
	filter.EndDate = data.EndDate

	switch mode {
	case DateFilterLastDay:
		filter.StartDate = data.EndDate
	case DateFilterLast7Days, DateFilterLast14Days, DateFilterLast30Days:
		filter.StartDate = data.EndDate.AddDate(0, 0, -trailingDays[mode])
	}

	return filter
}

// rederive applies the current filter to new data after a re-parse
// explicit intervals are kept but clamped into the new data range
func rederive(current DateFilter, data *series.Dataset) DateFilter {
	if !current.Mode.Explicit() {
		return trailingFilter(data, current.Mode)
	}
	if !current.Set() {
		return trailingFilter(data, defaultTrailingMode)
	}

	filter := current
	filter.StartDate = clamp(filter.StartDate, data.StartDate, data.EndDate)
	filter.EndDate = clamp(filter.EndDate, data.StartDate, data.EndDate)
	return filter
}

func clamp(t, from, to time.Time) time.Time {
	if t.Before(from) {
		return from
	}
	if t.After(to) {
		return to
	}
	return t
}

// withDanger returns a copy of state showing an error message
func withDanger(state State, message string) State {
	next := state.Clone()
	next.Notification = Notification{
		Message: message,
		Variant: VariantDanger,
	}
	return next
}

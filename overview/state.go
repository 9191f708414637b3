// Package overview holds the dashboard state and the reducer which moves it
// from one state to the next in response to actions.
package overview

import (
	"time"

	"github.com/kennygrant/codash/series"
)

// MaxSelectedGeoIDs is the most regions which may be selected at once
const MaxSelectedGeoIDs = 30

// AsyncStatus is the loading status of the data
type AsyncStatus string

// Loading statuses
const (
	StatusIdle    AsyncStatus = "IDLE"
	StatusPending AsyncStatus = "PENDING"
	StatusSuccess AsyncStatus = "SUCCESS"
	StatusFail    AsyncStatus = "FAIL"
)

// DateFilterMode selects how the date range is chosen
type DateFilterMode string

// Date filter modes
const (
	DateFilterTotal      DateFilterMode = "TOTAL"
	DateFilterLastDay    DateFilterMode = "LAST_DAY"
	DateFilterLast7Days  DateFilterMode = "LAST_7_DAYS"
	DateFilterLast14Days DateFilterMode = "LAST_14_DAYS"
	DateFilterLast30Days DateFilterMode = "LAST_30_DAYS"
	DateFilterCustom     DateFilterMode = "CUSTOM"
	DateFilterSingleDay  DateFilterMode = "SINGLE_DAY"
)

// trailingDays is the window length for the trailing modes
var trailingDays = map[DateFilterMode]int{
	DateFilterLast7Days:  7,
	DateFilterLast14Days: 14,
	DateFilterLast30Days: 30,
}

// Valid returns true if this is a known mode
func (m DateFilterMode) Valid() bool {
	switch m {
	case DateFilterTotal, DateFilterLastDay, DateFilterLast7Days, DateFilterLast14Days,
		DateFilterLast30Days, DateFilterCustom, DateFilterSingleDay:
		return true
	}
	return false
}

// Explicit returns true if the mode takes its dates from the action rather than the data
func (m DateFilterMode) Explicit() bool {
	return m == DateFilterCustom || m == DateFilterSingleDay
}

// ViewMode selects which panels are visible
type ViewMode string

// View modes
const (
	ViewModeCombo  ViewMode = "COMBO"
	ViewModeGraphs ViewMode = "GRAPHS"
	ViewModeTable  ViewMode = "TABLE"
)

// Notification variants
const (
	VariantInfo   = "info"
	VariantDanger = "danger"
)

// Notification message keys, translated by the view
const (
	MessageNoDataLoaded     = "global:error_no_data_loaded"
	MessageInvalidAPIData   = "global:error_invalid_api_data"
	MessageInvalidDateRange = "global:error_invalid_date_range"
)

// Notification is a message shown to the user
type Notification struct {
	Message     string `json:"message,omitempty"`
	Variant     string `json:"variant,omitempty"`
	ShowSpinner bool   `json:"showSpinner"`
}

// DateFilter is the active date range, both dates inclusive
// zero dates mean no range has been chosen yet
type DateFilter struct {
	StartDate time.Time
	EndDate   time.Time
	Mode      DateFilterMode
}

// Set returns true if both dates are set
func (f DateFilter) Set() bool {
	return !f.StartDate.IsZero() && !f.EndDate.IsZero()
}

// State is the overview state for the dashboard
type State struct {
	Notification    Notification
	LoadingStatus   AsyncStatus
	Data            *series.Dataset
	ParseOptions    series.ParseOptions
	ViewMode        ViewMode
	TableVisible    bool
	GraphsVisible   bool
	RankingsVisible bool
	DateFilter      DateFilter
	SelectedGeoIDs  map[string]bool
}

// InitialState returns the state before any data is loaded
func InitialState() State {
	return State{
		LoadingStatus:   StatusIdle,
		ParseOptions:    series.DefaultParseOptions(),
		ViewMode:        ViewModeCombo,
		TableVisible:    true,
		GraphsVisible:   true,
		RankingsVisible: true,
		DateFilter: DateFilter{
			Mode: DateFilterTotal,
		},
		SelectedGeoIDs: map[string]bool{},
	}
}

// Clone returns a copy of the state which shares nothing mutable with s
// the dataset is shared as it is read only once parsed
func (s State) Clone() State {
	c := s
	c.SelectedGeoIDs = make(map[string]bool, len(s.SelectedGeoIDs))
	for k, v := range s.SelectedGeoIDs {
		c.SelectedGeoIDs[k] = v
	}
	return c
}

// SelectedCount returns the number of selected regions
func (s State) SelectedCount() int {
	count := 0
	for _, selected := range s.SelectedGeoIDs {
		if selected {
			count++
		}
	}
	return count
}

// MaxSelectionReached returns true if no more regions may be selected
func (s State) MaxSelectionReached() bool {
	return s.SelectedCount() >= MaxSelectedGeoIDs
}

package overview

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kennygrant/codash/series"
)

// Action types
const (
	ActionGetDataStart             = "ACTION_GET_DATA_START"
	ActionGetDataSuccess           = "ACTION_GET_DATA_SUCCESS"
	ActionGetDataFail              = "ACTION_GET_DATA_FAIL"
	ActionReparseData              = "ACTION_REPARSE_DATA"
	ActionChangeDateFilterMode     = "ACTION_CHANGE_DATE_FILTER_MODE"
	ActionChangeDateFilterInterval = "ACTION_CHANGE_DATE_FILTER_INTERVAL"
	ActionChangeGeoIDSelection     = "ACTION_CHANGE_GEOID_SELECTION"
	ActionChangeViewMode           = "ACTION_CHANGE_VIEW_MODE"
	ActionChangeRankingsVisibility = "ACTION_CHANGE_RANKINGS_VISIBILITY"
	ActionSetNotification          = "ACTION_SET_NOTIFICATION"
	ActionClearNotification        = "ACTION_CLEAR_NOTIFICATION"
)

// Action is dispatched to the store to change state
type Action interface {
	Type() string
}

// GetDataStart resets the state before a fetch
type GetDataStart struct{}

// GetDataSuccess carries the fetched records
type GetDataSuccess struct {
	Records []series.Record
}

// GetDataFail carries the fetch error
type GetDataFail struct {
	Error string
}

// ReparseData parses the retained records again with new options
type ReparseData struct {
	Options series.ParseOptions
}

// ChangeDateFilterMode selects a date filter mode
// StartDate and EndDate are only read for the explicit modes
type ChangeDateFilterMode struct {
	Mode      DateFilterMode
	StartDate time.Time
	EndDate   time.Time
}

// ChangeDateFilterInterval sets one or both bounds of the date filter
type ChangeDateFilterInterval struct {
	StartDate time.Time
	EndDate   time.Time
}

// ChangeGeoIDSelection selects or deselects one region
type ChangeGeoIDSelection struct {
	GeoID    string
	Selected bool
}

// ChangeViewMode selects which panels are visible
type ChangeViewMode struct {
	ViewMode ViewMode
}

// ChangeRankingsVisibility shows or hides the ranking tables
type ChangeRankingsVisibility struct {
	Visible bool
}

// SetNotification shows a message
type SetNotification struct {
	Message     string
	Variant     string
	ShowSpinner bool
}

// ClearNotification hides the message
type ClearNotification struct{}

func (GetDataStart) Type() string             { return ActionGetDataStart }
func (GetDataSuccess) Type() string           { return ActionGetDataSuccess }
func (GetDataFail) Type() string              { return ActionGetDataFail }
func (ReparseData) Type() string              { return ActionReparseData }
func (ChangeDateFilterMode) Type() string     { return ActionChangeDateFilterMode }
func (ChangeDateFilterInterval) Type() string { return ActionChangeDateFilterInterval }
func (ChangeGeoIDSelection) Type() string     { return ActionChangeGeoIDSelection }
func (ChangeViewMode) Type() string           { return ActionChangeViewMode }
func (ChangeRankingsVisibility) Type() string { return ActionChangeRankingsVisibility }
func (SetNotification) Type() string          { return ActionSetNotification }
func (ClearNotification) Type() string        { return ActionClearNotification }

// rawAction is the wire form of every action, fields are read per type
type rawAction struct {
	Type        string               `json:"type"`
	Records     []series.Record      `json:"records"`
	Error       string               `json:"error"`
	Options     *series.ParseOptions `json:"options"`
	Mode        DateFilterMode       `json:"mode"`
	StartDate   string               `json:"startDate"`
	EndDate     string               `json:"endDate"`
	GeoID       string               `json:"geoId"`
	Selected    bool                 `json:"selected"`
	ViewMode    ViewMode             `json:"viewMode"`
	Visible     bool                 `json:"visible"`
	Message     string               `json:"message"`
	Variant     string               `json:"variant"`
	ShowSpinner bool                 `json:"showSpinner"`
}

// DecodeAction decodes an action from json of the form {"type":"ACTION_...", ...}
// dates use the app date format
func DecodeAction(data []byte) (Action, error) {
	var raw rawAction
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("overview: invalid action json:%w", err)
	}

	start, err := parseOptionalDate(raw.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(raw.EndDate)
	if err != nil {
		return nil, err
	}

	switch raw.Type {
	case ActionGetDataStart:
		return GetDataStart{}, nil
	case ActionGetDataSuccess:
		return GetDataSuccess{Records: raw.Records}, nil
	case ActionGetDataFail:
		return GetDataFail{Error: raw.Error}, nil
	case ActionReparseData:
		options := series.DefaultParseOptions()
		if raw.Options != nil {
			options = *raw.Options
		}
		return ReparseData{Options: options}, nil
	case ActionChangeDateFilterMode:
		if !raw.Mode.Valid() {
			return nil, fmt.Errorf("overview: invalid date filter mode:%q", raw.Mode)
		}
		return ChangeDateFilterMode{Mode: raw.Mode, StartDate: start, EndDate: end}, nil
	case ActionChangeDateFilterInterval:
		return ChangeDateFilterInterval{StartDate: start, EndDate: end}, nil
	case ActionChangeGeoIDSelection:
		if raw.GeoID == "" {
			return nil, fmt.Errorf("overview: missing geoId")
		}
		return ChangeGeoIDSelection{GeoID: raw.GeoID, Selected: raw.Selected}, nil
	case ActionChangeViewMode:
		return ChangeViewMode{ViewMode: raw.ViewMode}, nil
	case ActionChangeRankingsVisibility:
		return ChangeRankingsVisibility{Visible: raw.Visible}, nil
	case ActionSetNotification:
		return SetNotification{Message: raw.Message, Variant: raw.Variant, ShowSpinner: raw.ShowSpinner}, nil
	case ActionClearNotification:
		return ClearNotification{}, nil
	}

	return nil, fmt.Errorf("overview: unknown action type:%q", raw.Type)
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := series.ParseDate(s)
	if err != nil {
		return d, fmt.Errorf("overview: invalid date:%q", s)
	}
	return d, nil
}

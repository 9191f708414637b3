package overview

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennygrant/codash/series"
)

func date(s string) time.Time {
	d, err := series.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// testRecords returns daily records for the US and Japan from 1 April to 20 May 2021
func testRecords() []series.Record {
	var records []series.Record
	for d := date("2021-04-01"); !d.After(date("2021-05-20")); d = d.AddDate(0, 0, 1) {
		rep := d.Format("02/01/2006")
		records = append(records,
			series.Record{DateRep: rep, Cases: 100, Deaths: 2, Name: "United_States_of_America", GeoID: "US", Population: 329064917, Continent: "America"},
			series.Record{DateRep: rep, Cases: 10, Deaths: 1, Name: "Japan", GeoID: "JP", Population: 126860299, Continent: "Asia"},
		)
	}
	return records
}

// loaded returns the state after a successful fetch of the test records
func loaded(t *testing.T) State {
	t.Helper()
	state := NewReducer(nil).Reduce(InitialState(), GetDataSuccess{Records: testRecords()})
	require.Equal(t, StatusSuccess, state.LoadingStatus)
	require.NotNil(t, state.Data)
	return state
}

func TestInitialState(t *testing.T) {
	state := InitialState()
	assert.Equal(t, StatusIdle, state.LoadingStatus)
	assert.Nil(t, state.Data)
	assert.Equal(t, ViewModeCombo, state.ViewMode)
	assert.True(t, state.TableVisible)
	assert.True(t, state.GraphsVisible)
	assert.Equal(t, DateFilterTotal, state.DateFilter.Mode)
	assert.False(t, state.DateFilter.Set())
	assert.Empty(t, state.SelectedGeoIDs)
	assert.False(t, state.MaxSelectionReached())
}

func TestGetDataStart(t *testing.T) {
	state := loaded(t)
	state.ViewMode = ViewModeTable

	next := NewReducer(nil).Reduce(state, GetDataStart{})
	want := InitialState()
	want.LoadingStatus = StatusPending
	assert.Equal(t, want, next)
}

func TestGetDataSuccess(t *testing.T) {
	state := loaded(t)

	assert.Equal(t, []string{"WW", "JP", "US"}, state.Data.GeoIDs)
	assert.Equal(t, map[string]bool{"WW": true, "US": true, "JP": false}, state.SelectedGeoIDs)

	assert.Equal(t, DateFilterLast14Days, state.DateFilter.Mode)
	assert.Equal(t, date("2021-05-06"), state.DateFilter.StartDate)
	assert.Equal(t, date("2021-05-20"), state.DateFilter.EndDate)
}

func TestGetDataSuccessPreselection(t *testing.T) {
	reducer := NewReducer([]string{"JP", "XX"})
	state := reducer.Reduce(InitialState(), GetDataSuccess{Records: testRecords()})
	assert.Equal(t, map[string]bool{"WW": false, "US": false, "JP": true}, state.SelectedGeoIDs)
}

func TestGetDataSuccessInvalid(t *testing.T) {
	state := loaded(t)
	reducer := NewReducer(nil)

	next := reducer.Reduce(state, GetDataSuccess{Records: nil})
	assert.Same(t, state.Data, next.Data, "prior data should be kept")
	assert.Equal(t, MessageInvalidAPIData, next.Notification.Message)
	assert.Equal(t, VariantDanger, next.Notification.Variant)
	assert.Equal(t, state.SelectedGeoIDs, next.SelectedGeoIDs)

	// A parser reporting failure is treated the same way
	failing := reducer.WithParser(func([]series.Record, series.ParseOptions) (*series.Dataset, error) {
		return nil, errors.New("bad data")
	})
	next = failing.Reduce(state, GetDataSuccess{Records: testRecords()})
	assert.Same(t, state.Data, next.Data)
	assert.Equal(t, MessageInvalidAPIData, next.Notification.Message)
}

func TestGetDataFail(t *testing.T) {
	state := NewReducer(nil).Reduce(InitialState(), GetDataFail{Error: "network down"})
	assert.Equal(t, StatusFail, state.LoadingStatus)
	assert.Equal(t, "network down", state.Notification.Message)
	assert.Equal(t, VariantDanger, state.Notification.Variant)
}

func TestReparseWithoutData(t *testing.T) {
	state := InitialState()
	next := NewReducer(nil).Reduce(state, ReparseData{Options: series.DefaultParseOptions()})

	assert.Nil(t, next.Data)
	assert.Equal(t, MessageNoDataLoaded, next.Notification.Message)
	assert.Equal(t, VariantDanger, next.Notification.Variant)
	assert.Equal(t, StatusIdle, next.LoadingStatus)
}

func TestReparse(t *testing.T) {
	reducer := NewReducer(nil)
	state := loaded(t)
	state = reducer.Reduce(state, ChangeDateFilterMode{Mode: DateFilterLast7Days})
	state = reducer.Reduce(state, ChangeGeoIDSelection{GeoID: "JP", Selected: true})

	next := reducer.Reduce(state, ReparseData{Options: series.ParseOptions{World: true, Continent: "Asia"}})

	assert.Equal(t, []string{"WW", "JP"}, next.Data.GeoIDs)
	assert.Equal(t, "Asia", next.ParseOptions.Continent)

	// Selections are recomputed rather than merged
	assert.Equal(t, map[string]bool{"WW": true, "JP": false}, next.SelectedGeoIDs)

	// The date filter mode survives a reparse
	assert.Equal(t, DateFilterLast7Days, next.DateFilter.Mode)
	assert.Equal(t, date("2021-05-13"), next.DateFilter.StartDate)
	assert.Equal(t, date("2021-05-20"), next.DateFilter.EndDate)

	// Raw data is carried over so a second reparse still works
	again := reducer.Reduce(next, ReparseData{Options: series.DefaultParseOptions()})
	assert.Equal(t, []string{"WW", "JP", "US"}, again.Data.GeoIDs)
}

func TestReparseKeepsCustomInterval(t *testing.T) {
	reducer := NewReducer(nil)
	state := loaded(t)
	state.DateFilter = DateFilter{StartDate: date("2021-01-01"), EndDate: date("2021-04-10"), Mode: DateFilterCustom}

	next := reducer.Reduce(state, ReparseData{Options: series.DefaultParseOptions()})
	assert.Equal(t, DateFilterCustom, next.DateFilter.Mode)
	assert.Equal(t, date("2021-04-01"), next.DateFilter.StartDate, "start is clamped into the data")
	assert.Equal(t, date("2021-04-10"), next.DateFilter.EndDate)
}

func TestChangeDateFilterMode(t *testing.T) {
	reducer := NewReducer(nil)
	state := loaded(t)

	tests := []struct {
		mode  DateFilterMode
		start string
		end   string
	}{
		{DateFilterTotal, "2021-04-01", "2021-05-20"},
		{DateFilterLastDay, "2021-05-20", "2021-05-20"},
		{DateFilterLast7Days, "2021-05-13", "2021-05-20"},
		{DateFilterLast14Days, "2021-05-06", "2021-05-20"},
		{DateFilterLast30Days, "2021-04-20", "2021-05-20"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			next := reducer.Reduce(state, ChangeDateFilterMode{Mode: tt.mode})
			assert.Equal(t, tt.mode, next.DateFilter.Mode)
			assert.Equal(t, date(tt.start), next.DateFilter.StartDate)
			assert.Equal(t, date(tt.end), next.DateFilter.EndDate)
		})
	}
}

func TestChangeDateFilterModeWithoutData(t *testing.T) {
	next := NewReducer(nil).Reduce(InitialState(), ChangeDateFilterMode{Mode: DateFilterLast7Days})
	assert.Equal(t, DateFilterLast7Days, next.DateFilter.Mode)
	assert.False(t, next.DateFilter.Set())
}

func TestChangeDateFilterModeExplicit(t *testing.T) {
	reducer := NewReducer(nil)
	state := loaded(t)

	next := reducer.Reduce(state, ChangeDateFilterMode{Mode: DateFilterCustom, StartDate: date("2021-04-05"), EndDate: date("2021-04-25")})
	assert.Equal(t, DateFilter{StartDate: date("2021-04-05"), EndDate: date("2021-04-25"), Mode: DateFilterCustom}, next.DateFilter)

	next = reducer.Reduce(state, ChangeDateFilterMode{Mode: DateFilterSingleDay, StartDate: date("2021-04-05")})
	assert.Equal(t, DateFilter{StartDate: date("2021-04-05"), EndDate: date("2021-04-05"), Mode: DateFilterSingleDay}, next.DateFilter)

	// Reversed or missing dates are refused and the filter kept
	next = reducer.Reduce(state, ChangeDateFilterMode{Mode: DateFilterCustom, StartDate: date("2021-04-25"), EndDate: date("2021-04-05")})
	assert.Equal(t, state.DateFilter, next.DateFilter)
	assert.Equal(t, MessageInvalidDateRange, next.Notification.Message)

	next = reducer.Reduce(state, ChangeDateFilterMode{Mode: DateFilterCustom, StartDate: date("2021-04-25")})
	assert.Equal(t, state.DateFilter, next.DateFilter)
	assert.Equal(t, MessageInvalidDateRange, next.Notification.Message)
}

func TestChangeDateFilterInterval(t *testing.T) {
	reducer := NewReducer(nil)
	state := loaded(t)

	next := reducer.Reduce(state, ChangeDateFilterInterval{StartDate: date("2021-05-01")})
	assert.Equal(t, date("2021-05-01"), next.DateFilter.StartDate)
	assert.Equal(t, date("2021-05-20"), next.DateFilter.EndDate)
	assert.Equal(t, DateFilterCustom, next.DateFilter.Mode)

	next = reducer.Reduce(next, ChangeDateFilterInterval{EndDate: date("2021-05-10")})
	assert.Equal(t, date("2021-05-01"), next.DateFilter.StartDate)
	assert.Equal(t, date("2021-05-10"), next.DateFilter.EndDate)

	bad := reducer.Reduce(next, ChangeDateFilterInterval{StartDate: date("2021-05-15")})
	assert.Equal(t, next.DateFilter, bad.DateFilter)
	assert.Equal(t, MessageInvalidDateRange, bad.Notification.Message)
}

func TestChangeGeoIDSelection(t *testing.T) {
	reducer := NewReducer(nil)
	state := loaded(t)

	next := reducer.Reduce(state, ChangeGeoIDSelection{GeoID: "JP", Selected: true})
	assert.True(t, next.SelectedGeoIDs["JP"])
	assert.Equal(t, 3, next.SelectedCount())

	next = reducer.Reduce(next, ChangeGeoIDSelection{GeoID: "US", Selected: false})
	assert.False(t, next.SelectedGeoIDs["US"])

	// Unknown geoIds are ignored
	unknown := reducer.Reduce(next, ChangeGeoIDSelection{GeoID: "XX", Selected: true})
	assert.Equal(t, next, unknown)
	_, ok := unknown.SelectedGeoIDs["XX"]
	assert.False(t, ok)
}

func TestChangeViewMode(t *testing.T) {
	reducer := NewReducer(nil)

	tests := []struct {
		mode   ViewMode
		want   ViewMode
		table  bool
		graphs bool
	}{
		{ViewModeCombo, ViewModeCombo, true, true},
		{ViewModeGraphs, ViewModeGraphs, false, true},
		{ViewModeTable, ViewModeTable, true, false},
		{ViewMode("OTHER"), ViewModeCombo, true, true},
	}

	for _, tt := range tests {
		next := reducer.Reduce(InitialState(), ChangeViewMode{ViewMode: tt.mode})
		assert.Equal(t, tt.want, next.ViewMode, "mode:%s", tt.mode)
		assert.Equal(t, tt.table, next.TableVisible, "mode:%s table", tt.mode)
		assert.Equal(t, tt.graphs, next.GraphsVisible, "mode:%s graphs", tt.mode)
	}

	next := reducer.Reduce(InitialState(), ChangeRankingsVisibility{Visible: false})
	assert.False(t, next.RankingsVisible)
}

func TestNotifications(t *testing.T) {
	reducer := NewReducer(nil)

	next := reducer.Reduce(InitialState(), SetNotification{Message: "global:loading", ShowSpinner: true})
	assert.Equal(t, Notification{Message: "global:loading", Variant: VariantInfo, ShowSpinner: true}, next.Notification)

	next = reducer.Reduce(next, ClearNotification{})
	assert.Equal(t, Notification{}, next.Notification)
}

func TestUnknownAction(t *testing.T) {
	state := loaded(t)
	assert.Equal(t, state, NewReducer(nil).Reduce(state, nil))
}

func TestMaxSelectionReached(t *testing.T) {
	state := InitialState()
	for i := 0; i < MaxSelectedGeoIDs-1; i++ {
		state.SelectedGeoIDs[fmt.Sprintf("G%d", i)] = true
	}
	state.SelectedGeoIDs["OFF"] = false
	assert.False(t, state.MaxSelectionReached())

	state.SelectedGeoIDs["LAST"] = true
	assert.True(t, state.MaxSelectionReached())
}

// TestReduceDoesNotMutate runs a sequence of actions and checks no input state changes
func TestReduceDoesNotMutate(t *testing.T) {
	reducer := NewReducer(nil)

	actions := []Action{
		GetDataStart{},
		GetDataSuccess{Records: testRecords()},
		ChangeGeoIDSelection{GeoID: "JP", Selected: true},
		ChangeDateFilterMode{Mode: DateFilterLast30Days},
		ChangeDateFilterInterval{StartDate: date("2021-05-02")},
		ChangeDateFilterMode{Mode: DateFilterCustom, StartDate: date("2021-05-20"), EndDate: date("2021-05-01")},
		ChangeViewMode{ViewMode: ViewModeTable},
		ReparseData{Options: series.ParseOptions{Continent: "America"}},
		GetDataSuccess{Records: nil},
		SetNotification{Message: "hello"},
		ClearNotification{},
		GetDataFail{Error: "failed"},
		nil,
	}

	state := InitialState()
	for _, action := range actions {
		before := state.Clone()
		next := reducer.Reduce(state, action)
		assert.Equal(t, before, state, "action:%T mutated its input", action)
		assert.NotNil(t, next.SelectedGeoIDs, "action:%T", action)
		if next.DateFilter.Set() {
			assert.False(t, next.DateFilter.StartDate.After(next.DateFilter.EndDate), "action:%T", action)
		}
		for geoID := range next.SelectedGeoIDs {
			assert.True(t, next.Data.HasGeoID(geoID), "action:%T selected unknown:%s", action, geoID)
		}
		state = next
	}
}

package overview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennygrant/codash/series"
)

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		json string
		want Action
	}{
		{`{"type":"ACTION_GET_DATA_START"}`, GetDataStart{}},
		{`{"type":"ACTION_GET_DATA_FAIL","error":"offline"}`, GetDataFail{Error: "offline"}},
		{`{"type":"ACTION_REPARSE_DATA"}`, ReparseData{Options: series.ParseOptions{World: true}}},
		{`{"type":"ACTION_REPARSE_DATA","options":{"world":false,"continent":"Asia"}}`, ReparseData{Options: series.ParseOptions{Continent: "Asia"}}},
		{`{"type":"ACTION_CHANGE_DATE_FILTER_MODE","mode":"LAST_7_DAYS"}`, ChangeDateFilterMode{Mode: DateFilterLast7Days}},
		{`{"type":"ACTION_CHANGE_DATE_FILTER_MODE","mode":"CUSTOM","startDate":"2021-05-01","endDate":"2021-05-10"}`,
			ChangeDateFilterMode{Mode: DateFilterCustom, StartDate: date("2021-05-01"), EndDate: date("2021-05-10")}},
		{`{"type":"ACTION_CHANGE_DATE_FILTER_INTERVAL","endDate":"2021-05-10"}`, ChangeDateFilterInterval{EndDate: date("2021-05-10")}},
		{`{"type":"ACTION_CHANGE_GEOID_SELECTION","geoId":"US","selected":true}`, ChangeGeoIDSelection{GeoID: "US", Selected: true}},
		{`{"type":"ACTION_CHANGE_VIEW_MODE","viewMode":"GRAPHS"}`, ChangeViewMode{ViewMode: ViewModeGraphs}},
		{`{"type":"ACTION_CHANGE_RANKINGS_VISIBILITY","visible":true}`, ChangeRankingsVisibility{Visible: true}},
		{`{"type":"ACTION_SET_NOTIFICATION","message":"global:loading","showSpinner":true}`, SetNotification{Message: "global:loading", ShowSpinner: true}},
		{`{"type":"ACTION_CLEAR_NOTIFICATION"}`, ClearNotification{}},
	}

	for _, tt := range tests {
		action, err := DecodeAction([]byte(tt.json))
		require.NoError(t, err, tt.json)
		assert.Equal(t, tt.want, action, tt.json)
		assert.Equal(t, tt.want.Type(), action.Type())
	}
}

func TestDecodeActionRecords(t *testing.T) {
	action, err := DecodeAction([]byte(`{"type":"ACTION_GET_DATA_SUCCESS","records":[{"dateRep":"20/05/2021","cases":"12","geoId":"US"}]}`))
	require.NoError(t, err)

	success, ok := action.(GetDataSuccess)
	require.True(t, ok)
	require.Len(t, success.Records, 1)
	assert.Equal(t, series.Count(12), success.Records[0].Cases)
}

func TestDecodeActionInvalid(t *testing.T) {
	tests := []string{
		`not json`,
		`{"type":"ACTION_UNKNOWN"}`,
		`{}`,
		`{"type":"ACTION_CHANGE_DATE_FILTER_MODE","mode":"LAST_YEAR"}`,
		`{"type":"ACTION_CHANGE_DATE_FILTER_INTERVAL","startDate":"20/05/2021"}`,
		`{"type":"ACTION_CHANGE_GEOID_SELECTION","selected":true}`,
	}

	for _, data := range tests {
		_, err := DecodeAction([]byte(data))
		assert.Error(t, err, data)
	}
}

func TestOptions(t *testing.T) {
	assert.Len(t, DateFilterOptions(), 7)
	assert.Equal(t, string(ViewModeCombo), ViewModeOptions()[0].Value)

	assert.Empty(t, InitialState().GeoIDOptions())

	state := NewReducer(nil).Reduce(InitialState(), GetDataSuccess{Records: testRecords()})
	options := state.GeoIDOptions()
	require.Len(t, options, 3)
	assert.Equal(t, Option{Name: "Worldwide", Value: "WW"}, options[0])
	assert.Equal(t, Option{Name: "United States of America", Value: "US"}, options[2])
}

package series

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Record is one row of the case distribution api - one region on one day
// Dates are reported as dd/mm/yyyy
type Record struct {
	DateRep     string `json:"dateRep"`
	Day         Count  `json:"day"`
	Month       Count  `json:"month"`
	Year        Count  `json:"year"`
	Cases       Count  `json:"cases"`
	Deaths      Count  `json:"deaths"`
	Name        string `json:"countriesAndTerritories"`
	GeoID       string `json:"geoId"`
	CountryCode string `json:"countryterritoryCode"`
	Population  Count  `json:"popData2019"`
	Continent   string `json:"continentExp"`
}

// Date returns the date of this record, reading dateRep first
// and falling back to the separate day, month and year fields
func (r Record) Date() (time.Time, error) {
	if r.DateRep != "" {
		date, err := time.Parse("02/01/2006", strings.TrimSpace(r.DateRep))
		if err != nil {
			return date, fmt.Errorf("series: invalid dateRep:%q geoId:%s", r.DateRep, r.GeoID)
		}
		return date, nil
	}

	if r.Year < 1 || r.Month < 1 || r.Month > 12 || r.Day < 1 || r.Day > 31 {
		return time.Time{}, fmt.Errorf("series: missing date geoId:%s", r.GeoID)
	}
	return time.Date(int(r.Year), time.Month(r.Month), int(r.Day), 0, 0, 0, 0, time.UTC), nil
}

// DisplayName returns the name with the underscores used by the api replaced
func (r Record) DisplayName() string {
	return strings.Replace(strings.TrimSpace(r.Name), "_", " ", -1)
}

// Count is a whole number the api sends as a JSON number, a string, or not at all
// empty and null values read as zero
type Count int

// UnmarshalJSON accepts numbers and quoted numbers
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}

	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		err := json.Unmarshal(data, &s)
		if err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*c = 0
			return nil
		}
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		// Some counts arrive as floats e.g. 1.0
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("series: invalid count:%s", s)
		}
		v = int(f)
	}
	*c = Count(v)
	return nil
}

// envelope is the top level of the api response
type envelope struct {
	Records []Record `json:"records"`
}

// DecodeRecords reads the api response {"records":[...]} from r
func DecodeRecords(r io.Reader) ([]Record, error) {
	var e envelope
	err := json.NewDecoder(r).Decode(&e)
	if err != nil {
		return nil, fmt.Errorf("series: error decoding records:%w", err)
	}
	return e.Records, nil
}

// EncodeRecords writes records in the api response format
func EncodeRecords(w io.Writer, records []Record) error {
	return json.NewEncoder(w).Encode(envelope{Records: records})
}

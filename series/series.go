package series

import (
	"fmt"
	"strings"
	"time"
)

// GeoIDWorld is the geoId of the synthetic worldwide aggregate
const GeoIDWorld = "WW"

// Region stores data for one country or territory (or the world aggregate)
type Region struct {

	// The two letter id used by the data source, e.g. US
	GeoID string

	// The display name of the region
	Name string

	// The three letter country code (if known)
	CountryCode string

	// The continent of the region - blank for the world aggregate
	Continent string

	// The population of the area (if known)
	Population int

	// Days containing all our data - one per day from dataset start to end
	Days []*Day
}

// String returns a description of the region for logs
func (r *Region) String() string {
	return fmt.Sprintf("%s %s (%d)", r.GeoID, r.Name, len(r.Days))
}

// World returns true if this is the worldwide aggregate
func (r *Region) World() bool {
	return r.GeoID == GeoIDWorld
}

// Key converts a value into one suitable for use in urls
func (r *Region) Key() string {
	return strings.Replace(strings.ToLower(r.Name), " ", "-", -1)
}

// Match returns true if this region matches the geoId
// performs a case insensitive match
func (r *Region) Match(geoID string) bool {
	return strings.EqualFold(r.GeoID, geoID)
}

// FirstDay returns the first day in the region
// a blank day is returned if no days
func (r *Region) FirstDay() *Day {
	if len(r.Days) == 0 {
		return &Day{}
	}
	return r.Days[0]
}

// LastDay returns the last day in the region
// a blank day is returned if no days
func (r *Region) LastDay() *Day {
	if len(r.Days) == 0 {
		return &Day{}
	}
	return r.Days[len(r.Days)-1]
}

// index returns the index of date in Days, which may be out of bounds
func (r *Region) index(date time.Time) int {
	return daysBetween(r.FirstDay().Date, date)
}

// Day returns the day for the given date, or nil if outside the region's days
func (r *Region) Day(date time.Time) *Day {
	if len(r.Days) == 0 {
		return nil
	}
	i := r.index(date)
	if i < 0 || i > len(r.Days)-1 {
		return nil
	}
	return r.Days[i]
}

// Range returns the new cases and deaths summed over the dates from start to end inclusive
// dates outside the region's days are ignored
func (r *Region) Range(start, end time.Time) (cases, deaths int) {
	if len(r.Days) == 0 || end.Before(start) {
		return 0, 0
	}

	from := r.index(start)
	to := r.index(end)
	if from < 0 {
		from = 0
	}
	if to > len(r.Days)-1 {
		to = len(r.Days) - 1
	}

	for i := from; i <= to; i++ {
		cases += r.Days[i].Cases
		deaths += r.Days[i].Deaths
	}
	return cases, deaths
}

// Period returns the days from start to end inclusive, clipped to the region's days
func (r *Region) Period(start, end time.Time) []*Day {
	if len(r.Days) == 0 || end.Before(start) {
		return nil
	}

	from := r.index(start)
	to := r.index(end)
	if from < 0 {
		from = 0
	}
	if to > len(r.Days)-1 {
		to = len(r.Days) - 1
	}
	if from > to {
		return nil
	}
	return r.Days[from : to+1]
}

// AccumulatedAt returns the running totals at date (inclusive)
// dates before the first day return zero, dates after the last day return the final totals
func (r *Region) AccumulatedAt(date time.Time) (cases, deaths int) {
	if len(r.Days) == 0 {
		return 0, 0
	}
	i := r.index(date)
	if i < 0 {
		return 0, 0
	}
	if i > len(r.Days)-1 {
		i = len(r.Days) - 1
	}
	return r.Days[i].CasesAccumulated, r.Days[i].DeathsAccumulated
}

// TotalDeaths returns the cumulative deaths for this region
func (r *Region) TotalDeaths() int {
	return r.LastDay().DeathsAccumulated
}

// TotalCases returns the cumulative cases for this region
func (r *Region) TotalCases() int {
	return r.LastDay().CasesAccumulated
}

// addDays adds days from start to end inclusive, zeroed out
func (r *Region) addDays(start, end time.Time) {
	count := daysBetween(start, end) + 1
	r.Days = make([]*Day, 0, count)
	date := Truncate(start)
	for i := 0; i < count; i++ {
		r.Days = append(r.Days, &Day{Date: date})
		date = date.AddDate(0, 0, 1)
	}
}

// accumulate fills in the running totals on every day
func (r *Region) accumulate() {
	var cases, deaths int
	for _, d := range r.Days {
		cases += d.Cases
		deaths += d.Deaths
		d.CasesAccumulated = cases
		d.DeathsAccumulated = deaths
	}
}

// Merge adds the new data from each day of region to our days
// both regions must cover the same dates
func (r *Region) Merge(region *Region) error {
	if len(r.Days) != len(region.Days) {
		return fmt.Errorf("series: mismatch on days for merge:%s %s", r, region)
	}
	for i, d := range r.Days {
		err := d.MergeDay(region.Days[i])
		if err != nil {
			return err
		}
	}
	return nil
}

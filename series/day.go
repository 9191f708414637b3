package series

import (
	"fmt"
	"time"
)

// DateFormat is the format used for dates throughout the app
const DateFormat = "2006-01-02"

// Day represents data for a day in a region
// Cases and Deaths are new on this day, the accumulated values are running totals
type Day struct {
	Date              time.Time
	Cases             int
	Deaths            int
	CasesAccumulated  int
	DeathsAccumulated int
}

// IsZero returns true if this day has no new data
func (d *Day) IsZero() bool {
	return d.Cases == 0 && d.Deaths == 0
}

// String returns a string representation of this Day
func (d *Day) String() string {
	return fmt.Sprintf("%s %d-%d (%d-%d)", d.DateMachine(), d.Cases, d.Deaths, d.CasesAccumulated, d.DeathsAccumulated)
}

// DateMachine returns a string for machines
func (d *Day) DateMachine() string {
	return d.Date.Format(DateFormat)
}

// DateDisplay returns a string for humans
func (d *Day) DateDisplay() string {
	return d.Date.Format("2 Jan, 2006")
}

// MergeDay adds the new data from the given day to this day
// accumulated values are recalculated afterwards by the caller
func (d *Day) MergeDay(day *Day) error {
	if !d.Date.Equal(day.Date) {
		return fmt.Errorf("series: mismatch on date:%s inday:%s", d.Date, day.Date)
	}
	d.Cases += day.Cases
	d.Deaths += day.Deaths
	return nil
}

// Truncate returns the date at midnight UTC
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a date in our app format
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}

// daysBetween returns the number of whole days from start to end
func daysBetween(start, end time.Time) int {
	return int(Truncate(end).Sub(Truncate(start)).Hours() / 24)
}

package series

import (
	"fmt"
	"sort"
	"time"
)

// Slice is a collection of regions
type Slice []*Region

func (slice Slice) Len() int      { return len(slice) }
func (slice Slice) Swap(i, j int) { slice[i], slice[j] = slice[j], slice[i] }

// Sort the world aggregate first, then alphabetically by name
func (slice Slice) Less(i, j int) bool {
	if slice[i].World() != slice[j].World() {
		return slice[i].World()
	}
	if slice[i].Name != slice[j].Name {
		return slice[i].Name < slice[j].Name
	}
	return slice[i].GeoID < slice[j].GeoID
}

// FetchRegion returns a region (if found) for this geoId
func (slice Slice) FetchRegion(geoID string) (*Region, error) {
	for _, r := range slice {
		if r.Match(geoID) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("series: region not found:%s", geoID)
}

// Dataset is the normalized form of the raw records, ready for display
// it should be treated as read only once parsed
type Dataset struct {

	// RawData holds the records the dataset was parsed from, for re-parsing
	RawData []Record

	// GeoIDs in display order, the world aggregate first
	GeoIDs []string

	// StartDate and EndDate are the first and last dates with data
	StartDate time.Time
	EndDate   time.Time

	// Regions in the same order as GeoIDs
	Regions Slice

	byGeoID map[string]*Region
}

// Region returns the region for geoID or nil
func (d *Dataset) Region(geoID string) *Region {
	if d == nil {
		return nil
	}
	return d.byGeoID[geoID]
}

// HasGeoID returns true if geoID is in the dataset
func (d *Dataset) HasGeoID(geoID string) bool {
	return d.Region(geoID) != nil
}

// Days returns the number of days in the dataset
func (d *Dataset) Days() int {
	if d == nil || d.StartDate.IsZero() {
		return 0
	}
	return daysBetween(d.StartDate, d.EndDate) + 1
}

// String returns a summary of the dataset for logs
func (d *Dataset) String() string {
	return fmt.Sprintf("%d regions %s..%s", len(d.GeoIDs), d.StartDate.Format(DateFormat), d.EndDate.Format(DateFormat))
}

// TopRegions selects the top n regions by total deaths, excluding the world aggregate
// a negative n returns every region
func (d *Dataset) TopRegions(n int) Slice {
	var collection Slice
	for _, r := range d.Regions {
		if r.World() {
			continue
		}
		collection = append(collection, r)
	}

	sort.SliceStable(collection, func(i, j int) bool {
		return collection[i].TotalDeaths() > collection[j].TotalDeaths()
	})

	if n >= 0 && len(collection) > n {
		collection = collection[:n]
	}
	return collection
}

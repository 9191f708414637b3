package series

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrNoRecords is returned when there is nothing to parse
var ErrNoRecords = errors.New("series: no records")

// ParseOptions control how raw records are turned into a dataset
type ParseOptions struct {
	// World adds a worldwide aggregate region if the records don't include one
	// when false any worldwide records are dropped
	World bool `json:"world"`

	// Continent restricts the dataset to regions on one continent, blank for all
	Continent string `json:"continent,omitempty"`
}

// DefaultParseOptions returns the options used for a fresh fetch
func DefaultParseOptions() ParseOptions {
	return ParseOptions{World: true}
}

// Parse converts raw records into a dataset of regions with one day per date
// from the earliest to the latest date in the records.
// Duplicate rows for the same region and date are summed.
func Parse(records []Record, options ParseOptions) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	type entry struct {
		date   time.Time
		cases  int
		deaths int
	}

	var start, end time.Time
	regions := make(map[string]*Region)
	entries := make(map[string][]entry)

	for i, record := range records {
		geoID := strings.TrimSpace(record.GeoID)
		if geoID == "" {
			return nil, fmt.Errorf("series: missing geoId at record:%d", i)
		}

		date, err := record.Date()
		if err != nil {
			return nil, fmt.Errorf("series: invalid record:%d error:%w", i, err)
		}

		if record.Population < 0 {
			return nil, fmt.Errorf("series: invalid population at record:%d geoId:%s", i, geoID)
		}

		// A worldwide record is only used for the whole world, a continent gets its own aggregate
		world := geoID == GeoIDWorld
		if world && (!options.World || options.Continent != "") {
			continue
		}
		if !world && options.Continent != "" && !strings.EqualFold(record.Continent, options.Continent) {
			continue
		}

		if start.IsZero() || date.Before(start) {
			start = date
		}
		if end.IsZero() || date.After(end) {
			end = date
		}

		r, ok := regions[geoID]
		if !ok {
			r = &Region{GeoID: geoID}
			regions[geoID] = r
		}
		// Later records fill in details missing on earlier ones
		if name := record.DisplayName(); name != "" {
			r.Name = name
		}
		if record.CountryCode != "" {
			r.CountryCode = record.CountryCode
		}
		if record.Continent != "" {
			r.Continent = record.Continent
		}
		if record.Population > 0 {
			r.Population = int(record.Population)
		}

		entries[geoID] = append(entries[geoID], entry{date: date, cases: int(record.Cases), deaths: int(record.Deaths)})
	}

	if len(regions) == 0 {
		return nil, fmt.Errorf("series: no regions left after filtering continent:%q", options.Continent)
	}

	// Fill in days for every region so that they share dates
	for geoID, r := range regions {
		if r.Name == "" {
			r.Name = geoID
		}
		r.addDays(start, end)
		for _, e := range entries[geoID] {
			d := r.Days[daysBetween(start, e.date)]
			d.Cases += e.cases
			d.Deaths += e.deaths
		}
	}

	if options.World && regions[GeoIDWorld] == nil {
		regions[GeoIDWorld] = worldRegion(regions, start, end)
	}

	dataset := &Dataset{
		RawData:   records,
		StartDate: start,
		EndDate:   end,
		byGeoID:   regions,
	}

	for _, r := range regions {
		if r.World() && r.Name == GeoIDWorld {
			r.Name = "Worldwide"
		}
		r.accumulate()
		dataset.Regions = append(dataset.Regions, r)
	}

	sort.Sort(dataset.Regions)
	for _, r := range dataset.Regions {
		dataset.GeoIDs = append(dataset.GeoIDs, r.GeoID)
	}

	return dataset, nil
}

// worldRegion builds the worldwide aggregate from all other regions
func worldRegion(regions map[string]*Region, start, end time.Time) *Region {
	world := &Region{
		GeoID: GeoIDWorld,
		Name:  "Worldwide",
	}
	world.addDays(start, end)

	for _, r := range regions {
		world.Population += r.Population
		// Days are built over the same dates so merge cannot fail
		_ = world.Merge(r)
	}

	return world
}

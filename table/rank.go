package table

import (
	"math"
	"sort"

	"github.com/kennygrant/codash/series"
)

// Rank returns the rows without the world aggregate, sorted descending by metric
// with competition ranks set: equal values share a rank and the next value
// takes its position, so 10,10,7 rank 1,1,3. NaN values sort last.
// Values are only equal if their bits are identical.
func Rank(rows []Row, metric Metric) []Row {
	ranked := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.GeoID == series.GeoIDWorld {
			continue
		}
		ranked = append(ranked, r)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return descending(ranked[i].Value(metric), ranked[j].Value(metric))
	})

	var previous uint64
	rank := 0
	for i := range ranked {
		bits := math.Float64bits(ranked[i].Value(metric))
		if i == 0 || bits != previous {
			rank = i + 1
		}
		ranked[i].Rank = rank
		previous = bits
	}

	return ranked
}

// Rankings ranks rows by every metric
func Rankings(rows []Row) map[Metric][]Row {
	rankings := make(map[Metric][]Row, len(metrics))
	for _, m := range metrics {
		rankings[m] = Rank(rows, m)
	}
	return rankings
}

func descending(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}

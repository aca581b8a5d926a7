package corridor

import (
	"github.com/lintang-b-s/Corridorx/pkg/datastructure"
	"github.com/lintang-b-s/Corridorx/pkg/geo"
)

type SpatialIndex interface {
	SearchCorridor(route []geo.Coordinate, maxDistance float64) ([]int, bool)
}

// Prefilter. drop stations that cannot be within maxDistance of the route, using a spatial index
// built over the same stations slice. the admitted set of a later Filter call is unchanged and the
// relative order of the kept stations is preserved.
func Prefilter(index SpatialIndex, route []geo.Coordinate, stations []datastructure.Station,
	maxDistance float64) []datastructure.Station {
	if index == nil || len(route) < 2 {
		return stations
	}

	positions, ok := index.SearchCorridor(route, maxDistance)
	if !ok {
		return stations
	}

	candidates := make([]datastructure.Station, 0, len(positions))
	for _, pos := range positions {
		if pos >= 0 && pos < len(stations) {
			candidates = append(candidates, stations[pos])
		}
	}
	return candidates
}

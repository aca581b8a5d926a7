package corridor

import (
	"context"
	"math"
	"sort"

	"github.com/lintang-b-s/Corridorx/pkg"
	"github.com/lintang-b-s/Corridorx/pkg/concurrent"
	"github.com/lintang-b-s/Corridorx/pkg/datastructure"
	"github.com/lintang-b-s/Corridorx/pkg/geo"
)

const DefaultMaxDistance = pkg.DEFAULT_MAX_DISTANCE_MILES

/*
Filter. stations within maxDistance miles of the route, ordered by great-circle distance from the
first route point (ties keep input order).

for every station the route segments are scanned in order and the scan stops at the first segment
that brings the running minimum under maxDistance. the stored DistanceFromRoute is that running
minimum, so for admitted stations it can be larger than the true minimum over the whole route.
admission is unaffected.

routes with fewer than 2 points have no segments and match nothing.
*/
func Filter(route []geo.Coordinate, stations []datastructure.Station, maxDistance float64) []datastructure.MatchedStation {
	matched, _ := NewFilterer().FilterContext(context.Background(), route, stations, maxDistance)
	return matched
}

type Filterer struct {
	projector  geo.SegmentProjector
	numWorkers int
}

type Option func(*Filterer)

// WithProjector. replace the sampling segment distance, e.g. with geo.PointToSegmentDistanceExact
func WithProjector(projector geo.SegmentProjector) Option {
	return func(f *Filterer) {
		f.projector = projector
	}
}

// WithWorkers. scan stations on numWorkers goroutines. numWorkers <= 1 scans on the caller goroutine.
func WithWorkers(numWorkers int) Option {
	return func(f *Filterer) {
		f.numWorkers = numWorkers
	}
}

func NewFilterer(opts ...Option) *Filterer {
	f := &Filterer{
		projector:  geo.PointToSegmentDistance,
		numWorkers: 1,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type scanResult struct {
	index    int
	distance float64
}

// FilterContext. same as Filter. if ctx is cancelled before the scan completes, no partial result is returned.
func (f *Filterer) FilterContext(ctx context.Context, route []geo.Coordinate, stations []datastructure.Station,
	maxDistance float64) ([]datastructure.MatchedStation, error) {
	if len(route) < 2 {
		return []datastructure.MatchedStation{}, nil
	}

	scan := func(i int) scanResult {
		return scanResult{
			index:    i,
			distance: MinDistanceToRoute(stations[i].GetCoordinate(), route, maxDistance, f.projector),
		}
	}

	distances := make([]float64, len(stations))
	if f.numWorkers > 1 && len(stations) > 1 {
		jobs := make([]int, len(stations))
		for i := range jobs {
			jobs[i] = i
		}
		results, err := concurrent.Run[int, scanResult](ctx, f.numWorkers, jobs, scan)
		if err != nil {
			return nil, err
		}
		for _, res := range results {
			distances[res.index] = res.distance
		}
	} else {
		for i := range stations {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			distances[i] = scan(i).distance
		}
	}

	matched := make([]datastructure.MatchedStation, 0)
	for i, s := range stations {
		if distances[i] <= maxDistance {
			matched = append(matched, datastructure.NewMatchedStation(s, distances[i]))
		}
	}

	SortByDistanceFromStart(matched, route[0])
	return matched, nil
}

// MinDistanceToRoute. running minimum segment distance (miles), stopping at the first segment that satisfies maxDistance.
func MinDistanceToRoute(p geo.Coordinate, route []geo.Coordinate, maxDistance float64,
	projector geo.SegmentProjector) float64 {
	minDistance := math.Inf(1)
	for i := 0; i < len(route)-1; i++ {
		minDistance = math.Min(minDistance, projector(p, route[i], route[i+1]))
		if minDistance <= maxDistance {
			break
		}
	}
	return minDistance
}

// SortByDistanceFromStart. stable sort by great-circle distance from start
func SortByDistanceFromStart(matched []datastructure.MatchedStation, start geo.Coordinate) {
	keys := make([]float64, len(matched))
	order := make([]int, len(matched))
	for i := range matched {
		keys[i] = start.DistanceTo(matched[i].GetCoordinate())
		order[i] = i
	}

	sort.SliceStable(order, func(i, j int) bool {
		return keys[order[i]] < keys[order[j]]
	})

	sorted := make([]datastructure.MatchedStation, len(matched))
	for i, idx := range order {
		sorted[i] = matched[idx]
	}
	copy(matched, sorted)
}

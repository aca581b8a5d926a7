package spatialindex

import (
	"math"
	"sort"

	"github.com/lintang-b-s/Corridorx/pkg"
	"github.com/lintang-b-s/Corridorx/pkg/datastructure"
	"github.com/lintang-b-s/Corridorx/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

// sampled route arcs sit within half a sample spacing of the true arc
const arcSlackMiles = 0.5

// StationIndex. r-tree over station positions. data is the station position in the slice given to Build.
type StationIndex struct {
	tr   *rtree.RTreeG[int]
	size int
}

func NewStationIndex() *StationIndex {
	var tr rtree.RTreeG[int]
	return &StationIndex{
		tr: &tr,
	}
}

// Build. index every station as a point entry
func (si *StationIndex) Build(stations []datastructure.Station, log *zap.Logger) {
	log.Info("Building station R-tree spatial index...", zap.Int("stations", len(stations)))
	for i, s := range stations {
		p := [2]float64{s.GetLon(), s.GetLat()}
		si.tr.Insert(p, p, i)
	}
	si.size = len(stations)
	log.Info("Station R-tree spatial index built.")
}

func (si *StationIndex) Len() int {
	return si.size
}

// SearchBoundingBox. station positions inside bb, ascending.
func (si *StationIndex) SearchBoundingBox(bb *datastructure.BoundingBox) []int {
	results := make([]int, 0, 16)
	si.tr.Search([2]float64{bb.GetMinLon(), bb.GetMinLat()}, [2]float64{bb.GetMaxLon(), bb.GetMaxLat()},
		func(min, max [2]float64, data int) bool {
			results = append(results, data)
			return true
		})
	// keep input order so that ties in the final ranking stay stable
	sort.Ints(results)
	return results
}

// SearchCorridor. station positions that can possibly lie within maxDistance miles of the route.
// ok is false when no finite lat/lon box covers the corridor (polar caps, antimeridian); callers must then scan every station.
func (si *StationIndex) SearchCorridor(route []geo.Coordinate, maxDistance float64) ([]int, bool) {
	bb, ok := RouteBoundingBox(route, maxDistance)
	if !ok {
		return nil, false
	}
	return si.SearchBoundingBox(bb), true
}

/*
RouteBoundingBox. lat/lon box containing every point within padMiles of the route arcs.

the arcs are sampled like geo.PointToSegmentDistance does, so poleward bulges of long great-circle
segments are covered. latitude is padded by the angular distance; longitude by the half-width of a
spherical cap of radius padMiles at the most poleward latitude of the box.
*/
func RouteBoundingBox(route []geo.Coordinate, padMiles float64) (*datastructure.BoundingBox, bool) {
	if len(route) == 0 {
		return nil, false
	}

	bb := datastructure.NewBoundingBox(route[0].Lat, route[0].Lon, route[0].Lat, route[0].Lon)
	for i := 0; i < len(route)-1; i++ {
		start, end := route[i], route[i+1]
		n := geo.SegmentSampleCount(start.DistanceTo(end))
		for j := 0; j <= n; j++ {
			p := geo.Interpolate(start, end, float64(j)/float64(n))
			bb.Extend(p.Lat, p.Lon)
		}
	}

	angular := (padMiles + arcSlackMiles) / pkg.EARTH_RADIUS_MILES
	latPad := angular * 180.0 / math.Pi

	minLat := bb.GetMinLat() - latPad
	maxLat := bb.GetMaxLat() + latPad
	if minLat <= -90 || maxLat >= 90 {
		return nil, false
	}

	poleward := math.Max(math.Abs(minLat), math.Abs(maxLat)) * math.Pi / 180.0
	ratio := math.Sin(angular) / math.Cos(poleward)
	if ratio >= 1 {
		return nil, false
	}
	lonPad := math.Asin(ratio) * 180.0 / math.Pi

	minLon := bb.GetMinLon() - lonPad
	maxLon := bb.GetMaxLon() + lonPad
	if minLon < -180 || maxLon > 180 {
		return nil, false
	}

	return datastructure.NewBoundingBox(minLat, minLon, maxLat, maxLon), true
}

package corridor

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/lintang-b-s/Corridorx/pkg/datastructure"
	"github.com/lintang-b-s/Corridorx/pkg/geo"
	"github.com/lintang-b-s/Corridorx/pkg/spatialindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

func station(name string, lon, lat float64) datastructure.Station {
	return datastructure.NewStation(lat, lon, datastructure.StationProperties{
		Name:     name,
		Postcode: "PC " + name,
		URL:      "https://example.com/" + name,
	})
}

// ~69 mile north-south segment
func northSouthRoute() []geo.Coordinate {
	return geo.NewCoordinatesFromLonLat([][2]float64{{-0.1, 51.5}, {-0.1, 52.5}})
}

func names(matched []datastructure.MatchedStation) []string {
	res := make([]string, len(matched))
	for i, m := range matched {
		res[i] = m.Properties.Name
	}
	return res
}

func randomStations(r *rand.Rand, n int, minLon, maxLon, minLat, maxLat float64) []datastructure.Station {
	stations := make([]datastructure.Station, n)
	for i := range stations {
		lon := minLon + r.Float64()*(maxLon-minLon)
		lat := minLat + r.Float64()*(maxLat-minLat)
		stations[i] = station(fmt.Sprintf("s%d", i), lon, lat)
	}
	return stations
}

func zigzagRoute() []geo.Coordinate {
	return geo.NewCoordinatesFromLonLat([][2]float64{
		{-1.0, 51.0}, {-0.8, 51.3}, {-0.9, 51.6}, {-0.5, 51.8}, {-0.2, 52.2}, {0.1, 52.25},
	})
}

func TestFilterScenarios(t *testing.T) {
	route := northSouthRoute()

	t.Run("station on the line", func(t *testing.T) {
		got := Filter(route, []datastructure.Station{station("on", -0.1, 52.0)}, 5)
		require.Len(t, got, 1)
		assert.InDelta(t, 0.0, got[0].DistanceFromRoute, 0.3)
	})

	t.Run("station 0.05 degree east of the line", func(t *testing.T) {
		got := Filter(route, []datastructure.Station{station("near", -0.05, 52.0)}, 5)
		require.Len(t, got, 1)
		assert.InDelta(t, 2.13, got[0].DistanceFromRoute, 0.05)
	})

	t.Run("station at lon 0.05 is about 6.4 miles east", func(t *testing.T) {
		s := station("east", 0.05, 52.0)
		assert.Empty(t, Filter(route, []datastructure.Station{s}, 5))

		got := Filter(route, []datastructure.Station{s}, 7)
		require.Len(t, got, 1)
		assert.InDelta(t, 6.38, got[0].DistanceFromRoute, 0.05)
	})

	t.Run("station 43+ miles east is excluded", func(t *testing.T) {
		got := Filter(route, []datastructure.Station{station("far", 1.0, 52.0)}, 5)
		assert.Empty(t, got)
	})
}

func TestFilterRightAngleRoute(t *testing.T) {
	// north along lon 0, then east along lat 52
	route := geo.NewCoordinatesFromLonLat([][2]float64{{0, 51}, {0, 52}, {1, 52}})

	testCases := []struct {
		name string
		s    datastructure.Station
	}{
		{name: "closer to the northbound leg", s: station("a", 0.01, 51.7)},
		{name: "closer to the eastbound leg", s: station("b", 0.3, 51.99)},
		{name: "next to the joint", s: station("c", 0.08, 51.96)},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.s.GetCoordinate()
			d1 := geo.PointToSegmentDistance(p, route[0], route[1])
			d2 := geo.PointToSegmentDistance(p, route[1], route[2])

			got := Filter(route, []datastructure.Station{tt.s}, 5)
			require.Len(t, got, 1)

			if d1 <= 5 {
				// first leg already qualifies, scan stops there
				assert.Equal(t, d1, got[0].DistanceFromRoute)
			} else {
				assert.Equal(t, math.Min(d1, d2), got[0].DistanceFromRoute)
			}
		})
	}
}

func TestFilterEarlyExitKeepsFirstQualifyingSegment(t *testing.T) {
	route := geo.NewCoordinatesFromLonLat([][2]float64{{0, 51}, {0, 52}, {1, 52}})
	s := station("joint", 0.05, 51.99)
	p := s.GetCoordinate()

	f := NewFilterer(WithProjector(geo.PointToSegmentDistanceExact))
	got, err := f.FilterContext(context.Background(), route, []datastructure.Station{s}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)

	d1 := geo.PointToSegmentDistanceExact(p, route[0], route[1])
	d2 := geo.PointToSegmentDistanceExact(p, route[1], route[2])
	require.Less(t, d2, d1)

	assert.Equal(t, d1, got[0].DistanceFromRoute)
}

func TestFilterDegenerateRoutes(t *testing.T) {
	stations := []datastructure.Station{station("a", -0.1, 52.0), station("b", 0, 0)}

	assert.Empty(t, Filter(nil, stations, 5))
	assert.Empty(t, Filter([]geo.Coordinate{}, stations, 5))
	assert.Empty(t, Filter([]geo.Coordinate{geo.NewCoordinate(52.0, -0.1)}, stations, 5))
	assert.NotNil(t, Filter(nil, stations, 5))
}

func TestFilterNoStations(t *testing.T) {
	got := Filter(northSouthRoute(), nil, 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterCarriesPropertiesThrough(t *testing.T) {
	s := station("props", -0.1, 52.0)
	s.Properties.OsmID = 42
	s.Properties.Kind = "fuel"

	got := Filter(northSouthRoute(), []datastructure.Station{s}, 5)
	require.Len(t, got, 1)
	assert.Equal(t, s, got[0].Station)
}

func TestFilterOrdersByDistanceFromRouteStart(t *testing.T) {
	route := northSouthRoute()
	stations := []datastructure.Station{
		station("north", -0.1, 52.4),
		station("south", -0.1, 51.6),
		station("middle-east", -0.05, 52.0),
		station("middle", -0.1, 52.0),
	}

	got := Filter(route, stations, 5)
	assert.Equal(t, []string{"south", "middle", "middle-east", "north"}, names(got))
}

func TestFilterTiesKeepInputOrder(t *testing.T) {
	route := northSouthRoute()
	// same position, so same distance from the route start
	stations := []datastructure.Station{
		station("first", -0.1, 52.0),
		station("second", -0.1, 52.0),
		station("third", -0.1, 52.0),
		station("closest", -0.1, 51.7),
	}

	got := Filter(route, stations, 5)
	assert.Equal(t, []string{"closest", "first", "second", "third"}, names(got))
}

func TestFilterOrderingLaw(t *testing.T) {
	r := rand.New(rand.NewSource(23))
	route := zigzagRoute()
	stations := randomStations(r, 400, -1.5, 0.5, 50.8, 52.5)

	got := Filter(route, stations, 5)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		prev := route[0].DistanceTo(got[i-1].GetCoordinate())
		curr := route[0].DistanceTo(got[i].GetCoordinate())
		assert.LessOrEqual(t, prev, curr)
	}
	for _, m := range got {
		assert.LessOrEqual(t, m.DistanceFromRoute, 5.0)
	}
}

func TestFilterThresholdMonotonic(t *testing.T) {
	r := rand.New(rand.NewSource(29))
	route := zigzagRoute()
	stations := randomStations(r, 300, -1.5, 0.5, 50.8, 52.5)

	thresholds := []float64{0.5, 1, 2, 5, 10, 20}
	for i := 0; i < len(thresholds)-1; i++ {
		small := Filter(route, stations, thresholds[i])
		large := Filter(route, stations, thresholds[i+1])

		largeSet := make(map[string]struct{}, len(large))
		for _, m := range large {
			largeSet[m.Properties.Name] = struct{}{}
		}
		for _, m := range small {
			_, ok := largeSet[m.Properties.Name]
			assert.True(t, ok, "%s admitted at %.1f but not at %.1f", m.Properties.Name, thresholds[i], thresholds[i+1])
		}
		assert.LessOrEqual(t, len(small), len(large))
	}
}

func TestFilterParallelMatchesSequential(t *testing.T) {
	r := rand.New(rand.NewSource(31))
	route := zigzagRoute()
	stations := randomStations(r, 500, -1.5, 0.5, 50.8, 52.5)

	sequential := Filter(route, stations, 3)
	parallel, err := NewFilterer(WithWorkers(8)).FilterContext(context.Background(), route, stations, 3)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestFilterPrefilterKeepsAdmittedSet(t *testing.T) {
	r := rand.New(rand.NewSource(37))
	route := zigzagRoute()
	stations := randomStations(r, 1000, -3, 2, 50, 53.5)

	index := spatialindex.NewStationIndex()
	index.Build(stations, zap.NewNop())

	for _, threshold := range []float64{1, 5, 15} {
		candidates := Prefilter(index, route, stations, threshold)
		assert.Less(t, len(candidates), len(stations))

		assert.Equal(t, Filter(route, stations, threshold), Filter(route, candidates, threshold))
	}
}

func TestPrefilterWithoutIndex(t *testing.T) {
	stations := []datastructure.Station{station("a", 0, 0)}
	assert.Equal(t, stations, Prefilter(nil, northSouthRoute(), stations, 5))
}

func TestFilterContextCancelled(t *testing.T) {
	r := rand.New(rand.NewSource(41))
	stations := randomStations(r, 50, -1.5, 0.5, 50.8, 52.5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		got, err := NewFilterer(WithWorkers(workers)).FilterContext(ctx, zigzagRoute(), stations, 5)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, got)
	}
}

func TestMinDistanceToRouteScansAllSegmentsWhenNoneQualify(t *testing.T) {
	route := zigzagRoute()
	p := geo.NewCoordinate(60, 10)

	want := math.Inf(1)
	for i := 0; i < len(route)-1; i++ {
		want = math.Min(want, geo.PointToSegmentDistance(p, route[i], route[i+1]))
	}
	assert.Equal(t, want, MinDistanceToRoute(p, route, 5, geo.PointToSegmentDistance))
}

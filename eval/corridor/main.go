package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/lintang-b-s/Corridorx/pkg/corridor"
	"github.com/lintang-b-s/Corridorx/pkg/datastructure"
	"github.com/lintang-b-s/Corridorx/pkg/geo"
	log "github.com/lintang-b-s/Corridorx/pkg/logger"
	"github.com/lintang-b-s/Corridorx/pkg/spatialindex"
	"github.com/lintang-b-s/Corridorx/pkg/stations"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

var (
	numStations  = flag.Int("stations", 5000, "number of random stations (ignored when -stations_file is set)")
	stationsFile = flag.String("stations_file", "", "real station dataset to use instead of random stations")
	numRoutes    = flag.Int("routes", 50, "number of random routes")
	routePoints  = flag.Int("route_points", 400, "points per route")
	maxDistance  = flag.Float64("max_distance", corridor.DefaultMaxDistance, "corridor half-width in miles")
	numWorkers   = flag.Int("workers", 8, "workers for the parallel filter")
	seed         = flag.Uint64("seed", 42, "random seed")

	// great britain
	minLat = flag.Float64("min_lat", 50.0, "workload bounding box")
	maxLat = flag.Float64("max_lat", 58.5, "workload bounding box")
	minLon = flag.Float64("min_lon", -5.5, "workload bounding box")
	maxLon = flag.Float64("max_lon", 1.8, "workload bounding box")
)

type variant struct {
	name      string
	filterer  *corridor.Filterer
	prefilter bool
}

type result struct {
	elapsed time.Duration
	matched [][]datastructure.MatchedStation
}

func main() {
	flag.Parse()
	logger, err := log.NewDevelopment()
	if err != nil {
		panic(err)
	}

	r := rand.New(rand.NewSource(*seed))

	var stationSet []datastructure.Station
	if *stationsFile != "" {
		stationSet, err = stations.LoadFile(*stationsFile)
		if err != nil {
			panic(err)
		}
	} else {
		stationSet = randomStations(r, *numStations)
	}

	routes := make([][]geo.Coordinate, *numRoutes)
	for i := range routes {
		routes[i] = randomRoute(r, *routePoints)
	}

	index := spatialindex.NewStationIndex()
	index.Build(stationSet, logger)

	variants := []variant{
		{name: "sampling/sequential", filterer: corridor.NewFilterer()},
		{name: "sampling/parallel", filterer: corridor.NewFilterer(corridor.WithWorkers(*numWorkers))},
		{name: "sampling/sequential/rtree", filterer: corridor.NewFilterer(), prefilter: true},
		{name: "sampling/parallel/rtree", filterer: corridor.NewFilterer(corridor.WithWorkers(*numWorkers)), prefilter: true},
		{name: "exact/sequential", filterer: corridor.NewFilterer(corridor.WithProjector(geo.PointToSegmentDistanceExact))},
		{name: "exact/sequential/rtree", filterer: corridor.NewFilterer(corridor.WithProjector(geo.PointToSegmentDistanceExact)),
			prefilter: true},
	}

	logger.Sugar().Infof("running %d variants over %d routes x %d stations", len(variants), len(routes), len(stationSet))

	results := make([]result, len(variants))
	for vi, v := range variants {
		res, err := run(v, routes, stationSet, index)
		if err != nil {
			panic(err)
		}
		results[vi] = res
	}

	fmt.Printf("%-28s %12s %14s %10s\n", "variant", "total", "per route", "matches")
	for vi, v := range variants {
		total := 0
		for _, m := range results[vi].matched {
			total += len(m)
		}
		fmt.Printf("%-28s %12s %14s %10d\n", v.name, results[vi].elapsed.Round(time.Microsecond),
			(results[vi].elapsed / time.Duration(len(routes))).Round(time.Microsecond), total)
	}

	// admission differences against the baseline (sampling/sequential)
	fmt.Println()
	for vi := 1; vi < len(variants); vi++ {
		onlyBase, onlyOther, maxGap := compare(results[0].matched, results[vi].matched, routes, stationSet)
		fmt.Printf("%-28s only baseline: %5d  only variant: %5d  max boundary gap: %.4f mi\n",
			variants[vi].name, onlyBase, onlyOther, maxGap)
	}
}

// run. one route at a time so timings reflect only the filterer's own parallelism
func run(v variant, routes [][]geo.Coordinate, stationSet []datastructure.Station,
	index *spatialindex.StationIndex) (result, error) {
	matched := make([][]datastructure.MatchedStation, len(routes))

	start := time.Now()
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(1)
	for i, route := range routes {
		i, route := i, route
		g.Go(func() error {
			candidates := stationSet
			if v.prefilter {
				candidates = corridor.Prefilter(index, route, stationSet, *maxDistance)
			}
			m, err := v.filterer.FilterContext(ctx, route, candidates, *maxDistance)
			if err != nil {
				return err
			}
			matched[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result{}, err
	}
	return result{elapsed: time.Since(start), matched: matched}, nil
}

func compare(base, other [][]datastructure.MatchedStation, routes [][]geo.Coordinate,
	stationSet []datastructure.Station) (int, int, float64) {
	onlyBase, onlyOther := 0, 0
	maxGap := 0.0
	for i := range base {
		inBase := make(map[[2]float64]bool, len(base[i]))
		for _, m := range base[i] {
			inBase[m.Geometry.Coordinates] = true
		}
		inOther := make(map[[2]float64]bool, len(other[i]))
		for _, m := range other[i] {
			inOther[m.Geometry.Coordinates] = true
		}

		for key := range inBase {
			if !inOther[key] {
				onlyBase++
				maxGap = math.Max(maxGap, boundaryGap(key, routes[i]))
			}
		}
		for key := range inOther {
			if !inBase[key] {
				onlyOther++
				maxGap = math.Max(maxGap, boundaryGap(key, routes[i]))
			}
		}
	}
	return onlyBase, onlyOther, maxGap
}

// boundaryGap. how far a disagreeing station's exact distance is from the threshold
func boundaryGap(lonLat [2]float64, route []geo.Coordinate) float64 {
	d := corridor.MinDistanceToRoute(geo.NewCoordinateFromLonLat(lonLat), route, -1, geo.PointToSegmentDistanceExact)
	return math.Abs(d - *maxDistance)
}

func randomStations(r *rand.Rand, n int) []datastructure.Station {
	stationSet := make([]datastructure.Station, n)
	for i := range stationSet {
		lat := *minLat + r.Float64()*(*maxLat-*minLat)
		lon := *minLon + r.Float64()*(*maxLon-*minLon)
		stationSet[i] = datastructure.NewStation(lat, lon, datastructure.StationProperties{
			Name: fmt.Sprintf("station-%d", i),
		})
	}
	return stationSet
}

// randomRoute. a wandering polyline with roughly 0.5 to 2 mile steps
func randomRoute(r *rand.Rand, n int) []geo.Coordinate {
	lat := *minLat + r.Float64()*(*maxLat-*minLat)
	lon := *minLon + r.Float64()*(*maxLon-*minLon)
	bearing := r.Float64() * 360

	route := make([]geo.Coordinate, 0, n)
	route = append(route, geo.NewCoordinate(lat, lon))
	for len(route) < n {
		bearing += (r.Float64() - 0.5) * 40
		step := 0.5 + r.Float64()*1.5
		nextLat, nextLon := geo.GetDestinationPoint(lat, lon, bearing, step)
		if nextLat < *minLat || nextLat > *maxLat || nextLon < *minLon || nextLon > *maxLon {
			bearing += 180
			continue
		}
		lat, lon = nextLat, nextLon
		route = append(route, geo.NewCoordinate(lat, lon))
	}
	return route
}

package usecases

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/lintang-b-s/Corridorx/pkg/clients/nominatim"
	"github.com/lintang-b-s/Corridorx/pkg/clients/osrm"
	"github.com/lintang-b-s/Corridorx/pkg/corridor"
	"github.com/lintang-b-s/Corridorx/pkg/datastructure"
	"github.com/lintang-b-s/Corridorx/pkg/geo"
	"github.com/lintang-b-s/Corridorx/pkg/metrics"
	"github.com/lintang-b-s/Corridorx/pkg/util"
	"go.uber.org/zap"
)

const (
	SOURCE_OSRM     = "osrm"
	SOURCE_POLYLINE = "polyline"
)

type StationService struct {
	log                *zap.Logger
	store              StationStore
	routingClient      RoutingClient
	geocodingClient    GeocodingClient
	filterer           *corridor.Filterer
	usePrefilter       bool
	defaultMaxDistance float64
}

func NewStationService(log *zap.Logger, store StationStore, routingClient RoutingClient,
	geocodingClient GeocodingClient, filterer *corridor.Filterer, usePrefilter bool,
	defaultMaxDistance float64) *StationService {
	if filterer == nil {
		filterer = corridor.NewFilterer()
	}
	if defaultMaxDistance <= 0 || math.IsNaN(defaultMaxDistance) {
		defaultMaxDistance = corridor.DefaultMaxDistance
	}
	return &StationService{
		log:                log,
		store:              store,
		routingClient:      routingClient,
		geocodingClient:    geocodingClient,
		filterer:           filterer,
		usePrefilter:       usePrefilter,
		defaultMaxDistance: defaultMaxDistance,
	}
}

// DefaultMaxDistance. corridor half-width (miles) used when a request omits it
func (ss *StationService) DefaultMaxDistance() float64 {
	return ss.defaultMaxDistance
}

func (ss *StationService) Stations() datastructure.StationFeatureCollection {
	return datastructure.NewStationFeatureCollection(ss.store.All())
}

func (ss *StationService) Geocode(ctx context.Context, query string, limit int,
	countryCodes string) ([]datastructure.GeocodingResult, error) {
	start := time.Now()
	results, err := ss.geocodingClient.Search(ctx, query, nominatim.SearchOptions{
		Limit:        limit,
		CountryCodes: countryCodes,
	})
	if errors.Is(err, nominatim.ErrEmptyQuery) {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "query parameter 'q' is required")
	}
	metrics.ObserveUpstream("nominatim", err, time.Since(start))
	if err != nil {
		ss.log.Error("geocoding failed", zap.String("query", query), zap.Error(err))
		return nil, util.WrapErrorf(err, util.ErrUpstream, "failed to geocode address")
	}
	return results, nil
}

func (ss *StationService) Route(ctx context.Context, start, end geo.Coordinate) (datastructure.RouteData, error) {
	if !start.IsValid() || !end.IsValid() {
		return datastructure.RouteData{}, util.WrapErrorf(nil, util.ErrBadParamInput, "invalid coordinate values")
	}

	began := time.Now()
	route, err := ss.routingClient.Route(ctx, start, end)
	upstreamErr := err
	if errors.Is(err, osrm.ErrNoRoute) {
		upstreamErr = nil
	}
	metrics.ObserveUpstream(SOURCE_OSRM, upstreamErr, time.Since(began))
	if err != nil {
		if errors.Is(err, osrm.ErrNoRoute) {
			return datastructure.RouteData{}, util.WrapErrorf(err, util.ErrNotFound,
				"no route found from %f,%f to %f,%f", start.Lat, start.Lon, end.Lat, end.Lon)
		}
		ss.log.Error("routing failed", zap.Error(err),
			zap.Float64("start_lat", start.Lat), zap.Float64("start_lon", start.Lon),
			zap.Float64("end_lat", end.Lat), zap.Float64("end_lon", end.Lon))
		return datastructure.RouteData{}, util.WrapErrorf(err, util.ErrUpstream, "failed to calculate route")
	}
	return route, nil
}

// StationsAlongRoute. fetch the driving route from start to end and match the station set against it
func (ss *StationService) StationsAlongRoute(ctx context.Context, start, end geo.Coordinate,
	maxDistance float64) (datastructure.RouteData, []datastructure.MatchedStation, error) {
	if err := validateMaxDistance(maxDistance); err != nil {
		return datastructure.RouteData{}, nil, err
	}

	route, err := ss.Route(ctx, start, end)
	if err != nil {
		return datastructure.RouteData{}, nil, err
	}

	matched, err := ss.matchStations(ctx, SOURCE_OSRM, route.GetPolyline(), maxDistance)
	if err != nil {
		return datastructure.RouteData{}, nil, err
	}
	return route, matched, nil
}

// StationsAlongPolyline. match the station set against a caller supplied route
func (ss *StationService) StationsAlongPolyline(ctx context.Context, route []geo.Coordinate,
	maxDistance float64, source string) ([]datastructure.MatchedStation, error) {
	if err := validateMaxDistance(maxDistance); err != nil {
		return nil, err
	}
	for i, c := range route {
		if !c.IsValid() {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "invalid coordinate at index %d", i)
		}
	}
	if source == "" {
		source = SOURCE_POLYLINE
	}
	return ss.matchStations(ctx, source, route, maxDistance)
}

func (ss *StationService) matchStations(ctx context.Context, source string, route []geo.Coordinate,
	maxDistance float64) ([]datastructure.MatchedStation, error) {
	began := time.Now()

	candidates := ss.store.All()
	if idx := ss.store.Index(); ss.usePrefilter && idx != nil {
		candidates = corridor.Prefilter(idx, route, candidates, maxDistance)
	}

	matched, err := ss.filterer.FilterContext(ctx, route, candidates, maxDistance)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "station matching cancelled")
	}

	elapsed := time.Since(began)
	metrics.ObserveCorridorFilter(source, len(candidates), len(matched), elapsed)
	ss.log.Debug("corridor filter done", zap.String("source", source),
		zap.Int("route_points", len(route)), zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(matched)), zap.Duration("elapsed", elapsed))
	return matched, nil
}

func validateMaxDistance(maxDistance float64) error {
	if math.IsNaN(maxDistance) || math.IsInf(maxDistance, 0) || maxDistance < 0 {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "max distance must be a non-negative number of miles")
	}
	return nil
}

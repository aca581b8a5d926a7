package controllers

import (
	"context"

	"github.com/lintang-b-s/Corridorx/pkg/datastructure"
	"github.com/lintang-b-s/Corridorx/pkg/geo"
)

type StationService interface {
	DefaultMaxDistance() float64
	Stations() datastructure.StationFeatureCollection
	Geocode(ctx context.Context, query string, limit int, countryCodes string) ([]datastructure.GeocodingResult, error)
	Route(ctx context.Context, start, end geo.Coordinate) (datastructure.RouteData, error)
	StationsAlongRoute(ctx context.Context, start, end geo.Coordinate,
		maxDistance float64) (datastructure.RouteData, []datastructure.MatchedStation, error)
	StationsAlongPolyline(ctx context.Context, route []geo.Coordinate, maxDistance float64,
		source string) ([]datastructure.MatchedStation, error)
}

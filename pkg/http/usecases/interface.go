package usecases

import (
	"context"

	"github.com/lintang-b-s/Corridorx/pkg/clients/nominatim"
	"github.com/lintang-b-s/Corridorx/pkg/datastructure"
	"github.com/lintang-b-s/Corridorx/pkg/geo"
	"github.com/lintang-b-s/Corridorx/pkg/spatialindex"
)

type RoutingClient interface {
	Route(ctx context.Context, start, end geo.Coordinate) (datastructure.RouteData, error)
}

type GeocodingClient interface {
	Search(ctx context.Context, query string, opts nominatim.SearchOptions) ([]datastructure.GeocodingResult, error)
}

type StationStore interface {
	All() []datastructure.Station
	Index() *spatialindex.StationIndex
}

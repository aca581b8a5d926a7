package datastructure

import "github.com/lintang-b-s/Corridorx/pkg/geo"

// RouteData. route returned by the routing service. only Coordinates take part in corridor matching.
type RouteData struct {
	Coordinates [][2]float64 `json:"coordinates"` // [lon, lat]
	Distance    float64      `json:"distance"`    // meters
	Duration    float64      `json:"duration"`    // seconds
}

func NewRouteData(coords [][2]float64, distance, duration float64) RouteData {
	return RouteData{
		Coordinates: coords,
		Distance:    distance,
		Duration:    duration,
	}
}

func (r RouteData) GetPolyline() []geo.Coordinate {
	return geo.NewCoordinatesFromLonLat(r.Coordinates)
}

type GeocodingResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	PlaceID     int64  `json:"place_id"`
}

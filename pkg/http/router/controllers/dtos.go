package controllers

import (
	"github.com/lintang-b-s/Corridorx/pkg/datastructure"
	"github.com/lintang-b-s/Corridorx/pkg/util"
)

type routeRequest struct {
	StartLon float64 `validate:"min=-180,max=180"`
	StartLat float64 `validate:"min=-90,max=90"`
	EndLon   float64 `validate:"min=-180,max=180"`
	EndLat   float64 `validate:"min=-90,max=90"`
}

type stationsAlongRouteRequest struct {
	routeRequest
	MaxDistance float64 `validate:"gte=0"`
}

type geocodeRequest struct {
	Query        string `validate:"required"`
	Limit        int    `validate:"omitempty,min=1,max=50"`
	CountryCodes string `validate:"omitempty,max=64"`
}

type stationsAlongPolylineRequest struct {
	Coordinates [][2]float64 `json:"coordinates" validate:"required"` // [lon, lat]
	MaxDistance *float64     `json:"max_distance" validate:"omitempty,gte=0"`
}

type routeSummaryResponse struct {
	DistanceMiles   float64      `json:"distance_miles"`
	DurationMinutes float64      `json:"duration_minutes"`
	Polyline        string       `json:"polyline"`
	Coordinates     [][2]float64 `json:"coordinates"`
}

func NewRouteSummaryResponse(route datastructure.RouteData, polyline string) routeSummaryResponse {
	return routeSummaryResponse{
		DistanceMiles:   util.RoundFloat(util.MetersToMiles(route.Distance), 2),
		DurationMinutes: util.RoundFloat(util.SecondsToMinutes(route.Duration), 1),
		Polyline:        polyline,
		Coordinates:     route.Coordinates,
	}
}

type stationsAlongRouteResponse struct {
	Route       routeSummaryResponse           `json:"route"`
	MaxDistance float64                        `json:"max_distance"`
	Stations    []datastructure.MatchedStation `json:"stations"`
}

func NewStationsAlongRouteResponse(route routeSummaryResponse, maxDistance float64,
	stations []datastructure.MatchedStation) stationsAlongRouteResponse {
	if stations == nil {
		stations = []datastructure.MatchedStation{}
	}
	return stationsAlongRouteResponse{
		Route:       route,
		MaxDistance: maxDistance,
		Stations:    stations,
	}
}

type stationsAlongPolylineResponse struct {
	MaxDistance float64                        `json:"max_distance"`
	Stations    []datastructure.MatchedStation `json:"stations"`
}

func NewStationsAlongPolylineResponse(maxDistance float64, stations []datastructure.MatchedStation) stationsAlongPolylineResponse {
	if stations == nil {
		stations = []datastructure.MatchedStation{}
	}
	return stationsAlongPolylineResponse{
		MaxDistance: maxDistance,
		Stations:    stations,
	}
}

// ErrorResponse. body of every failed request and error frame
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

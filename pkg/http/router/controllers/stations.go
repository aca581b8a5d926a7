package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/Corridorx/pkg/geo"
	helper "github.com/lintang-b-s/Corridorx/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type stationAPI struct {
	errorWriter
	stationService StationService
	validator      *requestValidator
	log            *zap.Logger
}

func New(stationService StationService, log *zap.Logger) *stationAPI {
	return &stationAPI{
		errorWriter:    errorWriter{log: log},
		stationService: stationService,
		validator:      newRequestValidator(),
		log:            log,
	}
}

func (api *stationAPI) Routes(group *helper.RouteGroup) {
	group.GET("/stations", api.stations)
	group.GET("/stations/along-route", api.stationsAlongRoute)
	group.POST("/stations/along-polyline", api.stationsAlongPolyline)
	group.GET("/geocode", api.geocode)
	group.GET("/route", api.route)
}

// stations
//
//	@Summary		all service stations
//	@Tags			stations
//	@Produce		application/json
//	@Router			/stations [get]
//	@Success		200	{object}	datastructure.StationFeatureCollection
func (api *stationAPI) stations(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if err := writeJSON(w, http.StatusOK, envelope{"data": api.stationService.Stations()}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// geocode
//
//	@Summary		free-form address search
//	@Tags			geocoding
//	@Param			q				query	string	true	"address or place name"
//	@Param			limit			query	int		false	"max results (default 5)"
//	@Param			countrycodes	query	string	false	"comma separated country codes"
//	@Produce		application/json
//	@Router			/geocode [get]
//	@Success		200	{array}	datastructure.GeocodingResult
//	@Failure		400	{object}	ErrorResponse
//	@Failure		502	{object}	ErrorResponse
func (api *stationAPI) geocode(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request geocodeRequest
		err     error
	)
	query := r.URL.Query()

	request.Query = strings.TrimSpace(query.Get("q"))
	if request.Query == "" {
		api.BadRequestResponse(w, r, errors.New("query parameter 'q' is required"))
		return
	}
	if rawLimit := query.Get("limit"); rawLimit != "" {
		request.Limit, err = strconv.Atoi(rawLimit)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("limit must be a valid int"))
			return
		}
	}
	request.CountryCodes = query.Get("countrycodes")

	if err := api.validator.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	results, err := api.stationService.Geocode(r.Context(), request.Query, request.Limit, request.CountryCodes)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": results}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *stationAPI) parseRouteRequest(r *http.Request) (routeRequest, error) {
	var (
		request routeRequest
		err     error
	)
	query := r.URL.Query()

	request.StartLon, err = parseFloatParam(query, "startLon")
	if err != nil {
		return request, err
	}
	request.StartLat, err = parseFloatParam(query, "startLat")
	if err != nil {
		return request, err
	}
	request.EndLon, err = parseFloatParam(query, "endLon")
	if err != nil {
		return request, err
	}
	request.EndLat, err = parseFloatParam(query, "endLat")
	if err != nil {
		return request, err
	}
	return request, nil
}

// route
//
//	@Summary		driving route between two points
//	@Tags			routing
//	@Param			startLon	query	number	true	"start longitude"
//	@Param			startLat	query	number	true	"start latitude"
//	@Param			endLon		query	number	true	"end longitude"
//	@Param			endLat		query	number	true	"end latitude"
//	@Produce		application/json
//	@Router			/route [get]
//	@Success		200	{object}	datastructure.RouteData
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		502	{object}	ErrorResponse
func (api *stationAPI) route(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	request, err := api.parseRouteRequest(r)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validator.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	route, err := api.stationService.Route(r.Context(),
		geo.NewCoordinate(request.StartLat, request.StartLon), geo.NewCoordinate(request.EndLat, request.EndLon))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": route}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// stationsAlongRoute
//
//	@Summary		service stations within maxDistance miles of the driving route
//	@Tags			stations
//	@Param			startLon	query	number	true	"start longitude"
//	@Param			startLat	query	number	true	"start latitude"
//	@Param			endLon		query	number	true	"end longitude"
//	@Param			endLat		query	number	true	"end latitude"
//	@Param			maxDistance	query	number	false	"corridor half-width in miles (default 5)"
//	@Produce		application/json
//	@Router			/stations/along-route [get]
//	@Success		200	{object}	stationsAlongRouteResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		502	{object}	ErrorResponse
func (api *stationAPI) stationsAlongRoute(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request stationsAlongRouteRequest
		err     error
	)

	request.routeRequest, err = api.parseRouteRequest(r)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	request.MaxDistance = api.stationService.DefaultMaxDistance()
	if r.URL.Query().Get("maxDistance") != "" {
		request.MaxDistance, err = parseFloatParam(r.URL.Query(), "maxDistance")
		if err != nil {
			api.BadRequestResponse(w, r, err)
			return
		}
	}

	if err := api.validator.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	route, matched, err := api.stationService.StationsAlongRoute(r.Context(),
		geo.NewCoordinate(request.StartLat, request.StartLon), geo.NewCoordinate(request.EndLat, request.EndLon),
		request.MaxDistance)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	polyline := geo.PolylineFromCoords(route.GetPolyline())
	resp := NewStationsAlongRouteResponse(NewRouteSummaryResponse(route, polyline), request.MaxDistance, matched)
	if err := writeJSON(w, http.StatusOK, envelope{"data": resp}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// stationsAlongPolyline
//
//	@Summary		service stations within max_distance miles of a caller supplied route
//	@Tags			stations
//	@Param			body	body	stationsAlongPolylineRequest	true	"route as [lon, lat] pairs"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/stations/along-polyline [post]
//	@Success		200	{object}	stationsAlongPolylineResponse
//	@Failure		400	{object}	ErrorResponse
func (api *stationAPI) stationsAlongPolyline(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request stationsAlongPolylineRequest
	if err := readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	if err := api.validator.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	maxDistance := api.stationService.DefaultMaxDistance()
	if request.MaxDistance != nil {
		maxDistance = *request.MaxDistance
	}

	matched, err := api.stationService.StationsAlongPolyline(r.Context(),
		geo.NewCoordinatesFromLonLat(request.Coordinates), maxDistance, "")
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": NewStationsAlongPolylineResponse(maxDistance, matched)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/lintang-b-s/Corridorx/pkg/clients/nominatim"
	"github.com/lintang-b-s/Corridorx/pkg/clients/osrm"
	"github.com/lintang-b-s/Corridorx/pkg/corridor"
	"github.com/lintang-b-s/Corridorx/pkg/datastructure"
	"github.com/lintang-b-s/Corridorx/pkg/geo"
	"github.com/lintang-b-s/Corridorx/pkg/http/router/controllers"
	"github.com/lintang-b-s/Corridorx/pkg/http/usecases"
	"github.com/lintang-b-s/Corridorx/pkg/stations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRouting struct {
	route datastructure.RouteData
	err   error
}

func (f *fakeRouting) Route(ctx context.Context, start, end geo.Coordinate) (datastructure.RouteData, error) {
	return f.route, f.err
}

type fakeGeocoding struct{}

func (f *fakeGeocoding) Search(ctx context.Context, query string, opts nominatim.SearchOptions) ([]datastructure.GeocodingResult, error) {
	return []datastructure.GeocodingResult{{DisplayName: query, Lat: "52.2", Lon: "0.12", PlaceID: int64(opts.Limit)}}, nil
}

func newTestHandler(t *testing.T, routing *fakeRouting, limit RateLimitConfig) http.Handler {
	t.Helper()
	store := stations.NewStore([]datastructure.Station{
		datastructure.NewStation(51.5, 0.01, datastructure.StationProperties{Name: "A", Postcode: "AA1"}),
		datastructure.NewStation(52.0, -0.05, datastructure.StationProperties{Name: "B", Postcode: "BB1"}),
		datastructure.NewStation(51.0, 5.0, datastructure.StationProperties{Name: "Far"}),
	}, zap.NewNop())

	svc := usecases.NewStationService(zap.NewNop(), store, routing, &fakeGeocoding{},
		corridor.NewFilterer(), true, 0)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewAPI(zap.NewNop()).Handler(ctx, limit, svc)
}

func straightRoute() datastructure.RouteData {
	return datastructure.NewRouteData([][2]float64{{0, 51}, {0, 52}}, 111195, 3600)
}

type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var resp apiResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestStationsEndpoint(t *testing.T) {
	h := newTestHandler(t, &fakeRouting{}, RateLimitConfig{})
	rec, resp := do(t, h, httptest.NewRequest(http.MethodGet, "/api/stations", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var fc datastructure.StationFeatureCollection
	require.NoError(t, json.Unmarshal(resp.Data, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 3)
	assert.Equal(t, "A", fc.Features[0].Properties.Name)
}

func TestStationsAlongRouteEndpoint(t *testing.T) {
	h := newTestHandler(t, &fakeRouting{route: straightRoute()}, RateLimitConfig{})

	rec, resp := do(t, h, httptest.NewRequest(http.MethodGet,
		"/api/stations/along-route?startLon=0&startLat=51&endLon=0&endLat=52", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Route struct {
			DistanceMiles   float64      `json:"distance_miles"`
			DurationMinutes float64      `json:"duration_minutes"`
			Polyline        string       `json:"polyline"`
			Coordinates     [][2]float64 `json:"coordinates"`
		} `json:"route"`
		MaxDistance float64                        `json:"max_distance"`
		Stations    []datastructure.MatchedStation `json:"stations"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	assert.InDelta(t, 69.09, body.Route.DistanceMiles, 0.01)
	assert.InDelta(t, 60.0, body.Route.DurationMinutes, 1e-9)
	assert.NotEmpty(t, body.Route.Polyline)
	assert.Equal(t, 5.0, body.MaxDistance)
	require.Len(t, body.Stations, 2)
	assert.Equal(t, "A", body.Stations[0].Properties.Name)
	assert.Equal(t, "B", body.Stations[1].Properties.Name)
	assert.Greater(t, body.Stations[1].DistanceFromRoute, 2.0)

	// a tighter corridor drops B (about 2.1 mi away)
	rec, resp = do(t, h, httptest.NewRequest(http.MethodGet,
		"/api/stations/along-route?startLon=0&startLat=51&endLon=0&endLat=52&maxDistance=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	require.Len(t, body.Stations, 1)
	assert.Equal(t, "A", body.Stations[0].Properties.Name)
}

func TestBadRequests(t *testing.T) {
	h := newTestHandler(t, &fakeRouting{route: straightRoute()}, RateLimitConfig{})

	tests := []struct {
		name   string
		target string
	}{
		{"route missing param", "/api/route?startLon=0&startLat=51&endLon=0"},
		{"route not a number", "/api/route?startLon=x&startLat=51&endLon=0&endLat=52"},
		{"route NaN", "/api/route?startLon=NaN&startLat=51&endLon=0&endLat=52"},
		{"route latitude out of range", "/api/route?startLon=0&startLat=95&endLon=0&endLat=52"},
		{"along route negative distance", "/api/stations/along-route?startLon=0&startLat=51&endLon=0&endLat=52&maxDistance=-1"},
		{"geocode without q", "/api/geocode"},
		{"geocode bad limit", "/api/geocode?q=Cambridge&limit=abc"},
		{"geocode limit too large", "/api/geocode?q=Cambridge&limit=500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := do(t, h, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "Bad Request", resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestRouteEndpoint(t *testing.T) {
	h := newTestHandler(t, &fakeRouting{route: straightRoute()}, RateLimitConfig{})
	rec, resp := do(t, h, httptest.NewRequest(http.MethodGet, "/api/route?startLon=0&startLat=51&endLon=0&endLat=52", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var route datastructure.RouteData
	require.NoError(t, json.Unmarshal(resp.Data, &route))
	assert.Equal(t, straightRoute(), route)

	h = newTestHandler(t, &fakeRouting{err: osrm.ErrNoRoute}, RateLimitConfig{})
	rec, resp = do(t, h, httptest.NewRequest(http.MethodGet, "/api/route?startLon=0&startLat=51&endLon=0&endLat=52", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, resp.Error)

	h = newTestHandler(t, &fakeRouting{err: assert.AnError}, RateLimitConfig{})
	rec, resp = do(t, h, httptest.NewRequest(http.MethodGet, "/api/route?startLon=0&startLat=51&endLon=0&endLat=52", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "failed to calculate route", resp.Error.Message)
}

func TestGeocodeEndpoint(t *testing.T) {
	h := newTestHandler(t, &fakeRouting{}, RateLimitConfig{})
	rec, resp := do(t, h, httptest.NewRequest(http.MethodGet, "/api/geocode?q=Cambridge&limit=3&countrycodes=gb", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var results []datastructure.GeocodingResult
	require.NoError(t, json.Unmarshal(resp.Data, &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Cambridge", results[0].DisplayName)
	assert.Equal(t, int64(3), results[0].PlaceID)
}

func TestStationsAlongPolylineEndpoint(t *testing.T) {
	h := newTestHandler(t, &fakeRouting{}, RateLimitConfig{})

	post := func(body, contentType string) (*httptest.ResponseRecorder, apiResponse) {
		req := httptest.NewRequest(http.MethodPost, "/api/stations/along-polyline", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		return do(t, h, req)
	}

	rec, resp := post(`{"coordinates":[[0,51],[0,52]],"max_distance":3}`, "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		MaxDistance float64                        `json:"max_distance"`
		Stations    []datastructure.MatchedStation `json:"stations"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	assert.Equal(t, 3.0, body.MaxDistance)
	assert.Len(t, body.Stations, 2)

	// omitted max_distance uses the default
	rec, resp = post(`{"coordinates":[[0,51],[0,52]]}`, "application/json; charset=utf-8")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	assert.Equal(t, 5.0, body.MaxDistance)

	// single point route: no segments, no matches
	rec, resp = post(`{"coordinates":[[0,51]]}`, "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	assert.NotNil(t, body.Stations)
	assert.Empty(t, body.Stations)

	rec, _ = post(`{"coordinates":[[0,51],[0,52]]}`, "text/plain")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec, _ = post(`{"coordinates":`, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = post(`{"max_distance":3}`, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = post(`{"coordinates":[[0,51],[0,52]],"max_distance":-2}`, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = post(`{"coordinates":[[0,51],[0,95]]}`, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHeartbeatAndMetrics(t *testing.T) {
	h := newTestHandler(t, &fakeRouting{}, RateLimitConfig{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ".", rec.Body.String())

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/stations", nil))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `corridorx_http_requests_total{method="GET",path="/api/stations",status="200"}`)
}

func TestRateLimit(t *testing.T) {
	h := newTestHandler(t, &fakeRouting{}, RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stations", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestMiddlewareErrorBody(t *testing.T) {
	limited := newTestHandler(t, &fakeRouting{}, RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1})
	limited.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/stations", nil))

	api := NewAPI(zap.NewNop())
	panicking := api.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	textBody := httptest.NewRequest(http.MethodPost, "/api/stations/along-polyline", strings.NewReader("x"))
	textBody.Header.Set("Content-Type", "text/plain")

	tests := []struct {
		name       string
		handler    http.Handler
		req        *http.Request
		wantStatus int
		wantMsg    string
	}{
		{"rate limited", limited, httptest.NewRequest(http.MethodGet, "/api/stations", nil),
			http.StatusTooManyRequests, "rate limit exceeded"},
		{"wrong content type", newTestHandler(t, &fakeRouting{}, RateLimitConfig{}), textBody,
			http.StatusUnsupportedMediaType, "Content-Type header must be application/json"},
		{"panic", panicking, httptest.NewRequest(http.MethodGet, "/", nil),
			http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, tt.req)
			require.Equal(t, tt.wantStatus, rec.Code)

			var got controllers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, controllers.NewErrorResponse(tt.wantStatus, tt.wantMsg), got)
		})
	}
}

func TestRealIP(t *testing.T) {
	var got string
	h := RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.7", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "198.51.100.2")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "198.51.100.2", got)
}

func TestRecoverPanic(t *testing.T) {
	api := NewAPI(zap.NewNop())
	h := api.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
}

func TestWebsocket(t *testing.T) {
	h := newTestHandler(t, &fakeRouting{}, RateLimitConfig{})
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, wsutil.WriteClientText(conn, []byte(`{"coordinates":[[0,51],[0,52]],"max_distance":1}`)))
	msg, err := wsutil.ReadServerText(conn)
	require.NoError(t, err)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(msg, &resp))
	var body struct {
		Stations []datastructure.MatchedStation `json:"stations"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	require.Len(t, body.Stations, 1)
	assert.Equal(t, "A", body.Stations[0].Properties.Name)

	// a bad frame gets an error reply and the connection stays open
	require.NoError(t, wsutil.WriteClientText(conn, []byte(`not json`)))
	msg, err = wsutil.ReadServerText(conn)
	require.NoError(t, err)
	resp = apiResponse{}
	require.NoError(t, json.Unmarshal(msg, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Bad Request", resp.Error.Code)

	require.NoError(t, wsutil.WriteClientText(conn, []byte(`{"coordinates":[[0,51],[0,52]],"max_distance":-1}`)))
	msg, err = wsutil.ReadServerText(conn)
	require.NoError(t, err)
	resp = apiResponse{}
	require.NoError(t, json.Unmarshal(msg, &resp))
	require.NotNil(t, resp.Error)
}

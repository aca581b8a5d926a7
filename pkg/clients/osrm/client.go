package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lintang-b-s/Corridorx/pkg/datastructure"
	"github.com/lintang-b-s/Corridorx/pkg/geo"
)

var (
	ErrNoRoute         = errors.New("no route found")
	ErrInvalidGeometry = errors.New("invalid route geometry")
)

const (
	DefaultBaseURL   = "https://router.project-osrm.org"
	DefaultUserAgent = "Service Station Mapper"
)

// Client. osrm http route service client (driving profile)
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type routeResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Routes  []route `json:"routes"`
}

type route struct {
	Distance float64         `json:"distance"`
	Duration float64         `json:"duration"`
	Geometry json.RawMessage `json:"geometry"`
}

type lineString struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// Route. fastest driving route from start to end. coordinates of the returned route are [lon, lat].
func (c *Client) Route(ctx context.Context, start, end geo.Coordinate) (datastructure.RouteData, error) {
	requestURL := fmt.Sprintf("%s/route/v1/driving/%s,%s;%s,%s?overview=full&geometries=geojson",
		c.baseURL,
		formatFloat(start.Lon), formatFloat(start.Lat),
		formatFloat(end.Lon), formatFloat(end.Lat))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return datastructure.RouteData{}, fmt.Errorf("failed to create route request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return datastructure.RouteData{}, fmt.Errorf("failed to execute route request: %w", err)
	}
	defer resp.Body.Close()

	var body routeResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)

	// osrm answers NoRoute / NoSegment with 400 and a json body
	if decodeErr == nil && (body.Code == "NoRoute" || body.Code == "NoSegment") {
		return datastructure.RouteData{}, ErrNoRoute
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return datastructure.RouteData{}, fmt.Errorf("routing failed: %s", resp.Status)
	}
	if decodeErr != nil {
		return datastructure.RouteData{}, fmt.Errorf("failed to decode route response: %w", decodeErr)
	}

	if body.Code != "Ok" || len(body.Routes) == 0 {
		return datastructure.RouteData{}, ErrNoRoute
	}

	r := body.Routes[0]
	coords, err := decodeGeometry(r.Geometry)
	if err != nil {
		return datastructure.RouteData{}, err
	}

	return datastructure.NewRouteData(coords, r.Distance, r.Duration), nil
}

// decodeGeometry. geojson LineString, or an encoded polyline (precision 5) when the server ignores geometries=geojson
func decodeGeometry(raw json.RawMessage) ([][2]float64, error) {
	trimmed := strings.TrimSpace(string(raw))
	if len(trimmed) == 0 || trimmed == "null" {
		return nil, ErrInvalidGeometry
	}

	if trimmed[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		coords, err := geo.CoordsFromPolyline(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		lonLats := make([][2]float64, len(coords))
		for i, c := range coords {
			lonLats[i] = c.LonLat()
		}
		return lonLats, nil
	}

	var ls lineString
	if err := json.Unmarshal(raw, &ls); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	if ls.Type != "LineString" || ls.Coordinates == nil {
		return nil, fmt.Errorf("%w: geojson type %q", ErrInvalidGeometry, ls.Type)
	}
	return ls.Coordinates, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

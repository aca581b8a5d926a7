package datastructure

import (
	"github.com/lintang-b-s/Corridorx/pkg/geo"
)

const (
	FEATURE_TYPE            = "Feature"
	FEATURE_COLLECTION_TYPE = "FeatureCollection"
	POINT_TYPE              = "Point"
)

type StationProperties struct {
	Name     string `json:"name"`
	Postcode string `json:"postcode"`
	URL      string `json:"URL"`
	OsmID    int64  `json:"osm_id,omitempty"`
	Kind     string `json:"kind,omitempty"`
}

type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // [lon, lat]
}

// Station. a geojson point feature. properties are carried through the corridor filter untouched.
type Station struct {
	Type       string            `json:"type"`
	Properties StationProperties `json:"properties"`
	Geometry   PointGeometry     `json:"geometry"`
}

func NewStation(lat, lon float64, props StationProperties) Station {
	return Station{
		Type:       FEATURE_TYPE,
		Properties: props,
		Geometry: PointGeometry{
			Type:        POINT_TYPE,
			Coordinates: [2]float64{lon, lat},
		},
	}
}

func (s Station) GetCoordinate() geo.Coordinate {
	return geo.NewCoordinateFromLonLat(s.Geometry.Coordinates)
}

func (s Station) GetLat() float64 {
	return s.Geometry.Coordinates[1]
}

func (s Station) GetLon() float64 {
	return s.Geometry.Coordinates[0]
}

type StationFeatureCollection struct {
	Type     string    `json:"type"`
	Features []Station `json:"features"`
}

func NewStationFeatureCollection(stations []Station) StationFeatureCollection {
	if stations == nil {
		stations = []Station{}
	}
	return StationFeatureCollection{
		Type:     FEATURE_COLLECTION_TYPE,
		Features: stations,
	}
}

// MatchedStation. station admitted by the corridor filter.
// DistanceFromRoute (miles) is the smallest segment distance seen before the scan stopped,
// which is not always the global minimum over the whole route.
type MatchedStation struct {
	Station
	DistanceFromRoute float64 `json:"distanceFromRoute"`
}

func NewMatchedStation(s Station, distanceFromRoute float64) MatchedStation {
	return MatchedStation{
		Station:           s,
		DistanceFromRoute: distanceFromRoute,
	}
}

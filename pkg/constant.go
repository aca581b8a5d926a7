package pkg

const (
	// earth radius used by every distance in this module. changing it shifts all
	// corridor thresholds consistently.
	EARTH_RADIUS_MILES float64 = 3959.0

	DEFAULT_MAX_DISTANCE_MILES float64 = 5.0

	METERS_PER_MILE float64 = 1609.344

	// segments shorter than this are treated as a single point
	DEGENERATE_SEGMENT_MILES float64 = 0.01
	// roughly one sample per half mile of segment
	SAMPLES_PER_MILE   float64 = 2.0
	MIN_SEGMENT_SAMPLES        = 10

	// angular separation (radians) under which SLERP falls back to linear interpolation
	SLERP_EPSILON_RAD float64 = 0.0001
)

type StationKind uint8

// osm tags accepted as service stations
const (
	MOTORWAY_SERVICES StationKind = iota
	REST_AREA
	FUEL
	UNKNOWN_STATION
)

func GetStationKind(highway, amenity string) StationKind {
	switch highway {
	case "services":
		return MOTORWAY_SERVICES
	case "rest_area":
		return REST_AREA
	}
	switch amenity {
	case "fuel":
		return FUEL
	default:
		return UNKNOWN_STATION
	}
}

func (k StationKind) String() string {
	switch k {
	case MOTORWAY_SERVICES:
		return "services"
	case REST_AREA:
		return "rest_area"
	case FUEL:
		return "fuel"
	default:
		return "unknown"
	}
}

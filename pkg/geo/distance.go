package geo

import (
	"math"

	"github.com/lintang-b-s/Corridorx/pkg"
	"github.com/lintang-b-s/Corridorx/pkg/util"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) GetLat() float64 {
	return c.Lat
}

func (c Coordinate) GetLon() float64 {
	return c.Lon
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

// NewCoordinateFromLonLat. routing services and geojson send [lon, lat] pairs
func NewCoordinateFromLonLat(lonLat [2]float64) Coordinate {
	return Coordinate{
		Lat: lonLat[1],
		Lon: lonLat[0],
	}
}

func NewCoordinatesFromLonLat(lonLats [][2]float64) []Coordinate {
	coords := make([]Coordinate, len(lonLats))
	for i := range lonLats {
		coords[i] = NewCoordinateFromLonLat(lonLats[i])
	}
	return coords
}

func (c Coordinate) LonLat() [2]float64 {
	return [2]float64{c.Lon, c.Lat}
}

// IsValid. finite and inside lat [-90, 90], lon [-180, 180]
func (c Coordinate) IsValid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// DistanceTo. great-circle distance in miles
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return CalculateHaversineDistance(c.Lat, c.Lon, other.Lat, other.Lon)
}

// CalculateHaversineDistance. calculate haversine distance in miles
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOneRad := util.DegreeToRadians(latOne)
	latTwoRad := util.DegreeToRadians(latTwo)
	dLat := util.DegreeToRadians(latTwo - latOne)
	dLon := util.DegreeToRadians(longTwo - longOne)

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)
	a := sinDLat*sinDLat + math.Cos(latOneRad)*math.Cos(latTwoRad)*sinDLon*sinDLon
	// rounding can push a past 1 for antipodal points
	a = math.Min(a, 1.0)

	c := 2.0 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return pkg.EARTH_RADIUS_MILES * c
}

// GetDestinationPoint returns the destination point given the starting point, bearing (degree) and distance
// dist in miles
func GetDestinationPoint(lat1, lon1 float64, bearing float64, dist float64) (float64, float64) {

	dr := dist / pkg.EARTH_RADIUS_MILES

	bearing = util.DegreeToRadians(bearing)

	lat1 = util.DegreeToRadians(lat1)
	lon1 = util.DegreeToRadians(lon1)

	lat2Part1 := math.Sin(lat1) * math.Cos(dr)
	lat2Part2 := math.Cos(lat1) * math.Sin(dr) * math.Cos(bearing)

	lat2 := math.Asin(lat2Part1 + lat2Part2)

	lon2Part1 := math.Sin(bearing) * math.Sin(dr) * math.Cos(lat1)
	lon2Part2 := math.Cos(dr) - (math.Sin(lat1) * math.Sin(lat2))

	lon2 := lon1 + math.Atan2(lon2Part1, lon2Part2)

	return util.RadiansToDegree(lat2), normalizeLongitude(util.RadiansToDegree(lon2))
}

// normalizeLongitude. long in degree
func normalizeLongitude(long float64) float64 {
	return math.Mod((long+540), 360) - 180.0
}

package geo

import (
	"math"

	"github.com/lintang-b-s/Corridorx/pkg"
	"github.com/lintang-b-s/Corridorx/pkg/util"
)

/*
Interpolate. spherical linear interpolation (slerp) along the great-circle arc from start to end.
t=0 returns start, t=1 returns end. t is clamped to [0, 1].
https://www.movable-type.co.uk/scripts/latlong.html (intermediate point)
*/
func Interpolate(start, end Coordinate, t float64) Coordinate {
	t = util.Clamp(t, 0, 1)

	lat1 := util.DegreeToRadians(start.Lat)
	lon1 := util.DegreeToRadians(start.Lon)
	lat2 := util.DegreeToRadians(end.Lat)
	lon2 := util.DegreeToRadians(end.Lon)

	d := AngularSeparation(lat1, lon1, lat2, lon2)

	// sin(d) -> 0, slerp weights blow up
	if d < pkg.SLERP_EPSILON_RAD {
		return Coordinate{
			Lat: start.Lat + (end.Lat-start.Lat)*t,
			Lon: start.Lon + (end.Lon-start.Lon)*t,
		}
	}

	sinD := math.Sin(d)
	a := math.Sin((1-t)*d) / sinD
	b := math.Sin(t*d) / sinD

	x := a*math.Cos(lat1)*math.Cos(lon1) + b*math.Cos(lat2)*math.Cos(lon2)
	y := a*math.Cos(lat1)*math.Sin(lon1) + b*math.Cos(lat2)*math.Sin(lon2)
	z := a*math.Sin(lat1) + b*math.Sin(lat2)

	lat := math.Atan2(z, math.Sqrt(x*x+y*y))
	lon := math.Atan2(y, x)

	return Coordinate{
		Lat: util.RadiansToDegree(lat),
		Lon: util.RadiansToDegree(lon),
	}
}

// AngularSeparation. central angle (radians) between two points given in radians (spherical law of cosines).
func AngularSeparation(lat1, lon1, lat2, lon2 float64) float64 {
	cosD := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1)
	// rounding may leave cosD slightly outside [-1, 1]
	return math.Acos(util.Clamp(cosD, -1, 1))
}

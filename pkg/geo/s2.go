package geo

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/lintang-b-s/Corridorx/pkg"
)

// ProjectPointToLineCoord. closest point to snap on the great-circle arc pointA-pointB
func ProjectPointToLineCoord(pointA Coordinate, pointB Coordinate,
	snap Coordinate) Coordinate {

	pointAS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(pointA.Lat, pointA.Lon))
	pointBS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(pointB.Lat, pointB.Lon))
	snapS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(snap.Lat, snap.Lon))
	projection := s2.Project(snapS2, pointAS2, pointBS2)
	projectLatLng := s2.LatLngFromPoint(projection)
	return NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees())
}

// PointToSegmentDistanceExact. closed-form alternative to PointToSegmentDistance, in miles.
// projects point onto the arc with s2 instead of sampling it.
func PointToSegmentDistanceExact(point, segmentStart, segmentEnd Coordinate) float64 {
	if segmentStart.DistanceTo(segmentEnd) < pkg.DEGENERATE_SEGMENT_MILES {
		return math.Min(point.DistanceTo(segmentStart), point.DistanceTo(segmentEnd))
	}

	projectionPoint := ProjectPointToLineCoord(segmentStart, segmentEnd, point)

	return point.DistanceTo(projectionPoint)
}

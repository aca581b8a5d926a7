package geo

import (
	"math"

	"github.com/lintang-b-s/Corridorx/pkg"
)

// SegmentProjector returns the minimum distance in miles from point to the arc segmentStart-segmentEnd.
type SegmentProjector func(point, segmentStart, segmentEnd Coordinate) float64

/*
PointToSegmentDistance. minimum great-circle distance (miles) from point to the arc between
segmentStart and segmentEnd.

the arc is scanned at a fixed density (about one sample per half mile, never fewer than
MIN_SEGMENT_SAMPLES intervals) and every sample is placed with slerp. the error is bounded by half
the sample spacing. segments shorter than DEGENERATE_SEGMENT_MILES collapse to their closer endpoint.
*/
func PointToSegmentDistance(point, segmentStart, segmentEnd Coordinate) float64 {
	segmentLength := segmentStart.DistanceTo(segmentEnd)

	if segmentLength < pkg.DEGENERATE_SEGMENT_MILES {
		return math.Min(point.DistanceTo(segmentStart), point.DistanceTo(segmentEnd))
	}

	numSamples := SegmentSampleCount(segmentLength)
	minDistance := math.Inf(1)

	for i := 0; i <= numSamples; i++ {
		t := float64(i) / float64(numSamples)
		sample := Interpolate(segmentStart, segmentEnd, t)
		minDistance = math.Min(minDistance, point.DistanceTo(sample))
	}

	return minDistance
}

// SegmentSampleCount. number of sampling intervals for a segment of segmentLength miles
func SegmentSampleCount(segmentLength float64) int {
	n := int(math.Ceil(segmentLength * pkg.SAMPLES_PER_MILE))
	if n < pkg.MIN_SEGMENT_SAMPLES {
		return pkg.MIN_SEGMENT_SAMPLES
	}
	return n
}

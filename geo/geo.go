// Package geo provides great-circle distance math and a spatial index over a
// fixed set of reference points (subway stops, prior-period listings). The
// index is built once per pipeline run and is read-only afterwards.
package geo

import (
	"math"

	"otodom-pipeline/models"
)

// EarthRadiusKm is the mean Earth radius used for all great-circle math.
const EarthRadiusKm = 6371.0

// CityCenter is the fixed Warsaw center coordinate used for the
// center-distance feature.
var CityCenter = models.ReferencePoint{Name: "center", Latitude: 52.2297, Longitude: 21.0122}

// HaversineKm returns the great-circle distance in kilometers between two
// (lat, lon) points on the WGS84 sphere.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// Round3 rounds a distance to 3 decimal places (meter precision).
func Round3(km float64) float64 {
	return math.Round(km*1000) / 1000
}

// Index answers nearest-neighbor and radius queries over a reference-point
// set in O(log n) via a ball tree on unit-sphere projected coordinates.
type Index struct {
	points []models.ReferencePoint
	tree   *ballTree
}

// NewIndex builds an index over the given reference points. An empty point
// set yields a usable index whose queries return the documented sentinels.
func NewIndex(points []models.ReferencePoint) *Index {
	ix := &Index{points: points}
	if len(points) > 0 {
		ix.tree = buildBallTree(points)
	}
	return ix
}

// Len returns the number of indexed reference points.
func (ix *Index) Len() int {
	return len(ix.points)
}

// NearestKm returns the great-circle distance in km, rounded to 3 decimals,
// from the query point to the nearest reference point. NaN when the index
// is empty.
func (ix *Index) NearestKm(lat, lon float64) float64 {
	if ix.tree == nil {
		return math.NaN()
	}
	idx := ix.tree.nearest(toUnitVec(lat, lon))
	p := ix.points[idx]
	return Round3(HaversineKm(lat, lon, p.Latitude, p.Longitude))
}

// AvgValueWithinRadius averages the Value of all reference points within
// radiusKm of the query point. Returns 0 when no point is in range: callers
// must treat 0 as "no comparable nearby data", not as a true zero average.
func (ix *Index) AvgValueWithinRadius(lat, lon, radiusKm float64) float64 {
	if ix.tree == nil {
		return 0
	}

	// The great-circle radius maps to a chord-length bound on the unit sphere.
	theta := radiusKm / EarthRadiusKm
	chordLimit := 2 * math.Sin(theta/2)

	matches := ix.tree.withinChord(toUnitVec(lat, lon), chordLimit)
	if len(matches) == 0 {
		return 0
	}

	var sum float64
	for _, idx := range matches {
		sum += ix.points[idx].Value
	}
	return sum / float64(len(matches))
}

// toUnitVec projects a (lat, lon) pair onto the unit sphere. Euclidean chord
// distance between projections is monotonic in great-circle distance, which
// makes nearest-neighbor pruning on chords exact.
func toUnitVec(lat, lon float64) vec3 {
	phi := lat * math.Pi / 180
	lambda := lon * math.Pi / 180
	cosPhi := math.Cos(phi)
	return vec3{cosPhi * math.Cos(lambda), cosPhi * math.Sin(lambda), math.Sin(phi)}
}

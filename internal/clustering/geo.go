package clustering

import (
	"math"

	"github.com/jinxed112/fritos-dispatch/pkg/types"
)

const earthRadiusKM = 6371.0

// haversineKM returns the great-circle distance between two points in
// kilometers.
func haversineKM(a, b types.GeographyPoint) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}

// HopMinutes estimates door-to-door drive time between two stops at the
// assumed urban speed.
func HopMinutes(a, b types.GeographyPoint, speedKMH float64) float64 {
	if speedKMH <= 0 {
		return math.Inf(1)
	}
	return haversineKM(a, b) / speedKMH * 60
}

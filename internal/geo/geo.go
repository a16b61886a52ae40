// Package geo provides great-circle distance on a spherical earth.
package geo

import "math"

// EarthRadiusMeters matches the radius PostgreSQL's earthdistance module
// uses, so in-process and in-store distances agree.
const EarthRadiusMeters = 6378168.0

// Point is a WGS-84 coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Distance returns the great-circle distance between a and b in meters
// using the haversine formula.
func Distance(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	if h > 1 {
		h = 1
	}

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// ValidLatitude reports whether lat is within [-90, 90].
func ValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lon is within [-180, 180].
func ValidLongitude(lon float64) bool {
	return lon >= -180 && lon <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Package geo is the pure geospatial kernel: great-circle distance,
// bearing and containment tests. No state, no I/O.
package geo

import (
	"math"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
)

const (
	earthRadiusKm = 6371.0
	earthRadiusM  = 6371000.0
)

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Distance calculates the haversine distance between two points in kilometers.
func Distance(p1, p2 models.Location) float64 {
	lat1Rad := degreesToRadians(p1.Latitude)
	lon1Rad := degreesToRadians(p1.Longitude)
	lat2Rad := degreesToRadians(p2.Latitude)
	lon2Rad := degreesToRadians(p2.Longitude)

	deltaLat := lat2Rad - lat1Rad
	deltaLon := lon2Rad - lon1Rad

	a := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Pow(math.Sin(deltaLon/2), 2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// DistanceMeters is Distance in meters.
func DistanceMeters(p1, p2 models.Location) float64 {
	return Distance(p1, p2) * 1000
}

// Bearing returns the initial great-circle bearing from p1 to p2,
// normalized to [0, 360).
func Bearing(p1, p2 models.Location) float64 {
	lat1Rad := degreesToRadians(p1.Latitude)
	lat2Rad := degreesToRadians(p2.Latitude)
	deltaLon := degreesToRadians(p2.Longitude - p1.Longitude)

	y := math.Sin(deltaLon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) -
		math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLon)

	bearing := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}

// InCircle reports whether point lies within radiusM meters of center.
// A point exactly on the boundary counts as contained.
func InCircle(point, center models.Location, radiusM float64) bool {
	return DistanceMeters(point, center) <= radiusM
}

// InPolygon reports whether point lies inside the ring using the
// ray-casting even-odd rule. The ring does not need to repeat its first
// vertex; fewer than three vertices never contain anything.
func InPolygon(point models.Location, ring []models.Location) bool {
	if len(ring) < 3 {
		return false
	}

	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		yi, xi := ring[i].Latitude, ring[i].Longitude
		yj, xj := ring[j].Latitude, ring[j].Longitude

		intersects := (yi > point.Latitude) != (yj > point.Latitude) &&
			point.Longitude < (xj-xi)*(point.Latitude-yi)/(yj-yi)+xi
		if intersects {
			inside = !inside
		}
		j = i
	}
	return inside
}

package geo

import (
	"math"

	"github.com/UnknownOlympus/ampere/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between a and b.
//
// Inputs are not range checked: callers are expected to reject points for which
// models.Coordinates.Valid is false before asking for a distance.
func Distance(a, b models.Coordinates) float64 {
	phi1 := toRadians(a.Latitude)
	phi2 := toRadians(b.Latitude)
	dPhi := toRadians(b.Latitude - a.Latitude)
	dLambda := toRadians(b.Longitude - a.Longitude)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	// rounding can push h a hair outside [0, 1] near antipodes
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Box is a latitude/longitude aligned bounding box.
type Box struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// BoundingBox returns a box that contains every point within radiusKm of center.
// Longitude bounds are clamped to [-180, 180]; near the poles the box spans all longitudes.
func BoundingBox(center models.Coordinates, radiusKm float64) Box {
	const kmPerDegree = EarthRadiusKm * math.Pi / 180

	dLat := radiusKm / kmPerDegree
	box := Box{
		MinLat: math.Max(-90, center.Latitude-dLat),
		MaxLat: math.Min(90, center.Latitude+dLat),
		MinLon: -180,
		MaxLon: 180,
	}

	cosLat := math.Cos(toRadians(center.Latitude))
	if cosLat > 1e-6 {
		dLon := radiusKm / (kmPerDegree * cosLat)
		if dLon < 180 {
			box.MinLon = math.Max(-180, center.Longitude-dLon)
			box.MaxLon = math.Min(180, center.Longitude+dLon)
		}
	}

	return box
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

package spatial

import (
	"github.com/golang/geo/s2"

	"github.com/jengzang/flights-backend-go/internal/models"
)

// Bounds is a latitude/longitude box in degrees.
type Bounds struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// TrackBounds returns the box covering every point of a track.
// Tracks crossing the antimeridian get the wide box.
func TrackBounds(points []models.TrajectoryPoint) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}

	rect := s2.EmptyRect()
	for _, p := range points {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Latitude, p.Longitude))
	}

	lo, hi := rect.Lo(), rect.Hi()
	b := Bounds{
		MinLat: lo.Lat.Degrees(),
		MinLon: lo.Lng.Degrees(),
		MaxLat: hi.Lat.Degrees(),
		MaxLon: hi.Lng.Degrees(),
	}
	if b.MinLon > b.MaxLon {
		b.MinLon, b.MaxLon = -180, 180
	}
	return b
}

// PathLength sums the great-circle legs of a track in meters.
func PathLength(points []models.TrajectoryPoint) float64 {
	if len(points) < 2 {
		return 0
	}

	polyline := make(s2.Polyline, len(points))
	for i, p := range points {
		polyline[i] = s2.PointFromLatLng(s2.LatLngFromDegrees(p.Latitude, p.Longitude))
	}
	return angleMeters(polyline.Length())
}

// LastLegBearing is the course between the last two points, or 0.
func LastLegBearing(points []models.TrajectoryPoint) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	a, b := points[n-2], points[n-1]
	return Bearing(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// Package geo holds the proximity policy: pure great-circle math over
// latitude/longitude pairs in decimal degrees. Nothing here touches the
// store or the clock.
package geo

import (
	"math"
	"math/rand"
)

const (
	// ReadRadiusMeters is the proximity gate: a locked viewer may read a
	// message only within this distance, boundary inclusive.
	ReadRadiusMeters = 50.0

	// ClampHalfWidthDegrees is the half-width/height of the viewport box
	// imposed around the viewer's position while the map is locked.
	ClampHalfWidthDegrees = 0.0018

	// MaxJitterDegrees is the largest offset applied to either coordinate
	// of a new message so two messages never land on the exact same point.
	MaxJitterDegrees = 0.000025

	earthRadiusMeters = 6371000.0
)

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Bounds is an axis-aligned box of coordinates, used for the camera clamp.
type Bounds struct {
	SouthWest Point `json:"south_west"`
	NorthEast Point `json:"north_east"`
}

// Distance returns the great-circle distance between two points in meters
// using the haversine formula.
func Distance(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// CanRead decides whether a viewer at userPos may read a message at
// messagePos. An active unlock session overrides the distance gate
// entirely; otherwise the gate is inclusive at ReadRadiusMeters.
func CanRead(userPos, messagePos Point, unlockActive bool) bool {
	if unlockActive {
		return true
	}
	return Distance(userPos, messagePos) <= ReadRadiusMeters
}

// ClampBounds returns the viewport box centered on the viewer while locked.
func ClampBounds(center Point) Bounds {
	return Bounds{
		SouthWest: Point{
			Latitude:  center.Latitude - ClampHalfWidthDegrees,
			Longitude: center.Longitude - ClampHalfWidthDegrees,
		},
		NorthEast: Point{
			Latitude:  center.Latitude + ClampHalfWidthDegrees,
			Longitude: center.Longitude + ClampHalfWidthDegrees,
		},
	}
}

// Jitter shifts each coordinate by a uniform random amount within
// ±MaxJitterDegrees so messages dropped at the same spot do not collide.
func Jitter(p Point) Point {
	return Point{
		Latitude:  p.Latitude + (rand.Float64()*2-1)*MaxJitterDegrees,
		Longitude: p.Longitude + (rand.Float64()*2-1)*MaxJitterDegrees,
	}
}

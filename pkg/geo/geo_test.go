package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 0.00044966 degrees of latitude is just under 50 m of arc on the
// sphere used by Distance; 0.00046 degrees is just over.
const (
	latJustInside  = 0.00044966
	latJustOutside = 0.00046
)

func TestDistance(t *testing.T) {
	origin := Point{Latitude: 0, Longitude: 0}

	assert.Equal(t, 0.0, Distance(origin, origin))

	near := Point{Latitude: latJustInside, Longitude: 0}
	d := Distance(origin, near)
	assert.InDelta(t, 50.0, d, 0.05)

	// Symmetric
	assert.Equal(t, d, Distance(near, origin))
}

func TestCanReadWithinRadius(t *testing.T) {
	user := Point{Latitude: 0, Longitude: 0}

	assert.True(t, CanRead(user, Point{Latitude: latJustInside, Longitude: 0}, false))
	assert.False(t, CanRead(user, Point{Latitude: latJustOutside, Longitude: 0}, false))

	// Standing on the message
	assert.True(t, CanRead(user, user, false))
}

func TestCanReadUnlockOverride(t *testing.T) {
	user := Point{Latitude: 0, Longitude: 0}
	farAway := Point{Latitude: 45.0, Longitude: 90.0}

	assert.False(t, CanRead(user, farAway, false))
	assert.True(t, CanRead(user, farAway, true))
}

func TestClampBounds(t *testing.T) {
	center := Point{Latitude: -23.5505, Longitude: -46.6333}

	b := ClampBounds(center)

	assert.Equal(t, center.Latitude-ClampHalfWidthDegrees, b.SouthWest.Latitude)
	assert.Equal(t, center.Longitude-ClampHalfWidthDegrees, b.SouthWest.Longitude)
	assert.Equal(t, center.Latitude+ClampHalfWidthDegrees, b.NorthEast.Latitude)
	assert.Equal(t, center.Longitude+ClampHalfWidthDegrees, b.NorthEast.Longitude)
}

func TestJitterStaysWithinBound(t *testing.T) {
	p := Point{Latitude: 10.0, Longitude: 20.0}

	for i := 0; i < 1000; i++ {
		j := Jitter(p)
		assert.InDelta(t, p.Latitude, j.Latitude, MaxJitterDegrees)
		assert.InDelta(t, p.Longitude, j.Longitude, MaxJitterDegrees)
	}
}

func TestJitterKeepsPointReadable(t *testing.T) {
	// A jittered drop must stay well inside the read radius of the
	// original position.
	p := Point{Latitude: 10.0, Longitude: 20.0}

	for i := 0; i < 100; i++ {
		j := Jitter(p)
		assert.True(t, CanRead(p, j, false))
	}
}

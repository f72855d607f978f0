package location

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"garrafinha/pkg/geo"
)

func TestReportAndLastKnown(t *testing.T) {
	d := NewDirectory()

	_, ok := d.LastKnown("alice@example.com")
	assert.False(t, ok)
	assert.False(t, d.SharingAllowed("alice@example.com"))

	p := geo.Point{Latitude: 1.5, Longitude: -2.5}
	d.Report("alice@example.com", p)

	got, ok := d.LastKnown("alice@example.com")
	assert.True(t, ok)
	assert.Equal(t, p, got)
	assert.True(t, d.SharingAllowed("alice@example.com"))
}

func TestRevokeForgetsPosition(t *testing.T) {
	d := NewDirectory()

	d.Report("alice@example.com", geo.Point{Latitude: 1, Longitude: 2})
	d.Revoke("alice@example.com")

	_, ok := d.LastKnown("alice@example.com")
	assert.False(t, ok)
	assert.False(t, d.SharingAllowed("alice@example.com"))

	// Reporting again restores sharing.
	d.Report("alice@example.com", geo.Point{Latitude: 3, Longitude: 4})
	assert.True(t, d.SharingAllowed("alice@example.com"))
}

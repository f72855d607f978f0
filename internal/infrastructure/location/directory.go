package location

import (
	"sync"

	"garrafinha/pkg/geo"
)

// Directory tracks the last known position each user reported, plus
// whether the user granted location sharing at all. "Unknown" is a valid
// outcome: callers must handle a missing position.
type Directory struct {
	mu        sync.RWMutex
	positions map[string]geo.Point
	sharing   map[string]bool
}

func NewDirectory() *Directory {
	return &Directory{
		positions: make(map[string]geo.Point),
		sharing:   make(map[string]bool),
	}
}

// Report records the user's current position. Reporting implies the
// sharing permission was granted.
func (d *Directory) Report(userID string, p geo.Point) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.positions[userID] = p
	d.sharing[userID] = true
}

// Revoke withdraws the sharing permission and forgets the position.
func (d *Directory) Revoke(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.positions, userID)
	d.sharing[userID] = false
}

// SharingAllowed is the permission gate consulted before any position use.
func (d *Directory) SharingAllowed(userID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sharing[userID]
}

// LastKnown returns the user's last reported position. ok is false when
// the position is unknown or sharing was revoked.
func (d *Directory) LastKnown(userID string) (geo.Point, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.sharing[userID] {
		return geo.Point{}, false
	}
	p, ok := d.positions[userID]
	return p, ok
}

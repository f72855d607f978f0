package entity

import (
	"time"

	"garrafinha/pkg/geo"
)

// MaxRoomMembers caps the participant set of a bottle's chat room.
const MaxRoomMembers = 5

// MessageTTL is how long a bottle stays readable before the next list
// call evicts it.
const MessageTTL = 24 * time.Hour

// Bottle is a geolocated, time-limited text message dropped on the map.
// Its document also carries the chat room membership (AllowedUsers) keyed
// by the same ID.
type Bottle struct {
	ID        string  `json:"id" firestore:"messageId"`
	Text      string  `json:"text" firestore:"text"`
	Latitude  float64 `json:"latitude" firestore:"latitude"`
	Longitude float64 `json:"longitude" firestore:"longitude"`
	Sender    string  `json:"sender" firestore:"sender"`
	// Recipient empty means public: visible to everyone.
	Recipient    string    `json:"recipient,omitempty" firestore:"recipient"`
	AllowedUsers []string  `json:"allowed_users,omitempty" firestore:"allowedUsers"`
	CreatedAt    time.Time `json:"created_at" firestore:"timestamp"`
}

// Position returns the bottle's jittered coordinates.
func (b *Bottle) Position() geo.Point {
	return geo.Point{Latitude: b.Latitude, Longitude: b.Longitude}
}

// VisibleTo reports whether the viewer may see this bottle at all,
// independent of distance.
func (b *Bottle) VisibleTo(viewer string) bool {
	return b.Recipient == "" || b.Recipient == viewer
}

// Expired reports whether the bottle has outlived its TTL at the given
// instant.
func (b *Bottle) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(b.CreatedAt) > ttl
}

// IsMember reports whether userID already sits in the bottle's chat room.
func (b *Bottle) IsMember(userID string) bool {
	for _, u := range b.AllowedUsers {
		if u == userID {
			return true
		}
	}
	return false
}

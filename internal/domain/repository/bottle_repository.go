package repository

import (
	"context"

	"garrafinha/internal/domain/entity"
)

// AdmissionResult is the outcome of a chat room join attempt.
type AdmissionResult int

const (
	// AdmittedExisting: the user was already a member; nothing was written.
	AdmittedExisting AdmissionResult = iota
	// AdmittedNew: the user was appended to the participant set.
	AdmittedNew
	// RejectedFull: the room already holds the maximum number of members.
	RejectedFull
	// RoomCreated: no room existed; one was created with the user as sole
	// member.
	RoomCreated
)

func (r AdmissionResult) String() string {
	switch r {
	case AdmittedExisting:
		return "admitted_existing"
	case AdmittedNew:
		return "admitted_new"
	case RejectedFull:
		return "rejected_full"
	case RoomCreated:
		return "room_created"
	}
	return "unknown"
}

// ChatEventType mirrors the document change stream's event kinds.
type ChatEventType int

const (
	ChatEventAdded ChatEventType = iota
	ChatEventModified
	ChatEventRemoved
)

func (t ChatEventType) String() string {
	switch t {
	case ChatEventAdded:
		return "added"
	case ChatEventModified:
		return "modified"
	case ChatEventRemoved:
		return "removed"
	}
	return "unknown"
}

// ChatEvent is one change pushed by the live subscription on a bottle's
// chat messages.
type ChatEvent struct {
	Type    ChatEventType
	Message *entity.ChatMessage
}

type BottleRepository interface {
	// Create assigns a fresh store-generated ID to the bottle and writes
	// the full document.
	Create(ctx context.Context, bottle *entity.Bottle) error
	GetByID(ctx context.Context, id string) (*entity.Bottle, error)
	// List returns every bottle document, expired ones included; TTL
	// eviction is the caller's concern.
	List(ctx context.Context) ([]*entity.Bottle, error)
	Delete(ctx context.Context, id string) error

	// EnsureMember admits userID to the bottle's chat room, creating the
	// room when absent. The update must be transactional so two
	// simultaneous joiners cannot push membership past the cap.
	EnsureMember(ctx context.Context, bottleID, userID string) (AdmissionResult, error)

	// Chat messages (sub-collection of the bottle document).
	CreateChatMessage(ctx context.Context, bottleID string, message *entity.ChatMessage) error
	ListChatMessages(ctx context.Context, bottleID string) ([]*entity.ChatMessage, error)
	// ListenChatMessages streams change events until ctx is cancelled. The
	// returned channel is closed when the subscription ends.
	ListenChatMessages(ctx context.Context, bottleID string) (<-chan ChatEvent, error)
}

type EntitlementRepository interface {
	// Get returns the entitlement record, or a NOT_FOUND error when the
	// user has none.
	Get(ctx context.Context, userID string) (*entity.Entitlement, error)
	// GrantMapUnlock records a standing unlock entitlement for the user.
	GrantMapUnlock(ctx context.Context, userID string) error
}

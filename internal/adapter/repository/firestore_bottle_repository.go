package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"garrafinha/internal/domain/entity"
	"garrafinha/internal/domain/repository"
	"garrafinha/pkg/errors"
)

const bottleCollection = "garrafinhas"

type firestoreBottleRepository struct {
	client *firestore.Client
}

func NewFirestoreBottleRepository(client *firestore.Client) repository.BottleRepository {
	return &firestoreBottleRepository{
		client: client,
	}
}

func (r *firestoreBottleRepository) Create(ctx context.Context, bottle *entity.Bottle) error {
	// The store assigns the ID exactly once, at creation.
	ref := r.client.Collection(bottleCollection).NewDoc()
	bottle.ID = ref.ID
	bottle.CreatedAt = time.Now()

	if _, err := ref.Set(ctx, bottle); err != nil {
		return errors.StoreUnavailable("Failed to create bottle", err)
	}

	return nil
}

func (r *firestoreBottleRepository) GetByID(ctx context.Context, id string) (*entity.Bottle, error) {
	doc, err := r.client.Collection(bottleCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Bottle", err)
		}
		return nil, errors.StoreUnavailable("Failed to get bottle", err)
	}

	var bottle entity.Bottle
	if err := doc.DataTo(&bottle); err != nil {
		return nil, errors.Internal("Failed to parse bottle data", err)
	}
	bottle.ID = doc.Ref.ID
	return &bottle, nil
}

func (r *firestoreBottleRepository) List(ctx context.Context) ([]*entity.Bottle, error) {
	iter := r.client.Collection(bottleCollection).Documents(ctx)
	var bottles []*entity.Bottle

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating bottles: %v", err)
			return nil, errors.StoreUnavailable("Failed to iterate bottles", err)
		}

		var bottle entity.Bottle
		if err := doc.DataTo(&bottle); err != nil {
			log.Printf("Error parsing bottle data for %s: %v", doc.Ref.ID, err)
			continue // Skip bad data instead of failing
		}
		bottle.ID = doc.Ref.ID
		bottles = append(bottles, &bottle)
	}

	return bottles, nil
}

func (r *firestoreBottleRepository) Delete(ctx context.Context, id string) error {
	ref := r.client.Collection(bottleCollection).Doc(id)

	// Firestore deletes are idempotent; probe first so a vanished document
	// surfaces as NOT_FOUND and the caller can clear its cache entry.
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Bottle", err)
		}
		return errors.StoreUnavailable("Failed to get bottle", err)
	}

	if _, err := ref.Delete(ctx); err != nil {
		return errors.StoreUnavailable("Failed to delete bottle", err)
	}

	return nil
}

// EnsureMember runs the join as a transaction: the read and the
// conditional append commit atomically, so two joiners racing on a room
// with four members cannot both slip past the cap.
func (r *firestoreBottleRepository) EnsureMember(ctx context.Context, bottleID, userID string) (repository.AdmissionResult, error) {
	ref := r.client.Collection(bottleCollection).Doc(bottleID)
	var result repository.AdmissionResult

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				result = repository.RoomCreated
				return tx.Set(ref, map[string]interface{}{
					"allowedUsers": []string{userID},
				}, firestore.MergeAll)
			}
			return err
		}

		var bottle entity.Bottle
		if err := doc.DataTo(&bottle); err != nil {
			return err
		}

		if bottle.IsMember(userID) {
			result = repository.AdmittedExisting
			return nil
		}

		if len(bottle.AllowedUsers) >= entity.MaxRoomMembers {
			result = repository.RejectedFull
			return nil
		}

		result = repository.AdmittedNew
		return tx.Update(ref, []firestore.Update{
			{Path: "allowedUsers", Value: append(bottle.AllowedUsers, userID)},
		})
	})
	if err != nil {
		return 0, errors.StoreUnavailable("Failed to join chat room", err)
	}

	return result, nil
}

func (r *firestoreBottleRepository) CreateChatMessage(ctx context.Context, bottleID string, message *entity.ChatMessage) error {
	_, _, err := r.client.Collection(bottleCollection).Doc(bottleID).Collection("messages").Add(ctx, message)
	if err != nil {
		return errors.StoreUnavailable("Failed to send chat message", err)
	}

	return nil
}

func (r *firestoreBottleRepository) ListChatMessages(ctx context.Context, bottleID string) ([]*entity.ChatMessage, error) {
	query := r.client.Collection(bottleCollection).Doc(bottleID).Collection("messages").OrderBy("timestamp", firestore.Asc)

	iter := query.Documents(ctx)
	var messages []*entity.ChatMessage

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating chat of bottle %s: %v", bottleID, err)
			return nil, errors.StoreUnavailable("Failed to iterate chat messages", err)
		}

		var message entity.ChatMessage
		if err := doc.DataTo(&message); err != nil {
			log.Printf("Error parsing chat message for bottle %s: %v", bottleID, err)
			continue
		}
		messages = append(messages, &message)
	}

	return messages, nil
}

// ListenChatMessages bridges the store's snapshot listener onto a channel
// of change events. The channel closes when ctx is cancelled or the
// listener fails.
func (r *firestoreBottleRepository) ListenChatMessages(ctx context.Context, bottleID string) (<-chan repository.ChatEvent, error) {
	query := r.client.Collection(bottleCollection).Doc(bottleID).Collection("messages").OrderBy("timestamp", firestore.Asc)

	events := make(chan repository.ChatEvent)
	snapshots := query.Snapshots(ctx)

	go func() {
		defer close(events)
		defer snapshots.Stop()

		for {
			snap, err := snapshots.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("Snapshot listener for bottle %s failed: %v", bottleID, err)
				}
				return
			}

			for _, change := range snap.Changes {
				var message entity.ChatMessage
				if err := change.Doc.DataTo(&message); err != nil {
					log.Printf("Error parsing chat change for bottle %s: %v", bottleID, err)
					continue
				}

				event := repository.ChatEvent{Message: &message}
				switch change.Kind {
				case firestore.DocumentAdded:
					event.Type = repository.ChatEventAdded
				case firestore.DocumentModified:
					event.Type = repository.ChatEventModified
				case firestore.DocumentRemoved:
					event.Type = repository.ChatEventRemoved
				}

				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

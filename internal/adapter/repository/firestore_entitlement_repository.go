package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"garrafinha/internal/domain/entity"
	"garrafinha/internal/domain/repository"
	"garrafinha/pkg/errors"
)

const entitlementCollection = "unlockedUsers"

type firestoreEntitlementRepository struct {
	client *firestore.Client
}

func NewFirestoreEntitlementRepository(client *firestore.Client) repository.EntitlementRepository {
	return &firestoreEntitlementRepository{
		client: client,
	}
}

func (r *firestoreEntitlementRepository) Get(ctx context.Context, userID string) (*entity.Entitlement, error) {
	doc, err := r.client.Collection(entitlementCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Entitlement", err)
		}
		return nil, errors.StoreUnavailable("Failed to get entitlement", err)
	}

	var entitlement entity.Entitlement
	if err := doc.DataTo(&entitlement); err != nil {
		return nil, errors.Internal("Failed to parse entitlement data", err)
	}
	entitlement.UserID = doc.Ref.ID
	return &entitlement, nil
}

func (r *firestoreEntitlementRepository) GrantMapUnlock(ctx context.Context, userID string) error {
	_, err := r.client.Collection(entitlementCollection).Doc(userID).Set(ctx, map[string]interface{}{
		"userId":      userID,
		"mapUnlocked": true,
	})
	if err != nil {
		return errors.StoreUnavailable("Failed to grant entitlement", err)
	}

	return nil
}

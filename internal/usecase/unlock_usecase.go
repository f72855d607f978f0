package usecase

import (
	"context"
	"time"

	"garrafinha/internal/domain/repository"
	"garrafinha/internal/domain/service"
	"garrafinha/internal/infrastructure/location"
	"garrafinha/pkg/errors"
	"garrafinha/pkg/geo"
	"garrafinha/pkg/logger"
)

type UnlockUseCase struct {
	entitlementRepo repository.EntitlementRepository
	billing         service.BillingService
	sessions        *UnlockSessionManager
	locations       *location.Directory
	unlockProductID string
}

func NewUnlockUseCase(
	entitlementRepo repository.EntitlementRepository,
	billing service.BillingService,
	sessions *UnlockSessionManager,
	locations *location.Directory,
	unlockProductID string,
) *UnlockUseCase {
	uc := &UnlockUseCase{
		entitlementRepo: entitlementRepo,
		billing:         billing,
		sessions:        sessions,
		locations:       locations,
		unlockProductID: unlockProductID,
	}
	sessions.SetOnExpire(uc.handleExpiry)
	return uc
}

// UnlockStatus is the caller-visible view of a user's unlock state.
type UnlockStatus struct {
	State     UnlockState `json:"state"`
	Entitled  bool        `json:"entitled"`
	ExpiresAt *time.Time  `json:"expiresAt,omitempty"`
	Bounds    *geo.Bounds `json:"bounds,omitempty"`
}

// CheckEntitlement reports whether the user holds a persisted map unlock
// entitlement. Absence of the record and store failures both read as not
// entitled; failures are logged, never surfaced.
func (uc *UnlockUseCase) CheckEntitlement(ctx context.Context, userID string) bool {
	ent, err := uc.entitlementRepo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			logger.Error("Entitlement check failed for user %s: %v", userID, err)
		}
		return false
	}
	return ent.MapUnlocked
}

// Status returns the user's current unlock state plus the camera clamp
// bounds that apply while locked, when a last known position exists.
func (uc *UnlockUseCase) Status(ctx context.Context, userID string) *UnlockStatus {
	status := &UnlockStatus{
		State:    StateLocked,
		Entitled: uc.CheckEntitlement(ctx, userID),
	}

	if uc.sessions.Active(userID) {
		status.State = StateUnlocked
		if exp, ok := uc.sessions.ExpiresAt(userID); ok {
			status.ExpiresAt = &exp
		}
		return status
	}

	if pos, ok := uc.locations.LastKnown(userID); ok {
		b := geo.ClampBounds(pos)
		status.Bounds = &b
	}
	return status
}

// Unlock arms an unlock session for the user. Entitled users are armed
// directly; everyone else goes through the purchase pipeline first.
// Re-arming while already unlocked restarts the countdown with a fresh
// full duration.
func (uc *UnlockUseCase) Unlock(ctx context.Context, userID string) (*UnlockStatus, error) {
	if !uc.CheckEntitlement(ctx, userID) {
		if err := uc.purchaseUnlock(ctx, userID); err != nil {
			return nil, err
		}
	}

	expiresAt := uc.sessions.Arm(userID)
	return &UnlockStatus{
		State:     StateUnlocked,
		Entitled:  true,
		ExpiresAt: &expiresAt,
	}, nil
}

// purchaseUnlock runs the billing flow for the map unlock product and
// persists the entitlement on success. The purchase is consumed right
// after acknowledgement so the product can be bought again later.
func (uc *UnlockUseCase) purchaseUnlock(ctx context.Context, userID string) error {
	product, err := uc.billing.QueryProduct(ctx, uc.unlockProductID)
	if err != nil {
		return errors.Billing("Product not available", err)
	}

	purchase, err := uc.billing.LaunchPurchase(ctx, userID, product)
	if err != nil {
		return errors.Billing("Purchase could not be launched", err)
	}
	if purchase.State != service.PurchasePurchased {
		return errors.Billing("Purchase was not completed", nil)
	}

	if err := uc.billing.Acknowledge(ctx, purchase.PurchaseToken); err != nil {
		return errors.Billing("Purchase could not be acknowledged", err)
	}
	if err := uc.billing.Consume(ctx, purchase.PurchaseToken); err != nil {
		// The flow continues; the token is spent either way.
		logger.Error("Consume failed for purchase %s: %v", purchase.OrderID, err)
	}

	if err := uc.entitlementRepo.GrantMapUnlock(ctx, userID); err != nil {
		logger.Error("Entitlement grant failed after consumed purchase %s: %v", purchase.OrderID, err)
		return err
	}

	logger.Info("Map unlock entitlement granted to user %s (order %s)", userID, purchase.OrderID)
	return nil
}

func (uc *UnlockUseCase) handleExpiry(userID string) {
	pos, ok := uc.locations.LastKnown(userID)
	if !ok {
		logger.Info("Session for user %s reverted to LOCKED with no known position", userID)
		return
	}
	b := geo.ClampBounds(pos)
	logger.Info("Session for user %s reverted to LOCKED, clamp re-imposed around (%f, %f)",
		userID, b.SouthWest.Latitude, b.SouthWest.Longitude)
}

package usecase

import (
	"context"
	"strings"
	"time"

	"garrafinha/internal/domain/entity"
	"garrafinha/internal/domain/repository"
	"garrafinha/internal/domain/service"
	"garrafinha/internal/infrastructure/location"
	"garrafinha/internal/infrastructure/ratelimit"
	"garrafinha/pkg/errors"
	"garrafinha/pkg/geo"
	"garrafinha/pkg/logger"
)

type BottleUseCase struct {
	bottleRepo       repository.BottleRepository
	sessions         *UnlockSessionManager
	locations        *location.Directory
	rateLimiter      *ratelimit.RateLimiter
	billing          service.BillingService
	destroyProductID string
	ttl              time.Duration
}

func NewBottleUseCase(
	bottleRepo repository.BottleRepository,
	sessions *UnlockSessionManager,
	locations *location.Directory,
	rateLimiter *ratelimit.RateLimiter,
	billing service.BillingService,
	destroyProductID string,
	ttl time.Duration,
) *BottleUseCase {
	return &BottleUseCase{
		bottleRepo:       bottleRepo,
		sessions:         sessions,
		locations:        locations,
		rateLimiter:      rateLimiter,
		billing:          billing,
		destroyProductID: destroyProductID,
		ttl:              ttl,
	}
}

type CreateBottleInput struct {
	Text      string
	Latitude  float64
	Longitude float64
	Recipient string
}

// BottleView is a bottle annotated for one viewer: whether the viewer
// may read its text right now, and how far away it is when the viewer's
// position is known.
type BottleView struct {
	*entity.Bottle
	Readable       bool     `json:"readable"`
	DistanceMeters *float64 `json:"distanceMeters,omitempty"`
}

// Create drops a new bottle at the given position. The stored position
// gets a small random jitter so two bottles dropped at the same spot
// never coincide exactly.
func (uc *BottleUseCase) Create(ctx context.Context, sender string, input CreateBottleInput) (*entity.Bottle, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, errors.Validation("Message text cannot be empty", nil)
	}

	if allowed, wait := uc.rateLimiter.Allow(sender, "create_bottle"); !allowed {
		logger.Warn("Rate limit hit for user %s creating bottle, retry in %s", sender, wait)
		return nil, errors.TooManyRequests("Too many bottles created, slow down")
	}

	pos := geo.Jitter(geo.Point{Latitude: input.Latitude, Longitude: input.Longitude})

	bottle := &entity.Bottle{
		Text:      input.Text,
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Sender:    sender,
		Recipient: input.Recipient,
	}

	if err := uc.bottleRepo.Create(ctx, bottle); err != nil {
		return nil, err
	}

	logger.Info("Bottle %s dropped by %s at (%f, %f)", bottle.ID, sender, pos.Latitude, pos.Longitude)
	return bottle, nil
}

// ListVisible returns every live bottle the viewer is allowed to see,
// annotated with readability. Expired bottles found during the scan are
// deleted from the store before being excluded. Bottles that landed on
// an already-listed position are collapsed into the first one.
func (uc *BottleUseCase) ListVisible(ctx context.Context, viewer string) ([]*BottleView, error) {
	bottles, err := uc.bottleRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userPos, hasPos := uc.locations.LastKnown(viewer)
	unlocked := uc.sessions.Active(viewer)

	seen := make(map[geo.Point]bool)
	views := make([]*BottleView, 0, len(bottles))
	for _, b := range bottles {
		if b.Expired(now, uc.ttl) {
			if err := uc.bottleRepo.Delete(ctx, b.ID); err != nil {
				logger.Error("Failed to evict expired bottle %s: %v", b.ID, err)
			}
			continue
		}
		if !b.VisibleTo(viewer) {
			continue
		}
		if seen[b.Position()] {
			continue
		}
		seen[b.Position()] = true

		view := &BottleView{Bottle: b}
		if hasPos {
			d := geo.Distance(userPos, b.Position())
			view.DistanceMeters = &d
			view.Readable = geo.CanRead(userPos, b.Position(), unlocked)
		} else {
			view.Readable = unlocked
		}
		views = append(views, view)
	}
	return views, nil
}

// MapBounds returns the viewport clamp for the viewer, or nil when the
// viewer is unlocked or has no known position.
func (uc *BottleUseCase) MapBounds(viewer string) *geo.Bounds {
	if uc.sessions.Active(viewer) {
		return nil
	}
	pos, ok := uc.locations.LastKnown(viewer)
	if !ok {
		return nil
	}
	b := geo.ClampBounds(pos)
	return &b
}

// Read returns a single bottle if the viewer may read it. Targeted
// bottles stay hidden from everyone but their recipient, and a locked
// viewer outside the read radius is refused.
func (uc *BottleUseCase) Read(ctx context.Context, viewer, id string) (*entity.Bottle, error) {
	bottle, err := uc.bottleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if bottle.Expired(time.Now(), uc.ttl) {
		if err := uc.bottleRepo.Delete(ctx, id); err != nil {
			logger.Error("Failed to evict expired bottle %s: %v", id, err)
		}
		return nil, errors.NotFound("Bottle", nil)
	}

	if !bottle.VisibleTo(viewer) {
		// Hidden, not forbidden: targeted bottles do not exist for others.
		return nil, errors.NotFound("Bottle", nil)
	}

	if uc.sessions.Active(viewer) {
		return bottle, nil
	}

	if !uc.locations.SharingAllowed(viewer) {
		return nil, errors.Forbidden("Location sharing is off, enable it to read nearby bottles", nil)
	}
	userPos, ok := uc.locations.LastKnown(viewer)
	if !ok {
		return nil, errors.Forbidden("Position unknown, move closer to the bottle to read it", nil)
	}
	if !geo.CanRead(userPos, bottle.Position(), false) {
		return nil, errors.Forbidden("Too far away to read this bottle", nil)
	}
	return bottle, nil
}

// Destroy removes a bottle after a successful paid destruction. The
// purchase is acknowledged and consumed before the delete runs, so a
// failed delete leaves a spent token; that inconsistency is logged and
// the error surfaced.
func (uc *BottleUseCase) Destroy(ctx context.Context, userID, id string) error {
	if _, err := uc.bottleRepo.GetByID(ctx, id); err != nil {
		return err
	}

	product, err := uc.billing.QueryProduct(ctx, uc.destroyProductID)
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
		logger.Error("Consume failed for purchase %s: %v", purchase.OrderID, err)
	}

	if err := uc.bottleRepo.Delete(ctx, id); err != nil {
		logger.Error("Destroy of bottle %s failed after consumed purchase %s: %v", id, purchase.OrderID, err)
		return err
	}

	logger.Info("Bottle %s destroyed by %s (order %s)", id, userID, purchase.OrderID)
	return nil
}

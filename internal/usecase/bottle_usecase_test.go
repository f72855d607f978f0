package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"garrafinha/internal/domain/entity"
	"garrafinha/internal/domain/service"
	"garrafinha/internal/infrastructure/location"
	"garrafinha/internal/infrastructure/ratelimit"
	"garrafinha/pkg/errors"
	"garrafinha/pkg/geo"
)

func newBottleUseCaseForTest(repo *fakeBottleRepo) (*BottleUseCase, *UnlockSessionManager, *location.Directory) {
	sessions := NewUnlockSessionManager(time.Minute)
	locations := location.NewDirectory()
	billing := service.NewSimulatedBillingService("unlock_map_movement", "destroy_message")
	uc := NewBottleUseCase(repo, sessions, locations, ratelimit.NewRateLimiter(), billing, "destroy_message", entity.MessageTTL)
	return uc, sessions, locations
}

func TestCreateBottleRejectsEmptyText(t *testing.T) {
	repo := newFakeBottleRepo()
	uc, _, _ := newBottleUseCaseForTest(repo)

	_, err := uc.Create(context.Background(), "alice@example.com", CreateBottleInput{Text: "   "})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	bottles, _ := repo.List(context.Background())
	assert.Empty(t, bottles)
}

func TestCreateBottleJittersPosition(t *testing.T) {
	repo := newFakeBottleRepo()
	uc, _, _ := newBottleUseCaseForTest(repo)

	requested := geo.Point{Latitude: 10.0, Longitude: 20.0}
	bottle, err := uc.Create(context.Background(), "alice@example.com", CreateBottleInput{
		Text:      "hello",
		Latitude:  requested.Latitude,
		Longitude: requested.Longitude,
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, bottle.ID)
	assert.Equal(t, "alice@example.com", bottle.Sender)

	assert.InDelta(t, requested.Latitude, bottle.Latitude, geo.MaxJitterDegrees)
	assert.InDelta(t, requested.Longitude, bottle.Longitude, geo.MaxJitterDegrees)
}

func TestListVisibleEvictsExpired(t *testing.T) {
	repo := newFakeBottleRepo()
	uc, _, _ := newBottleUseCaseForTest(repo)

	repo.put(&entity.Bottle{ID: "old", Text: "stale", CreatedAt: time.Now().Add(-25 * time.Hour)})
	repo.put(&entity.Bottle{ID: "fresh", Text: "live", CreatedAt: time.Now()})

	views, err := uc.ListVisible(context.Background(), "alice@example.com")
	assert.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, "fresh", views[0].ID)

	// The expired document is gone from the store, not just filtered.
	_, err = repo.GetByID(context.Background(), "old")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestListVisibleHidesTargetedBottles(t *testing.T) {
	repo := newFakeBottleRepo()
	uc, _, _ := newBottleUseCaseForTest(repo)

	repo.put(&entity.Bottle{ID: "pub", Text: "for all", CreatedAt: time.Now()})
	repo.put(&entity.Bottle{ID: "mine", Text: "for alice", Recipient: "alice@example.com", CreatedAt: time.Now(), Latitude: 1})
	repo.put(&entity.Bottle{ID: "other", Text: "for bob", Recipient: "bob@example.com", CreatedAt: time.Now(), Latitude: 2})

	views, err := uc.ListVisible(context.Background(), "alice@example.com")
	assert.NoError(t, err)
	assert.Len(t, views, 2)

	ids := []string{views[0].ID, views[1].ID}
	assert.Contains(t, ids, "pub")
	assert.Contains(t, ids, "mine")
}

func TestListVisibleReadableAnnotation(t *testing.T) {
	repo := newFakeBottleRepo()
	uc, sessions, locations := newBottleUseCaseForTest(repo)

	repo.put(&entity.Bottle{ID: "near", Text: "close by", CreatedAt: time.Now()})
	repo.put(&entity.Bottle{ID: "far", Text: "distant", Latitude: 1.0, CreatedAt: time.Now()})

	locations.Report("alice@example.com", geo.Point{Latitude: 0, Longitude: 0})

	views, err := uc.ListVisible(context.Background(), "alice@example.com")
	assert.NoError(t, err)
	assert.Len(t, views, 2)

	byID := map[string]*BottleView{}
	for _, v := range views {
		byID[v.ID] = v
	}
	assert.True(t, byID["near"].Readable)
	assert.False(t, byID["far"].Readable)
	assert.NotNil(t, byID["far"].DistanceMeters)

	// An active session makes everything readable.
	sessions.Arm("alice@example.com")
	views, _ = uc.ListVisible(context.Background(), "alice@example.com")
	for _, v := range views {
		assert.True(t, v.Readable)
	}
}

func TestListVisibleCollapsesCoincidentPositions(t *testing.T) {
	repo := newFakeBottleRepo()
	uc, _, _ := newBottleUseCaseForTest(repo)

	repo.put(&entity.Bottle{ID: "a", Text: "first", Latitude: 5, Longitude: 5, CreatedAt: time.Now()})
	repo.put(&entity.Bottle{ID: "b", Text: "second", Latitude: 5, Longitude: 5, CreatedAt: time.Now()})

	views, err := uc.ListVisible(context.Background(), "alice@example.com")
	assert.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestMapBounds(t *testing.T) {
	repo := newFakeBottleRepo()
	uc, sessions, locations := newBottleUseCaseForTest(repo)

	// No known position: nothing to clamp around.
	assert.Nil(t, uc.MapBounds("alice@example.com"))

	locations.Report("alice@example.com", geo.Point{Latitude: 10, Longitude: 20})
	bounds := uc.MapBounds("alice@example.com")
	if assert.NotNil(t, bounds) {
		assert.Equal(t, 10-geo.ClampHalfWidthDegrees, bounds.SouthWest.Latitude)
		assert.Equal(t, 20+geo.ClampHalfWidthDegrees, bounds.NorthEast.Longitude)
	}

	// An active session lifts the clamp.
	sessions.Arm("alice@example.com")
	assert.Nil(t, uc.MapBounds("alice@example.com"))
}

func TestReadEnforcesProximity(t *testing.T) {
	repo := newFakeBottleRepo()
	uc, sessions, locations := newBottleUseCaseForTest(repo)

	repo.put(&entity.Bottle{ID: "far", Text: "distant", Latitude: 1.0, CreatedAt: time.Now()})

	// No known position and no session.
	_, err := uc.Read(context.Background(), "alice@example.com", "far")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	// Known position, still out of range.
	locations.Report("alice@example.com", geo.Point{Latitude: 0, Longitude: 0})
	_, err = uc.Read(context.Background(), "alice@example.com", "far")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	// An unlock session overrides distance.
	sessions.Arm("alice@example.com")
	bottle, err := uc.Read(context.Background(), "alice@example.com", "far")
	assert.NoError(t, err)
	assert.Equal(t, "distant", bottle.Text)
}

func TestReadRequiresLocationSharing(t *testing.T) {
	repo := newFakeBottleRepo()
	uc, _, locations := newBottleUseCaseForTest(repo)

	repo.put(&entity.Bottle{ID: "b1", Text: "close by", CreatedAt: time.Now()})

	// In range, then sharing withdrawn: the permission gate refuses the
	// read even though the position would have qualified.
	locations.Report("alice@example.com", geo.Point{Latitude: 0, Longitude: 0})
	_, err := uc.Read(context.Background(), "alice@example.com", "b1")
	assert.NoError(t, err)

	locations.Revoke("alice@example.com")
	_, err = uc.Read(context.Background(), "alice@example.com", "b1")
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestReadHidesTargetedBottleFromOthers(t *testing.T) {
	repo := newFakeBottleRepo()
	uc, sessions, _ := newBottleUseCaseForTest(repo)

	repo.put(&entity.Bottle{ID: "secret", Text: "ours", Recipient: "bob@example.com", CreatedAt: time.Now()})

	sessions.Arm("alice@example.com")
	_, err := uc.Read(context.Background(), "alice@example.com", "secret")
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	sessions.Arm("bob@example.com")
	bottle, err := uc.Read(context.Background(), "bob@example.com", "secret")
	assert.NoError(t, err)
	assert.Equal(t, "ours", bottle.Text)
}

func TestDestroyRemovesBottle(t *testing.T) {
	repo := newFakeBottleRepo()
	uc, _, _ := newBottleUseCaseForTest(repo)

	repo.put(&entity.Bottle{ID: "doomed", Text: "bye", CreatedAt: time.Now()})

	err := uc.Destroy(context.Background(), "alice@example.com", "doomed")
	assert.NoError(t, err)

	_, err = repo.GetByID(context.Background(), "doomed")
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	// A second destroy of the same bottle reports not found.
	err = uc.Destroy(context.Background(), "alice@example.com", "doomed")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

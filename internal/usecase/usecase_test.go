package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"garrafinha/internal/domain/entity"
	"garrafinha/internal/domain/repository"
	"garrafinha/pkg/errors"
)

// fakeBottleRepo is an in-memory stand-in for the Firestore repository,
// keeping the same admission and not-found semantics.
type fakeBottleRepo struct {
	mu       sync.Mutex
	bottles  map[string]*entity.Bottle
	messages map[string][]*entity.ChatMessage
	nextID   int
}

func newFakeBottleRepo() *fakeBottleRepo {
	return &fakeBottleRepo{
		bottles:  make(map[string]*entity.Bottle),
		messages: make(map[string][]*entity.ChatMessage),
	}
}

// put stores a bottle as-is, letting tests control IDs and timestamps.
func (r *fakeBottleRepo) put(b *entity.Bottle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bottles[b.ID] = b
}

func (r *fakeBottleRepo) Create(ctx context.Context, bottle *entity.Bottle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	bottle.ID = fmt.Sprintf("bottle-%d", r.nextID)
	if bottle.CreatedAt.IsZero() {
		bottle.CreatedAt = time.Now()
	}
	r.bottles[bottle.ID] = bottle
	return nil
}

func (r *fakeBottleRepo) GetByID(ctx context.Context, id string) (*entity.Bottle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bottles[id]
	if !ok {
		return nil, errors.NotFound("Bottle", nil)
	}
	return b, nil
}

func (r *fakeBottleRepo) List(ctx context.Context) ([]*entity.Bottle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Bottle, 0, len(r.bottles))
	for _, b := range r.bottles {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBottleRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bottles[id]; !ok {
		return errors.NotFound("Bottle", nil)
	}
	delete(r.bottles, id)
	return nil
}

func (r *fakeBottleRepo) EnsureMember(ctx context.Context, bottleID, userID string) (repository.AdmissionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bottles[bottleID]
	if !ok {
		b = &entity.Bottle{ID: bottleID, AllowedUsers: []string{userID}}
		r.bottles[bottleID] = b
		return repository.RoomCreated, nil
	}
	if b.IsMember(userID) {
		return repository.AdmittedExisting, nil
	}
	if len(b.AllowedUsers) >= entity.MaxRoomMembers {
		return repository.RejectedFull, nil
	}
	b.AllowedUsers = append(b.AllowedUsers, userID)
	return repository.AdmittedNew, nil
}

func (r *fakeBottleRepo) CreateChatMessage(ctx context.Context, bottleID string, message *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages[bottleID] = append(r.messages[bottleID], message)
	return nil
}

func (r *fakeBottleRepo) ListChatMessages(ctx context.Context, bottleID string) ([]*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.ChatMessage, len(r.messages[bottleID]))
	copy(out, r.messages[bottleID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (r *fakeBottleRepo) ListenChatMessages(ctx context.Context, bottleID string) (<-chan repository.ChatEvent, error) {
	msgs, _ := r.ListChatMessages(ctx, bottleID)

	ch := make(chan repository.ChatEvent, len(msgs))
	for _, m := range msgs {
		ch <- repository.ChatEvent{Type: repository.ChatEventAdded, Message: m}
	}
	close(ch)
	return ch, nil
}

// fakeEntitlementRepo records grants and can simulate store failures.
type fakeEntitlementRepo struct {
	mu       sync.Mutex
	unlocked map[string]bool
	getErr   error
	grants   int
}

func newFakeEntitlementRepo() *fakeEntitlementRepo {
	return &fakeEntitlementRepo{unlocked: make(map[string]bool)}
}

func (r *fakeEntitlementRepo) Get(ctx context.Context, userID string) (*entity.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.getErr != nil {
		return nil, r.getErr
	}
	if !r.unlocked[userID] {
		return nil, errors.NotFound("Entitlement", nil)
	}
	return &entity.Entitlement{UserID: userID, MapUnlocked: true}, nil
}

func (r *fakeEntitlementRepo) GrantMapUnlock(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unlocked[userID] = true
	r.grants++
	return nil
}

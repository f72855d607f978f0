package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"garrafinha/internal/domain/entity"
	"garrafinha/internal/domain/repository"
	"garrafinha/internal/infrastructure/ratelimit"
	ws "garrafinha/internal/infrastructure/websocket"
	"garrafinha/pkg/errors"
	"garrafinha/pkg/logger"
)

type ChatUseCase struct {
	bottleRepo  repository.BottleRepository
	rateLimiter *ratelimit.RateLimiter
	wsManager   *ws.Manager
}

func NewChatUseCase(bottleRepo repository.BottleRepository, rateLimiter *ratelimit.RateLimiter, wsManager *ws.Manager) *ChatUseCase {
	return &ChatUseCase{
		bottleRepo:  bottleRepo,
		rateLimiter: rateLimiter,
		wsManager:   wsManager,
	}
}

// JoinResult tells the caller how their admission attempt ended.
type JoinResult struct {
	BottleID  string `json:"bottleId"`
	Admission string `json:"admission"`
}

// Join admits the user into the bottle's chat room. Rejoining as an
// existing member succeeds without changing the room; a room at capacity
// refuses new members.
func (uc *ChatUseCase) Join(ctx context.Context, userID, bottleID string) (*JoinResult, error) {
	result, err := uc.bottleRepo.EnsureMember(ctx, bottleID, userID)
	if err != nil {
		return nil, err
	}
	if result == repository.RejectedFull {
		return nil, errors.RoomFull("Chat room is full")
	}

	// Connected subscribers learn about new members immediately; the
	// joiner already knows.
	if result == repository.AdmittedNew || result == repository.RoomCreated {
		payload, err := json.Marshal(map[string]string{
			"type":   "member_joined",
			"userId": userID,
		})
		if err == nil {
			uc.wsManager.SendToRoom(bottleID, payload, userID)
		}
	}

	logger.Info("User %s admission to room %s: %s", userID, bottleID, result)
	return &JoinResult{BottleID: bottleID, Admission: result.String()}, nil
}

// SendMessage appends a chat message to the bottle's room. Only admitted
// members may post; delivery to connected listeners rides the store's
// snapshot stream, not this call.
func (uc *ChatUseCase) SendMessage(ctx context.Context, userID, bottleID, text string) (*entity.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.Validation("Message text cannot be empty", nil)
	}

	if allowed, wait := uc.rateLimiter.Allow(userID, "send_chat"); !allowed {
		logger.Warn("Rate limit hit for user %s in room %s, retry in %s", userID, bottleID, wait)
		return nil, errors.TooManyRequests("Too many messages, slow down")
	}

	if err := uc.requireMember(ctx, userID, bottleID); err != nil {
		return nil, err
	}

	message := &entity.ChatMessage{
		SenderID:  userID,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := uc.bottleRepo.CreateChatMessage(ctx, bottleID, message); err != nil {
		return nil, err
	}
	return message, nil
}

// History returns the room's messages oldest first, with exact duplicates
// on (timestamp, text) collapsed to their first occurrence.
func (uc *ChatUseCase) History(ctx context.Context, userID, bottleID string) ([]*entity.ChatMessage, error) {
	if err := uc.requireMember(ctx, userID, bottleID); err != nil {
		return nil, err
	}

	messages, err := uc.bottleRepo.ListChatMessages(ctx, bottleID)
	if err != nil {
		return nil, err
	}
	return dedupeMessages(messages), nil
}

// dedupeMessages collapses exact duplicates on (timestamp, text) to
// their first occurrence, preserving the slice's order.
func dedupeMessages(messages []*entity.ChatMessage) []*entity.ChatMessage {
	seen := make(map[entity.DedupeKey]bool)
	out := make([]*entity.ChatMessage, 0, len(messages))
	for _, m := range messages {
		key := m.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}

// Subscribe opens a live event stream for the room. Duplicate additions
// on (timestamp, text) are filtered so reconnecting listeners do not see
// the same message twice.
func (uc *ChatUseCase) Subscribe(ctx context.Context, userID, bottleID string) (<-chan repository.ChatEvent, error) {
	if err := uc.requireMember(ctx, userID, bottleID); err != nil {
		return nil, err
	}

	events, err := uc.bottleRepo.ListenChatMessages(ctx, bottleID)
	if err != nil {
		return nil, err
	}

	out := make(chan repository.ChatEvent)
	go func() {
		defer close(out)
		seen := make(map[entity.DedupeKey]bool)
		for ev := range events {
			if ev.Type == repository.ChatEventAdded {
				key := ev.Message.Key()
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (uc *ChatUseCase) requireMember(ctx context.Context, userID, bottleID string) error {
	bottle, err := uc.bottleRepo.GetByID(ctx, bottleID)
	if err != nil {
		return err
	}
	if !bottle.IsMember(userID) {
		return errors.Forbidden("Join the chat room before participating", nil)
	}
	return nil
}

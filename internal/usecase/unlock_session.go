package usecase

import (
	"sync"
	"time"

	"garrafinha/pkg/logger"
)

// UnlockState is the per-user map movement state.
type UnlockState string

const (
	StateLocked   UnlockState = "LOCKED"
	StateUnlocked UnlockState = "UNLOCKED"
)

type unlockSession struct {
	expiresAt time.Time
	timer     *time.Timer
}

// UnlockSessionManager tracks per-user unlock countdowns. A user is
// UNLOCKED from the moment Arm is called until exactly duration later,
// after which the state reverts to LOCKED and the expiry hook fires.
type UnlockSessionManager struct {
	mu       sync.Mutex
	duration time.Duration
	sessions map[string]*unlockSession
	onExpire func(userID string)
}

func NewUnlockSessionManager(duration time.Duration) *UnlockSessionManager {
	return &UnlockSessionManager{
		duration: duration,
		sessions: make(map[string]*unlockSession),
	}
}

// SetOnExpire registers a hook called after a session reverts to LOCKED.
// It is invoked outside the manager lock.
func (m *UnlockSessionManager) SetOnExpire(fn func(userID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = fn
}

// Arm starts (or restarts) the countdown for the user. Re-arming an
// active session cancels the previous timer and grants a fresh full
// duration. Returns the new expiry instant.
func (m *UnlockSessionManager) Arm(userID string) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.sessions[userID]; ok {
		prev.timer.Stop()
	}

	s := &unlockSession{expiresAt: time.Now().Add(m.duration)}
	s.timer = time.AfterFunc(m.duration, func() {
		m.expire(userID, s)
	})
	m.sessions[userID] = s

	logger.Info("Unlock session armed for user %s until %s", userID, s.expiresAt.Format(time.RFC3339))
	return s.expiresAt
}

// Active reports whether the user currently holds an unexpired session.
// At exactly the expiry instant the session counts as LOCKED.
func (m *UnlockSessionManager) Active(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	return ok && time.Now().Before(s.expiresAt)
}

// ExpiresAt returns the expiry instant of the user's session, if any.
func (m *UnlockSessionManager) ExpiresAt(userID string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return time.Time{}, false
	}
	return s.expiresAt, true
}

// Revoke tears down the user's session without firing the expiry hook.
func (m *UnlockSessionManager) Revoke(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		s.timer.Stop()
		delete(m.sessions, userID)
	}
}

func (m *UnlockSessionManager) expire(userID string, s *unlockSession) {
	m.mu.Lock()
	cur, ok := m.sessions[userID]
	if !ok || cur != s {
		// A newer session replaced this one; its timer owns the expiry.
		m.mu.Unlock()
		return
	}
	delete(m.sessions, userID)
	hook := m.onExpire
	m.mu.Unlock()

	logger.Info("Unlock session expired for user %s", userID)
	if hook != nil {
		hook(userID)
	}
}

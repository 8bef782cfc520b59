package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/giveawaybot/core/logger"
)

// MemoryStore keeps sessions in process memory. Contents are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	now      func() time.Time
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// Get returns a copy of the stored session, or a fresh idle session.
func (m *MemoryStore) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if sess, ok := m.sessions[userID]; ok {
		return sess.Clone(), nil
	}
	return NewSession(userID), nil
}

// Put stores a copy of sess. A completed session is never overwritten with
// a different state, and its wallet and claim id stay as first recorded.
func (m *MemoryStore) Put(ctx context.Context, sess *Session) error {
	if sess == nil {
		return ErrNilSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next := sess.Clone()
	next.UpdatedAt = m.now().UTC()
	if prev, ok := m.sessions[sess.UserID]; ok && prev.Completed() {
		if !next.Completed() {
			logger.Warn(ctx, "store", "store.put",
				slog.String("status", "fail"),
				slog.String("outcome", "rejected"),
				slog.String("store", "memory"),
				slog.String("state", string(next.State)),
			)
			return nil
		}
		next.Wallet = prev.Wallet
		next.Handle = prev.Handle
		next.ClaimID = prev.ClaimID
		next.CompletedAt = prev.CompletedAt
	}
	m.sessions[sess.UserID] = next
	return nil
}

// IsCompleted reports whether userID has a completed session.
func (m *MemoryStore) IsCompleted(_ context.Context, userID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[userID]
	return ok && sess.Completed(), nil
}

// Stats counts sessions per state.
func (m *MemoryStore) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := Stats{ByState: make(map[State]int)}
	for _, sess := range m.sessions {
		st.Total++
		st.ByState[sess.State]++
		if sess.Completed() {
			st.Completed++
		}
	}
	return st, nil
}

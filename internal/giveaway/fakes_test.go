package giveaway

import (
	"context"
	"sync"

	"github.com/m3rciful/giveawaybot/core/telegram/state"
)

// failingStore wraps a MemoryStore and fails the configured operations.
type failingStore struct {
	*state.MemoryStore
	getErr, putErr, completedErr error
	puts                         int
}

func (s *failingStore) Get(ctx context.Context, userID int64) (*state.Session, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.MemoryStore.Get(ctx, userID)
}

func (s *failingStore) Put(ctx context.Context, sess *state.Session) error {
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	return s.MemoryStore.Put(ctx, sess)
}

func (s *failingStore) IsCompleted(ctx context.Context, userID int64) (bool, error) {
	if s.completedErr != nil {
		return false, s.completedErr
	}
	return s.MemoryStore.IsCompleted(ctx, userID)
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notes...)
}

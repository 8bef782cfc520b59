package state

import (
	"context"
	"errors"
	"time"
)

// State identifies a conversation step.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "not_started"
	// StateCompleted is terminal: once stored, the session is never reset.
	StateCompleted State = "completed"
)

// ErrNilSession is returned by Put when called with a nil session.
var ErrNilSession = errors.New("state: nil session")

// Session stores the conversation progress of a single user.
type Session struct {
	UserID      int64
	State       State
	Handle      string
	Wallet      string
	ClaimID     string
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// NewSession returns a fresh idle session for userID.
func NewSession(userID int64) *Session {
	return &Session{UserID: userID, State: StateIdle}
}

// Completed reports whether the session reached the terminal state.
func (s *Session) Completed() bool {
	return s != nil && s.State == StateCompleted
}

// Clone returns a deep copy so callers never share mutable state with a store.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

// Stats summarises stored sessions by state.
type Stats struct {
	Total     int
	Completed int
	ByState   map[State]int
}

// Store persists sessions keyed by Telegram user id.
type Store interface {
	// Get returns the stored session or a fresh idle one when none exists.
	Get(ctx context.Context, userID int64) (*Session, error)
	// Put creates or replaces the session for sess.UserID.
	Put(ctx context.Context, sess *Session) error
	// IsCompleted reports whether the user finished the flow.
	IsCompleted(ctx context.Context, userID int64) (bool, error)
	// Stats counts sessions per state.
	Stats(ctx context.Context) (Stats, error)
}

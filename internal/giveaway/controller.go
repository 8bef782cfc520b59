package giveaway

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/giveawaybot/core/logger"
	"github.com/m3rciful/giveawaybot/core/telegram/state"
)

const lockStripes = 64

// Controller runs Transition against a session store and hands the
// resulting notifications to a Notifier.
type Controller struct {
	cfg      Settings
	store    state.Store
	notifier Notifier
	now      func() time.Time
	newID    func() string

	// Events of one user are applied one at a time. Users hashed to the
	// same stripe only wait for each other.
	locks [lockStripes]sync.Mutex
}

// Option customises a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator replaces the claim id generator.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// NewController wires the flow to its collaborators. A nil notifier disables
// operator notifications.
func NewController(cfg Settings, store state.Store, notifier Notifier, opts ...Option) *Controller {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	c := &Controller{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handle processes one event and returns the replies for the user. Store
// failures and panics are logged, returned as err, and answered with a
// generic apology so the user is never left without a reply.
func (c *Controller) Handle(ctx context.Context, ev Event) (replies []Reply, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "flow", "flow.panic",
				slog.String("status", "fail"),
				slog.String("err", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())),
			)
			replies = []Reply{plain(ApologyText)}
			err = fmt.Errorf("giveaway: panic handling event: %v", r)
		}
	}()

	mu := &c.locks[uint64(ev.UserID)%lockStripes]
	mu.Lock()
	defer mu.Unlock()

	if ev.Command == CommandStart {
		done, err := c.store.IsCompleted(ctx, ev.UserID)
		if err != nil {
			return c.fail(ctx, "is_completed", err)
		}
		if done {
			c.logTransition(ctx, start, StateCompleted, StateCompleted, OutcomeAlreadyCompleted, 0)
			return []Reply{alreadyCompletedReply(c.cfg)}, nil
		}
	}

	sess, err := c.store.Get(ctx, ev.UserID)
	if err != nil {
		return c.fail(ctx, "get", err)
	}
	sess.UserID = ev.UserID

	res := Transition(c.cfg, *sess, ev, c.now(), c.newID)
	if res.Changed {
		if err := c.store.Put(ctx, &res.Session); err != nil {
			return c.fail(ctx, "put", err)
		}
	}
	c.logTransition(ctx, start, sess.State, res.Session.State, res.Outcome, len(res.Notifications))

	for _, n := range res.Notifications {
		c.notifier.Notify(ctx, n)
	}
	return res.Replies, nil
}

// Stats returns per-state session counts for the operator.
func (c *Controller) Stats(ctx context.Context) (state.Stats, error) {
	st, err := c.store.Stats(ctx)
	if err != nil {
		return state.Stats{}, fmt.Errorf("giveaway stats: %w", err)
	}
	return st, nil
}

func (c *Controller) fail(ctx context.Context, action string, err error) ([]Reply, error) {
	logger.Error(ctx, "flow", "flow.store",
		slog.String("status", "fail"),
		slog.String("action", action),
		slog.String("err", logger.ErrText(err)),
	)
	return []Reply{plain(ApologyText)}, fmt.Errorf("giveaway: session %s: %w", action, err)
}

func (c *Controller) logTransition(ctx context.Context, start time.Time, from, to state.State, outcome Outcome, notifications int) {
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.String("result", string(outcome)),
		slog.Duration("duration", time.Since(start)),
	}
	if notifications > 0 {
		attrs = append(attrs, slog.Int("notifications", notifications))
	}
	logger.Info(ctx, "flow", "flow.transition", attrs...)
}

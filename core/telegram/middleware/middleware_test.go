package middleware

import (
	"errors"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	upd     tele.Update
	user    *tele.User
	store   map[string]interface{}
	sent    []interface{}
	sendErr error
}

func newFakeContext(userID int64) *fakeContext {
	return &fakeContext{
		upd:   tele.Update{ID: 1, Message: &tele.Message{Text: "hi"}},
		user:  &tele.User{ID: userID},
		store: make(map[string]interface{}),
	}
}

func (f *fakeContext) Update() tele.Update           { return f.upd }
func (f *fakeContext) Sender() *tele.User            { return f.user }
func (f *fakeContext) Chat() *tele.Chat              { return &tele.Chat{ID: f.user.ID} }
func (f *fakeContext) Text() string                  { return f.upd.Message.Text }
func (f *fakeContext) Get(key string) interface{}    { return f.store[key] }
func (f *fakeContext) Set(key string, v interface{}) { f.store[key] = v }
func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, what)
	return nil
}

func TestRecoverRepliesOnPanic(t *testing.T) {
	c := newFakeContext(1)
	h := Recover(func(c tele.Context) error { return c.Send("sorry") })(func(tele.Context) error {
		panic("boom")
	})
	if err := h(c); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(c.sent) != 1 || c.sent[0] != "sorry" {
		t.Fatalf("unexpected replies: %v", c.sent)
	}
}

func TestRecoverPassesErrors(t *testing.T) {
	want := errors.New("fail")
	h := RecoverMiddleware(func(tele.Context) error { return want })
	if err := h(newFakeContext(1)); !errors.Is(err, want) {
		t.Fatalf("got %v", err)
	}
}

func TestAdminOnly(t *testing.T) {
	called := 0
	next := func(tele.Context) error { called++; return nil }
	rejected := 0
	mw := AdminOnlyMiddleware(AdminOptions{AdminID: 42, OnReject: func(tele.Context) error { rejected++; return nil }})

	_ = mw(next)(newFakeContext(42))
	_ = mw(next)(newFakeContext(7))
	if called != 1 || rejected != 1 {
		t.Fatalf("called=%d rejected=%d", called, rejected)
	}

	none := AdminOnlyMiddleware(AdminOptions{})
	_ = none(next)(newFakeContext(42))
	if called != 1 {
		t.Fatal("without admin id every caller must be rejected")
	}
}

func TestRateLimit(t *testing.T) {
	now := time.Unix(1000, 0)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Second,
		OnLimited: func(tele.Context) error { limited++; return nil },
		now:       func() time.Time { return now },
	})
	passed := 0
	h := mw(func(tele.Context) error { passed++; return nil })

	_ = h(newFakeContext(1))
	_ = h(newFakeContext(1))
	_ = h(newFakeContext(2))
	now = now.Add(2 * time.Second)
	_ = h(newFakeContext(1))

	if passed != 3 || limited != 1 {
		t.Fatalf("passed=%d limited=%d", passed, limited)
	}
}

func TestRateLimitExcludedKind(t *testing.T) {
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{"message": {}},
	})
	passed := 0
	h := mw(func(tele.Context) error { passed++; return nil })
	_ = h(newFakeContext(1))
	_ = h(newFakeContext(1))
	if passed != 2 {
		t.Fatalf("passed=%d", passed)
	}
}

func TestMessageMetrics(t *testing.T) {
	c := newFakeContext(1)
	if got := Replies(c); got != (ReplyStats{}) {
		t.Fatalf("expected zero stats before the middleware, got %+v", got)
	}
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		_ = c.Send("one")
		return c.Send("two", &tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}})
	})
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if got := Replies(c); got.Sent != 2 || got.Failed != 0 || !got.Keyboard {
		t.Fatalf("stats = %+v", got)
	}
}

func TestMessageMetricsCountsFailures(t *testing.T) {
	c := newFakeContext(1)
	c.sendErr = errors.New("blocked")
	h := MessageMetricsMiddleware(func(c tele.Context) error { return c.Send("one") })
	if err := h(c); err == nil {
		t.Fatal("expected send error")
	}
	if got := Replies(c); got.Sent != 0 || got.Failed != 1 {
		t.Fatalf("stats = %+v", got)
	}
}

func TestLoggerMiddlewareSetsRID(t *testing.T) {
	c := newFakeContext(5)
	var rid string
	h := LoggerMiddleware(func(c tele.Context) error {
		rid, _ = c.Get("rid").(string)
		return nil
	})
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if rid != "1:5:5" {
		t.Fatalf("rid = %s", rid)
	}
}

// Package sender runs outbound Telegram calls that must not hold up the
// update being handled, such as messages to an operator chat.
package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/giveawaybot/core/logger"
	"github.com/m3rciful/giveawaybot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	QueueSize int
	Workers   int
	// MaxRetries repeats a job only when the request provably never left
	// the process. Zero disables repeats.
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent on a single job.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 2
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

// job is one queued outbound call. ctx carries the log identifiers of the
// update that scheduled it.
type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func(ctx context.Context) error
}

func (j job) attrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	if userID := logger.UserIDFrom(j.ctx); userID != 0 {
		attrs = append(attrs, slog.Int64("user_id", userID))
	}
	return attrs
}

// call runs the job once and turns a panic into an error.
func (j job) call(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("telegram sender: %s panicked: %v", j.action, r)
		}
	}()
	return j.run(ctx)
}

// Dispatcher executes outbound calls on a fixed pool of workers.
type Dispatcher struct {
	opts Options
	jobs chan job

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	sent atomic.Uint64
	errs atomic.Uint64
}

// NewDispatcher starts a dispatcher with defaults for zero options.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{opts: opts, jobs: make(chan job, opts.QueueSize)}
	d.wg.Add(opts.Workers)
	for range opts.Workers {
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				d.process(j)
			}
		}()
	}
	return d
}

// Enqueue schedules run without waiting for it. It never blocks: a saturated
// queue returns ErrQueueFull.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func(ctx context.Context) error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = logger.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// SentCount returns the number of jobs that finished without error.
func (d *Dispatcher) SentCount() uint64 { return d.sent.Load() }

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 { return d.errs.Load() }

// Close stops accepting jobs and waits until queued ones are processed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) process(j job) {
	// The job outlives the update that scheduled it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(j.ctx), d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	logger.Debug(j.ctx, "tg.sender", "send.start", j.attrs()...)

	attempt, err := d.attempt(ctx, j)
	elapsed := slog.Duration("elapsed", time.Since(start))
	if err == nil {
		d.sent.Add(1)
		logger.Debug(j.ctx, "tg.sender", "send.success",
			append(j.attrs(), slog.String("status", "ok"), slog.Int("attempts", attempt), elapsed)...)
		return
	}
	d.errs.Add(1)
	logger.Error(j.ctx, "tg.sender", "send.fail",
		append(j.attrs(),
			slog.String("status", "fail"),
			slog.String("error", sanitizeErrorMessage(err)),
			slog.String("error_kind", classifyError(err)),
			slog.Int("attempts", attempt),
			elapsed,
		)...)
}

// attempt calls the job until it succeeds, fails with an error that may have
// reached Telegram, or runs out of retries.
func (d *Dispatcher) attempt(ctx context.Context, j job) (int, error) {
	n := 1
	err := j.call(ctx)
	for ; err != nil && n <= d.opts.MaxRetries && netutil.NotDelivered(err); n++ {
		delay := d.opts.RetryBackoff * time.Duration(n)
		logger.Debug(j.ctx, "tg.sender", "send.retry.backoff",
			append(j.attrs(), slog.Int("attempt", n), slog.Duration("delay", delay))...)
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		case <-time.After(delay):
		}
		err = j.call(ctx)
	}
	return n, err
}

// errorKinds is checked in order; the first match names the failure.
var errorKinds = []struct {
	kind  string
	match func(error) bool
}{
	{"timeout", func(err error) bool {
		return errors.Is(err, context.DeadlineExceeded) || netutil.IsTimeout(err)
	}},
	{"dns", func(err error) bool {
		var dnsErr *net.DNSError
		return errors.As(err, &dnsErr)
	}},
	{"dial", func(err error) bool {
		var opErr *net.OpError
		return errors.As(err, &opErr) && opErr.Op == "dial"
	}},
	{"tls", func(err error) bool {
		var alertErr tls.AlertError
		return errors.As(err, &alertErr)
	}},
	{"flood", func(err error) bool { return httpStatusFromError(err) == http.StatusTooManyRequests }},
	{"http_5xx", func(err error) bool { return httpStatusFromError(err) >= 500 }},
	{"http_4xx", func(err error) bool { return httpStatusFromError(err) >= 400 }},
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if k.match(err) {
			return k.kind
		}
	}
	return "unknown"
}

// sanitizeErrorMessage keeps bot tokens embedded in request URLs out of logs.
func sanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return logger.RedactToken(err.Error())
}

// trailingCode matches the "(400)" suffix telebot puts on API errors.
var trailingCode = regexp.MustCompile(`\((\d{3})\)\s*$`)

func httpStatusFromError(err error) int {
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return http.StatusTooManyRequests
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	if m := trailingCode.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		return code
	}
	return 0
}

package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/giveawaybot/core/telegram/netutil"
)

// clientTimeouts groups the transport limits used for Bot API calls.
type clientTimeouts struct {
	dial      time.Duration
	keepAlive time.Duration
	tls       time.Duration
	idle      time.Duration
	header    time.Duration
	floor     time.Duration
}

var botAPITimeouts = clientTimeouts{
	dial:      5 * time.Second,
	keepAlive: 30 * time.Second,
	tls:       5 * time.Second,
	idle:      30 * time.Second,
	header:    10 * time.Second,
	floor:     30 * time.Second,
}

const (
	redialAttempts = 2
	redialBackoff  = 500 * time.Millisecond
)

// total is the whole-request limit. getUpdates holds the connection for the
// poll timeout, so the limit grows with it.
func (t clientTimeouts) total(pollTimeout time.Duration) time.Duration {
	return max(t.floor, pollTimeout+t.header)
}

// BuildHTTPClient returns the client handed to telebot. Requests that never
// reached Telegram are redialed; anything else is returned as is.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	t := botAPITimeouts
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: t.dial, KeepAlive: t.keepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       t.idle,
		TLSHandshakeTimeout:   t.tls,
		ResponseHeaderTimeout: t.header + pollTimeout,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout:   t.total(pollTimeout),
		Transport: &redialTransport{next: transport, retries: redialAttempts, backoff: redialBackoff},
	}
}

// redialTransport retries only failures that happened before the request
// left this process, so a sendMessage is never delivered twice.
type redialTransport struct {
	next    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *redialTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	resp, err := next.RoundTrip(req)
	for retry := 1; err != nil && retry <= t.retries && netutil.NotDelivered(err); retry++ {
		again, rewindErr := rewind(req)
		if rewindErr != nil {
			return nil, err
		}
		if waitErr := sleepCtx(req, t.backoff*time.Duration(retry)); waitErr != nil {
			return nil, waitErr
		}
		resp, err = next.RoundTrip(again)
	}
	return resp, err
}

// rewind clones req with a fresh body. Requests whose body cannot be
// replayed are not retried.
func rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	switch {
	case req.GetBody != nil:
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	case req.Body != nil && req.Body != http.NoBody:
		return nil, http.ErrBodyNotAllowed
	}
	return clone, nil
}

func sleepCtx(req *http.Request, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}

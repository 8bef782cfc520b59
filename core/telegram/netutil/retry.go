// Package netutil classifies transport errors returned while talking to the
// Telegram API.
package netutil

import (
	"errors"
	"net"
	"net/url"
)

// NotDelivered reports whether err proves the request never reached the
// server: DNS failures and refused or timed out dials. Repeating such a
// request cannot produce a duplicate message.
func NotDelivered(err error) bool {
	if err == nil {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
		return NotDelivered(urlErr.Err)
	}

	return false
}

// IsTimeout reports whether err is a network timeout.
func IsTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

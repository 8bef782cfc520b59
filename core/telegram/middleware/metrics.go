package middleware

import (
	tele "gopkg.in/telebot.v4"
)

const replyStatsKey = "reply_stats"

// ReplyStats counts what one update sent back to the user.
type ReplyStats struct {
	Sent     int
	Failed   int
	Keyboard bool
}

// countingContext records every Send and Reply made while handling an update.
type countingContext struct {
	tele.Context
	stats *ReplyStats
}

func (m countingContext) record(err error, opts []interface{}) {
	if err != nil {
		m.stats.Failed++
		return
	}
	m.stats.Sent++
	if carriesMarkup(opts) {
		m.stats.Keyboard = true
	}
}

func carriesMarkup(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

// Send implements tele.Context.
func (m countingContext) Send(what interface{}, opts ...interface{}) error {
	err := m.Context.Send(what, opts...)
	m.record(err, opts)
	return err
}

// Reply implements tele.Context.
func (m countingContext) Reply(what interface{}, opts ...interface{}) error {
	err := m.Context.Reply(what, opts...)
	m.record(err, opts)
	return err
}

// MessageMetricsMiddleware counts replies per update; handler summaries read
// them through Replies.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		stats := &ReplyStats{}
		c.Set(replyStatsKey, stats)
		return next(countingContext{Context: c, stats: stats})
	}
}

// Replies returns the counters of the current update, zero when the
// middleware is not installed.
func Replies(c tele.Context) ReplyStats {
	if s, ok := c.Get(replyStatsKey).(*ReplyStats); ok && s != nil {
		return *s
	}
	return ReplyStats{}
}

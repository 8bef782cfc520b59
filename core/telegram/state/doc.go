// Package state keeps per-user conversation sessions for Telegram bots.
// Store implementations are domain-agnostic: they persist whatever State
// value the caller assigns and only know that StateCompleted is terminal.
package state

package giveaway

import (
	"time"

	"github.com/m3rciful/giveawaybot/core/telegram/state"
)

// Transition applies ev to sess and returns the next session together with
// the replies and operator notifications the event produced. It performs no
// I/O. now and newID are used only when the session completes.
//
// The flow only moves forward:
//
//	not_started -> awaiting_task_confirmation -> [awaiting_handle] -> awaiting_wallet -> completed
//
// /cancel resets any unfinished session to not_started. A completed session
// is never changed again.
func Transition(cfg Settings, sess state.Session, ev Event, now time.Time, newID func() string) Result {
	if sess.State == "" {
		sess.State = StateNotStarted
	}
	res := Result{Session: sess}

	if ev.Command == CommandHelp {
		return res.reply(OutcomeHelp, helpReply(cfg))
	}

	if sess.Completed() {
		if ev.Command == CommandStart {
			return res.reply(OutcomeAlreadyCompleted, alreadyCompletedReply(cfg))
		}
		return res.reply(OutcomeCompletedNotice, alreadyCompletedReply(cfg))
	}

	switch ev.Command {
	case CommandCancel:
		res.moveTo(*state.NewSession(sess.UserID))
		return res.reply(OutcomeCancelled, cancelledReply())
	case CommandStart:
		if sess.State == StateNotStarted {
			res.moveTo(withState(sess, StateAwaitingTasks))
			return res.reply(OutcomeStarted, welcomeReply(cfg, ev.DisplayName))
		}
		return res.reply(OutcomeReprompt, currentPrompt(cfg, sess, ev)...)
	}

	switch sess.State {
	case StateNotStarted:
		return res.reply(OutcomeIdleHint, idleHintReply(cfg))

	case StateAwaitingTasks:
		if !ConfirmsTasks(ev.Text) {
			return res.reply(OutcomeTasksPending, tasksReminderReply())
		}
		if cfg.HandleStep {
			res.moveTo(withState(sess, StateAwaitingHandle))
			return res.reply(OutcomeTasksConfirmed, tasksAckReply(), handlePromptReply())
		}
		res.moveTo(withState(sess, StateAwaitingWallet))
		return res.reply(OutcomeTasksConfirmed, tasksAckReply(), walletPromptReply(cfg))

	case StateAwaitingHandle:
		handle, ok := NormalizeHandle(ev.Text)
		if !ok {
			return res.reply(OutcomeHandleRejected, handleRejectedReply())
		}
		next := withState(sess, StateAwaitingWallet)
		next.Handle = handle
		res.moveTo(next)
		res.Notifications = append(res.Notifications, Notification{
			Kind:        NotifyHandle,
			UserID:      ev.UserID,
			DisplayName: ev.DisplayName,
			Username:    ev.Username,
			Handle:      handle,
			ProfileURL:  cfg.ProfileURL(handle),
		})
		return res.reply(OutcomeHandleAccepted, walletPromptReply(cfg))

	case StateAwaitingWallet:
		wallet, ok := NormalizeWallet(ev.Text)
		if !ok {
			return res.reply(OutcomeWalletEmpty, walletPromptReply(cfg))
		}
		completedAt := now.UTC()
		next := withState(sess, StateCompleted)
		next.Wallet = wallet
		next.CompletedAt = &completedAt
		if newID != nil {
			next.ClaimID = newID()
		}
		res.moveTo(next)
		n := Notification{
			Kind:        NotifyWallet,
			UserID:      ev.UserID,
			DisplayName: ev.DisplayName,
			Username:    ev.Username,
			Handle:      next.Handle,
			Wallet:      wallet,
			ClaimID:     next.ClaimID,
		}
		if next.Handle != "" {
			n.ProfileURL = cfg.ProfileURL(next.Handle)
		}
		res.Notifications = append(res.Notifications, n)
		return res.reply(OutcomeWalletAccepted, congratulationsReplies(cfg, wallet, next.ClaimID)...)
	}

	// A state written by an older release: start over.
	res.moveTo(*state.NewSession(sess.UserID))
	return res.reply(OutcomeReset, idleHintReply(cfg))
}

// currentPrompt repeats what the user is expected to send next.
func currentPrompt(cfg Settings, sess state.Session, ev Event) []Reply {
	switch sess.State {
	case StateAwaitingTasks:
		return []Reply{welcomeReply(cfg, ev.DisplayName)}
	case StateAwaitingHandle:
		return []Reply{handlePromptReply()}
	case StateAwaitingWallet:
		return []Reply{walletPromptReply(cfg)}
	}
	return []Reply{idleHintReply(cfg)}
}

func withState(sess state.Session, st state.State) state.Session {
	sess.State = st
	return sess
}

func (r *Result) moveTo(next state.Session) {
	if !sameProgress(next, r.Session) {
		r.Changed = true
	}
	r.Session = next
}

// sameProgress compares the fields a transition can change.
func sameProgress(a, b state.Session) bool {
	return a.State == b.State &&
		a.Handle == b.Handle &&
		a.Wallet == b.Wallet &&
		a.ClaimID == b.ClaimID &&
		sameTime(a.CompletedAt, b.CompletedAt)
}

func (r Result) reply(outcome Outcome, replies ...Reply) Result {
	r.Outcome = outcome
	r.Replies = append(r.Replies, replies...)
	return r
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

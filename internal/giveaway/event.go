package giveaway

import "github.com/m3rciful/giveawaybot/core/telegram/state"

// Conversation states. The zero session is StateNotStarted.
const (
	StateNotStarted     = state.StateIdle
	StateAwaitingTasks  = state.State("awaiting_task_confirmation")
	StateAwaitingHandle = state.State("awaiting_handle")
	StateAwaitingWallet = state.State("awaiting_wallet")
	StateCompleted      = state.StateCompleted
)

// Command distinguishes commands from free text.
type Command string

const (
	CommandNone   Command = ""
	CommandStart  Command = "start"
	CommandCancel Command = "cancel"
	CommandHelp   Command = "help"
)

// Event is one inbound message from a user.
type Event struct {
	UserID      int64
	ChatID      int64
	DisplayName string
	Username    string
	Text        string
	Command     Command
}

// Link is a URL button attached to a reply.
type Link struct {
	Text string
	URL  string
}

// Reply is one outbound message to the user who sent the event.
type Reply struct {
	Text      string
	Markdown  bool
	NoPreview bool
	Links     []Link
}

// NotificationKind tells the operator what was captured.
type NotificationKind string

const (
	NotifyHandle NotificationKind = "handle"
	NotifyWallet NotificationKind = "wallet"
)

// Notification is a best-effort message to the operator chat.
type Notification struct {
	Kind        NotificationKind
	UserID      int64
	DisplayName string
	Username    string
	Handle      string
	ProfileURL  string
	Wallet      string
	ClaimID     string
}

// Outcome names what a transition did; it is logged with every event.
type Outcome string

const (
	OutcomeStarted          Outcome = "started"
	OutcomeAlreadyCompleted Outcome = "already_completed"
	OutcomeCompletedNotice  Outcome = "completed_notice"
	OutcomeTasksConfirmed   Outcome = "tasks_confirmed"
	OutcomeTasksPending     Outcome = "tasks_pending"
	OutcomeHandleAccepted   Outcome = "handle_accepted"
	OutcomeHandleRejected   Outcome = "handle_rejected"
	OutcomeWalletAccepted   Outcome = "wallet_accepted"
	OutcomeWalletEmpty      Outcome = "wallet_empty"
	OutcomeCancelled        Outcome = "cancelled"
	OutcomeReprompt         Outcome = "reprompt"
	OutcomeIdleHint         Outcome = "idle_hint"
	OutcomeHelp             Outcome = "help"
	OutcomeReset            Outcome = "reset"
)

// Result is the output of Transition.
type Result struct {
	Session       state.Session
	Replies       []Reply
	Notifications []Notification
	Outcome       Outcome
	// Changed reports whether Session differs from the input and must be stored.
	Changed bool
}

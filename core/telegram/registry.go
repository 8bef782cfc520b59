package telegram

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/m3rciful/giveawaybot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Command is a slash command the bot answers. AdminOnly commands are routed
// only for the admin and stay out of the Telegram menu.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Aliases     []string
}

// Registry maps command names and aliases to handlers and keeps the handler
// for non-command text.
type Registry struct {
	commands     map[string]Command
	aliases      map[string]string
	textFallback tele.HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{commands: map[string]Command{}, aliases: map[string]string{}}
}

// commandName reduces "/start@bot payload" or "start" to "/start".
func commandName(text string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	name, _, _ = strings.Cut(name, "\n")
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return name
}

func (r *Registry) rejectReason(name string, cmd Command) string {
	switch {
	case name == "" || cmd.Handler == nil || cmd.Description == "":
		return "invalid"
	case name[0] != '/':
		return "no_slash_prefix"
	}
	if _, taken := r.commands[name]; taken {
		return "duplicate"
	}
	return ""
}

// RegisterCommand adds cmd under name, which must start with a slash. The
// first registration of a name wins; rejected entries are logged.
func (r *Registry) RegisterCommand(name string, cmd Command) {
	if r == nil {
		return
	}
	if reason := r.rejectReason(name, cmd); reason != "" {
		logger.LogEvent(logger.Background(), logger.TWire, slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", reason),
		)
		return
	}
	r.commands[name] = cmd
	for _, alias := range cmd.Aliases {
		if a := commandName(alias); r.aliases[a] == "" {
			r.aliases[a] = name
		}
	}
}

// ListCommands returns the menu entries sorted by name. With visibleOnly,
// admin-only commands are left out.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for name, cmd := range r.commands {
		if visibleOnly && cmd.AdminOnly {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: cmd.Description})
	}
	slices.SortFunc(list, func(a, b tele.Command) int { return strings.Compare(a.Text, b.Text) })
	return list
}

// LookupCommand resolves text to a registered command and its canonical name.
func (r *Registry) LookupCommand(text string) (string, Command, bool) {
	name := commandName(text)
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	if canonical, ok := r.aliases[name]; ok {
		return canonical, r.commands[canonical], true
	}
	return "", Command{}, false
}

// Commands exposes the registered commands keyed by canonical name.
func (r *Registry) Commands() map[string]Command {
	return r.commands
}

func (r *Registry) SetTextFallback(h tele.HandlerFunc) { r.textFallback = h }

func (r *Registry) TextFallback() tele.HandlerFunc { return r.textFallback }

// InitBotCommands publishes the visible commands as the bot's menu. Failures are logged only.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	menu := reg.ListCommands(true)
	if len(menu) == 0 {
		return
	}
	if err := bot.SetCommands(menu); err != nil {
		logger.LogEvent(logger.Background(), logger.TWire, slog.LevelError, "register.commands.set_failed",
			slog.String("err", logger.ErrText(err)),
		)
		return
	}
	logger.LogEvent(logger.Background(), logger.TWire, slog.LevelDebug, "register.commands.set",
		slog.Int("commands", len(menu)),
	)
}

package giveaway

import (
	"fmt"
	"strings"

	"github.com/m3rciful/giveawaybot/core/telegram/format"
)

// ApologyText is sent when an event could not be processed.
const ApologyText = "Sorry, something went wrong on our side. Please try again in a moment."

// RateLimitedText is sent when a user writes faster than the bot accepts.
const RateLimitedText = "You're sending messages too quickly. Please wait a second and try again."

const handleExample = "milmotif_99"

func md(text string) Reply {
	return Reply{Text: text, Markdown: true, NoPreview: true}
}

func plain(text string) Reply {
	return Reply{Text: text}
}

func welcomeReply(cfg Settings, displayName string) Reply {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = "friend"
	}
	project := format.MD(cfg.ProjectName)

	var b strings.Builder
	fmt.Fprintf(&b, "🌟 Welcome %s to the Official %s NFT Giveaway! 🌟\n\n", format.MD(name), project)
	if cfg.Links.Collection != "" {
		fmt.Fprintf(&b, "🎨 *Discover Our Collection:*\n%s\n\n", format.MD(cfg.Links.Collection))
	}
	b.WriteString("📋 *To participate, please complete these simple tasks:*\n")
	for i, task := range tasks(cfg) {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, task.Text, format.MD(task.URL))
	}
	b.WriteString("\nAfter completing the tasks, reply *done* to continue.")

	r := md(b.String())
	if cfg.InteractiveLinks {
		r.Links = tasks(cfg)
	}
	return r
}

func tasks(cfg Settings) []Link {
	all := []Link{
		{Text: "Join our Telegram Group", URL: cfg.Links.Community},
		{Text: "Follow us on X", URL: cfg.Links.Social},
		{Text: "Visit our OpenSea Gallery", URL: cfg.Links.Gallery},
	}
	out := all[:0]
	for _, l := range all {
		if l.URL != "" {
			out = append(out, l)
		}
	}
	return out
}

func tasksReminderReply() Reply {
	return md("⏳ Please complete the tasks above, then reply *done* to continue.\nType /cancel to stop.")
}

func tasksAckReply() Reply {
	return plain("Well done! Hope you didn't cheat the system 😏")
}

func handlePromptReply() Reply {
	return md(fmt.Sprintf("🐦 Now send me your *X (Twitter) username* so we can verify you follow us.\nFor example: `%s`", handleExample))
}

func handleRejectedReply() Reply {
	return md(fmt.Sprintf("⚠️ That doesn't look like a valid username. Use 1 to 15 letters, digits or underscores.\nFor example: `%s`", handleExample))
}

func walletPromptReply(cfg Settings) Reply {
	return md(fmt.Sprintf("📬 Now, send me your %s to receive your NFT:", format.BoldMD(cfg.WalletLabel)))
}

func congratulationsReplies(cfg Settings, wallet, claimID string) []Reply {
	project := format.MD(cfg.ProjectName)

	var b strings.Builder
	fmt.Fprintf(&b, "🚀 Congratulations! Your exclusive %s NFT is being transferred to your wallet.\n\n", project)
	fmt.Fprintf(&b, "%s\n\n", format.CodeMD(wallet))
	b.WriteString("⏳ _The NFT will appear in your wallet shortly._")
	if cfg.Links.Website != "" {
		fmt.Fprintf(&b, "\n\n🌐 *Explore more of our collection on OpenSea:*\n%s", format.MD(cfg.Links.Website))
	}
	first := md(b.String())
	if cfg.InteractiveLinks && cfg.Links.Website != "" {
		first.Links = []Link{{Text: "Explore on OpenSea", URL: cfg.Links.Website}}
	}

	follow := fmt.Sprintf("🎉 *Congratulations, you've completed the %s NFT Giveaway!*", project)
	if claimID != "" {
		follow += "\nClaim reference: " + format.CodeMD(claimID)
	}
	return []Reply{first, md(follow)}
}

func alreadyCompletedReply(cfg Settings) Reply {
	return md(fmt.Sprintf("✅ You have already completed the %s NFT Giveaway. Thank you for participating!", format.MD(cfg.ProjectName)))
}

func cancelledReply() Reply {
	return plain("Giveaway canceled. Type /start to try again.")
}

func idleHintReply(cfg Settings) Reply {
	return plain(fmt.Sprintf("Type /start to join the %s NFT Giveaway.", cfg.ProjectName))
}

func helpReply(cfg Settings) Reply {
	return plain(fmt.Sprintf("%s NFT Giveaway\n\n/start - join the giveaway\n/cancel or /stop - stop and start over later\n/help - show this message", cfg.ProjectName))
}

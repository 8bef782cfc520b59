package giveaway

import (
	"fmt"
	"strings"
)

// Default links of the Milmotif giveaway.
const (
	DefaultProjectName      = "Milmotif"
	DefaultCollectionURL    = "https://milmotif.com/milmotif/from-concept-to-nft-the-digital-design-journey-of-milmotif/"
	DefaultCommunityURL     = "https://t.me/milmotifgroup"
	DefaultSocialURL        = "https://x.com/milmotif"
	DefaultGalleryURL       = "https://opensea.io/milmotifart/galleries"
	DefaultWebsiteURL       = "https://opensea.io/milmotifart"
	DefaultHandleProfileURL = "https://x.com/%s"
	DefaultWalletLabel      = "Ethereum wallet address"
)

// Links are the URLs shown in the task list and the final message.
type Links struct {
	Collection string `yaml:"collection" envconfig:"GIVEAWAY_COLLECTION_URL"`
	Community  string `yaml:"community" envconfig:"GIVEAWAY_COMMUNITY_URL"`
	Social     string `yaml:"social" envconfig:"GIVEAWAY_SOCIAL_URL"`
	Gallery    string `yaml:"gallery" envconfig:"GIVEAWAY_GALLERY_URL"`
	Website    string `yaml:"website" envconfig:"GIVEAWAY_WEBSITE_URL"`
}

// Settings configure the conversation. They are independent of the transport
// so the flow can be built and tested without a bot token.
type Settings struct {
	ProjectName string `yaml:"project_name" envconfig:"GIVEAWAY_PROJECT_NAME"`
	// HandleStep inserts the social handle step between tasks and wallet.
	HandleStep bool `yaml:"handle_step" envconfig:"GIVEAWAY_HANDLE_STEP"`
	// OperatorChatID receives captured handles and wallets.
	OperatorChatID int64 `yaml:"operator_chat_id" envconfig:"OPERATOR_CHAT_ID"`
	// InteractiveLinks attaches URL buttons to the welcome and final messages.
	InteractiveLinks bool `yaml:"interactive_links" envconfig:"GIVEAWAY_INTERACTIVE_LINKS"`
	// HandleProfileURL is a format string with one %s for the handle.
	HandleProfileURL string `yaml:"handle_profile_url" envconfig:"GIVEAWAY_HANDLE_PROFILE_URL"`
	WalletLabel      string `yaml:"wallet_label" envconfig:"GIVEAWAY_WALLET_LABEL"`
	Links            Links  `yaml:"links"`
}

// DefaultSettings returns settings with every optional field filled.
func DefaultSettings() Settings {
	s := Settings{}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	setDefault(&s.ProjectName, DefaultProjectName)
	setDefault(&s.HandleProfileURL, DefaultHandleProfileURL)
	setDefault(&s.WalletLabel, DefaultWalletLabel)
	setDefault(&s.Links.Collection, DefaultCollectionURL)
	setDefault(&s.Links.Community, DefaultCommunityURL)
	setDefault(&s.Links.Social, DefaultSocialURL)
	setDefault(&s.Links.Gallery, DefaultGalleryURL)
	setDefault(&s.Links.Website, DefaultWebsiteURL)
}

func setDefault(field *string, def string) {
	*field = strings.TrimSpace(*field)
	if *field == "" {
		*field = def
	}
}

// Normalize fills defaults and rejects settings the bot cannot start with.
func (s *Settings) Normalize() error {
	s.applyDefaults()
	if s.OperatorChatID == 0 {
		return fmt.Errorf("giveaway.operator_chat_id (OPERATOR_CHAT_ID) is required")
	}
	if !validProfileURL(s.HandleProfileURL) {
		return fmt.Errorf("giveaway.handle_profile_url must contain exactly one %%s, got %q", s.HandleProfileURL)
	}
	return nil
}

// validProfileURL formats a sample handle and requires it to appear exactly
// once with no formatting errors, so escaped %%s or extra verbs are rejected.
func validProfileURL(pattern string) bool {
	const sample = "sample_handle"
	out := fmt.Sprintf(pattern, sample)
	return strings.Count(out, sample) == 1 && !strings.Contains(out, "%!")
}

// ProfileURL returns the public profile link for a validated handle.
func (s Settings) ProfileURL(handle string) string {
	return fmt.Sprintf(s.HandleProfileURL, handle)
}

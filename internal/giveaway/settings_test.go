package giveaway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsNormalize(t *testing.T) {
	s := Settings{OperatorChatID: 10, ProjectName: "  "}
	require.NoError(t, s.Normalize())
	assert.Equal(t, DefaultProjectName, s.ProjectName)
	assert.Equal(t, DefaultWalletLabel, s.WalletLabel)
	assert.Equal(t, DefaultWebsiteURL, s.Links.Website)
	assert.Equal(t, "https://x.com/abc", s.ProfileURL("abc"))
}

func TestSettingsNormalizeRejects(t *testing.T) {
	s := Settings{}
	assert.ErrorContains(t, s.Normalize(), "OPERATOR_CHAT_ID")

	s = Settings{OperatorChatID: 1, HandleProfileURL: "https://x.com/"}
	assert.ErrorContains(t, s.Normalize(), "handle_profile_url")
}

func TestSettingsRejectsBrokenProfilePattern(t *testing.T) {
	for _, pattern := range []string{
		"https://x.com/%%s",
		"https://x.com/%s?ref=%d",
		"https://x.com/%s/%s",
		"https://x.com/%v",
	} {
		s := Settings{OperatorChatID: 1, HandleProfileURL: pattern}
		assert.ErrorContains(t, s.Normalize(), "handle_profile_url", pattern)
	}

	s := Settings{OperatorChatID: 1, HandleProfileURL: "https://nitter.net/%s?lang=en"}
	require.NoError(t, s.Normalize())
	assert.Equal(t, "https://nitter.net/mila?lang=en", s.ProfileURL("mila"))
}

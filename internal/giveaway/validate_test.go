package giveaway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHandle(t *testing.T) {
	accepted := map[string]string{
		"abc_123":         "abc_123",
		"milmotif_99":     "milmotif_99",
		"@milmotif":       "milmotif",
		"  A_b_C  ":       "A_b_C",
		"x":               "x",
		"fifteen_chars_1": "fifteen_chars_1",
	}
	for in, want := range accepted {
		got, ok := NormalizeHandle(in)
		assert.True(t, ok, "expected %q to be accepted", in)
		assert.Equal(t, want, got)
	}

	rejected := []string{"", "abc def", "sixteen_chars_12", "@@abc", "héllo", "abc-def", "abc.def", "@"}
	for _, in := range rejected {
		_, ok := NormalizeHandle(in)
		assert.False(t, ok, "expected %q to be rejected", in)
	}
}

func TestConfirmsTasks(t *testing.T) {
	for _, in := range []string{"done", "DONE", "I'm done", "all Done!", "abandoned"} {
		assert.True(t, ConfirmsTasks(in), in)
	}
	for _, in := range []string{"", "finished", "d o n e", "ok"} {
		assert.False(t, ConfirmsTasks(in), in)
	}
}

func TestNormalizeWallet(t *testing.T) {
	w, ok := NormalizeWallet("  0xABC...123 \n")
	assert.True(t, ok)
	assert.Equal(t, "0xABC...123", w)

	_, ok = NormalizeWallet(" \t ")
	assert.False(t, ok)
}

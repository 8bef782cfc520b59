package keyboard

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestInlineLinksRows(t *testing.T) {
	markup := InlineLinks([]LinkBtn{
		{Text: "Community", URL: "https://t.me/milmotifgroup"},
		{Text: "Follow", URL: "https://x.com/milmotif"},
		{Text: "Gallery", URL: "https://opensea.io/milmotifart/galleries"},
		{Text: "", URL: "https://example.com"},
	}, 2)
	if markup == nil {
		t.Fatal("expected markup")
	}
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(markup.InlineKeyboard))
	}
	if len(markup.InlineKeyboard[0]) != 2 || len(markup.InlineKeyboard[1]) != 1 {
		t.Fatalf("unexpected layout: %+v", markup.InlineKeyboard)
	}
	if got := markup.InlineKeyboard[1][0].URL; got != "https://opensea.io/milmotifart/galleries" {
		t.Fatalf("url = %s", got)
	}
}

func TestInlineLinksEmpty(t *testing.T) {
	if InlineLinks(nil, 1) != nil {
		t.Fatal("expected nil markup for no links")
	}
}

func TestChunkButtons(t *testing.T) {
	btns := []tele.Btn{{Text: "a"}, {Text: "b"}, {Text: "c"}}
	if rows := ChunkButtons(btns, 1); len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows := ChunkButtons(btns, 2); len(rows) != 2 || len(rows[1]) != 1 {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

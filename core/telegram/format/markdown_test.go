package format

import "testing"

func TestEscapeMarkdownV1(t *testing.T) {
	got, err := EscapeMarkdown("milmotif_99 *bold* [x] `c`", MarkdownV1)
	if err != nil {
		t.Fatal(err)
	}
	want := "milmotif\\_99 \\*bold\\* \\[x] \\`c\\`"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	got, err := EscapeMarkdown("a.b-c!(d)", MarkdownV2)
	if err != nil {
		t.Fatal(err)
	}
	if want := `a\.b\-c\!\(d\)`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEscapeMarkdownUnsupported(t *testing.T) {
	if _, err := EscapeMarkdown("x", 3); err == nil {
		t.Fatal("expected error")
	}
}

func TestCodeMD(t *testing.T) {
	if got := CodeMD("0xAB`C"); got != "`0xABʹC`" {
		t.Fatalf("got %q", got)
	}
}

func TestBoldMD(t *testing.T) {
	if got := BoldMD("TON wallet address"); got != "*TON wallet address*" {
		t.Fatalf("got %q", got)
	}
	if got := BoldMD("wallet_address*"); got != `wallet\_address\*` {
		t.Fatalf("markup characters must stay outside the bold entity, got %q", got)
	}
}

package domain

import "testing"

func TestStripMarkup(t *testing.T) {
	got := StripMarkup("<p>Solve <b>for</b> <i>x</i>: <code>x+1=2</code></p>")
	if got != "Solve for x: x+1=2" {
		t.Fatalf("unexpected stripped text: %q", got)
	}
}

func TestStripMarkupParagraphsBecomeNewlines(t *testing.T) {
	got := StripMarkup("<p>first</p><p>second</p>")
	if got != "first\nsecond" {
		t.Fatalf("expected paragraph break, got %q", got)
	}
}

func TestStripMarkupEmpty(t *testing.T) {
	if StripMarkup("") != "" {
		t.Fatalf("empty input must stay empty")
	}
}

func TestStripMarkupLeavesUnknownTags(t *testing.T) {
	// Only the four known tag pairs are recognized.
	got := StripMarkup("<u>keep</u>")
	if got != "<u>keep</u>" {
		t.Fatalf("unknown tags must pass through, got %q", got)
	}
}

func TestDecodeOptionsSortedByLabel(t *testing.T) {
	options, err := DecodeOptions(`{"b":"3","a":"2"}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(options) != 2 || options[0].Label != "a" || options[1].Label != "b" {
		t.Fatalf("expected labels sorted ascending, got %+v", options)
	}
}

func TestDecodeOptionsEmpty(t *testing.T) {
	options, err := DecodeOptions("")
	if err != nil || options != nil {
		t.Fatalf("empty mapping must decode to nil, got %+v err %v", options, err)
	}
}

package domain

import "strings"

// The bank only ever contains these four inline tag pairs, so literal
// replacement is deliberate; a markup parser would be wrong here.
var markupReplacer = strings.NewReplacer(
	"<p>", "", "</p>", "\n",
	"<b>", "", "</b>", "",
	"<i>", "", "</i>", "",
	"<code>", "", "</code>", "",
)

// StripMarkup removes the known inline tags from prompt, option and
// explanation text. Paragraph closers become newlines; emphasis is not
// reproduced in plain text.
func StripMarkup(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(markupReplacer.Replace(raw))
}

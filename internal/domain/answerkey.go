package domain

import (
	"sort"
	"strings"
	"unicode"
)

// AnswerKey reduces raw answer text to its canonical comparison key:
// whitespace, commas and periods are dropped, the rest is lowercased,
// and the remaining characters are sorted. Sorting makes "select all
// correct letters" answers order-insensitive ("bc" and "cb" grade the
// same) while staying strict about which characters are present.
// Empty or whitespace-only input yields the empty key.
func AnswerKey(text string) string {
	runes := make([]rune, 0, len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsSpace(r) || r == ',' || r == '.' {
			continue
		}
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return string(runes)
}

// Grade reports whether a submission matches the canonical answer.
// There is no partial credit.
func Grade(submission, canonical string) bool {
	return AnswerKey(submission) == AnswerKey(canonical)
}

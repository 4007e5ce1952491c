package engine

import (
	"strings"
	"time"
	"unicode"
)

// referenceKeyLen is the rune length of the persistence key prefix.
const referenceKeyLen = 64

// NormalizeText collapses every run of whitespace, newlines included, into a
// single space and trims both ends.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ReferenceKey derives the storage key for a reference text.
func ReferenceKey(reference string) string {
	runes := []rune(NormalizeText(reference))
	if len(runes) > referenceKeyLen {
		runes = runes[:referenceKeyLen]
	}
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return string(runes)
}

// CompletionTime returns the whole seconds elapsed from start to now.
// A now before start yields 0.
func CompletionTime(start, now time.Time) int {
	d := now.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

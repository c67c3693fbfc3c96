package utils

import (
	"fmt"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ResolveDisplayName returns the first non-blank candidate name,
// falling back to "User {id}".
//
// Args:
//   - userID: The user id used by the fallback.
//   - candidates: Names in order of preference, e.g. full name, name, username.
//
// Returns:
//   - string: The resolved display name.
func ResolveDisplayName(userID string, candidates ...string) string {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return FallbackName(userID)
}

// FallbackName returns the placeholder name of a user without a known name.
func FallbackName(userID string) string {
	return fmt.Sprintf("User %s", userID)
}

// NameCollator compares display names using locale-aware rules.
//
// A collate.Collator is not safe for concurrent use, so a NameCollator must not be shared
// between goroutines.
type NameCollator struct {
	c *collate.Collator
}

// NewNameCollator creates a case-insensitive collator for the given locale.
// An unparsable locale falls back to English.
func NewNameCollator(locale string) *NameCollator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &NameCollator{c: collate.New(tag, collate.IgnoreCase, collate.Loose)}
}

// Compare returns -1, 0 or 1 depending on the collation order of a and b.
func (nc *NameCollator) Compare(a, b string) int {
	return nc.c.CompareString(a, b)
}

// NameDistance returns how far a display name is from a search query.
//
// A case-insensitive substring match counts as distance 0, otherwise the Levenshtein
// distance between the lowered strings is returned.
func NameDistance(query, name string) int {
	query = strings.ToLower(strings.TrimSpace(query))
	name = strings.ToLower(strings.TrimSpace(name))
	if query == "" || strings.Contains(name, query) {
		return 0
	}
	return levenshtein.DistanceForStrings([]rune(query), []rune(name), levenshtein.DefaultOptionsWithSub)
}

// Package match resolves brand names extracted from free-form answer text
// against a canonical candidate list.
//
// Matching runs in two stages: exact case-insensitive comparison, then
// bidirectional substring containment on normalized forms, so that
// "E.Leclerc" binds to "Leclerc" and vice versa.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentStripper removes combining diacritical marks after NFD decomposition.
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// punctReplacer drops the punctuation that brand names commonly carry.
var punctReplacer = strings.NewReplacer(
	".", "", ",", "", "'", "", "’", "", "\"", "",
	"-", " ", "_", " ", "!", "", "?", "", "&", " ",
	"(", " ", ")", " ",
)

// Normalize standardizes a brand name for comparison:
//  1. trim and lowercase
//  2. strip accents (é → e)
//  3. strip punctuation, mapping separators to spaces
//  4. collapse runs of whitespace
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}

	if stripped, _, err := transform.String(accentStripper, name); err == nil {
		name = stripped
	}
	name = punctReplacer.Replace(name)

	return strings.Join(strings.Fields(name), " ")
}

// Match binds a raw extracted name to one of the canonical candidates.
// Returns the canonical name and true on a hit; otherwise the raw name
// unchanged and false, so callers can keep the mention unbound rather
// than discard it.
func Match(raw string, candidates []string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw, false
	}

	// Exact, case-insensitive.
	for _, c := range candidates {
		if strings.EqualFold(trimmed, strings.TrimSpace(c)) {
			return c, true
		}
	}

	// Normalized containment in either direction.
	normRaw := Normalize(trimmed)
	if normRaw == "" {
		return raw, false
	}
	for _, c := range candidates {
		normCand := Normalize(c)
		if normCand == "" {
			continue
		}
		if strings.Contains(normRaw, normCand) || strings.Contains(normCand, normRaw) {
			return c, true
		}
	}

	return raw, false
}

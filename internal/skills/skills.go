// Package skills detects known technology terms in free text.
//
// Detection is closed-world: a technology that is not in the built-in
// vocabulary is never reported, however prominent it is in the text. Such
// terms can still be matched at the category level by the normalizer.
package skills

import (
	"sort"
	"strings"

	"github.com/divya16-bit/ApplyBee/internal/textnorm"
)

// Extract returns the sorted vocabulary terms found in text.
func Extract(text string) []string {
	normalized := textnorm.Preprocess(text)
	if normalized == "" {
		return []string{}
	}

	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		tokens[tok] = struct{}{}
		if stripped := strings.ReplaceAll(tok, ".", ""); stripped != tok && stripped != "" {
			tokens[stripped] = struct{}{}
		}
		if trimmed := strings.Trim(tok, ".-"); trimmed != tok && trimmed != "" {
			tokens[trimmed] = struct{}{}
		}
	}

	found := make(map[string]struct{})
	for tok := range tokens {
		if IsNoise(tok) {
			continue
		}
		tok = ApplyAlias(tok)
		if IsKnown(tok) {
			found[tok] = struct{}{}
		}
	}

	return sortedKeys(found)
}

// ApplyAlias maps common spellings to their canonical vocabulary form.
func ApplyAlias(token string) string {
	if canonical, ok := aliases[token]; ok {
		return canonical
	}
	return token
}

// Canonical lowercases, trims and alias-maps an externally supplied skill.
func Canonical(raw string) string {
	return ApplyAlias(strings.ToLower(strings.TrimSpace(raw)))
}

// IsKnown reports whether term is part of the vocabulary.
func IsKnown(term string) bool {
	_, ok := vocabulary[term]
	return ok
}

// IsNoise reports whether term is social-media or EEO boilerplate.
func IsNoise(term string) bool {
	_, ok := noise[strings.ToLower(term)]
	return ok
}

// IsUmbrella reports whether term is too broad to be an actionable gap.
func IsUmbrella(term string) bool {
	_, ok := umbrella[strings.ToLower(term)]
	return ok
}

// LooksLikePhrase reports whether s reads like requirement prose rather than
// a skill name.
func LooksLikePhrase(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range phraseMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return len(strings.Fields(lower)) > 4
}

// Vocabulary returns a sorted copy of the known terms.
func Vocabulary() []string {
	return sortedKeys(vocabulary)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Package textnorm holds the text cleanup shared by skill extraction,
// section matching and the gist heuristics.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s\+\#\-\.]`)
	spaces     = regexp.MustCompile(`\s+`)
	// same token pattern as sklearn's default analyzer
	wordToken = regexp.MustCompile(`\b\w\w+\b`)
)

// Preprocess lowercases text, replaces characters outside [a-z0-9 +#-.] with
// spaces and collapses whitespace.
func Preprocess(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ToLower(text)
	s = disallowed.ReplaceAllString(s, " ")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// TokenizeFiltered splits on whitespace and keeps tokens longer than two
// characters that are not stopwords.
func TokenizeFiltered(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		if len(w) <= 2 || IsStopWord(w) {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

// Tokens is the analyzer used for TF-IDF: word tokens of two or more
// characters, lowercased, English stopwords removed. Order and duplicates are
// preserved so callers can count term frequency.
func Tokens(text string) []string {
	raw := wordToken.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if IsStopWord(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Words splits text on whitespace. It exists so chunking and tokenizing agree
// on what a word is.
func Words(text string) []string {
	return strings.Fields(text)
}

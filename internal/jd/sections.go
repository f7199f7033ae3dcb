// Package jd splits job descriptions into responsibilities, required skills
// and bonus skills.
package jd

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// MaxItemChars caps a single snippet.
	MaxItemChars = 300
	// MaxItems caps each section.
	MaxItems = 120
	// MaxRelevantChars caps the text returned by Relevant.
	MaxRelevantChars = 8000
)

// Section names one of the three JD buckets.
type Section string

const (
	Responsibilities Section = "responsibilities"
	Skills           Section = "skills"
	BonusSkills      Section = "bonus_skills"
)

// Sections holds the snippets of a job description. All three keys are
// always present in JSON.
type Sections struct {
	Responsibilities []string `json:"responsibilities"`
	Skills           []string `json:"skills"`
	BonusSkills      []string `json:"bonus_skills"`
}

var (
	headerPatterns = []struct {
		section Section
		re      *regexp.Regexp
	}{
		{Responsibilities, regexp.MustCompile(`(?i)\b(responsibilit(y|ies)|what\s+(you|you'll)\s+do|day[-\s]?to[-\s]?day)\b`)},
		{Skills, regexp.MustCompile(`(?i)\b(requirements?|qualifications?|what\s+you\s+bring|skills|what\s+we're\s+looking\s+for|what\s+we\s+are\s+looking\s+for)\b`)},
		{Skills, regexp.MustCompile(`(?i)\b(you\s+will\s+thrive|ideal\s+candidate|who\s+you\s+are)\b`)},
		{BonusSkills, regexp.MustCompile(`(?i)\b(nice\s+to\s+have|preferred|good\s+to\s+have|bonus|plus)\b`)},
	}

	bonusFlag = regexp.MustCompile(`(?i)\b(nice to have|preferred|bonus|plus)\b`)

	noise = regexp.MustCompile(`(?i)(equal opportunity|affirmative action|\beeo\b|disabilit|veteran|` +
		`notice to prospective|we never ask for payment|credit check|background check|` +
		`e-?verify|pay transparency|` +
		`linkedin\s*\||instagram|life@|blog\s*\||\bx\s*\|)`)

	bullets    = regexp.MustCompile(`[•·▪–—➤▶■□►]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// MarshalJSON encodes nil sections as empty arrays.
func (s Sections) MarshalJSON() ([]byte, error) {
	type plain Sections
	return json.Marshal(plain{
		Responsibilities: nonNil(s.Responsibilities),
		Skills:           nonNil(s.Skills),
		BonusSkills:      nonNil(s.BonusSkills),
	})
}

// Get returns the snippets of one section.
func (s Sections) Get(name Section) []string {
	switch name {
	case Responsibilities:
		return s.Responsibilities
	case Skills:
		return s.Skills
	case BonusSkills:
		return s.BonusSkills
	}
	return nil
}

// Empty reports whether no section has content.
func (s Sections) Empty() bool {
	return len(s.Responsibilities) == 0 && len(s.Skills) == 0 && len(s.BonusSkills) == 0
}

// Joined returns the snippets of one section separated by newlines.
func (s Sections) Joined(name Section) string {
	return strings.Join(s.Get(name), "\n")
}

// Clean strips markup and noise from every section, removes header echoes
// and case-insensitive duplicates, and applies the size caps.
func (s Sections) Clean() Sections {
	return Sections{
		Responsibilities: Clean(s.Responsibilities),
		Skills:           Clean(s.Skills),
		BonusSkills:      Clean(s.BonusSkills),
	}
}

// Relevant joins every section, minus noise, into one text block capped at
// MaxRelevantChars.
func (s Sections) Relevant() string {
	var lines []string
	for _, name := range []Section{Responsibilities, Skills, BonusSkills} {
		for _, item := range s.Get(name) {
			if !noise.MatchString(item) {
				lines = append(lines, item)
			}
		}
	}
	text := strings.TrimSpace(strings.Join(lines, "\n"))
	if len(text) > MaxRelevantChars {
		text = text[:MaxRelevantChars]
	}
	return text
}

// Clean normalizes a list of snippets that may come straight from a scraper.
func Clean(items []string) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		text := stripMarkup(item)
		if text == "" || noise.MatchString(text) || isHeaderEcho(text) {
			continue
		}
		cleaned = append(cleaned, text)
	}
	return dedupe(cleaned)
}

// ClassifyHeader maps a heading to its section, or "" when it names none.
func ClassifyHeader(text string) Section {
	t := strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(text, "’", "'")), " "))
	for _, p := range headerPatterns {
		if p.re.MatchString(t) {
			return p.section
		}
	}
	return ""
}

func isHeaderEcho(text string) bool {
	trimmed := strings.TrimSpace(text)
	if !strings.HasSuffix(trimmed, ":") || len(strings.Fields(trimmed)) > 6 {
		return false
	}
	return ClassifyHeader(strings.TrimSuffix(trimmed, ":")) != ""
}

func stripMarkup(item string) string {
	if strings.ContainsAny(item, "<>") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(item)); err == nil {
			item = doc.Text()
		}
	}
	return collapse(item)
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// dedupe removes case-insensitive duplicates, caps item length and list
// length.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = collapse(item)
		if item == "" {
			continue
		}
		low := strings.ToLower(item)
		if _, ok := seen[low]; ok {
			continue
		}
		seen[low] = struct{}{}
		out = append(out, truncateRunes(item, MaxItemChars))
		if len(out) == MaxItems {
			break
		}
	}
	return out
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

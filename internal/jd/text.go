package jd

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	responsibilityHint = regexp.MustCompile(`(?i)\b(you will|build|design|own|lead|implement|deliver)\b`)
	requirementHint    = regexp.MustCompile(`(?i)\b(require|must|experience|proficien|knowledge|background)\b`)
)

// SectionsFromText classifies plain-text lines under the headers they
// follow. Lines flagged as bonus go to bonus_skills wherever they appear;
// lines before any header count as skills. When a section stays empty,
// lines carrying typical wording for it are used instead.
func SectionsFromText(text string) Sections {
	lines := splitLines(text)

	var out Sections
	var current Section
	for _, ln := range lines {
		if noise.MatchString(ln) {
			continue
		}
		if len(ln) < 120 && !strings.Contains(ln, ":") && (isUpper(ln) || isTitle(ln)) {
			if sec := ClassifyHeader(ln); sec != "" {
				current = sec
				continue
			}
		}

		content := ln
		if strings.HasPrefix(ln, "-") || strings.HasPrefix(ln, "*") {
			content = strings.TrimSpace(strings.TrimLeft(ln, "-* "))
		}
		if content == "" || noise.MatchString(content) {
			continue
		}

		switch {
		case bonusFlag.MatchString(content), current == BonusSkills:
			out.BonusSkills = append(out.BonusSkills, content)
		case current == Responsibilities:
			out.Responsibilities = append(out.Responsibilities, content)
		default:
			out.Skills = append(out.Skills, content)
		}
	}

	if len(out.Responsibilities) == 0 {
		out.Responsibilities = matching(lines, 60, func(ln string) bool {
			return responsibilityHint.MatchString(ln) && !noise.MatchString(ln)
		})
	}
	if len(out.Skills) == 0 {
		out.Skills = matching(lines, MaxItems, func(ln string) bool {
			return requirementHint.MatchString(ln) && !bonusFlag.MatchString(ln) && !noise.MatchString(ln)
		})
	}

	return Sections{
		Responsibilities: dedupe(out.Responsibilities),
		Skills:           dedupe(out.Skills),
		BonusSkills:      dedupe(out.BonusSkills),
	}
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = bullets.ReplaceAllString(text, "-")

	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}

func matching(lines []string, limit int, fn func(string) bool) []string {
	var out []string
	for _, ln := range lines {
		if !fn(ln) {
			continue
		}
		out = append(out, strings.TrimSpace(strings.TrimLeft(ln, "- ")))
		if len(out) == limit {
			break
		}
	}
	return out
}

func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// isTitle reports whether every word starts with an upper-case letter
// followed only by lower-case ones.
func isTitle(s string) bool {
	hasLetter := false
	prevCased := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			if prevCased {
				return false
			}
			prevCased, hasLetter = true, true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased = true
		default:
			prevCased = false
		}
	}
	return hasLetter
}

package jd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	strippedTags   = "script, style, noscript, header, footer, form, aside, nav"
	headerTags     = "h1, h2, h3, h4, strong, b"
	siblingLookout = 7
)

var skillHint = regexp.MustCompile(`(?i)\b(experience|years|knowledge|proficient|familiar|strong|background|degree|bachelor|master)\b`)

// SectionsFromHTML finds headings that name a section and collects the
// bullets of the list that follows each of them. When no skills list is
// found, bullets with requirement wording from the remaining lists are used.
// Bonus-flagged bullets anywhere in the page land in bonus_skills.
func SectionsFromHTML(html string) (Sections, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Sections{}, fmt.Errorf("parse jd html: %w", err)
	}
	doc.Find(strippedTags).Remove()

	var out Sections
	var seen []*goquery.Selection
	add := func(sec Section, item string) {
		switch sec {
		case Responsibilities:
			out.Responsibilities = append(out.Responsibilities, item)
		case Skills:
			out.Skills = append(out.Skills, item)
		case BonusSkills:
			out.BonusSkills = append(out.BonusSkills, item)
		}
	}

	doc.Find(headerTags).Each(func(_ int, h *goquery.Selection) {
		sec := ClassifyHeader(textOf(h))
		if sec == "" {
			return
		}
		list := followingList(h)
		if list == nil || contains(seen, list) {
			return
		}
		seen = append(seen, list)

		list.Find("li").Each(func(_ int, li *goquery.Selection) {
			txt := textOf(li)
			if txt == "" || noise.MatchString(txt) {
				return
			}
			if bonusFlag.MatchString(txt) {
				add(BonusSkills, txt)
				return
			}
			add(sec, txt)
		})
	})

	if len(out.Skills) == 0 {
		doc.Find("ul, ol").Each(func(_ int, list *goquery.Selection) {
			if contains(seen, list) {
				return
			}
			list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
				txt := textOf(li)
				if txt == "" || noise.MatchString(txt) || !skillHint.MatchString(txt) {
					return
				}
				add(Skills, txt)
			})
		})
	}

	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		txt := textOf(li)
		if txt != "" && !noise.MatchString(txt) && bonusFlag.MatchString(txt) {
			add(BonusSkills, txt)
		}
	})

	return Sections{
		Responsibilities: dedupe(out.Responsibilities),
		Skills:           dedupe(out.Skills),
		BonusSkills:      dedupe(out.BonusSkills),
	}, nil
}

// TextFromHTML renders headings, paragraphs and list items one per line,
// prefixing bullets with "- ".
func TextFromHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse jd html: %w", err)
	}
	doc.Find(strippedTags).Remove()

	var lines []string
	doc.Find("h1, h2, h3, h4, p, li, blockquote").Each(func(_ int, el *goquery.Selection) {
		txt := textOf(el)
		if txt == "" {
			return
		}
		if goquery.NodeName(el) == "li" {
			txt = "- " + txt
		}
		lines = append(lines, txt)
	})

	text := bullets.ReplaceAllString(strings.Join(lines, "\n"), "-")
	return strings.TrimSpace(text), nil
}

// Parse derives sections from HTML when it is given and yields anything,
// falling back to the plain text. text may be empty when html is set.
func Parse(text, html string) (Sections, string, error) {
	if strings.TrimSpace(html) != "" {
		sections, err := SectionsFromHTML(html)
		if err != nil {
			return Sections{}, "", err
		}
		if strings.TrimSpace(text) == "" {
			if text, err = TextFromHTML(html); err != nil {
				return Sections{}, "", err
			}
		}
		if !sections.Empty() {
			return sections, text, nil
		}
	}
	return SectionsFromText(text), text, nil
}

// followingList returns the first ul/ol after a heading, stopping at the
// next heading-like block.
func followingList(h *goquery.Selection) *goquery.Selection {
	node := h
	name := goquery.NodeName(h)
	if name == "strong" || name == "b" {
		if parent := h.Parent(); parent.Is("p, div") {
			node = parent
		}
	}

	var found *goquery.Selection
	node.NextAll().EachWithBreak(func(i int, sib *goquery.Selection) bool {
		if i >= siblingLookout {
			return false
		}
		if sib.Is("ul, ol") {
			found = sib
			return false
		}
		if sib.Is("h1, h2, h3, h4") || (sib.Is("p, div") && sib.Find("strong, b").Length() > 0) {
			return false
		}
		return true
	})
	return found
}

func contains(seen []*goquery.Selection, list *goquery.Selection) bool {
	for _, s := range seen {
		if s.IsSelection(list) {
			return true
		}
	}
	return false
}

// textOf returns the collapsed text of a node with a space between child
// elements so adjacent items do not run together.
func textOf(sel *goquery.Selection) string {
	var parts []string
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			parts = append(parts, c.Text())
			return
		}
		parts = append(parts, textOf(c))
	})
	return collapse(strings.Join(parts, " "))
}

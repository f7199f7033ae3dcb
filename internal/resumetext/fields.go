package resumetext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/divya16-bit/ApplyBee/internal/utils"
)

// Fields are the contact details of a resume plus its raw text.
type Fields struct {
	FirstName string `json:"first_name" mapstructure:"first_name"`
	LastName  string `json:"last_name" mapstructure:"last_name"`
	Email     string `json:"email" mapstructure:"email"`
	Phone     string `json:"phone" mapstructure:"phone"`
	LinkedIn  string `json:"linkedin" mapstructure:"linkedin"`
	GitHub    string `json:"github" mapstructure:"github"`
	Portfolio string `json:"portfolio" mapstructure:"portfolio"`
	Location  string `json:"location" mapstructure:"location"`
	Summary   string `json:"summary" mapstructure:"summary"`
	RawText   string `json:"raw_text" mapstructure:"raw_text"`
}

// FullName joins first and last name.
func (f Fields) FullName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

var (
	emailRe     = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w+`)
	phoneRe     = regexp.MustCompile(`\+?\d[\d\s\-()]{8,}\d`)
	linkedInRe  = regexp.MustCompile(`(?i)https?://(www\.)?linkedin\.com/in/[^\s,•]+`)
	gitHubRe    = regexp.MustCompile(`(?i)https?://(www\.)?github\.com/[^\s,•]+`)
	urlRe       = regexp.MustCompile(`https?://[^\s,•]+`)
	socialRe    = regexp.MustCompile(`(?i)(linkedin|github|facebook|twitter|instagram)`)
	locationRe  = regexp.MustCompile(`(?im)(?:location|based in|address|city|residence)[:\s\-]*([A-Za-z ,]+?)(?:\n|•|\||$)`)
	nameTailRe  = regexp.MustCompile(`[•|].*$`)
	nameWordRe  = regexp.MustCompile(`^[A-Za-z.]+$`)
	summaryRe   = regexp.MustCompile(`(?is)(?:summary|about me|profile|objective)[:\s\-]*(.*?)(?:skills|experience|education|projects|$)`)
	whitespace  = regexp.MustCompile(`\s+`)
	urlTrailing = ".,;)"
)

type city struct {
	re   *regexp.Regexp
	full string
}

func newCity(key, full string) city {
	return city{re: regexp.MustCompile(`\b` + regexp.QuoteMeta(key) + `\b`), full: full}
}

// knownCities maps a lowercase city to the full location string used in
// applications.
var knownCities = []city{
	newCity("bengaluru", "Bengaluru, Karnataka, India"),
	newCity("bangalore", "Bengaluru, Karnataka, India"),
	newCity("mumbai", "Mumbai, Maharashtra, India"),
	newCity("pune", "Pune, Maharashtra, India"),
	newCity("hyderabad", "Hyderabad, Telangana, India"),
	newCity("chennai", "Chennai, Tamil Nadu, India"),
	newCity("new delhi", "New Delhi, India"),
	newCity("delhi", "Delhi, India"),
	newCity("noida", "Noida, Uttar Pradesh, India"),
	newCity("gurgaon", "Gurgaon, Haryana, India"),
	newCity("gurugram", "Gurugram, Haryana, India"),
	newCity("kolkata", "Kolkata, West Bengal, India"),
	newCity("ahmedabad", "Ahmedabad, Gujarat, India"),
	newCity("jaipur", "Jaipur, Rajasthan, India"),
	newCity("chandigarh", "Chandigarh, India"),
	newCity("kochi", "Kochi, Kerala, India"),
	newCity("indore", "Indore, Madhya Pradesh, India"),
	newCity("bhubaneswar", "Bhubaneswar, Odisha, India"),
	newCity("visakhapatnam", "Visakhapatnam, Andhra Pradesh, India"),
	newCity("lucknow", "Lucknow, Uttar Pradesh, India"),
	newCity("jalandhar", "Jalandhar, Punjab, India"),
}

// ParseFields extracts contact details from resume text. Missing details
// stay empty.
func ParseFields(text string) Fields {
	first, last := splitName(name(text))
	return Fields{
		FirstName: first,
		LastName:  last,
		Email:     emailRe.FindString(text),
		Phone:     phoneRe.FindString(text),
		LinkedIn:  strings.TrimRight(linkedInRe.FindString(text), urlTrailing),
		GitHub:    strings.TrimRight(gitHubRe.FindString(text), urlTrailing),
		Portfolio: portfolio(text),
		Location:  location(text),
		Summary:   summary(text),
		RawText:   text,
	}
}

// FieldsFromMap decodes a loosely typed parsed-resume object, as sent by
// browser extensions. Unknown keys are ignored; when raw_text is present and
// a contact field is missing, it is filled from the text.
func FieldsFromMap(m map[string]any) (Fields, error) {
	var f Fields
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &f,
	})
	if err != nil {
		return Fields{}, fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(m); err != nil {
		return Fields{}, fmt.Errorf("decode parsed resume: %w", err)
	}

	if strings.TrimSpace(f.RawText) != "" {
		f = f.merge(ParseFields(f.RawText))
	}
	return f, nil
}

// merge fills empty fields of f from other.
func (f Fields) merge(other Fields) Fields {
	fill := func(dst *string, src string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = src
		}
	}
	fill(&f.FirstName, other.FirstName)
	fill(&f.LastName, other.LastName)
	fill(&f.Email, other.Email)
	fill(&f.Phone, other.Phone)
	fill(&f.LinkedIn, other.LinkedIn)
	fill(&f.GitHub, other.GitHub)
	fill(&f.Portfolio, other.Portfolio)
	fill(&f.Location, other.Location)
	fill(&f.Summary, other.Summary)
	return f
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}

// name looks for a 2-4 word alphabetic line among the first two lines.
func name(text string) string {
	lines := nonEmptyLines(text)
	for i := 0; i < len(lines) && i < 2; i++ {
		cleaned := strings.TrimSpace(nameTailRe.ReplaceAllString(lines[i], ""))
		words := strings.Fields(cleaned)
		if len(words) < 2 || len(words) > 4 {
			continue
		}
		ok := true
		for _, w := range words {
			if !nameWordRe.MatchString(w) {
				ok = false
				break
			}
		}
		if ok {
			return cleaned
		}
	}
	return ""
}

func splitName(full string) (string, string) {
	words := strings.Fields(full)
	switch len(words) {
	case 0:
		return "", ""
	case 1:
		return words[0], ""
	}
	return words[0], words[1]
}

// portfolio returns the first non-social URL, preferring the header area.
func portfolio(text string) string {
	header := text
	if len(header) > 500 {
		header = header[:500]
	}
	for _, scope := range []string{header, text} {
		for _, u := range urlRe.FindAllString(scope, -1) {
			if !socialRe.MatchString(u) {
				return strings.TrimRight(u, urlTrailing)
			}
		}
	}
	return ""
}

func location(text string) string {
	if m := locationRe.FindStringSubmatch(text); m != nil {
		loc := strings.TrimSpace(strings.Split(strings.TrimSpace(m[1]), ",")[0])
		if len(loc) >= 2 && len(loc) <= 50 {
			return loc
		}
	}

	lines := nonEmptyLines(text)
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, scope := range []string{strings.ToLower(strings.Join(lines, "\n")), strings.ToLower(text)} {
		for _, c := range knownCities {
			if c.re.MatchString(scope) {
				return c.full
			}
		}
	}
	return ""
}

func summary(text string) string {
	if m := summaryRe.FindStringSubmatch(text); m != nil {
		if snippet := strings.TrimSpace(whitespace.ReplaceAllString(m[1], " ")); snippet != "" {
			snippet, _ = utils.Truncate(snippet, 500)
			return snippet
		}
	}

	lines := nonEmptyLines(text)
	if len(lines) <= 3 {
		return ""
	}
	end := len(lines)
	if end > 8 {
		end = 8
	}
	for _, ln := range lines[3:end] {
		lower := strings.ToLower(ln)
		if len(ln) > 50 && !strings.Contains(lower, "http") && !strings.Contains(lower, "@") &&
			!strings.Contains(lower, "experience") && !strings.Contains(lower, "education") {
			ln, _ = utils.Truncate(ln, 500)
			return ln
		}
	}
	return ""
}

package gist

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/divya16-bit/ApplyBee/internal/experience"
	"github.com/divya16-bit/ApplyBee/internal/resumetext"
	"github.com/divya16-bit/ApplyBee/internal/skills"
	"github.com/divya16-bit/ApplyBee/internal/textnorm"
	"github.com/divya16-bit/ApplyBee/internal/utils"
)

const (
	minOverlap     = 0.25
	maxAnswerChars = 300
)

var (
	firstNameRe = regexp.MustCompile(`(?i)\b(first|given)\s*name\b`)
	lastNameRe  = regexp.MustCompile(`(?i)\b(last|family|sur)\s*name\b|\bsurname\b`)
	fullNameRe  = regexp.MustCompile(`(?i)^\s*(your\s+)?(full\s+|legal\s+|candidate\s+)?name\s*\*?\s*:?\s*$`)
	emailRe     = regexp.MustCompile(`(?i)\be-?mail\b`)
	phoneRe     = regexp.MustCompile(`(?i)\b(phone|mobile|contact\s+number|telephone)\b`)
	linkedInRe  = regexp.MustCompile(`(?i)linkedin`)
	gitHubRe    = regexp.MustCompile(`(?i)github`)
	websiteRe   = regexp.MustCompile(`(?i)\b(website|portfolio|personal\s+site)\b`)
	countryRe   = regexp.MustCompile(`(?i)\bcountry\b`)
	cityRe      = regexp.MustCompile(`(?i)\bcity\b`)
	locationRe  = regexp.MustCompile(`(?i)\b(location|where\s+are\s+you\s+based|current\s+address)\b`)

	yearsRe     = regexp.MustCompile(`(?i)\b(years?|yrs?)\b`)
	expRe       = regexp.MustCompile(`(?i)\bexp(erience)?\b`)
	expWithRe   = regexp.MustCompile(`(?i)experience\s+(?:in|with|using)\s+(.+?)[?.]*$`)
	unitTestRe  = regexp.MustCompile(`(?i)\bunit\b.*\btest|\btest.*\bunit\b`)
	aiToolRe    = regexp.MustCompile(`(?i)\bai\b.*\btools?\b|\btools?\b.*\bai\b`)
	relocateRe  = regexp.MustCompile(`(?i)relocat`)
	noticeRe    = regexp.MustCompile(`(?i)\bnotice\b`)
	salaryRe    = regexp.MustCompile(`(?i)\b(salary|compensation|ctc|pay\s+expectations?)\b`)
	offerRe     = regexp.MustCompile(`(?i)\b(current|other|competing)\s+offers?\b`)
	authRe      = regexp.MustCompile(`(?i)\bauthori[sz](ation|ed)\b`)
	sponsorRe   = regexp.MustCompile(`(?i)\bsponsor(ship)?\b`)
	visaRe      = regexp.MustCompile(`(?i)\bvisa\b`)
	sentenceEnd = regexp.MustCompile(`[.!?\n]+`)
)

// cities recognised in relocation questions.
var cities = []string{
	"bengaluru", "bangalore", "mumbai", "pune", "hyderabad", "chennai", "delhi",
	"noida", "gurgaon", "gurugram", "kolkata", "ahmedabad", "jaipur", "kochi",
}

func (e *Engine) contactAnswer(label string, r resumetext.Fields) (string, bool) {
	var answer string
	switch {
	case firstNameRe.MatchString(label):
		answer = r.FirstName
	case lastNameRe.MatchString(label):
		answer = r.LastName
	case fullNameRe.MatchString(label):
		answer = r.FullName()
	case emailRe.MatchString(label):
		answer = r.Email
	case phoneRe.MatchString(label):
		answer = r.Phone
	case linkedInRe.MatchString(label):
		answer = r.LinkedIn
	case gitHubRe.MatchString(label):
		answer = firstNonEmpty(r.GitHub, r.Portfolio)
	case websiteRe.MatchString(label):
		answer = firstNonEmpty(r.Portfolio, r.GitHub)
	case countryRe.MatchString(label):
		answer = e.defaults.Country
	case cityRe.MatchString(label):
		city, _, _ := strings.Cut(r.Location, ",")
		answer = strings.TrimSpace(city)
	case locationRe.MatchString(label) && !relocateRe.MatchString(label):
		answer = firstNonEmpty(r.Location, e.defaults.Location)
	default:
		return "", false
	}
	answer = strings.TrimSpace(answer)
	return answer, answer != ""
}

// yearsOfExperience is the resume tenure used for both experience labels and
// the language model prompt.
func yearsOfExperience(resumeText string, now time.Time) float64 {
	return experience.FromResume(resumeText, now)
}

// experienceAnswer handles "years of experience" labels that do not name a
// specific skill.
func experienceAnswer(label string, years float64) (string, bool) {
	if !yearsRe.MatchString(label) || !expRe.MatchString(label) {
		return "", false
	}
	if len(skills.Extract(label)) > 0 || years <= 0 {
		return "", false
	}
	return formatYears(years) + " years", true
}

func formatYears(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (e *Engine) heuristicAnswer(label string, r resumetext.Fields) (string, bool) {
	lower := strings.ToLower(label)
	switch {
	case expWithRe.MatchString(lower):
		return yesNo(hasExperience(lower, r.RawText)), true
	case unitTestRe.MatchString(lower):
		return "Yes", true
	case aiToolRe.MatchString(lower):
		return "Yes", true
	case relocateRe.MatchString(lower):
		return e.relocation(lower, r.Location), true
	case noticeRe.MatchString(lower):
		return e.defaults.NoticePeriod, true
	case salaryRe.MatchString(lower):
		return e.defaults.Salary, true
	case offerRe.MatchString(lower):
		return "No", true
	case sponsorRe.MatchString(lower):
		return "No", true
	case authRe.MatchString(lower):
		return e.defaults.WorkAuthorization, true
	case visaRe.MatchString(lower):
		return e.defaults.Visa, true
	}
	return "", false
}

// hasExperience checks the skills a label asks about against the resume.
// Vocabulary skills are compared as extracted terms; anything else falls
// back to a substring search.
func hasExperience(lowerLabel, resumeText string) bool {
	asked := skills.Extract(lowerLabel)
	if len(asked) > 0 {
		have := make(map[string]struct{})
		for _, s := range skills.Extract(resumeText) {
			have[s] = struct{}{}
		}
		for _, s := range asked {
			if _, ok := have[s]; !ok {
				return false
			}
		}
		return true
	}

	m := expWithRe.FindStringSubmatch(lowerLabel)
	if m == nil {
		return false
	}
	subject := strings.TrimSpace(m[1])
	return subject != "" && strings.Contains(strings.ToLower(resumeText), subject)
}

func (e *Engine) relocation(lowerLabel, location string) string {
	loc := strings.ToLower(location)
	for _, city := range cities {
		if !strings.Contains(lowerLabel, city) {
			continue
		}
		if strings.Contains(loc, city) || sameCity(loc, city) {
			return "Already based in " + strings.TrimSpace(strings.Split(location, ",")[0])
		}
		return "Yes"
	}
	return e.defaults.Relocation
}

// sameCity treats renamed cities as equal.
func sameCity(location, city string) bool {
	pairs := map[string]string{
		"bangalore": "bengaluru", "bengaluru": "bangalore",
		"gurgaon": "gurugram", "gurugram": "gurgaon",
	}
	alt, ok := pairs[city]
	return ok && strings.Contains(location, alt)
}

// bestSentence finds the resume sentence, then the JD sentence, with the
// highest Jaccard overlap against the label's tokens.
func bestSentence(label, resumeText, jdText string) (string, bool) {
	want := textnorm.TokenizeFiltered(textnorm.Preprocess(label))
	if len(want) == 0 {
		return "", false
	}

	for _, text := range []string{resumeText, jdText} {
		best, bestScore := "", 0.0
		for _, sentence := range sentenceEnd.Split(text, -1) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			have := textnorm.TokenizeFiltered(textnorm.Preprocess(sentence))
			hits := 0
			for tok := range want {
				if _, ok := have[tok]; ok {
					hits++
				}
			}
			if hits == 0 {
				continue
			}
			union := len(want) + len(have) - hits
			if score := float64(hits) / float64(union); score > bestScore {
				best, bestScore = sentence, score
			}
		}
		if bestScore >= minOverlap {
			best, _ = utils.Truncate(best, maxAnswerChars)
			return best, true
		}
	}
	return "", false
}

func yesNo(ok bool) string {
	if ok {
		return "Yes"
	}
	return "No"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

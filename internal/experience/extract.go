// Package experience parses years of experience from resumes and job
// descriptions and scores how well they fit.
package experience

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const maxYears = 50

const (
	monthName = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?`
	year      = `(?:19|20)\d{2}`
	sep       = `\s*(?:-|–|—|to)\s*`
	openEnd   = `present|current|now|ongoing`
)

var (
	monthRange = regexp.MustCompile(`\b(` + monthName + `\s+` + year + `)` + sep + `(` + monthName + `\s+` + year + `|` + openEnd + `)\b`)
	yearRange  = regexp.MustCompile(`\b(` + year + `)` + sep + `(` + year + `|` + openEnd + `)\b`)
	yearOnly   = regexp.MustCompile(year)

	resumeExplicit = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2})\+?\s*(?:years?|yrs?)\s*(?:of\s*)?(?:experience|exp)`),
		regexp.MustCompile(`(?:with|over|around)\s*(\d{1,2})\+?\s*(?:years?|yrs?)`),
	}
	seniorTitle = regexp.MustCompile(`\b(?:senior|lead|principal)\b`)
	internTitle = regexp.MustCompile(`\bintern(?:ship)?\b`)

	jdRange  = regexp.MustCompile(`\b(\d{1,2})\s*(?:-|–|—|to)\s*(\d{1,2})\s*\+?\s*(?:years?|yrs?)`)
	jdSingle = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2})\+\s*(?:years?|yrs?)`),
		regexp.MustCompile(`(?:minimum|min|at least)\s*(?:of\s*)?(\d{1,2})\s*(?:years?|yrs?)`),
		regexp.MustCompile(`(\d{1,2})\s*(?:years?|yrs?)\s*(?:of\s*)?(?:experience|exp)`),
	}
)

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// Interval is an employment period expressed in absolute month indexes
// (year*12 + month).
type Interval struct {
	Start int
	End   int
}

func (i Interval) months() int { return i.End - i.Start }

// FromResume returns total tenure in years rounded to one decimal.
//
// Open ended ranges ("2021 - Present") resolve against now, so the result for
// a fixed resume grows month by month. Callers that need stable output pass a
// fixed time.
func FromResume(text string, now time.Time) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	lower := strings.ToLower(text)

	if total := MergedYears(Intervals(lower, now)); total > 0 {
		return total
	}

	for _, re := range resumeExplicit {
		if v, ok := firstYears(re, lower); ok {
			return v
		}
	}

	switch {
	case seniorTitle.MatchString(lower):
		return 5
	case internTitle.MatchString(lower):
		return 1
	}
	return 0
}

// Intervals finds every valid employment range in lowercase text. Year-only
// matches that overlap a month-year match are skipped so one role is not
// counted twice.
func Intervals(lower string, now time.Time) []Interval {
	nowIdx := now.Year()*12 + int(now.Month())

	var (
		out   []Interval
		spans [][]int
	)
	for _, m := range monthRange.FindAllStringSubmatchIndex(lower, -1) {
		spans = append(spans, m[:2])
		if iv, ok := toInterval(lower[m[2]:m[3]], lower[m[4]:m[5]], nowIdx); ok {
			out = append(out, iv)
		}
	}

	for _, m := range yearRange.FindAllStringSubmatchIndex(lower, -1) {
		if overlapsAny(m[0], m[1], spans) {
			continue
		}
		if iv, ok := toInterval(lower[m[2]:m[3]], lower[m[4]:m[5]], nowIdx); ok {
			out = append(out, iv)
		}
	}

	return out
}

// MergedYears merges overlapping or touching intervals and returns the
// covered span in years, rounded to one decimal.
func MergedYears(intervals []Interval) float64 {
	if len(intervals) == 0 {
		return 0
	}
	sorted := append([]Interval(nil), intervals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []Interval{sorted[0]}
	for _, cur := range sorted[1:] {
		last := &merged[len(merged)-1]
		if cur.Start <= last.End {
			if cur.End > last.End {
				last.End = cur.End
			}
			continue
		}
		merged = append(merged, cur)
	}

	total := 0
	for _, iv := range merged {
		total += iv.months()
	}
	return round1(float64(total) / 12)
}

// FromJD returns the requirement stated in a job description.
func FromJD(text string) Estimate {
	if strings.TrimSpace(text) == "" {
		return None()
	}
	lower := strings.ToLower(text)

	for _, m := range jdRange.FindAllStringSubmatch(lower, -1) {
		low, errLow := strconv.Atoi(m[1])
		high, errHigh := strconv.Atoi(m[2])
		if errLow != nil || errHigh != nil {
			continue
		}
		if low > 0 && low <= high && high <= maxYears {
			return Between(float64(low), float64(high))
		}
	}

	for _, re := range jdSingle {
		if v, ok := firstYears(re, lower); ok {
			return AtLeast(v)
		}
	}
	return None()
}

func toInterval(startRaw, endRaw string, nowIdx int) (Interval, bool) {
	start := monthIndex(startRaw, nowIdx)
	end := monthIndex(endRaw, nowIdx)
	if start <= 0 || end <= 0 || end < start {
		return Interval{}, false
	}
	iv := Interval{Start: start, End: end}
	if iv.months() <= 0 || iv.months() > maxYears*12 {
		return Interval{}, false
	}
	return iv, true
}

func monthIndex(raw string, nowIdx int) int {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "present", "current", "now", "ongoing":
		return nowIdx
	}

	y := yearOnly.FindString(raw)
	if y == "" {
		return 0
	}
	yr, err := strconv.Atoi(y)
	if err != nil {
		return 0
	}

	month := 1
	if len(raw) >= 3 {
		if m, ok := months[raw[:3]]; ok {
			month = m
		}
	}
	return yr*12 + month
}

func firstYears(re *regexp.Regexp, text string) (float64, bool) {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if v > 0 && v <= maxYears {
			return float64(v), true
		}
	}
	return 0, false
}

func overlapsAny(start, end int, spans [][]int) bool {
	for _, s := range spans {
		if start < s[1] && s[0] < end {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

package experience

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frozen keeps "Present" ranges stable; tenure that ends today is
// time-dependent by design.
var frozen = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func TestFromResumeMergesOverlaps(t *testing.T) {
	t.Parallel()

	text := "Acme Corp, Jan 2018 - Dec 2019\nGlobex, Jun 2019 - Mar 2021"

	// span Jan 2018 - Mar 2021, not the 3.75 naive sum
	assert.Equal(t, 3.2, FromResume(text, frozen))
}

func TestFromResume(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "empty", text: "", want: 0},
		{name: "year range", text: "Senior Software Engineer 2018-2024", want: 6},
		{name: "present resolves to clock", text: "Engineer, January 2022 – Present", want: 2.4},
		{name: "word separator", text: "Feb 2015 to Feb 2017", want: 2},
		{name: "disjoint ranges add up", text: "2010 - 2012, 2015 - 2016", want: 3},
		{name: "reversed range discarded", text: "worked 2020 - 2018", want: 0},
		{name: "explicit fallback", text: "Engineer with 7 years of experience in Go", want: 7},
		{name: "over fallback", text: "over 12 yrs building systems", want: 12},
		{name: "senior fallback", text: "Senior Backend Engineer", want: 5},
		{name: "intern fallback", text: "Software Intern at Initech", want: 1},
		{name: "nothing", text: "I like building things", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FromResume(tt.text, frozen))
		})
	}
}

func TestFromResumeDependsOnClock(t *testing.T) {
	t.Parallel()

	text := "Jan 2020 - Present"
	earlier := FromResume(text, time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC))
	later := FromResume(text, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 2.0, earlier)
	assert.Equal(t, 3.0, later)
}

func TestMergedYears(t *testing.T) {
	t.Parallel()

	assert.Zero(t, MergedYears(nil))
	assert.Equal(t, 2.0, MergedYears([]Interval{
		{Start: 24000, End: 24012},
		{Start: 24012, End: 24024},
	}))
	assert.Equal(t, 1.0, MergedYears([]Interval{
		{Start: 24000, End: 24012},
		{Start: 24003, End: 24006},
	}))
}

func TestFromJD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want Estimate
	}{
		{name: "dash range", text: "3-5 years of backend work", want: Between(3, 5)},
		{name: "word range", text: "3 to 5 yrs experience", want: Between(3, 5)},
		{name: "plus", text: "5+ years Python, Django, AWS required", want: AtLeast(5)},
		{name: "minimum", text: "minimum of 3 years", want: AtLeast(3)},
		{name: "at least", text: "At least 4 years in a similar role", want: AtLeast(4)},
		{name: "n years of experience", text: "2 years of experience with Go", want: AtLeast(2)},
		{name: "invalid range falls through", text: "0-2 years", want: None()},
		{name: "none", text: "Great team and snacks", want: None()},
		{name: "empty", text: "", want: None()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FromJD(tt.text))
		})
	}
}

func TestFitScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		resume float64
		jd     Estimate
		want   float64
	}{
		{name: "both zero", resume: 0, jd: None(), want: 100},
		{name: "jd unspecified", resume: 3, jd: None(), want: 100},
		{name: "resume zero", resume: 0, jd: AtLeast(3), want: 50},
		{name: "within range", resume: 4, jd: Between(3, 5), want: 100},
		{name: "range short by one", resume: 2, jd: Between(3, 5), want: 90},
		{name: "range short by two", resume: 1, jd: Between(3, 5), want: 75},
		{name: "range short by three", resume: 2, jd: Between(5, 8), want: 55},
		{name: "range short floor", resume: 1, jd: Between(10, 12), want: 40},
		{name: "range over by two", resume: 7, jd: Between(3, 5), want: 95},
		{name: "range over by four", resume: 9, jd: Between(3, 5), want: 85},
		{name: "range over floor", resume: 20, jd: Between(3, 5), want: 60},
		{name: "minimum overage one", resume: 6, jd: AtLeast(5), want: 100},
		{name: "minimum overage four", resume: 9, jd: AtLeast(5), want: 90},
		{name: "minimum overage ten", resume: 15, jd: AtLeast(5), want: 70},
		{name: "minimum short one", resume: 4, jd: AtLeast(5), want: 85},
		{name: "minimum short two", resume: 3, jd: AtLeast(5), want: 70},
		{name: "minimum short floor", resume: 1, jd: AtLeast(8), want: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, FitScore(tt.resume, tt.jd), 1e-9)
		})
	}
}

func TestEstimateJSON(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		in   Estimate
		want string
	}{
		{in: None(), want: `0`},
		{in: AtLeast(5), want: `5`},
		{in: Between(3, 5), want: `[3,5]`},
	} {
		raw, err := json.Marshal(tt.in)
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(raw))

		var back Estimate
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, tt.in, back)
	}
}

func TestEstimateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.0", None().String())
	assert.Equal(t, "5.0", AtLeast(5).String())
	assert.Equal(t, "(3.0, 5.0)", Between(3, 5).String())
}

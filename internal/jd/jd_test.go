package jd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postingHTML = `
<html><body>
<nav>Jobs | About</nav>
<div class="content">
  <h2>What You'll Do</h2>
  <ul>
    <li>Build <b>APIs</b> in Python</li>
    <li>Own the deployment pipeline</li>
  </ul>
  <p><strong>Requirements</strong></p>
  <ul>
    <li>5+ years with Django</li>
    <li>PostgreSQL experience</li>
    <li>Kubernetes is a plus</li>
  </ul>
  <h3>Nice to have</h3>
  <ul>
    <li>Go</li>
  </ul>
  <ul>
    <li>We are an equal opportunity employer</li>
  </ul>
</div>
<footer>Follow us on LinkedIn |</footer>
</body></html>`

func TestSectionsFromHTML(t *testing.T) {
	t.Parallel()

	got, err := SectionsFromHTML(postingHTML)
	require.NoError(t, err)

	assert.Equal(t, []string{"Build APIs in Python", "Own the deployment pipeline"}, got.Responsibilities)
	assert.Equal(t, []string{"5+ years with Django", "PostgreSQL experience"}, got.Skills)
	assert.Equal(t, []string{"Kubernetes is a plus", "Go"}, got.BonusSkills)
}

func TestSectionsFromHTMLFallsBackToSkillLikeBullets(t *testing.T) {
	t.Parallel()

	html := `<ul><li>3 years of Go experience</li><li>Free lunch</li></ul>`
	got, err := SectionsFromHTML(html)
	require.NoError(t, err)
	assert.Equal(t, []string{"3 years of Go experience"}, got.Skills)
	assert.Empty(t, got.Responsibilities)
}

func TestSectionsFromText(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"Backend Engineer",
		"RESPONSIBILITIES",
		"• Design services in Go",
		"• Design services in go",
		"Requirements",
		"- 3-5 years of experience",
		"- Redis and Kafka",
		"- Terraform preferred",
		"We are an Equal Opportunity employer.",
	}, "\r\n")

	got := SectionsFromText(text)
	assert.Equal(t, []string{"Design services in Go"}, got.Responsibilities)
	assert.Equal(t, []string{"Backend Engineer", "3-5 years of experience", "Redis and Kafka"}, got.Skills)
	assert.Equal(t, []string{"Terraform preferred"}, got.BonusSkills)
}

func TestSectionsFromTextHeuristicFallback(t *testing.T) {
	t.Parallel()

	got := SectionsFromText("You will build data pipelines.\nStrong knowledge of SQL is a must.")
	assert.Equal(t, []string{"You will build data pipelines."}, got.Responsibilities)
	assert.Equal(t, []string{"You will build data pipelines.", "Strong knowledge of SQL is a must."}, got.Skills)
}

func TestClean(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 400)
	got := Clean([]string{
		"<p>Python &amp; Django</p>",
		"python & django",
		"Requirements:",
		"Veteran status",
		"   ",
		long,
	})
	require.Len(t, got, 2)
	assert.Equal(t, "Python & Django", got[0])
	assert.Len(t, got[1], MaxItemChars)

	many := make([]string, 200)
	for i := range many {
		many[i] = "item " + strings.Repeat("a", i+1)
	}
	assert.Len(t, Clean(many), MaxItems)
}

func TestSectionsJSONKeepsEmptyKeys(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Sections{Skills: []string{"go"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"responsibilities":[],"skills":["go"],"bonus_skills":[]}`, string(data))

	var back Sections
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"go"}, back.Skills)
}

func TestClassifyHeader(t *testing.T) {
	t.Parallel()

	tests := map[string]Section{
		"What you’ll do":           Responsibilities,
		"Day-to-day":               Responsibilities,
		"Qualifications":           Skills,
		"Who You Are":              Skills,
		"Nice to Have":             BonusSkills,
		"About the company":        "",
		"What we're looking for ": Skills,
	}
	for in, want := range tests {
		assert.Equal(t, want, ClassifyHeader(in), in)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	sections, text, err := Parse("", postingHTML)
	require.NoError(t, err)
	assert.NotEmpty(t, sections.Skills)
	assert.Contains(t, text, "- Build APIs in Python")
	assert.NotContains(t, text, "Jobs | About")

	sections, text, err = Parse("Requirements\n- Go", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, sections.Skills)
	assert.Equal(t, "Requirements\n- Go", text)
}

func TestRelevant(t *testing.T) {
	t.Parallel()

	s := Sections{
		Responsibilities: []string{"Build things"},
		Skills:           []string{"Go", "Veteran status"},
	}
	assert.Equal(t, "Build things\nGo", s.Relevant())
	assert.Equal(t, "Build things", s.Joined(Responsibilities))
	assert.False(t, s.Empty())
	assert.True(t, Sections{}.Empty())
}

package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "keeps whitelist", input: "C++, C# & Node.js!", want: "c++ c# node.js"},
		{name: "collapses whitespace", input: "  Go\n\n\tKubernetes  ", want: "go kubernetes"},
		{name: "hyphen kept", input: "Full-Stack (Senior)", want: "full-stack senior"},
		{name: "unicode replaced", input: "Résumé — 2020", want: "r sum 2020"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Preprocess(tt.input))
		})
	}
}

func TestTokenizeFiltered(t *testing.T) {
	t.Parallel()

	got := TokenizeFiltered("we are looking for a python engineer with go and aws")

	assert.Contains(t, got, "python")
	assert.Contains(t, got, "engineer")
	assert.Contains(t, got, "looking")
	assert.NotContains(t, got, "with")
	assert.NotContains(t, got, "for")
	assert.Contains(t, got, "aws")
	// length filter drops short tokens even when they are skills
	assert.NotContains(t, got, "go")
}

func TestTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"python", "python", "django"}, Tokens("The Python, python and Django"))
	assert.Empty(t, Tokens("a I the"))
}

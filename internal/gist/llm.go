package gist

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/divya16-bit/ApplyBee/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

const promptExcerptChars = 2000

type group string

const (
	groupBehavioral group = "behavioral"
	groupSalary     group = "salary"
	groupLongForm   group = "long_form"
	groupShort      group = "short"
)

var groupOrder = []group{groupBehavioral, groupSalary, groupLongForm, groupShort}

var (
	behavioralRe = regexp.MustCompile(`(?i)\b(why|tell\s+us|describe|challeng\w*|situation|example|motivat\w*|proud|conflict|how\s+do\s+you)\b`)
	longFormRe   = regexp.MustCompile(`(?i)\b(cover\s+letter|additional\s+information|anything\s+else|about\s+(yourself|you)|summary|introduce)\b`)
	objectRe     = regexp.MustCompile(`(?s)\{.*\}`)
)

func classify(label string) group {
	switch {
	case salaryRe.MatchString(label):
		return groupSalary
	case longFormRe.MatchString(label):
		return groupLongForm
	case behavioralRe.MatchString(label):
		return groupBehavioral
	}
	return groupShort
}

// ask sends every open label in one prompt and maps the reply back onto the
// labels. A nil generator answers nothing.
func (e *Engine) ask(ctx context.Context, labels []string, req Request, years float64) (map[string]string, error) {
	if e.generator == nil {
		e.logger.Debug("no language model configured", zap.Int("labels", len(labels)))
		return map[string]string{}, nil
	}

	prompt := buildPrompt(labels, req, years)
	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return map[string]string{}, fmt.Errorf("generate answers: %w", err)
	}

	parsed := ParseAnswers(raw)
	e.logger.Debug("language model answers",
		zap.Int("requested", len(labels)),
		zap.Int("parsed", len(parsed)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)
	if len(parsed) == 0 {
		return map[string]string{}, errors.New("language model reply could not be parsed")
	}
	return matchLabels(labels, parsed), nil
}

func buildPrompt(labels []string, req Request, years float64) string {
	grouped := make(map[group][]string)
	for _, l := range labels {
		g := classify(l)
		grouped[g] = append(grouped[g], l)
	}

	var questions strings.Builder
	for _, g := range groupOrder {
		if len(grouped[g]) == 0 {
			continue
		}
		data, _ := json.Marshal(grouped[g])
		fmt.Fprintf(&questions, "%s: %s\n", g, data)
	}

	candidate := req.Resume.FullName()
	if candidate == "" {
		candidate = "unknown"
	}
	experience := "not stated"
	if years > 0 {
		experience = formatYears(years) + " years"
	}
	resume, _ := utils.Truncate(strings.TrimSpace(req.Resume.RawText), promptExcerptChars)
	jdText, _ := utils.Truncate(strings.TrimSpace(req.JDText), promptExcerptChars)

	return strings.NewReplacer(
		"{{CANDIDATE}}", candidate,
		"{{YEARS}}", experience,
		"{{RESUME}}", resume,
		"{{JD}}", jdText,
		"{{QUESTIONS}}", strings.TrimSpace(questions.String()),
	).Replace(promptTemplate)
}

// matchLabels maps reply keys onto the requested labels, exactly first and
// then ignoring case and surrounding punctuation.
func matchLabels(labels []string, parsed map[string]string) map[string]string {
	loose := make(map[string]string, len(parsed))
	for k, v := range parsed {
		loose[looseKey(k)] = v
	}

	out := make(map[string]string, len(labels))
	for _, l := range labels {
		if v, ok := parsed[l]; ok {
			out[l] = v
			continue
		}
		if v, ok := loose[looseKey(l)]; ok {
			out[l] = v
		}
	}
	return out
}

func looseKey(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), `"'*:?. `))
}

// parser turns a model reply into label answers. ok is false when the
// reply is not in the parser's format.
type parser func(raw string) (map[string]string, bool)

var parsers = []parser{strictJSON, fencedJSON, embeddedJSON, keyValueLines}

// ParseAnswers recovers a label-to-answer map from free-form model output.
// It tries strict JSON, a fenced JSON block, the outermost {...} substring
// and finally "key: value" lines. Unparseable output yields an empty map.
func ParseAnswers(raw string) map[string]string {
	for _, p := range parsers {
		if out, ok := p(raw); ok && len(out) > 0 {
			return out
		}
	}
	return map[string]string{}
}

func strictJSON(raw string) (map[string]string, bool) {
	var data map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &data); err != nil {
		return nil, false
	}
	return coerceMap(data), true
}

func fencedJSON(raw string) (map[string]string, bool) {
	raw = strings.TrimSpace(raw)
	start := strings.Index(raw, "```")
	if start == -1 {
		return nil, false
	}
	body := raw[start+3:]
	body = strings.TrimPrefix(body, "json")
	if end := strings.Index(body, "```"); end != -1 {
		body = body[:end]
	}
	return strictJSON(body)
}

func embeddedJSON(raw string) (map[string]string, bool) {
	m := objectRe.FindString(raw)
	if m == "" {
		return nil, false
	}
	return strictJSON(m)
}

func keyValueLines(raw string) (map[string]string, bool) {
	out := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.Trim(strings.TrimSpace(key), `"'-*{} `)
		value = strings.Trim(strings.TrimSpace(value), `,"'{} `)
		if key == "" || value == "" || strings.EqualFold(value, "null") {
			continue
		}
		out[key] = value
	}
	return out, len(out) > 0
}

func coerceMap(data map[string]any) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		if s := coerceString(v); s != "" {
			out[k] = s
		}
	}
	return out
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

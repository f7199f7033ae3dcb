package gemini

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/divya16-bit/ApplyBee/internal/ai"
	"github.com/divya16-bit/ApplyBee/internal/logger"
	"github.com/divya16-bit/ApplyBee/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

const excerptChars = 1500

// Explainer asks the generator for a short explanation of a score.
type Explainer struct {
	generator ai.TextGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewExplainer wraps generator.
func NewExplainer(generator ai.TextGenerator, log *zap.Logger, maxLogLength int) *Explainer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	model := ""
	if generator != nil {
		model = generator.Model()
	}
	return &Explainer{
		generator: generator,
		logger:    logger.ForBackend(log, Provider, model),
		maxLogLen: maxLogLength,
	}
}

// Explain returns the model's explanation for req.
func (e *Explainer) Explain(ctx context.Context, req ai.ExplainRequest) (string, error) {
	if e == nil || e.generator == nil {
		return "", errors.New("explainer is not configured")
	}

	prompt := buildPrompt(req)
	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	explanation := strings.TrimSpace(stripFence(raw))
	e.logger.Debug("score explanation",
		zap.Int("response_length", utf8.RuneCountInString(explanation)),
		zap.String("response_preview", utils.TruncateForLog(explanation, e.maxLogLen)),
	)
	if explanation == "" {
		return "", errors.New("gemini returned an empty explanation")
	}
	return explanation, nil
}

func buildPrompt(req ai.ExplainRequest) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Score: {{SCORE}}\nMatched: {{MATCHED}}\nMissing: {{MISSING}}\nResume:\n{{RESUME}}\nJob:\n{{JD}}\n\nExplanation:"
	}

	resume, _ := utils.Truncate(strings.TrimSpace(req.ResumeText), excerptChars)
	jdText, _ := utils.Truncate(strings.TrimSpace(req.JDText), excerptChars)

	replacer := strings.NewReplacer(
		"{{SCORE}}", strconv.FormatFloat(req.Score, 'f', 2, 64),
		"{{MATCHED}}", listOrNone(req.Matched),
		"{{MISSING}}", listOrNone(req.Missing),
		"{{SUMMARY}}", orNone(req.Summary),
		"{{RESUME}}", orNone(resume),
		"{{JD}}", orNone(jdText),
	)
	return replacer.Replace(template)
}

// stripFence strips a surrounding code fence, which models add even when
// asked for plain text.
func stripFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```text")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}

// Package gist answers job-application form questions from a resume and a
// job description.
package gist

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/divya16-bit/ApplyBee/internal/ai"
	"github.com/divya16-bit/ApplyBee/internal/logger"
	"github.com/divya16-bit/ApplyBee/internal/resumetext"
)

// Source records which stage produced an answer.
type Source string

const (
	SourceContact    Source = "contact"
	SourceExperience Source = "experience"
	SourceHeuristic  Source = "heuristic"
	SourceOverlap    Source = "overlap"
	SourceLLM        Source = "llm"
	SourceFallback   Source = "fallback"
)

// Defaults are the stock answers used by the heuristics and the fallback
// stage. They are read from the gist.defaults config section.
type Defaults struct {
	Location          string `mapstructure:"location"`
	Country           string `mapstructure:"country"`
	NoticePeriod      string `mapstructure:"notice-period"`
	Salary            string `mapstructure:"salary"`
	Relocation        string `mapstructure:"relocation"`
	WorkAuthorization string `mapstructure:"work-authorization"`
	Visa              string `mapstructure:"visa"`
	Behavioral        string `mapstructure:"behavioral"`
	LongForm          string `mapstructure:"long-form"`
}

// DefaultAnswers returns the built-in Defaults.
func DefaultAnswers() Defaults {
	return Defaults{
		Location:          "India",
		Country:           "India",
		NoticePeriod:      "30 days",
		Salary:            "As per company standards",
		Relocation:        "Open to discussion",
		WorkAuthorization: "Yes",
		Visa:              "Not required (Indian Citizen)",
		Behavioral:        "I enjoy taking ownership of hard problems and working with the team to ship reliable solutions.",
		LongForm: "I'm excited about this opportunity and confident my experience aligns with the role. " +
			"My background in software engineering lets me contribute from day one.",
	}
}

// withFallbacks fills empty fields of d from the built-in defaults.
func (d Defaults) withFallbacks() Defaults {
	base := DefaultAnswers()
	fill := func(dst *string, src string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = src
		}
	}
	fill(&d.Location, base.Location)
	fill(&d.Country, base.Country)
	fill(&d.NoticePeriod, base.NoticePeriod)
	fill(&d.Salary, base.Salary)
	fill(&d.Relocation, base.Relocation)
	fill(&d.WorkAuthorization, base.WorkAuthorization)
	fill(&d.Visa, base.Visa)
	fill(&d.Behavioral, base.Behavioral)
	fill(&d.LongForm, base.LongForm)
	return d
}

// Request is one batch of form labels to answer.
type Request struct {
	Resume resumetext.Fields
	JDText string
	Labels []string
}

// Outcome maps every requested label to an answer. An empty answer means
// nothing could be inferred.
type Outcome struct {
	Answers  map[string]string
	Sources  map[string]Source
	Warnings []string
}

// Degraded reports whether the language model stage failed.
func (o Outcome) Degraded() bool { return len(o.Warnings) > 0 }

// Options configure an Engine.
type Options struct {
	// Generator answers the labels the deterministic stages leave open. Nil
	// skips straight to the canned answers.
	Generator    ai.TextGenerator
	Defaults     Defaults
	Now          func() time.Time
	MaxLogLength int
	Logger       *zap.Logger
}

// Engine resolves labels through contact fields, heuristics, text overlap
// and finally one batched language model call.
type Engine struct {
	generator ai.TextGenerator
	defaults  Defaults
	now       func() time.Time
	maxLogLen int
	logger    *zap.Logger
}

// New builds an Engine.
func New(opts Options) *Engine {
	e := &Engine{
		generator: opts.Generator,
		defaults:  opts.Defaults.withFallbacks(),
		now:       opts.Now,
		maxLogLen: opts.MaxLogLength,
		logger:    logger.ForComponent(opts.Logger, "gist"),
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.maxLogLen <= 0 {
		e.maxLogLen = 200
	}
	return e
}

// Answer returns an answer for every label in req. It never fails; a
// language model error is reported in Outcome.Warnings and the affected
// labels receive canned answers.
func (e *Engine) Answer(ctx context.Context, req Request) Outcome {
	out := Outcome{
		Answers:  make(map[string]string, len(req.Labels)),
		Sources:  make(map[string]Source, len(req.Labels)),
		Warnings: []string{},
	}
	resumeText := req.Resume.RawText
	years := yearsOfExperience(resumeText, e.now())

	var open []string
	for _, label := range req.Labels {
		if _, done := out.Answers[label]; done {
			continue
		}
		if strings.TrimSpace(label) == "" {
			out.Answers[label] = ""
			out.Sources[label] = SourceFallback
			continue
		}

		if answer, src, ok := e.resolve(label, req.Resume, years); ok {
			out.Answers[label] = answer
			out.Sources[label] = src
			continue
		}
		if answer, ok := bestSentence(label, resumeText, req.JDText); ok {
			out.Answers[label] = answer
			out.Sources[label] = SourceOverlap
			continue
		}
		open = append(open, label)
	}

	if len(open) > 0 {
		llmAnswers, err := e.ask(ctx, open, req, years)
		if err != nil {
			e.logger.Warn("language model answers unavailable", zap.Int("labels", len(open)), zap.Error(err))
			out.Warnings = append(out.Warnings, "language model answers unavailable: "+err.Error())
		}
		for _, label := range open {
			if answer := strings.TrimSpace(llmAnswers[label]); answer != "" {
				out.Answers[label] = answer
				out.Sources[label] = SourceLLM
				continue
			}
			out.Answers[label] = e.canned(classify(label))
			out.Sources[label] = SourceFallback
		}
	}

	e.logger.Info("gist answers ready",
		zap.Int("labels", len(out.Answers)),
		zap.Int("llm_labels", len(open)),
		zap.Int("warnings", len(out.Warnings)),
	)
	return out
}

// resolve runs the contact and heuristic stages.
func (e *Engine) resolve(label string, resume resumetext.Fields, years float64) (string, Source, bool) {
	if answer, ok := e.contactAnswer(label, resume); ok {
		return answer, SourceContact, true
	}
	if answer, ok := experienceAnswer(label, years); ok {
		return answer, SourceExperience, true
	}
	if answer, ok := e.heuristicAnswer(label, resume); ok {
		return answer, SourceHeuristic, true
	}
	return "", "", false
}

func (e *Engine) canned(g group) string {
	switch g {
	case groupBehavioral:
		return e.defaults.Behavioral
	case groupSalary:
		return e.defaults.Salary
	case groupLongForm:
		return e.defaults.LongForm
	}
	return ""
}

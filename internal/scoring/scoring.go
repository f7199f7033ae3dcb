// Package scoring combines section similarity, skill overlap and experience
// fit into a single resume-to-job compatibility score.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/divya16-bit/ApplyBee/internal/ai"
	"github.com/divya16-bit/ApplyBee/internal/experience"
	"github.com/divya16-bit/ApplyBee/internal/filtering"
	"github.com/divya16-bit/ApplyBee/internal/jd"
	"github.com/divya16-bit/ApplyBee/internal/logger"
	"github.com/divya16-bit/ApplyBee/internal/matcher"
	"github.com/divya16-bit/ApplyBee/internal/normalizer"
	"github.com/divya16-bit/ApplyBee/internal/skills"
	"github.com/divya16-bit/ApplyBee/internal/utils"
)

const (
	// DefaultMaxInputChars bounds resume and JD text before scoring.
	DefaultMaxInputChars = 12000

	maxListedSkills = 30
	maxJDSkillsUsed = 50
	coveredScore    = 0.6
	pairSeparator   = " ↔ "
)

// Composite weights. semantic* apply when embeddings take part in section
// scoring; lexical* apply to TF-IDF-only section scores.
const (
	semanticRespWeight       = 0.30
	semanticDirectWeight     = 0.35
	semanticContextualWeight = 0.25
	semanticYOEWeight        = 0.10

	lexicalRespWeight       = 0.20
	lexicalDirectWeight     = 0.50
	lexicalContextualWeight = 0.15
	lexicalYOEWeight        = 0.15

	lexicalBoost = 1.4
)

// Input is one scoring request.
type Input struct {
	ResumeText string
	Sections   jd.Sections
	// JDSkillsExtracted, when non-empty, replaces skill extraction from the
	// JD sections.
	JDSkillsExtracted []string
	// JDFullText is the whole job description, used for experience
	// requirements and as a skill source when the skills section is empty.
	JDFullText string
	// Explain asks the configured Explainer for a natural-language summary.
	Explain bool
}

// Outcome carries a result and the degradations met while producing it.
type Outcome struct {
	Result   Result
	Warnings []string
}

// Degraded reports whether any backend failed during scoring.
func (o Outcome) Degraded() bool { return len(o.Warnings) > 0 }

// Options configure an Engine. Zero values select defaults.
type Options struct {
	Matcher    *matcher.Matcher
	Normalizer filtering.Categorizer
	// Filters builds the missing-skill pipeline. Filters hold per-run state,
	// so a fresh list is built for every call.
	Filters      func() []filtering.Filter
	FilterConfig *filtering.Config
	Explainer    ai.Explainer
	Now          func() time.Time
	// MaxInputChars truncates resume and JD text.
	MaxInputChars int
	// Threshold is the category similarity threshold for both skill sets.
	Threshold float64
	Logger    *zap.Logger
}

// Engine scores resumes against job descriptions. It is safe for concurrent
// use when its collaborators are.
type Engine struct {
	matcher      *matcher.Matcher
	normalizer   filtering.Categorizer
	filters      func() []filtering.Filter
	filterConfig *filtering.Config
	explainer    ai.Explainer
	now          func() time.Time
	maxInput     int
	threshold    float64
	logger       *zap.Logger
}

// New builds an Engine.
func New(opts Options) *Engine {
	log := logger.ForComponent(opts.Logger, "scoring")

	e := &Engine{
		matcher:      opts.Matcher,
		normalizer:   opts.Normalizer,
		filters:      opts.Filters,
		filterConfig: opts.FilterConfig,
		explainer:    opts.Explainer,
		now:          opts.Now,
		maxInput:     opts.MaxInputChars,
		threshold:    opts.Threshold,
		logger:       log,
	}
	if e.matcher == nil {
		e.matcher = matcher.New(nil, false, opts.Logger)
	}
	if e.normalizer == nil {
		e.normalizer = normalizer.New(nil, normalizer.Options{Logger: opts.Logger})
	}
	if e.filters == nil {
		e.filters = filtering.Default
	}
	if e.filterConfig == nil {
		e.filterConfig = filtering.DefaultConfig()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.maxInput <= 0 {
		e.maxInput = DefaultMaxInputChars
	}
	if e.threshold <= 0 {
		e.threshold = normalizer.DefaultThreshold
	}
	return e
}

// Semantic reports whether section scores blend in embeddings.
func (e *Engine) Semantic() bool { return e.matcher.Semantic() }

// CalculateMatchScore scores in. It never fails: backend problems are
// reported in Outcome.Warnings and the result falls back to lexical signal.
func (e *Engine) CalculateMatchScore(ctx context.Context, in Input) Outcome {
	w := &warnings{logger: e.logger}
	res := emptyResult()

	resumeText := e.truncate(w, "resume", in.ResumeText)
	if strings.TrimSpace(resumeText) == "" {
		res.Summary = EmptyResumeSummary
		res.Warnings = w.list()
		return Outcome{Result: res, Warnings: res.Warnings}
	}
	fullText := e.truncate(w, "job description", in.JDFullText)

	respRaw := in.Sections.Joined(jd.Responsibilities)
	skillsRaw := in.Sections.Joined(jd.Skills)

	resume, err := e.matcher.PrepareResume(ctx, resumeText)
	if err != nil {
		w.add("semantic resume embedding unavailable", err)
	}
	resp, err := e.matcher.SectionMatch(ctx, resume, respRaw)
	if err != nil {
		w.add("semantic responsibilities score unavailable", err)
	}
	skl, err := e.matcher.SectionMatch(ctx, resume, skillsRaw)
	if err != nil {
		w.add("semantic skills score unavailable", err)
	}

	resumeSkills := skills.Extract(resumeText)
	jdSkills := e.jdSkills(in, skillsRaw, fullText)

	common := capList(intersect(resumeSkills, jdSkills), maxListedSkills)
	missing := capList(subtract(jdSkills, resumeSkills), maxListedSkills)
	missing = e.filterMissing(ctx, w, missing)

	resumeNorm := e.normalize(ctx, w, "resume", resumeSkills)
	jdNorm := e.normalize(ctx, w, "job description", jdSkills)

	overlap := categoryOverlap(resumeNorm, jdNorm)
	resumeCats := coveredCategories(resumeNorm)
	normMissing := categoryMissing(jdNorm, resumeCats, e.filterConfig.MaxLength)

	direct := math.Min(100, float64(len(common))/float64(max(1, len(jdSkills)))*100)
	contextual := math.Min(100, float64(len(overlap))/float64(max(1, len(jdNorm)))*100)

	resumeYears := experience.FromResume(resumeText, e.now())
	jdYearsText := fullText
	if strings.TrimSpace(jdYearsText) == "" {
		jdYearsText = respRaw + " " + skillsRaw
	}
	jdYears := experience.FromJD(jdYearsText)
	yoe := experience.FitScore(resumeYears, jdYears)

	respScore, skillsScore := resp.Combined, skl.Combined
	var ats float64
	if e.matcher.Semantic() {
		ats = semanticRespWeight*respScore +
			semanticDirectWeight*direct +
			semanticContextualWeight*contextual +
			semanticYOEWeight*yoe
	} else {
		respScore, skillsScore = lexicalAdjust(respScore), lexicalAdjust(skillsScore)
		ats = lexicalRespWeight*respScore +
			lexicalDirectWeight*direct +
			lexicalContextualWeight*contextual +
			lexicalYOEWeight*yoe
	}

	res.ATSScore = round2(clamp100(ats))
	res.ResponsibilityScore = round2(clamp100(respScore))
	res.SkillsScore = round2(clamp100(skillsScore))
	res.CommonSkills = common
	res.MissingSkills = missing
	res.JDSkillsUsed = capList(jdSkills, maxJDSkillsUsed)
	res.NormalizedOverlap = overlap
	res.NormalizedMissing = normMissing
	res.DirectSkillScore = round2(direct)
	res.ContextualSkillScore = round2(contextual)
	res.AllMatchedSkills = matchedSkills(common, overlap)
	res.YearsExperienceResume = resumeYears
	res.YearsExperienceJD = jdYears
	res.YOEScore = round2(yoe)
	res.SkillGapAnalysis = gapAnalysis(missing, jdNorm, resumeCats)
	res.RawSectionScores = map[string]matcher.SectionScore{
		RawResponsibilities: resp,
		RawSkills:           skl,
	}

	bonus := skills.Extract(in.Sections.Joined(jd.BonusSkills))
	res.BonusSkillsJD = nonNil(bonus)
	res.MatchedBonusSkills = nonNil(intersect(resumeSkills, bonus))

	res.Summary = fmt.Sprintf(
		"ATS Score: %.2f%% (Responsibilities: %.1f%% [T:%.1f/S:%.1f], Skills: %.1f%% [T:%.1f/S:%.1f], "+
			"Skills Overlap: %d direct, %d contextual. Resume YoE=%s, JD YoE=%s, YoE Score=%.1f)",
		res.ATSScore,
		res.ResponsibilityScore, resp.TFIDF, resp.Semantic,
		res.SkillsScore, skl.TFIDF, skl.Semantic,
		len(common), len(overlap),
		strconv.FormatFloat(resumeYears, 'f', 1, 64), jdYears, yoe,
	)

	if in.Explain {
		res.Explanation = e.explain(ctx, w, resumeText, fullText, in.Sections, res)
	}

	res.Warnings = w.list()
	e.logger.Info("match scored",
		zap.Float64("ats_score", res.ATSScore),
		zap.Bool("semantic", e.matcher.Semantic()),
		zap.Int("jd_skills", len(jdSkills)),
		zap.Int("common", len(common)),
		zap.Int("missing", len(missing)),
		zap.Int("warnings", len(res.Warnings)),
	)
	return Outcome{Result: res, Warnings: res.Warnings}
}

func (e *Engine) truncate(w *warnings, what, text string) string {
	out, cut := utils.Truncate(text, e.maxInput)
	if cut {
		w.add(fmt.Sprintf("%s text truncated to %d characters", what, e.maxInput), nil)
	}
	return out
}

// jdSkills picks the JD skill source: explicit skills, then the skills
// section, then the full text when the section is empty.
func (e *Engine) jdSkills(in Input, skillsRaw, fullText string) []string {
	if len(in.JDSkillsExtracted) > 0 {
		set := make(map[string]struct{}, len(in.JDSkillsExtracted))
		for _, s := range in.JDSkillsExtracted {
			s = skills.ApplyAlias(strings.ToLower(strings.TrimSpace(s)))
			if s != "" {
				set[s] = struct{}{}
			}
		}
		return sortedSet(set)
	}
	if strings.TrimSpace(skillsRaw) == "" && strings.TrimSpace(fullText) != "" {
		e.logger.Debug("skills section empty, extracting from full job description")
		return skills.Extract(fullText)
	}
	return skills.Extract(skillsRaw)
}

func (e *Engine) filterMissing(ctx context.Context, w *warnings, missing []string) []string {
	deps := filtering.Deps{Logger: e.logger, Normalizer: e.normalizer}
	filtered, err := filtering.Run(ctx, e.filterConfig, deps, e.filters(), missing)
	if err != nil {
		w.add("missing-skill filters skipped", err)
		return missing
	}
	return nonNil(filtered)
}

func (e *Engine) normalize(ctx context.Context, w *warnings, what string, raw []string) []normalizer.NormalizedSkill {
	out, err := e.normalizer.Normalize(ctx, raw, e.threshold)
	switch {
	case err == nil:
	case errors.Is(err, normalizer.ErrDisabled):
		e.logger.Debug("semantic normalization disabled", zap.String("skills", what), zap.Int("count", len(raw)))
	default:
		w.add(what+" skill categories unavailable", err)
	}
	if len(out) != len(raw) {
		out = make([]normalizer.NormalizedSkill, len(raw))
		for i, s := range raw {
			out[i] = normalizer.NormalizedSkill{Original: s, Category: normalizer.Other}
		}
	}
	return out
}

func (e *Engine) explain(ctx context.Context, w *warnings, resumeText, fullText string, sections jd.Sections, res Result) string {
	if e.explainer == nil {
		w.add("explanation requested but no explainer is configured", nil)
		return res.Summary
	}
	jdText := fullText
	if strings.TrimSpace(jdText) == "" {
		jdText = sections.Relevant()
	}
	text, err := e.explainer.Explain(ctx, ai.ExplainRequest{
		ResumeText: resumeText,
		JDText:     jdText,
		Score:      res.ATSScore,
		Matched:    res.AllMatchedSkills,
		Missing:    res.MissingSkills,
		Summary:    res.Summary,
	})
	if err != nil {
		w.add("explanation unavailable", err)
		return res.Summary
	}
	return text
}

// lexicalAdjust lifts TF-IDF scores, which run lower than blended ones.
func lexicalAdjust(v float64) float64 {
	return (v + math.Min(100, lexicalBoost*v)) / 2
}

// categoryOverlap pairs resume and JD skills that share a category other
// than Other. A pair and its mirror image count once.
func categoryOverlap(resume, jdSkills []normalizer.NormalizedSkill) []CategoryMatch {
	out := []CategoryMatch{}
	seenPairs := make(map[[2]string]struct{})
	seenLabels := make(map[[2]string]struct{})
	for _, r := range resume {
		if r.Category == normalizer.Other {
			continue
		}
		for _, j := range jdSkills {
			if r.Category != j.Category {
				continue
			}
			a, b := strings.ToLower(r.Original), strings.ToLower(j.Original)
			if a > b {
				a, b = b, a
			}
			pair := [2]string{a, b}
			if _, ok := seenPairs[pair]; ok {
				continue
			}
			seenPairs[pair] = struct{}{}

			label := r.Original + pairSeparator + j.Original
			key := [2]string{strings.ToLower(label), r.Category}
			if _, ok := seenLabels[key]; ok {
				continue
			}
			seenLabels[key] = struct{}{}
			out = append(out, CategoryMatch{Label: label, Category: r.Category, Score: 1.0})
		}
	}
	return out
}

// categoryMissing lists JD skills whose category the resume does not cover.
// Entries the missing-skill filters would reject are left out here too.
func categoryMissing(jdSkills []normalizer.NormalizedSkill, covered map[string]struct{}, maxLen int) []CategoryMatch {
	out := []CategoryMatch{}
	seen := make(map[[2]string]struct{})
	for _, j := range jdSkills {
		if j.Category == normalizer.Other || !actionable(j.Original, maxLen) {
			continue
		}
		if _, ok := covered[j.Category]; ok {
			continue
		}
		key := [2]string{strings.ToLower(j.Original), j.Category}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, CategoryMatch{Label: j.Original, Category: j.Category, Score: j.Score})
	}
	return out
}

func actionable(skill string, maxLen int) bool {
	term := strings.ToLower(strings.TrimSpace(skill))
	switch {
	case skills.LooksLikePhrase(term), skills.IsNoise(term), skills.IsUmbrella(term):
		return false
	case maxLen > 0 && utf8.RuneCountInString(term) > maxLen:
		return false
	}
	return true
}

func coveredCategories(resume []normalizer.NormalizedSkill) map[string]struct{} {
	out := make(map[string]struct{})
	for _, r := range resume {
		if r.Category != normalizer.Other && r.Score >= coveredScore {
			out[r.Category] = struct{}{}
		}
	}
	return out
}

func gapAnalysis(missing []string, jdSkills []normalizer.NormalizedSkill, covered map[string]struct{}) GapAnalysis {
	cats := make(map[string]string, len(jdSkills))
	for _, j := range jdSkills {
		cats[j.Original] = j.Category
	}

	gaps := GapAnalysis{
		CriticalGaps:      []string{},
		RecommendedGaps:   []string{},
		CoveredCategories: sortedSet(covered),
	}
	for _, m := range missing {
		if normalizer.IsCritical(cats[m]) {
			gaps.CriticalGaps = append(gaps.CriticalGaps, m)
		} else {
			gaps.RecommendedGaps = append(gaps.RecommendedGaps, m)
		}
	}
	return gaps
}

// matchedSkills merges direct matches with the resume side of category
// overlaps.
func matchedSkills(common []string, overlap []CategoryMatch) []string {
	set := make(map[string]struct{}, len(common)+len(overlap))
	for _, c := range common {
		set[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	for _, o := range overlap {
		resumeSide, _, _ := strings.Cut(o.Label, pairSeparator)
		set[strings.ToLower(strings.TrimSpace(resumeSide))] = struct{}{}
	}
	return sortedSet(set)
}

func intersect(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, s := range b {
		in[s] = struct{}{}
	}
	out := []string{}
	for _, s := range a {
		if _, ok := in[s]; ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func subtract(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, s := range b {
		in[s] = struct{}{}
	}
	out := []string{}
	for _, s := range a {
		if _, ok := in[s]; !ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func capList(items []string, limit int) []string {
	if len(items) > limit {
		return items[:limit]
	}
	return nonNil(items)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func clamp100(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// warnings collects degradation notes and logs each one.
type warnings struct {
	logger *zap.Logger
	items  []string
}

func (w *warnings) add(msg string, err error) {
	if err != nil {
		w.logger.Warn(msg, zap.Error(err))
		msg = msg + ": " + err.Error()
	} else {
		w.logger.Warn(msg)
	}
	w.items = append(w.items, msg)
}

func (w *warnings) list() []string {
	if len(w.items) == 0 {
		return []string{}
	}
	return append([]string(nil), w.items...)
}

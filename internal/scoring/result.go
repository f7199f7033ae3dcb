package scoring

import (
	"encoding/json"
	"fmt"

	"github.com/divya16-bit/ApplyBee/internal/experience"
	"github.com/divya16-bit/ApplyBee/internal/matcher"
)

// Keys of Result.RawSectionScores.
const (
	RawResponsibilities = "responsibilities"
	RawSkills           = "skills"
)

// EmptyResumeSummary is reported when there is no resume text to score.
const EmptyResumeSummary = "Resume text could not be extracted."

// CategoryMatch is a labelled category hit. It encodes as the JSON tuple
// [label, category, score].
type CategoryMatch struct {
	Label    string
	Category string
	Score    float64
}

// MarshalJSON implements json.Marshaler.
func (c CategoryMatch) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Label, c.Category, c.Score})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *CategoryMatch) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode category match: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("category match must have 3 values, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &c.Label); err != nil {
		return fmt.Errorf("decode category match label: %w", err)
	}
	if err := json.Unmarshal(raw[1], &c.Category); err != nil {
		return fmt.Errorf("decode category match category: %w", err)
	}
	if err := json.Unmarshal(raw[2], &c.Score); err != nil {
		return fmt.Errorf("decode category match score: %w", err)
	}
	return nil
}

// GapAnalysis splits missing skills by how much they matter.
type GapAnalysis struct {
	CriticalGaps      []string `json:"critical_gaps"`
	RecommendedGaps   []string `json:"recommended_gaps"`
	CoveredCategories []string `json:"covered_categories"`
}

// Result is the outcome of matching one resume against one job description.
// Every score is in [0,100] and rounded to two decimals.
type Result struct {
	ATSScore            float64 `json:"ats_score"`
	ResponsibilityScore float64 `json:"responsibility_score"`
	SkillsScore         float64 `json:"skills_score"`

	CommonSkills         []string        `json:"common_skills"`
	MissingSkills        []string        `json:"missing_skills"`
	JDSkillsUsed         []string        `json:"jd_skills_used"`
	NormalizedOverlap    []CategoryMatch `json:"normalized_overlap"`
	NormalizedMissing    []CategoryMatch `json:"normalized_missing"`
	DirectSkillScore     float64         `json:"direct_skill_score"`
	ContextualSkillScore float64         `json:"contextual_skill_score"`
	AllMatchedSkills     []string        `json:"all_matched_skills"`

	BonusSkillsJD      []string `json:"bonus_skills_jd"`
	MatchedBonusSkills []string `json:"matched_bonus_skills"`

	YearsExperienceResume float64             `json:"years_experience_resume"`
	YearsExperienceJD     experience.Estimate `json:"years_experience_jd"`
	YOEScore              float64             `json:"yoe_score"`

	SkillGapAnalysis GapAnalysis                     `json:"skill_gap_analysis"`
	Summary          string                          `json:"summary"`
	RawSectionScores map[string]matcher.SectionScore `json:"raw_section_scores"`

	Warnings    []string `json:"warnings"`
	Explanation string   `json:"explanation,omitempty"`
}

func emptyResult() Result {
	return Result{
		CommonSkills:       []string{},
		MissingSkills:      []string{},
		JDSkillsUsed:       []string{},
		NormalizedOverlap:  []CategoryMatch{},
		NormalizedMissing:  []CategoryMatch{},
		AllMatchedSkills:   []string{},
		BonusSkillsJD:      []string{},
		MatchedBonusSkills: []string{},
		SkillGapAnalysis: GapAnalysis{
			CriticalGaps:      []string{},
			RecommendedGaps:   []string{},
			CoveredCategories: []string{},
		},
		RawSectionScores: map[string]matcher.SectionScore{},
		Warnings:         []string{},
	}
}

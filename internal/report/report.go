// Package report defines the per-résumé screening report shared by the engine,
// the aggregator, the CSV exporter and the HTTP layer.
package report

import (
	"encoding/json"

	"resume-screener/internal/taxonomy"
)

// Skills lists skills per category in taxonomy order. It is used both for the
// skills found in a résumé and for the gaps against the taxonomy.
type Skills struct {
	Technical      []string `json:"technical"`
	Soft           []string `json:"soft"`
	Certifications []string `json:"certifications"`
}

// MarshalJSON always renders each category as an array.
func (s Skills) MarshalJSON() ([]byte, error) {
	type plain Skills
	return json.Marshal(plain{
		Technical:      nonNil(s.Technical),
		Soft:           nonNil(s.Soft),
		Certifications: nonNil(s.Certifications),
	})
}

// Category returns the skills of the named category.
func (s Skills) Category(name string) []string {
	switch name {
	case taxonomy.CategoryTechnical:
		return s.Technical
	case taxonomy.CategorySoft:
		return s.Soft
	case taxonomy.CategoryCertifications:
		return s.Certifications
	default:
		return nil
	}
}

// Total returns the number of skills across all categories.
func (s Skills) Total() int {
	return len(s.Technical) + len(s.Soft) + len(s.Certifications)
}

// All returns every skill in category order.
func (s Skills) All() []string {
	out := make([]string, 0, s.Total())
	out = append(out, s.Technical...)
	out = append(out, s.Soft...)
	out = append(out, s.Certifications...)
	return out
}

// Report is the immutable result of screening one résumé. Optional fields are nil
// when the estimator that produces them did not run.
type Report struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Industry        string  `json:"industry"`
	FoundSkills     Skills  `json:"foundSkills"`
	GapAnalysis     *Skills `json:"gapAnalysis,omitempty"`
	Score           float64 `json:"score"`
	RelevanceScore  *int    `json:"relevanceScore,omitempty"`
	ExperienceLevel *int    `json:"experienceLevel,omitempty"`
	JDSkillMatches  *int    `json:"jdSkillMatches,omitempty"`
	SalaryEstimate  *string `json:"salaryEstimate,omitempty"`
	CultureMatch    *string `json:"cultureMatch,omitempty"`
	Summary         string  `json:"summary"`
}

// Relevance returns the relevance score, or 0 when it was not computed.
func (r Report) Relevance() int {
	if r.RelevanceScore == nil {
		return 0
	}
	return *r.RelevanceScore
}

// Experience returns the experience level, or 0 when it was not computed.
func (r Report) Experience() int {
	if r.ExperienceLevel == nil {
		return 0
	}
	return *r.ExperienceLevel
}

// SkillMatches returns the job-description skill match count, or 0 when it was not computed.
func (r Report) SkillMatches() int {
	if r.JDSkillMatches == nil {
		return 0
	}
	return *r.JDSkillMatches
}

var experienceLabels = map[int]string{
	1: "Entry Level",
	2: "Junior",
	3: "Mid Level",
	4: "Senior",
	5: "Lead/Principal",
}

// ExperienceLabel names an experience level. Unknown levels yield "Unknown".
func ExperienceLabel(level int) string {
	if label, ok := experienceLabels[level]; ok {
		return label
	}
	return "Unknown"
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// Package aggregate computes corpus statistics over screening reports and serves
// filtered and ranked views of them. Nothing here mutates its input.
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"resume-screener/internal/report"
)

// HighRelevanceThreshold is the relevance score counted as highly relevant.
const HighRelevanceThreshold = 70

// Stats summarizes a full, unfiltered report set.
type Stats struct {
	Total               int     `json:"total"`
	AvgScore            float64 `json:"avgScore"`
	AvgRelevance        float64 `json:"avgRelevance"`
	HighRelevance       int     `json:"highRelevance"`
	WithTechnicalSkills int     `json:"withTechnicalSkills"`
	WithSoftSkills      int     `json:"withSoftSkills"`
	WithCertifications  int     `json:"withCertifications"`
	WithJDSkillMatches  int     `json:"withJdSkillMatches"`
}

// ComputeStats reduces reports to Stats. An empty set yields zero values.
func ComputeStats(reports []report.Report) Stats {
	var s Stats
	if len(reports) == 0 {
		return s
	}
	var scoreSum, relevanceSum float64
	for _, r := range reports {
		scoreSum += r.Score
		relevanceSum += float64(r.Relevance())
		if r.Relevance() >= HighRelevanceThreshold {
			s.HighRelevance++
		}
		if len(r.FoundSkills.Technical) > 0 {
			s.WithTechnicalSkills++
		}
		if len(r.FoundSkills.Soft) > 0 {
			s.WithSoftSkills++
		}
		if len(r.FoundSkills.Certifications) > 0 {
			s.WithCertifications++
		}
		if r.SkillMatches() > 0 {
			s.WithJDSkillMatches++
		}
	}
	s.Total = len(reports)
	s.AvgScore = round2(scoreSum / float64(len(reports)))
	s.AvgRelevance = round2(relevanceSum / float64(len(reports)))
	return s
}

// Band is a named score or relevance range.
type Band string

const (
	BandAll    Band = ""
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// ParseBand parses a band query value. Empty and "all" select every report.
func ParseBand(raw string) (Band, error) {
	switch b := Band(strings.ToLower(strings.TrimSpace(raw))); b {
	case BandAll, "all":
		return BandAll, nil
	case BandHigh, BandMedium, BandLow:
		return b, nil
	default:
		return "", fmt.Errorf("unknown band %q", raw)
	}
}

// Thresholds splits a value range into bands: high >= High, medium >= Medium, low below.
type Thresholds struct {
	High   float64
	Medium float64
}

var (
	// ScoreBands are the canonical score thresholds.
	ScoreBands = Thresholds{High: 15, Medium: 8}
	// LegacyBands are the score thresholds of the simpler results view, kept so
	// callers can opt into them explicitly.
	LegacyBands = Thresholds{High: 10, Medium: 5}
	// RelevanceBands are the relevance percentage thresholds.
	RelevanceBands = Thresholds{High: 70, Medium: 40}
)

// Classify returns the band containing v.
func (t Thresholds) Classify(v float64) Band {
	switch {
	case v >= t.High:
		return BandHigh
	case v >= t.Medium:
		return BandMedium
	default:
		return BandLow
	}
}

// SkillFilter selects reports by which skill categories they matched.
type SkillFilter string

const (
	SkillAny            SkillFilter = ""
	SkillTechnical      SkillFilter = "technical"
	SkillSoft           SkillFilter = "soft"
	SkillCertifications SkillFilter = "certifications"
	SkillJDSpecific     SkillFilter = "jd_specific"
	SkillNone           SkillFilter = "none"
)

// ParseSkillFilter parses a skill filter query value. Empty and "all" select every report.
func ParseSkillFilter(raw string) (SkillFilter, error) {
	switch f := SkillFilter(strings.ToLower(strings.TrimSpace(raw))); f {
	case SkillAny, "all":
		return SkillAny, nil
	case SkillTechnical, SkillSoft, SkillCertifications, SkillJDSpecific, SkillNone:
		return f, nil
	default:
		return "", fmt.Errorf("unknown skill filter %q", raw)
	}
}

// Criteria is a set of predicates combined with logical AND. Zero values are inactive.
type Criteria struct {
	Score      Band
	Relevance  Band
	Experience int
	Skill      SkillFilter
	// ScoreBands overrides the canonical score thresholds when non-zero.
	ScoreBands Thresholds
}

// ParseCriteria builds Criteria from query-style string values.
func ParseCriteria(score, relevance, experience, skill string) (Criteria, error) {
	var c Criteria
	var err error
	if c.Score, err = ParseBand(score); err != nil {
		return Criteria{}, fmt.Errorf("score: %w", err)
	}
	if c.Relevance, err = ParseBand(relevance); err != nil {
		return Criteria{}, fmt.Errorf("relevance: %w", err)
	}
	if raw := strings.TrimSpace(experience); raw != "" && raw != "all" {
		level, convErr := strconv.Atoi(raw)
		if convErr != nil || level < 1 || level > 5 {
			return Criteria{}, fmt.Errorf("experience: must be 1-5, got %q", experience)
		}
		c.Experience = level
	}
	if c.Skill, err = ParseSkillFilter(skill); err != nil {
		return Criteria{}, fmt.Errorf("skill: %w", err)
	}
	return c, nil
}

// Active reports whether any predicate is set.
func (c Criteria) Active() bool {
	return c.Score != BandAll || c.Relevance != BandAll || c.Experience != 0 || c.Skill != SkillAny
}

// Match reports whether r satisfies every active predicate.
func (c Criteria) Match(r report.Report) bool {
	bands := c.ScoreBands
	if bands == (Thresholds{}) {
		bands = ScoreBands
	}
	if c.Score != BandAll && bands.Classify(r.Score) != c.Score {
		return false
	}
	if c.Relevance != BandAll && RelevanceBands.Classify(float64(r.Relevance())) != c.Relevance {
		return false
	}
	if c.Experience != 0 && r.Experience() != c.Experience {
		return false
	}
	switch c.Skill {
	case SkillTechnical:
		return len(r.FoundSkills.Technical) > 0
	case SkillSoft:
		return len(r.FoundSkills.Soft) > 0
	case SkillCertifications:
		return len(r.FoundSkills.Certifications) > 0
	case SkillJDSpecific:
		return r.SkillMatches() > 0
	case SkillNone:
		return r.FoundSkills.Total() == 0
	}
	return true
}

// Filter returns the reports matching c in input order.
func Filter(reports []report.Report, c Criteria) []report.Report {
	out := make([]report.Report, 0, len(reports))
	for _, r := range reports {
		if c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Ranked is a report with its position in a score-descending ranking.
type Ranked struct {
	report.Report
	Rank  int    `json:"rank"`
	Badge string `json:"badge,omitempty"`
}

var badges = []string{"Top Match", "2nd Best", "3rd Best"}

// Rank sorts reports by descending score, keeping input order for ties,
// and awards badges to the first three.
func Rank(reports []report.Report) []Ranked {
	out := make([]Ranked, len(reports))
	for i, r := range reports {
		out[i] = Ranked{Report: r}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	for i := range out {
		out[i].Rank = i + 1
		if i < len(badges) {
			out[i].Badge = badges[i]
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

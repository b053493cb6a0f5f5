package screening

import (
	"context"
	"fmt"
	"strings"

	"resume-screener/internal/aggregate"
	"resume-screener/internal/report"
)

// ResumeInput is the extracted text of one résumé plus the contact details the
// extraction step found.
type ResumeInput struct {
	DisplayName string `json:"name" validate:"required"`
	RawText     string `json:"text"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// Options toggles the optional estimators. DeepAnalysis is accepted and recorded
// but has no effect on results.
type Options struct {
	DeepAnalysis   bool `json:"deepAnalysis"`
	SkillGaps      bool `json:"skillGaps"`
	SalaryInsights bool `json:"salaryInsights"`
	CultureFit     bool `json:"cultureFit"`
}

// JobContext describes the job the résumés are screened against. An empty
// Industry is detected from the description.
type JobContext struct {
	Description string  `json:"jobDescription"`
	Industry    string  `json:"industry,omitempty"`
	Options     Options `json:"options"`
}

// MatchMode selects how skill names are located in résumé text.
type MatchMode string

const (
	// MatchSubstring finds a skill anywhere in the text, including inside longer words.
	MatchSubstring MatchMode = "substring"
	// MatchWord requires the skill to be bounded by non-alphanumeric runes.
	MatchWord MatchMode = "word"
)

// ParseMatchMode parses a configured match mode. Empty selects MatchSubstring.
func ParseMatchMode(raw string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", MatchSubstring:
		return MatchSubstring, nil
	case MatchWord:
		return MatchWord, nil
	default:
		return "", fmt.Errorf("unknown match mode %q", raw)
	}
}

// Config carries engine tuning that is not part of a single request.
type Config struct {
	MatchMode   MatchMode
	Salary      SalaryModel
	Concurrency int
}

// DefaultConfig returns substring matching, the default salary model and four workers.
func DefaultConfig() Config {
	return Config{
		MatchMode:   MatchSubstring,
		Salary:      DefaultSalaryModel(),
		Concurrency: 4,
	}
}

// Result is the outcome of one analysis run. Reports keep the input order.
type Result struct {
	Industry string          `json:"industry"`
	Reports  []report.Report `json:"results"`
	Stats    aggregate.Stats `json:"stats"`
}

// Analyzer screens a batch of résumés against a job. It is implemented by the
// embedded Engine and by the remote client.
type Analyzer interface {
	Analyze(ctx context.Context, resumes []ResumeInput, job JobContext) (Result, error)
}

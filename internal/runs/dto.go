package runs

import (
	"time"

	"resume-screener/internal/aggregate"
	"resume-screener/internal/report"
	"resume-screener/internal/screening"
)

// RunResponse is the outward-facing representation of a run.
type RunResponse struct {
	RunID          string            `json:"runId"`
	Industry       string            `json:"industry"`
	JobDescription string            `json:"jobDescription"`
	Options        screening.Options `json:"options"`
	Results        []report.Report   `json:"results"`
	Stats          aggregate.Stats   `json:"stats"`
	Files          []File            `json:"files"`
	DurationMs     float64           `json:"durationMs"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// RunSummary is a run in list responses.
type RunSummary struct {
	RunID          string          `json:"runId"`
	Industry       string          `json:"industry"`
	JobDescription string          `json:"jobDescription"`
	Stats          aggregate.Stats `json:"stats"`
	Analyzed       int             `json:"analyzed"`
	Skipped        int             `json:"skipped"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ResultsResponse is a filtered view over a run's reports. Stats always cover
// the whole run; FilteredStats summarize only the reports in Results.
type ResultsResponse struct {
	RunID         string             `json:"runId"`
	Industry      string             `json:"industry"`
	Total         int                `json:"total"`
	Count         int                `json:"count"`
	Stats         aggregate.Stats    `json:"stats"`
	FilteredStats aggregate.Stats    `json:"filteredStats"`
	Results       []aggregate.Ranked `json:"results"`
}

// TextRequest is the JSON body of POST /analyze/text.
type TextRequest struct {
	JobDescription string                  `json:"jobDescription"`
	Industry       string                  `json:"industry"`
	Options        screening.Options       `json:"options"`
	Resumes        []screening.ResumeInput `json:"resumes"`
}

// IndustryResponse describes one taxonomy industry.
type IndustryResponse struct {
	Name           string `json:"name"`
	Label          string `json:"label"`
	Technical      int    `json:"technical"`
	Soft           int    `json:"soft"`
	Certifications int    `json:"certifications"`
	Default        bool   `json:"default,omitempty"`
}

const previewLength = 120

func toResponse(run Run) RunResponse {
	files := run.Files
	if files == nil {
		files = []File{}
	}
	return RunResponse{
		RunID:          run.ID,
		Industry:       run.Industry,
		JobDescription: run.JobDescription,
		Options:        run.Options,
		Results:        nonNilReports(run.Results),
		Stats:          run.Stats,
		Files:          files,
		DurationMs:     run.DurationMs,
		CreatedAt:      run.CreatedAt,
	}
}

func toSummary(run Run) RunSummary {
	out := RunSummary{
		RunID:          run.ID,
		Industry:       run.Industry,
		JobDescription: preview(run.JobDescription),
		Stats:          run.Stats,
		CreatedAt:      run.CreatedAt,
	}
	for _, f := range run.Files {
		if f.Status == FileAnalyzed {
			out.Analyzed++
		} else {
			out.Skipped++
		}
	}
	return out
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLength {
		return s
	}
	return string(r[:previewLength]) + "..."
}

func rankedReports(ranked []aggregate.Ranked) []report.Report {
	out := make([]report.Report, len(ranked))
	for i, r := range ranked {
		out[i] = r.Report
	}
	return out
}

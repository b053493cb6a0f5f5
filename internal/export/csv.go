// Package export serializes screening reports to CSV.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"resume-screener/internal/report"
)

// Header is the fixed CSV column order.
var Header = []string{
	"Name",
	"Email",
	"Phone",
	"Overall Score",
	"JD Relevance %",
	"Experience Level",
	"JD Skill Matches",
	"Technical Skills",
	"Soft Skills",
	"Certifications",
	"Estimated Salary",
	"Culture Fit",
}

const (
	skillSeparator = "; "
	notAvailable   = "N/A"
)

// ContentType is the MIME type of the CSV output.
const ContentType = "text/csv; charset=utf-8"

// ErrMalformed is returned by Read for rows that do not follow Header.
var ErrMalformed = errors.New("malformed csv")

// Write writes reports as CSV with a header row. Fields are quoted as needed.
func Write(w io.Writer, reports []report.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, r := range reports {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(r report.Report) []string {
	experience := notAvailable
	if r.ExperienceLevel != nil {
		experience = report.ExperienceLabel(*r.ExperienceLevel)
	}
	return []string{
		r.Name,
		r.Email,
		r.Phone,
		strconv.FormatFloat(r.Score, 'f', -1, 64),
		strconv.Itoa(r.Relevance()),
		experience,
		strconv.Itoa(r.SkillMatches()),
		strings.Join(r.FoundSkills.Technical, skillSeparator),
		strings.Join(r.FoundSkills.Soft, skillSeparator),
		strings.Join(r.FoundSkills.Certifications, skillSeparator),
		orNA(r.SalaryEstimate),
		orNA(r.CultureMatch),
	}
}

// Read parses CSV produced by Write back into reports. Fields that Write does not
// carry, such as gap analysis and the summary, are left empty.
func Read(r io.Reader) ([]report.Report, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	out := make([]report.Report, 0, len(records)-1)
	for i, rec := range records[1:] {
		parsed, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformed, i+1, err)
		}
		out = append(out, parsed)
	}
	return out, nil
}

func parseRow(rec []string) (report.Report, error) {
	score, err := strconv.ParseFloat(rec[3], 64)
	if err != nil {
		return report.Report{}, fmt.Errorf("score: %w", err)
	}
	relevance, err := strconv.Atoi(rec[4])
	if err != nil {
		return report.Report{}, fmt.Errorf("relevance: %w", err)
	}
	matches, err := strconv.Atoi(rec[6])
	if err != nil {
		return report.Report{}, fmt.Errorf("jd skill matches: %w", err)
	}
	out := report.Report{
		Name:           rec[0],
		Email:          rec[1],
		Phone:          rec[2],
		Score:          score,
		RelevanceScore: report.Int(relevance),
		JDSkillMatches: report.Int(matches),
		FoundSkills: report.Skills{
			Technical:      splitSkills(rec[7]),
			Soft:           splitSkills(rec[8]),
			Certifications: splitSkills(rec[9]),
		},
	}
	for level := 1; level <= 5; level++ {
		if report.ExperienceLabel(level) == rec[5] {
			out.ExperienceLevel = report.Int(level)
			break
		}
	}
	if rec[10] != notAvailable {
		out.SalaryEstimate = report.String(rec[10])
	}
	if rec[11] != notAvailable {
		out.CultureMatch = report.String(rec[11])
	}
	return out, nil
}

func splitSkills(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, skillSeparator)
}

func orNA(v *string) string {
	if v == nil {
		return notAvailable
	}
	return *v
}

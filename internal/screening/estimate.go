package screening

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"resume-screener/internal/report"
)

var (
	yearsPattern = regexp.MustCompile(`(?i)(?:^|[^\w.])(\d{1,2}(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)\b`)

	titleLevels = []struct {
		pattern *regexp.Regexp
		level   int
	}{
		{regexp.MustCompile(`(?i)\b(?:lead|principal)\b`), 5},
		{regexp.MustCompile(`(?i)\bsenior\b`), 4},
		{regexp.MustCompile(`(?i)\b(?:mid|intermediate)\b`), 3},
		{regexp.MustCompile(`(?i)\bjunior\b`), 2},
	}
)

// EstimateExperience infers a seniority level from 1 to 5. The first explicit
// year count wins; title keywords are consulted only when no year count exists.
// Fractional counts level on completed years, so "1.5 years" is level 1.
func EstimateExperience(text string) int {
	if m := yearsPattern.FindStringSubmatch(text); m != nil {
		parsed, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			years := int(math.Floor(parsed))
			switch {
			case years <= 1:
				return 1
			case years >= 5:
				return 5
			default:
				return years
			}
		}
	}
	for _, tl := range titleLevels {
		if tl.pattern.MatchString(text) {
			return tl.level
		}
	}
	return 1
}

// SalaryModel is an illustrative linear salary heuristic. Soft skills never count.
type SalaryModel struct {
	Currency            string
	Base                int
	TechnicalWeight     int
	CertificationWeight int
}

// DefaultSalaryModel returns the peso-denominated defaults.
func DefaultSalaryModel() SalaryModel {
	return SalaryModel{
		Currency:            "₱",
		Base:                20000,
		TechnicalWeight:     1500,
		CertificationWeight: 2000,
	}
}

var numberPrinter = message.NewPrinter(language.English)

// Estimate formats the salary estimate for the found skills, e.g. "₱24,500".
func (m SalaryModel) Estimate(found report.Skills) string {
	amount := m.Base +
		len(found.Technical)*m.TechnicalWeight +
		len(found.Certifications)*m.CertificationWeight
	return m.Currency + numberPrinter.Sprintf("%d", amount)
}

var cultureTraits = []string{"team", "collaborate", "value", "mission", "diverse", "inclusive", "growth"}

// EstimateCultureFit returns the share of culture traits mentioned in text, e.g. "43% Match".
func EstimateCultureFit(text string) string {
	lower := strings.ToLower(text)
	present := 0
	for _, trait := range cultureTraits {
		if strings.Contains(lower, trait) {
			present++
		}
	}
	pct := 100 * float64(present) / float64(len(cultureTraits))
	return fmt.Sprintf("%.0f%% Match", pct)
}

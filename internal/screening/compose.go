package screening

import (
	"strconv"
	"strings"

	"resume-screener/internal/report"
	"resume-screener/internal/taxonomy"
)

const (
	notFound       = "Not found"
	noMatchSummary = "This resume doesn't match the job description. Consider adding relevant technical and soft skills."

	// strongThreshold is the number of matched skills above which alignment is strong.
	strongThreshold = 5
)

// Score weighs found skills: 2 per technical skill, 1 per soft skill and 1.5 per certification.
func Score(found report.Skills) float64 {
	return 2*float64(len(found.Technical)) +
		float64(len(found.Soft)) +
		1.5*float64(len(found.Certifications))
}

// Compose screens one résumé against the job. job.Industry must already be
// resolved and set must be that industry's skill set.
func Compose(resume ResumeInput, job JobContext, set taxonomy.SkillSet, cfg Config) report.Report {
	found := MatchSkills(resume.RawText, set, cfg.MatchMode)
	rel := ScoreRelevance(resume.RawText, job.Description, found)

	out := report.Report{
		Name:            resume.DisplayName,
		Email:           orNotFound(resume.Email),
		Phone:           orNotFound(resume.Phone),
		Industry:        job.Industry,
		FoundSkills:     found,
		Score:           Score(found),
		RelevanceScore:  report.Int(rel.Score),
		ExperienceLevel: report.Int(EstimateExperience(resume.RawText)),
		JDSkillMatches:  report.Int(rel.SkillMatches),
	}
	if job.Options.SkillGaps {
		gaps := SkillGaps(found, set)
		out.GapAnalysis = &gaps
	}
	if job.Options.SalaryInsights {
		out.SalaryEstimate = report.String(cfg.Salary.Estimate(found))
	}
	if job.Options.CultureFit {
		out.CultureMatch = report.String(EstimateCultureFit(resume.RawText))
	}
	out.Summary = Summarize(out)
	return out
}

// Summarize renders the natural-language summary of a report. A report without
// any matched skill gets the fixed no-match sentence and nothing else.
func Summarize(r report.Report) string {
	total := r.FoundSkills.Total()
	if total == 0 {
		return noMatchSummary
	}

	band := "moderate"
	if total > strongThreshold {
		band = "strong"
	}

	var b strings.Builder
	b.WriteString("This resume shows a score of ")
	b.WriteString(strconv.FormatFloat(r.Score, 'f', -1, 64))
	b.WriteString(", indicating ")
	b.WriteString(band)
	b.WriteString(" alignment with the job description. ")

	if r.GapAnalysis != nil {
		var cats []string
		for _, category := range taxonomy.Categories {
			if len(r.GapAnalysis.Category(category)) > 0 {
				cats = append(cats, category)
			}
		}
		if len(cats) > 0 {
			b.WriteString("Some skill gaps exist, especially in ")
			b.WriteString(strings.Join(cats, ", "))
			b.WriteString(". ")
		}
	}
	if r.SalaryEstimate != nil {
		b.WriteString("Estimated salary range is around ")
		b.WriteString(*r.SalaryEstimate)
		b.WriteString(". ")
	}
	if r.CultureMatch != nil {
		b.WriteString("Culture fit score is ")
		b.WriteString(*r.CultureMatch)
		b.WriteString(". ")
	}
	return b.String()
}

func orNotFound(v string) string {
	if strings.TrimSpace(v) == "" {
		return notFound
	}
	return v
}

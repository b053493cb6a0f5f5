package screening

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-screener/internal/report"
	"resume-screener/internal/taxonomy"
)

// DetectIndustry returns the industry whose keywords occur most often in text.
// Ties go to the industry listed first; no hits at all yields the default industry.
func DetectIndustry(text string, tax *taxonomy.Taxonomy) string {
	lower := strings.ToLower(text)
	best, bestCount := tax.DefaultIndustry(), 0
	for _, ind := range tax.Industries() {
		if n := ind.CountMatches(lower); n > bestCount {
			best, bestCount = ind.Name, n
		}
	}
	return best
}

// MatchSkills reports which skills of set occur in text, per category and in
// taxonomy order. Matching ignores case.
func MatchSkills(text string, set taxonomy.SkillSet, mode MatchMode) report.Skills {
	lower := strings.ToLower(text)
	find := func(skills []string) []string {
		out := make([]string, 0, len(skills))
		for _, skill := range skills {
			if containsSkill(lower, strings.ToLower(skill), mode) {
				out = append(out, skill)
			}
		}
		return out
	}
	return report.Skills{
		Technical:      find(set.Technical),
		Soft:           find(set.Soft),
		Certifications: find(set.Certifications),
	}
}

// SkillGaps returns the skills of set that are missing from found, per category
// and in taxonomy order.
func SkillGaps(found report.Skills, set taxonomy.SkillSet) report.Skills {
	missing := func(expected, have []string) []string {
		seen := make(map[string]struct{}, len(have))
		for _, s := range have {
			seen[s] = struct{}{}
		}
		out := make([]string, 0, len(expected))
		for _, s := range expected {
			if _, ok := seen[s]; !ok {
				out = append(out, s)
			}
		}
		return out
	}
	return report.Skills{
		Technical:      missing(set.Technical, found.Technical),
		Soft:           missing(set.Soft, found.Soft),
		Certifications: missing(set.Certifications, found.Certifications),
	}
}

func containsSkill(text, skill string, mode MatchMode) bool {
	if skill == "" {
		return false
	}
	if mode != MatchWord {
		return strings.Contains(text, skill)
	}
	for offset := 0; offset <= len(text); {
		idx := strings.Index(text[offset:], skill)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(skill)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

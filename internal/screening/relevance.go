package screening

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-screener/internal/report"
)

// Relevance is the lexical overlap between a résumé and a job description.
type Relevance struct {
	// Score is the percentage of job-description keywords present in the résumé.
	Score int
	// SkillMatches counts found skills that are also named in the job description.
	SkillMatches int
}

var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "any": true,
	"must": true, "should": true, "would": true, "able": true, "such": true,
	"other": true, "etc": true, "per": true, "within": true, "including": true,
}

// ScoreRelevance compares résumé text with a job description. An empty set of
// job keywords scores 0.
func ScoreRelevance(resumeText, jobDescription string, found report.Skills) Relevance {
	jdTokens := keywords(jobDescription)
	out := Relevance{}
	if len(jdTokens) > 0 {
		resumeTokens := tokenSet(resumeText)
		hits := 0
		for _, tok := range jdTokens {
			if resumeTokens[tok] {
				hits++
			}
		}
		out.Score = int(math.Round(100 * float64(hits) / float64(len(jdTokens))))
	}

	jd := strings.ToLower(jobDescription)
	for _, skill := range found.All() {
		if strings.Contains(jd, strings.ToLower(skill)) {
			out.SkillMatches++
		}
	}
	return out
}

// keywords returns the distinct job-description tokens in first-seen order,
// without stop words and tokens shorter than three runes.
func keywords(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range tokenize(text) {
		if seen[tok] || stopWords[tok] || utf8.RuneCountInString(tok) < 3 {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

func tokenSet(text string) map[string]bool {
	toks := tokenize(text)
	set := make(map[string]bool, len(toks))
	for _, tok := range toks {
		set[tok] = true
	}
	return set
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

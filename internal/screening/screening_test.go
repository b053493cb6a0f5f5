package screening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-screener/internal/report"
	"resume-screener/internal/taxonomy"
)

const testTaxonomy = `{
  "defaultIndustry": "technology",
  "industries": [
    {"name": "technology", "skills": {"technical": ["Python", "SQL", "R"], "soft": ["communication"], "certifications": ["CKA"]}, "keywords": ["software", "developer"]},
    {"name": "healthcare", "skills": {"technical": ["EMR"], "soft": ["empathy"], "certifications": ["BLS"]}, "keywords": ["patient", "clinical"]},
    {"name": "finance", "skills": {"technical": ["Excel"], "soft": ["integrity"], "certifications": ["CPA"]}, "keywords": ["audit", "clinical"]}
  ]
}`

func loadTestTaxonomy(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()
	tax, err := taxonomy.Load(strings.NewReader(testTaxonomy))
	require.NoError(t, err)
	return tax
}

func TestDetectIndustry(t *testing.T) {
	tax := loadTestTaxonomy(t)
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "empty falls back to default", text: "", want: "technology"},
		{name: "no hits falls back to default", text: "we bake bread", want: "technology"},
		{name: "highest count wins", text: "Patient care in a clinical setting for every patient", want: "healthcare"},
		{name: "tie goes to first industry", text: "a clinical trial", want: "healthcare"},
		{name: "case insensitive", text: "SOFTWARE DEVELOPER", want: "technology"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectIndustry(tt.text, tax))
			assert.Equal(t, DetectIndustry(tt.text, tax), DetectIndustry(tt.text, tax))
		})
	}
}

func TestMatchAndGapsPartitionSkillSet(t *testing.T) {
	set := taxonomy.SkillSet{
		Technical:      []string{"Python", "SQL", "Docker", "Go"},
		Soft:           []string{"communication", "leadership"},
		Certifications: []string{"CKA", "PMP"},
	}
	texts := []string{
		"",
		"Python and sql with good Communication",
		"docker, go, CKA and PMP, leadership",
		"python sql docker go communication leadership cka pmp",
	}
	for _, text := range texts {
		for _, mode := range []MatchMode{MatchSubstring, MatchWord} {
			found := MatchSkills(text, set, mode)
			gaps := SkillGaps(found, set)
			for _, category := range taxonomy.Categories {
				expected := set.Category(category)
				union := append(append([]string{}, found.Category(category)...), gaps.Category(category)...)
				assert.ElementsMatch(t, expected, union, "text=%q mode=%s category=%s", text, mode, category)
				for _, f := range found.Category(category) {
					assert.NotContains(t, gaps.Category(category), f)
				}
			}
		}
	}
}

func TestMatchSkillsPreservesTaxonomyOrder(t *testing.T) {
	set := taxonomy.SkillSet{Technical: []string{"Python", "SQL", "Docker"}}
	found := MatchSkills("docker then sql then python", set, MatchSubstring)
	assert.Equal(t, []string{"Python", "SQL", "Docker"}, found.Technical)
}

func TestMatchModeWordAvoidsSubstringHits(t *testing.T) {
	set := taxonomy.SkillSet{Technical: []string{"R", "C++", "Go"}}

	sub := MatchSkills("Director of marketing", set, MatchSubstring)
	assert.Equal(t, []string{"R"}, sub.Technical)

	word := MatchSkills("Director of marketing", set, MatchWord)
	assert.Empty(t, word.Technical)

	word = MatchSkills("Statistics in R, systems in C++ and Go.", set, MatchWord)
	assert.Equal(t, []string{"R", "C++", "Go"}, word.Technical)
}

func TestParseMatchMode(t *testing.T) {
	m, err := ParseMatchMode("")
	require.NoError(t, err)
	assert.Equal(t, MatchSubstring, m)
	m, err = ParseMatchMode(" WORD ")
	require.NoError(t, err)
	assert.Equal(t, MatchWord, m)
	_, err = ParseMatchMode("fuzzy")
	assert.Error(t, err)
}

func TestScoreIsMonotonic(t *testing.T) {
	base := report.Skills{Technical: []string{"a"}, Soft: []string{"b"}, Certifications: []string{"c"}}
	s0 := Score(base)
	assert.Equal(t, 4.5, s0)

	more := base
	more.Technical = append([]string{"x"}, base.Technical...)
	assert.GreaterOrEqual(t, Score(more), s0)
	more = base
	more.Soft = append([]string{"x"}, base.Soft...)
	assert.GreaterOrEqual(t, Score(more), s0)
	more = base
	more.Certifications = append([]string{"x"}, base.Certifications...)
	assert.GreaterOrEqual(t, Score(more), s0)
}

func TestScoreRelevanceBounds(t *testing.T) {
	cases := []struct{ resume, jd string }{
		{"", ""},
		{"anything", ""},
		{"", "Senior Python developer"},
		{"the and for", "the and for with"},
		{"python developer kubernetes", "Python developer with Kubernetes"},
		{"日本語 テキスト", "日本語 テキスト と 英語"},
	}
	for _, c := range cases {
		rel := ScoreRelevance(c.resume, c.jd, report.Skills{})
		assert.GreaterOrEqual(t, rel.Score, 0)
		assert.LessOrEqual(t, rel.Score, 100)
	}
	assert.Equal(t, 0, ScoreRelevance("anything", "", report.Skills{}).Score)
	assert.Equal(t, 0, ScoreRelevance("the and for", "the and for", report.Skills{}).Score)
	assert.Equal(t, 100, ScoreRelevance("python developer kubernetes", "Python developer with Kubernetes", report.Skills{}).Score)
}

func TestScoreRelevanceRoundsAndCountsJDSkills(t *testing.T) {
	rel := ScoreRelevance(
		"python expert",
		"Python, Golang, Rust wanted",
		report.Skills{Technical: []string{"Python", "Docker"}, Soft: []string{"communication"}},
	)
	// jd keywords: python, golang, rust, wanted -> 1 of 4
	assert.Equal(t, 25, rel.Score)
	assert.Equal(t, 1, rel.SkillMatches)

	rel = ScoreRelevance("python golang", "python golang rust", report.Skills{})
	assert.Equal(t, 67, rel.Score)
}

func TestEstimateExperience(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"1 year of experience", 1},
		{"0 years", 1},
		{"2 years in retail", 2},
		{"3 yrs", 3},
		{"4+ years", 4},
		{"12 years of experience", 5},
		{"0.5 years internship", 1},
		{"1.5 years of experience", 1},
		{"Senior engineer, 1.5 yrs", 1},
		{"2.5+ yrs", 2},
		{"4.9 years", 4},
		{"(3 years)", 3},
		{"release v10 years ago", 1},
		{"Senior engineer with 2 years as lead", 2},
		{"Lead developer, formerly senior", 5},
		{"Principal architect", 5},
		{"Senior analyst", 4},
		{"Intermediate designer", 3},
		{"mid level engineer", 3},
		{"Junior developer", 2},
		{"misleading mislead", 1},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateExperience(tt.text))
		})
	}
}

func TestSalaryEstimate(t *testing.T) {
	m := DefaultSalaryModel()
	assert.Equal(t, "₱20,000", m.Estimate(report.Skills{}))
	found := report.Skills{
		Technical:      []string{"a", "b", "c"},
		Soft:           []string{"x", "y", "z"},
		Certifications: []string{"k"},
	}
	assert.Equal(t, "₱26,500", m.Estimate(found))

	usd := SalaryModel{Currency: "$", Base: 1000000, TechnicalWeight: 1, CertificationWeight: 1}
	assert.Equal(t, "$1,000,001", usd.Estimate(report.Skills{Technical: []string{"a"}}))
}

func TestEstimateCultureFit(t *testing.T) {
	assert.Equal(t, "0% Match", EstimateCultureFit(""))
	assert.Equal(t, "43% Match", EstimateCultureFit("Team player who values growth"))
	assert.Equal(t, "100% Match", EstimateCultureFit("team collaborate value mission diverse inclusive growth"))
}

func TestComposeTechnologyScenario(t *testing.T) {
	set := taxonomy.SkillSet{Technical: []string{"Python", "SQL"}, Soft: []string{"communication"}}
	job := JobContext{Description: "Python developer with SQL", Industry: "technology"}
	resume := ResumeInput{
		DisplayName: "alice.pdf",
		RawText:     "Experienced in Python and SQL, strong communication skills, 3 years experience.",
	}

	r := Compose(resume, job, set, DefaultConfig())
	assert.Equal(t, []string{"Python", "SQL"}, r.FoundSkills.Technical)
	assert.Equal(t, []string{"communication"}, r.FoundSkills.Soft)
	assert.Empty(t, r.FoundSkills.Certifications)
	assert.Equal(t, 5.0, r.Score)
	require.NotNil(t, r.ExperienceLevel)
	assert.Equal(t, 3, *r.ExperienceLevel)
	assert.Equal(t, "Not found", r.Email)
	assert.Equal(t, "Not found", r.Phone)
	assert.Equal(t, "technology", r.Industry)
	assert.Equal(t, "This resume shows a score of 5, indicating moderate alignment with the job description. ", r.Summary)
}

func TestComposeNoMatchShortCircuitsSummary(t *testing.T) {
	set := taxonomy.SkillSet{Technical: []string{"Python"}, Soft: []string{"communication"}, Certifications: []string{"CKA"}}
	job := JobContext{
		Description: "Python developer",
		Industry:    "technology",
		Options:     Options{SkillGaps: true, SalaryInsights: true, CultureFit: true},
	}
	r := Compose(ResumeInput{DisplayName: "bob.txt", RawText: "I enjoy team sports"}, job, set, DefaultConfig())

	assert.Zero(t, r.FoundSkills.Total())
	assert.Equal(t, 0.0, r.Score)
	assert.Equal(t, "This resume doesn't match the job description. Consider adding relevant technical and soft skills.", r.Summary)
	require.NotNil(t, r.GapAnalysis)
	require.NotNil(t, r.SalaryEstimate)
	require.NotNil(t, r.CultureMatch)
}

func TestComposeOptionsControlOptionalFields(t *testing.T) {
	set := taxonomy.SkillSet{
		Technical:      []string{"Python", "SQL", "Docker", "Kubernetes"},
		Soft:           []string{"communication", "leadership"},
		Certifications: []string{"CKA"},
	}
	resume := ResumeInput{
		DisplayName: "carol.docx",
		RawText:     "python sql docker kubernetes communication leadership team growth",
		Email:       "carol@example.com",
	}

	off := Compose(resume, JobContext{Description: "python", Industry: "technology"}, set, DefaultConfig())
	assert.Nil(t, off.GapAnalysis)
	assert.Nil(t, off.SalaryEstimate)
	assert.Nil(t, off.CultureMatch)

	raw, err := json.Marshal(off)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "gapAnalysis")
	assert.NotContains(t, fields, "salaryEstimate")
	assert.NotContains(t, fields, "cultureMatch")
	assert.Contains(t, fields, "relevanceScore")
	assert.Equal(t, "carol@example.com", fields["email"])

	on := Compose(resume, JobContext{
		Description: "python",
		Industry:    "technology",
		Options:     Options{SkillGaps: true, SalaryInsights: true, CultureFit: true, DeepAnalysis: true},
	}, set, DefaultConfig())
	require.NotNil(t, on.GapAnalysis)
	assert.Equal(t, []string{"CKA"}, on.GapAnalysis.Certifications)
	assert.Equal(t, "₱26,000", *on.SalaryEstimate)
	assert.Equal(t, "29% Match", *on.CultureMatch)
	assert.Equal(t, 10.0, on.Score)
	assert.Equal(t,
		"This resume shows a score of 10, indicating strong alignment with the job description. "+
			"Some skill gaps exist, especially in certifications. "+
			"Estimated salary range is around ₱26,000. "+
			"Culture fit score is 29% Match. ",
		on.Summary)
}

func TestSummaryKeepsFractionalScore(t *testing.T) {
	r := report.Report{
		Score:       3.5,
		FoundSkills: report.Skills{Technical: []string{"a"}, Certifications: []string{"b"}},
	}
	assert.Equal(t, "This resume shows a score of 3.5, indicating moderate alignment with the job description. ", Summarize(r))
}

func TestSkillsMarshalAsArrays(t *testing.T) {
	raw, err := json.Marshal(report.Skills{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"technical":[],"soft":[],"certifications":[]}`, string(raw))
}

func TestAnalyzeResolvesIndustryAndKeepsOrder(t *testing.T) {
	tax := loadTestTaxonomy(t)
	resumes := []ResumeInput{
		{DisplayName: "one", RawText: "EMR and BLS, empathy"},
		{DisplayName: "two", RawText: "nothing relevant"},
	}

	res := Analyze(resumes, JobContext{Description: "clinical role caring for each patient"}, tax, DefaultConfig())
	assert.Equal(t, "healthcare", res.Industry)
	require.Len(t, res.Reports, 2)
	assert.Equal(t, "one", res.Reports[0].Name)
	assert.Equal(t, 4.5, res.Reports[0].Score)
	assert.Equal(t, 2, res.Stats.Total)
	assert.Equal(t, 2.25, res.Stats.AvgScore)

	res = Analyze(resumes, JobContext{Description: "anything", Industry: "astronomy"}, tax, DefaultConfig())
	assert.Equal(t, "technology", res.Industry)
	assert.Equal(t, "technology", res.Reports[0].Industry)
}

func TestEngineMatchesSequentialAnalyze(t *testing.T) {
	tax := loadTestTaxonomy(t)
	var resumes []ResumeInput
	for i := 0; i < 25; i++ {
		resumes = append(resumes, ResumeInput{
			DisplayName: fmt.Sprintf("r%02d", i),
			RawText:     strings.Repeat("python sql ", i%4) + fmt.Sprintf("%d years", i%7),
		})
	}
	job := JobContext{Description: "Python and SQL software developer", Options: Options{SkillGaps: true}}
	cfg := DefaultConfig()
	cfg.Concurrency = 3

	want := Analyze(resumes, job, tax, cfg)
	got, err := NewEngine(tax, cfg).Analyze(context.Background(), resumes, job)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEngineValidatesBeforeAnalysis(t *testing.T) {
	eng := NewEngine(loadTestTaxonomy(t), DefaultConfig())
	ctx := context.Background()

	_, err := eng.Analyze(ctx, []ResumeInput{{DisplayName: "a"}}, JobContext{Description: "  too short "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "job description must be at least 10 characters")

	_, err = eng.Analyze(ctx, nil, JobContext{Description: "a long enough description"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one resume is required")

	_, err = eng.Analyze(ctx, []ResumeInput{{RawText: "x"}}, JobContext{Description: "a long enough description"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every resume needs a name")
}

func TestEngineHonorsCancelledContext(t *testing.T) {
	eng := NewEngine(loadTestTaxonomy(t), DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.Analyze(ctx, []ResumeInput{{DisplayName: "a"}}, JobContext{Description: "a long enough description"})
	assert.ErrorIs(t, err, context.Canceled)
}

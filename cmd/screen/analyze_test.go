package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testJob    = "Looking for a backend engineer skilled in Python and Docker"
	testStrong = "Jane Doe jane@example.com. Senior engineer with 6 years of experience in Python, SQL, Docker, Kubernetes, AWS and Golang. Strong communication and leadership. CKA certified."
	testWeak   = "Retail cashier with a friendly attitude."
)

func resetAnalyzeFlags() {
	analyzeJob, analyzeJobFile, analyzeIndustry = "", "", ""
	analyzeDeepAnalysis, analyzeSkillGaps, analyzeSalaryInsights, analyzeCultureFit = false, false, false, false
	analyzeFormat, analyzeOutput = formatTable, ""
	analyzeScore, analyzeRelevance, analyzeExperience, analyzeSkill = "", "", "", ""
	analyzeRank, analyzeLegacyBands = false, false
	cfgFile = ""
}

func writeResumes(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"jane.txt":  testStrong,
		"weak.txt":  testWeak,
		"notes.md":  "# not a resume",
		"empty.txt": "",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestAnalyzeDirectoryAsRankedJSON(t *testing.T) {
	resetAnalyzeFlags()
	dir := writeResumes(t)

	out := execute(t, "analyze", "--job", testJob, "--format", "json", "--rank", "--salary-insights", dir)

	var got jsonOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "technology", got.Industry)
	require.Len(t, got.Files, 3)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "jane.txt", got.Results[0].Name)
	assert.Equal(t, 1, got.Results[0].Rank)
	assert.Equal(t, "Top Match", got.Results[0].Badge)
	require.NotNil(t, got.Results[0].SalaryEstimate)
	assert.Equal(t, "skipped", string(got.Files[0].Status))
	assert.Equal(t, "empty.txt", got.Files[0].Name)
}

func TestAnalyzeFilteredCSV(t *testing.T) {
	resetAnalyzeFlags()
	dir := writeResumes(t)

	out := execute(t, "analyze", "--job", testJob, "--format", "csv", "--score", "high",
		filepath.Join(dir, "jane.txt"), filepath.Join(dir, "weak.txt"))

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "jane.txt,jane@example.com,"))
}

func TestAnalyzeTableToFile(t *testing.T) {
	resetAnalyzeFlags()
	dir := writeResumes(t)
	target := filepath.Join(t.TempDir(), "report.txt")

	out := execute(t, "analyze", "--job", testJob, "--out", target, filepath.Join(dir, "jane.txt"))
	assert.Empty(t, out)

	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(written), "Industry: technology")
	assert.Contains(t, string(written), "jane.txt")
}

func TestIndustriesCommand(t *testing.T) {
	out := execute(t, "industries")
	assert.Contains(t, out, "technology")
	assert.Contains(t, out, "healthcare")

	out = execute(t, "industries", "technology")
	assert.Contains(t, out, "technical: ")
	assert.Contains(t, out, "Python")
}

func TestJobDescriptionSources(t *testing.T) {
	_, err := jobDescription("", "")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(path, []byte(testJob), 0o600))
	got, err := jobDescription("", path)
	require.NoError(t, err)
	assert.Equal(t, testJob, got)

	_, err = jobDescription(testJob, path)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]string{"": formatTable, "JSON": formatJSON, " csv ": formatCSV} {
		got, err := parseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := parseFormat("xml")
	assert.Error(t, err)
}

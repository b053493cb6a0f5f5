package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-screener/internal/screening"
)

const jobText = "Looking for a backend engineer skilled in Python and Docker"

func TestAnalyzeMatchesEmbeddedEngine(t *testing.T) {
	engine := screening.NewEngine(nil, screening.DefaultConfig())
	var gotClient string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, analyzePath, r.URL.Path)
		gotClient = r.Header.Get("X-Client-Id")
		var req analyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		res, err := engine.Analyze(r.Context(), req.Resumes, screening.JobContext{
			Description: req.JobDescription,
			Industry:    req.Industry,
			Options:     req.Options,
		})
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(analyzeResponse{RunID: "run-1", Industry: res.Industry, Results: res.Reports, Stats: res.Stats})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/", WithClientID("cli"))
	require.NoError(t, err)

	resumes := []screening.ResumeInput{
		{DisplayName: "a", RawText: "Python and Docker with communication skills"},
		{DisplayName: "b", RawText: "Cashier"},
	}
	job := screening.JobContext{Description: jobText, Options: screening.Options{SkillGaps: true}}

	got, err := client.Analyze(context.Background(), resumes, job)
	require.NoError(t, err)
	want, err := engine.Analyze(context.Background(), resumes, job)
	require.NoError(t, err)

	assert.Equal(t, "cli", gotClient)
	assert.Equal(t, want.Industry, got.Industry)
	assert.Equal(t, want.Stats, got.Stats)
	require.Len(t, got.Reports, 2)
	for i := range want.Reports {
		assert.Equal(t, want.Reports[i].Name, got.Reports[i].Name)
		assert.Equal(t, want.Reports[i].Score, got.Reports[i].Score)
		assert.ElementsMatch(t, want.Reports[i].FoundSkills.All(), got.Reports[i].FoundSkills.All())
		require.NotNil(t, got.Reports[i].GapAnalysis)
		assert.ElementsMatch(t, want.Reports[i].GapAnalysis.All(), got.Reports[i].GapAnalysis.All())
	}
}

func TestAnalyzeMapsStatusErrors(t *testing.T) {
	status := http.StatusBadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"code":"validation_error","message":"bad industry"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	resumes := []screening.ResumeInput{{DisplayName: "a", RawText: "text"}}
	job := screening.JobContext{Description: jobText}

	_, err = client.Analyze(context.Background(), resumes, job)
	assert.ErrorIs(t, err, screening.ErrInvalidInput)
	assert.Contains(t, err.Error(), "bad industry")

	status = http.StatusBadGateway
	_, err = client.Analyze(context.Background(), resumes, job)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAnalyzeValidatesLocally(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:1")
	require.NoError(t, err)
	_, err = client.Analyze(context.Background(), nil, screening.JobContext{Description: jobText})
	assert.True(t, errors.Is(err, screening.ErrInvalidInput))
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
	_, err = NewClient("ftp://example.com")
	assert.Error(t, err)
}

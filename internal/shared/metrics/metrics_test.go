package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRenderIncludesCountersAndHistogram(t *testing.T) {
	IncRunStarted()
	IncRunCompleted()
	IncRunFailed(StageNoValid)
	AddResumesAnalyzed(3)
	IncFileSkipped("unsupported file type")
	ObserveRunDurationMs(42)

	out := Render()
	for _, want := range []string{
		"# TYPE screening_runs_started_total counter",
		`screening_runs_failed_total{stage="no_valid_resumes"}`,
		"screening_resumes_analyzed_total",
		`screening_files_skipped_total{reason="unsupported file type"}`,
		`screening_run_duration_ms_bucket{le="50"}`,
		`screening_run_duration_ms_bucket{le="+Inf"}`,
		"screening_run_duration_ms_count",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestHistogramRendersCumulativeBuckets(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	for _, v := range []float64{5, 10, 50, 500} {
		h.Observe(v)
	}

	snap := h.Snapshot()
	if snap.count != 4 || snap.sum != 565 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	var buf bytes.Buffer
	writeHistogram(&buf, "d", "help", snap)
	for _, want := range []string{
		`d_bucket{le="10"} 2`,
		`d_bucket{le="100"} 3`,
		`d_bucket{le="+Inf"} 4`,
		"d_sum 565",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in:\n%s", want, buf.String())
		}
	}
}

func TestLabeledCounterRendersSortedLabels(t *testing.T) {
	c := newLabeledCounter()
	c.Inc("b")
	c.Inc("a")
	c.Inc("b")

	var buf bytes.Buffer
	writeLabeledCounter(&buf, "x_total", "help", "reason", c.Snapshot())
	out := buf.String()
	if !strings.Contains(out, "x_total{reason=\"a\"} 1\nx_total{reason=\"b\"} 2\n") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestHandlerServesTextFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", Handler())

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.HasPrefix(resp.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("unexpected content type: %s", resp.Header().Get("Content-Type"))
	}
	if !strings.Contains(resp.Body.String(), "screening_runs_started_total") {
		t.Fatal("expected counters in body")
	}
}

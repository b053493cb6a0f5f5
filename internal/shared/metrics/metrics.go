package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// Run failure stages.
const (
	StageExtract = "extract"
	StageNoValid = "no_valid_resumes"
	StageAnalyze = "analyze"
	StageStore   = "store"
)

var (
	runsStarted     atomic.Uint64
	runsCompleted   atomic.Uint64
	resumesAnalyzed atomic.Uint64

	runsFailed   = newLabeledCounter()
	filesSkipped = newLabeledCounter()

	runDuration = newHistogram([]float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000})
)

func IncRunStarted() { runsStarted.Add(1) }
func IncRunCompleted() { runsCompleted.Add(1) }

// IncRunFailed counts a failed run under the stage that stopped it.
func IncRunFailed(stage string) { runsFailed.Inc(stage) }

// AddResumesAnalyzed counts résumés that produced a report.
func AddResumesAnalyzed(n int) {
	if n > 0 {
		resumesAnalyzed.Add(uint64(n))
	}
}

// IncFileSkipped counts an uploaded file that yielded no usable text.
func IncFileSkipped(reason string) { filesSkipped.Inc(reason) }

// ObserveRunDurationMs records a completed run's duration.
func ObserveRunDurationMs(value float64) {
	runDuration.Observe(max(value, 0))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(Render()))
	}
}

// Render renders every series in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "screening_runs_started_total", "Screening runs started.", runsStarted.Load())
	writeCounter(&buf, "screening_runs_completed_total", "Screening runs persisted with results.", runsCompleted.Load())
	writeLabeledCounter(&buf, "screening_runs_failed_total", "Screening runs that failed, by stage.", "stage", runsFailed.Snapshot())
	writeCounter(&buf, "screening_resumes_analyzed_total", "Résumés that produced a report.", resumesAnalyzed.Load())
	writeLabeledCounter(&buf, "screening_files_skipped_total", "Uploaded files skipped, by reason.", "reason", filesSkipped.Snapshot())
	writeHistogram(&buf, "screening_run_duration_ms", "Screening run duration in milliseconds.", runDuration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{values: make(map[string]uint64)}
}

func (l *labeledCounter) Inc(label string) {
	l.mu.Lock()
	l.values[label]++
	l.mu.Unlock()
}

func (l *labeledCounter) Snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

// histogram keeps per-bucket counts; Prometheus cumulation happens on render.
type histogram struct {
	mu     sync.Mutex
	bounds []float64
	counts []uint64
	sum    float64
	count  uint64
}

type histogramSnapshot struct {
	bounds []float64
	counts []uint64
	sum    float64
	count  uint64
}

func newHistogram(bounds []float64) *histogram {
	return &histogram{bounds: bounds, counts: make([]uint64, len(bounds))}
}

func (h *histogram) Observe(value float64) {
	i := sort.SearchFloat64s(h.bounds, value)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	if i < len(h.counts) {
		h.counts[i]++
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		bounds: h.bounds,
		counts: append([]uint64(nil), h.counts...),
		sum:    h.sum,
		count:  h.count,
	}
}

func writeHeader(buf *bytes.Buffer, name, help, kind string) {
	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	writeHeader(buf, name, help, "counter")
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	writeHeader(buf, name, help, "counter")
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	writeHeader(buf, name, help, "histogram")
	var cumulative uint64
	for i, bound := range snap.bounds {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, strconv.FormatFloat(bound, 'f', -1, 64), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, strconv.FormatFloat(snap.sum, 'f', -1, 64))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

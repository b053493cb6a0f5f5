package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInfoWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Info("run.completed", map[string]any{"run_id": "r1", "resumes": 3})
	Error("run.failed", map[string]any{"error": errors.New("boom")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first["level"] != "info" || first["msg"] != "run.completed" {
		t.Fatalf("unexpected entry: %v", first)
	}
	if first["run_id"] != "r1" || first["resumes"] != float64(3) {
		t.Fatalf("missing fields: %v", first)
	}
	if _, ok := first["ts"]; !ok {
		t.Fatalf("missing ts: %v", first)
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second["level"] != "error" || second["error"] != "boom" {
		t.Fatalf("unexpected entry: %v", second)
	}
}

func TestNewCLI(t *testing.T) {
	for _, jsonOut := range []bool{true, false} {
		l, err := NewCLI(jsonOut, true)
		if err != nil {
			t.Fatalf("NewCLI(%v): %v", jsonOut, err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("expected debug level enabled")
		}
	}
}

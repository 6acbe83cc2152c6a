package jsonlog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("line is not JSON: %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLogger_EmitsFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.now = func() time.Time { return time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC) }

	l.Error("store down", map[string]any{"driver": "mongo", "attempt": 2})

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("lines=%d", len(lines))
	}
	m := lines[0]
	if m["level"] != "ERROR" || m["msg"] != "store down" || m["driver"] != "mongo" {
		t.Fatalf("unexpected record: %v", m)
	}
	if m["ts"] != "2026-02-25T12:00:00Z" {
		t.Fatalf("ts=%v", m["ts"])
	}
}

func TestLogger_Std(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Std().Printf("reload: %d tasks", 3)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("lines=%d", len(lines))
	}
	if lines[0]["msg"] != "reload: 3 tasks" || lines[0]["level"] != "INFO" {
		t.Fatalf("unexpected record: %v", lines[0])
	}
}

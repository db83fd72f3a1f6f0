package internallogger_test

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joeydtaylor/tremor/pkg/internal/internallogger"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/logschema"
)

func lines(t *testing.T, b []byte) []logschema.LogRecord {
	t.Helper()
	var out []logschema.LogRecord
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		rec, err := logschema.ParseRecord(sc.Bytes())
		if err != nil {
			t.Fatalf("parse %q: %v", sc.Text(), err)
		}
		out = append(out, rec)
	}
	return out
}

func TestLevels(t *testing.T) {
	if got := internallogger.NewLogger().GetLevel(); got != types.InfoLevel {
		t.Fatalf("default level = %v, want info", got)
	}
	if got := internallogger.NewLogger(internallogger.LoggerWithLevel("WARNING")).GetLevel(); got != types.WarnLevel {
		t.Fatalf("WARNING level = %v, want warn", got)
	}
	if got := internallogger.NewLogger(internallogger.LoggerWithLevel("chatty")).GetLevel(); got != types.InfoLevel {
		t.Fatalf("unknown level = %v, want info", got)
	}

	var buf bytes.Buffer
	l := internallogger.NewLogger(internallogger.LoggerWithOutput(&buf))
	l.Debug("hidden")
	l.SetLevel(types.DebugLevel)
	l.Debug("shown")
	recs := lines(t, buf.Bytes())
	if len(recs) != 1 || recs[0].String(logschema.FieldMessage) != "shown" {
		t.Fatalf("unexpected records after SetLevel: %v", recs)
	}
}

func TestLogEncodesComponentAndReport(t *testing.T) {
	var buf bytes.Buffer
	l := internallogger.NewLogger(
		internallogger.LoggerWithOutput(&buf),
		internallogger.LoggerWithRunID("run-7"),
	)

	report := types.NewBatchReport("corpus.extract")
	report.Submitted, report.Processed = 5, 3
	report.AddSkip(types.ReadFailure)
	report.AddSkip(types.FilterError)
	report.Elapsed = 2 * time.Second

	meta := types.ComponentMetadata{ID: "c-1", Type: "EXTRACTOR"}
	l.Info("Batch complete", "component", meta, "event", "Extract", "report", report, "kind", types.LabelMismatch)

	recs := lines(t, buf.Bytes())
	if len(recs) != 1 {
		t.Fatalf("expected one line, got %d", len(recs))
	}
	rec := recs[0]
	if rec.String(logschema.FieldRunID) != "run-7" {
		t.Fatalf("run id = %v", rec[logschema.FieldRunID])
	}
	if rec.Component() != "EXTRACTOR" {
		t.Fatalf("component = %v", rec[logschema.FieldComponent])
	}
	if _, ok := rec[logschema.FieldComponent].(map[string]interface{})["name"]; ok {
		t.Fatalf("empty component name should be omitted")
	}
	if rec.String(logschema.FieldKind) != "label_mismatch" {
		t.Fatalf("kind = %v", rec[logschema.FieldKind])
	}
	rep, ok := rec[logschema.FieldReport].(map[string]interface{})
	if !ok {
		t.Fatalf("report not an object: %#v", rec[logschema.FieldReport])
	}
	if rep["processed"] != float64(3) || rep["skipped"] != float64(2) || rep["elapsed"] != "2s" {
		t.Fatalf("unexpected report: %v", rep)
	}
	reasons := rep["skip_reasons"].(map[string]interface{})
	if reasons["read_failure"] != float64(1) || reasons["filter_error"] != float64(1) {
		t.Fatalf("unexpected skip reasons: %v", reasons)
	}
}

func TestLogKeepsOrphanAndNonStringKeys(t *testing.T) {
	var buf bytes.Buffer
	l := internallogger.NewLogger(internallogger.LoggerWithOutput(&buf))
	l.Info("odd", 42, "answer", "k", "v", "orphan")

	rec := lines(t, buf.Bytes())[0]
	if rec.String("42") != "answer" || rec.String("k") != "v" || rec.String(logschema.FieldExtra) != "orphan" {
		t.Fatalf("unexpected fields: %v", rec)
	}
}

func TestSinks(t *testing.T) {
	var buf bytes.Buffer
	l := internallogger.NewLogger(internallogger.LoggerWithOutput(&buf))
	dir := t.TempDir()
	first := filepath.Join(dir, "logs", "a.log")
	second := filepath.Join(dir, "logs", "b.log")

	if err := l.AddSink("file", types.SinkConfig{Type: "file", Config: map[string]interface{}{"path": first}}); err != nil {
		t.Fatalf("AddSink: %v", err)
	}
	l.Info("to a")
	if err := l.AddSink("file", types.SinkConfig{Type: "file", Config: map[string]interface{}{"path": second, "format": "console"}}); err != nil {
		t.Fatalf("AddSink replace: %v", err)
	}
	l.Info("to b")
	if err := l.AddSink("err", types.SinkConfig{Type: "stderr"}); err != nil {
		t.Fatalf("AddSink stderr: %v", err)
	}

	ids, _ := l.ListSinks()
	if len(ids) != 2 || ids[0] != "err" || ids[1] != "file" {
		t.Fatalf("sinks = %v", ids)
	}
	if err := l.RemoveSink("file"); err != nil {
		t.Fatalf("RemoveSink: %v", err)
	}
	if err := l.RemoveSink("file"); err == nil {
		t.Fatalf("expected error removing a missing sink")
	}

	a, _ := os.ReadFile(first)
	if recs := lines(t, a); len(recs) != 1 || recs[0].String(logschema.FieldMessage) != "to a" {
		t.Fatalf("first sink: %q", a)
	}
	b, _ := os.ReadFile(second)
	if !strings.Contains(string(b), "to b") || strings.HasPrefix(string(b), "{") {
		t.Fatalf("second sink should hold a console line: %q", b)
	}
	if len(lines(t, buf.Bytes())) != 2 {
		t.Fatalf("base output missed lines: %q", buf.String())
	}
}

func TestAddSinkRejectsBadConfig(t *testing.T) {
	l := internallogger.NewLogger(internallogger.LoggerWithOutput(&bytes.Buffer{}))
	bad := []types.SinkConfig{
		{Type: "file"},
		{Type: "network"},
		{Type: "stdout", Config: map[string]interface{}{"format": "xml"}},
	}
	for _, cfg := range bad {
		if err := l.AddSink("x", cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
	if ids, _ := l.ListSinks(); len(ids) != 0 {
		t.Fatalf("failed sinks should not register: %v", ids)
	}
}

func TestConsoleAndFlush(t *testing.T) {
	var buf bytes.Buffer
	l := internallogger.NewLogger(
		internallogger.LoggerWithOutput(&buf),
		internallogger.LoggerWithConsole(true),
		internallogger.LoggerWithDevelopment(true),
		internallogger.LoggerWithCallerSkip(1),
	)
	l.Warn("careful", "event", "Check")
	if !strings.Contains(buf.String(), "WARN") || !strings.Contains(buf.String(), "careful") {
		t.Fatalf("unexpected console output: %q", buf.String())
	}
	if err := l.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newBufferLogger(component string) (*StdoutLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &StdoutLogger{component: component, out: &buf}, &buf
}

func TestStdoutLoggerEmitsJSONLines(t *testing.T) {
	t.Parallel()

	l, buf := newBufferLogger("test")
	l.Info("something happened", Field{Key: "count", Value: 3})

	var entry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component"`
		Fields    map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not one JSON line: %v (%q)", err, buf.String())
	}
	if entry.Level != "info" || entry.Msg != "something happened" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Component != "test" {
		t.Errorf("component = %q", entry.Component)
	}
	if entry.Fields["count"] != float64(3) {
		t.Errorf("fields = %v", entry.Fields)
	}
}

func TestWithPersistsFields(t *testing.T) {
	t.Parallel()

	l, buf := newBufferLogger("parent")
	child := l.With(Field{Key: "job_id", Value: "abc"})
	child.Warn("late")

	if !strings.Contains(buf.String(), `"job_id":"abc"`) {
		t.Errorf("persisted field missing: %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Errorf("level missing: %q", buf.String())
	}
}

func TestWithComponentRenamesChild(t *testing.T) {
	t.Parallel()

	l, buf := newBufferLogger("parent")
	child := l.With(Field{Key: "component", Value: "child"})
	child.Error("boom")

	out := buf.String()
	if !strings.Contains(out, `"component":"child"`) {
		t.Errorf("child component not applied: %q", out)
	}
	if strings.Contains(out, `"component":"parent"`) {
		t.Errorf("parent component leaked into child output: %q", out)
	}
}

func TestOrDiscard(t *testing.T) {
	t.Parallel()

	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}
	// Must be safe to use.
	OrDiscard(nil).Info("dropped")

	l, _ := newBufferLogger("x")
	if OrDiscard(l) != l {
		t.Error("OrDiscard replaced a non-nil logger")
	}
}

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSONCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentStorage, Output: &buf})

	l.Info("saved", NewFields().WithOperation("save").WithPeriod(2024, 3, "2024-03").Args()...)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if rec[FieldComponent] != ComponentStorage {
		t.Errorf("component = %v", rec[FieldComponent])
	}
	if rec[FieldOperation] != "save" || rec[FieldPeriod] != "2024-03" {
		t.Errorf("fields missing: %v", rec)
	}
}

func TestWithComponentReplacesTag(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "text", Component: ComponentApp, Output: &buf}).WithComponent(ComponentDaemon)

	l.Info("tick")
	out := buf.String()
	if !strings.Contains(out, "component=daemon") {
		t.Errorf("output missing daemon component: %q", out)
	}
	if strings.Contains(out, "component=app") {
		t.Errorf("old component still present: %q", out)
	}
	if l.Component() != ComponentDaemon {
		t.Errorf("Component() = %q", l.Component())
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn not logged: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{" warning ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFieldsWithError(t *testing.T) {
	f := NewFields().WithError(nil)
	if _, ok := f[FieldError]; ok {
		t.Error("nil error should not add a field")
	}
	f = f.WithError(errors.New("boom"))
	if f[FieldError] != "boom" {
		t.Errorf("error field = %v", f[FieldError])
	}
	if got := len(f.WithExpense("e1", "c1", 12.5).Args()); got != 8 {
		t.Errorf("Args len = %d, want 8", got)
	}
}

package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentBudget, Output: &buf})

	l.Info("lines replaced", FieldEntityID, "evt-1")
	l.WithComponent(ComponentRecurring).Debug("rule skipped")

	out := buf.String()
	if !strings.Contains(out, "component=budget") || !strings.Contains(out, "entity_id=evt-1") {
		t.Errorf("missing attributes in %q", out)
	}
	if !strings.Contains(out, "component=recurring") {
		t.Errorf("WithComponent not applied in %q", out)
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Output: &buf})
	l.WithFields(NewFields().WithOperation(OpGenerate).WithError(errors.New("boom"))).Error("failed")

	out := buf.String()
	for _, want := range []string{`"operation":"generate"`, `"error":"boom"`, `"component":"app"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Output: &buf})
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug record should be filtered, got %q", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	l := Discard().WithComponent(ComponentCLI)
	ctx := NewContext(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Fatalf("FromContext returned a different logger")
	}
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Errorf("fallback component = %q", got.Component())
	}
}

func TestFields(t *testing.T) {
	f := NewFields().WithEntity("prj-2", "", 2025).WithRule("r1", "Sede", 45000).WithError(nil)
	if _, ok := f[FieldEntityKind]; ok {
		t.Error("empty kind should not be recorded")
	}
	if _, ok := f[FieldError]; ok {
		t.Error("nil error should not be recorded")
	}
	if f[FieldYear] != 2025 || f[FieldAmountCents] != int64(45000) {
		t.Errorf("unexpected fields %v", f)
	}
	if got := len(f.ToSlice()); got != 2*len(f) {
		t.Errorf("ToSlice length = %d", got)
	}
}

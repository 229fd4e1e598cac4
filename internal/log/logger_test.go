package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentLedger, Output: &buf})

	l.Info("Day added", FieldDate, "2024-01-15")
	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "date=2024-01-15") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	l.WithComponent(ComponentStorage).Warn("slow write")
	if !strings.Contains(buf.String(), "component=storage") {
		t.Fatalf("expected storage component, got: %s", buf.String())
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: ParseLevel("warn"), Output: &buf})
	l.Info("hidden")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got: %s", buf.String())
	}
	l.Error("shown")
	if !strings.Contains(buf.String(), "component=app") {
		t.Fatalf("expected default component, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithOperation(OpExport).
		WithEntry("2024-01-15", "income", 2).
		WithSink("file", "finanzas_2024-01-15.txt", 12, true).
		WithError(errors.New("boom")).
		WithError(nil)

	if f[FieldOperation] != OpExport || f[FieldEntryIndex] != 2 || f[FieldSink] != "file" || f[FieldError] != "boom" {
		t.Fatalf("unexpected fields: %v", f)
	}
	if len(f.ToSlice()) != len(f)*2 {
		t.Fatalf("ToSlice length mismatch")
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Output: &buf}).WithComponent(ComponentCLI)
	ctx := WithContext(context.Background(), l)

	FromContext(ctx).Info("from context")
	if !strings.Contains(buf.String(), "component=cli") {
		t.Fatalf("expected cli logger from context, got: %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatalf("expected fallback logger")
	}
}

package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		kv   []string
		want map[string]string
	}{
		{name: "trims", kv: []string{" ai_model ", " flash "}, want: map[string]string{"ai_model": "flash"}},
		{name: "blank value", kv: []string{"a", " ", "b", "x"}, want: map[string]string{"b": "x"}},
		{name: "blank key", kv: []string{"", "x"}, want: map[string]string{}},
		{name: "odd count", kv: []string{"a", "1", "dangling"}, want: map[string]string{"a": "1"}},
		{name: "empty", want: map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fields := Tags(tt.kv...)
			if len(fields) != len(tt.want) {
				t.Fatalf("expected %d fields, got %d", len(tt.want), len(fields))
			}
			for _, f := range fields {
				if tt.want[f.Key] != f.String {
					t.Fatalf("unexpected field %s=%q", f.Key, f.String)
				}
			}
		})
	}
}

func TestWithFieldsNil(t *testing.T) {
	t.Parallel()

	l := WithFields(nil, zap.String("k", "v"))
	if l == nil {
		t.Fatalf("expected a no-op logger for nil input")
	}
	l.Info("discarded")

	base, logs := observed()
	if got := WithFields(base); got != base {
		t.Fatalf("expected the same logger when no fields are given")
	}
	WithFields(base, zap.String("k", "v")).Info("kept")
	if v := logs.All()[0].ContextMap()["k"]; v != "v" {
		t.Fatalf("expected k=v, got %v", v)
	}
}

func TestForBackend(t *testing.T) {
	t.Parallel()

	base, logs := observed()
	ForBackend(base, "gemini", "text-embedding-004").Debug("embedded")

	ctx := logs.All()[0].ContextMap()
	if ctx[FieldProvider] != "gemini" || ctx[FieldModel] != "text-embedding-004" {
		t.Fatalf("unexpected backend fields: %v", ctx)
	}

	ForBackend(nil, "gemini", "").Info("no panic")
}

func TestForComponentAndRequest(t *testing.T) {
	t.Parallel()

	base, logs := observed()
	ForRequest(ForComponent(base, "normalizer"), "req-1").Info("tagged")

	ctx := logs.All()[0].ContextMap()
	if ctx[FieldComponent] != "normalizer" {
		t.Fatalf("expected component field, got %v", ctx[FieldComponent])
	}
	if ctx[FieldRequestID] != "req-1" {
		t.Fatalf("expected request id field, got %v", ctx[FieldRequestID])
	}

	base, logs = observed()
	ForRequest(base, "  ").Info("untagged")
	if _, ok := logs.All()[0].ContextMap()[FieldRequestID]; ok {
		t.Fatalf("expected empty request id to be skipped")
	}
}

package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Field keys shared across components.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldProvider  = "ai_provider"
	FieldModel     = "ai_model"
)

// Tags turns alternating key/value strings into zap fields. Pairs with a
// blank key or value are dropped, as is a trailing key without a value.
func Tags(kv ...string) []zap.Field {
	out := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, value := strings.TrimSpace(kv[i]), strings.TrimSpace(kv[i+1])
		if key == "" || value == "" {
			continue
		}
		out = append(out, zap.String(key, value))
	}
	return out
}

// WithFields attaches fields to logger. A nil logger becomes a no-op one, so
// constructors can accept nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// ForBackend tags a logger used for language model or embedding calls.
func ForBackend(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, Tags(FieldProvider, provider, FieldModel, model)...)
}

func ForComponent(logger *zap.Logger, name string) *zap.Logger {
	return WithFields(logger, Tags(FieldComponent, name)...)
}

// ForRequest tags the logger with an HTTP request id. An empty id leaves the
// logger untouched.
func ForRequest(logger *zap.Logger, requestID string) *zap.Logger {
	return WithFields(logger, Tags(FieldRequestID, requestID)...)
}

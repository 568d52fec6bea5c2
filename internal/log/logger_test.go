package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/core"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerAddsComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Component: ComponentStorage, Output: buf})

	logger.Info("hello", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, ComponentStorage, rec[FieldComponent])
	assert.Equal(t, "v", rec["k"])
}

func TestLoggerLevelFilters(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: slog.LevelWarn, Output: buf})

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestFromContext(t *testing.T) {
	fallback := FromContext(context.Background())
	assert.Equal(t, "unknown", fallback.Component())

	logger := New(Config{Component: ComponentShell, Output: &bytes.Buffer{}})
	ctx := WithContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestStructuredLoggerLogError(t *testing.T) {
	buf := &bytes.Buffer{}
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Format: "json", Component: ComponentShell, Output: buf}))

	verr := &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}
	sl.LogError(context.Background(), "add failed", verr, OpCreate, nil)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, ErrorTypeValidation, rec[FieldErrorType])
	assert.Equal(t, OpCreate, rec[FieldOperation])

	buf.Reset()
	sl.LogError(context.Background(), "db failed", errors.New("disk full"), OpList, NewFields())
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, ErrorTypeInternal, rec[FieldErrorType])
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeMalformedDate, ErrorType(&core.MalformedDateError{Date: "x"}))
	assert.Equal(t, ErrorTypeValidation, ErrorType(&core.ValidationError{Field: "name", Err: core.ErrEmptyName}))
	assert.Equal(t, ErrorTypeInternal, ErrorType(errors.New("boom")))
}

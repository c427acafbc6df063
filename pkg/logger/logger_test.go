package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestNewWithWriter_TagsServiceAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("shopfront", "info", &buf)

	l.Info("hello")

	m := logLine(t, &buf)
	assert.Equal(t, "shopfront", m["service"])
	assert.Equal(t, "hello", m["msg"])
	assert.Equal(t, "INFO", m["level"])
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("shopfront", "warn", &buf)

	l.Info("suppressed")
	assert.Zero(t, buf.Len())

	l.Warn("emitted")
	assert.NotZero(t, buf.Len())
}

func TestWithContext_AddsCorrelationAndUser(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter("shopfront", "info", &buf)

	ctx := WithCorrelationID(context.Background(), "corr-1")
	ctx = WithSessionUser(ctx, "u1")

	WithContext(ctx, base).Info("enriched")

	m := logLine(t, &buf)
	assert.Equal(t, "corr-1", m["correlation_id"])
	assert.Equal(t, "u1", m["user_id"])
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	var buf bytes.Buffer
	stored := NewWithWriter("shopfront", "info", &buf)
	ctx := NewContext(context.Background(), stored)
	assert.Same(t, stored, FromContext(ctx))
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, slog.LevelWarn, cfg.Level)
	assert.False(t, cfg.JSON)
}

func TestDebugConfig(t *testing.T) {
	cfg := DebugConfig()
	assert.Equal(t, slog.LevelDebug, cfg.Level)
	assert.True(t, cfg.JSON)
	assert.True(t, cfg.AddSource)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(" INFO "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("nonsense"))
}

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: slog.LevelInfo, JSON: true, Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Info("reminder fired", KeyMedication, "Sevelamer", KeyCount, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "reminder fired", entry["msg"])
	assert.Equal(t, "Sevelamer", entry[KeyMedication])
	assert.False(t, Debug)
}

func TestInitMasksSensitiveAttributes(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: slog.LevelInfo, Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Info("configured", "api_key", "AIzaSySecretValue")

	assert.NotContains(t, buf.String(), "AIzaSySecretValue")
	assert.Contains(t, buf.String(), "********")
}

func TestInitDebugSetsFlag(t *testing.T) {
	var buf bytes.Buffer
	cfg := DebugConfig()
	cfg.Output = &buf
	Init(cfg)
	t.Cleanup(func() { Init(DefaultConfig()) })

	assert.True(t, Debug)
	DebugLog("tick", KeyMinute, "08:30")
	assert.Contains(t, buf.String(), "08:30")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: slog.LevelWarn, Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Info("hidden")
	Warn("shown")
	Error("also shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "also shown")
}

// =============================================================================
// Context Tests
// =============================================================================

func TestGenerateRequestID(t *testing.T) {
	id := GenerateRequestID()
	assert.Len(t, id, 16)
	assert.NotEqual(t, id, GenerateRequestID())
}

func TestRequestContext(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Empty(t, RequestIDFromContext(nil))

	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestIDFromContext(ctx))

	fresh := NewRequestContext(nil)
	assert.Len(t, RequestIDFromContext(fresh), 16)
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: slog.LevelDebug, Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	ctx := WithRequestID(context.Background(), "req-42")
	DebugContext(ctx, "summarize")
	WarnContext(ctx, "fallback")

	assert.Equal(t, 2, strings.Count(buf.String(), "request_id=req-42"))
}

// =============================================================================
// Mask Tests
// =============================================================================

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "", MaskValue(""))
	assert.Equal(t, "***", MaskValue("abc"))
	assert.Equal(t, "********", MaskValue("a-very-long-secret"))
}

func TestMaskURL(t *testing.T) {
	short := "https://example.com/a"
	assert.Equal(t, short, MaskURL(short))

	long := "https://hooks.slack.com/services/T000/B000/XXXXXXXX"
	masked := MaskURL(long)
	assert.True(t, strings.HasPrefix(masked, long[:URLMaskLength]))
	assert.True(t, strings.HasSuffix(masked, "***"))
}

func TestIsSensitiveField(t *testing.T) {
	assert.True(t, IsSensitiveField("api_key"))
	assert.True(t, IsSensitiveField("AI_API_KEY"))
	assert.True(t, IsSensitiveField("webhook_url"))
	assert.False(t, IsSensitiveField("medication"))
}

func TestMaskString(t *testing.T) {
	got := MaskString("POST https://generativelanguage.googleapis.com/v1beta/models/x:generateContent?key=SECRET123")
	assert.NotContains(t, got, "SECRET123")

	local := "http://localhost:9464/metrics"
	assert.Equal(t, local, MaskString(local))
}

func TestMaskArgs(t *testing.T) {
	args := []any{"api_key", "secret", KeyCount, 3, "token", 42}
	got := MaskArgs(args)

	assert.Equal(t, "******", got[1])
	assert.Equal(t, 3, got[3])
	assert.Equal(t, "********", got[5])
	assert.Equal(t, "secret", args[1], "input must not be modified")
}

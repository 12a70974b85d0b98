package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriterProducesJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)

	Info("loaded %d items", 4)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "loaded 4 items", line["message"])
	assert.Equal(t, "campusloop-backend", line["service"])
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)

	l := WithRequestID("abc123")
	l.Warn().Msg("slow")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "abc123", line["request_id"])
	assert.Equal(t, "warn", line["level"])
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)

	// 컨텍스트에 로거 없음: 전역 로거
	FromContext(context.Background()).Info().Msg("plain")
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotContains(t, line, "request_id")

	buf.Reset()
	l := WithRequestID("req-1")
	ctx := l.WithContext(context.Background())
	FromContext(ctx).Info().Msg("scoped")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-1", line["request_id"])
}

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessDeniedWritesStructuredFields(t *testing.T) {
	var buffer bytes.Buffer
	log := NewWithOutput("info", "json", &buffer)

	log.AccessDenied("req-1", "profiles", "update", 7, "You can only update your own profile.")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &line))
	assert.Equal(t, "access denied", line["message"])
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "profiles", line["resource"])
	assert.Equal(t, "update", line["action"])
	assert.Equal(t, float64(7), line["user_id"])
	assert.Equal(t, "req-1", line["request_id"])
}

func TestNewFallsBackToInfoLevel(t *testing.T) {
	log := NewWithOutput("not-a-level", "json", &bytes.Buffer{})
	assert.Equal(t, "info", log.GetLevel().String())
}

func TestHTTPRequestLevelFollowsStatus(t *testing.T) {
	var buffer bytes.Buffer
	log := NewWithOutput("debug", "json", &buffer)

	log.HTTPRequest("req-2", "GET", "/api/users", "127.0.0.1", 404, 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &line))
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, float64(404), line["status_code"])
}

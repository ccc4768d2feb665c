package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordersIncrementCollectors(t *testing.T) {
	m := New()

	m.RecordHTTPRequest("GET", "/api/users", 200, 15*time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/users", 200, 5*time.Millisecond)
	m.RecordAccessDenial("profiles", "update", "forbidden")
	m.RecordValidationFailure("appointments")
	m.RecordAuthAttempt(false)
	m.RecordRateLimited()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/users", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.accessDenials.WithLabelValues("profiles", "update", "forbidden")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationFailures.WithLabelValues("appointments")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authAttempts.WithLabelValues("failure")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.authAttempts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited))
}

func TestHandlerExposesRegisteredCollectors(t *testing.T) {
	m := New()
	m.RecordAccessDenial("feedback", "create", "forbidden")

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, recorder.Code)
	body, err := io.ReadAll(recorder.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `calm_access_denials_total{action="create",outcome="forbidden",resource="feedback"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestInstancesDoNotShareState(t *testing.T) {
	first := New()
	second := New()

	first.RecordRateLimited()

	assert.Equal(t, 1.0, testutil.ToFloat64(first.rateLimited))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.rateLimited))
}

// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	m := &dto.Metric{}
	if err := cv.WithLabelValues(labels...).Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func getPlainCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestRecordRequest(t *testing.T) {
	before := getCounterValue(HTTPRequestsTotal, "GET", "/api/v1/account/me", "200")
	RecordRequest("GET", "/api/v1/account/me", http.StatusOK, 12*time.Millisecond)

	assert.Equal(t, before+1, getCounterValue(HTTPRequestsTotal, "GET", "/api/v1/account/me", "200"))
}

func TestRecordAuthEvents(t *testing.T) {
	logins := getCounterValue(LoginsTotal, "failure")
	RecordLogin("failure")
	RecordLogin("failure")
	assert.Equal(t, logins+2, getCounterValue(LoginsTotal, "failure"))

	csrf := getPlainCounterValue(CSRFFailuresTotal)
	RecordCSRFFailure()
	assert.Equal(t, csrf+1, getPlainCounterValue(CSRFFailuresTotal))

	denied := getCounterValue(AccessDeniedTotal, "resource")
	RecordAccessDenied("resource")
	assert.Equal(t, denied+1, getCounterValue(AccessDeniedTotal, "resource"))

	swept := getPlainCounterValue(SessionsSweptTotal)
	RecordSessionsSwept(3)
	assert.Equal(t, swept+3, getPlainCounterValue(SessionsSweptTotal))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	RecordSessionResolution("marker")

	recorder := httptest.NewRecorder()
	Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "meattrack_auth_session_resolutions_total")
}

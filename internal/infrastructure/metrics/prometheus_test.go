package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	m := NewMetricsManager("webshop")

	m.ObserveRequest("GET /items", "OK", 120*time.Millisecond)
	m.ObserveRequest("GET /items", "TIMEOUT", 8*time.Second)
	m.ObserveRequest("GET /items", "OK", 80*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BackendRequestsTotal.WithLabelValues("GET /items", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendRequestsTotal.WithLabelValues("GET /items", "TIMEOUT")))
}

func TestNilManagerIsSafe(t *testing.T) {
	var m *MetricsManager

	assert.NotPanics(t, func() {
		m.ObserveRequest("GET /items", "OK", time.Second)
		m.ObserveStoreMutation("listings")
		m.ObserveLiveRefresh("poll")
		m.ObserveEncodeSteps(3)
		m.ObserveVipTransition("completed")
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewMetricsManager("webshop")
	m.ObserveStoreMutation("listings")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `webshop_store_mutations_total{topic="listings"} 1`)
}

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds the client's Prometheus collectors. All methods are
// safe on a nil receiver so tests can run without metrics.
type MetricsManager struct {
	Registry *prometheus.Registry

	BackendRequestsTotal  *prometheus.CounterVec
	BackendRequestLatency *prometheus.HistogramVec
	StoreMutationsTotal   *prometheus.CounterVec
	LiveRefreshesTotal    *prometheus.CounterVec
	ImageEncodeSteps      prometheus.Histogram
	VipTransitionsTotal   *prometheus.CounterVec
}

func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	backendRequestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Backend calls by endpoint and outcome code.",
	}, []string{"endpoint", "outcome"})

	backendRequestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_latency_seconds",
		Help:      "Latency of backend calls by endpoint.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 90},
	}, []string{"endpoint"})

	storeMutationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_mutations_total",
		Help:      "View store reconciliations by topic.",
	}, []string{"topic"})

	liveRefreshesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "live_refreshes_total",
		Help:      "Message refreshes by trigger source.",
	}, []string{"source"})

	imageEncodeSteps := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_encode_steps",
		Help:      "JPEG encode passes needed to reach the size budget.",
		Buckets:   prometheus.LinearBuckets(1, 1, 10),
	})

	vipTransitionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vip_transitions_total",
		Help:      "VIP transaction state transitions.",
	}, []string{"state"})

	registry.MustRegister(
		backendRequestsTotal,
		backendRequestLatency,
		storeMutationsTotal,
		liveRefreshesTotal,
		imageEncodeSteps,
		vipTransitionsTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:              registry,
		BackendRequestsTotal:  backendRequestsTotal,
		BackendRequestLatency: backendRequestLatency,
		StoreMutationsTotal:   storeMutationsTotal,
		LiveRefreshesTotal:    liveRefreshesTotal,
		ImageEncodeSteps:      imageEncodeSteps,
		VipTransitionsTotal:   vipTransitionsTotal,
	}
}

func (m *MetricsManager) ObserveRequest(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BackendRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.BackendRequestLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *MetricsManager) ObserveStoreMutation(topic string) {
	if m == nil {
		return
	}
	m.StoreMutationsTotal.WithLabelValues(topic).Inc()
}

func (m *MetricsManager) ObserveLiveRefresh(source string) {
	if m == nil {
		return
	}
	m.LiveRefreshesTotal.WithLabelValues(source).Inc()
}

func (m *MetricsManager) ObserveEncodeSteps(steps int) {
	if m == nil {
		return
	}
	m.ImageEncodeSteps.Observe(float64(steps))
}

func (m *MetricsManager) ObserveVipTransition(state string) {
	if m == nil {
		return
	}
	m.VipTransitionsTotal.WithLabelValues(state).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *MetricsManager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

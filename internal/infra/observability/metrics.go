package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the portal broker.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	upstreamErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	loginsTotal     *prometheus.CounterVec
	refreshesTotal  *prometheus.CounterVec
	idleTimeouts    prometheus.Counter
	tenantDenials   *prometheus.CounterVec
}

// SessionMetricsSnapshot is the payload for GET /v1/metrics/session.
type SessionMetricsSnapshot struct {
	LoginSuccess   int64   `json:"loginSuccess"`
	LoginFailure   int64   `json:"loginFailure"`
	RefreshSuccess int64   `json:"refreshSuccess"`
	RefreshFailure int64   `json:"refreshFailure"`
	IdleTimeouts   int64   `json:"idleTimeouts"`
	TenantDenials  int64   `json:"tenantDenials"`
	CacheHitRate   float64 `json:"cacheHitRate"`
	LoginErrorRate float64 `json:"loginErrorRate"`
	Period         string  `json:"period"`
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_upstream_errors_total",
				Help: "Total errors from the upstream commerce platform.",
			},
			[]string{"operation"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		loginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_logins_total",
				Help: "Total login attempts by result.",
			},
			[]string{"result"},
		),
		refreshesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_token_refreshes_total",
				Help: "Total access-token refreshes by result.",
			},
			[]string{"result"},
		),
		idleTimeouts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "portal_idle_timeouts_total",
				Help: "Total sessions invalidated by idle timeout.",
			},
		),
		tenantDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_tenant_denials_total",
				Help: "Total cross-tenant access attempts denied.",
			},
			[]string{"resource"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrUpstreamError increments the upstream error counter.
func (m *Metrics) IncrUpstreamError(operation string) {
	m.upstreamErrors.WithLabelValues(operation).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrLogin counts a login attempt; result is "success" or "failure".
func (m *Metrics) IncrLogin(result string) {
	m.loginsTotal.WithLabelValues(result).Inc()
}

// IncrRefresh counts a token refresh; result is "success" or "failure".
func (m *Metrics) IncrRefresh(result string) {
	m.refreshesTotal.WithLabelValues(result).Inc()
}

// IncrIdleTimeout counts a session invalidated by idle timeout.
func (m *Metrics) IncrIdleTimeout() {
	m.idleTimeouts.Inc()
}

// IncrTenantDenial counts a denied cross-tenant access per resource kind.
func (m *Metrics) IncrTenantDenial(resource string) {
	m.tenantDenials.WithLabelValues(resource).Inc()
}

// SessionSnapshot returns current session counter values, suitable for
// the GET /v1/metrics/session endpoint.
func (m *Metrics) SessionSnapshot() *SessionMetricsSnapshot {
	loginOK := getCounterValue(m.loginsTotal, "success")
	loginFail := getCounterValue(m.loginsTotal, "failure")
	refreshOK := getCounterValue(m.refreshesTotal, "success")
	refreshFail := getCounterValue(m.refreshesTotal, "failure")
	hits := getCounterValue(m.cacheHits, "company")
	misses := getCounterValue(m.cacheMisses, "company")

	var idle float64
	mt := &dto.Metric{}
	if err := m.idleTimeouts.Write(mt); err == nil && mt.Counter != nil && mt.Counter.Value != nil {
		idle = *mt.Counter.Value
	}

	var denials float64
	metricsCh := make(chan prometheus.Metric, 64)
	go func() {
		m.tenantDenials.Collect(metricsCh)
		close(metricsCh)
	}()
	for metric := range metricsCh {
		d := &dto.Metric{}
		if err := metric.Write(d); err == nil && d.Counter != nil && d.Counter.Value != nil {
			denials += *d.Counter.Value
		}
	}

	cacheHitRate := float64(0)
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}
	loginErrorRate := float64(0)
	if loginOK+loginFail > 0 {
		loginErrorRate = loginFail / (loginOK + loginFail)
	}

	return &SessionMetricsSnapshot{
		LoginSuccess:   int64(loginOK),
		LoginFailure:   int64(loginFail),
		RefreshSuccess: int64(refreshOK),
		RefreshFailure: int64(refreshFail),
		IdleTimeouts:   int64(idle),
		TenantDenials:  int64(denials),
		CacheHitRate:   cacheHitRate,
		LoginErrorRate: loginErrorRate,
		Period:         "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

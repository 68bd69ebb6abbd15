package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
//
// All Record/Set/Inc methods are safe to call on a nil *Metrics, so domain
// components can run without a collector.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Policy metrics
	Decisions        *prometheus.CounterVec
	DecisionDuration *prometheus.HistogramVec
	BlockEvents      *prometheus.CounterVec
	Resolutions      *prometheus.CounterVec

	// Rule set metrics
	RuleReloads *prometheus.CounterVec
	RuleCount   *prometheus.GaugeVec

	// Session metrics
	TabsActive   *prometheus.GaugeVec
	ModeSwitches *prometheus.CounterVec

	// Event stream metrics
	WSConnections prometheus.Gauge
	EventsDropped prometheus.Counter

	startTime time.Time

	// Snapshot for the JSON health endpoint
	snapshot MetricsSnapshot
	mu       sync.RWMutex
}

// MetricsSnapshot holds current values for the JSON API
type MetricsSnapshot struct {
	TotalDecisions int64 `json:"total_decisions"`
	TotalDenied    int64 `json:"total_denied"`
	TotalReloads   int64 `json:"total_reloads"`
	FailedReloads  int64 `json:"failed_reloads"`
	UptimeSeconds  int64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector registered on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navguard_http_requests_total",
				Help: "Total number of control API requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "navguard_http_request_duration_seconds",
				Help:    "Control API request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),

		Decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navguard_decisions_total",
				Help: "Interceptor decisions by partition, outcome and reason",
			},
			[]string{"partition", "outcome", "reason"},
		),
		DecisionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "navguard_decision_duration_seconds",
				Help:    "Time spent deciding a single request",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
			[]string{"partition"},
		),
		BlockEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navguard_block_events_total",
				Help: "Blocklist matches by match type",
			},
			[]string{"match_type"},
		),
		Resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navguard_resolutions_total",
				Help: "Private address resolutions by content type",
			},
			[]string{"content_type"},
		),

		RuleReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navguard_rule_reloads_total",
				Help: "Rule set reloads by status (applied, unchanged, failed)",
			},
			[]string{"status"},
		),
		RuleCount: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "navguard_rules",
				Help: "Number of loaded rules by kind",
			},
			[]string{"kind"},
		),

		TabsActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "navguard_tabs",
				Help: "Open tabs by mode",
			},
			[]string{"mode"},
		),
		ModeSwitches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navguard_mode_switches_total",
				Help: "Committed mode switches by target mode",
			},
			[]string{"to"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "navguard_ws_connections",
				Help: "Number of active event stream connections",
			},
		),
		EventsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "navguard_events_dropped_total",
				Help: "Outbound events dropped because a subscriber was full",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "navguard_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records a control API request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordDecision records one interceptor decision
func (m *Metrics) RecordDecision(partition, outcome, reason string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(partition, outcome, reason).Inc()
	m.DecisionDuration.WithLabelValues(partition).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalDecisions++
	if outcome == "deny" {
		m.snapshot.TotalDenied++
	}
	m.mu.Unlock()
}

// RecordBlockEvent records a blocklist match
func (m *Metrics) RecordBlockEvent(matchType string) {
	if m == nil {
		return
	}
	m.BlockEvents.WithLabelValues(matchType).Inc()
}

// RecordResolution records a private address resolution
func (m *Metrics) RecordResolution(contentType string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(contentType).Inc()
}

// RecordReload records a rule set reload outcome
func (m *Metrics) RecordReload(status string) {
	if m == nil {
		return
	}
	m.RuleReloads.WithLabelValues(status).Inc()

	m.mu.Lock()
	m.snapshot.TotalReloads++
	if status == "failed" {
		m.snapshot.FailedReloads++
	}
	m.mu.Unlock()
}

// SetRuleCounts sets the loaded rule gauges
func (m *Metrics) SetRuleCounts(counts map[string]int) {
	if m == nil {
		return
	}
	for kind, n := range counts {
		m.RuleCount.WithLabelValues(kind).Set(float64(n))
	}
}

// SetTabs sets the open tab gauge for a mode
func (m *Metrics) SetTabs(mode string, count int) {
	if m == nil {
		return
	}
	m.TabsActive.WithLabelValues(mode).Set(float64(count))
}

// IncModeSwitches counts a committed mode switch
func (m *Metrics) IncModeSwitches(to string) {
	if m == nil {
		return
	}
	m.ModeSwitches.WithLabelValues(to).Inc()
}

// AddWSConnections adjusts the event stream connection gauge
func (m *Metrics) AddWSConnections(delta int) {
	if m == nil {
		return
	}
	m.WSConnections.Add(float64(delta))
}

// IncEventsDropped counts an outbound event that could not be delivered
func (m *Metrics) IncEventsDropped() {
	if m == nil {
		return
	}
	m.EventsDropped.Inc()
}

// Snapshot returns current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.UptimeSeconds = int64(time.Since(m.startTime).Seconds())
	return s
}

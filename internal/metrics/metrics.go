package metrics

import (
	"database/sql"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// EndpointMetrics tracks metrics for a specific endpoint
type EndpointMetrics struct {
	Requests     int64
	Errors       int64
	TotalLatency int64
}

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Request metrics
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	TotalLatency       int64

	// Analysis metrics
	AnalysesStarted   int64
	AnalysesSucceeded int64
	AnalysesFailed    int64
	AnalysesStale     int64
	AnalysesRejected  int64
	AnalysisLatency   int64

	// Feedback metrics
	FeedbackSent     int64
	FeedbackFailed   int64
	FeedbackRejected int64
	Reanalyses       int64

	// Draft and export metrics
	DraftsAdded    int64
	ExportsWritten int64
	SuggestFetches int64

	// WebSocket metrics
	WSConnections int64
	WSMessagesIn  int64
	WSMessagesOut int64

	// Endpoint-specific metrics
	EndpointMetrics map[string]*EndpointMetrics

	// Start time for uptime calculation
	StartTime time.Time
}

var globalMetrics *Metrics
var once sync.Once

// Init initializes the global metrics instance
func Init() {
	once.Do(func() {
		globalMetrics = New()
	})
}

// New creates an isolated metrics instance
func New() *Metrics {
	return &Metrics{
		StartTime:       time.Now(),
		EndpointMetrics: make(map[string]*EndpointMetrics),
	}
}

// Get returns the global metrics instance
func Get() *Metrics {
	Init()
	return globalMetrics
}

// IncrementRequests increments request counters
func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	atomic.AddInt64(&m.TotalRequests, 1)
	atomic.AddInt64(&m.TotalLatency, latencyMs)
	if success {
		atomic.AddInt64(&m.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&m.FailedRequests, 1)
	}
}

// IncrementAnalysisStarted counts a request sent to the analysis backend
func (m *Metrics) IncrementAnalysisStarted() {
	atomic.AddInt64(&m.AnalysesStarted, 1)
}

// IncrementAnalysisFinished records the outcome of a backend analysis call
func (m *Metrics) IncrementAnalysisFinished(success bool, latencyMs int64) {
	atomic.AddInt64(&m.AnalysisLatency, latencyMs)
	if success {
		atomic.AddInt64(&m.AnalysesSucceeded, 1)
	} else {
		atomic.AddInt64(&m.AnalysesFailed, 1)
	}
}

// IncrementAnalysisStale counts responses discarded because a newer analysis was applied
func (m *Metrics) IncrementAnalysisStale() {
	atomic.AddInt64(&m.AnalysesStale, 1)
}

// IncrementAnalysisRejected counts analyses aborted before any network call
func (m *Metrics) IncrementAnalysisRejected() {
	atomic.AddInt64(&m.AnalysesRejected, 1)
}

// IncrementFeedback records a feedback send outcome
func (m *Metrics) IncrementFeedback(success bool) {
	if success {
		atomic.AddInt64(&m.FeedbackSent, 1)
	} else {
		atomic.AddInt64(&m.FeedbackFailed, 1)
	}
}

// IncrementFeedbackRejected counts feedback refused while controls were locked
func (m *Metrics) IncrementFeedbackRejected() {
	atomic.AddInt64(&m.FeedbackRejected, 1)
}

// IncrementReanalysis counts re-analyses triggered by feedback
func (m *Metrics) IncrementReanalysis() {
	atomic.AddInt64(&m.Reanalyses, 1)
}

// IncrementDraftAdded counts drafts appended to a session
func (m *Metrics) IncrementDraftAdded() {
	atomic.AddInt64(&m.DraftsAdded, 1)
}

// IncrementExport counts spreadsheet exports
func (m *Metrics) IncrementExport() {
	atomic.AddInt64(&m.ExportsWritten, 1)
}

// IncrementSuggestFetch counts suggestion lookups
func (m *Metrics) IncrementSuggestFetch() {
	atomic.AddInt64(&m.SuggestFetches, 1)
}

// IncrementWSConnection increments WebSocket connection counter
func (m *Metrics) IncrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, 1)
}

// DecrementWSConnection decrements WebSocket connection counter
func (m *Metrics) DecrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, -1)
}

// IncrementWSMessageIn increments incoming WebSocket message counter
func (m *Metrics) IncrementWSMessageIn() {
	atomic.AddInt64(&m.WSMessagesIn, 1)
}

// IncrementWSMessageOut increments outgoing WebSocket message counter
func (m *Metrics) IncrementWSMessageOut() {
	atomic.AddInt64(&m.WSMessagesOut, 1)
}

// TrackEndpoint tracks metrics for a specific endpoint
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EndpointMetrics == nil {
		m.EndpointMetrics = make(map[string]*EndpointMetrics)
	}

	em, exists := m.EndpointMetrics[key]
	if !exists {
		em = &EndpointMetrics{}
		m.EndpointMetrics[key] = em
	}

	atomic.AddInt64(&em.Requests, 1)
	atomic.AddInt64(&em.TotalLatency, latencyMs)
	if statusCode >= 400 {
		atomic.AddInt64(&em.Errors, 1)
	}
}

// EndpointMetricsSnapshot represents endpoint metrics in a snapshot
type EndpointMetricsSnapshot struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	ErrorRate    float64 `json:"error_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// MetricsSnapshot represents a point-in-time snapshot of all metrics
type MetricsSnapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`

	Requests struct {
		Total        int64   `json:"total"`
		Successful   int64   `json:"successful"`
		Failed       int64   `json:"failed"`
		AvgLatencyMs float64 `json:"avg_latency_ms"`
	} `json:"requests"`

	Analyses struct {
		Started      int64   `json:"started"`
		Succeeded    int64   `json:"succeeded"`
		Failed       int64   `json:"failed"`
		Stale        int64   `json:"stale"`
		Rejected     int64   `json:"rejected"`
		AvgLatencyMs float64 `json:"avg_latency_ms"`
	} `json:"analyses"`

	Feedback struct {
		Sent       int64 `json:"sent"`
		Failed     int64 `json:"failed"`
		Rejected   int64 `json:"rejected"`
		Reanalyses int64 `json:"reanalyses"`
	} `json:"feedback"`

	Drafts      int64 `json:"drafts_added"`
	Exports     int64 `json:"exports"`
	Suggestions int64 `json:"suggestion_fetches"`

	WebSocket struct {
		Connections int64 `json:"connections"`
		MessagesIn  int64 `json:"messages_in"`
		MessagesOut int64 `json:"messages_out"`
	} `json:"websocket"`

	System struct {
		Goroutines  int    `json:"goroutines"`
		HeapAllocMB uint64 `json:"heap_alloc_mb"`
		HeapInUseMB uint64 `json:"heap_in_use_mb"`
		NumGC       uint32 `json:"num_gc"`
	} `json:"system"`

	Endpoints map[string]EndpointMetricsSnapshot `json:"endpoints,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	s := MetricsSnapshot{}
	s.UptimeSeconds = time.Since(m.StartTime).Seconds()
	s.StartTime = m.StartTime.Format(time.RFC3339)

	s.Requests.Total = atomic.LoadInt64(&m.TotalRequests)
	s.Requests.Successful = atomic.LoadInt64(&m.SuccessfulRequests)
	s.Requests.Failed = atomic.LoadInt64(&m.FailedRequests)
	if s.Requests.Total > 0 {
		s.Requests.AvgLatencyMs = float64(atomic.LoadInt64(&m.TotalLatency)) / float64(s.Requests.Total)
	}

	s.Analyses.Started = atomic.LoadInt64(&m.AnalysesStarted)
	s.Analyses.Succeeded = atomic.LoadInt64(&m.AnalysesSucceeded)
	s.Analyses.Failed = atomic.LoadInt64(&m.AnalysesFailed)
	s.Analyses.Stale = atomic.LoadInt64(&m.AnalysesStale)
	s.Analyses.Rejected = atomic.LoadInt64(&m.AnalysesRejected)
	if finished := s.Analyses.Succeeded + s.Analyses.Failed; finished > 0 {
		s.Analyses.AvgLatencyMs = float64(atomic.LoadInt64(&m.AnalysisLatency)) / float64(finished)
	}

	s.Feedback.Sent = atomic.LoadInt64(&m.FeedbackSent)
	s.Feedback.Failed = atomic.LoadInt64(&m.FeedbackFailed)
	s.Feedback.Rejected = atomic.LoadInt64(&m.FeedbackRejected)
	s.Feedback.Reanalyses = atomic.LoadInt64(&m.Reanalyses)

	s.Drafts = atomic.LoadInt64(&m.DraftsAdded)
	s.Exports = atomic.LoadInt64(&m.ExportsWritten)
	s.Suggestions = atomic.LoadInt64(&m.SuggestFetches)

	s.WebSocket.Connections = atomic.LoadInt64(&m.WSConnections)
	s.WebSocket.MessagesIn = atomic.LoadInt64(&m.WSMessagesIn)
	s.WebSocket.MessagesOut = atomic.LoadInt64(&m.WSMessagesOut)

	s.System.Goroutines = runtime.NumGoroutine()
	s.System.HeapAllocMB = memStats.HeapAlloc / 1024 / 1024
	s.System.HeapInUseMB = memStats.HeapInuse / 1024 / 1024
	s.System.NumGC = memStats.NumGC

	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.EndpointMetrics) > 0 {
		s.Endpoints = make(map[string]EndpointMetricsSnapshot, len(m.EndpointMetrics))
		for k, v := range m.EndpointMetrics {
			em := EndpointMetricsSnapshot{
				Requests: atomic.LoadInt64(&v.Requests),
				Errors:   atomic.LoadInt64(&v.Errors),
			}
			if em.Requests > 0 {
				em.ErrorRate = float64(em.Errors) / float64(em.Requests) * 100
				em.AvgLatencyMs = float64(atomic.LoadInt64(&v.TotalLatency)) / float64(em.Requests)
			}
			s.Endpoints[k] = em
		}
	}

	return s
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status  string `json:"status"` // "healthy", "degraded", "unhealthy", "disabled"
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     string                  `json:"status"`
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Timestamp  string                  `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
}

// CheckDatabaseHealth checks the history database; a nil db means history is disabled
func CheckDatabaseHealth(db *sql.DB) HealthStatus {
	if db == nil {
		return HealthStatus{Status: "disabled", Message: "history database not configured"}
	}

	start := time.Now()
	err := db.Ping()
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return HealthStatus{Status: "unhealthy", Message: err.Error(), Latency: latency}
	}
	if latency > 100 {
		return HealthStatus{Status: "degraded", Message: "high latency", Latency: latency}
	}
	return HealthStatus{Status: "healthy", Latency: latency}
}

// CheckAnalysisHealth degrades when most backend calls fail
func (m *Metrics) CheckAnalysisHealth() HealthStatus {
	failed := atomic.LoadInt64(&m.AnalysesFailed)
	total := atomic.LoadInt64(&m.AnalysesSucceeded) + failed
	if total >= 5 && float64(failed)/float64(total) > 0.5 {
		return HealthStatus{Status: "degraded", Message: "high analysis failure rate"}
	}
	return HealthStatus{Status: "healthy"}
}

// DetermineOverallStatus determines overall health from component statuses
func DetermineOverallStatus(components map[string]HealthStatus) string {
	hasUnhealthy := false
	hasDegraded := false

	for _, status := range components {
		switch status.Status {
		case "unhealthy":
			hasUnhealthy = true
		case "degraded":
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return "unhealthy"
	}
	if hasDegraded {
		return "degraded"
	}
	return "healthy"
}

package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the service records.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Library generation
	LibraryRunsTotal      CounterVec
	LibraryRunDuration    HistogramVec
	LibraryStructures     HistogramVec
	CanonicalizationTotal CounterVec

	// Infrastructure
	CacheHitsTotal         CounterVec
	CacheMissesTotal       CounterVec
	MessagesProcessedTotal CounterVec
	ArtifactUploadDuration HistogramVec

	// Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultRunDurationBuckets  = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300}
	DefaultStructureBuckets    = []float64{1, 10, 50, 100, 500, 1000, 5000, 10000, 100000}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.LibraryRunsTotal = collector.RegisterCounter("library_runs_total", "Library generation runs", "source", "status")
	m.LibraryRunDuration = collector.RegisterHistogram("library_run_duration_seconds", "Library generation duration", DefaultRunDurationBuckets, "source")
	m.LibraryStructures = collector.RegisterHistogram("library_structures", "Unique structures per library", DefaultStructureBuckets)
	m.CanonicalizationTotal = collector.RegisterCounter("canonicalizations_total", "Standalone canonicalization requests", "status")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Molecule cache hits", "operation")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Molecule cache misses", "operation")
	m.MessagesProcessedTotal = collector.RegisterCounter("messages_processed_total", "Consumed library requests", "status")
	m.ArtifactUploadDuration = collector.RegisterHistogram("artifact_upload_duration_seconds", "Object storage upload duration", DefaultHTTPDurationBuckets)

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_code")

	return m
}

// TrackActive counts a request as in flight until done is called.
func (m *AppMetrics) TrackActive(method string) (done func()) {
	g := m.HTTPActiveRequests.WithLabelValues(method)
	g.Inc()
	return g.Dec
}

// RecordHTTPRequest records one finished request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordRun records a finished library run.  source is "cli", "http" or
// "worker".
func (m *AppMetrics) RecordRun(source string, succeeded bool, d time.Duration, structures int) {
	status := "succeeded"
	if !succeeded {
		status = "failed"
	}
	m.LibraryRunsTotal.WithLabelValues(source, status).Inc()
	m.LibraryRunDuration.WithLabelValues(source).Observe(d.Seconds())
	if succeeded {
		m.LibraryStructures.WithLabelValues().Observe(float64(structures))
	}
}

// RecordCanonicalization counts one standalone canonicalization.
func (m *AppMetrics) RecordCanonicalization(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.CanonicalizationTotal.WithLabelValues(status).Inc()
}

// ObserveUpload records one artifact upload.
func (m *AppMetrics) ObserveUpload(d time.Duration) {
	m.ArtifactUploadDuration.WithLabelValues().Observe(d.Seconds())
}

// CacheHit and CacheMiss make AppMetrics a cache observer.
func (m *AppMetrics) CacheHit(op string)  { m.CacheHitsTotal.WithLabelValues(op).Inc() }
func (m *AppMetrics) CacheMiss(op string) { m.CacheMissesTotal.WithLabelValues(op).Inc() }

// RecordMessage counts one consumed request by outcome.
func (m *AppMetrics) RecordMessage(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.MessagesProcessedTotal.WithLabelValues(status).Inc()
}

// SetHealth publishes a component's health.
func (m *AppMetrics) SetHealth(component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

// RecordError counts an error by component and error code.
func (m *AppMetrics) RecordError(component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}

//Personal.AI order the ending

package observability

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/chargeback-backend/internal/platform/envutil"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

// Metrics is a small Prometheus text-format registry. Every method is a no-op
// on a nil receiver so callers never need to check whether metrics are on.
type Metrics struct {
	apiRequests    *CounterVec
	apiLatency     *HistogramVec
	apiInflight    *Gauge
	remoteRequests *CounterVec
	remoteLatency  *HistogramVec
	chargebacks    *CounterVec
	screenshots    *Counter
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("metrics enabled", "path", "/metrics")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("cb_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"cb_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight:    NewGauge("cb_api_inflight_requests", "In-flight API requests."),
		remoteRequests: NewCounterVec("cb_remote_requests_total", "Outbound calls by service/status.", []string{"service", "status"}),
		remoteLatency: NewHistogramVec(
			"cb_remote_request_duration_seconds",
			"Outbound call latency in seconds by service.",
			[]string{"service"},
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		chargebacks: NewCounterVec("cb_chargebacks_generated_total", "Chargeback generations by outcome.", []string{"status"}),
		screenshots: NewCounter("cb_screenshots_uploaded_total", "Screenshot files accepted for a fill."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.remoteRequests, m.remoteLatency,
		m.chargebacks, m.screenshots,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveRemote records one call to woocommerce, docs, drive or gcs.
func (m *Metrics) ObserveRemote(service, status string, dur time.Duration) {
	if m == nil {
		return
	}
	service = strings.TrimSpace(service)
	if service == "" {
		service = "unknown"
	}
	m.remoteRequests.Inc(service, status)
	m.remoteLatency.Observe(dur.Seconds(), service)
}

func (m *Metrics) IncChargeback(status string) {
	if m == nil {
		return
	}
	m.chargebacks.Inc(status)
}

func (m *Metrics) AddScreenshots(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.screenshots.Add(float64(n))
}

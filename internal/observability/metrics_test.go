package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Second)
	m.ObserveRemote("docs", "200", time.Second)
	m.IncChargeback("generated")
	m.ApiInflightInc()
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil write: %v", err)
	}
}

func TestWritePrometheusText(t *testing.T) {
	m := newMetrics()
	m.ObserveAPI("POST", "/api/chargebacks", "201", 300*time.Millisecond)
	m.ObserveRemote("woocommerce", "404", 40*time.Millisecond)
	m.IncChargeback("generated")
	m.AddScreenshots(2)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`cb_api_requests_total{method="POST",route="/api/chargebacks",status="201"} 1.000000`,
		`cb_api_request_duration_seconds_bucket{method="POST",route="/api/chargebacks",status="201",le="0.5"} 1`,
		`cb_api_request_duration_seconds_bucket{method="POST",route="/api/chargebacks",status="201",le="0.25"} 0`,
		`cb_remote_requests_total{service="woocommerce",status="404"} 1.000000`,
		`cb_chargebacks_generated_total{status="generated"} 1.000000`,
		`cb_screenshots_uploaded_total 2.000000`,
		"# TYPE cb_api_inflight_requests gauge",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"route"}, []string{`a"b\c`})
	if got != `{route="a\"b\\c"}` {
		t.Fatalf("got=%s", got)
	}
}

package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	marketauth "github.com/quayside/marketauth"
)

type fakeSource struct {
	snapshot      marketauth.MetricsSnapshot
	dropped       uint64
	writeFailures uint64
}

func (f *fakeSource) MetricsSnapshot() marketauth.MetricsSnapshot {
	return f.snapshot
}

func (f *fakeSource) AuditDropped() uint64 {
	return f.dropped
}

func (f *fakeSource) AuditWriteFailures() uint64 {
	return f.writeFailures
}

func TestRenderCountersAndHistogram(t *testing.T) {
	src := &fakeSource{
		snapshot: marketauth.MetricsSnapshot{
			Counters: map[marketauth.MetricID]uint64{
				marketauth.MetricLoginSuccess:   7,
				marketauth.MetricRefreshSuccess: 2,
			},
			Histograms: map[marketauth.MetricID][]uint64{
				marketauth.MetricVerifyLatency: {4, 1, 0, 0, 0, 0, 0, 0},
			},
		},
		dropped:       3,
		writeFailures: 1,
	}

	out := NewPrometheusExporterFromSource(src).Render()

	for _, want := range []string{
		"marketauth_login_success_total 7",
		"marketauth_refresh_success_total 2",
		"marketauth_logout_total 0",
		`marketauth_verify_latency_seconds_bucket{le="0.005"} 4`,
		`marketauth_verify_latency_seconds_bucket{le="0.01"} 5`,
		`marketauth_verify_latency_seconds_bucket{le="+Inf"} 5`,
		"marketauth_verify_latency_seconds_count 5",
		"marketauth_audit_dropped_total 3",
		"marketauth_audit_write_failures_total 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected rendered output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRenderEmptySource(t *testing.T) {
	src := &fakeSource{
		snapshot: marketauth.MetricsSnapshot{
			Counters:   map[marketauth.MetricID]uint64{},
			Histograms: map[marketauth.MetricID][]uint64{},
		},
	}
	if out := NewPrometheusExporterFromSource(src).Render(); out != "" {
		t.Fatalf("expected empty render, got:\n%s", out)
	}

	var nilExporter *PrometheusExporter
	if out := nilExporter.Render(); out != "" {
		t.Fatalf("expected empty render from nil exporter, got %q", out)
	}
}

func TestHandlerServesTextFormat(t *testing.T) {
	src := &fakeSource{
		snapshot: marketauth.MetricsSnapshot{
			Counters: map[marketauth.MetricID]uint64{
				marketauth.MetricSessionCreated: 1,
			},
			Histograms: map[marketauth.MetricID][]uint64{},
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	NewPrometheusExporterFromSource(src).Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.Contains(rec.Body.String(), "marketauth_session_created_total 1") {
		t.Fatalf("expected session counter in body, got:\n%s", rec.Body.String())
	}
}

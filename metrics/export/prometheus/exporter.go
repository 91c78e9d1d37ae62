package prometheus

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	marketauth "github.com/quayside/marketauth"
	"github.com/quayside/marketauth/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() marketauth.MetricsSnapshot
	AuditDropped() uint64
	AuditWriteFailures() uint64
}

// PrometheusExporter renders marketauth metrics in Prometheus text exposition format.
//
// PrometheusExporter instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter creates a Prometheus exporter that reads from the given [marketauth.Engine].
//
// NewPrometheusExporter may return an error when input validation, dependency calls, or security checks fail.
// NewPrometheusExporter does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewPrometheusExporter(engine *marketauth.Engine) *PrometheusExporter {
	return &PrometheusExporter{source: engine}
}

// NewPrometheusExporterFromSource creates a Prometheus exporter from a custom
// metrics source.
//
// NewPrometheusExporterFromSource does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler returns an http.Handler that serves Prometheus metrics.
//
// Handler does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render writes the current metrics in Prometheus text exposition format.
//
// Render does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	writeFailures := p.source.AuditWriteFailures()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 && writeFailures == 0 {
		return ""
	}

	w := newExpositionWriter()

	for _, def := range internaldefs.CounterDefs {
		w.counter(def.Name, def.Help, snapshot.Counters[def.ID])
	}

	for _, def := range internaldefs.HistogramDefs {
		nonCumulative := internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID])
		w.histogram(def.Name, def.Help, internaldefs.CumulativeBuckets(nonCumulative))
	}

	w.counter("marketauth_audit_dropped_total", "Dropped audit events due to dispatcher backpressure.", dropped)
	w.counter("marketauth_audit_write_failures_total", "Audit log writes swallowed after backend errors.", writeFailures)

	return w.String()
}

type expositionWriter struct {
	strings.Builder
}

func newExpositionWriter() *expositionWriter {
	w := &expositionWriter{}
	w.Grow(8192)
	return w
}

func (w *expositionWriter) header(name, help, kind string) {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

func (w *expositionWriter) sample(name string, value uint64) {
	w.WriteString(name)
	w.WriteByte(' ')
	w.WriteString(strconv.FormatUint(value, 10))
	w.WriteByte('\n')
}

func (w *expositionWriter) counter(name, help string, value uint64) {
	w.header(name, help, "counter")
	w.sample(name, value)
}

func (w *expositionWriter) histogram(name, help string, cumulative [8]uint64) {
	w.header(name, help, "histogram")

	for i, le := range internaldefs.HistogramBounds {
		w.sample(name+`_bucket{le="`+le+`"}`, cumulative[i])
	}
	w.sample(name+"_count", cumulative[len(cumulative)-1])

	// Sum is not available in core snapshots; keep a stable field for compatibility.
	w.sample(name+"_sum", 0)
}

// Package prometheus provides Prometheus collectors for marketauth metrics.
//
// [NewPrometheusExporter] accepts a [marketauth.Engine] and exposes an [http.Handler]
// that renders all marketauth counters and histograms in Prometheus text exposition
// format. Counter names are prefixed marketauth_*_total; the single histogram is
// marketauth_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus

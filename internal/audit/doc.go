// Package audit implements the append-only security event trail.
//
// Events flow from the Engine through an asynchronous [Dispatcher] into a
// [Sink]. The dispatcher is fire-and-forget by design: a full buffer or a
// failing sink must never fail the authentication operation that produced
// the event. Dropped events and failed writes are counted so an exporter
// can surface the observability gap.
//
// [Store] is the default sink: a Redis sorted set scored by event time,
// which makes retention purges a single range deletion.
package audit

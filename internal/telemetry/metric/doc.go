// Package metric exposes Prometheus instrumentation for scand.
//
// A Registry bundles the counters, gauges, and histograms the device
// service and servers update. Handler serves the standard Prometheus
// text exposition on the observability endpoint.
package metric

// Package metric provides Prometheus metrics for tracklink.
//
// The device has no HTTP surface, so metrics are not scraped. Instead the
// registry is written periodically to a node-exporter textfile:
//
//   - prometheus.go: registry and device metrics
//   - textfile.go: periodic textfile export
//   - snapshot.go: reading an exported textfile back
//
// Metrics include supervisor phase, pairing outcomes, SMS traffic, battery
// level and task lifecycle counters.
package metric

// Package metrics counts what a dupicheck run did using Prometheus
// collectors on a private registry. The CLI is short-lived, so metrics are
// exported by writing a textfile for node_exporter instead of serving them.
package metrics

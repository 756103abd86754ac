// Package metrics defines the Prometheus metrics exported by the
// thumbnail cache: lookup outcomes, backend generation attempts and
// durations, fail-marker writes, and HTTP metrics for the serve daemon.
package metrics

// Package workers sizes the worker pool for batch thumbnail
// generation.
//
// The size derives from GOMAXPROCS so container CPU limits are
// respected (Go 1.19+ sets GOMAXPROCS from cgroup limits, unlike
// runtime.NumCPU which reports the host). The THUMBNAIL_WORKERS
// environment variable overrides the calculation.
package workers

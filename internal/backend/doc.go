// Package backend holds the pluggable thumbnail generation strategies
// and the registry that dispatches among them.
//
// A Backend declares the mime types it handles and whether its runtime
// dependency is currently present; the registry picks the first
// supporting, available backend in registration order. Availability is
// probed on every dispatch so external tools appearing or disappearing
// mid-process are observed, with probe results memoized only within a
// single request.
package backend

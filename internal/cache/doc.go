// Package cache is the thumbnail cache engine: lookup, validity
// checking, generate-on-miss through the backend registry, pushing
// externally produced thumbnails, and fail-marker bookkeeping.
//
// The cache root is shared mutable state written by arbitrary unrelated
// processes. Every write goes through a same-directory temp file and an
// atomic rename; there is no locking and no de-duplication of concurrent
// generation, so two processes racing on the same key both succeed and
// the last rename wins.
package cache

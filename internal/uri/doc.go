// Package uri normalizes source identifiers into the canonical URI form
// used as hash input for cache key derivation.
//
// Local paths become file:// URIs with percent-encoded paths; strings that
// already carry a URI scheme pass through untouched. The encoding must be
// byte-for-byte stable because every application sharing the cache derives
// the same key from the same source.
package uri

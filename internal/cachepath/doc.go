// Package cachepath derives cache keys from canonical URIs and maps
// (key, size class) pairs to concrete file locations under the shared
// thumbnail cache root.
//
// All functions except DefaultRoot are pure path math: no filesystem
// access, no per-machine salt, stable across restarts and across hosts.
package cachepath

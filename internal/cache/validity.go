package cache

import (
	"errors"
	"strconv"

	"thumbcache/internal/logging"
	"thumbcache/internal/metrics"
	"thumbcache/internal/pngmeta"
)

// Validate reports whether the cache entry at path is still fresh for a
// source identified by canonicalURI whose current modification time is
// mtime (whole seconds).
//
// The mtime equality check is authoritative. currentSize adds a
// best-effort cross-check against the stored Thumb::Size field, guarding
// against distinct contents sharing one mtime second; pass -1 when the
// current size is unknown. A missing or corrupt entry is invalid, never
// an error.
func Validate(path, canonicalURI string, mtime int64, currentSize int64) bool {
	fields, err := pngmeta.Read(path)
	if err != nil {
		if errors.Is(err, pngmeta.ErrCorrupt) {
			logging.Debug("corrupt cache entry %s: %v", path, err)
		}
		return false
	}
	return fieldsValid(fields, canonicalURI, mtime, currentSize)
}

func fieldsValid(fields pngmeta.Fields, canonicalURI string, mtime int64, currentSize int64) bool {
	if fields[pngmeta.KeyURI] != canonicalURI {
		return false
	}

	stored, err := strconv.ParseInt(fields[pngmeta.KeyMTime], 10, 64)
	if err != nil || stored != mtime {
		return false
	}

	if currentSize >= 0 {
		if raw, ok := fields[pngmeta.KeySize]; ok {
			storedSize, err := strconv.ParseInt(raw, 10, 64)
			if err == nil && storedSize != currentSize {
				return false
			}
		}
	}
	return true
}

// checkEntry is Validate plus lookup metrics, used on the hot path.
func (c *Cache) checkEntry(path, canonicalURI string, mtime int64, currentSize int64) bool {
	fields, err := pngmeta.Read(path)
	switch {
	case err == nil:
	case errors.Is(err, pngmeta.ErrCorrupt):
		// self-healing: a corrupt entry is a miss and regeneration will
		// overwrite it
		logging.Debug("corrupt cache entry %s: %v", path, err)
		metrics.LookupsTotal.WithLabelValues("corrupt").Inc()
		return false
	default:
		metrics.LookupsTotal.WithLabelValues("miss").Inc()
		return false
	}

	if fieldsValid(fields, canonicalURI, mtime, currentSize) {
		metrics.LookupsTotal.WithLabelValues("hit").Inc()
		return true
	}
	metrics.LookupsTotal.WithLabelValues("stale").Inc()
	return false
}

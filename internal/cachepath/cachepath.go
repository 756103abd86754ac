package cachepath

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Size is one of the fixed thumbnail size classes. Each class maps to a
// maximum pixel dimension and a distinct subdirectory of the cache root.
type Size int

const (
	// Normal is the 128x128 size class.
	Normal Size = iota
	// Large is the 256x256 size class.
	Large
	// XLarge is the 512x512 size class.
	XLarge
	// XXLarge is the 1024x1024 size class.
	XXLarge
)

var sizeDirs = [...]string{"normal", "large", "x-large", "xx-large"}
var sizePixels = [...]int{128, 256, 512, 1024}

// Dir returns the cache subdirectory name for the size class.
func (s Size) Dir() string {
	return sizeDirs[s]
}

// Pixels returns the maximum thumbnail dimension for the size class.
func (s Size) Pixels() int {
	return sizePixels[s]
}

// String returns the subdirectory name, which doubles as the class name.
func (s Size) String() string {
	return s.Dir()
}

// All returns the size classes in ascending pixel order.
func All() []Size {
	return []Size{Normal, Large, XLarge, XXLarge}
}

// LargestFirst returns the size classes in descending pixel order, the
// preference order used when looking up a thumbnail of unspecified size.
func LargestFirst() []Size {
	return []Size{XXLarge, XLarge, Large, Normal}
}

// ParseSize resolves a size class from its name ("normal", "large",
// "x-large", "xx-large") or its pixel dimension ("128" .. "1024").
func ParseSize(s string) (Size, error) {
	for _, size := range All() {
		if s == size.Dir() || s == fmt.Sprintf("%d", size.Pixels()) {
			return size, nil
		}
	}
	return Normal, fmt.Errorf("unsupported thumbnail size: %q", s)
}

// Key derives the cache key for a canonical URI: the lowercase hex md5 of
// its UTF-8 bytes. md5 is fixed by the shared on-disk contract; every
// application writing this cache must produce identical names for
// identical URIs.
func Key(canonicalURI string) string {
	sum := md5.Sum([]byte(canonicalURI))
	return hex.EncodeToString(sum[:])
}

// ThumbnailPath returns the location of the thumbnail for (key, size)
// under root. The file may or may not exist.
func ThumbnailPath(root, key string, size Size) string {
	return filepath.Join(root, size.Dir(), key+".png")
}

// FailPath returns the location of the fail-marker written by appID for
// key under root.
func FailPath(root, appID, key string) string {
	return filepath.Join(root, "fail", appID, key+".png")
}

// SizeDir returns the directory holding all thumbnails of a size class.
func SizeDir(root string, size Size) string {
	return filepath.Join(root, size.Dir())
}

// FailDir returns the directory holding appID's fail-markers.
func FailDir(root, appID string) string {
	return filepath.Join(root, "fail", appID)
}

// DefaultRoot resolves the shared cache root: THUMBNAIL_CACHE_DIR if set,
// otherwise $XDG_CACHE_HOME/thumbnails, otherwise ~/.cache/thumbnails.
func DefaultRoot() string {
	if dir := os.Getenv("THUMBNAIL_CACHE_DIR"); dir != "" {
		return filepath.Clean(dir)
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(filepath.Clean(dir), "thumbnails")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Last resort; a relative root still works for single-tool use.
		home = "."
	}
	return filepath.Join(home, ".cache", "thumbnails")
}

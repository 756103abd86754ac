package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"thumbcache/internal/backend"
	"thumbcache/internal/cachepath"
	"thumbcache/internal/logging"
	"thumbcache/internal/mediatypes"
	"thumbcache/internal/metrics"
	"thumbcache/internal/pngmeta"
	"thumbcache/internal/uri"
)

// Sentinels re-exported from the dispatcher plus the engine's own.
var (
	ErrInvalidSource    = backend.ErrInvalidSource
	ErrNoCapableBackend = backend.ErrNoCapableBackend
	ErrGenerationFailed = backend.ErrGenerationFailed

	// ErrPreviouslyFailed reports that this application already recorded
	// a failure for the source at its current modification time; the
	// caller should not retry until the source changes.
	ErrPreviouslyFailed = errors.New("thumbnail generation previously failed for this source state")
)

// DetectFunc resolves the mime type of a local file.
type DetectFunc func(path string) (string, error)

// Cache is the engine over one shared cache root. Safe for concurrent
// use from multiple goroutines and, by construction of its writes, from
// multiple processes.
type Cache struct {
	root     string
	appID    string
	registry *backend.Registry
	detect   DetectFunc
}

// New creates a Cache over root. appID names this application in
// Software fields and the fail-marker namespace. A nil detect falls back
// to the built-in magic-byte detector.
func New(root, appID string, registry *backend.Registry, detect DetectFunc) *Cache {
	if detect == nil {
		detect = mediatypes.Detect
	}
	logging.Debug("cache engine: root=%s appID=%s backends=%v", root, appID, registry.Names())
	return &Cache{
		root:     root,
		appID:    appID,
		registry: registry,
		detect:   detect,
	}
}

// Root returns the cache root directory.
func (c *Cache) Root() string { return c.root }

// AppID returns the application identifier used for fail-markers.
func (c *Cache) AppID() string { return c.appID }

// SourceMTime returns the modification time of a local source file,
// truncated to whole seconds as the staleness rule requires.
func (c *Cache) SourceMTime(src string) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	return info.ModTime().Unix(), nil
}

// BuildThumbnailPath returns where the thumbnail for (src, size) lives,
// whether or not it exists. A src that is itself a thumbnail in that
// size class maps to itself.
func (c *Cache) BuildThumbnailPath(src string, size cachepath.Size) string {
	dir := cachepath.SizeDir(c.root, size)
	if strings.HasPrefix(src, dir+string(os.PathSeparator)) {
		return src
	}
	return cachepath.ThumbnailPath(c.root, cachepath.Key(uri.Canonical(src)), size)
}

// TryGetThumbnail returns the path of a valid cached thumbnail for src
// at the given source mtime, or "" when none exists. With no explicit
// sizes the size classes are searched largest first.
func (c *Cache) TryGetThumbnail(src string, mtime int64, sizes ...cachepath.Size) string {
	if len(sizes) == 0 {
		sizes = cachepath.LargestFirst()
	}
	canon := uri.Canonical(src)

	for _, size := range sizes {
		thumb := c.BuildThumbnailPath(src, size)
		if thumb == src {
			// src is already a thumbnail; its URI field records the
			// original source, so the usual check cannot apply.
			return src
		}
		if c.checkEntry(thumb, canon, mtime, -1) {
			return thumb
		}
	}
	return ""
}

// GetThumbnail returns a valid thumbnail path for a local source file,
// generating and caching one if needed. A fail-marker previously
// recorded by this application for the current source state short
// circuits to ErrPreviouslyFailed.
func (c *Cache) GetThumbnail(ctx context.Context, src string, size cachepath.Size) (string, error) {
	mtime, err := c.SourceMTime(src)
	if err != nil {
		return "", err
	}

	if thumb := c.TryGetThumbnail(src, mtime, size); thumb != "" {
		return thumb, nil
	}
	if c.IsFailed(src, mtime) {
		return "", fmt.Errorf("%w (app %s)", ErrPreviouslyFailed, c.appID)
	}
	return c.CreateThumbnail(ctx, src, size, true)
}

// CreateThumbnail generates a thumbnail for a local source file through
// the backend registry and caches it, replacing any existing entry. When
// recordFail is set, a generation failure or missing backend writes a
// fail-marker before the error is returned.
func (c *Cache) CreateThumbnail(ctx context.Context, src string, size cachepath.Size, recordFail bool) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	canon := uri.Canonical(src)
	mtime := info.ModTime().Unix()

	mime, derr := c.detect(src)
	if derr != nil {
		logging.Debug("mime detection issue for %s: %v (using %s)", src, derr, mime)
	}

	result, err := c.registry.DispatchAll(ctx, src, mime, size.Pixels())
	if err != nil {
		if recordFail && (errors.Is(err, ErrNoCapableBackend) || errors.Is(err, ErrGenerationFailed)) {
			if _, ferr := c.PutFail(src, mtime, nil); ferr != nil {
				logging.Warn("failed to record fail-marker for %s: %v", src, ferr)
			}
		}
		return "", err
	}

	fields := pngmeta.Fields{
		pngmeta.KeyURI:      canon,
		pngmeta.KeyMTime:    strconv.FormatInt(mtime, 10),
		pngmeta.KeySize:     strconv.FormatInt(info.Size(), 10),
		pngmeta.KeyMime:     mime,
		pngmeta.KeySoftware: c.appID,
	}
	if result.SourceWidth > 0 && result.SourceHeight > 0 {
		fields[pngmeta.KeyWidth] = strconv.Itoa(result.SourceWidth)
		fields[pngmeta.KeyHeight] = strconv.Itoa(result.SourceHeight)
	}
	for k, v := range result.Extra {
		if _, taken := fields[k]; !taken {
			fields[k] = v
		}
	}

	dest := cachepath.ThumbnailPath(c.root, cachepath.Key(canon), size)
	if err := ensureDir(cachepath.SizeDir(c.root, size)); err != nil {
		return "", err
	}
	if err := pngmeta.Write(dest, result.Image, fields); err != nil {
		return "", err
	}

	metrics.WritesTotal.WithLabelValues(size.Dir()).Inc()
	logging.Debug("thumbnail cached: %s", dest)
	return dest, nil
}

// PutThumbnail pushes a thumbnail the application produced itself (for
// non-image or non-local sources) into the cache. The file at thumbPath
// is consumed: it is stamped with the mandatory metadata and renamed
// into its final location. extra fields override the defaults.
func (c *Cache) PutThumbnail(src string, size cachepath.Size, thumbPath string, mtime int64, extra pngmeta.Fields) (string, error) {
	dest := c.BuildThumbnailPath(src, size)
	destDir := filepath.Dir(dest)
	if err := ensureDir(destDir); err != nil {
		return "", err
	}

	// Stage the pushed file next to its destination so the final rename
	// stays atomic regardless of where the caller built it. restore puts
	// the caller's file back if stamping fails, so a bad push never
	// destroys the only copy.
	var tmp string
	var restore func()
	switch {
	case thumbPath == dest:
		t, err := pngmeta.CreateTemp(destDir)
		if err != nil {
			return "", err
		}
		if err := os.Rename(dest, t); err != nil {
			os.Remove(t)
			return "", fmt.Errorf("failed to stage %s: %w", dest, err)
		}
		tmp = t
		restore = func() {
			if err := os.Rename(tmp, dest); err != nil {
				logging.Warn("failed to restore %s after rewrite error: %v", dest, err)
			}
		}
	case filepath.Dir(thumbPath) == destDir:
		tmp = thumbPath
		restore = func() {} // the caller's file is still in place at thumbPath
	default:
		t, err := pngmeta.CreateTemp(destDir)
		if err != nil {
			return "", err
		}
		if err := moveFile(thumbPath, t); err != nil {
			os.Remove(t)
			return "", err
		}
		tmp = t
		restore = func() {
			if err := moveFile(tmp, thumbPath); err != nil {
				logging.Warn("failed to restore %s after rewrite error: %v", thumbPath, err)
			}
		}
	}

	fields := c.stampFields(src, mtime, extra)
	if err := pngmeta.Rewrite(tmp, dest, fields); err != nil {
		restore()
		return "", err
	}
	os.Remove(tmp)

	metrics.WritesTotal.WithLabelValues(size.Dir()).Inc()
	return dest, nil
}

// PutFail records that this application attempted and failed to produce
// a thumbnail for src at the given source mtime. The marker expires as
// soon as the source's mtime changes.
func (c *Cache) PutFail(src string, mtime int64, extra pngmeta.Fields) (string, error) {
	if err := ensureDir(cachepath.FailDir(c.root, c.appID)); err != nil {
		return "", err
	}

	dest := cachepath.FailPath(c.root, c.appID, cachepath.Key(uri.Canonical(src)))
	if err := pngmeta.WriteFail(dest, c.stampFields(src, mtime, extra)); err != nil {
		return "", err
	}

	metrics.FailMarkersTotal.Inc()
	logging.Debug("fail-marker recorded: %s", dest)
	return dest, nil
}

// IsFailed reports whether this application recorded a still-valid
// fail-marker for src at the given source mtime.
func (c *Cache) IsFailed(src string, mtime int64) bool {
	marker := cachepath.FailPath(c.root, c.appID, cachepath.Key(uri.Canonical(src)))
	return Validate(marker, uri.Canonical(src), mtime, -1)
}

// CreateTemp returns a fresh mode-0600 temp file inside the size-class
// directory, for callers producing thumbnails themselves ahead of
// PutThumbnail.
func (c *Cache) CreateTemp(size cachepath.Size) (string, error) {
	dir := cachepath.SizeDir(c.root, size)
	if err := ensureDir(dir); err != nil {
		return "", err
	}
	return pngmeta.CreateTemp(dir)
}

// EnsureDirs provisions the cache root and every size-class directory
// plus this application's fail namespace.
func (c *Cache) EnsureDirs() error {
	for _, size := range cachepath.All() {
		if err := ensureDir(cachepath.SizeDir(c.root, size)); err != nil {
			return err
		}
	}
	return ensureDir(cachepath.FailDir(c.root, c.appID))
}

// stampFields builds the mandatory metadata for src, letting extra
// override any default.
func (c *Cache) stampFields(src string, mtime int64, extra pngmeta.Fields) pngmeta.Fields {
	fields := pngmeta.Fields{
		pngmeta.KeyURI:      uri.Canonical(src),
		pngmeta.KeyMTime:    strconv.FormatInt(mtime, 10),
		pngmeta.KeySoftware: c.appID,
	}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}

// ensureDir creates dir with owner-only permissions if it does not
// exist. Directories that already exist keep whatever mode they have;
// tightening them could break other applications sharing the cache.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return nil
}

// moveFile renames src to dest, falling back to copy-and-remove when the
// two live on different filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to move %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to move %s: %w", src, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to move %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

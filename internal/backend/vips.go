package backend

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"thumbcache/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitMutex   sync.Mutex
	vipsInitialized bool
	vipsAvailable   bool
)

// InitVips initializes libvips once per process. Call at startup before
// constructing a Vips backend; govips does not support stop/restart
// within one process.
func InitVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return
	}

	// Route libvips messages through our logger, suppressing its chatter
	// below warning unless debug logging is on.
	minLevel := vips.LogLevelWarning
	if logging.IsDebugEnabled() {
		minLevel = vips.LogLevelInfo
	}
	vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
		switch {
		case level <= vips.LogLevelError:
			logging.Error("[%s] %s", domain, msg)
		case level == vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}, minLevel)

	// Conservative memory settings; thumbnails are small and the cache
	// engine may run inside other applications.
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized (version: %s)", vips.Version)
}

// ShutdownVips releases libvips resources.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

func vipsReady() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// Vips generates image thumbnails with libvips, shrinking at decode time
// which keeps memory flat even for very large sources. It also covers
// heif/avif stills the in-process decoders cannot read.
type Vips struct{}

// NewVips returns the libvips backend.
func NewVips() *Vips {
	return &Vips{}
}

// Name implements Backend.
func (b *Vips) Name() string { return "vips" }

// Supports implements Backend. All raster image types except svg, which
// libvips only handles with optional loaders.
func (b *Vips) Supports(mime string) bool {
	return strings.HasPrefix(mime, "image/") && mime != "image/svg+xml"
}

// Available implements Backend.
func (b *Vips) Available() bool { return vipsReady() }

// Generate implements Backend.
func (b *Vips) Generate(ctx context.Context, src string, px int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref, err := vips.LoadImageFromFile(src, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("vips failed to load %s: %w", src, err)
	}
	defer ref.Close()

	origWidth := ref.Width()
	origHeight := ref.Height()

	if err := ref.Thumbnail(px, px, vips.InterestingNone); err != nil {
		return nil, fmt.Errorf("vips resize failed: %w", err)
	}

	// Export through PNG to keep alpha and convert to image.Image for
	// the codec.
	pngBytes, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, fmt.Errorf("vips export failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode vips output: %w", err)
	}

	return &Result{
		Image:        img,
		SourceWidth:  origWidth,
		SourceHeight: origHeight,
	}, nil
}

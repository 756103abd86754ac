package backend

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"thumbcache/internal/logging"
	"thumbcache/internal/mediatypes"
	"thumbcache/internal/pngmeta"

	"github.com/disintegration/imaging"
)

// FFmpeg extracts thumbnail frames by shelling out to ffmpeg. It covers
// video sources and doubles as a fallback decoder for image formats the
// in-process backends cannot read.
type FFmpeg struct {
	// Timeout bounds each ffmpeg/ffprobe invocation. Zero means the
	// package default.
	Timeout time.Duration

	run func(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error)
}

// NewFFmpeg returns the ffmpeg backend with the given per-invocation
// timeout.
func NewFFmpeg(timeout time.Duration) *FFmpeg {
	return &FFmpeg{Timeout: timeout, run: runCommand}
}

// Name implements Backend.
func (b *FFmpeg) Name() string { return "ffmpeg" }

// Supports implements Backend.
func (b *FFmpeg) Supports(mime string) bool {
	switch mediatypes.CategoryOf(mime) {
	case mediatypes.CategoryVideo:
		return true
	case mediatypes.CategoryImage:
		// fallback for formats like jxl or raw that ffmpeg may decode
		return mime != "image/svg+xml"
	}
	return false
}

// Available implements Backend.
func (b *FFmpeg) Available() bool { return commandAvailable("ffmpeg") }

// Generate implements Backend. For videos the frame one second in is
// preferred, falling back to the first frame for clips shorter than
// that. The seeked attempt can exit zero with no frames when the seek
// point is past EOF, so an empty frame triggers the fallback too.
func (b *FFmpeg) Generate(ctx context.Context, src string, px int) (*Result, error) {
	run := b.run
	if run == nil {
		run = runCommand
	}

	mime, _ := mediatypes.Detect(src)
	isVideo := mediatypes.CategoryOf(mime) == mediatypes.CategoryVideo

	var frame []byte
	var err error
	if isVideo {
		frame, err = run(ctx, b.Timeout, "ffmpeg",
			"-i", src,
			"-ss", "00:00:01",
			"-vframes", "1",
			"-f", "image2pipe",
			"-vcodec", "png",
			"-",
		)
		if err != nil || len(frame) == 0 {
			logging.Debug("ffmpeg seek extraction yielded nothing for %s (%v), retrying from start", src, err)
			frame = nil
		}
	}
	if len(frame) == 0 {
		frame, err = run(ctx, b.Timeout, "ffmpeg",
			"-i", src,
			"-vframes", "1",
			"-f", "image2pipe",
			"-vcodec", "png",
			"-",
		)
		if err != nil {
			return nil, err
		}
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", src)
	}

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}

	// The extracted frame is full size, so its bounds are the source
	// dimensions.
	bounds := img.Bounds()
	thumb := imaging.Fit(img, px, px, imaging.Lanczos)

	result := &Result{
		Image:        thumb,
		SourceWidth:  bounds.Dx(),
		SourceHeight: bounds.Dy(),
	}

	if isVideo {
		if length, ok := b.probeDuration(ctx, src); ok {
			result.Extra = map[string]string{pngmeta.KeyMovieLength: strconv.Itoa(length)}
		}
	}
	return result, nil
}

// probeDuration asks ffprobe for the stream duration in whole seconds.
// Best effort; the thumbnail is still valid without it.
func (b *FFmpeg) probeDuration(ctx context.Context, src string) (int, bool) {
	run := b.run
	if run == nil {
		run = runCommand
	}
	if !commandAvailable("ffprobe") {
		return 0, false
	}

	out, err := run(ctx, b.Timeout, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		src,
	)
	if err != nil {
		logging.Debug("ffprobe failed for %s: %v", src, err)
		return 0, false
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return int(seconds), true
}

package backend

import (
	"context"
	"fmt"
	"image"
	"os"

	"thumbcache/internal/logging"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// imagingMimes are the formats decodable in-process: stdlib decoders
// plus the x/image webp/bmp/tiff registrations above.
var imagingMimes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
}

// Imaging generates image thumbnails entirely in-process. It has no
// external dependency and is always available, which makes it the
// natural last image backend in a registry.
type Imaging struct{}

// NewImaging returns the in-process image backend.
func NewImaging() *Imaging {
	return &Imaging{}
}

// Name implements Backend.
func (b *Imaging) Name() string { return "imaging" }

// Supports implements Backend.
func (b *Imaging) Supports(mime string) bool { return imagingMimes[mime] }

// Available implements Backend. The decoder set is compiled in.
func (b *Imaging) Available() bool { return true }

// Generate implements Backend.
func (b *Imaging) Generate(ctx context.Context, src string, px int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		logging.Debug("imaging.Open failed for %s: %v, trying plain decode", src, err)
		img, err = decodeFile(src)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", src, err)
		}
	}

	bounds := img.Bounds()
	thumb := imaging.Fit(img, px, px, imaging.Lanczos)

	return &Result{
		Image:        thumb,
		SourceWidth:  bounds.Dx(),
		SourceHeight: bounds.Dy(),
	}, nil
}

func decodeFile(src string) (image.Image, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	logging.Debug("decoded %s as %s", src, format)
	return img, nil
}

package mediatypes

import (
	"os"
	"path/filepath"
	"strings"
)

// Category is the broad class of a source file, used by backends to
// declare capability by family rather than listing every mime type.
type Category string

const (
	// CategoryImage covers raster and vector image formats.
	CategoryImage Category = "image"
	// CategoryVideo covers video container formats.
	CategoryVideo Category = "video"
	// CategoryDocument covers paginated document formats.
	CategoryDocument Category = "document"
	// CategoryOther covers everything the engine cannot classify.
	CategoryOther Category = "other"
)

// MimeTypes maps lowercase file extensions to their mime types.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
	".avif": "image/avif",
	".jxl":  "image/jxl",

	// Videos
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",

	// Documents
	".pdf": "application/pdf",
}

// CategoryOf classifies a mime type.
func CategoryOf(mime string) Category {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return CategoryImage
	case strings.HasPrefix(mime, "video/"):
		return CategoryVideo
	case mime == "application/pdf":
		return CategoryDocument
	default:
		return CategoryOther
	}
}

// FromExtension returns the mime type for a path based on its extension,
// or "application/octet-stream" when unrecognized.
func FromExtension(path string) string {
	if mime, ok := MimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// Detect returns the mime type of the file at path. It sniffs the first
// bytes of the file and falls back to the extension table when the header
// is not recognized; the extension alone is used when the file cannot be
// read.
func Detect(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return FromExtension(path), err
	}
	defer f.Close()

	header := make([]byte, 32)
	n, err := f.Read(header)
	if err != nil || n == 0 {
		return FromExtension(path), nil
	}
	header = header[:n]

	if mime := Sniff(header); mime != "" {
		return mime, nil
	}
	return FromExtension(path), nil
}

// Sniff identifies well-known formats from the first bytes of a file,
// returning "" when the header is unrecognized.
func Sniff(header []byte) string {
	switch {
	case len(header) >= 3 && header[0] == 0xFF && header[1] == 0xD8 && header[2] == 0xFF:
		return "image/jpeg"

	case len(header) >= 4 && header[0] == 0x89 && header[1] == 0x50 && header[2] == 0x4E && header[3] == 0x47:
		return "image/png"

	case len(header) >= 4 && header[0] == 0x47 && header[1] == 0x49 && header[2] == 0x46 && header[3] == 0x38:
		return "image/gif"

	case len(header) >= 12 && string(header[0:4]) == "RIFF" && string(header[8:12]) == "WEBP":
		return "image/webp"

	case len(header) >= 2 && header[0] == 0x42 && header[1] == 0x4D:
		return "image/bmp"

	case len(header) >= 4 && (string(header[0:4]) == "II*\x00" || string(header[0:4]) == "MM\x00*"):
		return "image/tiff"

	case len(header) >= 12 && string(header[4:8]) == "ftyp":
		return sniffISOBMFF(string(header[8:12]))

	case len(header) >= 2 && header[0] == 0xFF && header[1] == 0x0A:
		return "image/jxl"

	case len(header) >= 12 && string(header[0:12]) == "\x00\x00\x00\x0cJXL \x0d\x0a\x87\x0a":
		return "image/jxl"

	case len(header) >= 4 && string(header[0:4]) == "\x1aE\xdf\xa3":
		// EBML header, matroska or webm
		return "video/x-matroska"

	case len(header) >= 5 && string(header[0:5]) == "%PDF-":
		return "application/pdf"
	}
	return ""
}

// sniffISOBMFF maps an ISO base media file "ftyp" brand to a mime type.
// The container is shared by heif/avif stills and mp4-family video.
func sniffISOBMFF(brand string) string {
	switch brand {
	case "heic", "heix", "hevc", "hevx", "mif1", "msf1":
		return "image/heic"
	case "avif", "avis":
		return "image/avif"
	default:
		return "video/mp4"
	}
}

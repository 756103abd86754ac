package mediatypes

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   string
	}{
		{"JPEG", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg"},
		{"PNG", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"GIF", []byte("GIF89a"), "image/gif"},
		{"WebP", []byte("RIFF\x00\x00\x00\x00WEBP"), "image/webp"},
		{"BMP", []byte{0x42, 0x4D, 0x00, 0x00}, "image/bmp"},
		{"TIFF little endian", []byte("II*\x00"), "image/tiff"},
		{"TIFF big endian", []byte("MM\x00*"), "image/tiff"},
		{"HEIC", []byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00"), "image/heic"},
		{"AVIF", []byte("\x00\x00\x00\x1cftypavif\x00\x00\x00\x00"), "image/avif"},
		{"MP4", []byte("\x00\x00\x00\x20ftypisom\x00\x00\x00\x00"), "video/mp4"},
		{"Matroska", []byte("\x1aE\xdf\xa3\x00\x00"), "video/x-matroska"},
		{"JXL codestream", []byte{0xFF, 0x0A}, "image/jxl"},
		{"PDF", []byte("%PDF-1.7"), "application/pdf"},
		{"Unknown", []byte("hello world, not an image"), ""},
		{"Empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.header); got != tt.want {
				t.Errorf("Sniff() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()

	t.Run("Magic bytes win over extension", func(t *testing.T) {
		// a png payload behind a .jpg name
		path := filepath.Join(dir, "lying.jpg")
		data := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 24)...)
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatal(err)
		}
		got, err := Detect(path)
		if err != nil {
			t.Fatal(err)
		}
		if got != "image/png" {
			t.Errorf("Detect() = %q, want image/png", got)
		}
	})

	t.Run("Extension fallback for unknown header", func(t *testing.T) {
		path := filepath.Join(dir, "plain.mkv")
		if err := os.WriteFile(path, []byte("unrecognized bytes here....."), 0o600); err != nil {
			t.Fatal(err)
		}
		got, err := Detect(path)
		if err != nil {
			t.Fatal(err)
		}
		if got != "video/x-matroska" {
			t.Errorf("Detect() = %q, want video/x-matroska", got)
		}
	})

	t.Run("Missing file reports error with extension guess", func(t *testing.T) {
		got, err := Detect(filepath.Join(dir, "missing.png"))
		if err == nil {
			t.Error("Detect(missing) expected an error")
		}
		if got != "image/png" {
			t.Errorf("Detect(missing) = %q, want image/png from extension", got)
		}
	})
}

func TestFromExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/a.JPG", "image/jpeg"},
		{"/tmp/a.webm", "video/webm"},
		{"/tmp/doc.pdf", "application/pdf"},
		{"/tmp/readme.txt", "application/octet-stream"},
		{"noext", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FromExtension(tt.path); got != tt.want {
				t.Errorf("FromExtension(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		mime string
		want Category
	}{
		{"image/jpeg", CategoryImage},
		{"image/heic", CategoryImage},
		{"video/mp4", CategoryVideo},
		{"application/pdf", CategoryDocument},
		{"application/x-foo", CategoryOther},
		{"", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			if got := CategoryOf(tt.mime); got != tt.want {
				t.Errorf("CategoryOf(%q) = %v, want %v", tt.mime, got, tt.want)
			}
		})
	}
}

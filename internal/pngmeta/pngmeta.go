package pngmeta

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Metadata field keys shared by all applications writing the cache.
const (
	// KeyURI holds the canonical URI of the source file.
	KeyURI = "Thumb::URI"
	// KeyMTime holds the source modification time in whole seconds.
	KeyMTime = "Thumb::MTime"
	// KeySize holds the source file size in bytes, best effort.
	KeySize = "Thumb::Size"
	// KeyWidth holds the width of the original source image.
	KeyWidth = "Thumb::Image::Width"
	// KeyHeight holds the height of the original source image.
	KeyHeight = "Thumb::Image::Height"
	// KeyMime holds the detected mime type of the source.
	KeyMime = "Thumb::Mimetype"
	// KeyDocPages holds the page count for document sources.
	KeyDocPages = "Thumb::Document::Pages"
	// KeyMovieLength holds the duration in seconds for video sources.
	KeyMovieLength = "Thumb::Movie::Length"
	// KeySoftware identifies the application that generated the entry.
	KeySoftware = "Software"
)

// Fields is the set of textual key/value pairs embedded in a thumbnail.
type Fields map[string]string

// ErrCorrupt reports a cache entry whose container cannot be parsed.
// Callers treat it as "entry absent", never as a hard failure.
var ErrCorrupt = errors.New("corrupt thumbnail container")

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// maxChunkLen rejects absurd chunk headers before allocating for them.
const maxChunkLen = 1 << 27

// Write encodes img as a PNG carrying fields as tEXt chunks and installs
// it at path atomically with mode 0600.
func Write(path string, img image.Image, fields Fields) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	data, err := splice(buf.Bytes(), fields)
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

// WriteFail writes a 1x1 placeholder PNG carrying fields, used as a
// fail-marker. Same atomicity and permission contract as Write.
func WriteFail(path string, fields Fields) error {
	return Write(path, image.NewRGBA(image.Rect(0, 0, 1, 1)), fields)
}

// Rewrite copies the PNG at src to dest with the given fields as its
// only tEXt content: every pre-existing tEXt chunk is dropped, whether
// or not its key appears in fields. Pixel data passes through untouched
// and is never decoded. Installation at dest is atomic.
func Rewrite(src, dest string, fields Fields) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	out, err := splice(data, fields)
	if err != nil {
		return err
	}
	return atomicWrite(dest, out)
}

// Read extracts the tEXt fields from the PNG at path without decoding
// pixel data. A missing file surfaces as fs.ErrNotExist; an unparseable
// container as ErrCorrupt.
func Read(path string) (Fields, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readFrom(bufio.NewReader(f))
}

func readFrom(r io.Reader) (Fields, error) {
	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return nil, fmt.Errorf("%w: short signature", ErrCorrupt)
	}
	if !bytes.Equal(sig[:], pngSignature) {
		return nil, fmt.Errorf("%w: bad signature", ErrCorrupt)
	}

	fields := make(Fields)
	first := true
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("%w: truncated chunk header", ErrCorrupt)
		}
		length := binary.BigEndian.Uint32(hdr[:4])
		typ := string(hdr[4:8])

		if first && typ != "IHDR" {
			return nil, fmt.Errorf("%w: first chunk is %q, not IHDR", ErrCorrupt, typ)
		}
		first = false

		if length > maxChunkLen {
			return nil, fmt.Errorf("%w: chunk %q too large (%d bytes)", ErrCorrupt, typ, length)
		}

		switch typ {
		case "tEXt":
			data := make([]byte, length)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, fmt.Errorf("%w: truncated tEXt chunk", ErrCorrupt)
			}
			// keyword NUL text; chunks without a separator are tolerated
			// and skipped rather than failing the whole entry.
			if i := bytes.IndexByte(data, 0); i > 0 {
				fields[string(data[:i])] = string(data[i+1:])
			}
			if err := discard(r, 4); err != nil {
				return nil, err
			}
		case "IEND":
			return fields, nil
		default:
			if err := discard(r, int64(length)+4); err != nil {
				return nil, err
			}
		}
	}
}

func discard(r io.Reader, n int64) error {
	if _, err := io.CopyN(io.Discard, r, n); err != nil {
		return fmt.Errorf("%w: truncated chunk", ErrCorrupt)
	}
	return nil
}

// splice returns src with every existing tEXt chunk removed and one tEXt
// chunk per field inserted directly after IHDR, in sorted key order so
// output is deterministic.
func splice(src []byte, fields Fields) ([]byte, error) {
	if len(src) < len(pngSignature) || !bytes.Equal(src[:8], pngSignature) {
		return nil, fmt.Errorf("%w: bad signature", ErrCorrupt)
	}

	text, err := textChunks(fields)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(src)+len(text))
	out = append(out, pngSignature...)

	off := 8
	first := true
	for off < len(src) {
		if off+8 > len(src) {
			return nil, fmt.Errorf("%w: truncated chunk header", ErrCorrupt)
		}
		length := int(binary.BigEndian.Uint32(src[off : off+4]))
		typ := string(src[off+4 : off+8])
		end := off + 12 + length
		if length > maxChunkLen || end > len(src) {
			return nil, fmt.Errorf("%w: truncated chunk %q", ErrCorrupt, typ)
		}
		if first && typ != "IHDR" {
			return nil, fmt.Errorf("%w: first chunk is %q, not IHDR", ErrCorrupt, typ)
		}

		if typ != "tEXt" {
			out = append(out, src[off:end]...)
		}
		if first {
			out = append(out, text...)
			first = false
		}
		if typ == "IEND" {
			return out, nil
		}
		off = end
	}
	return nil, fmt.Errorf("%w: missing IEND", ErrCorrupt)
}

func textChunks(fields Fields) ([]byte, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []byte
	for _, k := range keys {
		if k == "" || len(k) > 79 {
			return nil, fmt.Errorf("invalid metadata key %q: must be 1-79 bytes", k)
		}
		v := fields[k]
		if bytes.IndexByte([]byte(k), 0) >= 0 || bytes.IndexByte([]byte(v), 0) >= 0 {
			return nil, fmt.Errorf("metadata field %q contains NUL byte", k)
		}

		data := make([]byte, 0, len(k)+1+len(v))
		data = append(data, k...)
		data = append(data, 0)
		data = append(data, v...)
		out = appendChunk(out, "tEXt", data)
	}
	return out, nil
}

func appendChunk(dst []byte, typ string, data []byte) []byte {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(len(data)))
	copy(hdr[4:], typ)
	dst = append(dst, hdr[:]...)
	dst = append(dst, data...)

	crc := crc32.NewIEEE()
	crc.Write(hdr[4:])
	crc.Write(data)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	return append(dst, sum[:]...)
}

// atomicWrite installs data at path via a same-directory temp file and
// rename. The temp file is created 0600; a failed write never disturbs an
// existing entry at path.
func atomicWrite(path string, data []byte) error {
	tmp, err := CreateTemp(filepath.Dir(path))
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to install %s: %w", path, err)
	}
	return nil
}

// CreateTemp creates an empty mode-0600 file with a .png suffix in dir
// and returns its path. Callers producing a thumbnail themselves should
// write into such a file and rename it into place for the same atomicity
// the codec provides.
func CreateTemp(dir string) (string, error) {
	f, err := os.CreateTemp(dir, ".tmp-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	name := f.Name()
	if err := f.Chmod(0o600); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

package uri

import (
	"path/filepath"
	"regexp"
	"strings"
)

// schemePattern matches strings that already carry a URI scheme
// (RFC 3986: ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ) followed by ":").
var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9.+-]*:`)

// Canonical converts a local filesystem path or an already-formed URI into
// the canonical absolute URI used for cache key derivation.
//
// Strings with a URI scheme are returned unchanged. Anything else is
// treated as a local path: it is made absolute (without resolving
// symlinks) and rendered as a file:// URI with the path percent-encoded.
// Canonical never fails; malformed input still yields a syntactically
// valid URI.
func Canonical(src string) string {
	if schemePattern.MatchString(src) {
		return src
	}

	abs, err := filepath.Abs(src)
	if err != nil {
		// Abs only fails when the working directory is gone; fall back to
		// the path as given so the identifier stays deterministic.
		abs = src
	}

	return "file://" + EscapePath(filepath.ToSlash(abs))
}

// EscapePath percent-encodes a slash-separated path for use in a file://
// URI. RFC 3986 unreserved characters and "/" are kept verbatim; every
// other byte is encoded as uppercase %XX. This is the exact character set
// other writers of the shared cache use, so it must not drift.
func EscapePath(p string) string {
	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); i++ {
		c := p[i]
		if isUnreserved(c) || c == '/' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	}
	return false
}

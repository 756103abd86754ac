// Package mediatypes detects the mime type and broad category of source
// files handed to the thumbnail engine.
//
// Detection prefers magic-byte sniffing of the file header and falls back
// to the extension tables; either way the result is just a mime string,
// so callers can substitute their own detector.
package mediatypes

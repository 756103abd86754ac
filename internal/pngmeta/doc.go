// Package pngmeta reads and writes the textual metadata fields embedded
// in cached thumbnail files as PNG tEXt chunks.
//
// Reads are chunk-level scans that never decode pixel data. Writes go to
// a temporary file in the destination directory followed by an atomic
// rename, so a concurrent reader in any process observes either the old
// complete file or the new complete file, never a torn one.
package pngmeta

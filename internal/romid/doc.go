// Package romid extracts identifying data (serial codes, titles) from raw
// game-image bytes.
//
// Every reader is bounded to a fixed maximum read so multi-gigabyte images
// are never loaded whole: fixed-offset header regions for disc formats,
// bounded byte-pattern searches for boot descriptors, and a bounded signature
// scan for the embedded PSF blob. Parsers operate on byte slices; acquisition
// goes through a ByteSource so gzip wrappers and opaque disc-compression
// containers are handled without the parsers knowing.
package romid

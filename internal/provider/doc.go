// Package provider classifies game images per console family.
//
// Each family implements the Provider contract: supported extensions,
// metadata extraction, a fast content check for shared-extension
// disambiguation, ideal-filename computation, and a conversion hint. The
// Registry holds all providers in a fixed order and offers two resolution
// strategies: directory-scoped lookup by family id (used by the scanner) and
// content-scoped lookup by extension plus validation (used for ad-hoc
// single-file identification). Both are deterministic.
package provider

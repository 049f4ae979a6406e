package provider

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"ludex/internal/textutil"
)

// Metadata is identifying data extracted from a game image.
type Metadata struct {
	Serial string
	Title  string
	// Extra carries provider-specific fields (category, version, region).
	Extra map[string]string
}

// Provider is the per-console-family capability contract. Implementations
// are pure classifiers: no side effects, no persistent state.
type Provider interface {
	// SystemID is the stable identifier, matching the library directory name.
	SystemID() string
	DisplayName() string
	// SupportedExtensions returns lowercase extensions including the dot.
	SupportedExtensions() []string
	// ExtractMetadata reads identifying data from the file. It fails with
	// errs.ErrUnsupportedFormat for unrecognized extensions, errs.ErrFileRead
	// when the file cannot be read, and errs.ErrMetadataExtraction when
	// parsing succeeds structurally but nothing identifying is found.
	ExtractMetadata(ctx context.Context, path string) (Metadata, error)
	// ValidateFile is a fast, non-throwing content check used only to
	// disambiguate shared extensions, never for authoritative classification.
	ValidateFile(path string) bool
	// IdealFilename suggests the canonical filename for the extracted metadata.
	IdealFilename(path string, meta Metadata) string
	NeedsConversion(path string) bool
	// PreferredCompression names the ideal storage format, or "" when the
	// family has none.
	PreferredCompression() string
}

func supportsExtension(p Provider, path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range p.SupportedExtensions() {
		if candidate == ext {
			return true
		}
	}
	return false
}

// defaultIdealFilename renders "Title [SERIAL].ext", degrading gracefully
// when either part is missing.
func defaultIdealFilename(path string, meta Metadata) string {
	ext := filepath.Ext(path)
	title := textutil.SanitizeFileName(meta.Title)
	serial := strings.TrimSpace(meta.Serial)

	switch {
	case title != "" && serial != "":
		return fmt.Sprintf("%s [%s]%s", title, serial, ext)
	case title != "":
		return title + ext
	default:
		return filepath.Base(path)
	}
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

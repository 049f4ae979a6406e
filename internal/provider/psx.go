package provider

import (
	"context"
	"path/filepath"
	"strings"

	"ludex/internal/errs"
	"ludex/internal/romid"
)

// PSX identifies original PlayStation disc images by their SYSTEM.CNF boot
// line.
type PSX struct {
	source romid.ByteSource
}

// NewPSX constructs the PlayStation provider.
func NewPSX(source romid.ByteSource) *PSX {
	return &PSX{source: source}
}

func (*PSX) SystemID() string { return "psx" }

func (*PSX) DisplayName() string { return "PlayStation" }

func (*PSX) SupportedExtensions() []string {
	return []string{".bin", ".cue", ".iso", ".chd", ".img", ".pbp"}
}

func (p *PSX) ExtractMetadata(ctx context.Context, path string) (Metadata, error) {
	if !supportsExtension(p, path) {
		return Metadata{}, errs.Wrap(errs.ErrUnsupportedFormat, "psx", "extract", filepath.Ext(path), nil)
	}

	// Cue sheets are text indexes; the serial lives in the referenced track.
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return Metadata{Title: stem(path)}, errs.Wrap(errs.ErrMetadataExtraction, "psx", "extract", "cue sheet carries no serial", nil)
	}

	data, err := p.source.ReadPrefix(ctx, path, romid.PSXReadBudget)
	if err != nil {
		return Metadata{}, err
	}

	serial := romid.PSXSerial(data)
	meta := Metadata{Serial: serial, Title: stem(path)}
	if serial == "" {
		return meta, errs.Wrap(errs.ErrMetadataExtraction, "psx", "extract", "no serial in image prefix", nil)
	}
	return meta, nil
}

func (p *PSX) ValidateFile(path string) bool {
	if !supportsExtension(p, path) {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin", ".img":
		return hasRawCDSync(path)
	case ".iso":
		return hasISO9660Descriptor(path)
	case ".pbp":
		return hasMagicAt(path, 1, "PBP")
	default:
		return true
	}
}

func (p *PSX) IdealFilename(path string, meta Metadata) string {
	return defaultIdealFilename(path, meta)
}

func (*PSX) NeedsConversion(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin", ".iso", ".img":
		return true
	default:
		return false
	}
}

func (*PSX) PreferredCompression() string { return "chd" }

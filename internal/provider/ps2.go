package provider

import (
	"context"
	"path/filepath"
	"strings"

	"ludex/internal/errs"
	"ludex/internal/romid"
)

// PS2 identifies PlayStation 2 disc images by their SYSTEM.CNF boot
// descriptor.
type PS2 struct {
	source romid.ByteSource
}

// NewPS2 constructs the PlayStation 2 provider.
func NewPS2(source romid.ByteSource) *PS2 {
	return &PS2{source: source}
}

func (*PS2) SystemID() string { return "ps2" }

func (*PS2) DisplayName() string { return "PlayStation 2" }

func (*PS2) SupportedExtensions() []string {
	return []string{".iso", ".bin", ".cso", ".chd", ".gz"}
}

func (p *PS2) ExtractMetadata(ctx context.Context, path string) (Metadata, error) {
	if !supportsExtension(p, path) {
		return Metadata{}, errs.Wrap(errs.ErrUnsupportedFormat, "ps2", "extract", filepath.Ext(path), nil)
	}

	data, err := p.source.ReadPrefix(ctx, path, romid.PS2ReadBudget)
	if err != nil {
		return Metadata{}, err
	}

	serial := romid.PS2Serial(data)
	meta := Metadata{Serial: serial, Title: stem(path)}
	if serial == "" {
		return meta, errs.Wrap(errs.ErrMetadataExtraction, "ps2", "extract", "no serial in image prefix", nil)
	}
	return meta, nil
}

func (p *PS2) ValidateFile(path string) bool {
	if !supportsExtension(p, path) {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".iso":
		return hasISO9660Descriptor(path)
	case ".bin":
		return hasRawCDSync(path) || hasISO9660Descriptor(path)
	case ".cso":
		return hasMagicAt(path, 0, "CISO")
	default:
		return true
	}
}

func (p *PS2) IdealFilename(path string, meta Metadata) string {
	return defaultIdealFilename(path, meta)
}

func (*PS2) NeedsConversion(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".iso", ".bin":
		return true
	default:
		return false
	}
}

func (*PS2) PreferredCompression() string { return "chd" }

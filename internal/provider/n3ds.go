package provider

import (
	"context"
	"path/filepath"
	"strings"

	"ludex/internal/errs"
	"ludex/internal/romid"
)

// N3DS identifies Nintendo 3DS cartridge dumps and installable titles by
// their product code.
type N3DS struct {
	source romid.ByteSource
}

// NewN3DS constructs the Nintendo 3DS provider.
func NewN3DS(source romid.ByteSource) *N3DS {
	return &N3DS{source: source}
}

func (*N3DS) SystemID() string { return "n3ds" }

func (*N3DS) DisplayName() string { return "Nintendo 3DS" }

func (*N3DS) SupportedExtensions() []string {
	return []string{".3ds", ".cia", ".3dz", ".cci"}
}

func (p *N3DS) ExtractMetadata(ctx context.Context, path string) (Metadata, error) {
	if !supportsExtension(p, path) {
		return Metadata{}, errs.Wrap(errs.ErrUnsupportedFormat, "n3ds", "extract", filepath.Ext(path), nil)
	}

	data, err := p.source.ReadPrefix(ctx, path, romid.N3DSReadBudget)
	if err != nil {
		return Metadata{}, err
	}

	serial := romid.N3DSProductCode(data)
	meta := Metadata{Serial: serial, Title: stem(path)}
	if serial == "" {
		return meta, errs.Wrap(errs.ErrMetadataExtraction, "n3ds", "extract", "no product code in image prefix", nil)
	}
	return meta, nil
}

func (p *N3DS) ValidateFile(path string) bool {
	if !supportsExtension(p, path) {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".3ds", ".cci":
		return hasMagicAt(path, 0x100, "NCSD")
	case ".cia":
		return fileLargerThan(path, 1024)
	case ".3dz":
		return fileLargerThan(path, 100*1024)
	default:
		return true
	}
}

func (p *N3DS) IdealFilename(path string, meta Metadata) string {
	return defaultIdealFilename(path, meta)
}

func (*N3DS) NeedsConversion(string) bool { return false }

func (*N3DS) PreferredCompression() string { return "" }

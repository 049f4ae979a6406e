package provider

import (
	"context"
	"path/filepath"
	"strings"

	"ludex/internal/errs"
	"ludex/internal/romid"
)

// PSP identifies PlayStation Portable images by their embedded PARAM.SFO blob.
type PSP struct {
	source romid.ByteSource
}

// NewPSP constructs the PlayStation Portable provider.
func NewPSP(source romid.ByteSource) *PSP {
	return &PSP{source: source}
}

func (*PSP) SystemID() string { return "psp" }

func (*PSP) DisplayName() string { return "PlayStation Portable" }

func (*PSP) SupportedExtensions() []string {
	return []string{".iso", ".cso", ".pbp"}
}

func (p *PSP) ExtractMetadata(ctx context.Context, path string) (Metadata, error) {
	if !supportsExtension(p, path) {
		return Metadata{}, errs.Wrap(errs.ErrUnsupportedFormat, "psp", "extract", filepath.Ext(path), nil)
	}

	data, err := p.source.ReadPrefix(ctx, path, romid.PSPReadBudget)
	if err != nil {
		return Metadata{}, err
	}

	meta := Metadata{Title: stem(path)}
	if sfoMeta, ok := romid.ScanSFO(data); ok {
		meta.Serial = sfoMeta.Serial
		if sfoMeta.Title != "" {
			meta.Title = sfoMeta.Title
		}
	}
	if meta.Serial == "" {
		meta.Serial = romid.SerialFromName(filepath.Base(path))
	}
	if meta.Serial == "" {
		return meta, errs.Wrap(errs.ErrMetadataExtraction, "psp", "extract", "no PARAM.SFO or filename serial", nil)
	}
	return meta, nil
}

func (p *PSP) ValidateFile(path string) bool {
	if !supportsExtension(p, path) {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".iso":
		return hasISO9660Descriptor(path)
	case ".cso":
		return hasMagicAt(path, 0, "CISO")
	case ".pbp":
		return hasMagicAt(path, 1, "PBP")
	default:
		return true
	}
}

func (p *PSP) IdealFilename(path string, meta Metadata) string {
	return defaultIdealFilename(path, meta)
}

func (*PSP) NeedsConversion(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".iso")
}

func (*PSP) PreferredCompression() string { return "cso" }

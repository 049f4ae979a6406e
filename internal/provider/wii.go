package provider

import (
	"context"
	"path/filepath"
	"strings"

	"ludex/internal/errs"
	"ludex/internal/romid"
)

// Wii identifies Wii disc images by their header game ID, with WBFS
// container support.
type Wii struct {
	source romid.ByteSource
}

// NewWii constructs the Wii provider.
func NewWii(source romid.ByteSource) *Wii {
	return &Wii{source: source}
}

func (*Wii) SystemID() string { return "wii" }

func (*Wii) DisplayName() string { return "Wii" }

func (*Wii) SupportedExtensions() []string {
	return []string{".iso", ".wbfs", ".rvz", ".gcm"}
}

func (p *Wii) ExtractMetadata(ctx context.Context, path string) (Metadata, error) {
	if !supportsExtension(p, path) {
		return Metadata{}, errs.Wrap(errs.ErrUnsupportedFormat, "wii", "extract", filepath.Ext(path), nil)
	}

	// WBFS wraps the disc header behind a 512-byte container header.
	data, err := p.source.ReadPrefix(ctx, path, 512+romid.DiscHeaderBudget)
	if err != nil {
		return Metadata{}, err
	}

	meta := Metadata{Title: stem(path)}
	discMeta, ok := romid.WiiDisc(data)
	if ok {
		meta.Serial = discMeta.GameID
		if discMeta.InternalName != "" {
			meta.Title = discMeta.InternalName
		}
	}
	if meta.Serial == "" {
		return meta, errs.Wrap(errs.ErrMetadataExtraction, "wii", "extract", "no game id in header", nil)
	}
	return meta, nil
}

func (p *Wii) ValidateFile(path string) bool {
	if !supportsExtension(p, path) {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".iso":
		return hasWiiMagic(path)
	case ".wbfs":
		return hasMagicAt(path, 0, "WBFS")
	case ".rvz":
		return hasMagicAt(path, 0, "RVZ")
	default:
		return true
	}
}

func (p *Wii) IdealFilename(path string, meta Metadata) string {
	return defaultIdealFilename(path, meta)
}

func (*Wii) NeedsConversion(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".iso", ".wbfs":
		return true
	default:
		return false
	}
}

func (*Wii) PreferredCompression() string { return "rvz" }

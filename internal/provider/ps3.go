package provider

import (
	"context"
	"path/filepath"
	"strings"

	"ludex/internal/errs"
	"ludex/internal/romid"
)

// PS3 identifies PlayStation 3 images and installable packages by their
// embedded PARAM.SFO blob.
type PS3 struct {
	source romid.ByteSource
}

// NewPS3 constructs the PlayStation 3 provider.
func NewPS3(source romid.ByteSource) *PS3 {
	return &PS3{source: source}
}

func (*PS3) SystemID() string { return "ps3" }

func (*PS3) DisplayName() string { return "PlayStation 3" }

func (*PS3) SupportedExtensions() []string {
	return []string{".iso", ".pkg", ".bin"}
}

func (p *PS3) ExtractMetadata(ctx context.Context, path string) (Metadata, error) {
	if !supportsExtension(p, path) {
		return Metadata{}, errs.Wrap(errs.ErrUnsupportedFormat, "ps3", "extract", filepath.Ext(path), nil)
	}

	data, err := p.source.ReadPrefix(ctx, path, romid.PS3ReadBudget)
	if err != nil {
		return Metadata{}, err
	}

	meta := Metadata{Title: stem(path)}
	if sfoMeta, ok := romid.ScanSFO(data); ok {
		meta.Serial = sfoMeta.Serial
		if sfoMeta.Title != "" {
			meta.Title = sfoMeta.Title
		}
		if sfoMeta.Version != "" {
			meta.Extra = map[string]string{"version": sfoMeta.Version}
		}
	}
	if meta.Serial == "" {
		meta.Serial = romid.SerialFromName(filepath.Base(path))
	}
	if meta.Serial == "" {
		return meta, errs.Wrap(errs.ErrMetadataExtraction, "ps3", "extract", "no PARAM.SFO or filename serial", nil)
	}
	return meta, nil
}

func (p *PS3) ValidateFile(path string) bool {
	if !supportsExtension(p, path) {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pkg":
		return hasMagicAt(path, 0, "\x7FPKG")
	case ".iso":
		// PS3 discs are multi-gigabyte; small ISO9660 images belong to
		// other families.
		return fileLargerThan(path, 1<<30)
	default:
		return true
	}
}

func (p *PS3) IdealFilename(path string, meta Metadata) string {
	return defaultIdealFilename(path, meta)
}

func (*PS3) NeedsConversion(string) bool { return false }

func (*PS3) PreferredCompression() string { return "" }

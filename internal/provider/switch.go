package provider

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"ludex/internal/errs"
	"ludex/internal/romid"
	"ludex/internal/textutil"
)

// Switch categories used for the ideal directory layout.
const (
	switchCategoryBase    = "Base Games"
	switchCategoryUpdates = "Updates"
	switchCategoryDLC     = "DLCs"
)

// SwitchProvider identifies Nintendo Switch packages by their title id and
// classifies them as base game, update, or DLC.
type SwitchProvider struct {
	source romid.ByteSource
}

// NewSwitch constructs the Nintendo Switch provider.
func NewSwitch(source romid.ByteSource) *SwitchProvider {
	return &SwitchProvider{source: source}
}

func (*SwitchProvider) SystemID() string { return "switch" }

func (*SwitchProvider) DisplayName() string { return "Nintendo Switch" }

func (*SwitchProvider) SupportedExtensions() []string {
	return []string{".nsp", ".nsz", ".xci", ".xcz"}
}

func (p *SwitchProvider) ExtractMetadata(ctx context.Context, path string) (Metadata, error) {
	if !supportsExtension(p, path) {
		return Metadata{}, errs.Wrap(errs.ErrUnsupportedFormat, "switch", "extract", filepath.Ext(path), nil)
	}

	data, err := p.source.ReadPrefix(ctx, path, romid.SwitchReadBudget)
	if err != nil {
		return Metadata{}, err
	}

	name := filepath.Base(path)
	titleID := romid.SwitchTitleID(name, data)
	meta := Metadata{Serial: titleID, Title: romid.StripSwitchTags(stem(path))}
	if titleID == "" {
		return meta, errs.Wrap(errs.ErrMetadataExtraction, "switch", "extract", "no title id in name or package", nil)
	}

	meta.Extra = map[string]string{
		"version":  romid.SwitchVersion(name),
		"type":     romid.SwitchType(titleID),
		"base_id":  romid.SwitchBaseID(titleID),
		"category": switchCategory(titleID),
	}
	return meta, nil
}

func switchCategory(titleID string) string {
	switch romid.SwitchType(titleID) {
	case romid.SwitchTypeUpdate:
		return switchCategoryUpdates
	case romid.SwitchTypeDLC:
		return switchCategoryDLC
	default:
		return switchCategoryBase
	}
}

func (p *SwitchProvider) ValidateFile(path string) bool {
	if !supportsExtension(p, path) {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nsp":
		return hasMagicAt(path, 0, "PFS0")
	case ".xci":
		return hasMagicAt(path, 0x100, "HEAD")
	default:
		return true
	}
}

// IdealFilename nests Switch packages under category and title directories:
// "Base Games/Title/Title [TITLEID] [vN].nsp".
func (p *SwitchProvider) IdealFilename(path string, meta Metadata) string {
	title := textutil.SanitizeFileName(meta.Title)
	if title == "" {
		title = stem(path)
	}

	filename := title
	if meta.Serial != "" {
		filename = fmt.Sprintf("%s [%s]", title, meta.Serial)
	}
	if version := meta.Extra["version"]; version != "" && version != "0" {
		filename += fmt.Sprintf(" [v%s]", version)
	}
	filename += filepath.Ext(path)

	category := meta.Extra["category"]
	if category == "" {
		category = switchCategoryBase
	}
	return filepath.Join(category, title, filename)
}

func (*SwitchProvider) NeedsConversion(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nsp", ".xci":
		return true
	default:
		return false
	}
}

func (*SwitchProvider) PreferredCompression() string { return "nsz" }

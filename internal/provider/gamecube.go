package provider

import (
	"context"
	"path/filepath"
	"strings"

	"ludex/internal/errs"
	"ludex/internal/romid"
)

// GameCube identifies GameCube disc images by their header game ID.
type GameCube struct {
	source romid.ByteSource
}

// NewGameCube constructs the GameCube provider.
func NewGameCube(source romid.ByteSource) *GameCube {
	return &GameCube{source: source}
}

func (*GameCube) SystemID() string { return "gamecube" }

func (*GameCube) DisplayName() string { return "GameCube" }

func (*GameCube) SupportedExtensions() []string {
	return []string{".iso", ".gcm", ".rvz", ".wbfs"}
}

func (p *GameCube) ExtractMetadata(ctx context.Context, path string) (Metadata, error) {
	if !supportsExtension(p, path) {
		return Metadata{}, errs.Wrap(errs.ErrUnsupportedFormat, "gamecube", "extract", filepath.Ext(path), nil)
	}

	data, err := p.source.ReadPrefix(ctx, path, romid.DiscHeaderBudget)
	if err != nil {
		return Metadata{}, err
	}

	meta := Metadata{Title: stem(path)}
	discMeta, ok := romid.GameCubeDisc(data)
	if ok {
		meta.Serial = discMeta.GameID
		if discMeta.InternalName != "" {
			meta.Title = discMeta.InternalName
		}
	}
	if meta.Serial == "" {
		return meta, errs.Wrap(errs.ErrMetadataExtraction, "gamecube", "extract", "no game id in header", nil)
	}
	return meta, nil
}

func (p *GameCube) ValidateFile(path string) bool {
	if !supportsExtension(p, path) {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".iso", ".gcm":
		return hasGameCubeMagic(path)
	case ".rvz":
		return hasMagicAt(path, 0, "RVZ")
	default:
		return true
	}
}

func (p *GameCube) IdealFilename(path string, meta Metadata) string {
	return defaultIdealFilename(path, meta)
}

func (*GameCube) NeedsConversion(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".iso", ".gcm":
		return true
	default:
		return false
	}
}

func (*GameCube) PreferredCompression() string { return "rvz" }

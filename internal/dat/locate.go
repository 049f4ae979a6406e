package dat

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Catalog filenames follow the "Vendor - Console (YYYYMMDD-HHMMSS)" naming
// used by the No-Intro and Redump projects, so a descending name sort puts
// the newest snapshot first.
var systemKeywords = map[string][]string{
	"nes":          {"Nintendo - Nintendo Entertainment System"},
	"snes":         {"Nintendo - Super Nintendo Entertainment System"},
	"n64":          {"Nintendo - Nintendo 64"},
	"gba":          {"Nintendo - Game Boy Advance"},
	"gb":           {"Nintendo - Game Boy"},
	"gbc":          {"Nintendo - Game Boy Color"},
	"nds":          {"Nintendo - Nintendo DS"},
	"gamecube":     {"Nintendo - GameCube"},
	"wii":          {"Nintendo - Wii"},
	"wiiu":         {"Nintendo - Wii U"},
	"switch":       {"Nintendo - Nintendo Switch"},
	"psx":          {"Sony - PlayStation"},
	"ps2":          {"Sony - PlayStation 2"},
	"ps3":          {"Sony - PlayStation 3"},
	"psp":          {"Sony - PlayStation Portable"},
	"psvita":       {"Sony - PlayStation Vita"},
	"dreamcast":    {"Sega - Dreamcast"},
	"saturn":       {"Sega - Saturn"},
	"megadrive":    {"Sega - Mega Drive - Genesis"},
	"mastersystem": {"Sega - Master System - Mark III"},
	"gamegear":     {"Sega - Game Gear"},
	"xbox":         {"Microsoft - Xbox"},
	"xbox360":      {"Microsoft - Xbox 360"},
	"neogeo":       {"SNK - Neo Geo"},
}

// FindForSystem locates the best catalog file for a console family under
// datsRoot, searching the root directory plus the no-intro and redump
// subfolders. Candidates matching the family keyword are sorted by filename
// descending and the first wins. Returns "" when nothing matches.
func FindForSystem(datsRoot, system string) string {
	candidates := findAllForSystem(datsRoot, system)
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0]
}

// findAllForSystem returns every matching catalog file, newest snapshot
// first.
func findAllForSystem(datsRoot, system string) []string {
	keywords, ok := systemKeywords[strings.ToLower(system)]
	if !ok {
		return nil
	}

	searchDirs := []string{
		datsRoot,
		filepath.Join(datsRoot, "no-intro"),
		filepath.Join(datsRoot, "redump"),
	}

	var candidates []string
	for _, dir := range searchDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".dat") {
				continue
			}
			stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			for _, keyword := range keywords {
				if strings.Contains(stem, keyword) {
					candidates = append(candidates, filepath.Join(dir, entry.Name()))
					break
				}
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return filepath.Base(candidates[i]) > filepath.Base(candidates[j])
	})
	return candidates
}

// LoadForSystem finds and parses the catalogs for a console family. A family
// can span several catalog files (a no-intro cartridge set next to a redump
// disc set); they are folded into one database, newest snapshot first so its
// records win lookup ties. A missing catalog is not an error; the caller
// skips verification for that family.
func LoadForSystem(datsRoot, system string) (*Database, error) {
	paths := findAllForSystem(datsRoot, system)
	if len(paths) == 0 {
		return nil, nil
	}
	db, err := Parse(paths[0])
	if err != nil {
		return nil, err
	}
	for _, path := range paths[1:] {
		extra, err := Parse(path)
		if err != nil {
			return nil, err
		}
		db.Merge(extra)
	}
	return db, nil
}

package romid

import (
	"regexp"
	"strings"
)

const (
	// DiscHeaderBudget covers a GameCube/Wii disc header, including the WBFS
	// wrapper when present.
	DiscHeaderBudget = 0x260
	// N3DSReadBudget bounds the product-code scan on 3DS images.
	N3DSReadBudget = 1024 * 1024
	// SwitchReadBudget bounds title-id scans inside Switch packages.
	SwitchReadBudget = 1024 * 1024
)

const (
	wbfsHeaderSize = 512
	discIDLength   = 6
	discNameOffset = 0x20
	discNameEnd    = 0x60
)

// DiscMetadata is the identifying data found in a GameCube/Wii disc header.
type DiscMetadata struct {
	GameID       string
	InternalName string
}

// WiiDisc decodes the game ID and internal name from a Wii image header.
// WBFS containers prepend a 512-byte header before the disc header proper.
func WiiDisc(header []byte) (DiscMetadata, bool) {
	offset := 0
	if len(header) >= 4 && string(header[:4]) == "WBFS" {
		offset = wbfsHeaderSize
	}
	return discHeader(header, offset)
}

// GameCubeDisc decodes the game ID and internal name from a GameCube image
// header. RVZ containers are opaque and must be decoded externally first.
func GameCubeDisc(header []byte) (DiscMetadata, bool) {
	if len(header) >= 3 && string(header[:3]) == "RVZ" {
		return DiscMetadata{}, false
	}
	return discHeader(header, 0)
}

func discHeader(header []byte, offset int) (DiscMetadata, bool) {
	if len(header) < offset+discIDLength {
		return DiscMetadata{}, false
	}

	var meta DiscMetadata
	gameID := string(header[offset : offset+discIDLength])
	if isAlphanumeric(gameID) {
		meta.GameID = gameID
	}

	if len(header) >= offset+discNameEnd {
		raw := header[offset+discNameOffset : offset+discNameEnd]
		if cut := indexByteZero(raw); cut != -1 {
			raw = raw[:cut]
		}
		meta.InternalName = strings.TrimSpace(string(raw))
	}

	if meta.GameID == "" && meta.InternalName == "" {
		return DiscMetadata{}, false
	}
	return meta, true
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func indexByteZero(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

// Product codes start with CTR, KTR, or TWL, e.g. CTR-P-AGME.
var n3dsProductPattern = regexp.MustCompile(`((?:CTR|KTR|TWL)-[A-Z0-9]-[A-Z0-9]{4})`)

// N3DSProductCode scans a bounded image prefix for a 3DS product code.
func N3DSProductCode(data []byte) string {
	m := n3dsProductPattern.Find(data)
	if m == nil {
		return ""
	}
	return string(m)
}

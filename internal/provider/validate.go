package provider

import (
	"encoding/binary"
	"os"
)

// Header probes used by ValidateFile implementations. All reads are tiny and
// positional; failures simply report false so validation never throws.

func readAt(path string, offset int64, size int) ([]byte, bool) {
	file, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer file.Close()

	buf := make([]byte, size)
	n, err := file.ReadAt(buf, offset)
	if n < size || err != nil {
		return nil, false
	}
	return buf, true
}

// hasISO9660Descriptor reports whether the primary volume descriptor magic
// "CD001" sits at sector 16, as on PS2 DVDs and PSP UMDs.
func hasISO9660Descriptor(path string) bool {
	buf, ok := readAt(path, 0x8000, 6)
	return ok && string(buf[1:6]) == "CD001"
}

// hasWiiMagic checks the Wii disc magic word at offset 0x18, accounting for
// a WBFS wrapper.
func hasWiiMagic(path string) bool {
	if buf, ok := readAt(path, 0, 4); ok && string(buf) == "WBFS" {
		return true
	}
	buf, ok := readAt(path, 0x18, 4)
	return ok && binary.BigEndian.Uint32(buf) == 0x5D1C9EA3
}

// hasGameCubeMagic checks the GameCube disc magic word at offset 0x1C.
func hasGameCubeMagic(path string) bool {
	buf, ok := readAt(path, 0x1C, 4)
	return ok && binary.BigEndian.Uint32(buf) == 0xC2339F3D
}

// hasRawCDSync checks the 2352-byte raw sector sync pattern at the start of
// a .bin track.
func hasRawCDSync(path string) bool {
	buf, ok := readAt(path, 0, 12)
	if !ok {
		return false
	}
	if buf[0] != 0x00 || buf[11] != 0x00 {
		return false
	}
	for _, b := range buf[1:11] {
		if b != 0xFF {
			return false
		}
	}
	return true
}

func hasMagicAt(path string, offset int64, magic string) bool {
	buf, ok := readAt(path, offset, len(magic))
	return ok && string(buf) == magic
}

func fileLargerThan(path string, size int64) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > size
}

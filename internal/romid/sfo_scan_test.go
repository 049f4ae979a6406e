package romid_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"ludex/internal/romid"
)

// buildParamSFO assembles a minimal PSF blob with string entries.
func buildParamSFO(pairs [][2]string) []byte {
	const headerSize = 0x14
	const entrySize = 0x10

	var keyTable, dataTable, index bytes.Buffer
	for _, pair := range pairs {
		keyOffset := keyTable.Len()
		keyTable.WriteString(pair[0])
		keyTable.WriteByte(0)

		dataOffset := dataTable.Len()
		dataTable.WriteString(pair[1])
		dataTable.WriteByte(0)

		entry := make([]byte, entrySize)
		binary.LittleEndian.PutUint16(entry[0:2], uint16(keyOffset))
		binary.LittleEndian.PutUint16(entry[2:4], 0x0204)
		binary.LittleEndian.PutUint32(entry[4:8], uint32(len(pair[1])+1))
		binary.LittleEndian.PutUint32(entry[8:12], uint32(len(pair[1])+1))
		binary.LittleEndian.PutUint32(entry[12:16], uint32(dataOffset))
		index.Write(entry)
	}

	tableBase := headerSize + index.Len()
	blob := make([]byte, headerSize)
	copy(blob, []byte{0x00, 'P', 'S', 'F', 0x01, 0x01, 0x00, 0x00})
	binary.LittleEndian.PutUint32(blob[8:12], uint32(tableBase))
	binary.LittleEndian.PutUint32(blob[12:16], uint32(tableBase+keyTable.Len()))
	binary.LittleEndian.PutUint32(blob[16:20], uint32(len(pairs)))

	blob = append(blob, index.Bytes()...)
	blob = append(blob, keyTable.Bytes()...)
	blob = append(blob, dataTable.Bytes()...)
	return blob
}

func TestScanSFOFindsEmbeddedBlob(t *testing.T) {
	blob := buildParamSFO([][2]string{
		{"TITLE_ID", "BLUS12345"},
		{"TITLE", "Example Game"},
		{"VERSION", "01.00"},
	})
	container := append(bytes.Repeat([]byte{0x42}, 9000), blob...)

	meta, ok := romid.ScanSFO(container)
	if !ok {
		t.Fatal("expected SFO to be found")
	}
	if meta.Serial != "BLUS12345" || meta.Title != "Example Game" || meta.Version != "01.00" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestScanSFOPrefersDiscID(t *testing.T) {
	blob := buildParamSFO([][2]string{
		{"DISC_ID", "ULUS-10041"},
		{"TITLE_ID", "ULUS10041X"},
		{"TITLE", "PSP Game"},
	})

	meta, ok := romid.ScanSFO(blob)
	if !ok {
		t.Fatal("expected SFO to be found")
	}
	if meta.Serial != "ULUS10041" {
		t.Fatalf("expected DISC_ID to win with dashes stripped, got %q", meta.Serial)
	}
}

func TestScanSFOAbsent(t *testing.T) {
	if _, ok := romid.ScanSFO(bytes.Repeat([]byte{0x00}, 4096)); ok {
		t.Fatal("expected no SFO in zero buffer")
	}
}

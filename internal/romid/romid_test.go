package romid_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"ludex/internal/romid"
)

func TestPS2SerialFromBootLine(t *testing.T) {
	data := append(bytes.Repeat([]byte{0x00}, 2048),
		[]byte("BOOT2 = cdrom0:\\SLUS_200.02;1\r\nVER = 1.00\r\n")...)
	if got := romid.PS2Serial(data); got != "SLUS-20002" {
		t.Fatalf("PS2Serial = %q, want SLUS-20002", got)
	}
}

func TestPS2SerialRawTokenFallback(t *testing.T) {
	data := []byte("garbage SLES-500.03 trailing")
	if got := romid.PS2Serial(data); got != "SLES-50003" {
		t.Fatalf("PS2Serial = %q, want SLES-50003", got)
	}
}

func TestPSXSerialFromBootLine(t *testing.T) {
	data := []byte("BOOT = cdrom:\\SLUS_005.94;1")
	if got := romid.PSXSerial(data); got != "SLUS-00594" {
		t.Fatalf("PSXSerial = %q, want SLUS-00594", got)
	}
}

func TestPSXSerialMissingSuffixDefaults(t *testing.T) {
	data := []byte("BOOT = cdrom:\\SCUS_944.")
	if got := romid.PSXSerial(data); got != "SCUS-94400" {
		t.Fatalf("PSXSerial = %q, want SCUS-94400", got)
	}
}

func TestSerialNotFound(t *testing.T) {
	if got := romid.PS2Serial([]byte("nothing here")); got != "" {
		t.Fatalf("expected empty serial, got %q", got)
	}
	if got := romid.PSXSerial(nil); got != "" {
		t.Fatalf("expected empty serial, got %q", got)
	}
}

func TestSerialFromName(t *testing.T) {
	cases := map[string]string{
		"Persona 3 Portable [ULUS-10512].iso": "ULUS10512",
		"BLUS12345 backup.pkg":                "BLUS12345",
		"no serial here.iso":                  "",
	}
	for name, want := range cases {
		if got := romid.SerialFromName(name); got != want {
			t.Fatalf("SerialFromName(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestWiiDiscPlainHeader(t *testing.T) {
	header := make([]byte, romid.DiscHeaderBudget)
	copy(header, "RSPE01")
	copy(header[0x20:], "Wii Sports\x00")

	meta, ok := romid.WiiDisc(header)
	if !ok {
		t.Fatal("expected header to decode")
	}
	if meta.GameID != "RSPE01" || meta.InternalName != "Wii Sports" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestWiiDiscWBFSWrapper(t *testing.T) {
	header := make([]byte, 512+romid.DiscHeaderBudget)
	copy(header, "WBFS")
	copy(header[512:], "RMCE01")
	copy(header[512+0x20:], "Mario Kart Wii\x00")

	meta, ok := romid.WiiDisc(header)
	if !ok || meta.GameID != "RMCE01" {
		t.Fatalf("unexpected metadata: %+v ok=%v", meta, ok)
	}
}

func TestGameCubeDiscRejectsRVZ(t *testing.T) {
	header := make([]byte, romid.DiscHeaderBudget)
	copy(header, "RVZ\x01")
	if _, ok := romid.GameCubeDisc(header); ok {
		t.Fatal("RVZ containers must not decode as raw headers")
	}
}

func TestGameCubeDiscHeader(t *testing.T) {
	header := make([]byte, romid.DiscHeaderBudget)
	copy(header, "GALE01")
	copy(header[0x20:], "Super Smash Bros Melee\x00")

	meta, ok := romid.GameCubeDisc(header)
	if !ok || meta.GameID != "GALE01" {
		t.Fatalf("unexpected metadata: %+v ok=%v", meta, ok)
	}
}

func TestN3DSProductCode(t *testing.T) {
	data := append(bytes.Repeat([]byte{0xFF}, 1024), []byte("CTR-P-AGME")...)
	if got := romid.N3DSProductCode(data); got != "CTR-P-AGME" {
		t.Fatalf("N3DSProductCode = %q", got)
	}
	if got := romid.N3DSProductCode([]byte("nothing")); got != "" {
		t.Fatalf("expected empty code, got %q", got)
	}
}

func TestSwitchTitleIDFromFilename(t *testing.T) {
	name := "Some Game [0100ABCDEF000000] [v65536].nsp"
	if got := romid.SwitchTitleID(name, nil); got != "0100ABCDEF000000" {
		t.Fatalf("SwitchTitleID = %q", got)
	}
	if got := romid.SwitchVersion(name); got != "65536" {
		t.Fatalf("SwitchVersion = %q", got)
	}
}

func TestSwitchTitleIDFromPackageData(t *testing.T) {
	data := []byte("...\nProgram Id: 0x0100ABCDEF000800\n...")
	if got := romid.SwitchTitleID("plain.nsp", data); got != "0100ABCDEF000800" {
		t.Fatalf("SwitchTitleID = %q", got)
	}
}

func TestSwitchClassification(t *testing.T) {
	cases := map[string]string{
		"0100ABCDEF000000": romid.SwitchTypeBase,
		"0100ABCDEF000800": romid.SwitchTypeUpdate,
		"0100ABCDEF000801": romid.SwitchTypeDLC,
		"not-hex":          romid.SwitchTypeDLC,
	}
	for id, want := range cases {
		if got := romid.SwitchType(id); got != want {
			t.Fatalf("SwitchType(%q) = %q, want %q", id, got, want)
		}
	}
	if got := romid.SwitchBaseID("0100ABCDEF001801"); got != "0100ABCDEF000000" {
		t.Fatalf("SwitchBaseID = %q", got)
	}
}

func TestFileSourceReadsPlainPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.iso")
	if err := os.WriteFile(path, bytes.Repeat([]byte("abc"), 1000), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	source := romid.NewFileSource(nil)
	data, err := source.ReadPrefix(context.Background(), path, 100)
	if err != nil {
		t.Fatalf("ReadPrefix failed: %v", err)
	}
	if len(data) != 100 {
		t.Fatalf("expected 100 bytes, got %d", len(data))
	}
}

func TestFileSourceUnwrapsGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.gz")
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte("BOOT2 = cdrom0:\\SLUS_200.02;1")); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	source := romid.NewFileSource(nil)
	data, err := source.ReadPrefix(context.Background(), path, romid.PS2ReadBudget)
	if err != nil {
		t.Fatalf("ReadPrefix failed: %v", err)
	}
	if got := romid.PS2Serial(data); got != "SLUS-20002" {
		t.Fatalf("PS2Serial = %q", got)
	}
}

func TestFileSourceDelegatesOpaqueFormats(t *testing.T) {
	called := false
	source := romid.NewFileSource(map[string]romid.Extractor{
		".chd": func(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
			called = true
			return []byte("SLUS_200.02"), nil
		},
	})

	data, err := source.ReadPrefix(context.Background(), "/library/ps2/game.chd", 1024)
	if err != nil {
		t.Fatalf("ReadPrefix failed: %v", err)
	}
	if !called {
		t.Fatal("expected extractor to be invoked")
	}
	if got := romid.PS2Serial(data); got != "SLUS-20002" {
		t.Fatalf("PS2Serial = %q", got)
	}
}

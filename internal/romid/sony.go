package romid

import (
	"fmt"
	"regexp"
	"strings"

	"ludex/internal/sfo"
)

// Read budgets per format. Headers and boot descriptors always land inside
// these prefixes on real dumps.
const (
	PS2ReadBudget = 4 * 1024 * 1024
	PSXReadBudget = 8 * 1024 * 1024
	PS3ReadBudget = 10 * 1024 * 1024
	PSPReadBudget = 5 * 1024 * 1024
)

var (
	// SYSTEM.CNF boot line, e.g. "BOOT2 = cdrom0:\SLUS_200.02;1".
	ps2BootPattern = regexp.MustCompile(`(?i)BOOT2\s*=\s*cdrom0:\\?([A-Z]{4})[_-](\d{3})\.?(\d{2})`)
	// PS1 variant: "BOOT = cdrom:\SLUS_005.94;1".
	psxBootPattern = regexp.MustCompile(`(?i)BOOT\s*=\s*cdrom0?:\\?([A-Z]{4})[_-](\d{3})\.?((?:\d{2})?)`)
	// Raw serial token fallback, e.g. SLUS_200.02 or SLES-50003.
	discSerialPattern = regexp.MustCompile(`([A-Z]{4})[_-](\d{3})\.?((?:\d{2})?)`)
)

// PS2Serial extracts a normalized PlayStation 2 serial (SLUS-20002) from a
// bounded image prefix, or "" when no serial is present.
func PS2Serial(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if m := ps2BootPattern.FindSubmatch(data); m != nil {
		return formatDiscSerial(m)
	}
	if m := discSerialPattern.FindSubmatch(data); m != nil {
		return formatDiscSerial(m)
	}
	return ""
}

// PSXSerial extracts a normalized PlayStation serial (SLUS-00594) from a
// bounded image prefix, or "" when no serial is present.
func PSXSerial(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	m := psxBootPattern.FindSubmatch(data)
	if m == nil {
		m = discSerialPattern.FindSubmatch(data)
	}
	if m == nil {
		return ""
	}
	return formatDiscSerial(m)
}

func formatDiscSerial(m [][]byte) string {
	prefix := strings.ToUpper(string(m[1]))
	part1 := string(m[2])
	part2 := string(m[3])
	if part2 == "" {
		part2 = "00"
	}
	return fmt.Sprintf("%s-%s%s", prefix, part1, part2)
}

// SFOMetadata is identifying data decoded from an embedded PSF blob.
type SFOMetadata struct {
	Serial  string
	Title   string
	Version string
}

// sfoSliceSize is the slice taken from the located signature; real PARAM.SFO
// tables fit comfortably inside 4 KiB.
const sfoSliceSize = 4096

// ScanSFO locates a PSF blob inside a bounded container prefix and decodes
// the identifying entries. PSP discs carry the serial under DISC_ID, packages
// under TITLE_ID; both are honored in that order.
func ScanSFO(data []byte) (SFOMetadata, bool) {
	idx := sfo.Find(data)
	if idx == -1 {
		return SFOMetadata{}, false
	}

	end := idx + sfoSliceSize
	if end > len(data) {
		end = len(data)
	}
	table := sfo.Parse(data[idx:end])

	meta := SFOMetadata{
		Title:   table.GetString("TITLE"),
		Version: table.GetString("VERSION"),
	}
	if serial := table.GetString("DISC_ID"); serial != "" {
		meta.Serial = serial
	} else if serial := table.GetString("TITLE_ID"); serial != "" {
		meta.Serial = serial
	}

	if meta.Serial == "" && meta.Title == "" {
		return SFOMetadata{}, false
	}
	meta.Serial = strings.TrimSpace(strings.ReplaceAll(meta.Serial, "-", ""))
	return meta, true
}

var compactSerialPattern = regexp.MustCompile(`([A-Z]{4})[_-]?(\d{5})`)

// SerialFromName recovers a compact serial (BLUS12345, ULUS10041) from a
// filename when the binary scan finds nothing.
func SerialFromName(name string) string {
	m := compactSerialPattern.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1] + m[2]
}

package romid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Switch title classification derived from the title-id suffix.
const (
	SwitchTypeBase   = "Base"
	SwitchTypeUpdate = "Update"
	SwitchTypeDLC    = "DLC"
)

var (
	// Bracketed 16-digit hex title id in release filenames, e.g.
	// "Game [0100ABCDEF000000] [v65536].nsp".
	switchTitleIDPattern = regexp.MustCompile(`(?i)\[([0-9A-F]{16})\]`)
	// "Title ID:" / "Program Id:" lines emitted by dump tools and embedded
	// in package control data.
	switchTitleIDLine = regexp.MustCompile(`(?i)(?:Title ID|Program Id):\s*(?:0x)?([0-9A-F]{16})`)
	switchVersionTag  = regexp.MustCompile(`(?i)\[v(\d+)\]`)
)

// SwitchMetadata is identifying data for a Switch package.
type SwitchMetadata struct {
	TitleID string
	Version string
	Type    string
}

// SwitchTitleID recovers a 16-hex-digit title id from a filename or a
// bounded package prefix; the filename tag wins when both are present.
func SwitchTitleID(name string, data []byte) string {
	if m := switchTitleIDPattern.FindStringSubmatch(name); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := switchTitleIDLine.FindSubmatch(data); m != nil {
		return strings.ToUpper(string(m[1]))
	}
	return ""
}

// SwitchVersion recovers a [vNNN] version tag from a filename, or "0".
func SwitchVersion(name string) string {
	if m := switchVersionTag.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return "0"
}

var switchWhitespace = regexp.MustCompile(`\s+`)

// StripSwitchTags removes bracketed title-id and version tags from a release
// filename stem and normalizes the remaining whitespace.
func StripSwitchTags(name string) string {
	name = switchTitleIDPattern.ReplaceAllString(name, "")
	name = switchVersionTag.ReplaceAllString(name, "")
	name = switchWhitespace.ReplaceAllString(name, " ")
	return strings.Trim(strings.TrimSpace(name), "-_.")
}

// SwitchBaseID masks the lower bits of a title id, yielding the base title
// shared by a game and its updates/DLC.
func SwitchBaseID(titleID string) string {
	value, err := strconv.ParseUint(titleID, 16, 64)
	if err != nil {
		return titleID
	}
	return fmt.Sprintf("%016X", value&0xFFFFFFFFFFFFE000)
}

// SwitchType classifies a title id: suffix 0x000 is a base game, 0x800 an
// update, anything else DLC. Unparseable ids default to DLC.
func SwitchType(titleID string) string {
	value, err := strconv.ParseUint(titleID, 16, 64)
	if err != nil {
		return SwitchTypeDLC
	}
	switch value & 0xFFF {
	case 0x000:
		return SwitchTypeBase
	case 0x800:
		return SwitchTypeUpdate
	default:
		return SwitchTypeDLC
	}
}

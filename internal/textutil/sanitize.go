// Package textutil provides filename sanitization for titles extracted
// from image headers.
package textutil

import "strings"

// Titles stored in disc and cartridge headers may carry characters that are
// unsafe in filenames. Separator-like characters become dashes, the rest are
// dropped.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"\x00", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename and
// collapses runs of whitespace to single spaces.
func SanitizeFileName(name string) string {
	name = fileNameReplacer.Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

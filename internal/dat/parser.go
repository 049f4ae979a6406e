package dat

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ludex/internal/errs"
)

// Parse loads a catalog file, choosing the parser from the file content: XML
// datafiles start with an XML prolog or <datafile>, everything else is
// treated as a ClrMamePro text catalog.
func Parse(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrFileRead, "dat", "parse", "read catalog file", err)
	}
	datName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	trimmed := strings.TrimLeftFunc(string(data), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\uFEFF'
	})
	if strings.HasPrefix(trimmed, "<?xml") || strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<datafile") {
		return parseXML([]byte(trimmed), datName)
	}
	return parseClrMamePro(trimmed, datName)
}

type xmlDatafile struct {
	Header struct {
		Name    string `xml:"name"`
		Version string `xml:"version"`
	} `xml:"header"`
	Games []xmlGame `xml:"game"`
}

type xmlGame struct {
	Name string `xml:"name,attr"`
	Roms []struct {
		Name string `xml:"name,attr"`
		Size string `xml:"size,attr"`
		CRC  string `xml:"crc,attr"`
		MD5  string `xml:"md5,attr"`
		SHA1 string `xml:"sha1,attr"`
	} `xml:"rom"`
}

func parseXML(data []byte, datName string) (*Database, error) {
	var doc xmlDatafile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.ErrCorruptedFile, "dat", "parse", "decode XML datafile", err)
	}
	db := NewDatabase()
	db.Name = doc.Header.Name
	db.Version = doc.Header.Version
	for _, game := range doc.Games {
		for _, rom := range game.Roms {
			size, _ := strconv.ParseInt(rom.Size, 10, 64)
			db.Add(&Record{
				GameName: game.Name,
				RomName:  rom.Name,
				Size:     size,
				CRC:      rom.CRC,
				MD5:      rom.MD5,
				SHA1:     rom.SHA1,
				DatName:  datName,
			})
		}
	}
	return db, nil
}

// parseClrMamePro scans the balanced-paren block format:
//
//	clrmamepro ( name "..." version "..." )
//	game ( name "..." rom ( name "..." size 123 crc abcd1234 ... ) )
func parseClrMamePro(text, datName string) (*Database, error) {
	db := NewDatabase()
	rest := text
	for {
		keyword, block, remaining, ok := nextBlock(rest)
		if !ok {
			break
		}
		rest = remaining
		switch keyword {
		case "clrmamepro", "header":
			fields := parseFields(block)
			if db.Name == "" {
				db.Name = fields["name"]
			}
			if db.Version == "" {
				db.Version = fields["version"]
			}
		case "game", "machine":
			parseGameBlock(db, block, datName)
		}
	}
	if db.Len() == 0 && db.Name == "" {
		return nil, errs.Wrap(errs.ErrCorruptedFile, "dat", "parse", "no recognizable blocks in catalog", nil)
	}
	return db, nil
}

func parseGameBlock(db *Database, block, datName string) {
	gameName := parseFields(block)["name"]
	rest := block
	for {
		keyword, sub, remaining, ok := nextBlock(rest)
		if !ok {
			break
		}
		rest = remaining
		if keyword != "rom" && keyword != "disk" {
			continue
		}
		fields := parseFields(sub)
		size, _ := strconv.ParseInt(fields["size"], 10, 64)
		db.Add(&Record{
			GameName: gameName,
			RomName:  fields["name"],
			Size:     size,
			CRC:      fields["crc"],
			MD5:      fields["md5"],
			SHA1:     fields["sha1"],
			DatName:  datName,
		})
	}
}

// nextBlock finds the next "keyword ( ... )" group in text, returning the
// keyword, the balanced inner content, and the tail after the closing paren.
// Quoted strings are opaque, so parens inside game names do not count.
func nextBlock(text string) (keyword, inner, rest string, ok bool) {
	inString := false
	open := -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"':
			inString = !inString
		case '(':
			if !inString {
				open = i
			}
		}
		if open >= 0 {
			break
		}
	}
	if open < 0 {
		return "", "", "", false
	}
	keyword = lastToken(text[:open])
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '"':
			inString = !inString
		case '(':
			if !inString {
				depth++
			}
		case ')':
			if inString {
				continue
			}
			depth--
			if depth == 0 {
				return keyword, text[open+1 : i], text[i+1:], true
			}
		}
	}
	return "", "", "", false
}

func lastToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// parseFields splits scalar "key value" pairs, honoring quoted values.
func parseFields(block string) map[string]string {
	fields := map[string]string{}
	rest := strings.TrimSpace(block)
	for rest != "" {
		space := strings.IndexAny(rest, " \t\r\n")
		if space < 0 {
			break
		}
		key := rest[:space]
		rest = strings.TrimLeft(rest[space:], " \t\r\n")
		if rest == "" {
			break
		}
		var value string
		if rest[0] == '"' {
			end := strings.IndexByte(rest[1:], '"')
			if end < 0 {
				break
			}
			value = rest[1 : 1+end]
			rest = strings.TrimLeft(rest[end+2:], " \t\r\n")
		} else {
			end := strings.IndexAny(rest, " \t\r\n")
			if end < 0 {
				value = rest
				rest = ""
			} else {
				value = rest[:end]
				rest = strings.TrimLeft(rest[end:], " \t\r\n")
			}
		}
		if _, seen := fields[key]; !seen {
			fields[key] = value
		}
	}
	return fields
}

// Package sfo decodes the PSF key/value blob embedded in PlayStation images
// and packages (PARAM.SFO).
//
// The format is a fixed header (magic tag, key table offset, data table
// offset, entry count) followed by a fixed-size entry array. Every offset is
// bounds-checked before dereference; truncated or hostile input yields a
// partial or empty table, never a panic. The blob is not always at a fixed
// container offset, so Find scans a bounded prefix for the signature.
package sfo

import (
	"bytes"
	"encoding/binary"
)

// Signature is the magic tag plus format version 1.1, as written by every
// known producer. Used to locate a blob inside a larger container.
var Signature = []byte{0x00, 'P', 'S', 'F', 0x01, 0x01, 0x00, 0x00}

var magic = []byte{0x00, 'P', 'S', 'F'}

const (
	headerSize = 0x14
	entrySize  = 0x10

	fmtUTF8     = 0x0004
	fmtUTF8Null = 0x0204
	fmtUint32   = 0x0404
)

// Kind discriminates entry value types.
type Kind int

const (
	KindString Kind = iota
	KindUint32
)

// Entry is one decoded key/value pair.
type Entry struct {
	Key  string
	Kind Kind
	Str  string
	Int  uint32
}

// Table holds decoded entries in blob order.
type Table struct {
	entries []Entry
	index   map[string]int
}

// Parse decodes a PSF blob. Unknown or truncated input returns an empty
// table; entries whose offsets fall outside the buffer are skipped.
func Parse(data []byte) Table {
	table := Table{index: map[string]int{}}
	if len(data) < headerSize || !bytes.Equal(data[0:4], magic) {
		return table
	}

	keyTableStart := binary.LittleEndian.Uint32(data[8:12])
	dataTableStart := binary.LittleEndian.Uint32(data[12:16])
	numEntries := binary.LittleEndian.Uint32(data[16:20])

	for i := uint32(0); i < numEntries; i++ {
		offset := headerSize + int(i)*entrySize
		if offset+entrySize > len(data) {
			break
		}

		keyOffset := binary.LittleEndian.Uint16(data[offset : offset+2])
		dataFmt := binary.LittleEndian.Uint16(data[offset+2 : offset+4])
		dataLen := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		dataOffset := binary.LittleEndian.Uint32(data[offset+12 : offset+16])

		key, ok := readKey(data, keyTableStart, uint32(keyOffset))
		if !ok {
			continue
		}

		raw, ok := readValue(data, dataTableStart, dataOffset, dataLen)
		if !ok {
			continue
		}

		var entry Entry
		entry.Key = key
		switch dataFmt {
		case fmtUTF8, fmtUTF8Null:
			entry.Kind = KindString
			entry.Str = string(bytes.TrimRight(raw, "\x00"))
		case fmtUint32:
			if len(raw) < 4 {
				continue
			}
			entry.Kind = KindUint32
			entry.Int = binary.LittleEndian.Uint32(raw[:4])
		default:
			continue
		}

		if pos, exists := table.index[key]; exists {
			table.entries[pos] = entry
			continue
		}
		table.index[key] = len(table.entries)
		table.entries = append(table.entries, entry)
	}
	return table
}

func readKey(data []byte, tableStart, keyOffset uint32) (string, bool) {
	start := int64(tableStart) + int64(keyOffset)
	if start < 0 || start >= int64(len(data)) {
		return "", false
	}
	end := bytes.IndexByte(data[start:], 0)
	if end == -1 {
		end = len(data) - int(start)
	}
	return string(data[start : int(start)+end]), true
}

func readValue(data []byte, tableStart, dataOffset, dataLen uint32) ([]byte, bool) {
	start := int64(tableStart) + int64(dataOffset)
	end := start + int64(dataLen)
	if start < 0 || start > int64(len(data)) {
		return nil, false
	}
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[start:end], true
}

// Len returns the number of decoded entries.
func (t Table) Len() int {
	return len(t.entries)
}

// Entries returns decoded entries in blob order.
func (t Table) Entries() []Entry {
	return t.entries
}

// GetString returns the string value for key, or "" when absent or not a
// string entry.
func (t Table) GetString(key string) string {
	if pos, ok := t.index[key]; ok {
		entry := t.entries[pos]
		if entry.Kind == KindString {
			return entry.Str
		}
	}
	return ""
}

// GetUint32 returns the integer value for key and whether it was present.
func (t Table) GetUint32(key string) (uint32, bool) {
	if pos, ok := t.index[key]; ok {
		entry := t.entries[pos]
		if entry.Kind == KindUint32 {
			return entry.Int, true
		}
	}
	return 0, false
}

// Find locates the blob signature inside data, returning its offset or -1.
func Find(data []byte) int {
	return bytes.Index(data, Signature)
}

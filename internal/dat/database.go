package dat

import "strings"

// Record is one catalog entry: a canonical title and the checksums of its
// authoritative dump.
type Record struct {
	GameName string
	RomName  string
	Size     int64
	CRC      string
	MD5      string
	SHA1     string
	// DatName is the name of the catalog the record came from, used as the
	// serial-like tag on verified entries.
	DatName string
}

// Database is a multi-key index over catalog records. It is read-only after
// load and rebuilt wholesale when the underlying catalog file changes.
type Database struct {
	Name    string
	Version string

	crcIndex  map[string][]*Record
	md5Index  map[string][]*Record
	sha1Index map[string][]*Record
}

// NewDatabase returns an empty database.
func NewDatabase() *Database {
	return &Database{
		crcIndex:  map[string][]*Record{},
		md5Index:  map[string][]*Record{},
		sha1Index: map[string][]*Record{},
	}
}

// Add indexes a record under each checksum it carries.
func (db *Database) Add(record *Record) {
	if crc := normalizeHex(record.CRC); crc != "" {
		db.crcIndex[crc] = append(db.crcIndex[crc], record)
	}
	if md5 := normalizeHex(record.MD5); md5 != "" {
		db.md5Index[md5] = append(db.md5Index[md5], record)
	}
	if sha1 := normalizeHex(record.SHA1); sha1 != "" {
		db.sha1Index[sha1] = append(db.sha1Index[sha1], record)
	}
}

// Lookup returns candidate records for the provided digests, first match
// taken by convention. SHA1 is consulted first, then MD5, then CRC; only the
// strongest provided digest is used so a CRC collision cannot shadow a SHA1
// miss.
func (db *Database) Lookup(crc, md5, sha1 string) []*Record {
	if digest := normalizeHex(sha1); digest != "" {
		return db.sha1Index[digest]
	}
	if digest := normalizeHex(md5); digest != "" {
		return db.md5Index[digest]
	}
	if digest := normalizeHex(crc); digest != "" {
		return db.crcIndex[digest]
	}
	return nil
}

// Len returns the number of indexed checksum keys across all indexes.
func (db *Database) Len() int {
	return len(db.crcIndex) + len(db.md5Index) + len(db.sha1Index)
}

// Merge folds source's records into db. Used when a console family spans
// several catalog files.
func (db *Database) Merge(source *Database) {
	if source == nil {
		return
	}
	for key, records := range source.crcIndex {
		db.crcIndex[key] = append(db.crcIndex[key], records...)
	}
	for key, records := range source.md5Index {
		db.md5Index[key] = append(db.md5Index[key], records...)
	}
	for key, records := range source.sha1Index {
		db.sha1Index[key] = append(db.sha1Index[key], records...)
	}
}

func normalizeHex(digest string) string {
	return strings.ToLower(strings.TrimSpace(digest))
}

// Package dupes finds redundant library entries, either by identical
// content hashes or by similar filenames.
package dupes

import (
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"ludex/internal/catalog"
)

// Group is a set of entries believed to hold the same game. Wasted is the
// number of bytes reclaimable by keeping only the largest member.
type Group struct {
	Key     string
	Entries []*catalog.Entry
	Wasted  int64
}

// ByHash groups entries whose strongest available digest matches. Each entry
// is keyed by exactly one digest, SHA1 preferred over MD5 over CRC32, so two
// entries only group when the same algorithm produced the same value.
func ByHash(entries []*catalog.Entry) []Group {
	buckets := map[string][]*catalog.Entry{}
	for _, entry := range entries {
		key := hashKey(entry)
		if key == "" {
			continue
		}
		buckets[key] = append(buckets[key], entry)
	}
	return collectGroups(buckets)
}

// ByName groups entries whose normalized titles collide, case-insensitive,
// with release tags and punctuation stripped. Grouping spans console
// families so the same game kept as both a disc image and a port shows up,
// alongside regional variants and format conversions that hash differently.
func ByName(entries []*catalog.Entry) []Group {
	buckets := map[string][]*catalog.Entry{}
	for _, entry := range entries {
		name := NormalizeName(filepath.Base(entry.Path))
		if name == "" {
			continue
		}
		buckets[name] = append(buckets[name], entry)
	}
	return collectGroups(buckets)
}

func hashKey(entry *catalog.Entry) string {
	switch {
	case entry.SHA1 != "":
		return "sha1:" + strings.ToLower(entry.SHA1)
	case entry.MD5 != "":
		return "md5:" + strings.ToLower(entry.MD5)
	case entry.CRC32 != "":
		return "crc32:" + strings.ToLower(entry.CRC32)
	}
	return ""
}

func collectGroups(buckets map[string][]*catalog.Entry) []Group {
	var groups []Group
	for key, members := range buckets {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			return members[i].Path < members[j].Path
		})
		groups = append(groups, Group{
			Key:     key,
			Entries: members,
			Wasted:  wastedBytes(members),
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Wasted != groups[j].Wasted {
			return groups[i].Wasted > groups[j].Wasted
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// wastedBytes is the total size minus the largest member, the space freed by
// keeping one copy.
func wastedBytes(entries []*catalog.Entry) int64 {
	var total, largest int64
	for _, entry := range entries {
		total += entry.Size
		if entry.Size > largest {
			largest = entry.Size
		}
	}
	return total - largest
}

var foldCaser = cases.Fold()

// NormalizeName reduces a filename to a comparison key: extension dropped,
// bracketed release tags removed, punctuation squeezed out, case folded.
// Returns "" when nothing survives, which callers treat as un-groupable.
func NormalizeName(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stem = stripTagGroups(stem)
	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r > 127:
			b.WriteString(foldCaser.String(string(r)))
		}
	}
	return b.String()
}

// stripTagGroups removes (...), [...] and {...} groups, the usual carriers
// of region, revision and dump-status tags.
func stripTagGroups(name string) string {
	var b strings.Builder
	depth := 0
	for _, r := range name {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

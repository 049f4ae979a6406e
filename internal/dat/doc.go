// Package dat loads DAT verification catalogs in the XML datafile and
// ClrMamePro text formats and indexes their records by checksum.
package dat

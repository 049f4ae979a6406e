//go:build unix

package fileutil

import "golang.org/x/sys/unix"

// FreeSpace reports the bytes available to unprivileged writes on the
// filesystem holding path. Conversions and quarantine moves check it before
// producing multi-gigabyte outputs.
func FreeSpace(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// Package hashing computes the checksum triple used for catalog
// verification in one pass over the file.
package hashing

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"

	"ludex/internal/errs"
)

const chunkSize = 1 << 20

// Digests holds the lowercase hex checksums of a file.
type Digests struct {
	CRC32 string
	MD5   string
	SHA1  string
}

// File hashes path with CRC32, MD5 and SHA1 in a single read pass.
// Cancellation is checked between chunks so large images abort promptly.
func File(ctx context.Context, path string) (Digests, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digests{}, errs.Wrap(errs.ErrHashComputation, "hashing", "open", path, err)
	}
	defer file.Close()

	crcHash := crc32.NewIEEE()
	md5Hash := md5.New()
	sha1Hash := sha1.New()
	sink := io.MultiWriter(crcHash, md5Hash, sha1Hash)

	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return Digests{}, err
		}
		n, err := file.Read(buf)
		if n > 0 {
			if _, werr := sink.Write(buf[:n]); werr != nil {
				return Digests{}, errs.Wrap(errs.ErrHashComputation, "hashing", "digest", path, werr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Digests{}, errs.Wrap(errs.ErrHashComputation, "hashing", "read", path, err)
		}
	}

	return Digests{
		CRC32: fmt.Sprintf("%08x", crcHash.Sum32()),
		MD5:   hexSum(md5Hash),
		SHA1:  hexSum(sha1Hash),
	}, nil
}

func hexSum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

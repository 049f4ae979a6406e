package scanner

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ludex/internal/catalog"
	"ludex/internal/errs"
	"ludex/internal/hashing"
	"ludex/internal/provider"
	"ludex/internal/retry"
	"ludex/internal/tools"
)

type hashFunc func(ctx context.Context, path string) (hashing.Digests, error)

func defaultHashFile(ctx context.Context, path string) (hashing.Digests, error) {
	return hashing.File(ctx, path)
}

// mtimeTolerance absorbs filesystems that round or truncate timestamps.
const mtimeTolerance = 1.0

var (
	metadataRetry = retry.Policy{Attempts: 3, Backoff: 500 * time.Millisecond}
	hashRetry     = retry.Policy{Attempts: 2, Backoff: 500 * time.Millisecond}
)

// archiveExts are opaque container formats no provider parses directly.
var archiveExts = map[string]struct{}{
	".zip": {}, ".7z": {}, ".rar": {}, ".tar": {},
	".bz2": {}, ".xz": {}, ".tgz": {}, ".tbz2": {},
}

func isArchive(path string) bool {
	_, ok := archiveExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// processFile runs the per-file pipeline: stat, dirty check, metadata,
// integrity, hashing and catalog verification. Every failure degrades the
// entry's status; only a stat failure drops the file from this pass.
func (s *Scanner) processFile(ctx context.Context, item workItem, deep bool, logger *slog.Logger) *result {
	info, err := os.Stat(item.path)
	if err != nil {
		logger.Warn("stat failed", "path", item.path, "error", err)
		return &result{skipped: true}
	}
	size := info.Size()
	mtime := float64(info.ModTime().UnixNano()) / float64(time.Second)

	prior := item.existing
	dirty := deep || prior == nil ||
		prior.Size != size ||
		math.Abs(prior.ModTime-mtime) >= mtimeTolerance
	if !dirty {
		return &result{skipped: true}
	}

	entry := &catalog.Entry{
		Path:    item.path,
		System:  item.system,
		Size:    size,
		ModTime: mtime,
		Status:  catalog.StatusUnknown,
	}
	if prior != nil {
		entry.Status = prior.Status
		entry.Serial = prior.Serial
		entry.Title = prior.Title
		entry.CRC32 = prior.CRC32
		entry.MD5 = prior.MD5
		entry.SHA1 = prior.SHA1
		entry.MatchName = prior.MatchName
		entry.DatName = prior.DatName
		entry.Extra = prior.Extra
		entry.Error = prior.Error
	}

	res := &result{entry: entry, existed: prior != nil}

	if isArchive(item.path) {
		entry.Status = catalog.StatusCompressed
		return res
	}

	if item.provider != nil {
		s.extractMetadata(ctx, item, entry, logger)
	}

	switch integrity := s.checkIntegrity(ctx, item.system, item.path); integrity.Status {
	case tools.IntegrityFailed:
		entry.Status = catalog.StatusCorrupt
		entry.MatchName = "Failed integrity check"
		entry.Error = integrity.Detail
		logger.Warn("integrity check failed", "path", item.path)
		return res
	case tools.IntegrityPassed:
		entry.Error = ""
	}

	if item.datDB == nil {
		return res
	}

	var digests hashing.Digests
	err = retry.Do(ctx, hashRetry, func() error {
		var hashErr error
		digests, hashErr = s.hashFile(ctx, item.path)
		return hashErr
	})
	if err != nil {
		// Keep whatever hashes an earlier pass produced.
		entry.Status = catalog.StatusError
		entry.Error = err.Error()
		logger.Warn("hashing failed", "path", item.path, "error", err)
		return res
	}
	entry.CRC32 = digests.CRC32
	entry.MD5 = digests.MD5
	entry.SHA1 = digests.SHA1
	entry.Error = ""

	if matches := item.datDB.Lookup(digests.CRC32, digests.MD5, digests.SHA1); len(matches) > 0 {
		match := matches[0]
		entry.Status = catalog.StatusVerified
		entry.MatchName = match.GameName
		entry.DatName = match.DatName
		res.verified = true
	}
	return res
}

// extractMetadata fills serial/title from the provider, retrying transient
// read failures. A file that parses but yields no identifier is final on the
// first attempt; exhaustion leaves the entry as it was and the scan
// continues either way.
func (s *Scanner) extractMetadata(ctx context.Context, item workItem, entry *catalog.Entry, logger *slog.Logger) {
	var meta provider.Metadata
	err := retry.Do(ctx, metadataRetry, func() error {
		var extractErr error
		meta, extractErr = item.provider.ExtractMetadata(ctx, item.path)
		if errors.Is(extractErr, errs.ErrMetadataExtraction) || errors.Is(extractErr, errs.ErrUnsupportedFormat) {
			logger.Debug("no identifying data", "path", item.path, "error", extractErr)
			return nil
		}
		return extractErr
	})
	if err != nil {
		logger.Debug("metadata extraction failed", "path", item.path, "error", err)
		return
	}
	if meta.Serial != "" {
		entry.Serial = meta.Serial
		if entry.Status == catalog.StatusUnknown {
			entry.Status = catalog.StatusKnown
		}
	}
	if meta.Title != "" {
		entry.Title = meta.Title
	}
	if len(meta.Extra) > 0 {
		entry.Extra = meta.Extra
	}
}

// checkIntegrity asks the first verifier that claims the file, scoped to its
// console family, for a verdict.
func (s *Scanner) checkIntegrity(ctx context.Context, system, path string) tools.IntegrityResult {
	for _, verifier := range s.verifiers {
		if !verifier.Supports(system, path) {
			continue
		}
		if result := verifier.Verify(ctx, path); result.Status != tools.IntegrityNotApplicable {
			return result
		}
	}
	return tools.IntegrityResult{Status: tools.IntegrityNotApplicable}
}

// Package scanner walks a library root, classifies and fingerprints every
// image, and reconciles the results into the catalog store.
package scanner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"ludex/internal/catalog"
	"ludex/internal/dat"
	"ludex/internal/errs"
	"ludex/internal/provider"
	"ludex/internal/tools"
)

// Stats aggregates the outcome of one scan pass.
type Stats struct {
	Added    int
	Updated  int
	Removed  int
	Skipped  int
	Verified int
}

// ProgressFunc receives coarse progress, one call per top-level directory.
type ProgressFunc func(fraction float64, message string)

// Options tune a single scan pass.
type Options struct {
	// DeepScan forces hashing and re-verification of unchanged files.
	DeepScan bool
	// Workers sizes the hashing pool. Zero means NumCPU-1.
	Workers int
	// QueueDepth bounds the work queue. Zero means a sane default.
	QueueDepth int
	Progress   ProgressFunc
}

const defaultQueueDepth = 256

// Scanner coordinates traversal, metadata extraction, integrity checks,
// hashing and catalog verification.
type Scanner struct {
	store     *catalog.Store
	registry  *provider.Registry
	datsRoot  string
	verifiers []tools.Verifier
	logger    *slog.Logger

	// hashFile is swapped in tests to observe hashing decisions.
	hashFile hashFunc
	loadDAT  func(datsRoot, system string) (*dat.Database, error)
}

// New constructs a Scanner. Verifiers may be empty; integrity checks then
// degrade to not-applicable.
func New(store *catalog.Store, registry *provider.Registry, datsRoot string, verifiers []tools.Verifier, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	return &Scanner{
		store:     store,
		registry:  registry,
		datsRoot:  datsRoot,
		verifiers: verifiers,
		logger:    logger,
		hashFile:  defaultHashFile,
		loadDAT:   dat.LoadForSystem,
	}
}

// workItem is one file queued for processing, carrying its directory-scoped
// classification context.
type workItem struct {
	path     string
	system   string
	provider provider.Provider
	datDB    *dat.Database
	existing *catalog.Entry
}

// result pairs a consolidated entry with its bookkeeping outcome.
type result struct {
	entry    *catalog.Entry
	existed  bool
	skipped  bool
	verified bool
}

// Scan walks root and reconciles the store with what it finds. An invalid
// root fails before any work; everything past that degrades per file.
func (s *Scanner) Scan(ctx context.Context, root string, opts Options) (Stats, error) {
	stats := Stats{}

	info, err := os.Stat(root)
	if err != nil {
		return stats, errs.Wrap(errs.ErrValidation, "scanner", "scan", "scan root not accessible", err)
	}
	if !info.IsDir() {
		return stats, errs.Wrap(errs.ErrValidation, "scanner", "scan", fmt.Sprintf("scan root %s is not a directory", root), nil)
	}

	lock := flock.New(s.store.Path() + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return stats, errs.Wrap(errs.ErrValidation, "scanner", "scan", "acquire scan lock", err)
	}
	if !locked {
		return stats, errs.Wrap(errs.ErrValidation, "scanner", "scan", "another scan is already running", nil)
	}
	defer func() { _ = lock.Unlock() }()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = filepath.Clean(root)
	}

	sessionID := uuid.NewString()
	logger := s.logger.With("session", sessionID, "root", absRoot)
	logger.Info("scan started", "deep", opts.DeepScan)

	existing, err := s.loadExisting(ctx, absRoot)
	if err != nil {
		return stats, err
	}

	systemDirs, err := topLevelDirs(absRoot)
	if err != nil {
		return stats, errs.Wrap(errs.ErrFileRead, "scanner", "scan", "list scan root", err)
	}

	found := make(map[string]struct{}, len(existing))
	var foundMu sync.Mutex

	for i, dir := range systemDirs {
		if ctx.Err() != nil {
			break
		}
		if opts.Progress != nil {
			opts.Progress(float64(i)/float64(len(systemDirs)), fmt.Sprintf("Scanning %s...", filepath.Base(dir)))
		}
		s.scanSystemDir(ctx, dir, opts, existing, found, &foundMu, &stats, logger)
	}

	// Paths indexed earlier but absent from this pass are gone from disk.
	// Skipped when cancelled so a partial walk cannot empty the catalog.
	if ctx.Err() == nil {
		for path := range existing {
			if _, ok := found[path]; ok {
				continue
			}
			if err := s.store.Delete(ctx, path); err != nil {
				logger.Warn("remove stale entry failed", "path", path, "error", err)
				continue
			}
			stats.Removed++
		}
	}

	if opts.Progress != nil {
		opts.Progress(1.0, "Scan complete")
	}
	logger.Info("scan finished",
		"added", stats.Added, "updated", stats.Updated, "removed", stats.Removed,
		"skipped", stats.Skipped, "verified", stats.Verified)
	return stats, nil
}

// loadExisting fetches the indexed entries under root. Scoping the load to
// the root keeps the removed-path sweep from touching entries indexed from a
// different library root.
func (s *Scanner) loadExisting(ctx context.Context, root string) (map[string]*catalog.Entry, error) {
	prefix := strings.TrimSuffix(root, string(filepath.Separator)) + string(filepath.Separator)
	entries, err := s.store.ListUnder(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("load existing entries: %w", err)
	}
	byPath := make(map[string]*catalog.Entry, len(entries))
	for _, entry := range entries {
		byPath[entry.Path] = entry
	}
	return byPath, nil
}

// scanSystemDir runs the bounded producer/worker/writer pipeline over one
// console-family directory. Workers do the CPU-bound steps; a single writer
// goroutine owns all store mutations.
func (s *Scanner) scanSystemDir(
	ctx context.Context,
	dir string,
	opts Options,
	existing map[string]*catalog.Entry,
	found map[string]struct{},
	foundMu *sync.Mutex,
	stats *Stats,
	logger *slog.Logger,
) {
	system := filepath.Base(dir)
	prov, _ := s.registry.BySystem(system)
	datDB, err := s.loadDAT(s.datsRoot, system)
	if err != nil {
		logger.Warn("catalog load failed", "system", system, "error", err)
	} else if datDB != nil {
		logger.Info("catalog loaded", "system", system, "name", datDB.Name)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
	}
	if workers < 1 {
		workers = 1
	}
	depth := opts.QueueDepth
	if depth <= 0 {
		depth = defaultQueueDepth
	}

	work := make(chan workItem, depth)
	results := make(chan result, depth)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				if ctx.Err() != nil {
					continue
				}
				res := s.processFile(ctx, item, opts.DeepScan, logger)
				if res != nil {
					results <- *res
				}
			}
		}()
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for res := range results {
			if res.entry != nil {
				if err := s.store.Upsert(ctx, res.entry); err != nil {
					logger.Warn("upsert failed", "path", res.entry.Path, "error", err)
					continue
				}
				if res.existed {
					stats.Updated++
				} else {
					stats.Added++
				}
			}
			if res.skipped {
				stats.Skipped++
			}
			if res.verified {
				stats.Verified++
			}
		}
	}()

	walkErr := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			logger.Warn("walk error", "path", path, "error", err)
			return nil
		}
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		name := entry.Name()
		if entry.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		foundMu.Lock()
		found[abs] = struct{}{}
		foundMu.Unlock()

		select {
		case work <- workItem{
			path:     abs,
			system:   system,
			provider: prov,
			datDB:    datDB,
			existing: existing[abs],
		}:
		case <-ctx.Done():
			return filepath.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		logger.Warn("walk aborted", "dir", dir, "error", walkErr)
	}

	close(work)
	wg.Wait()
	close(results)
	<-writerDone
}

func topLevelDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dirs = append(dirs, filepath.Join(root, entry.Name()))
	}
	sort.Strings(dirs)
	return dirs, nil
}

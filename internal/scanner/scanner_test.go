package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"ludex/internal/catalog"
	"ludex/internal/dat"
	"ludex/internal/hashing"
	"ludex/internal/provider"
	"ludex/internal/romid"
	"ludex/internal/tools"
)

type fixture struct {
	scanner   *Scanner
	store     *catalog.Store
	root      string
	hashCalls *atomic.Int64
}

// helloWorldSHA1 is the digest of the literal file content used below.
const helloWorldSHA1 = "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"

func newFixture(t *testing.T, dats map[string]*dat.Database, verifiers ...tools.Verifier) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := catalog.OpenPath(filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	registry := provider.NewRegistry(romid.NewFileSource(nil))
	sc := New(store, registry, filepath.Join(dir, "dats"), verifiers, nil)

	calls := &atomic.Int64{}
	sc.hashFile = func(ctx context.Context, path string) (hashing.Digests, error) {
		calls.Add(1)
		return hashing.File(ctx, path)
	}
	sc.loadDAT = func(_, system string) (*dat.Database, error) {
		return dats[system], nil
	}

	root := filepath.Join(dir, "library")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	return &fixture{scanner: sc, store: store, root: root, hashCalls: calls}
}

func (f *fixture) writeFile(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(f.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		t.Fatal(err)
	}
	return abs
}

func TestScanNewFileWithoutCatalog(t *testing.T) {
	f := newFixture(t, nil)
	path := f.writeFile(t, "nes/Adventure.nes", "rom data")

	stats, err := f.scanner.Scan(context.Background(), f.root, Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if stats.Added != 1 || stats.Updated != 0 || stats.Removed != 0 {
		t.Errorf("stats = %+v", stats)
	}

	entry, err := f.store.Get(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil {
		t.Fatal("entry not persisted")
	}
	if entry.Status != catalog.StatusUnknown {
		t.Errorf("status = %q", entry.Status)
	}
	if entry.HasHashes() {
		t.Errorf("hashes computed without a catalog: %+v", entry)
	}
	if entry.System != "nes" {
		t.Errorf("system = %q", entry.System)
	}
}

func TestRescanUnchangedSkipsHashing(t *testing.T) {
	db := dat.NewDatabase()
	db.Add(&dat.Record{GameName: "Hello (USA)", SHA1: helloWorldSHA1, DatName: "Sony - PlayStation 2"})
	f := newFixture(t, map[string]*dat.Database{"ps2": db})
	f.writeFile(t, "ps2/Hello.iso", "hello world")

	if _, err := f.scanner.Scan(context.Background(), f.root, Options{}); err != nil {
		t.Fatal(err)
	}
	first := f.hashCalls.Load()
	if first != 1 {
		t.Fatalf("hash calls after first scan = %d", first)
	}

	stats, err := f.scanner.Scan(context.Background(), f.root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if f.hashCalls.Load() != first {
		t.Errorf("unchanged file rehashed: %d calls", f.hashCalls.Load())
	}
	if stats.Skipped != 1 {
		t.Errorf("stats = %+v", stats)
	}

	// A deep scan forces the recomputation.
	if _, err := f.scanner.Scan(context.Background(), f.root, Options{DeepScan: true}); err != nil {
		t.Fatal(err)
	}
	if f.hashCalls.Load() != first+1 {
		t.Errorf("deep scan did not rehash: %d calls", f.hashCalls.Load())
	}
}

func TestScanVerifiesAgainstCatalog(t *testing.T) {
	db := dat.NewDatabase()
	db.Add(&dat.Record{
		GameName: "Hello (USA)",
		SHA1:     helloWorldSHA1,
		DatName:  "Sony - PlayStation 2 (20240101)",
	})
	f := newFixture(t, map[string]*dat.Database{"ps2": db})
	path := f.writeFile(t, "ps2/Hello.iso", "hello world")

	stats, err := f.scanner.Scan(context.Background(), f.root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Verified != 1 {
		t.Errorf("stats = %+v", stats)
	}

	entry, err := f.store.Get(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Status != catalog.StatusVerified {
		t.Errorf("status = %q", entry.Status)
	}
	if entry.MatchName != "Hello (USA)" {
		t.Errorf("match name = %q", entry.MatchName)
	}
	if entry.DatName != "Sony - PlayStation 2 (20240101)" {
		t.Errorf("dat name = %q", entry.DatName)
	}
	if entry.SHA1 != helloWorldSHA1 {
		t.Errorf("sha1 = %q", entry.SHA1)
	}
}

func TestScanRemovesDeletedFiles(t *testing.T) {
	f := newFixture(t, nil)
	path := f.writeFile(t, "psx/Game.bin", "gone soon")

	if _, err := f.scanner.Scan(context.Background(), f.root, Options{}); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	stats, err := f.scanner.Scan(context.Background(), f.root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Removed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	entry, err := f.store.Get(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if entry != nil {
		t.Fatalf("stale entry survived: %+v", entry)
	}
}

func TestScanLeavesOtherRootsAlone(t *testing.T) {
	f := newFixture(t, nil)
	f.writeFile(t, "ps2/Game.iso", "x")

	// An entry indexed from a different library root must survive the
	// removed-path sweep of this one.
	elsewhere := filepath.Join(t.TempDir(), "other-library", "psx", "Keeper.iso")
	if err := f.store.Upsert(context.Background(), &catalog.Entry{
		Path:   elsewhere,
		System: "psx",
		Size:   1,
		Status: catalog.StatusUnknown,
	}); err != nil {
		t.Fatal(err)
	}

	stats, err := f.scanner.Scan(context.Background(), f.root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Removed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	entry, err := f.store.Get(context.Background(), elsewhere)
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil {
		t.Fatal("entry outside the scanned root was removed")
	}
}

type failingVerifier struct{}

func (failingVerifier) Name() string { return "failing" }
func (failingVerifier) Supports(_, path string) bool {
	return strings.HasSuffix(path, ".chd")
}
func (failingVerifier) Verify(context.Context, string) tools.IntegrityResult {
	return tools.IntegrityResult{Status: tools.IntegrityFailed, Detail: "bad block"}
}

func TestScanMarksCorruptAndSkipsHashing(t *testing.T) {
	db := dat.NewDatabase()
	db.Add(&dat.Record{GameName: "Hello (USA)", SHA1: helloWorldSHA1})
	f := newFixture(t, map[string]*dat.Database{"psx": db}, failingVerifier{})
	path := f.writeFile(t, "psx/Game.chd", "hello world")

	if _, err := f.scanner.Scan(context.Background(), f.root, Options{}); err != nil {
		t.Fatal(err)
	}

	entry, err := f.store.Get(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Status != catalog.StatusCorrupt {
		t.Errorf("status = %q", entry.Status)
	}
	if entry.MatchName != "Failed integrity check" {
		t.Errorf("match name = %q", entry.MatchName)
	}
	if f.hashCalls.Load() != 0 {
		t.Errorf("corrupt file was hashed")
	}
}

type brokenExecutor struct{}

func (brokenExecutor) Run(context.Context, string, []string) ([]byte, error) {
	return []byte("Problems Found: Yes"), errors.New("exit status 1")
}

func TestScanScopesDiscVerifierToItsFamily(t *testing.T) {
	// dolphin-tool rejects anything that is not a GameCube or Wii image,
	// so a failing run must only condemn files in those trees.
	dolphin := tools.NewDolphinTool("sh", tools.WithExecutor(brokenExecutor{}))
	f := newFixture(t, nil, dolphin)
	ps2Path := f.writeFile(t, "ps2/Good Game (USA).iso", "hello world")
	wiiPath := f.writeFile(t, "wii/Bad Dump (USA).iso", "hello world")

	if _, err := f.scanner.Scan(context.Background(), f.root, Options{}); err != nil {
		t.Fatal(err)
	}

	ps2Entry, err := f.store.Get(context.Background(), ps2Path)
	if err != nil {
		t.Fatal(err)
	}
	if ps2Entry.Status == catalog.StatusCorrupt {
		t.Errorf("ps2 iso condemned by dolphin-tool: %+v", ps2Entry)
	}

	wiiEntry, err := f.store.Get(context.Background(), wiiPath)
	if err != nil {
		t.Fatal(err)
	}
	if wiiEntry.Status != catalog.StatusCorrupt {
		t.Errorf("wii status = %q", wiiEntry.Status)
	}
}

func TestScanSkipsHiddenAndUnderscoreFiles(t *testing.T) {
	f := newFixture(t, nil)
	f.writeFile(t, "ps2/.hidden.iso", "x")
	f.writeFile(t, "ps2/_staging.iso", "x")
	f.writeFile(t, "ps2/Game.iso", "x")
	f.writeFile(t, ".trash/Old.iso", "x")

	stats, err := f.scanner.Scan(context.Background(), f.root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Added != 1 {
		t.Errorf("stats = %+v", stats)
	}
	entries, err := f.store.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || filepath.Base(entries[0].Path) != "Game.iso" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestScanMarksArchivesCompressed(t *testing.T) {
	f := newFixture(t, nil)
	path := f.writeFile(t, "ps2/Game.zip", "PK\x03\x04")

	if _, err := f.scanner.Scan(context.Background(), f.root, Options{}); err != nil {
		t.Fatal(err)
	}
	entry, err := f.store.Get(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Status != catalog.StatusCompressed {
		t.Errorf("status = %q", entry.Status)
	}
}

func TestScanInvalidRoot(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.scanner.Scan(context.Background(), filepath.Join(f.root, "missing"), Options{}); err == nil {
		t.Fatal("expected error for missing root")
	}

	file := f.writeFile(t, "plain.txt", "not a dir")
	if _, err := f.scanner.Scan(context.Background(), file, Options{}); err == nil {
		t.Fatal("expected error for non-directory root")
	}
}

func TestScanUpdatesChangedFile(t *testing.T) {
	f := newFixture(t, nil)
	path := f.writeFile(t, "ps2/Game.iso", "version one")

	if _, err := f.scanner.Scan(context.Background(), f.root, Options{}); err != nil {
		t.Fatal(err)
	}
	f.writeFile(t, "ps2/Game.iso", "version two, now longer")

	stats, err := f.scanner.Scan(context.Background(), f.root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Updated != 1 || stats.Added != 0 {
		t.Errorf("stats = %+v", stats)
	}
	entry, err := f.store.Get(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Size != int64(len("version two, now longer")) {
		t.Errorf("size = %d", entry.Size)
	}
}

func TestScanProgressCallback(t *testing.T) {
	f := newFixture(t, nil)
	f.writeFile(t, "ps2/A.iso", "a")
	f.writeFile(t, "wii/B.wbfs", "b")

	var messages []string
	_, err := f.scanner.Scan(context.Background(), f.root, Options{
		Progress: func(_ float64, message string) { messages = append(messages, message) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 3 {
		t.Fatalf("messages = %v", messages)
	}
	if messages[len(messages)-1] != "Scan complete" {
		t.Errorf("final message = %q", messages[len(messages)-1])
	}
}

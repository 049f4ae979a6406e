package catalog

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUpsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := &Entry{
		Path:    "/library/ps2/Example (USA).iso",
		System:  "ps2",
		Size:    4096,
		ModTime: 1700000000.25,
		Status:  StatusKnown,
		Serial:  "SLUS-12345",
		Title:   "Example",
		Extra:   map[string]string{"version": "1.00"},
	}
	if err := store.Upsert(ctx, entry); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.Get(ctx, entry.Path)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("entry not found")
	}
	if got.Serial != "SLUS-12345" || got.System != "ps2" || got.Size != 4096 {
		t.Errorf("entry = %+v", got)
	}
	if got.ModTime != 1700000000.25 {
		t.Errorf("mtime = %v", got.ModTime)
	}
	if got.Extra["version"] != "1.00" {
		t.Errorf("extra = %v", got.Extra)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("updated_at not recorded")
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	path := "/library/psx/Game.bin"

	if err := store.Upsert(ctx, &Entry{Path: path, System: "psx", Status: StatusUnknown}); err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(ctx, &Entry{
		Path: path, System: "psx", Status: StatusVerified,
		SHA1: "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed", MatchName: "Game (USA)",
	}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusVerified || got.MatchName != "Game (USA)" {
		t.Errorf("entry = %+v", got)
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("list returned %d entries", len(entries))
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)
	got, err := store.Get(context.Background(), "/nowhere.iso")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	path := "/library/wii/Game.wbfs"

	if err := store.Upsert(ctx, &Entry{Path: path, System: "wii"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, path); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Get(ctx, path); got != nil {
		t.Fatal("entry survived delete")
	}
	// Deleting again is a no-op.
	if err := store.Delete(ctx, path); err != nil {
		t.Fatal(err)
	}
}

func TestListFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := []*Entry{
		{Path: "/library/ps2/a.iso", System: "ps2", Status: StatusVerified, SHA1: "aa"},
		{Path: "/library/ps2/b.iso", System: "ps2", Status: StatusUnknown},
		{Path: "/library/wii/c.wbfs", System: "wii", Status: StatusKnown, CRC32: "bb"},
	}
	for _, entry := range seed {
		if err := store.Upsert(ctx, entry); err != nil {
			t.Fatal(err)
		}
	}

	bySystem, err := store.ListBySystem(ctx, "ps2")
	if err != nil {
		t.Fatal(err)
	}
	if len(bySystem) != 2 {
		t.Errorf("ps2 entries = %d", len(bySystem))
	}

	byStatus, err := store.ListByStatus(ctx, StatusVerified)
	if err != nil {
		t.Fatal(err)
	}
	if len(byStatus) != 1 || byStatus[0].Path != "/library/ps2/a.iso" {
		t.Errorf("verified entries = %+v", byStatus)
	}

	under, err := store.ListUnder(ctx, "/library/ps2/")
	if err != nil {
		t.Fatal(err)
	}
	if len(under) != 2 {
		t.Errorf("entries under prefix = %d", len(under))
	}

	hashed, err := store.ListHashed(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(hashed) != 2 {
		t.Errorf("hashed entries = %d", len(hashed))
	}

	counts, err := store.StatusCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[StatusVerified] != 1 || counts[StatusUnknown] != 1 || counts[StatusKnown] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestListUnderEscapesLikeMetacharacters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, &Entry{Path: "/library/100%_games/a.iso", System: "ps2"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(ctx, &Entry{Path: "/library/100x_games/b.iso", System: "ps2"}); err != nil {
		t.Fatal(err)
	}

	under, err := store.ListUnder(ctx, "/library/100%_games/")
	if err != nil {
		t.Fatal(err)
	}
	if len(under) != 1 || under[0].Path != "/library/100%_games/a.iso" {
		t.Errorf("entries = %+v", under)
	}
}

func TestActionsLog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.RecordAction(ctx, Action{
		SessionID: "s1", Kind: ActionQuarantine,
		Path: "/library/ps2/dupe.iso", Detail: "/library/.quarantine/dupe.iso",
	})
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.RecordAction(ctx, Action{
		SessionID: "s1", Kind: ActionQuarantine,
		Path: "/library/ps2/dupe.iso", Detail: "/library/.quarantine/dupe (1).iso",
	})
	if err != nil {
		t.Fatal(err)
	}
	if second <= first {
		t.Errorf("ids not monotonic: %d then %d", first, second)
	}

	actions, err := store.ListActions(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 1 || actions[0].ID != second {
		t.Errorf("actions = %+v", actions)
	}

	last, err := store.LastActionFor(ctx, "/library/ps2/dupe.iso", ActionQuarantine)
	if err != nil {
		t.Fatal(err)
	}
	if last == nil || last.Detail != "/library/.quarantine/dupe (1).iso" {
		t.Errorf("last action = %+v", last)
	}

	missing, err := store.LastActionFor(ctx, "/library/ps2/dupe.iso", ActionRestore)
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("expected nil, got %+v", missing)
	}
}

func TestRecordActionValidation(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.RecordAction(context.Background(), Action{Kind: ActionDelete}); err == nil {
		t.Fatal("expected error for action without path")
	}
}

func TestSchemaSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "index.db")

	store, err := OpenPath(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(context.Background(), &Entry{Path: "/a.iso", System: "ps2"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenPath(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get(context.Background(), "/a.iso")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("entry lost across reopen")
	}
}

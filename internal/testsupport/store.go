package testsupport

import (
	"context"
	"testing"

	"ludex/internal/catalog"
	"ludex/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedEntry upserts one entry for tests using the provided store.
func SeedEntry(t testing.TB, store *catalog.Store, entry *catalog.Entry) {
	t.Helper()

	if err := store.Upsert(context.Background(), entry); err != nil {
		t.Fatalf("store.Upsert: %v", err)
	}
}

package testsupport

import (
	"testing"

	"tonearm/internal/config"
	"tonearm/internal/library"
)

// MustOpenStore opens a library.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

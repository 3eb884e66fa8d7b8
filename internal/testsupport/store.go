package testsupport

import (
	"testing"

	"dupicheck/internal/store"
)

// MustOpenStore opens a fingerprint store for tests and registers cleanup.
func MustOpenStore(t testing.TB, path string) *store.Store {
	t.Helper()

	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

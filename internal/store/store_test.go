package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dupicheck/internal/fingerprint"
	"dupicheck/internal/store"
	"dupicheck/internal/testsupport"
)

func openStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", ".dupicheck.db")
	return testsupport.MustOpenStore(t, dbPath), dbPath
}

func TestPutAndGetRoundTrip(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()
	mtime := time.Unix(1700000000, 123456789)

	if err := s.Put(ctx, store.Record{Path: "/a.png", Hash: 0xabc, HasHash: true, ModTime: mtime, Size: 42}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rec, ok, err := s.Get(ctx, "/a.png")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if rec.Hash != 0xabc || !rec.HasHash || rec.Size != 42 || !rec.ModTime.Equal(mtime) || rec.Ignored {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.UpdatedAt.IsZero() {
		t.Fatal("expected updated_at to be set")
	}

	if _, ok, err := s.Get(ctx, "/missing.png"); err != nil || ok {
		t.Fatalf("Get(missing) = %v, %v", ok, err)
	}
}

func TestPutPreservesIgnoredFlag(t *testing.T) {
	s, dir := openStore(t)
	ctx := context.Background()
	path := filepath.Join(filepath.Dir(dir), "kept.png")
	testsupport.WriteFile(t, path, 100)

	if err := s.MarkIgnored(ctx, []string{path}); err != nil {
		t.Fatalf("MarkIgnored: %v", err)
	}
	if err := s.Put(ctx, store.Record{Path: path, Hash: 7, HasHash: true, Size: 100}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rec, _, err := s.Get(ctx, path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !rec.Ignored {
		t.Fatal("expected Put to keep the ignored flag")
	}
	if rec.Hash != 7 {
		t.Fatalf("hash = %v, want 7", rec.Hash)
	}
}

func TestPutSetsButNeverClearsIgnored(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, store.Record{Path: "/b.png", Hash: 1, HasHash: true, Size: 10}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, store.Record{Path: "/b.png", Hash: 2, HasHash: true, Size: 10, Ignored: true}); err != nil {
		t.Fatalf("Put(ignored): %v", err)
	}
	rec, _, err := s.Get(ctx, "/b.png")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !rec.Ignored || rec.Hash != 2 {
		t.Fatalf("after ignored put: %+v", rec)
	}

	if err := s.Put(ctx, store.Record{Path: "/b.png", Hash: 3, HasHash: true, Size: 10}); err != nil {
		t.Fatalf("Put(plain): %v", err)
	}
	rec, _, err = s.Get(ctx, "/b.png")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !rec.Ignored || rec.Hash != 3 {
		t.Fatalf("expected ignored flag to survive plain put: %+v", rec)
	}
}

func TestMarkIgnoredCreatesPlaceholderForMissingFile(t *testing.T) {
	s, dir := openStore(t)
	ctx := context.Background()
	present := filepath.Join(filepath.Dir(dir), "present.png")
	testsupport.WriteFile(t, present, 321)
	missing := filepath.Join(filepath.Dir(dir), "gone.png")

	if err := s.MarkIgnored(ctx, []string{present, missing}); err != nil {
		t.Fatalf("MarkIgnored: %v", err)
	}

	rec, ok, err := s.Get(ctx, missing)
	if err != nil || !ok {
		t.Fatalf("Get(missing) = %v, %v", ok, err)
	}
	if !rec.Ignored || rec.HasHash || rec.Size != 0 || rec.ModTime.UnixNano() != 0 {
		t.Fatalf("unexpected placeholder %+v", rec)
	}

	rec, ok, err = s.Get(ctx, present)
	if err != nil || !ok {
		t.Fatalf("Get(present) = %v, %v", ok, err)
	}
	info, _ := os.Stat(present)
	if !rec.Ignored || rec.Size != 321 || !rec.Matches(info) {
		t.Fatalf("unexpected ignored record %+v", rec)
	}
}

func TestRecordMatchesRequiresExactStat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.png")
	testsupport.WriteFile(t, path, 10)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	rec := store.Record{ModTime: info.ModTime(), Size: info.Size()}
	if !rec.Matches(info) {
		t.Fatal("expected match for identical stat")
	}
	rec.Size++
	if rec.Matches(info) {
		t.Fatal("size change must invalidate")
	}
	rec.Size--
	rec.ModTime = rec.ModTime.Add(time.Nanosecond)
	if rec.Matches(info) {
		t.Fatal("mtime change must invalidate")
	}
}

func TestPruneMissingIsIdempotent(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()
	for _, path := range []string{"/a.png", "/b.png", "/c.png"} {
		if err := s.Put(ctx, store.Record{Path: path, Hash: 1, HasHash: true}); err != nil {
			t.Fatalf("Put %s: %v", path, err)
		}
	}

	current := []string{"/a.png", "/c.png", "/new.png"}
	removed, err := s.PruneMissing(ctx, current)
	if err != nil {
		t.Fatalf("PruneMissing: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, ok, _ := s.Get(ctx, "/b.png"); ok {
		t.Fatal("expected /b.png to be pruned")
	}

	removed, err = s.PruneMissing(ctx, current)
	if err != nil {
		t.Fatalf("second PruneMissing: %v", err)
	}
	if removed != 0 {
		t.Fatalf("second prune removed %d rows", removed)
	}
}

func TestIgnoredPairsAreSymmetric(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	added, err := s.AddIgnoredPair(ctx, "/z.png", "/a.png")
	if err != nil || !added {
		t.Fatalf("AddIgnoredPair = %v, %v", added, err)
	}
	added, err = s.AddIgnoredPair(ctx, "/a.png", "/z.png")
	if err != nil {
		t.Fatalf("AddIgnoredPair reversed: %v", err)
	}
	if added {
		t.Fatal("reversed pair should already be present")
	}

	for _, order := range [][2]string{{"/a.png", "/z.png"}, {"/z.png", "/a.png"}} {
		ok, err := s.IsIgnoredPair(ctx, order[0], order[1])
		if err != nil || !ok {
			t.Fatalf("IsIgnoredPair(%v) = %v, %v", order, ok, err)
		}
	}

	set, err := s.IgnoredPairs(ctx)
	if err != nil {
		t.Fatalf("IgnoredPairs: %v", err)
	}
	if !set.Contains("/z.png", "/a.png") || set.Contains("/a.png", "/b.png") {
		t.Fatalf("unexpected set %v", set)
	}

	if _, err := s.AddIgnoredPair(ctx, "/same.png", "/same.png"); err == nil {
		t.Fatal("expected error for identical paths")
	}
}

func TestRemoveIgnoredPairReportsPresence(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	removed, err := s.RemoveIgnoredPair(ctx, "/x.png", "/y.png")
	if err != nil {
		t.Fatalf("RemoveIgnoredPair: %v", err)
	}
	if removed {
		t.Fatal("removing an absent pair should report false")
	}

	if _, err := s.AddIgnoredPair(ctx, "/x.png", "/y.png"); err != nil {
		t.Fatalf("AddIgnoredPair: %v", err)
	}
	removed, err = s.RemoveIgnoredPair(ctx, "/y.png", "/x.png")
	if err != nil || !removed {
		t.Fatalf("RemoveIgnoredPair = %v, %v", removed, err)
	}
}

func TestListIgnoredPairsKeepsInsertionOrder(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()
	input := [][2]string{{"/m.png", "/n.png"}, {"/b.png", "/a.png"}, {"/y.png", "/x.png"}}
	for _, pair := range input {
		if _, err := s.AddIgnoredPair(ctx, pair[0], pair[1]); err != nil {
			t.Fatalf("AddIgnoredPair: %v", err)
		}
	}
	pairs, err := s.ListIgnoredPairs(ctx)
	if err != nil {
		t.Fatalf("ListIgnoredPairs: %v", err)
	}
	want := []store.PairKey{{A: "/m.png", B: "/n.png"}, {A: "/a.png", B: "/b.png"}, {A: "/x.png", B: "/y.png"}}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(pairs), len(want))
	}
	for i, pair := range pairs {
		if pair.PathA != want[i].A || pair.PathB != want[i].B {
			t.Fatalf("pair %d = %s,%s want %v", i, pair.PathA, pair.PathB, want[i])
		}
	}

	cleared, err := s.ClearIgnoredPairs(ctx)
	if err != nil || cleared != 3 {
		t.Fatalf("ClearIgnoredPairs = %d, %v", cleared, err)
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), ".dupicheck.db")
	ctx := context.Background()

	first, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.Put(ctx, store.Record{Path: "/a.png", Hash: fingerprint.Hash(99), HasHash: true}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := first.AddIgnoredPair(ctx, "/a.png", "/b.png"); err != nil {
		t.Fatalf("AddIgnoredPair: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := testsupport.MustOpenStore(t, dbPath)
	rec, ok, err := second.Get(ctx, "/a.png")
	if err != nil || !ok || rec.Hash != 99 {
		t.Fatalf("Get after reopen = %+v, %v, %v", rec, ok, err)
	}
	summary, err := second.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Records != 1 || summary.IgnoredPairs != 1 || summary.SizeBytes == 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestSummaryCountsPlaceholders(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()
	if err := s.Put(ctx, store.Record{Path: "/a.png", Hash: 1, HasHash: true}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.MarkIgnored(ctx, []string{"/gone-1.png", "/gone-2.png"}); err != nil {
		t.Fatalf("MarkIgnored: %v", err)
	}
	summary, err := s.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Records != 3 || summary.Ignored != 2 || summary.Placeholders != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.LastUpdated.IsZero() {
		t.Fatal("expected last updated time")
	}
}

func TestOpenRejectsConcurrentWriter(t *testing.T) {
	_, dbPath := openStore(t)
	_, err := store.Open(dbPath)
	if !errors.Is(err, store.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestNilStoreIsEmpty(t *testing.T) {
	var s *store.Store
	ctx := context.Background()
	if err := s.Put(ctx, store.Record{Path: "/a.png"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, err := s.Get(ctx, "/a.png"); ok || err != nil {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if n, err := s.PruneMissing(ctx, nil); n != 0 || err != nil {
		t.Fatalf("PruneMissing = %d, %v", n, err)
	}
	set, err := s.IgnoredPairs(ctx)
	if err != nil || set.Contains("/a", "/b") {
		t.Fatalf("IgnoredPairs = %v, %v", set, err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

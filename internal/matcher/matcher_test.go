package matcher_test

import (
	"reflect"
	"testing"

	"dupicheck/internal/fingerprint"
	"dupicheck/internal/matcher"
	"dupicheck/internal/store"
)

func TestFindReportsPairWithinThreshold(t *testing.T) {
	entries := []fingerprint.Entry{
		{Path: "/a.png", Hash: 0b0000},
		{Path: "/b.png", Hash: 0b0111},
	}
	got := matcher.Find(entries, 5, nil)
	want := []matcher.Match{{Original: "/a.png", Duplicate: "/b.png", Distance: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Find = %+v, want %+v", got, want)
	}

	if got := matcher.Find(entries, 2, nil); len(got) != 0 {
		t.Fatalf("expected no match at threshold 2, got %+v", got)
	}
}

func TestFindAnchorsClusterOnFirstEntry(t *testing.T) {
	entries := []fingerprint.Entry{
		{Path: "/a.png", Hash: 0b0000},
		{Path: "/b.png", Hash: 0b0001},
		{Path: "/c.png", Hash: 0b0011},
	}
	got := matcher.Find(entries, 5, nil)
	want := []matcher.Match{
		{Original: "/a.png", Duplicate: "/b.png", Distance: 1},
		{Original: "/a.png", Duplicate: "/c.png", Distance: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Find = %+v, want %+v", got, want)
	}
}

func TestFindReportsEachDuplicateOnce(t *testing.T) {
	entries := []fingerprint.Entry{
		{Path: "/1.png", Hash: 0xff},
		{Path: "/2.png", Hash: 0x00},
		{Path: "/3.png", Hash: 0xfe},
		{Path: "/4.png", Hash: 0x01},
		{Path: "/5.png", Hash: 0xff},
	}
	got := matcher.Find(entries, 1, nil)
	seen := map[string]int{}
	for _, m := range got {
		seen[m.Duplicate]++
		if m.Distance > 1 {
			t.Fatalf("match over threshold: %+v", m)
		}
	}
	for path, count := range seen {
		if count > 1 {
			t.Fatalf("%s reported %d times as duplicate", path, count)
		}
	}
	if !reflect.DeepEqual(got, matcher.Find(entries, 1, nil)) {
		t.Fatal("Find is not deterministic")
	}
	want := []matcher.Match{
		{Original: "/1.png", Duplicate: "/3.png", Distance: 1},
		{Original: "/1.png", Duplicate: "/5.png", Distance: 0},
		{Original: "/2.png", Duplicate: "/4.png", Distance: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Find = %+v, want %+v", got, want)
	}
}

func TestFindSkipsIgnoredPairs(t *testing.T) {
	entries := []fingerprint.Entry{
		{Path: "/a.png", Hash: 42},
		{Path: "/b.png", Hash: 42},
	}
	if got := matcher.Find(entries, 0, nil); len(got) != 1 {
		t.Fatalf("expected one match before ignoring, got %+v", got)
	}

	ignored := store.PairSet{}
	ignored.Add("/b.png", "/a.png")
	if got := matcher.Find(entries, 64, ignored); len(got) != 0 {
		t.Fatalf("ignored pair was matched: %+v", got)
	}
}

func TestFindHandlesDegenerateInput(t *testing.T) {
	if got := matcher.Find(nil, 5, nil); got != nil {
		t.Fatalf("expected nil for empty input, got %+v", got)
	}
	single := []fingerprint.Entry{{Path: "/a.png", Hash: 1}}
	if got := matcher.Find(single, 5, nil); got != nil {
		t.Fatalf("expected nil for one entry, got %+v", got)
	}
	pair := []fingerprint.Entry{{Path: "/a.png", Hash: 1}, {Path: "/b.png", Hash: 1}}
	if got := matcher.Find(pair, -1, nil); got != nil {
		t.Fatalf("expected nil for negative threshold, got %+v", got)
	}
}

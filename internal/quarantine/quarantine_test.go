package quarantine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dupicheck/internal/quarantine"
	"dupicheck/internal/testsupport"
)

type recordingMarker struct {
	ignored [][]string
	pairs   [][2]string
}

func (m *recordingMarker) MarkIgnored(_ context.Context, paths []string) error {
	m.ignored = append(m.ignored, append([]string(nil), paths...))
	return nil
}

func (m *recordingMarker) AddIgnoredPair(_ context.Context, a, b string) (bool, error) {
	m.pairs = append(m.pairs, [2]string{a, b})
	return true, nil
}

func TestAllocateUnitUsesFirstFreeSlot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "manual_check")

	first, err := quarantine.AllocateUnit(root)
	if err != nil {
		t.Fatalf("AllocateUnit: %v", err)
	}
	if filepath.Base(first) != "pair_001" {
		t.Fatalf("first unit = %s", first)
	}
	if err := os.Mkdir(filepath.Join(root, "pair_003"), 0o755); err != nil {
		t.Fatal(err)
	}
	second, _ := quarantine.AllocateUnit(root)
	third, _ := quarantine.AllocateUnit(root)
	if filepath.Base(second) != "pair_002" || filepath.Base(third) != "pair_004" {
		t.Fatalf("units = %s, %s", second, third)
	}
}

func TestNoteRoundTripIgnoresUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	note := quarantine.Note{
		Original1: "/photos/a: b.jpg",
		Original2: "/photos/c.jpg",
		Stored1:   "a: b.jpg",
		Stored2:   "c_1.jpg",
		Distance:  4,
	}
	if err := quarantine.WriteNote(dir, note); err != nil {
		t.Fatalf("WriteNote: %v", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, quarantine.NoteFileName), os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("reviewer: someone\nnot a key line\n")
	_ = f.Close()

	got, ok, err := quarantine.ReadNote(dir)
	if err != nil || !ok {
		t.Fatalf("ReadNote = %v, %v", ok, err)
	}
	if got != note {
		t.Fatalf("ReadNote = %+v, want %+v", got, note)
	}

	if _, ok, err := quarantine.ReadNote(t.TempDir()); ok || err != nil {
		t.Fatalf("missing note = %v, %v", ok, err)
	}
}

func setupUnit(t *testing.T, root, unitName string, note quarantine.Note, files ...string) string {
	t.Helper()
	unit := filepath.Join(root, unitName)
	for _, name := range files {
		testsupport.WriteFile(t, filepath.Join(unit, name), 10)
	}
	if note.Original1 != "" {
		if err := quarantine.WriteNote(unit, note); err != nil {
			t.Fatal(err)
		}
	}
	return unit
}

func TestReintegrateRestoresOriginalsAndMarksPair(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "manual_check")
	origA := filepath.Join(base, "album", "a.jpg")
	origB := filepath.Join(base, "other", "deep", "a.jpg")
	unit := setupUnit(t, root, "pair_001", quarantine.Note{
		Original1: origA,
		Original2: origB,
		Stored1:   "a.jpg",
		Stored2:   "a_1.jpg",
		Distance:  4,
	}, "a.jpg", "a_1.jpg")

	marker := &recordingMarker{}
	result, err := quarantine.Reintegrate(context.Background(), root, marker, quarantine.ReintegrateOptions{
		RemoveEmptyDirs:           true,
		MarkIgnoredIfBothRestored: true,
	})
	if err != nil {
		t.Fatalf("Reintegrate: %v", err)
	}

	testsupport.AssertExists(t, origA)
	testsupport.AssertExists(t, origB)
	testsupport.AssertMissing(t, unit)
	if len(result.Restored) != 2 || len(result.Units) != 1 || !result.Units[0].Removed {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(marker.pairs) != 1 || len(marker.ignored) != 1 || len(marker.ignored[0]) != 2 {
		t.Fatalf("marker calls = %+v / %+v", marker.pairs, marker.ignored)
	}
	if !result.Units[0].MarkedIgnored {
		t.Fatal("expected unit marked ignored")
	}
}

func TestReintegrateKeepsNoteWhenUnitNotEmpty(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "manual_check")
	origA := filepath.Join(base, "a.jpg")
	origB := filepath.Join(base, "b.jpg")
	unit := setupUnit(t, root, "pair_001", quarantine.Note{Original1: origA, Original2: origB, Distance: 3}, "a.jpg", "b.jpg")
	if err := os.Mkdir(filepath.Join(unit, "extra"), 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := quarantine.Reintegrate(context.Background(), root, nil, quarantine.ReintegrateOptions{RemoveEmptyDirs: true})
	if err != nil {
		t.Fatalf("Reintegrate: %v", err)
	}
	testsupport.AssertExists(t, origA)
	testsupport.AssertExists(t, origB)
	if len(result.Units) != 1 || result.Units[0].Removed {
		t.Fatalf("unit with leftover entries must stay: %+v", result.Units)
	}
	testsupport.AssertExists(t, unit)
	testsupport.AssertExists(t, filepath.Join(unit, quarantine.NoteFileName))
}

func TestReintegrateResolvesCollisionsAndFallback(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "manual_check")
	origA := filepath.Join(base, "album", "a.jpg")
	testsupport.WriteFile(t, origA, 3)

	setupUnit(t, root, "pair_001", quarantine.Note{
		Original1: origA,
		Original2: filepath.Join(base, "album", "b.jpg"),
		Distance:  3,
	}, "a.jpg", "renamed.jpg")

	marker := &recordingMarker{}
	result, err := quarantine.Reintegrate(context.Background(), root, marker, quarantine.ReintegrateOptions{
		RemoveEmptyDirs:           true,
		MarkIgnoredIfBothRestored: true,
	})
	if err != nil {
		t.Fatalf("Reintegrate: %v", err)
	}
	testsupport.AssertExists(t, filepath.Join(base, "album", "a_1.jpg"))
	testsupport.AssertExists(t, filepath.Join(base, "renamed.jpg"))
	if len(result.Restored) != 2 {
		t.Fatalf("restored = %v", result.Restored)
	}
	if len(marker.pairs) != 1 {
		t.Fatalf("expected both restored files recorded as a pair, got %v", marker.pairs)
	}
}

func TestReintegrateDryRunLeavesFilesInPlace(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "manual_check")
	origA := filepath.Join(base, "a.jpg")
	origB := filepath.Join(base, "b.jpg")
	unit := setupUnit(t, root, "pair_001", quarantine.Note{Original1: origA, Original2: origB, Distance: 3}, "a.jpg", "b.jpg")

	marker := &recordingMarker{}
	result, err := quarantine.Reintegrate(context.Background(), root, marker, quarantine.ReintegrateOptions{
		DryRun:                    true,
		RemoveEmptyDirs:           true,
		MarkIgnoredIfBothRestored: true,
	})
	if err != nil {
		t.Fatalf("Reintegrate: %v", err)
	}
	testsupport.AssertExists(t, filepath.Join(unit, "a.jpg"))
	testsupport.AssertMissing(t, origA)
	if len(result.Restored) != 0 || len(result.Units[0].Moves) != 2 {
		t.Fatalf("unexpected dry-run result %+v", result)
	}
	if result.Units[0].Moves[0].To != origA {
		t.Fatalf("planned destination = %s", result.Units[0].Moves[0].To)
	}
	if len(marker.pairs) != 0 {
		t.Fatal("dry run must not mark pairs")
	}
}

func TestReintegrateSingleFileDoesNotMark(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "manual_check")
	origA := filepath.Join(base, "a.jpg")
	setupUnit(t, root, "pair_002", quarantine.Note{Original1: origA, Original2: filepath.Join(base, "b.jpg")}, "a.jpg")

	marker := &recordingMarker{}
	result, err := quarantine.Reintegrate(context.Background(), root, marker, quarantine.ReintegrateOptions{
		MarkIgnoredIfBothRestored: true,
	})
	if err != nil {
		t.Fatalf("Reintegrate: %v", err)
	}
	testsupport.AssertExists(t, origA)
	if len(marker.pairs) != 0 || result.Units[0].MarkedIgnored {
		t.Fatal("single restored file must not be recorded as a pair")
	}
	testsupport.AssertExists(t, filepath.Join(root, "pair_002", quarantine.NoteFileName))
}

func TestReintegrateMissingRootFails(t *testing.T) {
	if _, err := quarantine.Reintegrate(context.Background(), filepath.Join(t.TempDir(), "nope"), nil, quarantine.ReintegrateOptions{}); err == nil {
		t.Fatal("expected error for missing quarantine root")
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dupicheck/internal/api"
	"dupicheck/internal/quarantine"
	"dupicheck/internal/store"
	"dupicheck/internal/testsupport"
)

type cliEnv struct {
	configPath string
	folder     string
}

func setupCLITestEnv(t *testing.T) cliEnv {
	t.Helper()
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	if err := os.WriteFile(configPath, []byte("[logging]\nlevel = \"error\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	folder := filepath.Join(base, "photos")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		t.Fatalf("mkdir photos: %v", err)
	}
	return cliEnv{configPath: configPath, folder: folder}
}

// seedDuplicates writes a.png and a larger pixel-identical b.png plus an
// unrelated c.png.
func (e cliEnv) seedDuplicates(t *testing.T) (string, string, string) {
	t.Helper()
	a := filepath.Join(e.folder, "a.png")
	b := filepath.Join(e.folder, "b.png")
	c := filepath.Join(e.folder, "c.png")
	testsupport.WriteImage(t, a, 1, false, 0)
	testsupport.WriteImage(t, b, 1, false, 4096)
	testsupport.WriteImage(t, c, 99, false, 0)
	return a, b, c
}

func runCLI(t *testing.T, env cliEnv, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestScanPrintsMatches(t *testing.T) {
	env := setupCLITestEnv(t)
	a, b, _ := env.seedDuplicates(t)

	out, _, err := runCLI(t, env, "", "scan", env.folder)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for _, want := range []string{
		"Scanning folder: " + env.folder,
		"ORIGINAL: " + a,
		"DUPLICATE: " + b,
		"Distance: 0",
		"Found 1 duplicate.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("scan output missing %q:\n%s", want, out)
		}
	}
	testsupport.AssertExists(t, filepath.Join(env.folder, ".dupicheck.db"))

	out, _, err = runCLI(t, env, "", "scan", env.folder)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if !strings.Contains(out, "3 from cache") {
		t.Fatalf("expected cached fingerprints on second scan:\n%s", out)
	}
}

func TestScanJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	a, b, _ := env.seedDuplicates(t)

	out, _, err := runCLI(t, env, "", "--json", "scan", "--no-cache", env.folder)
	if err != nil {
		t.Fatalf("scan --json: %v", err)
	}
	var result api.ScanResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if result.Images != 3 || result.CacheHits != 0 || result.StorePath != "" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Matches) != 1 || result.Matches[0].Original != a || result.Matches[0].Duplicate != b {
		t.Fatalf("unexpected matches: %+v", result.Matches)
	}
	testsupport.AssertMissing(t, filepath.Join(env.folder, ".dupicheck.db"))
}

func TestScanReportsEmptyFolder(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "scan", env.folder)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !strings.Contains(out, "No images found in the folder.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestScanRejectsNegativeThreshold(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedDuplicates(t)

	_, _, err := runCLI(t, env, "", "scan", "-t", "-1", env.folder)
	if !errors.Is(err, api.ErrInvalidThreshold) {
		t.Fatalf("expected ErrInvalidThreshold, got %v", err)
	}
}

func TestDeleteAbortsWithoutConfirmation(t *testing.T) {
	env := setupCLITestEnv(t)
	a, b, c := env.seedDuplicates(t)

	out, _, err := runCLI(t, env, "n\n", "delete", env.folder)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out, "Are you sure you want to DELETE duplicates? [y/N]: ") || !strings.Contains(out, "Aborted.") {
		t.Fatalf("expected prompt and abort:\n%s", out)
	}
	for _, path := range []string{a, b, c} {
		testsupport.AssertExists(t, path)
	}
}

func TestDeleteRemovesSmallerFile(t *testing.T) {
	env := setupCLITestEnv(t)
	a, b, c := env.seedDuplicates(t)

	out, _, err := runCLI(t, env, "", "delete", "-y", env.folder)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, want := range []string{
		"No files moved for manual check.",
		"Deleted 1 file",
		"Kept 1 file.",
		"Done.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("delete output missing %q:\n%s", want, out)
		}
	}
	testsupport.AssertMissing(t, a)
	testsupport.AssertExists(t, b)
	testsupport.AssertExists(t, c)
	testsupport.AssertMissing(t, filepath.Join(env.folder, "manual_check"))
}

func TestDeleteJSONRequiresYes(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedDuplicates(t)

	if _, _, err := runCLI(t, env, "", "--json", "delete", env.folder); err == nil {
		t.Fatal("expected an error without --yes")
	}
}

func TestMoveRelocatesDuplicates(t *testing.T) {
	env := setupCLITestEnv(t)
	a, b, _ := env.seedDuplicates(t)
	target := filepath.Join(env.folder, "dupes")

	out, _, err := runCLI(t, env, "", "move", env.folder, target)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !strings.Contains(out, "Duplicates moved successfully.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	testsupport.AssertExists(t, a)
	testsupport.AssertMissing(t, b)
	testsupport.AssertExists(t, filepath.Join(target, "b.png"))

	out, _, err = runCLI(t, env, "", "move", env.folder, target)
	if err != nil {
		t.Fatalf("second move: %v", err)
	}
	if !strings.Contains(out, "No duplicates found.") {
		t.Fatalf("target should not be rescanned:\n%s", out)
	}
}

func TestReintegrateRestoresAndIgnoresPair(t *testing.T) {
	env := setupCLITestEnv(t)
	manual := filepath.Join(env.folder, "manual_check")
	unit := filepath.Join(manual, "pair_001")
	a := filepath.Join(env.folder, "a.png")
	b := filepath.Join(env.folder, "b.png")
	testsupport.WriteImage(t, filepath.Join(unit, "a.png"), 5, false, 0)
	testsupport.WriteImage(t, filepath.Join(unit, "b.png"), 5, false, 10)
	if err := quarantine.WriteNote(unit, quarantine.Note{Original1: a, Original2: b, Distance: 4}); err != nil {
		t.Fatalf("write note: %v", err)
	}

	out, _, err := runCLI(t, env, "", "reintegrate", "--dry-run", manual)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !strings.Contains(out, "Would restore") {
		t.Fatalf("unexpected dry run output:\n%s", out)
	}
	testsupport.AssertMissing(t, a)

	out, _, err = runCLI(t, env, "", "reintegrate", manual)
	if err != nil {
		t.Fatalf("reintegrate: %v", err)
	}
	if !strings.Contains(out, "Restored 2 files from 1 folder.") || !strings.Contains(out, "Marked 1 pair as not duplicates.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	testsupport.AssertExists(t, a)
	testsupport.AssertExists(t, b)
	testsupport.AssertMissing(t, unit)

	out, _, err = runCLI(t, env, "", "scan", env.folder)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !strings.Contains(out, "No duplicates found.") {
		t.Fatalf("restored pair should be ignored:\n%s", out)
	}
}

func TestIgnoredCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	a := filepath.Join(env.folder, "x.png")
	b := filepath.Join(env.folder, "y.png")

	out, _, err := runCLI(t, env, "", "ignored", "list", "--folder", env.folder)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if !strings.Contains(out, "No ignored pairs.") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	if _, _, err := runCLI(t, env, "", "ignored", "add", "--folder", env.folder, b, a); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, _, err = runCLI(t, env, "", "ignored", "add", "--folder", env.folder, a, b)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if !strings.Contains(out, "Pair already ignored") {
		t.Fatalf("reversed pair should already exist:\n%s", out)
	}

	out, _, err = runCLI(t, env, "", "--json", "ignored", "list", "--folder", env.folder)
	if err != nil {
		t.Fatalf("list json: %v", err)
	}
	var pairs []store.IgnoredPair
	if err := json.Unmarshal([]byte(out), &pairs); err != nil {
		t.Fatalf("decode pairs: %v", err)
	}
	if len(pairs) != 1 || pairs[0].PathA != a || pairs[0].PathB != b {
		t.Fatalf("unexpected pairs: %+v", pairs)
	}

	if _, _, err := runCLI(t, env, "", "ignored", "remove", "--folder", env.folder, "2"); !errors.Is(err, api.ErrEntryOutOfRange) {
		t.Fatalf("expected ErrEntryOutOfRange, got %v", err)
	}
	if _, _, err := runCLI(t, env, "", "ignored", "remove", "--folder", env.folder, "zero"); err == nil {
		t.Fatal("expected error for non-numeric entry")
	}
	out, _, err = runCLI(t, env, "", "ignored", "remove", "--folder", env.folder, "1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !strings.Contains(out, "Removed ignored pair 1") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	if _, _, err := runCLI(t, env, "", "ignored", "add", "--folder", env.folder, a, b); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	out, _, err = runCLI(t, env, "", "ignored", "clear", "-y", "--folder", env.folder)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !strings.Contains(out, "Removed 1 ignored pair") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedDuplicates(t)

	out, _, err := runCLI(t, env, "", "status", env.folder)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "not created yet") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	testsupport.AssertMissing(t, filepath.Join(env.folder, ".dupicheck.db"))

	if _, _, err := runCLI(t, env, "", "scan", env.folder); err != nil {
		t.Fatalf("scan: %v", err)
	}
	out, _, err = runCLI(t, env, "", "--json", "status", env.folder)
	if err != nil {
		t.Fatalf("status json: %v", err)
	}
	var report api.StatusReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !report.StoreExists || report.Summary.Records != 3 || report.ManualDirSeen {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, _, err := runCLI(t, env, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if _, _, err := runCLI(t, env, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config exists without --overwrite")
	}
	if _, _, err := runCLI(t, env, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, env, "", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "threshold = 5") || !strings.Contains(out, "[logging]") {
		t.Fatalf("unexpected config:\n%s", out)
	}

	out, _, err = runCLI(t, env, "", "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatCount(1234567); got != "1,234,567" {
		t.Fatalf("formatCount = %q", got)
	}
	if got := formatBytes(1536); got != "1.5 KiB" {
		t.Fatalf("formatBytes = %q", got)
	}
	if got := formatBytes(-1); got != "0 B" {
		t.Fatalf("formatBytes(-1) = %q", got)
	}
}

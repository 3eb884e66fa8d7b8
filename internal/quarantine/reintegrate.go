package quarantine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dupicheck/internal/fileutil"
	"dupicheck/internal/logging"
)

// IgnoreMarker persists a human "not a duplicate" decision.
type IgnoreMarker interface {
	MarkIgnored(ctx context.Context, paths []string) error
	AddIgnoredPair(ctx context.Context, a, b string) (bool, error)
}

// ReintegrateOptions controls a Reintegrate run.
type ReintegrateOptions struct {
	DryRun bool
	// RemoveEmptyDirs deletes the note and the unit directory once every
	// file in it has been restored.
	RemoveEmptyDirs bool
	// MarkIgnoredIfBothRestored records the restored pair in the ignore-list.
	MarkIgnoredIfBothRestored bool
	Logger                    *slog.Logger
}

// PlannedMove is one file relocation, performed or (in dry-run) proposed.
type PlannedMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// UnitResult summarizes one unit.
type UnitResult struct {
	Unit          string        `json:"unit"`
	Moves         []PlannedMove `json:"moves"`
	Restored      []string      `json:"restored"`
	Removed       bool          `json:"removed"`
	MarkedIgnored bool          `json:"marked_ignored"`
	Errors        []string      `json:"errors,omitempty"`
}

// ReintegrateResult lists every restored destination and the per-unit detail.
type ReintegrateResult struct {
	Restored []string     `json:"restored"`
	Units    []UnitResult `json:"units"`
	DryRun   bool         `json:"dry_run"`
}

// Reintegrate moves the files of every unit under root back to their
// original directories, processing units in name order. Files without a
// recoverable origin go to the parent of root. Per-file failures are recorded
// on the unit and never stop the run. marker may be nil.
func Reintegrate(ctx context.Context, root string, marker IgnoreMarker, opts ReintegrateOptions) (ReintegrateResult, error) {
	logger := logging.NewComponentLogger(opts.Logger, "reintegrate")
	if ctx == nil {
		ctx = context.Background()
	}
	root = filepath.Clean(root)
	units, err := ListUnits(root)
	if err != nil {
		return ReintegrateResult{}, fmt.Errorf("list quarantine units: %w", err)
	}

	result := ReintegrateResult{DryRun: opts.DryRun}
	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		unitResult := reintegrateUnit(ctx, logger, root, unit, marker, opts)
		result.Restored = append(result.Restored, unitResult.Restored...)
		result.Units = append(result.Units, unitResult)
	}
	return result, nil
}

func reintegrateUnit(ctx context.Context, logger *slog.Logger, root, unit string, marker IgnoreMarker, opts ReintegrateOptions) UnitResult {
	res := UnitResult{Unit: unit}
	unitLogger := logger.With(logging.String("unit", filepath.Base(unit)))

	note, hasNote, err := ReadNote(unit)
	if err != nil {
		logging.WarnWithContext(unitLogger, "unreadable quarantine note", "note_read_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "files will be restored to the parent of the quarantine folder"),
			logging.String(logging.FieldImpact, "original locations unknown for this unit"),
		)
		hasNote = false
	}

	entries, err := os.ReadDir(unit)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("read unit: %v", err))
		return res
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == NoteFileName {
			continue
		}
		files = append(files, entry.Name())
	}

	origins := resolveOrigins(files, note, hasNote)
	fallbackDir := filepath.Dir(root)
	for _, name := range files {
		src := filepath.Join(unit, name)
		destDir, destName := fallbackDir, name
		if original, ok := origins[name]; ok {
			destDir, destName = filepath.Dir(original), filepath.Base(original)
		}

		if opts.DryRun {
			target := filepath.Join(destDir, destName)
			if fileutil.Exists(target) {
				if unique, err := fileutil.UniquePath(destDir, destName); err == nil {
					target = unique
				}
			}
			res.Moves = append(res.Moves, PlannedMove{From: src, To: target})
			unitLogger.Info("would restore file",
				logging.String("from", src),
				logging.String("to", target),
			)
			continue
		}

		dest, err := restoreFile(src, destDir, destName)
		if err != nil {
			logging.WarnWithContext(unitLogger, "failed to restore file", "restore_failed",
				logging.String(logging.FieldPath, src),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the original directory"),
				logging.String(logging.FieldImpact, "file stays in quarantine"),
			)
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		res.Moves = append(res.Moves, PlannedMove{From: src, To: dest})
		res.Restored = append(res.Restored, dest)
		unitLogger.Info("restored file",
			logging.String("from", src),
			logging.String("to", dest),
		)
	}

	if opts.DryRun {
		return res
	}

	if opts.RemoveEmptyDirs && len(res.Errors) == 0 {
		if hasNote && onlyNoteLeft(unit) {
			_ = os.Remove(filepath.Join(unit, NoteFileName))
		}
		removed, err := fileutil.RemoveIfEmpty(unit)
		if err != nil {
			unitLogger.Debug("unit directory not removed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "unit_remove_failed"),
			)
		}
		res.Removed = removed
	}

	if opts.MarkIgnoredIfBothRestored && marker != nil && len(files) == 2 && len(res.Restored) == 2 {
		if err := markPair(ctx, marker, res.Restored); err != nil {
			logging.WarnWithContext(unitLogger, "failed to record ignored pair", "ignore_pair_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "add the pair with 'dupicheck ignored add'"),
				logging.String(logging.FieldImpact, "pair may be reported as duplicate again"),
			)
			res.Errors = append(res.Errors, fmt.Sprintf("mark ignored: %v", err))
		} else {
			res.MarkedIgnored = true
		}
	}
	return res
}

// resolveOrigins maps file names in a unit to original paths. Stored names
// recorded in the note win; otherwise a file is matched by basename against
// an original that has not been claimed yet.
func resolveOrigins(files []string, note Note, hasNote bool) map[string]string {
	origins := make(map[string]string, len(files))
	if !hasNote {
		return origins
	}
	claimed := map[string]bool{}
	stored := map[string]string{}
	if note.Stored1 != "" && note.Original1 != "" {
		stored[note.Stored1] = note.Original1
	}
	if note.Stored2 != "" && note.Original2 != "" {
		stored[note.Stored2] = note.Original2
	}
	for _, name := range files {
		if original, ok := stored[name]; ok && !claimed[original] {
			origins[name] = original
			claimed[original] = true
		}
	}
	for _, name := range files {
		if _, done := origins[name]; done {
			continue
		}
		for _, original := range note.Originals() {
			if original == "" || claimed[original] {
				continue
			}
			if filepath.Base(original) == name {
				origins[name] = original
				claimed[original] = true
				break
			}
		}
	}
	return origins
}

func restoreFile(src, destDir, destName string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}
	dest, err := fileutil.UniquePath(destDir, destName)
	if err != nil {
		return "", err
	}
	if err := fileutil.MoveFile(src, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func markPair(ctx context.Context, marker IgnoreMarker, restored []string) error {
	if err := marker.MarkIgnored(ctx, restored); err != nil {
		return err
	}
	if _, err := marker.AddIgnoredPair(ctx, restored[0], restored[1]); err != nil {
		return err
	}
	return nil
}

// onlyNoteLeft reports whether the note is the last entry in unit. A unit
// holding anything else keeps its note so it can be restored later.
func onlyNoteLeft(unit string) bool {
	entries, err := os.ReadDir(unit)
	if err != nil || len(entries) != 1 {
		return false
	}
	return entries[0].Name() == NoteFileName
}

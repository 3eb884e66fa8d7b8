package disposition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dupicheck/internal/fileutil"
	"dupicheck/internal/logging"
	"dupicheck/internal/matcher"
	"dupicheck/internal/quarantine"
)

// PairError records a match whose disposition failed.
type PairError struct {
	Original  string `json:"original"`
	Duplicate string `json:"duplicate"`
	Err       string `json:"error"`
}

func newPairError(m matcher.Match, err error) PairError {
	return PairError{Original: m.Original, Duplicate: m.Duplicate, Err: err.Error()}
}

// DeleteResult aggregates a DeleteWithChecks run.
type DeleteResult struct {
	// MovedForReview lists the quarantined files at their new location.
	MovedForReview []string `json:"moved_for_review"`
	Units          []string `json:"units"`
	Deleted        []string `json:"deleted"`
	Kept           []string `json:"kept"`
	// FreedBytes sums the sizes of deleted files.
	FreedBytes int64       `json:"freed_bytes"`
	Errors     []PairError `json:"errors,omitempty"`
}

// DeleteWithChecks processes matches in order. A match whose distance
// exceeds manualThreshold is moved as a pair into a new quarantine unit
// under quarantineRoot for human review. Closer matches are resolved by
// deleting the smaller file; on equal sizes the original is kept. A missing
// file counts as smaller, and when both are gone the pair is skipped. One
// failing pair never stops the run.
func DeleteWithChecks(ctx context.Context, matches []matcher.Match, quarantineRoot string, manualThreshold int, logger *slog.Logger) DeleteResult {
	logger = logging.NewComponentLogger(logger, "disposition")
	if ctx == nil {
		ctx = context.Background()
	}

	var result DeleteResult
	for _, m := range matches {
		if ctx.Err() != nil {
			break
		}
		var err error
		if m.Distance > manualThreshold {
			err = quarantinePair(logger, m, quarantineRoot, &result)
		} else {
			err = resolveBySize(logger, m, &result)
		}
		if err != nil {
			logging.WarnWithContext(logger, "failed to process duplicate pair", "disposition_failed",
				logging.String("original", m.Original),
				logging.String("duplicate", m.Duplicate),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions and free space"),
				logging.String(logging.FieldImpact, "pair left unresolved"),
			)
			result.Errors = append(result.Errors, newPairError(m, err))
		}
	}
	return result
}

func quarantinePair(logger *slog.Logger, m matcher.Match, root string, result *DeleteResult) error {
	for _, path := range []string{m.Original, m.Duplicate} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}

	unit, err := quarantine.AllocateUnit(root)
	if err != nil {
		return err
	}

	var moved []string
	rollback := func() {
		sources := []string{m.Original, m.Duplicate}
		for i, dest := range moved {
			if err := fileutil.MoveFile(dest, sources[i]); err != nil {
				logging.ErrorWithContext(logger, "failed to roll back quarantine move", "quarantine_rollback_failed",
					logging.String(logging.FieldPath, dest),
					logging.String("original", sources[i]),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "move the file back by hand"),
				)
			}
		}
		_ = os.Remove(unit)
	}
	for _, src := range []string{m.Original, m.Duplicate} {
		dest, err := fileutil.UniquePath(unit, filepath.Base(src))
		if err == nil {
			err = fileutil.MoveFile(src, dest)
		}
		if err != nil {
			rollback()
			return fmt.Errorf("move %s into %s: %w", src, unit, err)
		}
		moved = append(moved, dest)
	}

	note := quarantine.Note{
		Original1: m.Original,
		Original2: m.Duplicate,
		Stored1:   filepath.Base(moved[0]),
		Stored2:   filepath.Base(moved[1]),
		Distance:  m.Distance,
	}
	if err := quarantine.WriteNote(unit, note); err != nil {
		logging.WarnWithContext(logger, "quarantine note not written", "note_write_failed",
			logging.String("unit", unit),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "files were moved; restore them by hand if needed"),
			logging.String(logging.FieldImpact, "reintegrate will restore to the parent folder"),
		)
	}

	logger.Info("moved pair for manual review",
		logging.String("unit", unit),
		logging.String("original", m.Original),
		logging.String("duplicate", m.Duplicate),
		logging.Int("distance", m.Distance),
	)
	result.Units = append(result.Units, unit)
	result.MovedForReview = append(result.MovedForReview, moved...)
	return nil
}

// resolveBySize deletes the smaller file of m and records the other as kept.
// A missing file counts as size -1, so it is never the one kept unless both
// are gone, in which case nothing is recorded.
func resolveBySize(logger *slog.Logger, m matcher.Match, result *DeleteResult) error {
	size1 := fileutil.SizeOrMissing(m.Original)
	size2 := fileutil.SizeOrMissing(m.Duplicate)
	if size1 < 0 && size2 < 0 {
		logger.Debug("both files of pair are gone",
			logging.String("original", m.Original),
			logging.String("duplicate", m.Duplicate),
			logging.String(logging.FieldEventType, "pair_missing"),
		)
		return nil
	}

	keep, remove, removedSize := m.Original, m.Duplicate, size2
	if size1 < size2 {
		keep, remove, removedSize = m.Duplicate, m.Original, size1
	}

	if removedSize >= 0 {
		if err := os.Remove(remove); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", remove, err)
		} else if err == nil {
			result.Deleted = append(result.Deleted, remove)
			result.FreedBytes += removedSize
			logger.Info("deleted smaller duplicate",
				logging.String("deleted", remove),
				logging.String("kept", keep),
				logging.Int("distance", m.Distance),
			)
		}
	}
	result.Kept = append(result.Kept, keep)
	return nil
}

package disposition

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dupicheck/internal/fileutil"
	"dupicheck/internal/logging"
	"dupicheck/internal/matcher"
)

// MovedFile is one relocated duplicate.
type MovedFile struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// MoveResult summarizes a MoveAll run.
type MoveResult struct {
	Moved  []MovedFile `json:"moved"`
	Errors []PairError `json:"errors,omitempty"`
}

// MoveAll relocates the duplicate of every match into targetDir, creating it
// when absent. Destination names are not deduplicated; an existing file of
// the same name is replaced. Failing moves are logged and skipped.
func MoveAll(ctx context.Context, matches []matcher.Match, targetDir string, logger *slog.Logger) (MoveResult, error) {
	logger = logging.NewComponentLogger(logger, "disposition")
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return MoveResult{}, fmt.Errorf("create target directory: %w", err)
	}

	var result MoveResult
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		dest := filepath.Join(targetDir, filepath.Base(m.Duplicate))
		if err := fileutil.MoveFile(m.Duplicate, dest); err != nil {
			logging.WarnWithContext(logger, "failed to move duplicate", "move_failed",
				logging.String(logging.FieldPath, m.Duplicate),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "file may have been removed since the scan"),
				logging.String(logging.FieldImpact, "duplicate left in place"),
			)
			result.Errors = append(result.Errors, newPairError(m, err))
			continue
		}
		logger.Info("moved duplicate",
			logging.String("from", m.Duplicate),
			logging.String("to", dest),
			logging.Int("distance", m.Distance),
		)
		result.Moved = append(result.Moved, MovedFile{From: m.Duplicate, To: dest})
	}
	return result, nil
}

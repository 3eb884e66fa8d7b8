package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"dupicheck/internal/disposition"
	"dupicheck/internal/logging"
	"dupicheck/internal/matcher"
	"dupicheck/internal/metrics"
	"dupicheck/internal/preflight"
)

// MoveRequest moves the duplicates found by a scan.
type MoveRequest struct {
	Matches []matcher.Match
	Target  string
	Metrics *metrics.Run
	Logger  *slog.Logger
}

// MoveDuplicates relocates every duplicate into req.Target.
func MoveDuplicates(ctx context.Context, req MoveRequest) (disposition.MoveResult, error) {
	if strings.TrimSpace(req.Target) == "" {
		return disposition.MoveResult{}, ErrNoTarget
	}
	target, err := absPath(req.Target)
	if err != nil {
		return disposition.MoveResult{}, fmt.Errorf("resolve target: %w", err)
	}
	if err := preflight.Err(preflight.RunAll(preflight.Request{Target: target})); err != nil {
		return disposition.MoveResult{}, err
	}

	result, err := disposition.MoveAll(ctx, req.Matches, target, req.Logger)
	req.Metrics.Disposed(metrics.ActionMoved, len(result.Moved))
	req.Metrics.Disposed(metrics.ActionFailed, len(result.Errors))
	return result, err
}

// DeleteRequest resolves the duplicates found by a scan.
type DeleteRequest struct {
	Matches         []matcher.Match
	ManualDir       string
	ManualThreshold int
	Metrics         *metrics.Run
	Logger          *slog.Logger
}

// DeleteDuplicates deletes the smaller file of every close match and moves
// the rest into review units under req.ManualDir.
func DeleteDuplicates(ctx context.Context, req DeleteRequest) (disposition.DeleteResult, error) {
	if req.ManualThreshold < 0 {
		return disposition.DeleteResult{}, fmt.Errorf("%w: manual threshold %d", ErrInvalidThreshold, req.ManualThreshold)
	}
	if strings.TrimSpace(req.ManualDir) == "" {
		return disposition.DeleteResult{}, ErrNoManualDir
	}
	manualDir, err := absPath(req.ManualDir)
	if err != nil {
		return disposition.DeleteResult{}, fmt.Errorf("resolve manual dir: %w", err)
	}
	if err := preflight.Err(preflight.RunAll(preflight.Request{QuarantineRoot: manualDir})); err != nil {
		return disposition.DeleteResult{}, err
	}

	result := disposition.DeleteWithChecks(ctx, req.Matches, manualDir, req.ManualThreshold, req.Logger)
	req.Metrics.Disposed(metrics.ActionDeleted, len(result.Deleted))
	req.Metrics.Disposed(metrics.ActionKept, len(result.Kept))
	req.Metrics.Disposed(metrics.ActionQuarantined, len(result.MovedForReview))
	req.Metrics.Disposed(metrics.ActionFailed, len(result.Errors))

	logging.NewComponentLogger(req.Logger, "disposition").Info("delete run complete",
		logging.Int("deleted", len(result.Deleted)),
		logging.Int("kept", len(result.Kept)),
		logging.Int("units", len(result.Units)),
		logging.Int("errors", len(result.Errors)),
		logging.Int64("freed_bytes", result.FreedBytes),
	)
	return result, ctx.Err()
}

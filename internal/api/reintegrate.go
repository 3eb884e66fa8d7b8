package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"dupicheck/internal/metrics"
	"dupicheck/internal/preflight"
	"dupicheck/internal/quarantine"
)

// ReintegrateRequest restores a review folder.
type ReintegrateRequest struct {
	ManualDir string
	// StorePath receives the ignored pairs; empty runs without a store.
	StorePath string
	DryRun    bool
	// KeepDirs leaves emptied units in place.
	KeepDirs bool
	// NoMark skips recording restored pairs as ignored.
	NoMark  bool
	Metrics *metrics.Run
	Logger  *slog.Logger
}

// ReintegrateResponse wraps the restore summary with the store outcome.
type ReintegrateResponse struct {
	quarantine.ReintegrateResult
	StorePath    string `json:"store_path,omitempty"`
	CacheWarning string `json:"cache_warning,omitempty"`
	MarkedPairs  int    `json:"marked_pairs"`
}

// Reintegrate moves quarantined files back and, unless disabled, records
// each fully restored pair in the ignore-list.
func Reintegrate(ctx context.Context, req ReintegrateRequest) (ReintegrateResponse, error) {
	if strings.TrimSpace(req.ManualDir) == "" {
		return ReintegrateResponse{}, ErrNoManualDir
	}
	manualDir, err := absPath(req.ManualDir)
	if err != nil {
		return ReintegrateResponse{}, fmt.Errorf("resolve manual dir: %w", err)
	}
	if err := preflight.Err(preflight.RunAll(preflight.Request{Folder: manualDir, Mutating: !req.DryRun})); err != nil {
		return ReintegrateResponse{}, err
	}

	resp := ReintegrateResponse{}
	var marker quarantine.IgnoreMarker
	if !req.NoMark && !req.DryRun {
		s, warning := OpenStoreOrDegrade(req.StorePath, strings.TrimSpace(req.StorePath) != "", req.Logger)
		resp.CacheWarning = warning
		if s != nil {
			defer s.Close()
			resp.StorePath = s.Path()
			marker = s
		}
	}

	result, err := quarantine.Reintegrate(ctx, manualDir, marker, quarantine.ReintegrateOptions{
		DryRun:                    req.DryRun,
		RemoveEmptyDirs:           !req.KeepDirs,
		MarkIgnoredIfBothRestored: marker != nil,
		Logger:                    req.Logger,
	})
	resp.ReintegrateResult = result
	for _, unit := range result.Units {
		if unit.MarkedIgnored {
			resp.MarkedPairs++
		}
	}
	req.Metrics.Restored(len(result.Restored))
	return resp, err
}

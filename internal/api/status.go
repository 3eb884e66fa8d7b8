package api

import (
	"context"
	"fmt"

	"dupicheck/internal/quarantine"
	"dupicheck/internal/store"
)

// StatusReport describes the store and review folder of a scanned tree.
type StatusReport struct {
	StorePath     string        `json:"store_path"`
	StoreExists   bool          `json:"store_exists"`
	Summary       store.Summary `json:"summary"`
	ManualDir     string        `json:"manual_dir,omitempty"`
	PendingUnits  int           `json:"pending_units"`
	ManualDirSeen bool          `json:"manual_dir_exists"`
}

// Status summarizes the store at storePath without creating it, and counts
// review units waiting under manualDir.
func Status(ctx context.Context, storePath, manualDir string) (StatusReport, error) {
	path, err := absPath(storePath)
	if err != nil {
		return StatusReport{}, fmt.Errorf("resolve store path: %w", err)
	}
	report := StatusReport{StorePath: path}

	if manualDir != "" {
		if dir, err := absPath(manualDir); err == nil {
			report.ManualDir = dir
			if units, err := quarantine.ListUnits(dir); err == nil {
				report.ManualDirSeen = true
				report.PendingUnits = len(units)
			}
		}
	}

	if !StoreExists(path) {
		return report, nil
	}
	report.StoreExists = true
	s, err := OpenStore(path)
	if err != nil {
		return report, err
	}
	defer s.Close()

	summary, err := s.Summary(ctx)
	if err != nil {
		return report, err
	}
	report.Summary = summary
	return report, nil
}


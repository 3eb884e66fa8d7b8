package api

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dupicheck/internal/config"
	"dupicheck/internal/logging"
	"dupicheck/internal/store"
)

// ResolveStorePath picks the store for folder: an explicit override first,
// then the configured cache path, then "<folder>/<file_name>".
func ResolveStorePath(cfg *config.Config, folder, override string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return absPath(override)
	}
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return absPath(cfg.StorePath(folder))
}

// ReintegrateStorePath returns the store a review folder feeds back into:
// an explicit override, the configured cache path, or the store file next
// to the review folder.
func ReintegrateStorePath(cfg *config.Config, manualDir, override string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return absPath(override)
	}
	manual, err := absPath(manualDir)
	if err != nil {
		return "", err
	}
	return ResolveStorePath(cfg, filepath.Dir(manual), "")
}

// OpenStore opens the store at path and fails when it is unavailable.
func OpenStore(path string) (*store.Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrStoreDisabled
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fingerprint store: %w", err)
	}
	return s, nil
}

// OpenStoreOrDegrade opens the store at path when enabled. On failure it
// returns a nil store and a warning describing why the run is uncached.
func OpenStoreOrDegrade(path string, enabled bool, logger *slog.Logger) (*store.Store, string) {
	if !enabled || strings.TrimSpace(path) == "" {
		return nil, ""
	}
	s, err := store.Open(path)
	if err != nil {
		warning := fmt.Sprintf("fingerprint cache unavailable, continuing without it: %v", err)
		logging.WarnWithContext(logging.NewComponentLogger(logger, "store"), "fingerprint store unavailable", "store_open_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions or whether another dupicheck is running"),
			logging.String(logging.FieldImpact, "every image is decoded and ignored pairs are not applied"),
		)
		return nil, warning
	}
	return s, ""
}

// StoreExists reports whether a store file is present at path.
func StoreExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func absPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	return config.ExpandPath(path)
}

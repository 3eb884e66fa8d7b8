package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dupicheck/internal/config"
	"dupicheck/internal/fileutil"
	"dupicheck/internal/fingerprint"
	"dupicheck/internal/hashing"
	"dupicheck/internal/logging"
	"dupicheck/internal/matcher"
	"dupicheck/internal/metrics"
	"dupicheck/internal/preflight"
	"dupicheck/internal/store"
)

// ScanRequest describes one scan of a folder tree.
type ScanRequest struct {
	Folder    string
	Threshold int
	// Extensions defaults to config.DefaultExtensions.
	Extensions   []string
	Workers      int
	UseCache     bool
	ForceRebuild bool
	// StorePath is the fingerprint store; required when UseCache is set.
	// With UseCache off an existing store still supplies the ignore-list.
	StorePath string
	// ExcludeDirs are not walked, e.g. the review folder or a move target.
	ExcludeDirs []string

	// Mutating, Target and QuarantineRoot feed the preflight checks of the
	// move and delete workflows that follow the scan.
	Mutating       bool
	Target         string
	QuarantineRoot string

	// Fingerprinter defaults to the perceptual hasher.
	Fingerprinter fingerprint.Fingerprinter
	OnProgress    hashing.ProgressFunc
	Metrics       *metrics.Run
	Logger        *slog.Logger
}

// ScanResult reports the fingerprints and matches of a scan.
type ScanResult struct {
	Folder         string          `json:"folder"`
	StorePath      string          `json:"store_path,omitempty"`
	CacheWarning   string          `json:"cache_warning,omitempty"`
	Threshold      int             `json:"threshold"`
	Images         int             `json:"images"`
	Fingerprinted  int             `json:"fingerprinted"`
	CacheHits      int             `json:"cache_hits"`
	Decoded        int             `json:"decoded"`
	StatFailures   int             `json:"stat_failures"`
	DecodeFailures int             `json:"decode_failures"`
	Pruned         int             `json:"pruned"`
	IgnoredPairs   int             `json:"ignored_pairs"`
	Matches        []matcher.Match `json:"matches"`
	Elapsed        time.Duration   `json:"elapsed_ns"`
}

// Scan walks req.Folder, fingerprints every image and returns the matches
// within req.Threshold that are not in the ignore-list. Invalid input and
// failed preflight checks are returned before anything is written.
func Scan(ctx context.Context, req ScanRequest) (ScanResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.NewComponentLogger(req.Logger, "scan")
	start := time.Now()

	if strings.TrimSpace(req.Folder) == "" {
		return ScanResult{}, ErrNoFolder
	}
	if req.Threshold < 0 {
		return ScanResult{}, fmt.Errorf("%w: %d", ErrInvalidThreshold, req.Threshold)
	}
	folder, err := absPath(req.Folder)
	if err != nil {
		return ScanResult{}, fmt.Errorf("resolve folder: %w", err)
	}

	checks := preflight.RunAll(preflight.Request{
		Folder:         folder,
		Mutating:       req.Mutating,
		Target:         req.Target,
		QuarantineRoot: req.QuarantineRoot,
	})
	if err := preflight.Err(checks); err != nil {
		return ScanResult{}, err
	}

	exts := req.Extensions
	if len(exts) == 0 {
		exts = config.DefaultExtensions
	}
	exclude := make([]string, 0, len(req.ExcludeDirs))
	for _, dir := range req.ExcludeDirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if abs, err := absPath(dir); err == nil {
			exclude = append(exclude, abs)
		}
	}
	paths, err := fileutil.WalkImages(folder, fileutil.WalkOptions{Extensions: exts, SkipDirs: exclude})
	if err != nil {
		return ScanResult{}, fmt.Errorf("walk %s: %w", folder, err)
	}
	if len(paths) == 0 {
		return ScanResult{Folder: folder, Threshold: req.Threshold}, fmt.Errorf("%w in %s", ErrNoImages, folder)
	}
	logger.Info("scanning folder",
		logging.String(logging.FieldFolder, folder),
		logging.Int("images", len(paths)),
		logging.Int("threshold", req.Threshold),
	)

	result := ScanResult{Folder: folder, Threshold: req.Threshold, Images: len(paths)}

	// The ignore-list applies even when fingerprint caching is off, as long
	// as an existing store can be opened. Uncached runs never create one.
	var s *store.Store
	openStore := req.UseCache || StoreExists(req.StorePath)
	s, result.CacheWarning = OpenStoreOrDegrade(req.StorePath, openStore, req.Logger)
	if s != nil {
		result.StorePath = s.Path()
		defer s.Close()
	}
	var cache hashing.Cache
	if req.UseCache && s != nil {
		cache = s
	}

	hasher := req.Fingerprinter
	if hasher == nil {
		hasher = fingerprint.NewPerceptualHasher()
	}
	computed, err := hashing.Compute(ctx, paths, cache, hasher, hashing.Options{
		ForceRebuild: req.ForceRebuild,
		Workers:      req.Workers,
		OnProgress:   req.OnProgress,
		Logger:       req.Logger,
	})
	result.Fingerprinted = computed.Fingerprints.Len()
	result.CacheHits = computed.CacheHits
	result.Decoded = computed.Decoded
	result.StatFailures = computed.StatFailures
	result.DecodeFailures = computed.DecodeFailures
	result.Pruned = computed.Pruned
	if err != nil {
		return result, err
	}

	ignored, err := s.IgnoredPairs(ctx)
	if err != nil {
		logging.WarnWithContext(logger, "failed to load ignored pairs", "ignored_pairs_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect the store with 'dupicheck ignored list'"),
			logging.String(logging.FieldImpact, "previously ignored pairs may be reported again"),
		)
		ignored = nil
	}
	result.IgnoredPairs = len(ignored)

	result.Matches = matcher.Find(computed.Fingerprints.Entries(), req.Threshold, ignored)
	result.Elapsed = time.Since(start)

	req.Metrics.Scanned(result.Images, result.CacheHits, result.Decoded,
		result.StatFailures, result.DecodeFailures, result.Pruned, result.Elapsed)
	for _, m := range result.Matches {
		req.Metrics.Matched(m.Distance)
	}
	req.Metrics.IgnoredPairs(result.IgnoredPairs)

	logger.Info("scan complete",
		logging.String(logging.FieldFolder, folder),
		logging.Int("matches", len(result.Matches)),
		logging.Int("cache_hits", result.CacheHits),
		logging.Int("decoded", result.Decoded),
		logging.Int("skipped", computed.Skipped()),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// IsInvalidInput reports whether err came from input validation rather
// than from the pipeline itself.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrNoFolder) ||
		errors.Is(err, ErrNoImages) ||
		errors.Is(err, ErrInvalidThreshold) ||
		errors.Is(err, ErrNoTarget) ||
		errors.Is(err, ErrNoManualDir) ||
		errors.Is(err, preflight.ErrFailed)
}

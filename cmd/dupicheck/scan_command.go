package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dupicheck/internal/api"
	"dupicheck/internal/config"
	"dupicheck/internal/disposition"
	"dupicheck/internal/matcher"
)

// scanOptions holds the flags shared by scan, move and delete.
type scanOptions struct {
	threshold int
	noCache   bool
	rebuild   bool
	dbFile    string
	workers   int
}

func (o *scanOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVarP(&o.threshold, "threshold", "t", 0, "Maximum fingerprint distance for a duplicate (default from config)")
	flags.BoolVar(&o.noCache, "no-cache", false, "Do not reuse or record fingerprints; ignored pairs still apply")
	flags.BoolVar(&o.rebuild, "rebuild", false, "Recompute every fingerprint and refresh the store")
	flags.StringVar(&o.dbFile, "db-file", "", "Fingerprint store path (default <folder>/.dupicheck.db)")
	flags.IntVar(&o.workers, "workers", 0, "Parallel image decoders, 0 for one per CPU (default from config)")
}

// request builds a scan request with flag values layered over cfg.
func (o *scanOptions) request(cmd *cobra.Command, cfg *config.Config, folder string) (api.ScanRequest, error) {
	req := api.ScanRequest{
		Folder:       folder,
		Threshold:    cfg.Scan.Threshold,
		Extensions:   cfg.Scan.Extensions,
		Workers:      cfg.Scan.Workers,
		UseCache:     cfg.Cache.Enabled && !o.noCache,
		ForceRebuild: o.rebuild,
	}
	if cmd.Flags().Changed("threshold") {
		req.Threshold = o.threshold
	}
	if cmd.Flags().Changed("workers") {
		if o.workers < 0 {
			return req, fmt.Errorf("--workers must be zero or greater, got %d", o.workers)
		}
		req.Workers = o.workers
	}
	storePath, err := api.ResolveStorePath(cfg, folder, o.dbFile)
	if err != nil {
		return req, fmt.Errorf("resolve store path: %w", err)
	}
	req.StorePath = storePath
	return req, nil
}

// runScan executes req with the command's logger, metrics and progress bar.
func runScan(cmd *cobra.Command, ctx *commandContext, req api.ScanRequest, logger *slog.Logger) (api.ScanResult, error) {
	req.Logger = logger
	req.Metrics = ctx.metricsRun()

	if !ctx.jsonMode() {
		fmt.Fprintf(cmd.OutOrStdout(), "Scanning folder: %s\n", req.Folder)
	}
	progress := newHashProgress(cmd.ErrOrStderr(), !ctx.jsonMode())
	req.OnProgress = progress.Func()
	result, err := api.Scan(cmd.Context(), req)
	progress.Finish()
	if err != nil {
		return result, err
	}
	if result.CacheWarning != "" && !ctx.jsonMode() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", result.CacheWarning)
	}
	return result, nil
}

func printMatches(out io.Writer, matches []matcher.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(out, "No duplicates found.")
		return
	}
	for _, m := range matches {
		fmt.Fprintf(out, "\nORIGINAL: %s\nDUPLICATE: %s\nDistance: %d\n", m.Original, m.Duplicate, m.Distance)
	}
	fmt.Fprintf(out, "\nFound %s %s.\n", formatCount(len(matches)), plural(len(matches), "duplicate", "duplicates"))
}

func printScanStats(out io.Writer, result api.ScanResult) {
	line := fmt.Sprintf("Fingerprinted %s of %s images (%s from cache, %s decoded",
		formatCount(result.Fingerprinted),
		formatCount(result.Images),
		formatCount(result.CacheHits),
		formatCount(result.Decoded),
	)
	if skipped := result.StatFailures + result.DecodeFailures; skipped > 0 {
		line += fmt.Sprintf(", %s unreadable", formatCount(skipped))
	}
	line += fmt.Sprintf(") in %s.", result.Elapsed.Round(time.Millisecond))
	fmt.Fprintln(out, line)
}

// handleNoImages reports an empty folder as a normal outcome.
func handleNoImages(cmd *cobra.Command, ctx *commandContext, result api.ScanResult, err error) (bool, error) {
	if !errors.Is(err, api.ErrNoImages) {
		return false, err
	}
	if ctx.jsonMode() {
		result.Matches = []matcher.Match{}
		return true, writeJSON(cmd, result)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "No images found in the folder.")
	return true, nil
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan <folder>",
		Short: "Report visually duplicate images without changing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			defer ctx.flushMetrics(logger)

			req, err := opts.request(cmd, cfg, args[0])
			if err != nil {
				return err
			}
			result, err := runScan(cmd, ctx, req, logger)
			if handled, err := handleNoImages(cmd, ctx, result, err); handled || err != nil {
				return err
			}

			if ctx.jsonMode() {
				if result.Matches == nil {
					result.Matches = []matcher.Match{}
				}
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			printMatches(out, result.Matches)
			printScanStats(out, result)
			return nil
		},
	}
	opts.bind(cmd)
	return cmd
}

// excludeWithin returns dir when it lies inside folder, so the walk does
// not rescan files that were already relocated there.
func excludeWithin(folder, dir string) []string {
	absFolder, err1 := config.ExpandPath(folder)
	absDir, err2 := config.ExpandPath(dir)
	if err1 != nil || err2 != nil || absDir == "" {
		return nil
	}
	rel, err := filepath.Rel(absFolder, absDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return []string{absDir}
}

func printPairErrors(out io.Writer, verb string, errs []disposition.PairError) {
	for _, e := range errs {
		fmt.Fprintf(out, "Failed to %s %s / %s: %s\n", verb, e.Original, e.Duplicate, e.Err)
	}
}

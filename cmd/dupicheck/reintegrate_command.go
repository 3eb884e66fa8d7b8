package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dupicheck/internal/api"
)

func newReintegrateCommand(ctx *commandContext) *cobra.Command {
	var dbFile string
	var dryRun bool
	var noRemove bool
	var noMark bool

	cmd := &cobra.Command{
		Use:   "reintegrate <manual_dir>",
		Short: "Move reviewed files back to their original locations",
		Long: "Restore every file left in the manual review folder to the location it was\n" +
			"quarantined from. Pairs restored in full are recorded as not duplicates so\n" +
			"later scans do not report them again.",
		Args: cobra.ExactArgs(1),
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

			manualDir := args[0]
			var storePath string
			if cfg.Cache.Enabled || strings.TrimSpace(dbFile) != "" {
				storePath, err = api.ReintegrateStorePath(cfg, manualDir, dbFile)
				if err != nil {
					return fmt.Errorf("resolve store path: %w", err)
				}
			}

			resp, err := api.Reintegrate(cmd.Context(), api.ReintegrateRequest{
				ManualDir: manualDir,
				StorePath: storePath,
				DryRun:    dryRun,
				KeepDirs:  noRemove,
				NoMark:    noMark,
				Metrics:   ctx.metricsRun(),
				Logger:    logger,
			})
			if err != nil && len(resp.Units) == 0 {
				return err
			}

			failures := 0
			for _, unit := range resp.Units {
				failures += len(unit.Errors)
			}

			if ctx.jsonMode() {
				if werr := writeJSON(cmd, resp); werr != nil {
					return werr
				}
			} else {
				out := cmd.OutOrStdout()
				if resp.CacheWarning != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", resp.CacheWarning)
				}
				for _, unit := range resp.Units {
					if resp.DryRun {
						for _, move := range unit.Moves {
							fmt.Fprintf(out, "Would restore %s -> %s\n", move.From, move.To)
						}
					}
					for _, msg := range unit.Errors {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", unit.Unit, msg)
					}
				}
				units := len(resp.Units)
				switch {
				case units == 0:
					fmt.Fprintln(out, "Nothing to reintegrate.")
				case resp.DryRun:
					fmt.Fprintf(out, "Dry run: %s %s in %s %s would be restored.\n",
						formatCount(countMoves(resp)), plural(countMoves(resp), "file", "files"),
						formatCount(units), plural(units, "folder", "folders"))
				default:
					restored := len(resp.Restored)
					fmt.Fprintf(out, "Restored %s %s from %s %s.\n",
						formatCount(restored), plural(restored, "file", "files"),
						formatCount(units), plural(units, "folder", "folders"))
					if resp.MarkedPairs > 0 {
						fmt.Fprintf(out, "Marked %s %s as not duplicates.\n",
							formatCount(resp.MarkedPairs), plural(resp.MarkedPairs, "pair", "pairs"))
					}
				}
			}
			if failures > 0 && err == nil {
				return fmt.Errorf("%d %s could not be restored", failures, plural(failures, "file", "files"))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&dbFile, "db-file", "", "Fingerprint store to record restored pairs in (default <manual_dir>/../.dupicheck.db)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be restored without moving anything")
	cmd.Flags().BoolVar(&noRemove, "no-remove", false, "Keep emptied review folders")
	cmd.Flags().BoolVar(&noMark, "no-mark", false, "Do not record restored pairs as not duplicates")
	return cmd
}

func countMoves(resp api.ReintegrateResponse) int {
	total := 0
	for _, unit := range resp.Units {
		total += len(unit.Moves)
	}
	return total
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"dupicheck/internal/api"
	"dupicheck/internal/disposition"
	"dupicheck/internal/logging"
	"dupicheck/internal/matcher"
)

type moveOutput struct {
	Scan api.ScanResult         `json:"scan"`
	Move disposition.MoveResult `json:"move"`
}

type deleteOutput struct {
	Scan      api.ScanResult           `json:"scan"`
	ManualDir string                   `json:"manual_dir"`
	Delete    disposition.DeleteResult `json:"delete"`
}

func newMoveCommand(ctx *commandContext) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "move <folder> <target>",
		Short: "Move every duplicate into a target folder",
		Args:  cobra.ExactArgs(2),
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

			folder, target := args[0], args[1]
			if strings.TrimSpace(target) == "" {
				return api.ErrNoTarget
			}
			req, err := opts.request(cmd, cfg, folder)
			if err != nil {
				return err
			}
			req.Mutating = true
			req.Target = target
			req.ExcludeDirs = excludeWithin(folder, target)

			result, err := runScan(cmd, ctx, req, logger)
			if handled, err := handleNoImages(cmd, ctx, result, err); handled || err != nil {
				return err
			}
			if len(result.Matches) == 0 {
				if ctx.jsonMode() {
					result.Matches = []matcher.Match{}
					return writeJSON(cmd, moveOutput{Scan: result})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "No duplicates found.")
				return nil
			}

			moved, err := api.MoveDuplicates(cmd.Context(), api.MoveRequest{
				Matches: result.Matches,
				Target:  target,
				Metrics: ctx.metricsRun(),
				Logger:  logger,
			})
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				if werr := writeJSON(cmd, moveOutput{Scan: result, Move: moved}); werr != nil {
					return werr
				}
			} else {
				out := cmd.OutOrStdout()
				printMatches(out, result.Matches)
				printPairErrors(cmd.ErrOrStderr(), "move", moved.Errors)
				if len(moved.Errors) == 0 {
					fmt.Fprintln(out, "Duplicates moved successfully.")
				} else {
					fmt.Fprintf(out, "Moved %s of %s duplicates.\n", formatCount(len(moved.Moved)), formatCount(len(result.Matches)))
				}
			}
			if len(moved.Errors) > 0 {
				return fmt.Errorf("%d %s could not be moved", len(moved.Errors), plural(len(moved.Errors), "duplicate", "duplicates"))
			}
			return nil
		},
	}
	opts.bind(cmd)
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var opts scanOptions
	var assumeYes bool
	var manualDir string
	var manualThreshold int

	cmd := &cobra.Command{
		Use:   "delete <folder>",
		Short: "Delete the smaller file of each close duplicate and quarantine the rest for review",
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

			if ctx.jsonMode() && !assumeYes {
				return errors.New("--json requires --yes for delete")
			}

			folder := args[0]
			req, err := opts.request(cmd, cfg, folder)
			if err != nil {
				return err
			}
			threshold := cfg.Scan.ManualThreshold
			if cmd.Flags().Changed("manual-threshold") {
				threshold = manualThreshold
			}
			if threshold < 0 {
				return fmt.Errorf("%w: manual threshold %d", api.ErrInvalidThreshold, threshold)
			}
			if threshold >= req.Threshold {
				logging.WarnWithContext(logger, "manual threshold is not below the match threshold", "manual_threshold_ineffective",
					logging.Int("threshold", req.Threshold),
					logging.Int("manual_threshold", threshold),
					logging.String(logging.FieldErrorHint, "lower --manual-threshold to route uncertain matches to manual review"),
					logging.String(logging.FieldImpact, "every match is resolved automatically and none are quarantined"),
				)
			}
			quarantine := strings.TrimSpace(manualDir)
			if quarantine == "" {
				quarantine = cfg.ManualDir(folder)
			}

			req.Mutating = true
			req.QuarantineRoot = quarantine
			req.ExcludeDirs = excludeWithin(folder, quarantine)

			result, err := runScan(cmd, ctx, req, logger)
			if handled, err := handleNoImages(cmd, ctx, result, err); handled || err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(result.Matches) == 0 {
				if ctx.jsonMode() {
					result.Matches = []matcher.Match{}
					return writeJSON(cmd, deleteOutput{Scan: result, ManualDir: quarantine})
				}
				fmt.Fprintln(out, "No duplicates found.")
				return nil
			}
			if !ctx.jsonMode() {
				printMatches(out, result.Matches)
			}

			if !assumeYes {
				ok, err := confirm(cmd.InOrStdin(), out, "Are you sure you want to DELETE duplicates? [y/N]: ")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			deleted, err := api.DeleteDuplicates(cmd.Context(), api.DeleteRequest{
				Matches:         result.Matches,
				ManualDir:       quarantine,
				ManualThreshold: threshold,
				Metrics:         ctx.metricsRun(),
				Logger:          logger,
			})
			if api.IsInvalidInput(err) {
				return err
			}
			// An interrupted run still reports what it resolved before stopping.

			if ctx.jsonMode() {
				if werr := writeJSON(cmd, deleteOutput{Scan: result, ManualDir: quarantine, Delete: deleted}); werr != nil {
					return werr
				}
			} else {
				printPairErrors(cmd.ErrOrStderr(), "resolve", deleted.Errors)
				printDeleteSummary(out, quarantine, deleted)
			}
			if err != nil {
				return err
			}
			if len(deleted.Errors) > 0 {
				return fmt.Errorf("%d %s could not be resolved", len(deleted.Errors), plural(len(deleted.Errors), "pair", "pairs"))
			}
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().StringVarP(&manualDir, "manual-dir", "m", "", "Quarantine folder for manual review (default <folder>/manual_check)")
	cmd.Flags().IntVarP(&manualThreshold, "manual-threshold", "M", 0, "Matches above this distance go to manual review (default from config)")
	return cmd
}

func printDeleteSummary(out io.Writer, manualDir string, result disposition.DeleteResult) {
	if n := len(result.MovedForReview); n > 0 {
		fmt.Fprintf(out, "Moved %s %s to manual check folder: %s\n", formatCount(n), plural(n, "file", "files"), manualDir)
	} else {
		fmt.Fprintln(out, "No files moved for manual check.")
	}
	if n := len(result.Deleted); n > 0 {
		fmt.Fprintf(out, "Deleted %s %s (%s freed).\n", formatCount(n), plural(n, "file", "files"), formatBytes(result.FreedBytes))
	} else {
		fmt.Fprintln(out, "No files deleted.")
	}
	if n := len(result.Kept); n > 0 {
		fmt.Fprintf(out, "Kept %s %s.\n", formatCount(n), plural(n, "file", "files"))
	} else {
		fmt.Fprintln(out, "No files kept.")
	}
	fmt.Fprintln(out, "Done.")
}

// confirm prompts on out and reads one answer from in. Only "y" agrees.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}

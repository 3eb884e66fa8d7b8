package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dupicheck/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var dbFile string
	var manualDir string

	cmd := &cobra.Command{
		Use:   "status <folder>",
		Short: "Summarize the fingerprint store and pending reviews of a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			folder := args[0]
			storePath, err := api.ResolveStorePath(cfg, folder, dbFile)
			if err != nil {
				return fmt.Errorf("resolve store path: %w", err)
			}
			review := strings.TrimSpace(manualDir)
			if review == "" {
				review = cfg.ManualDir(folder)
			}

			report, err := api.Status(cmd.Context(), storePath, review)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			lines := statusReportLines(report, shouldColorize(out))
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbFile, "db-file", "", "Fingerprint store path (default <folder>/.dupicheck.db)")
	cmd.Flags().StringVarP(&manualDir, "manual-dir", "m", "", "Manual review folder (default <folder>/manual_check)")
	return cmd
}

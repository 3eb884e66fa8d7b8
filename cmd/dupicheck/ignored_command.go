package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dupicheck/internal/api"
	"dupicheck/internal/store"
)

// ignoredStore resolves and opens the store the ignored commands work on.
type ignoredStore struct {
	ctx    *commandContext
	folder string
	dbFile string
}

func (s *ignoredStore) path() (string, error) {
	folder := strings.TrimSpace(s.folder)
	if folder == "" {
		folder = "."
	}
	path, err := api.ResolveStorePath(s.ctx.configValue(), folder, s.dbFile)
	if err != nil {
		return "", fmt.Errorf("resolve store path: %w", err)
	}
	return path, nil
}

func (s *ignoredStore) with(fn func(*store.Store) error) error {
	path, err := s.path()
	if err != nil {
		return err
	}
	st, err := api.OpenStore(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func newIgnoredCommand(ctx *commandContext) *cobra.Command {
	target := &ignoredStore{ctx: ctx}

	cmd := &cobra.Command{
		Use:   "ignored",
		Short: "Manage pairs recorded as not duplicates",
	}
	cmd.PersistentFlags().StringVarP(&target.folder, "folder", "f", "", "Scanned folder whose store is used (default current directory)")
	cmd.PersistentFlags().StringVar(&target.dbFile, "db-file", "", "Fingerprint store path (overrides --folder)")

	cmd.AddCommand(newIgnoredListCommand(ctx, target))
	cmd.AddCommand(newIgnoredAddCommand(ctx, target))
	cmd.AddCommand(newIgnoredRemoveCommand(ctx, target))
	cmd.AddCommand(newIgnoredClearCommand(ctx, target))
	return cmd
}

func newIgnoredListCommand(ctx *commandContext, target *ignoredStore) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ignored pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := target.path()
			if err != nil {
				return err
			}
			var pairs []store.IgnoredPair
			if api.StoreExists(path) {
				if err := target.with(func(s *store.Store) error {
					pairs, err = s.ListIgnoredPairs(cmd.Context())
					return err
				}); err != nil {
					return err
				}
			}

			if ctx.jsonMode() {
				if pairs == nil {
					pairs = []store.IgnoredPair{}
				}
				return writeJSON(cmd, pairs)
			}

			out := cmd.OutOrStdout()
			if len(pairs) == 0 {
				fmt.Fprintln(out, "No ignored pairs.")
				return nil
			}
			rows := make([][]string, 0, len(pairs))
			for i, pair := range pairs {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					pair.PathA,
					pair.PathB,
					pair.CreatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintf(out, "Ignored pairs: %s\n", formatCount(len(pairs)))
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Path A", "Path B", "Added"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newIgnoredAddCommand(ctx *commandContext, target *ignoredStore) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path_a> <path_b>",
		Short: "Record two images as not duplicates",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return target.with(func(s *store.Store) error {
				key, added, err := api.AddIgnoredPair(cmd.Context(), s, args[0], args[1])
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, map[string]any{"path_a": key.A, "path_b": key.B, "added": added})
				}
				if added {
					fmt.Fprintf(cmd.OutOrStdout(), "Ignoring pair %s / %s\n", key.A, key.B)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Pair already ignored: %s / %s\n", key.A, key.B)
				}
				return nil
			})
		},
	}
}

func newIgnoredRemoveCommand(ctx *commandContext, target *ignoredStore) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <number>",
		Short: "Remove an ignored pair by its list number",
		Long: "Remove an ignored pair so later scans report it again.\n\n" +
			"Use 'dupicheck ignored list' to see entry numbers.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entryNum int
			if _, err := fmt.Sscanf(args[0], "%d", &entryNum); err != nil || entryNum < 1 {
				return fmt.Errorf("invalid entry number: %s (must be a positive integer)", args[0])
			}
			return target.with(func(s *store.Store) error {
				pair, err := api.RemoveIgnoredPairByNumber(cmd.Context(), s, entryNum)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, pair)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed ignored pair %d (%s / %s)\n", entryNum, pair.PathA, pair.PathB)
				return nil
			})
		},
	}
}

func newIgnoredClearCommand(ctx *commandContext, target *ignoredStore) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every ignored pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !assumeYes {
				if ctx.jsonMode() {
					return fmt.Errorf("--json requires --yes for clear")
				}
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Remove every ignored pair? [y/N]: ")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}
			return target.with(func(s *store.Store) error {
				count, err := s.ClearIgnoredPairs(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, map[string]int{"removed": count})
				}
				if count == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No ignored pairs to remove")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d ignored %s\n", count, plural(count, "pair", "pairs"))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

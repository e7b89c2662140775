package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/trendchart/annotation"
	"github.com/rustyeddy/trendchart/render"
)

func newLinesCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lines",
		Short: "Inspect or edit persisted trendlines",
		Long: `Query and edit the trendlines stored in the configured backend without
starting the live chart.

Subcommands:
  list           - Show every trendline
  delete <id>    - Remove one trendline
  clear          - Remove all trendlines`,
	}

	withStore := func(fn func(cmd *cobra.Command, args []string, store *annotation.Store) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			backend, store, err := rc.openStore()
			if err != nil {
				return err
			}
			defer backend.Close()

			store.Load(cmd.Context())
			return fn(cmd, args, store)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show every trendline",
			Args:  cobra.NoArgs,
			RunE: withStore(func(cmd *cobra.Command, args []string, store *annotation.Store) error {
				render.WriteTrendlines(cmd.OutOrStdout(), store.Trendlines(), "")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Remove one trendline",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, args []string, store *annotation.Store) error {
				if _, ok := store.Get(args[0]); !ok {
					return fmt.Errorf("no trendline %q", args[0])
				}
				left := store.RemoveTrendline(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s (%d left)\n", args[0], len(left))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all trendlines",
			Args:  cobra.NoArgs,
			RunE: withStore(func(cmd *cobra.Command, args []string, store *annotation.Store) error {
				n := len(store.Trendlines())
				store.ClearTrendlines()
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %d trendlines\n", n)
				return nil
			}),
		},
	)
	return cmd
}

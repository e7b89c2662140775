package cli

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/trendchart/render"
)

func newHistoryCmd(rc *RootConfig) *cobra.Command {
	var last int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the initial candle series",
		Long: `Fetch the historical series the chart starts from and print it.
When the exchange cannot be reached a synthetic series is printed instead.

Example:
  trendchart history --last 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			candles := rc.newLoader().Load(cmd.Context())
			render.WriteCandles(cmd.OutOrStdout(), candles, last)
			return nil
		},
	}
	cmd.Flags().IntVarP(&last, "last", "n", 30, "number of most recent bars to print (0 for all)")
	return cmd
}

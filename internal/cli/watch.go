package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/rustyeddy/trendchart/chart"
	"github.com/rustyeddy/trendchart/render"
)

func newWatchCmd(rc *RootConfig) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live candles and edit trendlines from the prompt",
		Long: `Mount the chart: load history and saved trendlines, connect the live
kline stream and read editing commands from stdin. Type "help" at the
prompt for the command list.

Example:
  trendchart watch --metrics-addr :9100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.runWatch(cmd, metricsAddr)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9100)")
	return cmd
}

func (rc *RootConfig) runWatch(cmd *cobra.Command, metricsAddr string) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, store, err := rc.openStore()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, backend.Close()) }()

	console := render.NewConsole(rc.Log)
	widget, err := chart.New(chart.Options{
		Adapter: console,
		Store:   store,
		Feed:    rc.newFeed(),
		History: rc.newLoader(),
		Logger:  rc.Log,
	})
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				rc.Log.WithError(err).Error("metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = multierr.Append(err, srv.Shutdown(shutdownCtx))
		}()
		rc.Log.WithField("addr", metricsAddr).Info("serving metrics")
	}

	widget.Mount(ctx)
	defer widget.Unmount()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d bars, %d trendlines. Type help for commands.\n",
		rc.Config.Market.Symbol, len(widget.Candles()), len(widget.Trendlines()))

	s := &session{widget: widget, console: console, out: out}
	return s.run(ctx, cmd.InOrStdin())
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

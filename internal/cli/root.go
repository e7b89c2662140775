package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/rustyeddy/trendchart/config"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// RootConfig carries the global flags and what PersistentPreRunE derives
// from them.
type RootConfig struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	NoColor    bool

	Config *config.Config
	Log    *logrus.Logger
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:   "trendchart",
		Short: "Trendchart — live candles and trendline annotations in the terminal",
		Long: `Trendchart streams a candlestick series for one instrument and lets you
draw, drag and delete trendlines anchored to (time, price) points.

Trendlines persist between sessions in the configured storage backend
(file, sqlite, redis or memory).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
	cmd.PersistentFlags().StringVar(&rc.LogFormat, "log-format", "", "Log format: prefixed|text|json (overrides config)")
	cmd.PersistentFlags().BoolVar(&rc.NoColor, "no-color", false, "Disable colored output")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return rc.setup(cmd.ErrOrStderr())
	}

	// Subcommands
	cmd.AddCommand(
		newWatchCmd(rc),
		newHistoryCmd(rc),
		newLinesCmd(rc),
		newConfigCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "trendchart (%s)\n", Version)
		},
	})

	return cmd
}

func (rc *RootConfig) setup(logOut io.Writer) error {
	cfg, err := config.Load(rc.ConfigPath)
	if err != nil {
		return err
	}
	if rc.LogLevel != "" {
		cfg.Log.Level = rc.LogLevel
	}
	if rc.LogFormat != "" {
		cfg.Log.Format = rc.LogFormat
	}

	log, err := newLogger(cfg.Log, rc.NoColor, logOut)
	if err != nil {
		return err
	}
	rc.Config = cfg
	rc.Log = log
	return nil
}

func newLogger(lc config.LogConfig, noColor bool, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	switch lc.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		log.SetFormatter(&logrus.TextFormatter{DisableColors: noColor, FullTimestamp: true})
	default:
		log.SetFormatter(&prefixed.TextFormatter{DisableColors: noColor, FullTimestamp: true})
	}
	return log, nil
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

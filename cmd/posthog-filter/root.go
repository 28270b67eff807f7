package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/grez-lucas/posthog-filter/internal/config"
	"github.com/grez-lucas/posthog-filter/internal/observability"
)

// app carries what every subcommand needs once PersistentPreRunE has run.
type app struct {
	cfgFile string
	envFile string
	v       *viper.Viper
	cfg     *config.Config
	log     *zap.Logger
}

// errReported marks failures that were already logged by the automation.
var errReported = errors.New("automation failed")

func newRootCmd() (*cobra.Command, *app) {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "posthog-filter",
		Short:         "Filter PostHog session replays by the recording ID in the page URL",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v, a.cfgFile, a.envFile)
			if err != nil {
				return err
			}
			// Only an explicit --timeout overrides the config file.
			if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
				cfg.Automation.Timeout = timeout
			}
			a.cfg = cfg
			a.log = observability.NewConsoleLogger(cfg.Logger)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default ./posthog-filter.yaml)")
	flags.StringVar(&a.envFile, "env-file", config.DefaultEnvFile, "dotenv file loaded before reading the environment")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("headless", false, "run Chromium without a window")
	flags.Duration("timeout", 0, "per-step element wait timeout (default 10s)")
	_ = a.v.BindPFlag("logger.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("browser.headless", flags.Lookup("headless"))

	root.AddCommand(newRunCmd(a), newSnapshotCmd(a), newProbeCmd(a))
	return root, a
}

func execute() int {
	root, a := newRootCmd()
	if err := root.Execute(); err != nil {
		switch {
		case errors.Is(err, errReported):
		case a.log != nil:
			a.log.Error("Command failed", zap.Error(err))
		default:
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

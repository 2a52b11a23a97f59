// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

// Package commands implements the mailbox-monitor command line.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/similigh/mailbox-monitor/internal/core/config"
	"github.com/similigh/mailbox-monitor/internal/logging"
	"github.com/similigh/mailbox-monitor/internal/tui"
)

var (
	cfgFile     string
	verbose     bool
	checkOnce   bool
	healthCheck bool
	configCheck bool
	dryRun      bool
	useTUI      bool
	jsonOutput  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mailbox-monitor",
	Short: "Reassign tracker issues from assignment notification emails",
	Long: `Mailbox Monitor watches an IMAP mailbox for issue tracker assignment
notifications, asks a prediction service who should own each issue and, when
the prediction is confident enough, reassigns the issue and leaves an audit
comment.

Without mode flags it runs continuously, polling every app.check_interval
seconds after an initial health check.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default: mailbox-monitor.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.Flags().BoolVar(&checkOnce, "check-once", false, "Run a single check cycle and exit")
	rootCmd.Flags().BoolVar(&healthCheck, "health-check", false, "Perform health check and exit")
	rootCmd.Flags().BoolVar(&configCheck, "config-check", false, "Validate configuration and exit")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute decisions without changing the tracker")
	rootCmd.Flags().BoolVar(&useTUI, "tui", false, "Show an interactive view (with --check-once)")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON (with --check-once or --health-check)")

	rootCmd.MarkFlagsMutuallyExclusive("check-once", "health-check", "config-check")
	rootCmd.MarkFlagsMutuallyExclusive("tui", "json")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}

	if configCheck {
		fmt.Fprintln(cmd.OutOrStdout(), tui.Status(true, "Configuration is valid"))
		return nil
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	a, err := bootstrap(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	switch {
	case healthCheck:
		return runHealthCheck(cmd, a)
	case checkOnce:
		return runCheckOnce(cmd, a)
	default:
		return runContinuous(cmd, a)
	}
}

// loadConfig resolves and loads the configuration, then applies flag
// overrides. validate runs the full validation required by the monitor.
func loadConfig(validate bool) (*config.Config, error) {
	path := config.FindConfigPath(cfgFile)
	if cfgFile != "" && path == "" {
		return nil, fmt.Errorf("config file %s not found", cfgFile)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	applyConfigOverrides(cfg)

	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// applyConfigOverrides applies command-line overrides to the loaded config.
func applyConfigOverrides(cfg *config.Config) {
	if dryRun {
		cfg.App.DryRun = true
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
}

// errUnhealthy is returned when a health check fails.
var errUnhealthy = errors.New("some services are unhealthy")

package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/core/config"
	"github.com/similigh/mailbox-monitor/internal/integrations/assignapi"
	"github.com/similigh/mailbox-monitor/internal/logging"
)

var historyLimit int

// historyCmd shows recent predictions made by the prediction service.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent predictions from the prediction service",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 100, "Maximum number of predictions to show")
	historyCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw entries as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	client, logger, err := newServiceClient(cfg)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	entries, err := client.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch prediction history: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, entries)
	}
	for _, e := range entries {
		fmt.Fprintln(out, formatHistoryEntry(e))
	}
	return nil
}

// formatHistoryEntry renders an entry as sorted key=value pairs.
func formatHistoryEntry(e assignapi.HistoryEntry) string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e[k]))
	}
	return strings.Join(parts, " ")
}

// newServiceClient builds the HTTP prediction service client for the
// service subcommands.
func newServiceClient(cfg *config.Config) (*assignapi.Client, *zap.Logger, error) {
	if cfg.AI.Provider != "http" {
		return nil, nil, errors.New("this command requires ai.provider http")
	}
	if cfg.AI.APIURL == "" {
		return nil, nil, errors.New("ai.api_url is required")
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, err
	}
	return newAssignAPIClient(cfg, logger), logger, nil
}

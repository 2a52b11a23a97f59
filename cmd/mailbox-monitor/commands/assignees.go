package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/similigh/mailbox-monitor/internal/logging"
)

var assigneesProject string

// assigneesCmd lists the assignees known to the prediction service.
var assigneesCmd = &cobra.Command{
	Use:   "assignees",
	Short: "List assignees known to the prediction service",
	Long: `List the assignees the HTTP prediction service can recommend, optionally
restricted to one project (group/project).`,
	Args: cobra.NoArgs,
	RunE: runAssignees,
}

func init() {
	rootCmd.AddCommand(assigneesCmd)

	assigneesCmd.Flags().StringVar(&assigneesProject, "project", "", "Restrict to a project path, e.g. team/backend")
	assigneesCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the assignees as a JSON array")
}

func runAssignees(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	client, logger, err := newServiceClient(cfg)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	assignees, err := client.Assignees(cmd.Context(), assigneesProject)
	if err != nil {
		return fmt.Errorf("failed to list assignees: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, assignees)
	}
	for _, a := range assignees {
		fmt.Fprintln(out, a)
	}
	return nil
}

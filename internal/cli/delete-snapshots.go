package cli

import (
	"fmt"

	"github.com/ktcloud-ops/snapguard/internal/config"
	"github.com/ktcloud-ops/snapguard/internal/workflow"
	"github.com/spf13/cobra"
)

var deleteSnapshotCommand = &cobra.Command{
	Use:     "delete-snapshots",
	GroupID: "snapguard",
	Short:   "Execute the snapshot deletion cycle",
	Long:    `Computes the retention cutoff date, lists existing snapshots, and issues one deletion call per snapshot whose embedded date matches the cutoff exactly. Issued job ids are recorded in the delete ledger for later reconciliation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headerStyle.Render("Snapguard - Deletion Cycle"))

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		return workflow.RunDeleteWorkflow(cfg, timeout, logLevel)
	},
}

func init() {
	rootCommand.AddCommand(deleteSnapshotCommand)
}

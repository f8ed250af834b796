package cli

import (
	"fmt"

	"github.com/ktcloud-ops/snapguard/internal/config"
	"github.com/ktcloud-ops/snapguard/internal/workflow"
	"github.com/spf13/cobra"
)

var createSnapshotCommand = &cobra.Command{
	Use:     "create-snapshots",
	GroupID: "snapguard",
	Short:   "Execute the snapshot creation cycle",
	Long:    `Reads the configured disk list, resolves each entry against the live disk inventory, and issues one snapshot creation call per disk. Issued job ids are recorded in the create ledger for later reconciliation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headerStyle.Render("Snapguard - Creation Cycle"))

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		return workflow.RunCreateWorkflow(cfg, timeout, logLevel)
	},
}

func init() {
	rootCommand.AddCommand(createSnapshotCommand)
}

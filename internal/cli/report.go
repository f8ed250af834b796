package cli

import (
	"fmt"

	"github.com/ktcloud-ops/snapguard/internal/config"
	"github.com/ktcloud-ops/snapguard/internal/notifications"
	"github.com/ktcloud-ops/snapguard/internal/workflow"
	"github.com/spf13/cobra"
)

var reportCommand = &cobra.Command{
	Use:     "report",
	GroupID: "snapguard",
	Short:   "Reconcile issued jobs and send the aggregate report",
	Long:    `Reads both job ledgers, polls the provider's job-status API for every recorded job, tallies success, still-processing, and failed counts, and delivers the aggregate report via Telegram.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headerStyle.Render("Snapguard - Reconciliation Report"))

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		telegramProvider := &notifications.Telegram{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
		}

		return workflow.RunReportWorkflow(cfg, timeout, logLevel, telegramProvider)
	},
}

func init() {
	rootCommand.AddCommand(reportCommand)
}

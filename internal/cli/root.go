package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath, logLevel string
	timeout              int
)

var rootCommand = &cobra.Command{
	Use: "snapguard",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 'version' and 'help' run without a config file
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		if configPath == "" {
			return fmt.Errorf("required flag(s) \"config\" not set")
		}

		return nil
	},
	Short: "Snapguard: KT Cloud G-platform disk snapshot lifecycle manager",
	Long: `Snapguard automates block-storage snapshot lifecycle management on the
KT Cloud G platform. It periodically creates snapshots for a configured list of
disks, deletes snapshots past their retention window, and reconciles the issued
asynchronous jobs into an aggregate report delivered via Telegram.`,
}

func Execute() error {
	return rootCommand.Execute()
}

func init() {
	rootCommand.AddGroup(&cobra.Group{ID: "snapguard", Title: "Snapguard"})

	// Global persistent flags with env var support
	rootCommand.PersistentFlags().StringVar(&configPath, "config", "", "Path to the snapguard config file (required)")
	rootCommand.PersistentFlags().IntVar(&timeout, "timeout", 0, "Global execution timeout in seconds (0 = run indefinitely)")
	rootCommand.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	// Bind to env vars
	_ = viper.BindPFlag("config", rootCommand.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("timeout", rootCommand.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("log-level", rootCommand.PersistentFlags().Lookup("log_level"))

	viper.SetEnvPrefix("SNAPGUARD")
	viper.AutomaticEnv()
}

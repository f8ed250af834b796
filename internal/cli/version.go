package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	SnapguardVersion, SnapguardCommit, SnapguardDate string
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Display version, commit hash, build date, and other build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Snapguard version: %s\n", SnapguardVersion)
		fmt.Printf("Commit: %s\n", SnapguardCommit)
		fmt.Printf("Built: %s\n", SnapguardDate)
	},
}

func init() {
	rootCommand.AddCommand(versionCommand)
}

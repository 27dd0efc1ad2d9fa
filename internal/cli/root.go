package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "reportjob",
	Short:        "Deliver monthly time reports to clients",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file to load before the environment")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(periodCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(versionCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

package cmd

import (
	"os"

	"github.com/cukefmt/cukefmt/internal/logging"

	"github.com/spf13/cobra"
)

var verbosity int

var rootCmd = &cobra.Command{
	Use:   "cukefmt",
	Short: "Pretty-print Gherkin feature files and execution results",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbosity)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

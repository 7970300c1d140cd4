package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version подставляется при сборке через -ldflags "-X github.com/qrave1/confeet-agent/cmd.version=..."
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "confeet",
	Short: "Confeet agent keeps the signaling link and drives calls and chat receipts.",
	Run: func(cmd *cobra.Command, args []string) {
		runApp()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print agent version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "orderdesk",
	Short: "Customer support assistant grounded in your support procedures",
	Long: `Orderdesk answers customer questions using your standard operating
procedure document, looks up orders and balances, and walks customers
through cancellation requests. It serves a REST and WebSocket chat API
and integrates with AI agents via MCP.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".orderdesk.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

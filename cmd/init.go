package cmd

import (
	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize orderdesk configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure orderdesk and generates a .orderdesk.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

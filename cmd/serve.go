package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/orderdesk/orderdesk/internal/mcp"
	"github.com/orderdesk/orderdesk/internal/retriever"
	"github.com/orderdesk/orderdesk/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the procedure search and order lookup tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		bundle, err := openBundle(cfg)
		if err != nil {
			return err
		}

		orders := store.NewOrderStore(db)
		retr := retriever.New(bundle, orders, cfg.TopK)

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "orderdesk MCP server started on stdio (procedures=%s, chunks=%d)\n", cfg.SOPPath, len(bundle.Chunks))

		srv := mcpserver.NewServer(retr, orders)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

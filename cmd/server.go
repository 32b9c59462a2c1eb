package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/server"
	"github.com/orderdesk/orderdesk/internal/session"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the customer support chat server",
	Long:  `Starts the orderdesk chat server with REST API, WebSocket chat, and a rendered view of the support procedures.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serverPort != 0 {
			cfg.Port = serverPort
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

		engine, err := buildEngine(cfg, db, bundle)
		if err != nil {
			return err
		}

		sessions := session.NewRegistry(cfg.MaxHistory, time.Duration(cfg.SessionTTLMin)*time.Minute)

		srv := server.New(server.Config{
			Port:     cfg.Port,
			SOPPath:  cfg.SOPPath,
			AllowAll: cfg.AllowAll,
		}, engine, sessions)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sessions.StartSweeper(ctx, time.Minute)

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "orderdesk server v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Procedures: %s\n", cfg.SOPPath)
		fmt.Fprintf(os.Stderr, "  Chunks indexed: %d\n", len(bundle.Chunks))

		return srv.Start()
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}

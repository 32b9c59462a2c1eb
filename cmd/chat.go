package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask the support assistant a single question",
	Long:  `Sends one message to the support assistant and prints the reply. Useful for smoke-testing the index and the configured model.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().String("email", "", "customer email for order lookups")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")

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

	engine, err := buildEngine(cfg, db, bundle)
	if err != nil {
		return err
	}

	sessions := session.NewRegistry(cfg.MaxHistory, time.Duration(cfg.SessionTTLMin)*time.Minute)
	sess := sessions.GetOrCreate(uuid.NewString())
	if email != "" {
		sess.Lock()
		sess.SetEmail(email)
		sess.Unlock()
	}

	reply := engine.Respond(context.Background(), sess, args[0])
	fmt.Println(reply)
	return nil
}

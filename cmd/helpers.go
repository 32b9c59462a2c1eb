package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/orderdesk/orderdesk/internal/artifacts"
	"github.com/orderdesk/orderdesk/internal/assistant"
	"github.com/orderdesk/orderdesk/internal/config"
	"github.com/orderdesk/orderdesk/internal/llm"
	"github.com/orderdesk/orderdesk/internal/retriever"
	"github.com/orderdesk/orderdesk/internal/store"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `orderdesk init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openDatabase opens the order database under the configured data directory.
func openDatabase(cfg *config.Config) (*store.DB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	dbPath := filepath.Join(cfg.DataDir, "orderdesk.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", dbPath, err)
	}
	return db, nil
}

// openBundle loads the persisted search bundle, rebuilding it from the SOP
// document when no usable bundle exists.
func openBundle(cfg *config.Config) (*artifacts.Bundle, error) {
	st := artifacts.NewStore(filepath.Join(cfg.DataDir, "index"))
	bundle, err := artifacts.Open(st, cfg.SOPPath, artifacts.BuildOptions{})
	if err != nil {
		return nil, fmt.Errorf("opening search bundle: %w", err)
	}
	return bundle, nil
}

// buildEngine wires the full assistant from config: provider, retriever,
// stores, and the tool loop options.
func buildEngine(cfg *config.Config, db *store.DB, bundle *artifacts.Bundle) (*assistant.Engine, error) {
	apiKey := os.Getenv(config.APIKeyEnvVar)
	provider, err := llm.NewOpenAIProvider(apiKey, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("creating completion provider: %w (set %s)", err, config.APIKeyEnvVar)
	}

	orders := store.NewOrderStore(db)
	tickets := store.NewTicketStore(db)
	retr := retriever.New(bundle, orders, cfg.TopK)

	return assistant.NewEngine(provider, cfg.Model, retr, orders, tickets, assistant.Options{
		MaxIterations: cfg.MaxToolIterations,
		Budget:        time.Duration(cfg.ResponseTimeoutSec) * time.Second,
	})
}

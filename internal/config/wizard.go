package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .orderdesk.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to orderdesk! Let's configure your support assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Completion model.
	modelPrompt := promptui.Select{
		Label: "Select completion model",
		Items: []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini", "gpt-4.1"},
	}
	_, model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model selection: %w", err)
	}
	cfg.Model = model

	// 2. SOP document path.
	sopPrompt := promptui.Prompt{
		Label:   "Path to the support procedure document",
		Default: cfg.SOPPath,
	}
	sopPath, err := sopPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("sop path: %w", err)
	}
	cfg.SOPPath = sopPath

	// 3. Data directory for the search index and database.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	// 4. HTTP port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	if _, err := os.Stat(cfg.SOPPath); os.IsNotExist(err) {
		fmt.Printf("\nNote: %s does not exist yet. Create it before running `orderdesk index`.\n", cfg.SOPPath)
	}

	if os.Getenv(APIKeyEnvVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before starting the assistant.\n", APIKeyEnvVar)
	}

	configPath := ".orderdesk.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamzrod/modbus-paramhub/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config.yaml>",
	Short: "Check a configuration file and exit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig(args[0])
		if err != nil {
			return err
		}

		params := 0
		for _, u := range cfg.Paramhub.Units {
			params += len(u.Parameters)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config ok: %d units, %d parameters\n",
			len(cfg.Paramhub.Units), params)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// loadConfig loads, validates and normalizes the configuration at path.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

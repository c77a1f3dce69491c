package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"mediabatch/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print or initialize the configuration file",
	Long: `Print the effective configuration as JSON, including defaults for any
values missing from the config file. With --init a config file with the
default values is written so it can be edited.`,
	Args: cobra.NoArgs,
	RunE: runConfigCommand,
}

var configInit bool

func runConfigCommand(cmd *cobra.Command, args []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if configInit {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s", path)
		}
		if err := config.DefaultConfig().Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s\n", path, data)
	return nil
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write a config file with the default values")
	rootCmd.AddCommand(configCmd)
}

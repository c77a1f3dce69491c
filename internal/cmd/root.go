/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"mediabatch/internal/config"
	"mediabatch/internal/oplog"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mediabatch",
	Short: "A tool for batch file chores",
	Long: `mediabatch is a CLI tool for repetitive file chores: renaming whole
directories of files by position or embedded number, resizing videos through
an external ffmpeg, and bulk-downloading the URLs listed in a spreadsheet.

Renames are planned first and shown in an interactive preview, then applied
in a collision-safe two-phase pass. Every applied session is recorded in an
operation log so it can be undone later.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var noLog bool

func init() {
	// Global flags for all commands
	rootCmd.PersistentFlags().BoolVar(&noLog, "no-log", false, "Disable the operation log for this run")
}

// loadConfig loads the user configuration and initializes the operation log
// for commands that mutate the filesystem.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	oplog.Initialize(cfg.EnableLogging && !noLog, cfg.LogRetentionDays)
	return cfg, nil
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mediabatch/internal/download"

	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <file> <directory>",
	Short: "Download every URL listed in a spreadsheet",
	Long: `Scan a CSV or XLSX file for URLs and download them into a directory.

Every cell is searched for URLs; XLSX hyperlink targets count too. Duplicate
URLs are downloaded once, files that already exist are skipped, and
downloads run concurrently. With --name-column the cell in that column of
the same row supplies the saved filename (the URL's extension is kept).

Legacy .xls files are not supported; convert them to .xlsx or .csv first.`,
	Args: cobra.ExactArgs(2),
	RunE: runDownloadCommand,
}

var (
	downloadNameColumn int
	downloadWorkers    int
	downloadTimeout    int
)

func runDownloadCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	items, err := download.ReadItems(args[0], downloadNameColumn)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No URLs found in %s\n", args[0])
		return nil
	}

	destDir, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("failed to resolve directory: %w", err)
	}

	if !cmd.Flags().Changed("workers") {
		downloadWorkers = cfg.DownloadWorkers
	}
	if !cmd.Flags().Changed("timeout") {
		downloadTimeout = cfg.DownloadTimeoutSeconds
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Found %d URLs in %s\n", len(items), args[0])
	report, err := download.Fetch(cmd.Context(), items, destDir, download.FetchConfig{
		Timeout:     time.Duration(downloadTimeout) * time.Second,
		UserAgent:   cfg.DownloadUserAgent,
		Workers:     downloadWorkers,
		Command:     "download",
		CommandArgs: os.Args[1:],
		Out:         cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nDownloaded: %d, Skipped: %d, Failed: %d, Total: %d\n",
		report.Downloaded, report.Skipped, report.Failed, len(report.Results))
	return report.Err()
}

func init() {
	downloadCmd.Flags().IntVar(&downloadNameColumn, "name-column", -1, "0-based column holding custom filenames for each row (-1 disables)")
	downloadCmd.Flags().IntVar(&downloadWorkers, "workers", 4, "Number of concurrent downloads")
	downloadCmd.Flags().IntVar(&downloadTimeout, "timeout", 30, "Per-request timeout in seconds")
	rootCmd.AddCommand(downloadCmd)
}

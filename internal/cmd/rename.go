package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mediabatch/internal/rename"
	"mediabatch/internal/tui/preview"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <directory>",
	Short: "Rename every file in a directory by position or number",
	Long: `Rename every file directly inside a directory to a generated name.

Entries are sorted (by name, or by the first number in the name), numbered,
and given a new name built from the chosen naming strategy plus an optional
prefix and suffix. Name collisions are resolved with a _N counter, and the
whole plan is applied in a collision-safe two-phase pass, so swapping two
file names works.

On a terminal the plan opens in an interactive preview where entries can be
dropped before applying. With --yes, --dry-run, --json, or a redirected
stdout the plan runs (or, for --dry-run, is only printed) without the UI.`,
	Args: cobra.ExactArgs(1),
	RunE: runRenameCommand,
}

var (
	renameSort   string
	renameNaming string
	renamePrefix string
	renameSuffix string
	renamePad    int
	renameYes    bool
	renameDryRun bool
	renameJSON   bool
)

func runRenameCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Flags the user left untouched fall back to the configured defaults.
	if !cmd.Flags().Changed("sort") {
		renameSort = cfg.DefaultSort
	}
	if !cmd.Flags().Changed("naming") {
		renameNaming = cfg.DefaultNaming
	}
	if !cmd.Flags().Changed("pad") {
		renamePad = cfg.ZeroPad
	}

	sortStrategy, err := rename.ParseSortStrategy(renameSort)
	if err != nil {
		return err
	}
	nameStrategy, err := rename.ParseNameStrategy(renameNaming)
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve directory: %w", err)
	}

	opts := rename.PlanOptions{
		Sort:    sortStrategy,
		Naming:  nameStrategy,
		Prefix:  renamePrefix,
		Suffix:  renameSuffix,
		ZeroPad: renamePad,
	}

	plan, err := rename.BuildPlan(dir, opts)
	if err != nil {
		return err
	}

	if renameDryRun || renameYes || renameJSON || !isatty.IsTerminal(os.Stdout.Fd()) {
		return runRenameDirect(cmd, plan)
	}
	return runRenameTUI(plan, dir, opts)
}

// runRenameDirect applies (or with --dry-run simulates) the plan without the
// interactive preview and prints the report.
func runRenameDirect(cmd *cobra.Command, plan *rename.Plan) error {
	applier := rename.NewApplier(plan, rename.ApplyConfig{
		DryRun:      renameDryRun,
		Command:     "rename",
		CommandArgs: os.Args[1:],
	})
	report := applier.Run(cmd.Context())

	if err := writeReport(cmd.OutOrStdout(), report, renameJSON); err != nil {
		return err
	}
	return report.Err()
}

// runRenameTUI opens the interactive preview and lets it drive the apply.
func runRenameTUI(plan *rename.Plan, dir string, opts rename.PlanOptions) error {
	disk, err := rename.DiskNames(dir)
	if err != nil {
		return err
	}

	model := preview.NewPreviewModel(plan, disk)
	model.Command = "rename"
	model.CommandArgs = os.Args[1:]
	model.PlanOptions = opts

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	// A partially failed apply still exits non-zero after the UI closes.
	if m, ok := finalModel.(*preview.PreviewModel); ok {
		if report := m.Report(); report != nil {
			return report.Err()
		}
	}
	return nil
}

func writeReport(w io.Writer, report *rename.Report, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}
	fmt.Fprintln(w, report.Table())
	return nil
}

func init() {
	renameCmd.Flags().StringVar(&renameSort, "sort", "name", "Sort entries by \"name\" or \"number\" before numbering")
	renameCmd.Flags().StringVar(&renameNaming, "naming", "sequential", "Naming strategy: sequential, numbers-only, text-only, or numbers-at-end")
	renameCmd.Flags().StringVar(&renamePrefix, "prefix", "", "Text prepended to every generated name")
	renameCmd.Flags().StringVar(&renameSuffix, "suffix", "", "Text appended to every generated name before the extension")
	renameCmd.Flags().IntVar(&renamePad, "pad", 0, "Zero-pad all-digit names to this width plus one (0 disables)")
	renameCmd.Flags().BoolVarP(&renameYes, "yes", "y", false, "Apply the plan immediately without interactive preview")
	renameCmd.Flags().BoolVar(&renameDryRun, "dry-run", false, "Print the plan without touching any files")
	renameCmd.Flags().BoolVar(&renameJSON, "json", false, "Print the report as JSON instead of a table")
	rootCmd.AddCommand(renameCmd)
}

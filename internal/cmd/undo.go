package cmd

import (
	"fmt"
	"os"

	"mediabatch/internal/oplog"
	undoui "mediabatch/internal/tui/undo"

	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo recent rename operations",
	Long: `Display recent operation sessions and allow selective undo.

This command shows a list of previous sessions that can be undone, allowing
you to reverse changes made by mediabatch. With --last the most recent
session is undone immediately without the picker.`,
	RunE: runUndoCommand,
}

var undoLast bool

func runUndoCommand(cmd *cobra.Command, args []string) error {
	if undoLast {
		return undoLatestSession(cmd)
	}

	summaries, err := oplog.GetSessionSummaries()
	if err != nil {
		return fmt.Errorf("failed to read log sessions: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No operation sessions found to undo.")
		return nil
	}

	sessionNodes := make([]*treeview.Node[oplog.SessionSummary], 0, len(summaries))

	for _, summary := range summaries {
		node := treeview.NewNode(summary.Session.Metadata.SessionID, sessionLabel(summary), summary)
		sessionNodes = append(sessionNodes, node)
	}

	tree := treeview.NewTree(sessionNodes)
	model := undoui.NewUndoModel(tree)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// undoLatestSession reverses the most recent session without the picker.
func undoLatestSession(cmd *cobra.Command) error {
	session, logPath, err := oplog.FindLatestSession()
	if err != nil {
		return fmt.Errorf("failed to find latest session: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Undoing session %s (%d operations)\n",
		sessionCommand(session), session.Metadata.TotalOps)

	successful, failed, errs := oplog.UndoSession(session)
	for _, undoErr := range errs {
		fmt.Fprintf(os.Stderr, "  %v\n", undoErr)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Undo completed: %d success, %d failed (%s)\n",
		successful, failed, logPath)
	if failed > 0 {
		return fmt.Errorf("%d operations could not be undone", failed)
	}
	return nil
}

// sessionLabel builds the one-line picker label for a session.
func sessionLabel(summary oplog.SessionSummary) string {
	return fmt.Sprintf("%s %s - %s (%d ops)",
		summary.Icon,
		sessionCommand(summary.Session),
		summary.RelativeTime,
		summary.Session.Metadata.TotalOps)
}

// sessionCommand returns the command a session was recorded by.
func sessionCommand(session *oplog.LogSession) string {
	if len(session.Metadata.CommandArgs) == 0 {
		return "unknown"
	}
	return session.Metadata.CommandArgs[0]
}

func init() {
	undoCmd.Flags().BoolVar(&undoLast, "last", false, "Undo the most recent session without the picker")
	rootCmd.AddCommand(undoCmd)
}

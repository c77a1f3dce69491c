package preview

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"mediabatch/internal/oplog"
	"mediabatch/internal/rename"
)

// ApplyCompleteMsg is sent when an apply run has finished and the final
// report is available.
type ApplyCompleteMsg struct {
	report *rename.Report
}

// Report returns the final run report.
func (m ApplyCompleteMsg) Report() *rename.Report { return m.report }

// ApplyProgressMsg is sent after each apply step so the UI can advance the
// progress bar and refresh per-entry outcomes without polling the applier.
type ApplyProgressMsg struct {
	Completed int
	Total     int
	Renamed   int
	Skipped   int
	Failed    int
}

// UndoCompleteMsg is sent when undoing the latest session has finished.
type UndoCompleteMsg struct {
	successCount int
	errorCount   int
}

// SuccessCount returns the number of operations that were reversed.
func (m UndoCompleteMsg) SuccessCount() int { return m.successCount }

// ErrorCount returns the number of operations that could not be reversed.
func (m UndoCompleteMsg) ErrorCount() int { return m.errorCount }

// Overridable in tests.
var (
	findLatestSessionFn = oplog.FindLatestSession
	undoSessionFn       = oplog.UndoSession
)

// applyCmd runs a single applier step. Intermediate steps yield an
// ApplyProgressMsg; the step that completes the run yields ApplyCompleteMsg
// instead. The model re-issues the command until completion so each Bubble
// Tea cycle performs exactly one rename.
func applyCmd(a *rename.Applier) tea.Cmd {
	return func() tea.Msg {
		if a.Next(context.Background()) {
			return ApplyCompleteMsg{report: a.Report()}
		}
		rep := a.Report()
		return ApplyProgressMsg{
			Completed: a.StepsRun(),
			Total:     a.Steps(),
			Renamed:   rep.Renamed,
			Skipped:   rep.Skipped,
			Failed:    rep.Failed,
		}
	}
}

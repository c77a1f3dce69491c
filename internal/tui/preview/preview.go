// Package preview implements the interactive batch rename TUI. It shows the
// current plan as a tree next to a statistics panel, lets the user drop
// entries (replanning after each drop), and drives an apply run one step at
// a time so the interface stays responsive.
package preview

import (
	"context"
	"fmt"
	"math"
	"strings"

	"mediabatch/internal/rename"
	"mediabatch/internal/tui/components"
	"mediabatch/internal/tui/theme"
	"mediabatch/internal/video"

	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// PreviewModel wraps the underlying treeview TUI model to add plan editing,
// apply execution and real-time statistics.
type PreviewModel struct {
	*treeview.TuiTreeModel[treeview.FileInfo]

	plan *rename.Plan
	disk map[string]bool

	applyInProgress bool
	applyComplete   bool
	renamedCount    int
	skippedCount    int
	failedCount     int
	progressModel   progress.Model
	progressVisible bool
	stepsDone       int
	stepsTotal      int
	applier         *rename.Applier
	report          *rename.Report
	width           int
	height          int

	// Run configuration, set by the command layer before the program starts.
	DryRun         bool
	Command        string
	CommandArgs    []string
	PlanOptions    rename.PlanOptions
	ApplyFunctions rename.ApplyFuncs

	// Layout metrics
	treeWidth   int
	treeHeight  int
	statsWidth  int
	statsHeight int

	// Stat tracking
	statsCache Statistics
	statsDirty bool

	theme theme.Theme

	// Undo support
	undoAvailable  bool
	undoInProgress bool
	undoComplete   bool
	undoSuccess    int
	undoFailed     int

	// Stats panel scrolling
	statsViewport *viewport.Model
	statsFocused  bool
}

// Option configures a PreviewModel during construction.
type Option func(*PreviewModel)

// WithTheme overrides the theme used by the preview TUI.
func WithTheme(th theme.Theme) Option {
	return func(m *PreviewModel) {
		m.theme = th
	}
}

// NewPreviewModel returns an initialized PreviewModel for the plan. disk is
// the set of names currently on disk in the plan directory; it is reused when
// an entry is dropped and the remaining entries are replanned. Dimensions are
// defaults until the first WindowSize message arrives.
func NewPreviewModel(plan *rename.Plan, disk map[string]bool, opts ...Option) *PreviewModel {
	m := &PreviewModel{
		plan:       plan,
		disk:       disk,
		width:      80,
		height:     24,
		statsDirty: true,
	}

	initOpts := append([]Option{WithTheme(theme.Default())}, opts...)
	for _, opt := range initOpts {
		opt(m)
	}

	runewidth.DefaultCondition.EastAsianWidth = false
	runewidth.DefaultCondition.StrictEmojiNeutral = true

	gradient := m.theme.ProgressGradient()
	if len(gradient) < 2 {
		gradient = []string{string(m.theme.Colors().Primary), string(m.theme.Colors().Accent)}
	}
	m.progressModel = progress.New(progress.WithGradient(gradient[0], gradient[1]))
	m.progressModel.Width = 40
	// establish initial layout metrics before building the underlying model
	m.CalculateLayout()

	m.statsViewport = components.NewViewport(m.statsWidth, m.statsHeight, m.theme)

	m.TuiTreeModel = m.createSizedTuiModel(components.NewPlanTree(plan))
	return m
}

// Plan returns the plan currently shown, including any drops made in the UI.
func (m *PreviewModel) Plan() *rename.Plan { return m.plan }

// Report returns the report of the last apply run, or nil before any run.
func (m *PreviewModel) Report() *rename.Report { return m.report }

// newApplier snapshots the current plan and run configuration.
func (m *PreviewModel) newApplier() *rename.Applier {
	return rename.NewApplier(m.plan, rename.ApplyConfig{
		DryRun:      m.DryRun,
		Command:     m.Command,
		CommandArgs: m.CommandArgs,
		Functions:   m.ApplyFunctions,
	})
}

func (m *PreviewModel) headerStyle() lipgloss.Style {
	return m.theme.HeaderStyle()
}

func (m *PreviewModel) statusBarStyle() lipgloss.Style {
	return m.theme.StatusBarStyle()
}

func (m *PreviewModel) panelStyle() lipgloss.Style {
	return m.theme.PanelStyle()
}

func (m *PreviewModel) panelTitleStyle() lipgloss.Style {
	return m.theme.PanelTitleStyle()
}

// getIcon returns the appropriate icon for the current terminal
func (m *PreviewModel) getIcon(iconType string) string {
	return m.theme.Icon(iconType)
}

func (m *PreviewModel) arrowIcons() (string, string) {
	icons := []rune(m.getIcon("arrows"))
	switch {
	case len(icons) >= 4:
		return string(icons[0:2]), string(icons[2:4])
	case len(icons) >= 2:
		return string(icons[0]), string(icons[1:])
	default:
		return "↑↓", "←→"
	}
}

// CalculateLayout recomputes panel dimensions from current window size.
func (m *PreviewModel) CalculateLayout() {
	// Tree takes 60% of the width
	tw := m.width * 6 / 10
	// Header (1) + blank (1) + blank (1) + status bar (1) = 4 reserved lines
	th := m.height - 4
	if th < 5 {
		th = 5
	}
	m.treeWidth = tw
	m.treeHeight = th
	// Stats panel uses the remaining width at the same height
	m.statsWidth = m.width - tw
	m.statsHeight = th
	if m.statsHeight < 1 {
		m.statsHeight = 1
	}

	// Update stats viewport dimensions if initialized
	if m.statsViewport != nil && (m.statsViewport.Width > 0 || m.statsViewport.Height > 0) {
		// Border (2) + padding (2) on each axis
		viewportWidth := m.statsWidth - 4
		viewportHeight := m.statsHeight - 4

		if viewportWidth < 1 {
			viewportWidth = 1
		}
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		m.statsViewport.Width = viewportWidth
		m.statsViewport.Height = viewportHeight
	}
}

// createSizedTuiModel builds a tree model sized to current dimensions and
// disables treeview features (search/reset) not needed for this application.
func (m *PreviewModel) createSizedTuiModel(tree *treeview.Tree[treeview.FileInfo]) *treeview.TuiTreeModel[treeview.FileInfo] {
	keyMap := treeview.DefaultKeyMap()
	keyMap.SearchStart = []string{} // Disable search
	keyMap.Reset = []string{}       // Disable ctrl+r reset

	return treeview.NewTuiTreeModel(tree,
		treeview.WithTuiWidth[treeview.FileInfo](m.treeWidth),
		treeview.WithTuiHeight[treeview.FileInfo](m.treeHeight),
		treeview.WithTuiAllowResize[treeview.FileInfo](true),
		treeview.WithTuiDisableNavBar[treeview.FileInfo](true),
		treeview.WithTuiKeyMap[treeview.FileInfo](keyMap),
	)
}

// Init initializes the embedded tree model and requests an initial window size.
func (m *PreviewModel) Init() tea.Cmd {
	return tea.Batch(
		m.TuiTreeModel.Init(),
		tea.WindowSize(),
	)
}

// Update handles Bubble Tea messages (resize, key events, apply progress).
func (m *PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Record full window size
		m.width = msg.Width
		m.height = msg.Height
		// Recalculate layout metrics once, then forward scaled size to tree model
		m.CalculateLayout()
		internalMsg := tea.WindowSizeMsg{Width: m.treeWidth, Height: m.treeHeight}
		updated, cmd := m.TuiTreeModel.Update(internalMsg)
		if tm, ok := updated.(*treeview.TuiTreeModel[treeview.FileInfo]); ok {
			m.TuiTreeModel = tm
		}
		return m, cmd

	case tea.KeyMsg:
		// Handle custom keys before passing to tree model
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			// Toggle between tree and stats panel focus
			m.statsFocused = !m.statsFocused
			return m, nil

		case "delete", "d":
			// The plan is frozen once a run starts
			if !m.applyInProgress && !m.applyComplete {
				m.dropFocusedEntry()
			}
			return m, nil
		case "r":
			if !m.applyInProgress && !m.applyComplete {
				m.applyInProgress = true
				m.renamedCount = 0
				m.skippedCount = 0
				m.failedCount = 0
				m.applier = m.newApplier()
				m.stepsDone = 0
				m.stepsTotal = m.applier.Steps()
				m.progressVisible = true
				cmds := []tea.Cmd{m.progressModel.SetPercent(0)}
				cmds = append(cmds, applyCmd(m.applier))
				return m, tea.Batch(cmds...)
			}
		case "u", "U":
			if m.undoAvailable && !m.undoInProgress {
				m.undoInProgress = true
				m.undoAvailable = false
				m.progressVisible = true
				return m, m.performUndo()
			}
		case "up":
			if m.statsFocused {
				m.statsViewport.ScrollUp(1)
				return m, nil
			}
		case "down":
			if m.statsFocused {
				m.statsViewport.ScrollDown(1)
				return m, nil
			}
		case "pgup":
			if m.statsFocused {
				m.statsViewport.HalfPageUp()
				return m, nil
			}
			// Move up by viewport height in tree
			pageSize := max(m.treeHeight, 10)
			m.TuiTreeModel.Tree.Move(context.Background(), -pageSize)
			return m, nil
		case "pgdown":
			if m.statsFocused {
				m.statsViewport.HalfPageDown()
				return m, nil
			}
			// Move down by viewport height in tree
			pageSize := max(m.treeHeight, 10)
			m.TuiTreeModel.Tree.Move(context.Background(), pageSize)
			return m, nil
		}

	case tea.MouseMsg:
		// Handle mouse wheel scrolling
		switch {
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButton(4): // Mouse wheel up
			if m.statsFocused {
				m.statsViewport.ScrollUp(1)
			} else {
				m.TuiTreeModel.Tree.Move(context.Background(), -1)
			}
			return m, nil
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButton(5): // Mouse wheel down
			if m.statsFocused {
				m.statsViewport.ScrollDown(1)
			} else {
				m.TuiTreeModel.Tree.Move(context.Background(), 1)
			}
			return m, nil
		}

	case ApplyProgressMsg:
		m.stepsDone = msg.Completed
		m.stepsTotal = msg.Total
		m.renamedCount = msg.Renamed
		m.skippedCount = msg.Skipped
		m.failedCount = msg.Failed
		m.statsDirty = true
		if m.applier != nil {
			m.syncOutcomes(m.applier.Report())
		}
		var pct float64
		if msg.Total > 0 {
			pct = math.Min(float64(msg.Completed)/float64(msg.Total), 1)
		}
		cmds := []tea.Cmd{m.progressModel.SetPercent(pct)}
		if m.applier != nil {
			cmds = append(cmds, applyCmd(m.applier))
		}
		return m, tea.Batch(cmds...)

	case ApplyCompleteMsg:
		m.applyInProgress = false
		m.applyComplete = true
		m.report = msg.Report()
		m.renamedCount = m.report.Renamed
		m.skippedCount = m.report.Skipped
		m.failedCount = m.report.Failed
		m.stepsDone = m.stepsTotal
		m.statsDirty = true
		m.progressVisible = false
		m.undoAvailable = m.report.Renamed > 0 && !m.DryRun
		m.applier = nil
		m.syncOutcomes(m.report)
		cmd := m.progressModel.SetPercent(1)
		return m, cmd

	case UndoCompleteMsg:
		m.undoInProgress = false
		m.undoComplete = true
		m.undoSuccess = msg.successCount
		m.undoFailed = msg.errorCount
		m.progressVisible = false
		return m, nil

	case progress.FrameMsg:
		// propagate animation frames for the progress bar so percent updates render
		pm, cmd := m.progressModel.Update(msg)
		m.progressModel = pm.(progress.Model)
		return m, cmd
	}

	// Pass through to embedded tree model for other messages
	updatedModel, cmd := m.TuiTreeModel.Update(msg)
	if tm, ok := updatedModel.(*treeview.TuiTreeModel[treeview.FileInfo]); ok {
		m.TuiTreeModel = tm
	}

	return m, cmd
}

// View returns the full TUI string (header, tree+stats layout, status bar).
func (m *PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteByte('\n')

	b.WriteString(m.renderTwoPanelLayout())
	b.WriteByte('\n')

	b.WriteString(m.renderStatusBar())
	return b.String()
}

// renderHeader creates the single-line header bar with mode + plan directory.
func (m *PreviewModel) renderHeader() string {
	style := m.headerStyle().Width(m.width)

	var title string
	if m.DryRun {
		title = fmt.Sprintf("%s Batch Rename (dry-run) - %s", m.getIcon("rename"), m.plan.Dir)
	} else {
		title = fmt.Sprintf("%s Batch Rename - %s", m.getIcon("rename"), m.plan.Dir)
	}
	return style.Render(title)
}

// renderStatusBar renders a single line of key hints and actions.
func (m *PreviewModel) renderStatusBar() string {
	if m.progressVisible && m.applyInProgress {
		bar := m.progressModel.View()
		textStyle := m.statusBarStyle()
		operationText := "Renaming..."
		if m.DryRun {
			operationText = "Simulating..."
		}
		statusText := textStyle.Render(fmt.Sprintf("%d/%d - %s", m.stepsDone, m.stepsTotal, operationText))
		combined := fmt.Sprintf("%s  %s", bar, statusText)
		return m.statusBarStyle().Width(m.width - 1).Render(combined)
	}

	if m.progressVisible && m.undoInProgress {
		bar := m.progressModel.View()
		textStyle := m.statusBarStyle()
		statusText := textStyle.Render("Undoing operations...")
		combined := fmt.Sprintf("%s  %s", bar, statusText)
		return m.statusBarStyle().Width(m.width).Render(combined)
	}

	renameKey := "r: Rename"
	if m.DryRun {
		renameKey = "r: Simulate"
	}

	// Add undo info if available or completed
	undoInfo := ""
	if m.undoAvailable {
		undoInfo = "u: Undo  │  "
	} else if m.undoComplete {
		if m.undoFailed > 0 {
			undoInfo = fmt.Sprintf("Undo: %d success, %d failed  │  ", m.undoSuccess, m.undoFailed)
		} else {
			undoInfo = fmt.Sprintf("Undo: %d operations reversed  │  ", m.undoSuccess)
		}
	}

	focusInfo := ""
	if m.statsFocused {
		focusInfo = "Tab: Tree Focus  │  "
	} else {
		focusInfo = "Tab: Stats Focus  │  "
	}

	upDown, leftRight := m.arrowIcons()
	statusText := fmt.Sprintf("%s%s: Navigate  PgUp/PgDn: Page  %s: Expand/Collapse  │  %s  │  %sd: Remove  │  Esc/Ctrl+C: Quit",
		focusInfo,
		upDown,
		leftRight,
		renameKey,
		undoInfo)
	return m.statusBarStyle().Width(m.width - 1).Render(statusText)
}

// renderTwoPanelLayout joins the tree view and statistics panel horizontally.
func (m *PreviewModel) renderTwoPanelLayout() string {
	statsPanel := m.renderStatsPanel()
	treeView := m.TuiTreeModel.View()

	// Pin the tree to its allocated width so the stats panel doesn't jump
	treeContainer := lipgloss.NewStyle().
		Width(m.treeWidth).
		MaxWidth(m.treeWidth).
		Render(treeView)

	return lipgloss.JoinHorizontal(lipgloss.Top, treeContainer, statsPanel)
}

// renderStatsPanel builds and formats the statistics panel content using a
// scrollable viewport.
func (m *PreviewModel) renderStatsPanel() string {
	if m.statsDirty || m.statsViewport.View() == "" {
		m.updateStatsContent()
	}

	borderStyle := m.panelStyle()
	titleStyle := m.panelTitleStyle().MarginBottom(1)

	scrollIndicator := ""
	if m.statsViewport.TotalLineCount() > m.statsViewport.Height {
		if m.statsFocused {
			scrollIndicator = " [Use Tab+↑↓]"
		} else {
			scrollIndicator = " [Tab to scroll]"
		}
	}

	title := titleStyle.Render(fmt.Sprintf("%s Statistics%s", m.getIcon("stats"), scrollIndicator))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		m.statsViewport.View(),
	)

	return borderStyle.
		Width(m.statsWidth - borderStyle.GetHorizontalFrameSize()).
		Height(m.statsHeight - borderStyle.GetVerticalFrameSize()).
		Render(content)
}

// updateStatsContent generates the stats content and sets it in the viewport
func (m *PreviewModel) updateStatsContent() {
	stats := m.calculateStats()
	var b strings.Builder
	b.Grow(512)

	b.WriteString("Files Found:\n")
	fmt.Fprintf(&b, "  %s %-12s %d\n", m.getIcon("document"), "Entries:", stats.entryCount)
	fmt.Fprintf(&b, "  %s %-12s %d\n", m.getIcon("video"), "Videos:", stats.videoCount)

	b.WriteString("\nRename Plan:\n")
	fmt.Fprintf(&b, "  %s %-12s %d\n", m.getIcon("pending"), "To rename:", stats.pendingCount)
	fmt.Fprintf(&b, "  %s %-12s %d\n", m.getIcon("nochange"), "No change:", stats.unchangedCount)
	if stats.planFailedCount > 0 {
		fmt.Fprintf(&b, "  %s %-12s %d\n", m.getIcon("error"), "Conflicts:", stats.planFailedCount)
	}

	if m.applyInProgress || m.applyComplete {
		b.WriteString("\nLast Run:\n")
		fmt.Fprintf(&b, "  %s %-12s %d\n", m.getIcon("success"), "Renamed:", m.renamedCount)
		fmt.Fprintf(&b, "  %s %-12s %d\n", m.getIcon("nochange"), "Skipped:", m.skippedCount)
		if m.failedCount > 0 {
			fmt.Fprintf(&b, "  %s %-12s %d\n", m.getIcon("error"), "Failed:", m.failedCount)
		}
	}

	if m.progressVisible && m.applyInProgress {
		percent := 0
		if m.stepsTotal > 0 {
			percent = (m.stepsDone * 100) / m.stepsTotal
		}
		b.WriteString("\nApply Progress:\n")
		fmt.Fprintf(&b, "  %d/%d (%d%%)\n", m.stepsDone, m.stepsTotal, percent)
	}

	fmt.Fprintf(&b, "\nTotal items: %d\n", stats.entryCount)
	if stats.entryCount > 0 {
		percentPending := (stats.pendingCount * 100) / stats.entryCount
		fmt.Fprintf(&b, "To rename: %d%%", percentPending)
	}

	m.statsViewport.SetContent(b.String())
}

// Statistics aggregates counts derived from the current plan tree.
//
// Fields:
//   - entryCount: entries in the plan.
//   - videoCount: entries with a recognized video extension.
//   - pendingCount: entries whose planned name differs from the current name.
//   - unchangedCount: entries keeping their name.
//   - planFailedCount: entries planning could not resolve.
type Statistics struct {
	entryCount      int
	videoCount      int
	pendingCount    int
	unchangedCount  int
	planFailedCount int
}

// calculateStats walks the tree to produce aggregate counts. Run tallies are
// tracked on the model directly, so the cache only covers tree-derived counts.
func (m *PreviewModel) calculateStats() Statistics {
	if !m.statsDirty {
		return m.statsCache
	}

	stats := Statistics{}
	for nodeInfo := range m.Tree.All(context.Background()) {
		node := nodeInfo.Node
		mm := components.GetMeta(node)
		if mm == nil {
			continue
		}
		stats.entryCount++
		if video.IsVideo(node.Name()) {
			stats.videoCount++
		}
		switch {
		case mm.PlanErr != "":
			stats.planFailedCount++
		case mm.NewName != node.Name():
			stats.pendingCount++
		default:
			stats.unchangedCount++
		}
	}
	m.statsCache = stats
	m.statsDirty = false
	return stats
}

// dropFocusedEntry removes the focused entry from the plan, replans the
// remaining entries so sequence numbers close up, and rebuilds the tree with
// focus moved to the entry that took the dropped entry's place.
func (m *PreviewModel) dropFocusedEntry() {
	focused := m.TuiTreeModel.Tree.GetFocusedNode()
	if focused == nil {
		return
	}

	idx := -1
	entries := make([]rename.Entry, 0, len(m.plan.Entries))
	for i, pe := range m.plan.Entries {
		if pe.Path == focused.ID() {
			idx = i
			continue
		}
		entries = append(entries, pe.Entry)
	}
	if idx == -1 {
		return
	}

	m.plan = rename.PlanEntries(m.plan.Dir, entries, m.disk, m.PlanOptions)
	m.rebuildTree()

	if len(m.plan.Entries) > 0 {
		focusIdx := min(idx, len(m.plan.Entries)-1)
		_, _ = m.Tree.SetFocusedID(context.Background(), m.plan.Entries[focusIdx].Path)
	}
}

// rebuildTree replaces the embedded tree model with one built from the
// current plan, keeping the existing layout dimensions.
func (m *PreviewModel) rebuildTree() {
	m.TuiTreeModel = m.createSizedTuiModel(components.NewPlanTree(m.plan))
	m.statsDirty = true
}

// syncOutcomes copies per-entry run results onto the matching tree nodes so
// the provider can restyle them. Entries the run has not reached yet carry no
// outcome and are left alone.
func (m *PreviewModel) syncOutcomes(rep *rename.Report) {
	if rep == nil {
		return
	}
	byPath := make(map[string]rename.Result, len(rep.Results))
	for _, res := range rep.Results {
		if res.Outcome == "" {
			continue
		}
		byPath[res.Path] = res
	}
	for nodeInfo := range m.Tree.All(context.Background()) {
		node := nodeInfo.Node
		res, ok := byPath[node.ID()]
		if !ok {
			continue
		}
		mm := components.EnsureMeta(node)
		mm.Outcome = res.Outcome
		mm.Reason = res.Reason
	}
	m.statsDirty = true
}

// performUndo undoes the most recent operation session
func (m *PreviewModel) performUndo() tea.Cmd {
	return func() tea.Msg {
		latestSession, _, err := findLatestSessionFn()
		if err != nil {
			return UndoCompleteMsg{successCount: 0, errorCount: 1}
		}

		successful, failed, _ := undoSessionFn(latestSession)
		return UndoCompleteMsg{successCount: successful, errorCount: failed}
	}
}
